package billing

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementDirection represents the flow of funds for a treasury movement
type MovementDirection string

const (
	MovementIn  MovementDirection = "IN"
	MovementOut MovementDirection = "OUT"
)

// IsValid checks if the direction is valid
func (d MovementDirection) IsValid() bool {
	return d == MovementIn || d == MovementOut
}

// String returns the string representation of MovementDirection
func (d MovementDirection) String() string {
	return string(d)
}

// MoneyMovement is a treasury movement (bank or cash) optionally linked
// to one receivable or payable document. Posting a movement produces
// ledger lines; its voucher reference is the human-auditable trail.
type MoneyMovement struct {
	shared.BaseEntity
	Date              time.Time
	Direction         MovementDirection
	Amount            decimal.Decimal
	Label             string
	VoucherRef        string
	TreasuryAccountID uuid.UUID
	InvoiceID         *uuid.UUID
	IncomingInvoiceID *uuid.UUID
}

// NewMoneyMovement creates a treasury movement with validation
func NewMoneyMovement(date time.Time, direction MovementDirection, amount decimal.Decimal, label, voucherRef string, treasuryAccountID uuid.UUID) (*MoneyMovement, error) {
	if !direction.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("invalid movement direction: %s", direction))
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "movement amount must be positive")
	}
	if strings.TrimSpace(voucherRef) == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "voucher reference is required")
	}
	if treasuryAccountID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "treasury account is required")
	}
	if date.IsZero() {
		date = time.Now()
	}
	return &MoneyMovement{
		BaseEntity:        shared.NewBaseEntity(),
		Date:              date,
		Direction:         direction,
		Amount:            amount,
		Label:             label,
		VoucherRef:        voucherRef,
		TreasuryAccountID: treasuryAccountID,
	}, nil
}

// LinkInvoice attaches the movement to a receivable document.
// A movement settles at most one document.
func (m *MoneyMovement) LinkInvoice(invoiceID uuid.UUID) error {
	if m.IncomingInvoiceID != nil {
		return shared.NewDomainError("CONFLICT", "movement is already linked to an incoming invoice")
	}
	m.InvoiceID = &invoiceID
	return nil
}

// LinkIncomingInvoice attaches the movement to a payable document
func (m *MoneyMovement) LinkIncomingInvoice(incomingInvoiceID uuid.UUID) error {
	if m.InvoiceID != nil {
		return shared.NewDomainError("CONFLICT", "movement is already linked to an invoice")
	}
	m.IncomingInvoiceID = &incomingInvoiceID
	return nil
}

// SettlesDocument reports whether the movement counts toward the paid
// amount of the given document type: IN movements settle receivables,
// OUT movements settle payables.
func (m *MoneyMovement) SettlesDocument(docType DocumentType) bool {
	switch docType {
	case DocumentTypeInvoice:
		return m.Direction == MovementIn && m.InvoiceID != nil
	case DocumentTypeIncomingInvoice:
		return m.Direction == MovementOut && m.IncomingInvoiceID != nil
	default:
		return false
	}
}
