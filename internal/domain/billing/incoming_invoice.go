package billing

import (
	"strings"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IncomingInvoice is a payable document received from a supplier.
// Balance fields mirror Invoice but settlements flow outward.
type IncomingInvoice struct {
	shared.BaseAggregateRoot
	Number            string
	SupplierID        uuid.UUID
	IssueDate         time.Time
	DueDate           *time.Time
	TotalAmount       decimal.Decimal
	PaidAmount        decimal.Decimal
	OutstandingAmount decimal.Decimal
	Status            DocumentStatus
}

// NewIncomingInvoice creates a pending incoming invoice with validation
func NewIncomingInvoice(number string, supplierID uuid.UUID, issueDate time.Time, totalAmount decimal.Decimal) (*IncomingInvoice, error) {
	if strings.TrimSpace(number) == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "incoming invoice number is required")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "supplier is required")
	}
	if !totalAmount.IsPositive() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "incoming invoice total must be positive")
	}
	if issueDate.IsZero() {
		issueDate = time.Now()
	}
	return &IncomingInvoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Number:            number,
		SupplierID:        supplierID,
		IssueDate:         issueDate,
		TotalAmount:       totalAmount,
		PaidAmount:        decimal.Zero,
		OutstandingAmount: totalAmount,
		Status:            DocumentStatusPending,
	}, nil
}

// ApplyBalance replaces the derived balance fields from a recomputation
func (i *IncomingInvoice) ApplyBalance(paid decimal.Decimal) BalanceSnapshot {
	i.PaidAmount = paid
	i.OutstandingAmount = i.TotalAmount.Sub(paid)
	i.Status = StatusFor(paid, i.TotalAmount)
	i.UpdatedAt = time.Now()
	return BalanceSnapshot{
		PaidAmount:        i.PaidAmount,
		OutstandingAmount: i.OutstandingAmount,
		Status:            i.Status,
	}
}

// CheckSettlement rejects settlement amounts that are not positive or
// exceed the remaining outstanding balance.
func (i *IncomingInvoice) CheckSettlement(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewDomainError("VALIDATION_ERROR", "settlement amount must be positive")
	}
	if !i.Status.CanApplyPayment() {
		return shared.NewDomainError("CONFLICT", "incoming invoice does not accept settlements in status "+i.Status.String())
	}
	if amount.GreaterThan(i.OutstandingAmount) {
		return shared.NewDomainError("CONFLICT", "settlement amount exceeds outstanding balance")
	}
	return nil
}

// Snapshot returns the current derived balance fields
func (i *IncomingInvoice) Snapshot() BalanceSnapshot {
	return BalanceSnapshot{
		PaidAmount:        i.PaidAmount,
		OutstandingAmount: i.OutstandingAmount,
		Status:            i.Status,
	}
}
