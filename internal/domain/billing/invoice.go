package billing

import (
	"strings"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Invoice is a receivable document. Paid and outstanding amounts are
// derived from linked treasury movements by recomputation.
type Invoice struct {
	shared.BaseAggregateRoot
	Number            string
	ClientID          uuid.UUID
	IssueDate         time.Time
	DueDate           *time.Time
	TotalAmount       decimal.Decimal
	PaidAmount        decimal.Decimal
	OutstandingAmount decimal.Decimal
	Status            DocumentStatus
}

// NewInvoice creates a pending invoice with validation
func NewInvoice(number string, clientID uuid.UUID, issueDate time.Time, totalAmount decimal.Decimal) (*Invoice, error) {
	if strings.TrimSpace(number) == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "invoice number is required")
	}
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "client is required")
	}
	if !totalAmount.IsPositive() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "invoice total must be positive")
	}
	if issueDate.IsZero() {
		issueDate = time.Now()
	}
	return &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Number:            number,
		ClientID:          clientID,
		IssueDate:         issueDate,
		TotalAmount:       totalAmount,
		PaidAmount:        decimal.Zero,
		OutstandingAmount: totalAmount,
		Status:            DocumentStatusPending,
	}, nil
}

// ApplyBalance replaces the derived balance fields from a recomputation.
// Idempotent: applying the same paid sum twice yields the same state.
func (i *Invoice) ApplyBalance(paid decimal.Decimal) BalanceSnapshot {
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
func (i *Invoice) CheckSettlement(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewDomainError("VALIDATION_ERROR", "settlement amount must be positive")
	}
	if !i.Status.CanApplyPayment() {
		return shared.NewDomainError("CONFLICT", "invoice does not accept settlements in status "+i.Status.String())
	}
	if amount.GreaterThan(i.OutstandingAmount) {
		return shared.NewDomainError("CONFLICT", "settlement amount exceeds outstanding balance")
	}
	return nil
}

// Cancel marks an unsettled invoice cancelled. Settled or partially
// settled invoices cannot be cancelled.
func (i *Invoice) Cancel() error {
	if i.PaidAmount.IsPositive() || i.Status == DocumentStatusPaid || i.Status == DocumentStatusPartial {
		return shared.NewDomainError("CONFLICT", "cannot cancel an invoice with settlements")
	}
	if i.Status == DocumentStatusCancelled {
		return shared.NewDomainError("CONFLICT", "invoice is already cancelled")
	}
	i.Status = DocumentStatusCancelled
	i.UpdatedAt = time.Now()
	return nil
}

// Snapshot returns the current derived balance fields
func (i *Invoice) Snapshot() BalanceSnapshot {
	return BalanceSnapshot{
		PaidAmount:        i.PaidAmount,
		OutstandingAmount: i.OutstandingAmount,
		Status:            i.Status,
	}
}
