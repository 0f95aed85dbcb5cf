package billing

import (
	"github.com/shopspring/decimal"
)

// DocumentType distinguishes the two settleable document sides
type DocumentType string

const (
	DocumentTypeInvoice         DocumentType = "INVOICE"
	DocumentTypeIncomingInvoice DocumentType = "INCOMING_INVOICE"
)

// IsValid checks if the document type is valid
func (t DocumentType) IsValid() bool {
	return t == DocumentTypeInvoice || t == DocumentTypeIncomingInvoice
}

// String returns the string representation of DocumentType
func (t DocumentType) String() string {
	return string(t)
}

// DocumentStatus represents the payment status of a document
type DocumentStatus string

const (
	DocumentStatusPending   DocumentStatus = "PENDING"
	DocumentStatusPartial   DocumentStatus = "PARTIAL"
	DocumentStatusPaid      DocumentStatus = "PAID"
	DocumentStatusCancelled DocumentStatus = "CANCELLED"
)

// IsValid checks if the status is valid
func (s DocumentStatus) IsValid() bool {
	switch s {
	case DocumentStatusPending, DocumentStatusPartial, DocumentStatusPaid, DocumentStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of DocumentStatus
func (s DocumentStatus) String() string {
	return string(s)
}

// CanApplyPayment returns true if settlements can be applied in this status
func (s DocumentStatus) CanApplyPayment() bool {
	return s == DocumentStatusPending || s == DocumentStatusPartial
}

// StatusFor derives the document status from paid and total amounts:
// PAID when paid covers total, PARTIAL when strictly between zero and
// total, PENDING otherwise.
func StatusFor(paid, total decimal.Decimal) DocumentStatus {
	switch {
	case total.IsPositive() && paid.GreaterThanOrEqual(total):
		return DocumentStatusPaid
	case paid.IsPositive() && paid.LessThan(total):
		return DocumentStatusPartial
	default:
		return DocumentStatusPending
	}
}

// BalanceSnapshot is the result of a balance recomputation
type BalanceSnapshot struct {
	PaidAmount        decimal.Decimal `json:"paid_amount"`
	OutstandingAmount decimal.Decimal `json:"outstanding_amount"`
	Status            DocumentStatus  `json:"status"`
}
