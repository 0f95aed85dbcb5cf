package ledger

import (
	"fmt"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Direction represents the debit/credit side of a ledger line
type Direction string

const (
	DirectionDebit  Direction = "DEBIT"
	DirectionCredit Direction = "CREDIT"
)

// IsValid checks if the direction is valid
func (d Direction) IsValid() bool {
	return d == DirectionDebit || d == DirectionCredit
}

// String returns the string representation of Direction
func (d Direction) String() string {
	return string(d)
}

// Opposite returns the other side
func (d Direction) Opposite() Direction {
	if d == DirectionDebit {
		return DirectionCredit
	}
	return DirectionDebit
}

// LineKind tags the business nature of a ledger line
type LineKind string

const (
	KindSale          LineKind = "SALE"
	KindPurchase      LineKind = "PURCHASE"
	KindPayment       LineKind = "PAYMENT"
	KindReceivable    LineKind = "RECEIVABLE"
	KindPayable       LineKind = "PAYABLE"
	KindVATCollected  LineKind = "VAT_COLLECTED"
	KindVATDeductible LineKind = "VAT_DEDUCTIBLE"
	KindAdjustment    LineKind = "ADJUSTMENT"
	KindCapital       LineKind = "CAPITAL"
	KindPayroll       LineKind = "PAYROLL"
)

// IsValid checks if the kind is a valid LineKind
func (k LineKind) IsValid() bool {
	switch k {
	case KindSale, KindPurchase, KindPayment, KindReceivable, KindPayable,
		KindVATCollected, KindVATDeductible, KindAdjustment, KindCapital, KindPayroll:
		return true
	}
	return false
}

// String returns the string representation of LineKind
func (k LineKind) String() string {
	return string(k)
}

// LetterStatus represents the reconciliation state of a ledger line
type LetterStatus string

const (
	LetterStatusUnmatched LetterStatus = "UNMATCHED"
	LetterStatusPartial   LetterStatus = "PARTIAL"
	LetterStatusMatched   LetterStatus = "MATCHED"
)

// IsValid checks if the letter status is valid
func (s LetterStatus) IsValid() bool {
	return s == LetterStatusUnmatched || s == LetterStatusPartial || s == LetterStatusMatched
}

// LedgerLine is one debit-or-credit entry against a single account.
// Amount is always a positive magnitude; semantics come from Direction.
// A nil JournalEntryID means the line is an orphan awaiting finalization.
type LedgerLine struct {
	shared.BaseEntity
	Date      time.Time
	Direction Direction
	Amount    decimal.Decimal
	Kind      LineKind
	AccountID uuid.UUID
	Label     string

	InvoiceID         *uuid.UUID
	IncomingInvoiceID *uuid.UUID
	MoneyMovementID   *uuid.UUID
	ClientID          *uuid.UUID
	SupplierID        *uuid.UUID

	JournalEntryID *uuid.UUID

	LetterRef      *string
	LetterStatus   LetterStatus
	LetteredAmount decimal.Decimal
	LetteredAt     *time.Time
}

// NewLedgerLine creates a new unassigned ledger line with validation
func NewLedgerLine(date time.Time, direction Direction, amount decimal.Decimal, kind LineKind, accountID uuid.UUID, label string) (*LedgerLine, error) {
	if !direction.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("invalid direction: %s", direction))
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("invalid line kind: %s", kind))
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "line amount must be positive")
	}
	if accountID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "account is required")
	}
	if date.IsZero() {
		date = time.Now()
	}
	return &LedgerLine{
		BaseEntity:     shared.NewBaseEntity(),
		Date:           date,
		Direction:      direction,
		Amount:         amount,
		Kind:           kind,
		AccountID:      accountID,
		Label:          label,
		LetterStatus:   LetterStatusUnmatched,
		LetteredAmount: decimal.Zero,
	}, nil
}

// LinkInvoice attaches the line to a receivable document
func (l *LedgerLine) LinkInvoice(invoiceID uuid.UUID) *LedgerLine {
	l.InvoiceID = &invoiceID
	return l
}

// LinkIncomingInvoice attaches the line to a payable document
func (l *LedgerLine) LinkIncomingInvoice(incomingInvoiceID uuid.UUID) *LedgerLine {
	l.IncomingInvoiceID = &incomingInvoiceID
	return l
}

// LinkMovement attaches the line to a treasury movement
func (l *LedgerLine) LinkMovement(movementID uuid.UUID) *LedgerLine {
	l.MoneyMovementID = &movementID
	return l
}

// LinkClient attaches the line to a client
func (l *LedgerLine) LinkClient(clientID uuid.UUID) *LedgerLine {
	l.ClientID = &clientID
	return l
}

// LinkSupplier attaches the line to a supplier
func (l *LedgerLine) LinkSupplier(supplierID uuid.UUID) *LedgerLine {
	l.SupplierID = &supplierID
	return l
}

// IsOrphan reports whether the line has not been assigned to a journal entry
func (l *LedgerLine) IsOrphan() bool {
	return l.JournalEntryID == nil
}

// SignedAmount returns the amount signed by direction (debit positive)
func (l *LedgerLine) SignedAmount() decimal.Decimal {
	if l.Direction == DirectionDebit {
		return l.Amount
	}
	return l.Amount.Neg()
}

// IsFullyLettered reports whether the lettered amount covers the full line
func (l *LedgerLine) IsFullyLettered() bool {
	return l.LetterRef != nil && l.LetteredAmount.Equal(l.Amount)
}

// Letter marks the line as matched under the given reference.
// An existing LetteredAt timestamp is preserved so re-runs do not
// rewrite reconciliation history.
func (l *LedgerLine) Letter(ref string, now time.Time) {
	l.LetterRef = &ref
	l.LetterStatus = LetterStatusMatched
	l.LetteredAmount = l.Amount
	if l.LetteredAt == nil {
		l.LetteredAt = &now
	}
	l.UpdatedAt = now
}
