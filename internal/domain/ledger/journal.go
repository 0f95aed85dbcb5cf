package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tolerance is the margin within which debit and credit sums are
// considered equal. It absorbs rounding from upstream rate math,
// not genuine imbalance.
var Tolerance = decimal.New(1, -2) // 0.01

// Sequence counter names and display prefixes
const (
	SequenceJournal  = "JRN"
	SequenceLetter   = "LTR"
	SequenceMovement = "MVT"
)

// FormatJournalNumber renders a journal sequence value as JRN-000042
func FormatJournalNumber(value int64) string {
	return fmt.Sprintf("%s-%06d", SequenceJournal, value)
}

// FormatLetterRef renders a lettering sequence value as LTR-000042
func FormatLetterRef(value int64) string {
	return fmt.Sprintf("%s-%06d", SequenceLetter, value)
}

// FormatVoucherRef renders a movement sequence value as MVT-000042
func FormatVoucherRef(value int64) string {
	return fmt.Sprintf("%s-%06d", SequenceMovement, value)
}

// SourceType names the business process that originated a journal entry
type SourceType string

const (
	SourceInvoice         SourceType = "INVOICE"
	SourceIncomingInvoice SourceType = "INCOMING_INVOICE"
	SourceMoneyMovement   SourceType = "MONEY_MOVEMENT"
	SourceCapitalCall     SourceType = "CAPITAL_CALL"
	SourcePayroll         SourceType = "PAYROLL"
	SourceAdjustment      SourceType = "ADJUSTMENT"
	SourceOther           SourceType = "OTHER"
)

// IsValid checks if the source type is valid
func (s SourceType) IsValid() bool {
	switch s {
	case SourceInvoice, SourceIncomingInvoice, SourceMoneyMovement,
		SourceCapitalCall, SourcePayroll, SourceAdjustment, SourceOther:
		return true
	}
	return false
}

// String returns the string representation of SourceType
func (s SourceType) String() string {
	return string(s)
}

// EntryStatus represents the lifecycle state of a journal entry
type EntryStatus string

const (
	EntryStatusPosted EntryStatus = "POSTED"
)

// JournalEntry is an append-only, balanced set of ledger lines sharing
// one business event. Lines reference the entry by back-reference; the
// line set is fixed once posted.
type JournalEntry struct {
	shared.BaseAggregateRoot
	Number      string
	Date        time.Time
	SourceType  SourceType
	SourceID    *uuid.UUID
	Description string
	Status      EntryStatus
}

// NewJournalEntry creates a posted journal entry with validation.
// Balance of the line set is the finalizer's responsibility; the entry
// itself only validates its own fields.
func NewJournalEntry(number string, date time.Time, sourceType SourceType, sourceID *uuid.UUID, description string) (*JournalEntry, error) {
	if strings.TrimSpace(number) == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "journal number is required")
	}
	if !sourceType.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("invalid source type: %s", sourceType))
	}
	if date.IsZero() {
		date = time.Now()
	}
	return &JournalEntry{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Number:            number,
		Date:              date,
		SourceType:        sourceType,
		SourceID:          sourceID,
		Description:       description,
		Status:            EntryStatusPosted,
	}, nil
}

// BalanceOf sums a line set and returns its debit total, credit total
// and signed difference (debit minus credit).
func BalanceOf(lines []LedgerLine) (debit, credit, diff decimal.Decimal) {
	debit = decimal.Zero
	credit = decimal.Zero
	for i := range lines {
		if lines[i].Direction == DirectionDebit {
			debit = debit.Add(lines[i].Amount)
		} else {
			credit = credit.Add(lines[i].Amount)
		}
	}
	return debit, credit, debit.Sub(credit)
}

// IsBalanced reports whether a line set sums to zero within Tolerance
func IsBalanced(lines []LedgerLine) bool {
	_, _, diff := BalanceOf(lines)
	return diff.Abs().LessThanOrEqual(Tolerance)
}

// CheckBalanced validates the balance invariant for a candidate line set
func CheckBalanced(lines []LedgerLine) error {
	if len(lines) == 0 {
		return shared.NewDomainError("VALIDATION_ERROR", "journal entry requires at least one line")
	}
	debit, credit, diff := BalanceOf(lines)
	if diff.Abs().GreaterThan(Tolerance) {
		return shared.NewDomainError("IMBALANCED_ENTRY",
			fmt.Sprintf("entry does not balance: debit %s, credit %s", debit.StringFixed(2), credit.StringFixed(2)))
	}
	return nil
}
