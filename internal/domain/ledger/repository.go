package ledger

import (
	"context"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
)

// TxManager runs a function inside one all-or-nothing unit of work.
// Repository calls made with the context passed to fn join that unit.
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// LineFilter defines filtering options for ledger line queries
type LineFilter struct {
	shared.Filter
	AccountID         *uuid.UUID
	InvoiceID         *uuid.UUID
	IncomingInvoiceID *uuid.UUID
	MoneyMovementID   *uuid.UUID
	JournalEntryID    *uuid.UUID
	Kind              *LineKind
	Direction         *Direction
	LetterStatus      *LetterStatus
	FromDate          *time.Time
	ToDate            *time.Time
	OrphansOnly       bool
}

// AccountRepository defines the interface for chart-of-accounts persistence
type AccountRepository interface {
	// FindByID finds an account by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)

	// FindByNumber finds an account by its exact number
	FindByNumber(ctx context.Context, number string) (*Account, error)

	// FindFirstByPrefix finds the lowest-numbered account in a prefix family
	FindFirstByPrefix(ctx context.Context, prefix string) (*Account, error)

	// FindAll lists accounts, optionally filtered by number/label search
	FindAll(ctx context.Context, filter shared.Filter) ([]Account, int64, error)

	// Save creates or updates an account
	Save(ctx context.Context, account *Account) error

	// IsReferenced reports whether any ledger line points at the account
	IsReferenced(ctx context.Context, id uuid.UUID) (bool, error)
}

// LedgerLineRepository defines the interface for ledger line persistence
type LedgerLineRepository interface {
	// FindByID finds a line by ID
	FindByID(ctx context.Context, id uuid.UUID) (*LedgerLine, error)

	// FindByIDs loads the given lines in one query
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]LedgerLine, error)

	// FindByMovement loads all lines linked to a treasury movement
	FindByMovement(ctx context.Context, movementID uuid.UUID) ([]LedgerLine, error)

	// FindByLetterRef loads the full lettering group for a token
	FindByLetterRef(ctx context.Context, letterRef string) ([]LedgerLine, error)

	// FindOrphans loads all lines with no journal entry assigned
	FindOrphans(ctx context.Context) ([]LedgerLine, error)

	// FindAll lists lines with filtering and pagination
	FindAll(ctx context.Context, filter LineFilter) ([]LedgerLine, int64, error)

	// Save creates or updates a line
	Save(ctx context.Context, line *LedgerLine) error

	// SaveAll persists a batch of lines
	SaveAll(ctx context.Context, lines []*LedgerLine) error

	// LetterLines marks the given lines as matched under letterRef,
	// touching only the reconciliation columns. A concurrent claim of
	// journal_entry_id is never overwritten; an existing lettered_at
	// is preserved. Returns the number of rows updated.
	LetterLines(ctx context.Context, ids []uuid.UUID, letterRef string, at time.Time) (int64, error)

	// ClaimForEntry assigns unassigned lines to a journal entry with
	// `WHERE id IN (?) AND journal_entry_id IS NULL` and returns the
	// number of rows claimed. A count lower than len(ids) means another
	// finalization won the race.
	ClaimForEntry(ctx context.Context, ids []uuid.UUID, entryID uuid.UUID) (int64, error)

	// DeleteUnassignedByInvoice removes an invoice's orphan lines.
	// Used only by the cancellation workflow.
	DeleteUnassignedByInvoice(ctx context.Context, invoiceID uuid.UUID) (int64, error)

	// DeleteByEntry removes all lines of one journal entry. Used only
	// by the cancellation workflow when backing out a registration
	// entry.
	DeleteByEntry(ctx context.Context, entryID uuid.UUID) (int64, error)
}

// JournalEntryRepository defines the interface for journal entry persistence
type JournalEntryRepository interface {
	// FindByID finds a journal entry by ID
	FindByID(ctx context.Context, id uuid.UUID) (*JournalEntry, error)

	// FindByNumber finds a journal entry by its unique number
	FindByNumber(ctx context.Context, number string) (*JournalEntry, error)

	// FindAll lists journal entries with pagination
	FindAll(ctx context.Context, filter shared.Filter) ([]JournalEntry, int64, error)

	// FindBySource loads the entries originated by one business document
	FindBySource(ctx context.Context, sourceType SourceType, sourceID uuid.UUID) ([]JournalEntry, error)

	// Save creates or updates a journal entry
	Save(ctx context.Context, entry *JournalEntry) error

	// Delete removes a journal entry. Used only by the cancellation
	// workflow after its lines were deleted.
	Delete(ctx context.Context, id uuid.UUID) error
}

// SequenceRepository issues strictly increasing values per counter name.
// A missing counter is created at zero and incremented in the same
// atomic statement.
type SequenceRepository interface {
	// Next atomically increments the named counter and returns its value
	Next(ctx context.Context, name string) (int64, error)
}
