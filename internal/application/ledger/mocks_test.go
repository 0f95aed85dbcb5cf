package ledger

import (
	"context"
	"time"

	"github.com/erp/ledger/internal/domain/billing"
	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// passthroughTxManager runs the unit of work inline, without a database
type passthroughTxManager struct{}

func (passthroughTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type MockLedgerLineRepository struct {
	mock.Mock
}

func (m *MockLedgerLineRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.LedgerLine, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.LedgerLine), args.Error(1)
}

func (m *MockLedgerLineRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]ledger.LedgerLine, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.LedgerLine), args.Error(1)
}

func (m *MockLedgerLineRepository) FindByMovement(ctx context.Context, movementID uuid.UUID) ([]ledger.LedgerLine, error) {
	args := m.Called(ctx, movementID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.LedgerLine), args.Error(1)
}

func (m *MockLedgerLineRepository) FindByLetterRef(ctx context.Context, letterRef string) ([]ledger.LedgerLine, error) {
	args := m.Called(ctx, letterRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.LedgerLine), args.Error(1)
}

func (m *MockLedgerLineRepository) FindOrphans(ctx context.Context) ([]ledger.LedgerLine, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.LedgerLine), args.Error(1)
}

func (m *MockLedgerLineRepository) FindAll(ctx context.Context, filter ledger.LineFilter) ([]ledger.LedgerLine, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]ledger.LedgerLine), args.Get(1).(int64), args.Error(2)
}

func (m *MockLedgerLineRepository) Save(ctx context.Context, line *ledger.LedgerLine) error {
	args := m.Called(ctx, line)
	return args.Error(0)
}

func (m *MockLedgerLineRepository) SaveAll(ctx context.Context, lines []*ledger.LedgerLine) error {
	args := m.Called(ctx, lines)
	return args.Error(0)
}

func (m *MockLedgerLineRepository) LetterLines(ctx context.Context, ids []uuid.UUID, letterRef string, at time.Time) (int64, error) {
	args := m.Called(ctx, ids, letterRef, at)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerLineRepository) ClaimForEntry(ctx context.Context, ids []uuid.UUID, entryID uuid.UUID) (int64, error) {
	args := m.Called(ctx, ids, entryID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerLineRepository) DeleteUnassignedByInvoice(ctx context.Context, invoiceID uuid.UUID) (int64, error) {
	args := m.Called(ctx, invoiceID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerLineRepository) DeleteByEntry(ctx context.Context, entryID uuid.UUID) (int64, error) {
	args := m.Called(ctx, entryID)
	return args.Get(0).(int64), args.Error(1)
}

type MockJournalEntryRepository struct {
	mock.Mock
}

func (m *MockJournalEntryRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.JournalEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.JournalEntry), args.Error(1)
}

func (m *MockJournalEntryRepository) FindByNumber(ctx context.Context, number string) (*ledger.JournalEntry, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.JournalEntry), args.Error(1)
}

func (m *MockJournalEntryRepository) FindAll(ctx context.Context, filter shared.Filter) ([]ledger.JournalEntry, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]ledger.JournalEntry), args.Get(1).(int64), args.Error(2)
}

func (m *MockJournalEntryRepository) FindBySource(ctx context.Context, sourceType ledger.SourceType, sourceID uuid.UUID) ([]ledger.JournalEntry, error) {
	args := m.Called(ctx, sourceType, sourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.JournalEntry), args.Error(1)
}

func (m *MockJournalEntryRepository) Save(ctx context.Context, entry *ledger.JournalEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockJournalEntryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockSequenceRepository struct {
	mock.Mock
}

func (m *MockSequenceRepository) Next(ctx context.Context, name string) (int64, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(int64), args.Error(1)
}

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Account), args.Error(1)
}

func (m *MockAccountRepository) FindByNumber(ctx context.Context, number string) (*ledger.Account, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Account), args.Error(1)
}

func (m *MockAccountRepository) FindFirstByPrefix(ctx context.Context, prefix string) (*ledger.Account, error) {
	args := m.Called(ctx, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAll(ctx context.Context, filter shared.Filter) ([]ledger.Account, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]ledger.Account), args.Get(1).(int64), args.Error(2)
}

func (m *MockAccountRepository) Save(ctx context.Context, account *ledger.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) IsReferenced(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type MockMovementRepository struct {
	mock.Mock
}

func (m *MockMovementRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.MoneyMovement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.MoneyMovement), args.Error(1)
}

func (m *MockMovementRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]billing.MoneyMovement, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.MoneyMovement), args.Error(1)
}

func (m *MockMovementRepository) FindByIncomingInvoice(ctx context.Context, incomingInvoiceID uuid.UUID) ([]billing.MoneyMovement, error) {
	args := m.Called(ctx, incomingInvoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.MoneyMovement), args.Error(1)
}

func (m *MockMovementRepository) FindAll(ctx context.Context, filter billing.MovementFilter) ([]billing.MoneyMovement, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]billing.MoneyMovement), args.Get(1).(int64), args.Error(2)
}

func (m *MockMovementRepository) Save(ctx context.Context, movement *billing.MoneyMovement) error {
	args := m.Called(ctx, movement)
	return args.Error(0)
}
