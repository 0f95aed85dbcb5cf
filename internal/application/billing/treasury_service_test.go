package billing

import (
	"context"
	"testing"
	"time"

	ledgerapp "github.com/erp/ledger/internal/application/ledger"
	"github.com/erp/ledger/internal/domain/billing"
	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type treasuryFixture struct {
	svc          *TreasuryService
	movementRepo *MockMovementRepository
	accountRepo  *MockAccountRepository
	sequenceRepo *MockSequenceRepository
	lineRepo     *MockLedgerLineRepository
	entryRepo    *MockJournalEntryRepository
}

func newTreasuryFixture() *treasuryFixture {
	f := &treasuryFixture{
		movementRepo: new(MockMovementRepository),
		accountRepo:  new(MockAccountRepository),
		sequenceRepo: new(MockSequenceRepository),
		lineRepo:     new(MockLedgerLineRepository),
		entryRepo:    new(MockJournalEntryRepository),
	}
	logger := zap.NewNop()
	tx := passthroughTxManager{}
	posting := ledgerapp.NewPostingService(tx, f.entryRepo, f.lineRepo, f.sequenceRepo, logger)
	f.svc = NewTreasuryService(tx, f.movementRepo, f.accountRepo, f.sequenceRepo, posting, logger)
	return f
}

func (f *treasuryFixture) expectPosting() {
	f.lineRepo.On("SaveAll", mock.Anything, mock.AnythingOfType("[]*ledger.LedgerLine")).
		Run(func(args mock.Arguments) {
			lines := args.Get(1).([]*ledger.LedgerLine)
			ids := make([]uuid.UUID, len(lines))
			saved := make([]ledger.LedgerLine, len(lines))
			for i, line := range lines {
				ids[i] = line.ID
				saved[i] = *line
			}
			f.lineRepo.On("FindByIDs", mock.Anything, ids).Return(saved, nil)
		}).Return(nil)
	f.entryRepo.On("Save", mock.Anything, mock.AnythingOfType("*ledger.JournalEntry")).Return(nil)
	f.lineRepo.On("ClaimForEntry", mock.Anything, mock.AnythingOfType("[]uuid.UUID"), mock.AnythingOfType("uuid.UUID")).
		Return(int64(2), nil)
}

func TestCreateMovement(t *testing.T) {
	ctx := context.Background()

	t.Run("incoming movement debits the treasury account", func(t *testing.T) {
		f := newTreasuryFixture()
		treasury := settlementAccount(t, "521000")
		counter := settlementAccount(t, "101000")

		f.accountRepo.On("FindByID", mock.Anything, treasury.ID).Return(treasury, nil)
		f.accountRepo.On("FindByID", mock.Anything, counter.ID).Return(counter, nil)
		f.sequenceRepo.On("Next", mock.Anything, ledger.SequenceMovement).Return(int64(31), nil)
		f.sequenceRepo.On("Next", mock.Anything, ledger.SequenceJournal).Return(int64(32), nil)
		f.movementRepo.On("Save", mock.Anything, mock.AnythingOfType("*billing.MoneyMovement")).Return(nil)
		f.expectPosting()

		result, err := f.svc.CreateMovement(ctx, MovementInput{
			Date:              time.Now(),
			Direction:         billing.MovementIn,
			Amount:            decimal.RequireFromString("5000.00"),
			Label:             "Capital deposit",
			TreasuryAccountID: treasury.ID,
			CounterAccountID:  counter.ID,
		})
		require.NoError(t, err)

		assert.Equal(t, "MVT-000031", result.Movement.VoucherRef)
		assert.Equal(t, "JRN-000032", result.Entry.Number)
		require.Len(t, result.Lines, 2)
		assert.Equal(t, ledger.DirectionDebit, result.Lines[0].Direction)
		assert.Equal(t, treasury.ID, result.Lines[0].AccountID)
		assert.Equal(t, ledger.DirectionCredit, result.Lines[1].Direction)
		assert.Equal(t, counter.ID, result.Lines[1].AccountID)
	})

	t.Run("outgoing movement credits the treasury account", func(t *testing.T) {
		f := newTreasuryFixture()
		treasury := settlementAccount(t, "530000")
		counter := settlementAccount(t, "606000")

		f.accountRepo.On("FindByID", mock.Anything, treasury.ID).Return(treasury, nil)
		f.accountRepo.On("FindByID", mock.Anything, counter.ID).Return(counter, nil)
		f.sequenceRepo.On("Next", mock.Anything, ledger.SequenceMovement).Return(int64(1), nil)
		f.sequenceRepo.On("Next", mock.Anything, ledger.SequenceJournal).Return(int64(1), nil)
		f.movementRepo.On("Save", mock.Anything, mock.AnythingOfType("*billing.MoneyMovement")).Return(nil)
		f.expectPosting()

		result, err := f.svc.CreateMovement(ctx, MovementInput{
			Date:              time.Now(),
			Direction:         billing.MovementOut,
			Amount:            decimal.RequireFromString("120.00"),
			Label:             "Office supplies",
			TreasuryAccountID: treasury.ID,
			CounterAccountID:  counter.ID,
		})
		require.NoError(t, err)

		assert.Equal(t, counter.ID, result.Lines[0].AccountID)
		assert.Equal(t, ledger.DirectionDebit, result.Lines[0].Direction)
		assert.Equal(t, treasury.ID, result.Lines[1].AccountID)
		assert.Equal(t, ledger.DirectionCredit, result.Lines[1].Direction)
	})

	t.Run("rejects a non treasury account", func(t *testing.T) {
		f := newTreasuryFixture()
		expense := settlementAccount(t, "606000")
		f.accountRepo.On("FindByID", mock.Anything, expense.ID).Return(expense, nil)

		_, err := f.svc.CreateMovement(ctx, MovementInput{
			Date:              time.Now(),
			Direction:         billing.MovementIn,
			Amount:            decimal.RequireFromString("10.00"),
			TreasuryAccountID: expense.ID,
			CounterAccountID:  uuid.New(),
		})
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "VALIDATION_ERROR", domainErr.Code)
		f.movementRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects an unknown counter account", func(t *testing.T) {
		f := newTreasuryFixture()
		treasury := settlementAccount(t, "521000")
		missing := uuid.New()
		f.accountRepo.On("FindByID", mock.Anything, treasury.ID).Return(treasury, nil)
		f.accountRepo.On("FindByID", mock.Anything, missing).Return(nil, nil)

		_, err := f.svc.CreateMovement(ctx, MovementInput{
			Date:              time.Now(),
			Direction:         billing.MovementIn,
			Amount:            decimal.RequireFromString("10.00"),
			TreasuryAccountID: treasury.ID,
			CounterAccountID:  missing,
		})
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NOT_FOUND", domainErr.Code)
	})
}
