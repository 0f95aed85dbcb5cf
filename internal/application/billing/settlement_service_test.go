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

type settlementFixture struct {
	svc          *SettlementService
	invoiceRepo  *MockInvoiceRepository
	incomingRepo *MockIncomingInvoiceRepository
	movementRepo *MockMovementRepository
	accountRepo  *MockAccountRepository
	sequenceRepo *MockSequenceRepository
	lineRepo     *MockLedgerLineRepository
	entryRepo    *MockJournalEntryRepository
}

func newSettlementFixture() *settlementFixture {
	f := &settlementFixture{
		invoiceRepo:  new(MockInvoiceRepository),
		incomingRepo: new(MockIncomingInvoiceRepository),
		movementRepo: new(MockMovementRepository),
		accountRepo:  new(MockAccountRepository),
		sequenceRepo: new(MockSequenceRepository),
		lineRepo:     new(MockLedgerLineRepository),
		entryRepo:    new(MockJournalEntryRepository),
	}
	logger := zap.NewNop()
	tx := passthroughTxManager{}
	posting := ledgerapp.NewPostingService(tx, f.entryRepo, f.lineRepo, f.sequenceRepo, logger)
	balance := NewBalanceService(f.invoiceRepo, f.incomingRepo, f.movementRepo, logger)
	lettering := ledgerapp.NewLetteringService(tx, f.lineRepo, f.accountRepo, f.movementRepo, f.sequenceRepo, logger)
	f.svc = NewSettlementService(tx, f.invoiceRepo, f.incomingRepo, f.movementRepo, f.accountRepo,
		f.sequenceRepo, posting, balance, lettering, logger)
	return f
}

func settlementAccount(t *testing.T, number string) *ledger.Account {
	t.Helper()
	account, err := ledger.NewAccount(number, "account "+number)
	require.NoError(t, err)
	return account
}

// expectPosting wires the line repository so the claim inside the
// journal finalizer sees exactly the lines handed to it.
func (f *settlementFixture) expectPosting(claimed int64) {
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
			if lines[0].MoneyMovementID != nil {
				f.lineRepo.On("FindByMovement", mock.Anything, *lines[0].MoneyMovementID).Return(saved, nil)
			}
		}).Return(nil)
	f.entryRepo.On("Save", mock.Anything, mock.AnythingOfType("*ledger.JournalEntry")).Return(nil)
	f.lineRepo.On("ClaimForEntry", mock.Anything, mock.AnythingOfType("[]uuid.UUID"), mock.AnythingOfType("uuid.UUID")).
		Return(claimed, nil)
}

// expectMovementSave captures the saved movement and makes the
// repository serve it back for the balance and lettering reads.
func (f *settlementFixture) expectMovementSave(forInvoice bool) {
	f.movementRepo.On("Save", mock.Anything, mock.AnythingOfType("*billing.MoneyMovement")).
		Run(func(args mock.Arguments) {
			movement := args.Get(1).(*billing.MoneyMovement)
			f.movementRepo.On("FindByID", mock.Anything, movement.ID).Return(movement, nil)
			if forInvoice {
				f.movementRepo.On("FindByInvoice", mock.Anything, *movement.InvoiceID).
					Return([]billing.MoneyMovement{*movement}, nil)
			} else {
				f.movementRepo.On("FindByIncomingInvoice", mock.Anything, *movement.IncomingInvoiceID).
					Return([]billing.MoneyMovement{*movement}, nil)
			}
		}).Return(nil)
}

func TestSettleInvoice(t *testing.T) {
	ctx := context.Background()

	t.Run("full settlement marks the invoice paid and letters it", func(t *testing.T) {
		f := newSettlementFixture()
		invoice := buildInvoice(t, "1000.00")
		treasury := settlementAccount(t, "521000")
		receivable := settlementAccount(t, "411000")

		f.invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)
		f.invoiceRepo.On("SaveWithLock", mock.Anything, invoice).Return(nil)
		f.accountRepo.On("FindByID", mock.Anything, treasury.ID).Return(treasury, nil)
		f.accountRepo.On("FindByID", mock.Anything, receivable.ID).Return(receivable, nil)
		f.accountRepo.On("FindFirstByPrefix", mock.Anything, ledger.PrefixReceivable).Return(receivable, nil)
		f.sequenceRepo.On("Next", mock.Anything, ledger.SequenceMovement).Return(int64(8), nil)
		f.sequenceRepo.On("Next", mock.Anything, ledger.SequenceJournal).Return(int64(15), nil)
		f.sequenceRepo.On("Next", mock.Anything, ledger.SequenceLetter).Return(int64(2), nil)
		f.lineRepo.On("FindByLetterRef", mock.Anything, "LTR-000002").Return([]ledger.LedgerLine{}, nil)
		f.lineRepo.On("LetterLines", mock.Anything, mock.AnythingOfType("[]uuid.UUID"), "LTR-000002", mock.AnythingOfType("time.Time")).Return(int64(2), nil)
		f.expectMovementSave(true)
		f.expectPosting(2)

		result, err := f.svc.SettleInvoice(ctx, SettleInput{
			DocumentID:        invoice.ID,
			Amount:            decimal.RequireFromString("1000.00"),
			PaymentDate:       time.Now(),
			TreasuryAccountID: treasury.ID,
		})
		require.NoError(t, err)

		assert.Equal(t, "MVT-000008", result.Movement.VoucherRef)
		assert.Equal(t, "JRN-000015", result.Entry.Number)
		assert.Equal(t, billing.DocumentStatusPaid, result.Balance.Status)
		assert.True(t, result.Balance.OutstandingAmount.IsZero())

		assert.Equal(t, ledger.DirectionDebit, result.DebitLine.Direction)
		assert.Equal(t, treasury.ID, result.DebitLine.AccountID)
		assert.Equal(t, ledger.DirectionCredit, result.CreditLine.Direction)
		assert.Equal(t, receivable.ID, result.CreditLine.AccountID)
		assert.Equal(t, ledger.KindPayment, result.DebitLine.Kind)
		assert.Equal(t, invoice.ID, *result.CreditLine.InvoiceID)

		require.NotNil(t, result.Lettering)
		assert.Equal(t, ledgerapp.MatchMatched, result.Lettering.Status)
		assert.Equal(t, "LTR-000002", result.Lettering.LetterRef)
	})

	t.Run("partial settlement leaves the invoice partial", func(t *testing.T) {
		f := newSettlementFixture()
		invoice := buildInvoice(t, "1000.00")
		treasury := settlementAccount(t, "530000")
		receivable := settlementAccount(t, "411000")

		f.invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)
		f.invoiceRepo.On("SaveWithLock", mock.Anything, invoice).Return(nil)
		f.accountRepo.On("FindByID", mock.Anything, treasury.ID).Return(treasury, nil)
		f.accountRepo.On("FindByID", mock.Anything, receivable.ID).Return(receivable, nil)
		f.accountRepo.On("FindFirstByPrefix", mock.Anything, ledger.PrefixReceivable).Return(receivable, nil)
		f.sequenceRepo.On("Next", mock.Anything, ledger.SequenceMovement).Return(int64(1), nil)
		f.sequenceRepo.On("Next", mock.Anything, ledger.SequenceJournal).Return(int64(2), nil)
		f.sequenceRepo.On("Next", mock.Anything, ledger.SequenceLetter).Return(int64(3), nil)
		f.lineRepo.On("FindByLetterRef", mock.Anything, "LTR-000003").Return([]ledger.LedgerLine{}, nil)
		f.lineRepo.On("LetterLines", mock.Anything, mock.AnythingOfType("[]uuid.UUID"), "LTR-000003", mock.AnythingOfType("time.Time")).Return(int64(2), nil)
		f.expectMovementSave(true)
		f.expectPosting(2)

		result, err := f.svc.SettleInvoice(ctx, SettleInput{
			DocumentID:        invoice.ID,
			Amount:            decimal.RequireFromString("400.00"),
			PaymentDate:       time.Now(),
			TreasuryAccountID: treasury.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, billing.DocumentStatusPartial, result.Balance.Status)
		assert.True(t, result.Balance.OutstandingAmount.Equal(decimal.RequireFromString("600.00")))
	})

	t.Run("overpayment is rejected before any write", func(t *testing.T) {
		f := newSettlementFixture()
		invoice := buildInvoice(t, "1000.00")

		f.invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)

		_, err := f.svc.SettleInvoice(ctx, SettleInput{
			DocumentID:        invoice.ID,
			Amount:            decimal.RequireFromString("1200.00"),
			PaymentDate:       time.Now(),
			TreasuryAccountID: uuid.New(),
		})
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "CONFLICT", domainErr.Code)
		f.movementRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		f.lineRepo.AssertNotCalled(t, "SaveAll", mock.Anything, mock.Anything)
	})

	t.Run("settling a cancelled invoice is rejected", func(t *testing.T) {
		f := newSettlementFixture()
		invoice := buildInvoice(t, "1000.00")
		require.NoError(t, invoice.Cancel())

		f.invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)

		_, err := f.svc.SettleInvoice(ctx, SettleInput{
			DocumentID:        invoice.ID,
			Amount:            decimal.RequireFromString("100.00"),
			PaymentDate:       time.Now(),
			TreasuryAccountID: uuid.New(),
		})
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "CONFLICT", domainErr.Code)
	})

	t.Run("non treasury account is rejected", func(t *testing.T) {
		f := newSettlementFixture()
		invoice := buildInvoice(t, "1000.00")
		expense := settlementAccount(t, "606000")

		f.invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)
		f.accountRepo.On("FindByID", mock.Anything, expense.ID).Return(expense, nil)

		_, err := f.svc.SettleInvoice(ctx, SettleInput{
			DocumentID:        invoice.ID,
			Amount:            decimal.RequireFromString("100.00"),
			PaymentDate:       time.Now(),
			TreasuryAccountID: expense.ID,
		})
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "VALIDATION_ERROR", domainErr.Code)
	})

	t.Run("unknown invoice fails", func(t *testing.T) {
		f := newSettlementFixture()
		id := uuid.New()
		f.invoiceRepo.On("FindByID", mock.Anything, id).Return(nil, nil)

		_, err := f.svc.SettleInvoice(ctx, SettleInput{
			DocumentID:        id,
			Amount:            decimal.RequireFromString("100.00"),
			TreasuryAccountID: uuid.New(),
		})
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NOT_FOUND", domainErr.Code)
	})
}

func TestSettleIncomingInvoice(t *testing.T) {
	ctx := context.Background()

	t.Run("full settlement debits the payable and credits the treasury", func(t *testing.T) {
		f := newSettlementFixture()
		invoice := buildIncomingInvoice(t, "750.00")
		treasury := settlementAccount(t, "521000")
		payable := settlementAccount(t, "401000")

		f.incomingRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)
		f.incomingRepo.On("SaveWithLock", mock.Anything, invoice).Return(nil)
		f.accountRepo.On("FindByID", mock.Anything, treasury.ID).Return(treasury, nil)
		f.accountRepo.On("FindByID", mock.Anything, payable.ID).Return(payable, nil)
		f.accountRepo.On("FindFirstByPrefix", mock.Anything, ledger.PrefixPayable).Return(payable, nil)
		f.sequenceRepo.On("Next", mock.Anything, ledger.SequenceMovement).Return(int64(4), nil)
		f.sequenceRepo.On("Next", mock.Anything, ledger.SequenceJournal).Return(int64(5), nil)
		f.sequenceRepo.On("Next", mock.Anything, ledger.SequenceLetter).Return(int64(6), nil)
		f.lineRepo.On("FindByLetterRef", mock.Anything, "LTR-000006").Return([]ledger.LedgerLine{}, nil)
		f.lineRepo.On("LetterLines", mock.Anything, mock.AnythingOfType("[]uuid.UUID"), "LTR-000006", mock.AnythingOfType("time.Time")).Return(int64(2), nil)
		f.expectMovementSave(false)
		f.expectPosting(2)

		result, err := f.svc.SettleIncomingInvoice(ctx, SettleInput{
			DocumentID:        invoice.ID,
			Amount:            decimal.RequireFromString("750.00"),
			PaymentDate:       time.Now(),
			TreasuryAccountID: treasury.ID,
		})
		require.NoError(t, err)

		assert.Equal(t, billing.MovementOut, result.Movement.Direction)
		assert.Equal(t, payable.ID, result.DebitLine.AccountID)
		assert.Equal(t, treasury.ID, result.CreditLine.AccountID)
		assert.Equal(t, invoice.ID, *result.DebitLine.IncomingInvoiceID)
		assert.Equal(t, billing.DocumentStatusPaid, result.Balance.Status)
	})

	t.Run("overpayment is rejected", func(t *testing.T) {
		f := newSettlementFixture()
		invoice := buildIncomingInvoice(t, "750.00")

		f.incomingRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)

		_, err := f.svc.SettleIncomingInvoice(ctx, SettleInput{
			DocumentID:        invoice.ID,
			Amount:            decimal.RequireFromString("800.00"),
			PaymentDate:       time.Now(),
			TreasuryAccountID: uuid.New(),
		})
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "CONFLICT", domainErr.Code)
		f.movementRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}
