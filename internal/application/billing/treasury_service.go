package billing

import (
	"context"
	"fmt"
	"time"

	ledgerapp "github.com/erp/ledger/internal/application/ledger"
	"github.com/erp/ledger/internal/domain/billing"
	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TreasuryService records standalone treasury movements (deposits,
// withdrawals, transfers) that are not tied to a document, producing
// the movement, its two ledger lines and the journal entry together.
type TreasuryService struct {
	txManager    ledger.TxManager
	movementRepo billing.MoneyMovementRepository
	accountRepo  ledger.AccountRepository
	sequenceRepo ledger.SequenceRepository
	posting      *ledgerapp.PostingService
	logger       *zap.Logger
}

// NewTreasuryService creates a new treasury service
func NewTreasuryService(
	txManager ledger.TxManager,
	movementRepo billing.MoneyMovementRepository,
	accountRepo ledger.AccountRepository,
	sequenceRepo ledger.SequenceRepository,
	posting *ledgerapp.PostingService,
	logger *zap.Logger,
) *TreasuryService {
	return &TreasuryService{
		txManager:    txManager,
		movementRepo: movementRepo,
		accountRepo:  accountRepo,
		sequenceRepo: sequenceRepo,
		posting:      posting,
		logger:       logger,
	}
}

// MovementInput describes a standalone treasury movement
type MovementInput struct {
	Date              time.Time
	Direction         billing.MovementDirection
	Amount            decimal.Decimal
	Label             string
	TreasuryAccountID uuid.UUID
	CounterAccountID  uuid.UUID
}

// MovementResult reports the created movement and its journal entry
type MovementResult struct {
	Movement *billing.MoneyMovement `json:"movement"`
	Entry    *ledger.JournalEntry   `json:"entry"`
	Lines    []*ledger.LedgerLine   `json:"lines"`
}

// CreateMovement records the movement and posts its balanced entry in
// one unit of work. An IN movement debits the treasury account and
// credits the counter account; OUT mirrors it.
func (s *TreasuryService) CreateMovement(ctx context.Context, input MovementInput) (*MovementResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "treasury", "create_movement")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrAmount, input.Amount.String(),
		"direction", string(input.Direction),
	)

	treasuryAccount, err := s.accountRepo.FindByID(ctx, input.TreasuryAccountID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load treasury account: %w", err)
	}
	if treasuryAccount == nil {
		err := shared.NewDomainError("NOT_FOUND", "treasury account not found")
		telemetry.RecordError(span, err)
		return nil, err
	}
	if !treasuryAccount.Family().IsTreasury() {
		err := shared.NewDomainError("VALIDATION_ERROR",
			fmt.Sprintf("account %s is not a treasury account", treasuryAccount.Number))
		telemetry.RecordError(span, err)
		return nil, err
	}

	counterAccount, err := s.accountRepo.FindByID(ctx, input.CounterAccountID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load counter account: %w", err)
	}
	if counterAccount == nil {
		err := shared.NewDomainError("NOT_FOUND", "counter account not found")
		telemetry.RecordError(span, err)
		return nil, err
	}

	var result *MovementResult
	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		seq, err := s.sequenceRepo.Next(ctx, ledger.SequenceMovement)
		if err != nil {
			return fmt.Errorf("failed to allocate voucher reference: %w", err)
		}

		movement, err := billing.NewMoneyMovement(input.Date, input.Direction, input.Amount,
			input.Label, ledger.FormatVoucherRef(seq), treasuryAccount.ID)
		if err != nil {
			return err
		}
		if err := s.movementRepo.Save(ctx, movement); err != nil {
			return fmt.Errorf("failed to save movement: %w", err)
		}

		debitAccount, creditAccount := treasuryAccount, counterAccount
		if input.Direction == billing.MovementOut {
			debitAccount, creditAccount = counterAccount, treasuryAccount
		}

		debitLine, err := ledger.NewLedgerLine(input.Date, ledger.DirectionDebit, input.Amount,
			ledger.KindPayment, debitAccount.ID, input.Label)
		if err != nil {
			return err
		}
		debitLine.LinkMovement(movement.ID)

		creditLine, err := ledger.NewLedgerLine(input.Date, ledger.DirectionCredit, input.Amount,
			ledger.KindPayment, creditAccount.ID, input.Label)
		if err != nil {
			return err
		}
		creditLine.LinkMovement(movement.ID)

		movementID := movement.ID
		entry, err := s.posting.PostNewLines(ctx, ledgerapp.PostBatchInput{
			SourceType:  ledger.SourceMoneyMovement,
			SourceID:    &movementID,
			Date:        input.Date,
			Description: input.Label,
		}, []*ledger.LedgerLine{debitLine, creditLine})
		if err != nil {
			return err
		}

		result = &MovementResult{
			Movement: movement,
			Entry:    entry,
			Lines:    []*ledger.LedgerLine{debitLine, creditLine},
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("treasury movement recorded",
		zap.String("voucher", result.Movement.VoucherRef),
		zap.String("entry", result.Entry.Number),
		zap.String("direction", string(input.Direction)))

	return result, nil
}

// List pages through treasury movements
func (s *TreasuryService) List(ctx context.Context, filter billing.MovementFilter) (shared.Paginated[billing.MoneyMovement], error) {
	movements, total, err := s.movementRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[billing.MoneyMovement]{}, fmt.Errorf("failed to list movements: %w", err)
	}
	page := filter.Page
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	if page <= 0 {
		page = 1
	}
	return shared.NewPaginated(movements, total, page, pageSize), nil
}
