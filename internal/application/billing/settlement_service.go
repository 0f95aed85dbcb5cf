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

// SettlementService applies a treasury payment against a receivable or
// payable document: it records the movement, posts the two settlement
// lines as one balanced journal entry, recomputes the document balance
// in the same unit of work, then opportunistically runs lettering.
type SettlementService struct {
	txManager    ledger.TxManager
	invoiceRepo  billing.InvoiceRepository
	incomingRepo billing.IncomingInvoiceRepository
	movementRepo billing.MoneyMovementRepository
	accountRepo  ledger.AccountRepository
	sequenceRepo ledger.SequenceRepository
	posting      *ledgerapp.PostingService
	balance      *BalanceService
	lettering    *ledgerapp.LetteringService
	logger       *zap.Logger
}

// NewSettlementService creates a new settlement service
func NewSettlementService(
	txManager ledger.TxManager,
	invoiceRepo billing.InvoiceRepository,
	incomingRepo billing.IncomingInvoiceRepository,
	movementRepo billing.MoneyMovementRepository,
	accountRepo ledger.AccountRepository,
	sequenceRepo ledger.SequenceRepository,
	posting *ledgerapp.PostingService,
	balance *BalanceService,
	lettering *ledgerapp.LetteringService,
	logger *zap.Logger,
) *SettlementService {
	return &SettlementService{
		txManager:    txManager,
		invoiceRepo:  invoiceRepo,
		incomingRepo: incomingRepo,
		movementRepo: movementRepo,
		accountRepo:  accountRepo,
		sequenceRepo: sequenceRepo,
		posting:      posting,
		balance:      balance,
		lettering:    lettering,
		logger:       logger,
	}
}

// SettleInput describes a settlement request
type SettleInput struct {
	DocumentID        uuid.UUID
	Amount            decimal.Decimal
	PaymentDate       time.Time
	TreasuryAccountID uuid.UUID
	Label             string
}

// SettlementResult reports the artifacts of a settlement
type SettlementResult struct {
	Movement   *billing.MoneyMovement   `json:"movement"`
	Entry      *ledger.JournalEntry     `json:"entry"`
	DebitLine  *ledger.LedgerLine       `json:"debit_line"`
	CreditLine *ledger.LedgerLine       `json:"credit_line"`
	Balance    *billing.BalanceSnapshot `json:"balance"`
	Lettering  *ledgerapp.MatchResult   `json:"lettering,omitempty"`
}

// SettleInvoice applies an incoming payment to a receivable document.
// Rejected with CONFLICT before any write when the amount exceeds the
// remaining outstanding balance.
func (s *SettlementService) SettleInvoice(ctx context.Context, input SettleInput) (*SettlementResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "settlement", "settle_invoice")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrDocumentID, input.DocumentID.String(),
		telemetry.SpanAttrAmount, input.Amount.String(),
	)

	invoice, err := s.invoiceRepo.FindByID(ctx, input.DocumentID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load invoice: %w", err)
	}
	if invoice == nil {
		err := shared.NewDomainError("NOT_FOUND", "invoice not found")
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := invoice.CheckSettlement(input.Amount); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	treasuryAccount, err := s.treasuryAccount(ctx, input.TreasuryAccountID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	receivableAccount, err := s.counterAccount(ctx, ledger.PrefixReceivable, "receivable")
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	label := input.Label
	if label == "" {
		label = fmt.Sprintf("Settlement of %s", invoice.Number)
	}

	var result *SettlementResult
	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		seq, err := s.sequenceRepo.Next(ctx, ledger.SequenceMovement)
		if err != nil {
			return fmt.Errorf("failed to allocate voucher reference: %w", err)
		}

		movement, err := billing.NewMoneyMovement(input.PaymentDate, billing.MovementIn, input.Amount,
			label, ledger.FormatVoucherRef(seq), treasuryAccount.ID)
		if err != nil {
			return err
		}
		if err := movement.LinkInvoice(invoice.ID); err != nil {
			return err
		}
		if err := s.movementRepo.Save(ctx, movement); err != nil {
			return fmt.Errorf("failed to save movement: %w", err)
		}

		debitLine, err := ledger.NewLedgerLine(input.PaymentDate, ledger.DirectionDebit, input.Amount,
			ledger.KindPayment, treasuryAccount.ID, label)
		if err != nil {
			return err
		}
		debitLine.LinkInvoice(invoice.ID).LinkMovement(movement.ID).LinkClient(invoice.ClientID)

		creditLine, err := ledger.NewLedgerLine(input.PaymentDate, ledger.DirectionCredit, input.Amount,
			ledger.KindPayment, receivableAccount.ID, label)
		if err != nil {
			return err
		}
		creditLine.LinkInvoice(invoice.ID).LinkMovement(movement.ID).LinkClient(invoice.ClientID)

		movementID := movement.ID
		entry, err := s.posting.PostNewLines(ctx, ledgerapp.PostBatchInput{
			SourceType:  ledger.SourceMoneyMovement,
			SourceID:    &movementID,
			Date:        input.PaymentDate,
			Description: label,
		}, []*ledger.LedgerLine{debitLine, creditLine})
		if err != nil {
			return err
		}

		snapshot, err := s.balance.Recompute(ctx, invoice.ID, billing.DocumentTypeInvoice)
		if err != nil {
			return err
		}

		result = &SettlementResult{
			Movement:   movement,
			Entry:      entry,
			DebitLine:  debitLine,
			CreditLine: creditLine,
			Balance:    snapshot,
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	result.Lettering = s.tryLettering(ctx, result.Movement.ID)

	s.logger.Info("invoice settled",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("voucher", result.Movement.VoucherRef),
		zap.String("entry", result.Entry.Number),
		zap.String("status", string(result.Balance.Status)))

	return result, nil
}

// SettleIncomingInvoice applies an outgoing payment to a payable
// document. Mirror of SettleInvoice: the payable account is debited
// and the treasury account credited.
func (s *SettlementService) SettleIncomingInvoice(ctx context.Context, input SettleInput) (*SettlementResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "settlement", "settle_incoming_invoice")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrDocumentID, input.DocumentID.String(),
		telemetry.SpanAttrAmount, input.Amount.String(),
	)

	invoice, err := s.incomingRepo.FindByID(ctx, input.DocumentID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load incoming invoice: %w", err)
	}
	if invoice == nil {
		err := shared.NewDomainError("NOT_FOUND", "incoming invoice not found")
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := invoice.CheckSettlement(input.Amount); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	treasuryAccount, err := s.treasuryAccount(ctx, input.TreasuryAccountID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	payableAccount, err := s.counterAccount(ctx, ledger.PrefixPayable, "payable")
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	label := input.Label
	if label == "" {
		label = fmt.Sprintf("Settlement of %s", invoice.Number)
	}

	var result *SettlementResult
	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		seq, err := s.sequenceRepo.Next(ctx, ledger.SequenceMovement)
		if err != nil {
			return fmt.Errorf("failed to allocate voucher reference: %w", err)
		}

		movement, err := billing.NewMoneyMovement(input.PaymentDate, billing.MovementOut, input.Amount,
			label, ledger.FormatVoucherRef(seq), treasuryAccount.ID)
		if err != nil {
			return err
		}
		if err := movement.LinkIncomingInvoice(invoice.ID); err != nil {
			return err
		}
		if err := s.movementRepo.Save(ctx, movement); err != nil {
			return fmt.Errorf("failed to save movement: %w", err)
		}

		debitLine, err := ledger.NewLedgerLine(input.PaymentDate, ledger.DirectionDebit, input.Amount,
			ledger.KindPayment, payableAccount.ID, label)
		if err != nil {
			return err
		}
		debitLine.LinkIncomingInvoice(invoice.ID).LinkMovement(movement.ID).LinkSupplier(invoice.SupplierID)

		creditLine, err := ledger.NewLedgerLine(input.PaymentDate, ledger.DirectionCredit, input.Amount,
			ledger.KindPayment, treasuryAccount.ID, label)
		if err != nil {
			return err
		}
		creditLine.LinkIncomingInvoice(invoice.ID).LinkMovement(movement.ID).LinkSupplier(invoice.SupplierID)

		movementID := movement.ID
		entry, err := s.posting.PostNewLines(ctx, ledgerapp.PostBatchInput{
			SourceType:  ledger.SourceMoneyMovement,
			SourceID:    &movementID,
			Date:        input.PaymentDate,
			Description: label,
		}, []*ledger.LedgerLine{debitLine, creditLine})
		if err != nil {
			return err
		}

		snapshot, err := s.balance.Recompute(ctx, invoice.ID, billing.DocumentTypeIncomingInvoice)
		if err != nil {
			return err
		}

		result = &SettlementResult{
			Movement:   movement,
			Entry:      entry,
			DebitLine:  debitLine,
			CreditLine: creditLine,
			Balance:    snapshot,
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	result.Lettering = s.tryLettering(ctx, result.Movement.ID)

	s.logger.Info("incoming invoice settled",
		zap.String("incoming_invoice_id", invoice.ID.String()),
		zap.String("voucher", result.Movement.VoucherRef),
		zap.String("entry", result.Entry.Number),
		zap.String("status", string(result.Balance.Status)))

	return result, nil
}

// tryLettering runs the matcher after a committed settlement. A failed
// or inconclusive run never fails the settlement; the sweep can pick
// the group up later.
func (s *SettlementService) tryLettering(ctx context.Context, movementID uuid.UUID) *ledgerapp.MatchResult {
	match, err := s.lettering.Match(ctx, movementID)
	if err != nil {
		s.logger.Warn("opportunistic lettering failed",
			zap.String("movement_id", movementID.String()),
			zap.Error(err))
		return nil
	}
	return match
}

func (s *SettlementService) treasuryAccount(ctx context.Context, id uuid.UUID) (*ledger.Account, error) {
	if id == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "treasury account is required")
	}
	account, err := s.accountRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load treasury account: %w", err)
	}
	if account == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "treasury account not found")
	}
	if !account.Family().IsTreasury() {
		return nil, shared.NewDomainError("VALIDATION_ERROR",
			fmt.Sprintf("account %s is not a treasury account", account.Number))
	}
	return account, nil
}

func (s *SettlementService) counterAccount(ctx context.Context, prefix, kind string) (*ledger.Account, error) {
	account, err := s.accountRepo.FindFirstByPrefix(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to look up %s account: %w", kind, err)
	}
	if account == nil {
		return nil, shared.NewDomainError("NOT_FOUND", fmt.Sprintf("no %s account in the chart", kind))
	}
	return account, nil
}
