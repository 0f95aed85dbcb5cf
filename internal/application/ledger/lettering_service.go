package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/ledger/internal/domain/billing"
	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MatchStatus is the outcome of a lettering run
type MatchStatus string

const (
	MatchNoTransactions MatchStatus = "NO_TRANSACTIONS"
	MatchNotBalanced    MatchStatus = "NOT_BALANCED"
	MatchAlreadyMatched MatchStatus = "ALREADY_MATCHED"
	MatchMatched        MatchStatus = "MATCHED"
)

// MatchResult reports what a lettering run did
type MatchResult struct {
	Status       MatchStatus `json:"status"`
	LetterRef    string      `json:"letter_ref,omitempty"`
	UpdatedCount int         `json:"updated_count"`
}

// LetteringService matches treasury payments to receivable/payable
// lines via tolerance-based zero-sum reconciliation. Safe to re-run:
// an already matched group is detected and left untouched.
type LetteringService struct {
	txManager    ledger.TxManager
	lineRepo     ledger.LedgerLineRepository
	accountRepo  ledger.AccountRepository
	movementRepo billing.MoneyMovementRepository
	sequenceRepo ledger.SequenceRepository
	logger       *zap.Logger
}

// NewLetteringService creates a new lettering service
func NewLetteringService(
	txManager ledger.TxManager,
	lineRepo ledger.LedgerLineRepository,
	accountRepo ledger.AccountRepository,
	movementRepo billing.MoneyMovementRepository,
	sequenceRepo ledger.SequenceRepository,
	logger *zap.Logger,
) *LetteringService {
	return &LetteringService{
		txManager:    txManager,
		lineRepo:     lineRepo,
		accountRepo:  accountRepo,
		movementRepo: movementRepo,
		sequenceRepo: sequenceRepo,
		logger:       logger,
	}
}

// Match reconciles the ledger lines tied to one treasury movement.
// Candidates are the movement's lines whose kind is settlement-relevant
// and whose account belongs to a reconcilable family for the movement's
// side (receivable+treasury for client payments, payable+treasury for
// supplier payments). The group is only lettered when it nets to zero
// within the tolerance.
func (s *LetteringService) Match(ctx context.Context, movementID uuid.UUID) (*MatchResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "lettering", "match")
	defer span.End()

	telemetry.SetAttribute(span, telemetry.SpanAttrMovementID, movementID.String())

	movement, err := s.movementRepo.FindByID(ctx, movementID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load movement: %w", err)
	}
	if movement == nil {
		err := shared.NewDomainError("NOT_FOUND", "treasury movement not found")
		telemetry.RecordError(span, err)
		return nil, err
	}

	lines, err := s.lineRepo.FindByMovement(ctx, movementID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load movement lines: %w", err)
	}

	candidates, err := s.filterCandidates(ctx, movement, lines)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if len(candidates) == 0 {
		return &MatchResult{Status: MatchNoTransactions}, nil
	}

	if !ledger.IsBalanced(candidates) {
		debit, credit, _ := ledger.BalanceOf(candidates)
		s.logger.Info("lettering candidates not balanced, left for manual review",
			zap.String("movement_id", movementID.String()),
			zap.String("debit", debit.StringFixed(2)),
			zap.String("credit", credit.StringFixed(2)))
		return &MatchResult{Status: MatchNotBalanced}, nil
	}

	existingRef := sharedLetterRef(candidates)
	if existingRef != nil {
		group, err := s.lineRepo.FindByLetterRef(ctx, *existingRef)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to load lettering group: %w", err)
		}
		if allFullyLettered(group) {
			return &MatchResult{Status: MatchAlreadyMatched, LetterRef: *existingRef}, nil
		}
	}

	ref := ""
	if existingRef != nil {
		ref = *existingRef
	} else {
		seq, err := s.sequenceRepo.Next(ctx, ledger.SequenceLetter)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to allocate lettering token: %w", err)
		}
		ref = ledger.FormatLetterRef(seq)
	}

	ids := make([]uuid.UUID, len(candidates))
	for i := range candidates {
		ids[i] = candidates[i].ID
	}

	now := time.Now()
	var updated int64
	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		n, err := s.lineRepo.LetterLines(ctx, ids, ref, now)
		if err != nil {
			return err
		}
		updated = n
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.warnOnMultiMovementGroup(ctx, ref, movementID)

	telemetry.SetAttribute(span, telemetry.SpanAttrLetterRef, ref)
	s.logger.Info("lettering matched",
		zap.String("movement_id", movementID.String()),
		zap.String("letter_ref", ref),
		zap.Int("lines", len(candidates)))

	return &MatchResult{Status: MatchMatched, LetterRef: ref, UpdatedCount: int(updated)}, nil
}

// filterCandidates keeps settlement-relevant lines on reconcilable
// account families for the movement's side.
func (s *LetteringService) filterCandidates(ctx context.Context, movement *billing.MoneyMovement, lines []ledger.LedgerLine) ([]ledger.LedgerLine, error) {
	supplierSide := movement.IncomingInvoiceID != nil

	families := make(map[uuid.UUID]ledger.AccountFamily)
	candidates := make([]ledger.LedgerLine, 0, len(lines))
	for i := range lines {
		line := lines[i]
		if !settlementKind(line.Kind, supplierSide) {
			continue
		}
		family, ok := families[line.AccountID]
		if !ok {
			account, err := s.accountRepo.FindByID(ctx, line.AccountID)
			if err != nil {
				return nil, fmt.Errorf("failed to load account: %w", err)
			}
			if account == nil {
				return nil, shared.NewDomainError("NOT_FOUND", "line references an unknown account")
			}
			family = account.Family()
			families[line.AccountID] = family
		}
		if !reconcilableFamily(family, supplierSide) {
			continue
		}
		candidates = append(candidates, line)
	}
	return candidates, nil
}

// warnOnMultiMovementGroup logs when a matched group spans more than
// one treasury movement. The zero-sum contract still holds; the log is
// an audit trail for groups built from several partial payments.
func (s *LetteringService) warnOnMultiMovementGroup(ctx context.Context, ref string, movementID uuid.UUID) {
	group, err := s.lineRepo.FindByLetterRef(ctx, ref)
	if err != nil {
		return
	}
	movements := make(map[uuid.UUID]struct{})
	for i := range group {
		if group[i].MoneyMovementID != nil {
			movements[*group[i].MoneyMovementID] = struct{}{}
		}
	}
	if len(movements) > 1 {
		s.logger.Warn("lettering group spans multiple treasury movements",
			zap.String("letter_ref", ref),
			zap.String("movement_id", movementID.String()),
			zap.Int("movement_count", len(movements)))
	}
}

func settlementKind(kind ledger.LineKind, supplierSide bool) bool {
	if kind == ledger.KindPayment {
		return true
	}
	if supplierSide {
		return kind == ledger.KindPayable
	}
	return kind == ledger.KindReceivable
}

func reconcilableFamily(family ledger.AccountFamily, supplierSide bool) bool {
	if supplierSide {
		return family.IsTreasury() || family == ledger.FamilyPayable
	}
	return family.IsReconcilable()
}

func sharedLetterRef(lines []ledger.LedgerLine) *string {
	for i := range lines {
		if lines[i].LetterRef != nil {
			return lines[i].LetterRef
		}
	}
	return nil
}

func allFullyLettered(lines []ledger.LedgerLine) bool {
	if len(lines) == 0 {
		return false
	}
	for i := range lines {
		if !lines[i].IsFullyLettered() {
			return false
		}
	}
	return true
}
