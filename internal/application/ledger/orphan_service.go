package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrphanService finds ledger lines that never made it into a journal
// entry and repairs them, inserting a suspense-account correction when
// a group does not balance on its own.
type OrphanService struct {
	txManager   ledger.TxManager
	lineRepo    ledger.LedgerLineRepository
	accountRepo ledger.AccountRepository
	posting     *PostingService
	logger      *zap.Logger
}

// NewOrphanService creates a new orphan repair service
func NewOrphanService(
	txManager ledger.TxManager,
	lineRepo ledger.LedgerLineRepository,
	accountRepo ledger.AccountRepository,
	posting *PostingService,
	logger *zap.Logger,
) *OrphanService {
	return &OrphanService{
		txManager:   txManager,
		lineRepo:    lineRepo,
		accountRepo: accountRepo,
		posting:     posting,
		logger:      logger,
	}
}

// ListGroups loads all unassigned lines and partitions them by natural
// correlation key. Read-only and safe to run against live traffic.
func (s *OrphanService) ListGroups(ctx context.Context) ([]ledger.OrphanGroup, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "orphan", "list_groups")
	defer span.End()

	lines, err := s.lineRepo.FindOrphans(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load orphan lines: %w", err)
	}

	groups := ledger.GroupOrphans(lines)
	telemetry.SetAttribute(span, "group_count", len(groups))
	return groups, nil
}

// RepairInput configures an orphan group repair
type RepairInput struct {
	GroupKey          string
	SuspenseAccountID *uuid.UUID
	Description       string
}

// Repair reloads the named group and finalizes it. An unbalanced group
// first receives one corrective line on the suspense account for the
// absolute difference. Fails with CONFLICT when the group's lines were
// claimed elsewhere between listing and repairing.
func (s *OrphanService) Repair(ctx context.Context, input RepairInput) (*ledger.JournalEntry, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "orphan", "repair")
	defer span.End()

	telemetry.SetAttribute(span, telemetry.SpanAttrGroupKey, input.GroupKey)

	groups, err := s.ListGroups(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var group *ledger.OrphanGroup
	for i := range groups {
		if groups[i].Key == input.GroupKey {
			group = &groups[i]
			break
		}
	}
	if group == nil {
		err := shared.NewDomainError("CONFLICT", "group not found among orphan lines, its lines may have been claimed")
		telemetry.RecordError(span, err)
		return nil, err
	}

	description := input.Description
	if description == "" {
		description = fmt.Sprintf("Orphan repair %s", group.Key)
	}

	var entry *ledger.JournalEntry
	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		lineIDs := append([]uuid.UUID(nil), group.LineIDs...)

		if !group.IsBalanced() {
			correction, err := s.buildCorrection(ctx, group, input.SuspenseAccountID, description)
			if err != nil {
				return err
			}
			if err := s.lineRepo.Save(ctx, correction); err != nil {
				return fmt.Errorf("failed to save correction line: %w", err)
			}
			lineIDs = append(lineIDs, correction.ID)
		}

		var err error
		entry, err = s.posting.PostBatch(ctx, PostBatchInput{
			SourceType:  ledger.SourceAdjustment,
			Date:        time.Now(),
			Description: description,
			LineIDs:     lineIDs,
		})
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("orphan group repaired",
		zap.String("group", group.Key),
		zap.String("entry", entry.Number),
		zap.String("diff", group.Diff.StringFixed(2)))

	return entry, nil
}

// buildCorrection creates the suspense line balancing the group: CREDIT
// for a debit-heavy group, DEBIT otherwise, always a positive magnitude.
func (s *OrphanService) buildCorrection(ctx context.Context, group *ledger.OrphanGroup, suspenseAccountID *uuid.UUID, description string) (*ledger.LedgerLine, error) {
	account, err := s.resolveSuspenseAccount(ctx, suspenseAccountID)
	if err != nil {
		return nil, err
	}

	line, err := ledger.NewLedgerLine(
		time.Now(),
		group.CorrectionDirection(),
		group.Diff.Abs(),
		ledger.KindAdjustment,
		account.ID,
		description,
	)
	if err != nil {
		return nil, err
	}
	return line, nil
}

// resolveSuspenseAccount returns the explicitly requested account or
// the first account in the suspense family, creating 471000 if the
// chart has none yet.
func (s *OrphanService) resolveSuspenseAccount(ctx context.Context, suspenseAccountID *uuid.UUID) (*ledger.Account, error) {
	if suspenseAccountID != nil {
		account, err := s.accountRepo.FindByID(ctx, *suspenseAccountID)
		if err != nil {
			return nil, fmt.Errorf("failed to load suspense account: %w", err)
		}
		if account == nil {
			return nil, shared.NewDomainError("NOT_FOUND", "suspense account not found")
		}
		return account, nil
	}

	account, err := s.accountRepo.FindFirstByPrefix(ctx, ledger.PrefixSuspense)
	if err != nil {
		return nil, fmt.Errorf("failed to look up suspense account: %w", err)
	}
	if account != nil {
		return account, nil
	}

	account, err = ledger.NewAccount(ledger.PrefixSuspense+"000", ledger.SuspenseAccountLabel)
	if err != nil {
		return nil, err
	}
	if err := s.accountRepo.Save(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create suspense account: %w", err)
	}
	s.logger.Info("suspense account created", zap.String("number", account.Number))
	return account, nil
}
