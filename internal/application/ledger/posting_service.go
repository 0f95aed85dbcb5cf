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

// PostingService wraps sets of unassigned ledger lines into balanced,
// atomically committed journal entries.
type PostingService struct {
	txManager    ledger.TxManager
	entryRepo    ledger.JournalEntryRepository
	lineRepo     ledger.LedgerLineRepository
	sequenceRepo ledger.SequenceRepository
	logger       *zap.Logger
}

// NewPostingService creates a new posting service
func NewPostingService(
	txManager ledger.TxManager,
	entryRepo ledger.JournalEntryRepository,
	lineRepo ledger.LedgerLineRepository,
	sequenceRepo ledger.SequenceRepository,
	logger *zap.Logger,
) *PostingService {
	return &PostingService{
		txManager:    txManager,
		entryRepo:    entryRepo,
		lineRepo:     lineRepo,
		sequenceRepo: sequenceRepo,
		logger:       logger,
	}
}

// PostBatchInput describes a finalization request
type PostBatchInput struct {
	SourceType  ledger.SourceType
	SourceID    *uuid.UUID
	Date        time.Time
	Description string
	LineIDs     []uuid.UUID
}

// PostBatch finalizes a set of existing unassigned lines into one
// journal entry. The balance check runs before any write; the entry
// creation and line claiming commit as one unit of work. A concurrent
// finalization racing on the same lines leaves exactly one winner, the
// loser receives a CONCURRENCY_CONFLICT error and must retry against a
// reloaded line set.
func (s *PostingService) PostBatch(ctx context.Context, input PostBatchInput) (*ledger.JournalEntry, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "posting", "post_batch")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrLineCount, len(input.LineIDs),
		"source_type", string(input.SourceType),
	)

	if len(input.LineIDs) == 0 {
		err := shared.NewDomainError("VALIDATION_ERROR", "at least one line is required")
		telemetry.RecordError(span, err)
		return nil, err
	}
	if !input.SourceType.IsValid() {
		err := shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("invalid source type: %s", input.SourceType))
		telemetry.RecordError(span, err)
		return nil, err
	}

	lines, err := s.lineRepo.FindByIDs(ctx, input.LineIDs)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load lines: %w", err)
	}
	if len(lines) != len(input.LineIDs) {
		err := shared.NewDomainError("NOT_FOUND", "one or more lines do not exist")
		telemetry.RecordError(span, err)
		return nil, err
	}
	for i := range lines {
		if !lines[i].IsOrphan() {
			err := shared.NewDomainError("CONFLICT", "line is already assigned to a journal entry")
			telemetry.RecordError(span, err)
			return nil, err
		}
	}

	if err := ledger.CheckBalanced(lines); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var entry *ledger.JournalEntry
	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		seq, err := s.sequenceRepo.Next(ctx, ledger.SequenceJournal)
		if err != nil {
			return fmt.Errorf("failed to allocate journal number: %w", err)
		}
		number := ledger.FormatJournalNumber(seq)

		entry, err = ledger.NewJournalEntry(number, input.Date, input.SourceType, input.SourceID, input.Description)
		if err != nil {
			return err
		}
		if err := s.entryRepo.Save(ctx, entry); err != nil {
			return fmt.Errorf("failed to save journal entry: %w", err)
		}

		claimed, err := s.lineRepo.ClaimForEntry(ctx, input.LineIDs, entry.ID)
		if err != nil {
			return fmt.Errorf("failed to claim lines: %w", err)
		}
		if claimed != int64(len(input.LineIDs)) {
			return shared.NewDomainError("CONCURRENCY_CONFLICT",
				fmt.Sprintf("claimed %d of %d lines, another finalization won the race", claimed, len(input.LineIDs)))
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttribute(span, telemetry.SpanAttrEntryNumber, entry.Number)
	s.logger.Info("journal entry posted",
		zap.String("number", entry.Number),
		zap.String("source_type", string(input.SourceType)),
		zap.Int("lines", len(input.LineIDs)))

	return entry, nil
}

// PostNewLines persists freshly built lines and finalizes them in the
// same unit of work. Used by settlement and treasury flows that create
// their lines and the entry together.
func (s *PostingService) PostNewLines(ctx context.Context, input PostBatchInput, lines []*ledger.LedgerLine) (*ledger.JournalEntry, error) {
	var entry *ledger.JournalEntry
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		if err := s.lineRepo.SaveAll(ctx, lines); err != nil {
			return fmt.Errorf("failed to save lines: %w", err)
		}
		ids := make([]uuid.UUID, len(lines))
		for i, line := range lines {
			ids[i] = line.ID
		}
		input.LineIDs = ids

		var err error
		entry, err = s.PostBatch(ctx, input)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}
