package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LineService creates raw ledger lines and backs the manual-review
// listing surface. Created lines start unassigned; the caller wraps
// them into an entry through the posting service.
type LineService struct {
	txManager   ledger.TxManager
	lineRepo    ledger.LedgerLineRepository
	accountRepo ledger.AccountRepository
	logger      *zap.Logger
}

// NewLineService creates a new line service
func NewLineService(
	txManager ledger.TxManager,
	lineRepo ledger.LedgerLineRepository,
	accountRepo ledger.AccountRepository,
	logger *zap.Logger,
) *LineService {
	return &LineService{
		txManager:   txManager,
		lineRepo:    lineRepo,
		accountRepo: accountRepo,
		logger:      logger,
	}
}

// LineInput describes one raw line to create
type LineInput struct {
	Date              time.Time
	Direction         ledger.Direction
	Amount            decimal.Decimal
	Kind              ledger.LineKind
	AccountID         uuid.UUID
	Label             string
	InvoiceID         *uuid.UUID
	IncomingInvoiceID *uuid.UUID
	MoneyMovementID   *uuid.UUID
	ClientID          *uuid.UUID
	SupplierID        *uuid.UUID
}

// CreateLines validates and persists a batch of unassigned lines in
// one unit of work. Nothing is written when any input is invalid.
func (s *LineService) CreateLines(ctx context.Context, inputs []LineInput) ([]ledger.LedgerLine, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "line", "create_lines")
	defer span.End()

	telemetry.SetAttribute(span, telemetry.SpanAttrLineCount, len(inputs))

	if len(inputs) == 0 {
		err := shared.NewDomainError("VALIDATION_ERROR", "at least one line is required")
		telemetry.RecordError(span, err)
		return nil, err
	}

	lines := make([]*ledger.LedgerLine, 0, len(inputs))
	for _, input := range inputs {
		account, err := s.accountRepo.FindByID(ctx, input.AccountID)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to load account: %w", err)
		}
		if account == nil {
			err := shared.NewDomainError("NOT_FOUND", "account not found")
			telemetry.RecordError(span, err)
			return nil, err
		}

		line, err := ledger.NewLedgerLine(input.Date, input.Direction, input.Amount, input.Kind, input.AccountID, input.Label)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		if input.InvoiceID != nil {
			line.LinkInvoice(*input.InvoiceID)
		}
		if input.IncomingInvoiceID != nil {
			line.LinkIncomingInvoice(*input.IncomingInvoiceID)
		}
		if input.MoneyMovementID != nil {
			line.LinkMovement(*input.MoneyMovementID)
		}
		if input.ClientID != nil {
			line.LinkClient(*input.ClientID)
		}
		if input.SupplierID != nil {
			line.LinkSupplier(*input.SupplierID)
		}
		lines = append(lines, line)
	}

	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		return s.lineRepo.SaveAll(ctx, lines)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save lines: %w", err)
	}

	result := make([]ledger.LedgerLine, len(lines))
	for i, line := range lines {
		result[i] = *line
	}
	s.logger.Info("ledger lines created", zap.Int("count", len(result)))
	return result, nil
}

// List pages through ledger lines with filtering
func (s *LineService) List(ctx context.Context, filter ledger.LineFilter) (shared.Paginated[ledger.LedgerLine], error) {
	lines, total, err := s.lineRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[ledger.LedgerLine]{}, fmt.Errorf("failed to list lines: %w", err)
	}
	page := filter.Page
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	if page <= 0 {
		page = 1
	}
	return shared.NewPaginated(lines, total, page, pageSize), nil
}
