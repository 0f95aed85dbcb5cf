package billing

import (
	"context"
	"fmt"

	"github.com/erp/ledger/internal/domain/billing"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BalanceService recomputes a document's paid/outstanding amounts and
// status from its linked treasury movements. The recomputation is
// idempotent; the write uses optimistic locking so concurrent
// settlements against the same document never lose an update.
type BalanceService struct {
	invoiceRepo  billing.InvoiceRepository
	incomingRepo billing.IncomingInvoiceRepository
	movementRepo billing.MoneyMovementRepository
	logger       *zap.Logger
}

// NewBalanceService creates a new balance service
func NewBalanceService(
	invoiceRepo billing.InvoiceRepository,
	incomingRepo billing.IncomingInvoiceRepository,
	movementRepo billing.MoneyMovementRepository,
	logger *zap.Logger,
) *BalanceService {
	return &BalanceService{
		invoiceRepo:  invoiceRepo,
		incomingRepo: incomingRepo,
		movementRepo: movementRepo,
		logger:       logger,
	}
}

// Recompute derives the document balance from its movements and
// persists it. Calling it twice with no new movements yields the same
// result.
func (s *BalanceService) Recompute(ctx context.Context, docID uuid.UUID, docType billing.DocumentType) (*billing.BalanceSnapshot, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "balance", "recompute")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrDocumentID, docID.String(),
		telemetry.SpanAttrDocumentType, string(docType),
	)

	var snapshot *billing.BalanceSnapshot
	var err error
	switch docType {
	case billing.DocumentTypeInvoice:
		snapshot, err = s.recomputeInvoice(ctx, docID)
	case billing.DocumentTypeIncomingInvoice:
		snapshot, err = s.recomputeIncomingInvoice(ctx, docID)
	default:
		err = shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("invalid document type: %s", docType))
	}
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttribute(span, "status", string(snapshot.Status))
	return snapshot, nil
}

func (s *BalanceService) recomputeInvoice(ctx context.Context, id uuid.UUID) (*billing.BalanceSnapshot, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoice: %w", err)
	}
	if invoice == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "invoice not found")
	}

	movements, err := s.movementRepo.FindByInvoice(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load movements: %w", err)
	}

	paid := decimal.Zero
	for i := range movements {
		if movements[i].SettlesDocument(billing.DocumentTypeInvoice) {
			paid = paid.Add(movements[i].Amount)
		}
	}

	snapshot := invoice.ApplyBalance(paid)
	if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
		return nil, err
	}

	s.logger.Debug("invoice balance recomputed",
		zap.String("invoice_id", id.String()),
		zap.String("paid", snapshot.PaidAmount.StringFixed(2)),
		zap.String("status", string(snapshot.Status)))
	return &snapshot, nil
}

func (s *BalanceService) recomputeIncomingInvoice(ctx context.Context, id uuid.UUID) (*billing.BalanceSnapshot, error) {
	invoice, err := s.incomingRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load incoming invoice: %w", err)
	}
	if invoice == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "incoming invoice not found")
	}

	movements, err := s.movementRepo.FindByIncomingInvoice(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load movements: %w", err)
	}

	paid := decimal.Zero
	for i := range movements {
		if movements[i].SettlesDocument(billing.DocumentTypeIncomingInvoice) {
			paid = paid.Add(movements[i].Amount)
		}
	}

	snapshot := invoice.ApplyBalance(paid)
	if err := s.incomingRepo.SaveWithLock(ctx, invoice); err != nil {
		return nil, err
	}

	s.logger.Debug("incoming invoice balance recomputed",
		zap.String("incoming_invoice_id", id.String()),
		zap.String("paid", snapshot.PaidAmount.StringFixed(2)),
		zap.String("status", string(snapshot.Status)))
	return &snapshot, nil
}
