package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/ledger/internal/domain/billing"
	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DocumentService manages the lifecycle of receivable and payable
// documents: registration, lookup and cancellation. Balances are
// owned by the balance service and never edited here.
type DocumentService struct {
	txManager    ledger.TxManager
	invoiceRepo  billing.InvoiceRepository
	incomingRepo billing.IncomingInvoiceRepository
	lineRepo     ledger.LedgerLineRepository
	entryRepo    ledger.JournalEntryRepository
	logger       *zap.Logger
}

// NewDocumentService creates a new document service
func NewDocumentService(
	txManager ledger.TxManager,
	invoiceRepo billing.InvoiceRepository,
	incomingRepo billing.IncomingInvoiceRepository,
	lineRepo ledger.LedgerLineRepository,
	entryRepo ledger.JournalEntryRepository,
	logger *zap.Logger,
) *DocumentService {
	return &DocumentService{
		txManager:    txManager,
		invoiceRepo:  invoiceRepo,
		incomingRepo: incomingRepo,
		lineRepo:     lineRepo,
		entryRepo:    entryRepo,
		logger:       logger,
	}
}

// CreateInvoiceInput describes a receivable document registration
type CreateInvoiceInput struct {
	Number      string
	ClientID    uuid.UUID
	IssueDate   time.Time
	DueDate     *time.Time
	TotalAmount decimal.Decimal
}

// CreateInvoice registers a receivable document
func (s *DocumentService) CreateInvoice(ctx context.Context, input CreateInvoiceInput) (*billing.Invoice, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "document", "create_invoice")
	defer span.End()

	existing, err := s.invoiceRepo.FindByNumber(ctx, input.Number)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to check invoice number: %w", err)
	}
	if existing != nil {
		err := shared.NewDomainError("CONFLICT", "invoice number already exists")
		telemetry.RecordError(span, err)
		return nil, err
	}

	invoice, err := billing.NewInvoice(input.Number, input.ClientID, input.IssueDate, input.TotalAmount)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	invoice.DueDate = input.DueDate

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save invoice: %w", err)
	}

	s.logger.Info("invoice registered",
		zap.String("number", invoice.Number),
		zap.String("total", invoice.TotalAmount.StringFixed(2)))
	return invoice, nil
}

// CreateIncomingInvoiceInput describes a payable document registration
type CreateIncomingInvoiceInput struct {
	Number      string
	SupplierID  uuid.UUID
	IssueDate   time.Time
	DueDate     *time.Time
	TotalAmount decimal.Decimal
}

// CreateIncomingInvoice registers a payable document
func (s *DocumentService) CreateIncomingInvoice(ctx context.Context, input CreateIncomingInvoiceInput) (*billing.IncomingInvoice, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "document", "create_incoming_invoice")
	defer span.End()

	existing, err := s.incomingRepo.FindByNumber(ctx, input.Number)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to check incoming invoice number: %w", err)
	}
	if existing != nil {
		err := shared.NewDomainError("CONFLICT", "incoming invoice number already exists")
		telemetry.RecordError(span, err)
		return nil, err
	}

	invoice, err := billing.NewIncomingInvoice(input.Number, input.SupplierID, input.IssueDate, input.TotalAmount)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	invoice.DueDate = input.DueDate

	if err := s.incomingRepo.Save(ctx, invoice); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save incoming invoice: %w", err)
	}

	s.logger.Info("incoming invoice registered",
		zap.String("number", invoice.Number),
		zap.String("total", invoice.TotalAmount.StringFixed(2)))
	return invoice, nil
}

// GetInvoice finds an invoice by ID
func (s *DocumentService) GetInvoice(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoice: %w", err)
	}
	if invoice == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "invoice not found")
	}
	return invoice, nil
}

// GetIncomingInvoice finds an incoming invoice by ID
func (s *DocumentService) GetIncomingInvoice(ctx context.Context, id uuid.UUID) (*billing.IncomingInvoice, error) {
	invoice, err := s.incomingRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load incoming invoice: %w", err)
	}
	if invoice == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "incoming invoice not found")
	}
	return invoice, nil
}

// ListInvoices pages through invoices
func (s *DocumentService) ListInvoices(ctx context.Context, filter shared.Filter) (shared.Paginated[billing.Invoice], error) {
	invoices, total, err := s.invoiceRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[billing.Invoice]{}, fmt.Errorf("failed to list invoices: %w", err)
	}
	return shared.NewPaginated(invoices, total, filter.Page, filter.PageSize), nil
}

// ListIncomingInvoices pages through incoming invoices
func (s *DocumentService) ListIncomingInvoices(ctx context.Context, filter shared.Filter) (shared.Paginated[billing.IncomingInvoice], error) {
	invoices, total, err := s.incomingRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[billing.IncomingInvoice]{}, fmt.Errorf("failed to list incoming invoices: %w", err)
	}
	return shared.NewPaginated(invoices, total, filter.Page, filter.PageSize), nil
}

// CancelInvoice cancels an unsettled invoice and backs out its ledger
// footprint: unassigned lines are removed, and any registration entry
// sourced from the invoice is deleted together with its lines. The one
// compensating deletion path; payment entries belong to movements and
// an unsettled invoice has none.
func (s *DocumentService) CancelInvoice(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "document", "cancel_invoice")
	defer span.End()

	telemetry.SetAttribute(span, telemetry.SpanAttrDocumentID, id.String())

	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load invoice: %w", err)
	}
	if invoice == nil {
		err := shared.NewDomainError("NOT_FOUND", "invoice not found")
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := invoice.Cancel(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		removed, err := s.lineRepo.DeleteUnassignedByInvoice(ctx, invoice.ID)
		if err != nil {
			return fmt.Errorf("failed to remove orphan lines: %w", err)
		}

		entries, err := s.entryRepo.FindBySource(ctx, ledger.SourceInvoice, invoice.ID)
		if err != nil {
			return fmt.Errorf("failed to load invoice entries: %w", err)
		}
		for i := range entries {
			n, err := s.lineRepo.DeleteByEntry(ctx, entries[i].ID)
			if err != nil {
				return fmt.Errorf("failed to remove entry lines: %w", err)
			}
			removed += n
			if err := s.entryRepo.Delete(ctx, entries[i].ID); err != nil {
				return fmt.Errorf("failed to remove journal entry: %w", err)
			}
		}

		if removed > 0 {
			s.logger.Info("ledger lines removed on cancellation",
				zap.String("invoice_id", invoice.ID.String()),
				zap.Int("entries", len(entries)),
				zap.Int64("lines", removed))
		}
		return s.invoiceRepo.SaveWithLock(ctx, invoice)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("invoice cancelled", zap.String("number", invoice.Number))
	return invoice, nil
}
