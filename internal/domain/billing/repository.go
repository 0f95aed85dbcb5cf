package billing

import (
	"context"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
)

// MovementFilter defines filtering options for treasury movement queries
type MovementFilter struct {
	shared.Filter
	Direction         *MovementDirection
	InvoiceID         *uuid.UUID
	IncomingInvoiceID *uuid.UUID
	FromDate          *time.Time
	ToDate            *time.Time
}

// InvoiceRepository defines the interface for invoice persistence
type InvoiceRepository interface {
	// FindByID finds an invoice by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// FindByNumber finds an invoice by its number
	FindByNumber(ctx context.Context, number string) (*Invoice, error)

	// FindAll lists invoices with pagination
	FindAll(ctx context.Context, filter shared.Filter) ([]Invoice, int64, error)

	// Save creates or updates an invoice
	Save(ctx context.Context, invoice *Invoice) error

	// SaveWithLock saves with optimistic locking (version check).
	// Returns a CONCURRENCY_CONFLICT domain error when the stored
	// version no longer matches.
	SaveWithLock(ctx context.Context, invoice *Invoice) error
}

// IncomingInvoiceRepository defines the interface for incoming invoice persistence
type IncomingInvoiceRepository interface {
	// FindByID finds an incoming invoice by ID
	FindByID(ctx context.Context, id uuid.UUID) (*IncomingInvoice, error)

	// FindByNumber finds an incoming invoice by its number
	FindByNumber(ctx context.Context, number string) (*IncomingInvoice, error)

	// FindAll lists incoming invoices with pagination
	FindAll(ctx context.Context, filter shared.Filter) ([]IncomingInvoice, int64, error)

	// Save creates or updates an incoming invoice
	Save(ctx context.Context, invoice *IncomingInvoice) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, invoice *IncomingInvoice) error
}

// MoneyMovementRepository defines the interface for treasury movement persistence
type MoneyMovementRepository interface {
	// FindByID finds a movement by ID
	FindByID(ctx context.Context, id uuid.UUID) (*MoneyMovement, error)

	// FindByInvoice loads all movements linked to an invoice
	FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]MoneyMovement, error)

	// FindByIncomingInvoice loads all movements linked to an incoming invoice
	FindByIncomingInvoice(ctx context.Context, incomingInvoiceID uuid.UUID) ([]MoneyMovement, error)

	// FindAll lists movements with filtering and pagination
	FindAll(ctx context.Context, filter MovementFilter) ([]MoneyMovement, int64, error)

	// Save creates or updates a movement
	Save(ctx context.Context, movement *MoneyMovement) error
}
