package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/ledger/internal/domain/billing"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormIncomingInvoiceRepository implements IncomingInvoiceRepository using GORM
type GormIncomingInvoiceRepository struct {
	db *gorm.DB
}

// NewGormIncomingInvoiceRepository creates a new GormIncomingInvoiceRepository
func NewGormIncomingInvoiceRepository(db *gorm.DB) *GormIncomingInvoiceRepository {
	return &GormIncomingInvoiceRepository{db: db}
}

// FindByID finds an incoming invoice by its ID
func (r *GormIncomingInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.IncomingInvoice, error) {
	var model models.IncomingInvoiceModel
	if err := conn(ctx, r.db).WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber finds an incoming invoice by its number
func (r *GormIncomingInvoiceRepository) FindByNumber(ctx context.Context, number string) (*billing.IncomingInvoice, error) {
	var model models.IncomingInvoiceModel
	if err := conn(ctx, r.db).WithContext(ctx).
		Where("number = ?", number).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists incoming invoices with pagination
func (r *GormIncomingInvoiceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]billing.IncomingInvoice, int64, error) {
	query := conn(ctx, r.db).WithContext(ctx).Model(&models.IncomingInvoiceModel{})

	if filter.Search != "" {
		query = query.Where("number LIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := ValidateSortField(filter.OrderBy, InvoiceSortFields, "issue_date")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var invoiceModels []models.IncomingInvoiceModel
	if err := query.
		Order(fmt.Sprintf("%s %s", orderBy, orderDir)).
		Offset(offsetFor(filter)).
		Limit(limitFor(filter)).
		Find(&invoiceModels).Error; err != nil {
		return nil, 0, err
	}

	invoices := make([]billing.IncomingInvoice, len(invoiceModels))
	for i, model := range invoiceModels {
		invoices[i] = *model.ToDomain()
	}
	return invoices, total, nil
}

// Save creates or updates an incoming invoice
func (r *GormIncomingInvoiceRepository) Save(ctx context.Context, invoice *billing.IncomingInvoice) error {
	model := models.IncomingInvoiceModelFromDomain(invoice)
	return conn(ctx, r.db).WithContext(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking
func (r *GormIncomingInvoiceRepository) SaveWithLock(ctx context.Context, invoice *billing.IncomingInvoice) error {
	invoice.IncrementVersion()
	model := models.IncomingInvoiceModelFromDomain(invoice)
	result := conn(ctx, r.db).WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", invoice.ID, invoice.Version-1).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("CONCURRENCY_CONFLICT", "the incoming invoice was modified by another transaction")
	}
	return nil
}
