package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/ledger/internal/domain/billing"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormMoneyMovementRepository implements MoneyMovementRepository using GORM
type GormMoneyMovementRepository struct {
	db *gorm.DB
}

// NewGormMoneyMovementRepository creates a new GormMoneyMovementRepository
func NewGormMoneyMovementRepository(db *gorm.DB) *GormMoneyMovementRepository {
	return &GormMoneyMovementRepository{db: db}
}

// FindByID finds a treasury movement by its ID
func (r *GormMoneyMovementRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.MoneyMovement, error) {
	var model models.MoneyMovementModel
	if err := conn(ctx, r.db).WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByInvoice loads all movements linked to an invoice
func (r *GormMoneyMovementRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]billing.MoneyMovement, error) {
	var movementModels []models.MoneyMovementModel
	if err := conn(ctx, r.db).WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("date ASC, created_at ASC").
		Find(&movementModels).Error; err != nil {
		return nil, err
	}
	return toDomainMovements(movementModels), nil
}

// FindByIncomingInvoice loads all movements linked to an incoming invoice
func (r *GormMoneyMovementRepository) FindByIncomingInvoice(ctx context.Context, incomingInvoiceID uuid.UUID) ([]billing.MoneyMovement, error) {
	var movementModels []models.MoneyMovementModel
	if err := conn(ctx, r.db).WithContext(ctx).
		Where("incoming_invoice_id = ?", incomingInvoiceID).
		Order("date ASC, created_at ASC").
		Find(&movementModels).Error; err != nil {
		return nil, err
	}
	return toDomainMovements(movementModels), nil
}

// FindAll lists movements with filtering and pagination
func (r *GormMoneyMovementRepository) FindAll(ctx context.Context, filter billing.MovementFilter) ([]billing.MoneyMovement, int64, error) {
	query := conn(ctx, r.db).WithContext(ctx).Model(&models.MoneyMovementModel{})
	query = applyMovementFilter(query, filter)

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("voucher_ref LIKE ? OR label ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := ValidateSortField(filter.OrderBy, MovementSortFields, "date")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var movementModels []models.MoneyMovementModel
	if err := query.
		Order(fmt.Sprintf("%s %s", orderBy, orderDir)).
		Offset(offsetFor(filter.Filter)).
		Limit(limitFor(filter.Filter)).
		Find(&movementModels).Error; err != nil {
		return nil, 0, err
	}
	return toDomainMovements(movementModels), total, nil
}

// Save creates or updates a movement
func (r *GormMoneyMovementRepository) Save(ctx context.Context, movement *billing.MoneyMovement) error {
	model := models.MoneyMovementModelFromDomain(movement)
	return conn(ctx, r.db).WithContext(ctx).Save(model).Error
}

func applyMovementFilter(query *gorm.DB, filter billing.MovementFilter) *gorm.DB {
	if filter.Direction != nil {
		query = query.Where("direction = ?", *filter.Direction)
	}
	if filter.InvoiceID != nil {
		query = query.Where("invoice_id = ?", *filter.InvoiceID)
	}
	if filter.IncomingInvoiceID != nil {
		query = query.Where("incoming_invoice_id = ?", *filter.IncomingInvoiceID)
	}
	if filter.FromDate != nil {
		query = query.Where("date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("date <= ?", *filter.ToDate)
	}
	return query
}

func toDomainMovements(movementModels []models.MoneyMovementModel) []billing.MoneyMovement {
	movements := make([]billing.MoneyMovement, len(movementModels))
	for i, model := range movementModels {
		movements[i] = *model.ToDomain()
	}
	return movements
}
