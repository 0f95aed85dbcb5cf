package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAccountRepository implements AccountRepository using GORM
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// FindByID finds an account by its ID
func (r *GormAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Account, error) {
	var model models.AccountModel
	if err := conn(ctx, r.db).WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber finds an account by its exact number
func (r *GormAccountRepository) FindByNumber(ctx context.Context, number string) (*ledger.Account, error) {
	var model models.AccountModel
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

// FindFirstByPrefix finds the lowest-numbered account in a prefix family
func (r *GormAccountRepository) FindFirstByPrefix(ctx context.Context, prefix string) (*ledger.Account, error) {
	var model models.AccountModel
	if err := conn(ctx, r.db).WithContext(ctx).
		Where("number LIKE ?", prefix+"%").
		Order("number ASC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists accounts with optional number/label search
func (r *GormAccountRepository) FindAll(ctx context.Context, filter shared.Filter) ([]ledger.Account, int64, error) {
	query := conn(ctx, r.db).WithContext(ctx).Model(&models.AccountModel{})

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("number LIKE ? OR label ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := ValidateSortField(filter.OrderBy, AccountSortFields, "number")
	orderDir := ValidateSortOrder(filter.OrderDir)
	if orderBy == "number" && filter.OrderDir == "" {
		orderDir = "ASC"
	}

	var accountModels []models.AccountModel
	if err := query.
		Order(fmt.Sprintf("%s %s", orderBy, orderDir)).
		Offset(offsetFor(filter)).
		Limit(limitFor(filter)).
		Find(&accountModels).Error; err != nil {
		return nil, 0, err
	}

	accounts := make([]ledger.Account, len(accountModels))
	for i, model := range accountModels {
		accounts[i] = *model.ToDomain()
	}
	return accounts, total, nil
}

// Save creates or updates an account
func (r *GormAccountRepository) Save(ctx context.Context, account *ledger.Account) error {
	model := models.AccountModelFromDomain(account)
	return conn(ctx, r.db).WithContext(ctx).Save(model).Error
}

// IsReferenced reports whether any ledger line points at the account
func (r *GormAccountRepository) IsReferenced(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := conn(ctx, r.db).WithContext(ctx).
		Model(&models.LedgerLineModel{}).
		Where("account_id = ?", id).
		Limit(1).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
