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

// GormJournalEntryRepository implements JournalEntryRepository using GORM
type GormJournalEntryRepository struct {
	db *gorm.DB
}

// NewGormJournalEntryRepository creates a new GormJournalEntryRepository
func NewGormJournalEntryRepository(db *gorm.DB) *GormJournalEntryRepository {
	return &GormJournalEntryRepository{db: db}
}

// FindByID finds a journal entry by its ID
func (r *GormJournalEntryRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.JournalEntry, error) {
	var model models.JournalEntryModel
	if err := conn(ctx, r.db).WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber finds a journal entry by its unique number
func (r *GormJournalEntryRepository) FindByNumber(ctx context.Context, number string) (*ledger.JournalEntry, error) {
	var model models.JournalEntryModel
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

// FindAll lists journal entries with pagination
func (r *GormJournalEntryRepository) FindAll(ctx context.Context, filter shared.Filter) ([]ledger.JournalEntry, int64, error) {
	query := conn(ctx, r.db).WithContext(ctx).Model(&models.JournalEntryModel{})

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("number LIKE ? OR description ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := ValidateSortField(filter.OrderBy, JournalEntrySortFields, "date")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var entryModels []models.JournalEntryModel
	if err := query.
		Order(fmt.Sprintf("%s %s", orderBy, orderDir)).
		Offset(offsetFor(filter)).
		Limit(limitFor(filter)).
		Find(&entryModels).Error; err != nil {
		return nil, 0, err
	}

	entries := make([]ledger.JournalEntry, len(entryModels))
	for i, model := range entryModels {
		entries[i] = *model.ToDomain()
	}
	return entries, total, nil
}

// FindBySource loads the entries originated by one business document
func (r *GormJournalEntryRepository) FindBySource(ctx context.Context, sourceType ledger.SourceType, sourceID uuid.UUID) ([]ledger.JournalEntry, error) {
	var entryModels []models.JournalEntryModel
	if err := conn(ctx, r.db).WithContext(ctx).
		Where("source_type = ? AND source_id = ?", string(sourceType), sourceID).
		Order("date ASC, created_at ASC").
		Find(&entryModels).Error; err != nil {
		return nil, err
	}
	entries := make([]ledger.JournalEntry, len(entryModels))
	for i, model := range entryModels {
		entries[i] = *model.ToDomain()
	}
	return entries, nil
}

// Save creates or updates a journal entry
func (r *GormJournalEntryRepository) Save(ctx context.Context, entry *ledger.JournalEntry) error {
	model := models.JournalEntryModelFromDomain(entry)
	return conn(ctx, r.db).WithContext(ctx).Save(model).Error
}

// Delete removes a journal entry
func (r *GormJournalEntryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := conn(ctx, r.db).WithContext(ctx).
		Delete(&models.JournalEntryModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
