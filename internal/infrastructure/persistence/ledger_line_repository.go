package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormLedgerLineRepository implements LedgerLineRepository using GORM
type GormLedgerLineRepository struct {
	db *gorm.DB
}

// NewGormLedgerLineRepository creates a new GormLedgerLineRepository
func NewGormLedgerLineRepository(db *gorm.DB) *GormLedgerLineRepository {
	return &GormLedgerLineRepository{db: db}
}

// FindByID finds a ledger line by its ID
func (r *GormLedgerLineRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.LedgerLine, error) {
	var model models.LedgerLineModel
	if err := conn(ctx, r.db).WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs loads the given lines in one query
func (r *GormLedgerLineRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]ledger.LedgerLine, error) {
	if len(ids) == 0 {
		return []ledger.LedgerLine{}, nil
	}
	var lineModels []models.LedgerLineModel
	if err := conn(ctx, r.db).WithContext(ctx).
		Where("id IN ?", ids).
		Find(&lineModels).Error; err != nil {
		return nil, err
	}
	return toDomainLines(lineModels), nil
}

// FindByMovement loads all lines linked to a treasury movement
func (r *GormLedgerLineRepository) FindByMovement(ctx context.Context, movementID uuid.UUID) ([]ledger.LedgerLine, error) {
	var lineModels []models.LedgerLineModel
	if err := conn(ctx, r.db).WithContext(ctx).
		Where("money_movement_id = ?", movementID).
		Order("date ASC, created_at ASC").
		Find(&lineModels).Error; err != nil {
		return nil, err
	}
	return toDomainLines(lineModels), nil
}

// FindByLetterRef loads the full lettering group for a token
func (r *GormLedgerLineRepository) FindByLetterRef(ctx context.Context, letterRef string) ([]ledger.LedgerLine, error) {
	var lineModels []models.LedgerLineModel
	if err := conn(ctx, r.db).WithContext(ctx).
		Where("letter_ref = ?", letterRef).
		Order("date ASC, created_at ASC").
		Find(&lineModels).Error; err != nil {
		return nil, err
	}
	return toDomainLines(lineModels), nil
}

// FindOrphans loads all lines with no journal entry assigned
func (r *GormLedgerLineRepository) FindOrphans(ctx context.Context) ([]ledger.LedgerLine, error) {
	var lineModels []models.LedgerLineModel
	if err := conn(ctx, r.db).WithContext(ctx).
		Where("journal_entry_id IS NULL").
		Order("date ASC, created_at ASC").
		Find(&lineModels).Error; err != nil {
		return nil, err
	}
	return toDomainLines(lineModels), nil
}

// FindAll lists lines with filtering and pagination
func (r *GormLedgerLineRepository) FindAll(ctx context.Context, filter ledger.LineFilter) ([]ledger.LedgerLine, int64, error) {
	query := conn(ctx, r.db).WithContext(ctx).Model(&models.LedgerLineModel{})
	query = applyLineFilter(query, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := ValidateSortField(filter.OrderBy, LedgerLineSortFields, "date")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var lineModels []models.LedgerLineModel
	if err := query.
		Order(fmt.Sprintf("%s %s", orderBy, orderDir)).
		Offset(offsetFor(filter.Filter)).
		Limit(limitFor(filter.Filter)).
		Find(&lineModels).Error; err != nil {
		return nil, 0, err
	}
	return toDomainLines(lineModels), total, nil
}

// Save creates or updates a ledger line
func (r *GormLedgerLineRepository) Save(ctx context.Context, line *ledger.LedgerLine) error {
	model := models.LedgerLineModelFromDomain(line)
	return conn(ctx, r.db).WithContext(ctx).Save(model).Error
}

// SaveAll persists a batch of lines
func (r *GormLedgerLineRepository) SaveAll(ctx context.Context, lines []*ledger.LedgerLine) error {
	if len(lines) == 0 {
		return nil
	}
	lineModels := make([]*models.LedgerLineModel, len(lines))
	for i, line := range lines {
		lineModels[i] = models.LedgerLineModelFromDomain(line)
	}
	return conn(ctx, r.db).WithContext(ctx).Save(lineModels).Error
}

// LetterLines stamps the lettering columns on the given lines. The
// update never touches journal_entry_id, so a claim that landed after
// the candidates were read survives; lettered_at keeps its first value.
func (r *GormLedgerLineRepository) LetterLines(ctx context.Context, ids []uuid.UUID, letterRef string, at time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := conn(ctx, r.db).WithContext(ctx).
		Model(&models.LedgerLineModel{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"letter_ref":      letterRef,
			"letter_status":   string(ledger.LetterStatusMatched),
			"lettered_amount": gorm.Expr("amount"),
			"lettered_at":     gorm.Expr("COALESCE(lettered_at, ?)", at),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// ClaimForEntry assigns unassigned lines to a journal entry. The guard
// on journal_entry_id IS NULL makes concurrent finalizations race
// safely: only one of them claims all its lines.
func (r *GormLedgerLineRepository) ClaimForEntry(ctx context.Context, ids []uuid.UUID, entryID uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := conn(ctx, r.db).WithContext(ctx).
		Model(&models.LedgerLineModel{}).
		Where("id IN ? AND journal_entry_id IS NULL", ids).
		Update("journal_entry_id", entryID)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// DeleteUnassignedByInvoice removes an invoice's orphan lines
func (r *GormLedgerLineRepository) DeleteUnassignedByInvoice(ctx context.Context, invoiceID uuid.UUID) (int64, error) {
	result := conn(ctx, r.db).WithContext(ctx).
		Where("invoice_id = ? AND journal_entry_id IS NULL", invoiceID).
		Delete(&models.LedgerLineModel{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// DeleteByEntry removes all lines of one journal entry
func (r *GormLedgerLineRepository) DeleteByEntry(ctx context.Context, entryID uuid.UUID) (int64, error) {
	result := conn(ctx, r.db).WithContext(ctx).
		Where("journal_entry_id = ?", entryID).
		Delete(&models.LedgerLineModel{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func applyLineFilter(query *gorm.DB, filter ledger.LineFilter) *gorm.DB {
	if filter.AccountID != nil {
		query = query.Where("account_id = ?", *filter.AccountID)
	}
	if filter.InvoiceID != nil {
		query = query.Where("invoice_id = ?", *filter.InvoiceID)
	}
	if filter.IncomingInvoiceID != nil {
		query = query.Where("incoming_invoice_id = ?", *filter.IncomingInvoiceID)
	}
	if filter.MoneyMovementID != nil {
		query = query.Where("money_movement_id = ?", *filter.MoneyMovementID)
	}
	if filter.JournalEntryID != nil {
		query = query.Where("journal_entry_id = ?", *filter.JournalEntryID)
	}
	if filter.Kind != nil {
		query = query.Where("kind = ?", *filter.Kind)
	}
	if filter.Direction != nil {
		query = query.Where("direction = ?", *filter.Direction)
	}
	if filter.LetterStatus != nil {
		query = query.Where("letter_status = ?", *filter.LetterStatus)
	}
	if filter.FromDate != nil {
		query = query.Where("date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("date <= ?", *filter.ToDate)
	}
	if filter.OrphansOnly {
		query = query.Where("journal_entry_id IS NULL")
	}
	return query
}

func toDomainLines(lineModels []models.LedgerLineModel) []ledger.LedgerLine {
	lines := make([]ledger.LedgerLine, len(lineModels))
	for i, model := range lineModels {
		lines[i] = *model.ToDomain()
	}
	return lines
}
