package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// GormSequenceRepository issues strictly increasing values per counter
// name. The increment is one atomic upsert, so concurrent callers never
// see the same value and a missing counter starts at 1.
type GormSequenceRepository struct {
	db *gorm.DB
}

// NewGormSequenceRepository creates a new GormSequenceRepository
func NewGormSequenceRepository(db *gorm.DB) *GormSequenceRepository {
	return &GormSequenceRepository{db: db}
}

// Next atomically increments the named counter and returns its value
func (r *GormSequenceRepository) Next(ctx context.Context, name string) (int64, error) {
	var value int64
	err := conn(ctx, r.db).WithContext(ctx).Raw(
		`INSERT INTO sequence_counters (name, value, updated_at)
		 VALUES (?, 1, NOW())
		 ON CONFLICT (name)
		 DO UPDATE SET value = sequence_counters.value + 1, updated_at = NOW()
		 RETURNING value`,
		name,
	).Scan(&value).Error
	if err != nil {
		return 0, fmt.Errorf("failed to advance sequence %s: %w", name, err)
	}
	return value, nil
}
