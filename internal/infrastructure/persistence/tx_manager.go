package persistence

import (
	"context"

	"gorm.io/gorm"
)

type txContextKey struct{}

// txFromContext returns the transaction carried by the context, or nil.
func txFromContext(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txContextKey{}).(*gorm.DB); ok {
		return tx
	}
	return nil
}

// GormTxManager runs units of work inside a database transaction. The
// transaction handle travels in the context, so repositories called
// within the unit of work share it and nested units join the ambient
// transaction instead of opening a new one.
type GormTxManager struct {
	db *gorm.DB
}

// NewGormTxManager creates a new transaction manager
func NewGormTxManager(db *gorm.DB) *GormTxManager {
	return &GormTxManager{db: db}
}

// Do executes fn within a transaction. If the context already carries
// one, fn joins it and commit/rollback stays with the outermost caller.
func (m *GormTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if tx := txFromContext(ctx); tx != nil {
		return fn(ctx)
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txContextKey{}, tx))
	})
}

// conn resolves the database handle for a repository call: the ambient
// transaction when one is in flight, the base connection otherwise.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx := txFromContext(ctx); tx != nil {
		return tx
	}
	return db
}
