package persistence

import (
	"github.com/erp/ledger/internal/domain/shared"
)

const defaultPageSize = 20

// limitFor returns the page size to use for a query
func limitFor(filter shared.Filter) int {
	if filter.PageSize <= 0 {
		return defaultPageSize
	}
	return filter.PageSize
}

// offsetFor returns the row offset for a query
func offsetFor(filter shared.Filter) int {
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	return (page - 1) * limitFor(filter)
}
