package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// AccountSortFields contains allowed sort fields for accounts
var AccountSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"number":     true,
	"label":      true,
}

// LedgerLineSortFields contains allowed sort fields for ledger lines
var LedgerLineSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"date":          true,
	"direction":     true,
	"amount":        true,
	"kind":          true,
	"account_id":    true,
	"letter_status": true,
}

// JournalEntrySortFields contains allowed sort fields for journal entries
var JournalEntrySortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"updated_at":  true,
	"number":      true,
	"date":        true,
	"source_type": true,
}

// InvoiceSortFields contains allowed sort fields for invoices and incoming invoices
var InvoiceSortFields = map[string]bool{
	"id":                 true,
	"created_at":         true,
	"updated_at":         true,
	"number":             true,
	"issue_date":         true,
	"due_date":           true,
	"total_amount":       true,
	"outstanding_amount": true,
	"status":             true,
}

// MovementSortFields contains allowed sort fields for treasury movements
var MovementSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"updated_at":  true,
	"date":        true,
	"direction":   true,
	"amount":      true,
	"voucher_ref": true,
}
