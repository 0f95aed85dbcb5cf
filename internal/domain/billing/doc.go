// Package billing holds the receivable and payable documents tracked by
// the ledger (invoices, incoming invoices) and the treasury movements
// settled against them. Document balances are always recomputed from
// linked movements, never hand-edited.
package billing
