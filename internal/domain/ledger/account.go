package ledger

import (
	"strings"

	"github.com/erp/ledger/internal/domain/shared"
)

// Account number prefixes for the chart of accounts families
const (
	PrefixReceivable   = "411"
	PrefixPayable      = "401"
	PrefixBank         = "52"
	PrefixCash         = "53"
	PrefixTreasuryMisc = "57"
	PrefixVAT          = "44"
	PrefixSuspense     = "471"
)

// SuspenseAccountLabel is used when the suspense account is auto-created
const SuspenseAccountLabel = "Suspense account"

// AccountFamily classifies an account number into a chart family
type AccountFamily string

const (
	FamilyReceivable AccountFamily = "RECEIVABLE"
	FamilyPayable    AccountFamily = "PAYABLE"
	FamilyTreasury   AccountFamily = "TREASURY"
	FamilyVAT        AccountFamily = "VAT"
	FamilySuspense   AccountFamily = "SUSPENSE"
	FamilyOther      AccountFamily = "OTHER"
)

// FamilyOf returns the chart family of an account number.
// Suspense (471) is checked before VAT (44) and receivable is checked
// before payable so the longer prefixes win.
func FamilyOf(number string) AccountFamily {
	switch {
	case strings.HasPrefix(number, PrefixSuspense):
		return FamilySuspense
	case strings.HasPrefix(number, PrefixReceivable):
		return FamilyReceivable
	case strings.HasPrefix(number, PrefixPayable):
		return FamilyPayable
	case strings.HasPrefix(number, PrefixBank),
		strings.HasPrefix(number, PrefixCash),
		strings.HasPrefix(number, PrefixTreasuryMisc):
		return FamilyTreasury
	case strings.HasPrefix(number, PrefixVAT):
		return FamilyVAT
	default:
		return FamilyOther
	}
}

// IsReconcilable reports whether lines on this family participate in
// client-side lettering (receivable and treasury accounts).
func (f AccountFamily) IsReconcilable() bool {
	return f == FamilyReceivable || f == FamilyTreasury
}

// IsTreasury reports whether the family is a treasury family (52/53/57)
func (f AccountFamily) IsTreasury() bool {
	return f == FamilyTreasury
}

// Account represents an entry in the chart of accounts.
// Immutable once referenced by any ledger line.
type Account struct {
	shared.BaseEntity
	Number string
	Label  string
}

// NewAccount creates a new account with validation
func NewAccount(number, label string) (*Account, error) {
	if strings.TrimSpace(number) == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "account number is required")
	}
	if strings.TrimSpace(label) == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "account label is required")
	}
	return &Account{
		BaseEntity: shared.NewBaseEntity(),
		Number:     number,
		Label:      label,
	}, nil
}

// Family returns the chart family of this account
func (a *Account) Family() AccountFamily {
	return FamilyOf(a.Number)
}
