package ledger

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrphanGroup is a derived set of unassigned ledger lines sharing one
// correlation key, with its debit/credit sums and signed difference.
type OrphanGroup struct {
	Key     string
	Debit   decimal.Decimal
	Credit  decimal.Decimal
	Diff    decimal.Decimal
	LineIDs []uuid.UUID
	Lines   []LedgerLine
}

// IsBalanced reports whether the group nets to zero within Tolerance
func (g *OrphanGroup) IsBalanced() bool {
	return g.Diff.Abs().LessThanOrEqual(Tolerance)
}

// CorrectionDirection returns the direction of the suspense line that
// would balance the group: CREDIT for a debit-heavy group, DEBIT for a
// credit-heavy one.
func (g *OrphanGroup) CorrectionDirection() Direction {
	heavy := DirectionCredit
	if g.Diff.IsPositive() {
		heavy = DirectionDebit
	}
	return heavy.Opposite()
}

// GroupKeyFor derives the natural correlation key of an orphan line:
// the linked invoice, else the incoming invoice, else the treasury
// movement, else a fallback combining posting day and business nature.
func GroupKeyFor(line *LedgerLine) string {
	switch {
	case line.InvoiceID != nil:
		return "INVOICE:" + line.InvoiceID.String()
	case line.IncomingInvoiceID != nil:
		return "INCOMING_INVOICE:" + line.IncomingInvoiceID.String()
	case line.MoneyMovementID != nil:
		return "MOVEMENT:" + line.MoneyMovementID.String()
	default:
		return fmt.Sprintf("MISC:%s:%s", line.Date.Format("2006-01-02"), line.Kind)
	}
}

// GroupOrphans partitions unassigned lines by correlation key and
// computes each group's balance. Groups are returned sorted by key for
// stable output.
func GroupOrphans(lines []LedgerLine) []OrphanGroup {
	byKey := make(map[string]*OrphanGroup)
	for i := range lines {
		key := GroupKeyFor(&lines[i])
		group, ok := byKey[key]
		if !ok {
			group = &OrphanGroup{
				Key:    key,
				Debit:  decimal.Zero,
				Credit: decimal.Zero,
			}
			byKey[key] = group
		}
		if lines[i].Direction == DirectionDebit {
			group.Debit = group.Debit.Add(lines[i].Amount)
		} else {
			group.Credit = group.Credit.Add(lines[i].Amount)
		}
		group.LineIDs = append(group.LineIDs, lines[i].ID)
		group.Lines = append(group.Lines, lines[i])
	}

	groups := make([]OrphanGroup, 0, len(byKey))
	for _, group := range byKey {
		group.Diff = group.Debit.Sub(group.Credit)
		groups = append(groups, *group)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })
	return groups
}
