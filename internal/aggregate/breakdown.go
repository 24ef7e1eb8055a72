package aggregate

import (
	"cmp"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pocket/internal/transaction"
)

// OtherLabel names the bucket that folds everything outside the top categories.
const OtherLabel = "Other"

// NoPayeeLabel groups transactions recorded without a payee.
const NoPayeeLabel = "No payee"

// Label identifies the group a transaction belongs to.
type Label struct {
	Key  string
	Name string
	Icon string
}

// Share is one group's slice of a filtered total.
type Share struct {
	Key        string          `json:"key"`
	Name       string          `json:"name"`
	Icon       string          `json:"icon,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	Count      int             `json:"count"`
	Percentage float64         `json:"percentage"`
}

// Summarize keeps the transactions matching keep, groups them by label, sums
// each group and expresses it as a whole percentage of the kept total. The
// result is sorted by percentage, largest first.
func Summarize(
	txs []*transaction.Transaction,
	keep func(*transaction.Transaction) bool,
	label func(*transaction.Transaction) Label,
) []Share {
	var (
		order  []string
		groups = make(map[string]*Share)
		total  = decimal.Zero
	)

	for _, tx := range txs {
		if !keep(tx) {
			continue
		}

		l := label(tx)

		g, ok := groups[l.Key]
		if !ok {
			g = &Share{Key: l.Key, Name: l.Name, Icon: l.Icon, Amount: decimal.Zero}
			groups[l.Key] = g
			order = append(order, l.Key)
		}

		g.Amount = g.Amount.Add(tx.Amount)
		g.Count++
		total = total.Add(tx.Amount)
	}

	out := make([]Share, 0, len(order))

	for _, key := range order {
		g := groups[key]
		g.Percentage = percent(g.Amount, total, 0)
		g.Amount = money(g.Amount)
		out = append(out, *g)
	}

	sortShares(out)

	return out
}

func sortShares(shares []Share) {
	slices.SortStableFunc(shares, func(a, b Share) int {
		if c := cmp.Compare(b.Percentage, a.Percentage); c != 0 {
			return c
		}

		if c := b.Amount.Cmp(a.Amount); c != 0 {
			return c
		}

		return cmp.Compare(a.Name, b.Name)
	})
}

func byCategory(tx *transaction.Transaction) Label {
	return Label{Key: tx.CategoryID.String(), Name: tx.CategoryName, Icon: tx.CategoryIcon}
}

func byPayee(tx *transaction.Transaction) Label {
	if tx.PayeeID == nil {
		return Label{Name: NoPayeeLabel}
	}

	l := Label{Key: tx.PayeeID.String()}
	if tx.PayeeName != nil {
		l.Name = *tx.PayeeName
	}

	if tx.PayeeLogo != nil {
		l.Icon = *tx.PayeeLogo
	}

	return l
}

func inPeriodOfType(typ transaction.Type, p Period) func(*transaction.Transaction) bool {
	return func(tx *transaction.Transaction) bool {
		return tx.Type == typ && p.Contains(tx.Date)
	}
}

// CategorySummary rolls up transactions of typ within p by category.
func CategorySummary(txs []*transaction.Transaction, typ transaction.Type, p Period) []Share {
	return Summarize(txs, inPeriodOfType(typ, p), byCategory)
}

// PayeeSummary rolls up transactions of typ within p by payee.
func PayeeSummary(txs []*transaction.Transaction, typ transaction.Type, p Period) []Share {
	return Summarize(txs, inPeriodOfType(typ, p), byPayee)
}

const topNamed = 2

// TopCategories returns this month's two largest expense categories plus an
// Other bucket holding the rest when the rest is above zero. Percentages are
// relative to the month's total expense.
func TopCategories(txs []*transaction.Transaction, today time.Time) []Share {
	shares := CategorySummary(txs, transaction.TypeExpense, MonthOf(today))
	if len(shares) <= topNamed {
		return shares
	}

	total, rest := decimal.Zero, decimal.Zero
	count := 0

	for i, s := range shares {
		total = total.Add(s.Amount)

		if i >= topNamed {
			rest = rest.Add(s.Amount)
			count += s.Count
		}
	}

	out := slices.Clone(shares[:topNamed])

	if rest.IsPositive() {
		out = append(out, Share{
			Name:       OtherLabel,
			Amount:     money(rest),
			Count:      count,
			Percentage: percent(rest, total, 0),
		})
	}

	return out
}
