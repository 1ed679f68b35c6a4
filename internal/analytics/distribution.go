package analytics

import (
	"slices"

	"gastos/internal/core"

	"github.com/shopspring/decimal"
)

// DistributionEntry is the expense total of one category.
type DistributionEntry struct {
	CategoryID int64           `json:"categoryId"`
	Name       string          `json:"name"`
	Color      string          `json:"color"`
	Total      decimal.Decimal `json:"total"`
}

// Distribute groups the expenses of txs by category, largest total first.
// Equal totals keep the order in which their category first appeared.
// Categories missing from idx get the index fallbacks.
func Distribute(txs []core.Transaction, idx core.CategoryIndex) []DistributionEntry {
	entries := make([]DistributionEntry, 0)
	pos := make(map[int64]int)

	for _, tx := range txs {
		if tx.Type != core.Expense {
			continue
		}
		i, ok := pos[tx.CategoryID]
		if !ok {
			i = len(entries)
			pos[tx.CategoryID] = i
			entries = append(entries, DistributionEntry{
				CategoryID: tx.CategoryID,
				Name:       idx.Name(tx.CategoryID),
				Color:      idx.Color(tx.CategoryID),
				Total:      decimal.Zero,
			})
		}
		entries[i].Total = entries[i].Total.Add(tx.AmountInHomeCurrency)
	}

	slices.SortStableFunc(entries, func(a, b DistributionEntry) int {
		return b.Total.Cmp(a.Total)
	})
	return entries
}

// Total sums the entry totals.
func Total(entries []DistributionEntry) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range entries {
		sum = sum.Add(e.Total)
	}
	return sum
}
