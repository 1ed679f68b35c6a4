package analytics

import (
	"gastos/internal/core"

	"github.com/shopspring/decimal"
)

// TrendPoint is one month of the yearly trend. MonthIndex is 0 for January.
type TrendPoint struct {
	MonthIndex int             `json:"monthIndex"`
	Income     decimal.Decimal `json:"income"`
	Expense    decimal.Decimal `json:"expense"`
}

// BuildTrend returns twelve dense monthly points for year, January first.
// It takes the unfiltered transaction list; any month selection is ignored.
func BuildTrend(all []core.Transaction, year int) [12]TrendPoint {
	var points [12]TrendPoint
	for i := range points {
		points[i] = TrendPoint{MonthIndex: i, Income: decimal.Zero, Expense: decimal.Zero}
	}

	for _, tx := range all {
		if tx.Date.Year() != year {
			continue
		}
		p := &points[tx.Date.Month()-1]
		switch tx.Type {
		case core.Income:
			p.Income = p.Income.Add(tx.AmountInHomeCurrency)
		case core.Expense:
			p.Expense = p.Expense.Add(tx.AmountInHomeCurrency)
		}
	}
	return points
}
