// Package analytics derives the read-side views of the ledger: summary
// metrics, the monthly trend, the expense distribution by category, its
// Pareto/ABC classification and the yearly cash-flow matrix.
//
// Every function is pure. Inputs are read-only snapshots and each call
// returns freshly allocated results.
package analytics

import (
	"gastos/internal/core"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Summary holds the headline figures of a filtered transaction set.
type Summary struct {
	Income      decimal.Decimal `json:"income"`
	Expenses    decimal.Decimal `json:"expenses"`
	Balance     decimal.Decimal `json:"balance"`
	SavingsRate decimal.Decimal `json:"savingsRate"`
}

// Summarize totals income and expenses in the home currency.
// The savings rate is balance / income × 100, rounded half away from zero to
// two decimals, and 0 when there is no income. It is a display percentage;
// the totals themselves are never rounded.
func Summarize(txs []core.Transaction) Summary {
	income := decimal.Zero
	expenses := decimal.Zero
	for _, tx := range txs {
		switch tx.Type {
		case core.Income:
			income = income.Add(tx.AmountInHomeCurrency)
		case core.Expense:
			expenses = expenses.Add(tx.AmountInHomeCurrency)
		}
	}

	balance := income.Sub(expenses)
	rate := decimal.Zero
	if income.IsPositive() {
		rate = balance.Mul(hundred).Div(income).Round(2)
	}

	return Summary{
		Income:      income,
		Expenses:    expenses,
		Balance:     balance,
		SavingsRate: rate,
	}
}
