package analytics

import (
	"slices"

	"gastos/internal/core"

	"github.com/shopspring/decimal"
)

// Months is a Jan..Dec series of home-currency amounts.
type Months [12]decimal.Decimal

func zeroMonths() Months {
	var m Months
	for i := range m {
		m[i] = decimal.Zero
	}
	return m
}

// Sum adds up the twelve values.
func (m Months) Sum() decimal.Decimal {
	sum := decimal.Zero
	for _, v := range m {
		sum = sum.Add(v)
	}
	return sum
}

type (
	// CashFlowRow is one category's monthly totals for a year.
	CashFlowRow struct {
		CategoryID   int64           `json:"categoryId"`
		CategoryName string          `json:"categoryName"`
		Monthly      Months          `json:"monthly"`
		YearTotal    decimal.Decimal `json:"yearTotal"`
	}

	// CashFlowMatrix is the category × month grid of a year.
	CashFlowMatrix struct {
		Year               int           `json:"year"`
		ExpenseRows        []CashFlowRow `json:"expenseRows"`
		IncomeRows         []CashFlowRow `json:"incomeRows"`
		ExpenseTotals      Months        `json:"expenseTotals"`
		IncomeTotals       Months        `json:"incomeTotals"`
		NetBalance         Months        `json:"netBalance"`
		AccumulatedBalance Months        `json:"accumulatedBalance"`
	}
)

// BuildCashFlow builds the cash-flow matrix of year from the unfiltered
// transaction list. Rows of each type are sorted by descending year total,
// ties in first-seen order. The accumulated balance is the running sum of the
// net balance from January onwards.
func BuildCashFlow(all []core.Transaction, idx core.CategoryIndex, year int) CashFlowMatrix {
	yearTxs := core.FilterByYear(all, year)

	m := CashFlowMatrix{
		Year:        year,
		ExpenseRows: buildRows(yearTxs, idx, core.Expense),
		IncomeRows:  buildRows(yearTxs, idx, core.Income),
	}
	m.ExpenseTotals = columnTotals(m.ExpenseRows)
	m.IncomeTotals = columnTotals(m.IncomeRows)

	running := decimal.Zero
	for i := range m.NetBalance {
		m.NetBalance[i] = m.IncomeTotals[i].Sub(m.ExpenseTotals[i])
		running = running.Add(m.NetBalance[i])
		m.AccumulatedBalance[i] = running
	}
	return m
}

func buildRows(txs []core.Transaction, idx core.CategoryIndex, typ core.TransactionType) []CashFlowRow {
	rows := make([]CashFlowRow, 0)
	pos := make(map[int64]int)

	for _, tx := range txs {
		if tx.Type != typ {
			continue
		}
		i, ok := pos[tx.CategoryID]
		if !ok {
			i = len(rows)
			pos[tx.CategoryID] = i
			rows = append(rows, CashFlowRow{
				CategoryID:   tx.CategoryID,
				CategoryName: idx.Name(tx.CategoryID),
				Monthly:      zeroMonths(),
			})
		}
		month := tx.Date.Month() - 1
		rows[i].Monthly[month] = rows[i].Monthly[month].Add(tx.AmountInHomeCurrency)
	}

	for i := range rows {
		rows[i].YearTotal = rows[i].Monthly.Sum()
	}
	slices.SortStableFunc(rows, func(a, b CashFlowRow) int {
		return b.YearTotal.Cmp(a.YearTotal)
	})
	return rows
}

func columnTotals(rows []CashFlowRow) Months {
	totals := zeroMonths()
	for _, r := range rows {
		for i, v := range r.Monthly {
			totals[i] = totals[i].Add(v)
		}
	}
	return totals
}

func (m CashFlowMatrix) ExpenseYearTotal() decimal.Decimal {
	return m.ExpenseTotals.Sum()
}

func (m CashFlowMatrix) IncomeYearTotal() decimal.Decimal {
	return m.IncomeTotals.Sum()
}

func (m CashFlowMatrix) NetYearTotal() decimal.Decimal {
	return m.NetBalance.Sum()
}

// AccumulatedTotal is December's running balance. Summing the running values
// would count every month more than once.
func (m CashFlowMatrix) AccumulatedTotal() decimal.Decimal {
	return m.AccumulatedBalance[len(m.AccumulatedBalance)-1]
}
