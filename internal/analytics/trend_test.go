package analytics

import (
	"testing"

	"gastos/internal/core"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTrend(t *testing.T) {
	txs := []core.Transaction{
		tx(1, core.Expense, 1, "100", 2024, 1, 10),
		tx(2, core.Expense, 1, "200", 2024, 2, 10),
		tx(3, core.Expense, 1, "300", 2024, 3, 10),
		tx(4, core.Income, 9, "999", 2023, 3, 10),
	}

	points := BuildTrend(txs, 2024)
	want := map[int]string{0: "100", 1: "200", 2: "300"}
	for i, p := range points {
		assert.Equal(t, i, p.MonthIndex)
		assert.True(t, p.Income.IsZero(), "month %d income should be zero", i)
		expected := "0"
		if w, ok := want[i]; ok {
			expected = w
		}
		requireDecEqual(t, expected, p.Expense, "month", i)
	}
}

func TestBuildTrendIsDense(t *testing.T) {
	faker := gofakeit.New(11)
	for round := 0; round < 20; round++ {
		txs := randomTransactions(faker, faker.IntRange(0, 40))
		year := faker.IntRange(2020, 2026)
		points := BuildTrend(txs, year)
		require.Len(t, points, 12)

		yearly := Summarize(core.FilterByYear(txs, year))
		sumIncome, sumExpense := points[0].Income, points[0].Expense
		for _, p := range points[1:] {
			sumIncome = sumIncome.Add(p.Income)
			sumExpense = sumExpense.Add(p.Expense)
		}
		assert.True(t, yearly.Income.Equal(sumIncome))
		assert.True(t, yearly.Expenses.Equal(sumExpense))
	}
}
