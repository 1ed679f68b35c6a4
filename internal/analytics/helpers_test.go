package analytics

import (
	"testing"

	"gastos/internal/core"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func tx(id int64, typ core.TransactionType, cat int64, amount string, y, m, d int) core.Transaction {
	a := dec(amount)
	return core.Transaction{
		ID:                   id,
		Description:          "tx",
		Amount:               a,
		AmountInHomeCurrency: a,
		Currency:             core.ARS,
		CategoryID:           cat,
		Date:                 core.NewDate(y, m, d),
		Type:                 typ,
	}
}

func requireDecEqual(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	require.Truef(t, dec(want).Equal(got), "want %s, got %s %v", want, got, msgAndArgs)
}

// randomTransactions builds n random transactions spread over 2023..2025 and
// categories 1..8.
func randomTransactions(faker *gofakeit.Faker, n int) []core.Transaction {
	txs := make([]core.Transaction, 0, n)
	for i := 0; i < n; i++ {
		typ := core.Expense
		if faker.Bool() {
			typ = core.Income
		}
		cents := int64(faker.IntRange(1, 5_000_000))
		amount := core.FromCents(cents)
		txs = append(txs, core.Transaction{
			ID:                   int64(i + 1),
			Description:          faker.Word(),
			Amount:               amount,
			AmountInHomeCurrency: amount,
			Currency:             core.ARS,
			CategoryID:           int64(faker.IntRange(1, 8)),
			Date:                 core.NewDate(faker.IntRange(2023, 2025), faker.IntRange(1, 12), faker.IntRange(1, 28)),
			Type:                 typ,
		})
	}
	return txs
}

func testIndex() core.CategoryIndex {
	cats := make([]core.Category, 0, 8)
	for i := int64(1); i <= 8; i++ {
		cats = append(cats, core.Category{ID: i, Name: "cat-" + string(rune('a'+i-1)), Type: core.Expense})
	}
	return core.NewCategoryIndex(cats)
}
