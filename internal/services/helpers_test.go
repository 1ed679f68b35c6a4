package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gastos/internal/amqp"
	"gastos/internal/core"
	"gastos/internal/ledger"
	"gastos/internal/ledger/memory"
)

const (
	catFood   int64 = 1
	catTravel int64 = 2
	catSalary int64 = 10
)

var errStoreDown = errors.New("store down")

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishTransactionChanged(ctx context.Context, msg *amqp.TransactionChangedMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

type countingInvalidator struct {
	calls int
}

func (c *countingInvalidator) Invalidate() { c.calls++ }

// brokenStore fails the listings while keeping the writes working.
type brokenStore struct {
	*memory.Store
}

func (brokenStore) ListTransactions(context.Context) ([]core.Transaction, error) {
	return nil, errStoreDown
}

func (brokenStore) ListCategories(context.Context) ([]core.Category, error) {
	return nil, errStoreDown
}

func newStore() *memory.Store {
	return memory.New(ledger.DefaultCategories())
}

func expenseInput(desc, amount string, cat int64, y, m, d int) core.TransactionInput {
	return core.TransactionInput{
		Description: desc,
		Amount:      decimal.RequireFromString(amount),
		Currency:    core.ARS,
		CategoryID:  cat,
		Date:        core.NewDate(y, m, d),
		Type:        core.Expense,
	}
}

func incomeInput(desc, amount string, y, m, d int) core.TransactionInput {
	in := expenseInput(desc, amount, catSalary, y, m, d)
	in.Type = core.Income
	return in
}

func mustCreate(t *testing.T, svc *TransactionService, in core.TransactionInput) core.Transaction {
	t.Helper()
	tx, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
	return tx
}

func amount(n int64) decimal.Decimal {
	return decimal.NewFromInt(n)
}
