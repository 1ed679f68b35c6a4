package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gastos/internal/core"
	"gastos/internal/ledger"
)

func categoryInput(name string, typ core.TransactionType) core.CategoryInput {
	return core.CategoryInput{Name: name, Type: typ, Icon: "Tag", Color: "#AABBCC"}
}

func TestCategoryService_Create(t *testing.T) {
	views := &countingInvalidator{}
	svc := NewCategoryService(newStore(), views)

	c, err := svc.Create(context.Background(), categoryInput("  Mascotas ", core.Expense))
	require.NoError(t, err)

	assert.Equal(t, int64(15), c.ID)
	assert.Equal(t, "Mascotas", c.Name)
	assert.Equal(t, "#aabbcc", c.Color)
	assert.False(t, c.IsDefault)
	assert.Equal(t, 1, views.calls)

	_, err = svc.Create(context.Background(), core.CategoryInput{Name: "x", Type: core.Expense, Icon: "Tag", Color: "red"})
	ve, ok := core.IsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "color", ve.Field)
}

func TestCategoryService_UpdateTypeLockedWhileReferenced(t *testing.T) {
	store := newStore()
	txs := NewTransactionService(store, nil, nil, nil, nil)
	svc := NewCategoryService(store, nil)
	ctx := context.Background()

	mustCreate(t, txs, expenseInput("Pan", "10", catFood, 2024, 1, 1))

	_, err := svc.Update(ctx, catFood, categoryInput("Comida", core.Income))
	assert.ErrorIs(t, err, ErrCategoryTypeLocked)

	updated, err := svc.Update(ctx, catFood, categoryInput("Comida", core.Expense))
	require.NoError(t, err)
	assert.Equal(t, "Comida", updated.Name)
	assert.True(t, updated.IsDefault, "default flag survives edits")

	updated, err = svc.Update(ctx, catTravel, categoryInput("Ingreso extra", core.Income))
	require.NoError(t, err, "unreferenced category may change type")
	assert.Equal(t, core.Income, updated.Type)
}

func TestCategoryService_UpdateMissing(t *testing.T) {
	svc := NewCategoryService(newStore(), nil)

	_, err := svc.Update(context.Background(), 999, categoryInput("x", core.Expense))
	assert.ErrorIs(t, err, ledger.ErrCategoryNotFound)
}

func TestCategoryService_Delete(t *testing.T) {
	store := newStore()
	txs := NewTransactionService(store, nil, nil, nil, nil)
	views := &countingInvalidator{}
	svc := NewCategoryService(store, views)
	ctx := context.Background()

	tx := mustCreate(t, txs, expenseInput("Pan", "10", catFood, 2024, 1, 1))

	err := svc.Delete(ctx, catFood)
	assert.ErrorIs(t, err, ledger.ErrCategoryInUse)

	require.NoError(t, txs.Delete(ctx, tx.ID))
	require.NoError(t, svc.Delete(ctx, catFood))
	assert.Equal(t, 1, views.calls)

	err = svc.Delete(ctx, catFood)
	assert.ErrorIs(t, err, ledger.ErrCategoryNotFound)

	cats, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, 13)
}
