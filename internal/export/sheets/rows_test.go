package sheets

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gastos/internal/analytics"
	"gastos/internal/core"
)

func txn(id int64, typ core.TransactionType, cat int64, amount string, month int) core.Transaction {
	return core.Transaction{
		ID:                   id,
		Type:                 typ,
		CategoryID:           cat,
		Amount:               decimal.RequireFromString(amount),
		AmountInHomeCurrency: decimal.RequireFromString(amount),
		Currency:             core.ARS,
		Date:                 core.NewDate(2024, month, 10),
	}
}

func sampleMatrix() analytics.CashFlowMatrix {
	idx := core.NewCategoryIndex([]core.Category{
		{ID: 1, Name: "Alimentación", Type: core.Expense},
		{ID: 2, Name: "Transporte", Type: core.Expense},
		{ID: 10, Name: "Salario", Type: core.Income},
	})
	txs := []core.Transaction{
		txn(1, core.Income, 10, "1000", 1),
		txn(2, core.Expense, 1, "300", 1),
		txn(3, core.Expense, 2, "50.5", 2),
		txn(4, core.Expense, 1, "200", 3),
	}
	return analytics.BuildCashFlow(txs, idx, 2024)
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "2024 Flujo de caja", SheetName(2024))
}

func TestBuildRowsLayout(t *testing.T) {
	rows := BuildRows(sampleMatrix())

	// header, 1 income row, income totals, 2 expense rows, expense totals, net, accumulated
	require.Len(t, rows, 8)
	for i, r := range rows {
		assert.Len(t, r, columnsPerRow, "row %d", i)
	}

	assert.Equal(t, LabelCategory, rows[0][0])
	assert.Equal(t, "Ene", rows[0][1])
	assert.Equal(t, "Dic", rows[0][12])
	assert.Equal(t, LabelTotal, rows[0][13])

	assert.Equal(t, "Salario", rows[1][0])
	assert.Equal(t, LabelIncomeTotals, rows[2][0])
	assert.Equal(t, "Alimentación", rows[3][0], "largest expense first")
	assert.Equal(t, "Transporte", rows[4][0])
	assert.Equal(t, LabelExpenseTotals, rows[5][0])
	assert.Equal(t, LabelNetBalance, rows[6][0])
	assert.Equal(t, LabelAccumulated, rows[7][0])

	assert.Equal(t, 500.0, rows[3][13])
	assert.Equal(t, 550.5, rows[5][13])
	assert.Equal(t, 449.5, rows[6][13])
}

func TestBuildRowsAccumulatedTotalIsDecember(t *testing.T) {
	rows := BuildRows(sampleMatrix())
	acc := rows[7]

	assert.Equal(t, 700.0, acc[1])
	assert.Equal(t, 649.5, acc[2])
	assert.Equal(t, 449.5, acc[3])
	assert.Equal(t, 449.5, acc[12])
	assert.Equal(t, acc[12], acc[13], "total column repeats the December running balance")
}

func TestBuildRowsEmptyYear(t *testing.T) {
	rows := BuildRows(analytics.BuildCashFlow(nil, core.NewCategoryIndex(nil), 2030))

	require.Len(t, rows, 5)
	assert.Equal(t, 0.0, rows[4][13])
}

type recordingWriter struct {
	sheet string
	rows  [][]any
	err   error
}

func (w *recordingWriter) WriteSheet(_ context.Context, sheet string, rows [][]any) error {
	w.sheet = sheet
	w.rows = rows
	return w.err
}

func TestExporterExport(t *testing.T) {
	w := &recordingWriter{}
	require.NoError(t, NewExporter(w).Export(context.Background(), sampleMatrix()))

	assert.Equal(t, "2024 Flujo de caja", w.sheet)
	assert.Len(t, w.rows, 8)
}

func TestExporterWrapsWriterError(t *testing.T) {
	boom := errors.New("quota exceeded")
	err := NewExporter(&recordingWriter{err: boom}).Export(context.Background(), sampleMatrix())

	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "2024 Flujo de caja")
}
