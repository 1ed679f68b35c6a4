// Package sheets exports the yearly cash-flow matrix to a Google spreadsheet.
package sheets

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"gastos/internal/analytics"
	"gastos/internal/core"
)

const (
	sheetSuffix = "Flujo de caja"

	LabelCategory      = "Categoría"
	LabelTotal         = "Total"
	LabelIncomeTotals  = "Total ingresos"
	LabelExpenseTotals = "Total gastos"
	LabelNetBalance    = "Balance neto"
	LabelAccumulated   = "Balance acumulado"
	columnsPerRow      = 14
)

// ValueWriter overwrites a whole sheet with rows, creating it when missing.
type ValueWriter interface {
	WriteSheet(ctx context.Context, sheet string, rows [][]any) error
}

// SheetName returns the title of the sheet holding year's cash flow.
func SheetName(year int) string {
	return fmt.Sprintf("%d %s", year, sheetSuffix)
}

// BuildRows lays out m as header, income rows, income totals, expense rows,
// expense totals, net balance and accumulated balance. The accumulated row's
// total column is December's running value.
func BuildRows(m analytics.CashFlowMatrix) [][]any {
	rows := make([][]any, 0, len(m.IncomeRows)+len(m.ExpenseRows)+5)

	header := make([]any, 0, columnsPerRow)
	header = append(header, LabelCategory)
	for _, label := range core.MonthLabels {
		header = append(header, label)
	}
	header = append(header, LabelTotal)
	rows = append(rows, header)

	for _, r := range m.IncomeRows {
		rows = append(rows, monthRow(r.CategoryName, r.Monthly, r.YearTotal))
	}
	rows = append(rows, monthRow(LabelIncomeTotals, m.IncomeTotals, m.IncomeYearTotal()))

	for _, r := range m.ExpenseRows {
		rows = append(rows, monthRow(r.CategoryName, r.Monthly, r.YearTotal))
	}
	rows = append(rows, monthRow(LabelExpenseTotals, m.ExpenseTotals, m.ExpenseYearTotal()))

	rows = append(rows, monthRow(LabelNetBalance, m.NetBalance, m.NetYearTotal()))
	rows = append(rows, monthRow(LabelAccumulated, m.AccumulatedBalance, m.AccumulatedTotal()))

	return rows
}

func monthRow(label string, months analytics.Months, total decimal.Decimal) []any {
	row := make([]any, 0, columnsPerRow)
	row = append(row, label)
	for _, v := range months {
		row = append(row, cell(v))
	}
	return append(row, cell(total))
}

// cell renders an amount as a plain number so the sheet can format it.
func cell(d decimal.Decimal) any {
	return d.Round(2).InexactFloat64()
}

// Exporter writes cash-flow matrices through a ValueWriter.
type Exporter struct {
	writer ValueWriter
}

func NewExporter(w ValueWriter) *Exporter {
	return &Exporter{writer: w}
}

// Export overwrites the sheet of m.Year with the matrix.
func (e *Exporter) Export(ctx context.Context, m analytics.CashFlowMatrix) error {
	sheet := SheetName(m.Year)
	rows := BuildRows(m)
	if err := e.writer.WriteSheet(ctx, sheet, rows); err != nil {
		return fmt.Errorf("export %s: %w", sheet, err)
	}
	slog.InfoContext(ctx, "Exported cash flow",
		"sheet", sheet,
		"rows", len(rows),
		"income_categories", len(m.IncomeRows),
		"expense_categories", len(m.ExpenseRows))
	return nil
}
