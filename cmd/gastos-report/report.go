package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"gastos/internal/analytics"
	"gastos/internal/core"
)

// Report is the JSON shape of one run.
type Report struct {
	Year      int                      `json:"year"`
	Month     int                      `json:"month,omitempty"`
	Dashboard analytics.Dashboard      `json:"dashboard"`
	CashFlow  analytics.CashFlowMatrix `json:"cashFlow"`
}

func writeJSONReport(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func writeTextReport(w io.Writer, r Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)

	d := r.Dashboard
	fmt.Fprintf(tw, "Período\t%s\t\n", periodLabel(d.Period))
	fmt.Fprintf(tw, "Ingresos\t%s\t\n", money(d.Summary.Income))
	fmt.Fprintf(tw, "Gastos\t%s\t\n", money(d.Summary.Expenses))
	fmt.Fprintf(tw, "Balance\t%s\t\n", money(d.Summary.Balance))
	fmt.Fprintf(tw, "Ahorro\t%s%%\t\n", d.Summary.SavingsRate.StringFixed(2))
	fmt.Fprintln(tw, "\t\t")

	if len(d.Distribution) > 0 {
		fmt.Fprintln(tw, "Categoría\tTotal\tAcumulado\t")
		for _, e := range d.Pareto.Curve {
			fmt.Fprintf(tw, "%s\t%s\t%s%%\t\n", e.Name, money(e.Total), e.CumulativePercentage.StringFixed(1))
		}
		fmt.Fprintln(tw, "\t\t\t")
		for _, g := range d.Pareto.Groups {
			fmt.Fprintf(tw, "Clase %s\t%s\t%s%%\t%s\n", g.Label, money(g.TotalValue),
				g.PercentOfTotalValue.StringFixed(1), strings.Join(g.Members, ", "))
		}
		fmt.Fprintln(tw, "\t\t\t")
	}

	header := append([]string{"Flujo " + fmt.Sprint(r.CashFlow.Year)}, core.MonthLabels[:]...)
	fmt.Fprintln(tw, strings.Join(append(header, "Total"), "\t")+"\t")
	m := r.CashFlow
	for _, row := range m.IncomeRows {
		writeMonths(tw, row.CategoryName, row.Monthly, row.YearTotal)
	}
	writeMonths(tw, "Total ingresos", m.IncomeTotals, m.IncomeYearTotal())
	for _, row := range m.ExpenseRows {
		writeMonths(tw, row.CategoryName, row.Monthly, row.YearTotal)
	}
	writeMonths(tw, "Total gastos", m.ExpenseTotals, m.ExpenseYearTotal())
	writeMonths(tw, "Balance neto", m.NetBalance, m.NetYearTotal())
	writeMonths(tw, "Balance acumulado", m.AccumulatedBalance, m.AccumulatedTotal())

	return tw.Flush()
}

func writeMonths(w io.Writer, label string, months analytics.Months, total decimal.Decimal) {
	cells := make([]string, 0, len(months)+2)
	cells = append(cells, label)
	for _, v := range months {
		cells = append(cells, money(v))
	}
	cells = append(cells, money(total))
	fmt.Fprintln(w, strings.Join(cells, "\t")+"\t")
}

func periodLabel(p core.Period) string {
	if p.WholeYear() {
		return fmt.Sprintf("%d", p.Year)
	}
	return fmt.Sprintf("%s %d", core.MonthLabels[p.Month-1], p.Year)
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
