package analytics

import (
	"gastos/internal/core"
)

// Dashboard bundles the views of one period.
type Dashboard struct {
	Period       core.Period         `json:"-"`
	Summary      Summary             `json:"summary"`
	Trend        [12]TrendPoint      `json:"trend"`
	Distribution []DistributionEntry `json:"distribution"`
	Pareto       ParetoResult        `json:"pareto"`
}

// BuildDashboard filters all to period for the summary and the distribution,
// classifies the distribution, and builds the trend from the whole year.
func BuildDashboard(all []core.Transaction, cats []core.Category, period core.Period, policy ABCPolicy) Dashboard {
	idx := core.NewCategoryIndex(cats)
	filtered := core.FilterByPeriod(all, period)
	dist := Distribute(filtered, idx)

	return Dashboard{
		Period:       period,
		Summary:      Summarize(filtered),
		Trend:        BuildTrend(all, period.Year),
		Distribution: dist,
		Pareto:       Classify(dist, policy),
	}
}
