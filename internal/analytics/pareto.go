package analytics

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ABC class labels, highest impact first.
const (
	ClassA = "A"
	ClassB = "B"
	ClassC = "C"
)

var ErrInvalidPolicy = errors.New("invalid ABC policy")

// ABCPolicy holds the inclusive cumulative-percentage ceilings of classes A and B.
// Whatever lies above BCeiling is class C.
type ABCPolicy struct {
	ACeiling decimal.Decimal
	BCeiling decimal.Decimal
}

var (
	// DefaultABCPolicy is A ≤ 80%, B ≤ 90%.
	DefaultABCPolicy = ABCPolicy{ACeiling: decimal.NewFromInt(80), BCeiling: decimal.NewFromInt(90)}
	// LegacyABCPolicy is the older A ≤ 80%, B ≤ 95% split.
	LegacyABCPolicy = ABCPolicy{ACeiling: decimal.NewFromInt(80), BCeiling: decimal.NewFromInt(95)}
)

// NewABCPolicy builds a policy from percentage ceilings.
func NewABCPolicy(a, b float64) (ABCPolicy, error) {
	p := ABCPolicy{ACeiling: decimal.NewFromFloat(a), BCeiling: decimal.NewFromFloat(b)}
	return p, p.Validate()
}

// Validate requires 0 < A ≤ B ≤ 100.
func (p ABCPolicy) Validate() error {
	if !p.ACeiling.IsPositive() || p.BCeiling.LessThan(p.ACeiling) || p.BCeiling.GreaterThan(hundred) {
		return fmt.Errorf("%w: A=%s B=%s", ErrInvalidPolicy, p.ACeiling, p.BCeiling)
	}
	return nil
}

type (
	// ParetoEntry is a distribution entry placed on the cumulative curve.
	ParetoEntry struct {
		DistributionEntry
		CumulativePercentage decimal.Decimal `json:"cumulativePercentage"`
		ItemIndexPercentage  decimal.Decimal `json:"itemIndexPercentage"`
	}

	ABCGroup struct {
		Label               string          `json:"label"`
		Members             []string        `json:"members"`
		CategoryIDs         []int64         `json:"categoryIds"`
		TotalValue          decimal.Decimal `json:"totalValue"`
		PercentOfTotalValue decimal.Decimal `json:"percentOfTotalValue"`
		PercentOfItemCount  decimal.Decimal `json:"percentOfItemCount"`
	}

	ParetoResult struct {
		Curve  []ParetoEntry `json:"curve"`
		Groups []ABCGroup    `json:"groups"`
	}
)

// Classify places dist, already sorted by descending total, on the cumulative
// Pareto curve and splits it into the A, B and C classes of policy.
//
// Curve percentages are rounded to one decimal and item positions to whole
// percents. Class boundaries are inclusive and compared against the exact
// running share. Class A is never empty when dist has entries: if the first
// entry alone exceeds the A ceiling it is pulled into A from B, or from C.
// Empty classes are left out. Empty input or a zero total yields an empty
// result.
func Classify(dist []DistributionEntry, policy ABCPolicy) ParetoResult {
	result := ParetoResult{Curve: []ParetoEntry{}, Groups: []ABCGroup{}}

	total := Total(dist)
	if len(dist) == 0 || !total.IsPositive() {
		return result
	}

	n := decimal.NewFromInt(int64(len(dist)))
	// Comparing running×100 against ceiling×total keeps the boundary test exact.
	aLimit := policy.ACeiling.Mul(total)
	bLimit := policy.BCeiling.Mul(total)

	var classes [3][]DistributionEntry
	running := decimal.Zero
	for i, e := range dist {
		running = running.Add(e.Total)
		scaled := running.Mul(hundred)

		result.Curve = append(result.Curve, ParetoEntry{
			DistributionEntry:    e,
			CumulativePercentage: scaled.Div(total).Round(1),
			ItemIndexPercentage:  decimal.NewFromInt(int64(i + 1)).Mul(hundred).Div(n).Round(0),
		})

		switch {
		case scaled.LessThanOrEqual(aLimit):
			classes[0] = append(classes[0], e)
		case scaled.LessThanOrEqual(bLimit):
			classes[1] = append(classes[1], e)
		default:
			classes[2] = append(classes[2], e)
		}
	}

	if len(classes[0]) == 0 {
		from := 1
		if len(classes[1]) == 0 {
			from = 2
		}
		classes[0] = append(classes[0], classes[from][0])
		classes[from] = classes[from][1:]
	}

	for i, label := range []string{ClassA, ClassB, ClassC} {
		if len(classes[i]) == 0 {
			continue
		}
		result.Groups = append(result.Groups, newGroup(label, classes[i], total, n))
	}
	return result
}

func newGroup(label string, members []DistributionEntry, total, n decimal.Decimal) ABCGroup {
	g := ABCGroup{
		Label:       label,
		Members:     make([]string, 0, len(members)),
		CategoryIDs: make([]int64, 0, len(members)),
		TotalValue:  decimal.Zero,
	}
	for _, m := range members {
		g.Members = append(g.Members, m.Name)
		g.CategoryIDs = append(g.CategoryIDs, m.CategoryID)
		g.TotalValue = g.TotalValue.Add(m.Total)
	}
	g.PercentOfTotalValue = g.TotalValue.Mul(hundred).Div(total).Round(0)
	g.PercentOfItemCount = decimal.NewFromInt(int64(len(members))).Mul(hundred).Div(n).Round(0)
	return g
}

// Group returns the group with the given label.
func (r ParetoResult) Group(label string) (ABCGroup, bool) {
	for _, g := range r.Groups {
		if g.Label == label {
			return g, true
		}
	}
	return ABCGroup{}, false
}
