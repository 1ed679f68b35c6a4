package core

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// AllMonths selects every month of the period's year.
const AllMonths = 0

// MonthLabels are the short Spanish month names, January first.
var MonthLabels = [12]string{"Ene", "Feb", "Mar", "Abr", "May", "Jun", "Jul", "Ago", "Sep", "Oct", "Nov", "Dic"}

// Period is a (year, month) selection. Month 0 means the whole year.
type Period struct {
	Year  int
	Month int
}

// ParsePeriod parses the query form of a period: a numeric year and a month
// that is either "all" or 1..12. An empty month means "all".
func ParsePeriod(year, month string) (Period, error) {
	y, err := strconv.Atoi(strings.TrimSpace(year))
	if err != nil || y < 1 || y > 9999 {
		return Period{}, newValidationError("year", fmt.Errorf("%w: %q", ErrInvalidYear, year))
	}

	month = strings.TrimSpace(month)
	if month == "" || strings.EqualFold(month, "all") {
		return Period{Year: y, Month: AllMonths}, nil
	}
	m, err := strconv.Atoi(month)
	if err != nil || m < 1 || m > 12 {
		return Period{}, newValidationError("month", ErrInvalidMonth)
	}
	return Period{Year: y, Month: m}, nil
}

func (p Period) WholeYear() bool {
	return p.Month == AllMonths
}

// Contains reports whether d falls inside the period.
func (p Period) Contains(d Date) bool {
	if d.Year() != p.Year {
		return false
	}
	return p.WholeYear() || d.Month() == p.Month
}

func (p Period) String() string {
	if p.WholeYear() {
		return fmt.Sprintf("%04d-all", p.Year)
	}
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// FilterByPeriod returns the transactions dated inside p, in input order.
func FilterByPeriod(txs []Transaction, p Period) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if p.Contains(tx.Date) {
			out = append(out, tx)
		}
	}
	return out
}

// FilterByYear is FilterByPeriod over the whole year.
func FilterByYear(txs []Transaction, year int) []Transaction {
	return FilterByPeriod(txs, Period{Year: year})
}

// AvailableYears lists the distinct transaction years plus the current one,
// newest first.
func AvailableYears(txs []Transaction, now time.Time) []int {
	seen := map[int]struct{}{now.Year(): {}}
	years := []int{now.Year()}
	for _, tx := range txs {
		y := tx.Date.Year()
		if _, ok := seen[y]; ok {
			continue
		}
		seen[y] = struct{}{}
		years = append(years, y)
	}
	slices.Sort(years)
	slices.Reverse(years)
	return years
}
