package core

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func txOn(id int64, y, m, d int) Transaction {
	return Transaction{
		ID:                   id,
		Amount:               decimal.NewFromInt(1),
		AmountInHomeCurrency: decimal.NewFromInt(1),
		Currency:             ARS,
		Date:                 NewDate(y, m, d),
		Type:                 Expense,
	}
}

func ids(txs []Transaction) []int64 {
	out := make([]int64, 0, len(txs))
	for _, tx := range txs {
		out = append(out, tx.ID)
	}
	return out
}

func TestParsePeriod(t *testing.T) {
	cases := []struct {
		year, month string
		want        Period
		field       string
	}{
		{"2024", "all", Period{2024, 0}, ""},
		{"2024", "ALL", Period{2024, 0}, ""},
		{"2024", "", Period{2024, 0}, ""},
		{"2024", "1", Period{2024, 1}, ""},
		{"2024", "12", Period{2024, 12}, ""},
		{"2024", "0", Period{}, "month"},
		{"2024", "13", Period{}, "month"},
		{"2024", "feb", Period{}, "month"},
		{"", "1", Period{}, "year"},
		{"abcd", "1", Period{}, "year"},
	}
	for _, tc := range cases {
		got, err := ParsePeriod(tc.year, tc.month)
		if tc.field == "" {
			if err != nil || got != tc.want {
				t.Fatalf("(%q,%q) expected %+v, got %+v (err=%v)", tc.year, tc.month, tc.want, got, err)
			}
			continue
		}
		ve, ok := IsValidationError(err)
		if !ok || ve.Field != tc.field {
			t.Fatalf("(%q,%q) expected %s validation error, got %v", tc.year, tc.month, tc.field, err)
		}
	}
	if _, err := ParsePeriod("2024", "13"); !errors.Is(err, ErrInvalidMonth) {
		t.Fatalf("expected ErrInvalidMonth, got %v", err)
	}
}

func TestFilterByPeriod(t *testing.T) {
	txs := []Transaction{
		txOn(1, 2024, 3, 1),
		txOn(2, 2023, 3, 1),
		txOn(3, 2024, 1, 31),
		txOn(4, 2024, 3, 31),
		txOn(5, 2025, 3, 1),
	}

	if got := ids(FilterByPeriod(txs, Period{Year: 2024})); !slices.Equal(got, []int64{1, 3, 4}) {
		t.Fatalf("whole year: got %v", got)
	}
	if got := ids(FilterByPeriod(txs, Period{Year: 2024, Month: 3})); !slices.Equal(got, []int64{1, 4}) {
		t.Fatalf("march: got %v", got)
	}
	if got := FilterByPeriod(txs, Period{Year: 2019}); len(got) != 0 {
		t.Fatalf("empty year should yield nothing, got %v", ids(got))
	}
	if got := FilterByPeriod(nil, Period{Year: 2024, Month: 1}); got == nil || len(got) != 0 {
		t.Fatalf("nil input should yield an empty slice")
	}
}

func TestAvailableYears(t *testing.T) {
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	txs := []Transaction{txOn(1, 2023, 1, 1), txOn(2, 2024, 1, 1), txOn(3, 2023, 6, 1)}

	if got := AvailableYears(txs, now); !slices.Equal(got, []int{2026, 2024, 2023}) {
		t.Fatalf("got %v", got)
	}
	if got := AvailableYears(nil, now); !slices.Equal(got, []int{2026}) {
		t.Fatalf("got %v", got)
	}
}

func TestCategoryIndexFallbacks(t *testing.T) {
	idx := NewCategoryIndex([]Category{
		{ID: 1, Name: "Comida", Color: "#ef4444", Type: Expense},
		{ID: 1, Name: "Duplicada", Color: "#000000", Type: Expense},
		{ID: 2, Name: "Sueldo", Type: Income},
	})

	if got := idx.Name(1); got != "Comida" {
		t.Fatalf("first occurrence should win, got %q", got)
	}
	if got := idx.Color(2); got != FallbackColor {
		t.Fatalf("blank color should fall back, got %q", got)
	}
	if got := idx.Name(99); got != UnknownCategoryName {
		t.Fatalf("expected %q, got %q", UnknownCategoryName, got)
	}
	if got := idx.Color(99); got != FallbackColor {
		t.Fatalf("expected %q, got %q", FallbackColor, got)
	}
	if _, ok := idx.Lookup(99); ok {
		t.Fatalf("lookup of a missing id should fail")
	}
	if idx.Len() != 2 {
		t.Fatalf("expected 2 categories, got %d", idx.Len())
	}
}
