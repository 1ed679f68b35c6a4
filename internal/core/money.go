// Package core holds the domain model of the finance tracker and the pure
// helpers that normalize and select transactions.
//
// This file contains amount parsing and the currency normalizer.
package core

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// CentPlaces is the precision of every home-currency amount.
const CentPlaces = 2

var hundred = decimal.NewFromInt(100)

// ParseAmount converts a user-typed amount to a decimal with cent precision.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and rounds
// half-up on the third decimal place. Zero and negative values are rejected.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34
//	ParseAmount("12,345") -> 12.35
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := parsePositiveDecimal(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	d = d.Round(CentPlaces)
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// ParseExchangeRate parses a positive rate keeping all of its digits.
func ParseExchangeRate(s string) (decimal.Decimal, error) {
	d, err := parsePositiveDecimal(s)
	if err != nil || !d.IsPositive() {
		return decimal.Zero, ErrInvalidExchangeRate
	}
	return d, nil
}

func parsePositiveDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return decimal.Zero, ErrInvalidAmount
	}
	for _, p := range parts {
		for _, r := range p {
			if !unicode.IsDigit(r) {
				return decimal.Zero, ErrInvalidAmount
			}
		}
	}
	if parts[0] == "" {
		s = "0" + s
	}
	return decimal.NewFromString(strings.TrimSuffix(s, "."))
}

// NormalizeAmount returns the value of amount in the home currency.
//
// Home amounts come back unchanged and any rate is ignored. Foreign amounts
// require a positive rate and are converted as amount × rate, rounded half-up
// to cents. There is no implicit rate of 1. A conversion that rounds to zero
// fails with ErrAmountTooSmall.
func NormalizeAmount(amount decimal.Decimal, currency Currency, rate *decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, newValidationError("amount", ErrInvalidAmount)
	}
	switch currency {
	case HomeCurrency:
		return amount, nil
	case USD:
		if rate == nil {
			return decimal.Zero, newValidationError("exchangeRate", ErrMissingExchangeRate)
		}
		if !rate.IsPositive() {
			return decimal.Zero, newValidationError("exchangeRate", ErrInvalidExchangeRate)
		}
		home := amount.Mul(*rate).Round(CentPlaces)
		if !home.IsPositive() {
			return decimal.Zero, newValidationError("amount", ErrAmountTooSmall)
		}
		return home, nil
	default:
		return decimal.Zero, newValidationError("currency", ErrInvalidCurrency)
	}
}

// ToCents converts a decimal amount to integer cents, rounding half-up.
func ToCents(d decimal.Decimal) int64 {
	return d.Mul(hundred).Round(0).IntPart()
}

// FromCents converts integer cents back to a decimal amount.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -CentPlaces)
}
