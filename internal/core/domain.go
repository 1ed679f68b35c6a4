package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"

	// ARS is the home currency every aggregate is reported in.
	ARS Currency = "ARS"
	USD Currency = "USD"

	HomeCurrency = ARS

	MaxDescriptionLen = 255
	MaxNameLen        = 100
	MaxIconLen        = 50
)

type (
	TransactionType string

	Currency string

	Transaction struct {
		ID                   int64            `json:"id"`
		Description          string           `json:"description"`
		Amount               decimal.Decimal  `json:"amount"`
		AmountInHomeCurrency decimal.Decimal  `json:"amountInHomeCurrency"`
		Currency             Currency         `json:"currency"`
		ExchangeRate         *decimal.Decimal `json:"exchangeRate,omitempty"`
		CategoryID           int64            `json:"categoryId"`
		Date                 Date             `json:"date"`
		Type                 TransactionType  `json:"type"`
		CreatedAt            time.Time        `json:"createdAt"`
		UpdatedAt            time.Time        `json:"updatedAt"`
	}

	Category struct {
		ID        int64           `json:"id"`
		Name      string          `json:"name"`
		Type      TransactionType `json:"type"`
		Icon      string          `json:"icon"`
		Color     string          `json:"color"`
		IsDefault bool            `json:"isDefault"`
	}

	// TransactionInput is what the form layer submits on create and edit.
	// The home-currency amount is never accepted from the caller; Build derives it.
	TransactionInput struct {
		Description  string
		Amount       decimal.Decimal
		Currency     Currency
		ExchangeRate *decimal.Decimal
		CategoryID   int64
		Date         Date
		Type         TransactionType
	}

	CategoryInput struct {
		Name  string
		Type  TransactionType
		Icon  string
		Color string
	}
)

var (
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrAmountTooSmall      = errors.New("amount is too small to convert to the home currency")
	ErrInvalidCurrency     = errors.New("currency must be ARS or USD")
	ErrMissingExchangeRate = errors.New("exchange rate is required for foreign currency")
	ErrInvalidExchangeRate = errors.New("exchange rate must be greater than zero")
	ErrInvalidType         = errors.New("type must be income or expense")
	ErrEmptyDescription    = errors.New("empty description")
	ErrDescriptionTooLong  = errors.New("description too long (max 255 characters)")
	ErrInvalidCategoryID   = errors.New("a valid category must be selected")
	ErrEmptyName           = errors.New("empty name")
	ErrNameTooLong         = errors.New("name too long (max 100 characters)")
	ErrInvalidIcon         = errors.New("icon must be 1-50 letters or digits")
	ErrInvalidColor        = errors.New("color must use the #rrggbb format")
	ErrInvalidYear         = errors.New("invalid year")
	ErrInvalidMonth        = errors.New("month must be \"all\" or 1-12")
	ErrInvalidDate         = errors.New("invalid date")
)

// IsValid reports whether t is one of the two closed transaction types.
func (t TransactionType) IsValid() bool {
	return t == Income || t == Expense
}

func (c Currency) IsValid() bool {
	return c == ARS || c == USD
}

// IsHome reports whether amounts in c need no conversion.
func (c Currency) IsHome() bool {
	return c == HomeCurrency
}

// Validate checks the submitted fields without normalizing anything.
func (in TransactionInput) Validate() error {
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return newValidationError("description", ErrEmptyDescription)
	}
	if len(desc) > MaxDescriptionLen {
		return newValidationError("description", ErrDescriptionTooLong)
	}
	if !in.Amount.IsPositive() {
		return newValidationError("amount", ErrInvalidAmount)
	}
	if !in.Currency.IsValid() {
		return newValidationError("currency", ErrInvalidCurrency)
	}
	if !in.Currency.IsHome() {
		if in.ExchangeRate == nil {
			return newValidationError("exchangeRate", ErrMissingExchangeRate)
		}
		if !in.ExchangeRate.IsPositive() {
			return newValidationError("exchangeRate", ErrInvalidExchangeRate)
		}
	}
	if !in.Type.IsValid() {
		return newValidationError("type", ErrInvalidType)
	}
	if err := in.Date.Validate(); err != nil {
		return newValidationError("date", err)
	}
	if in.CategoryID <= 0 {
		return newValidationError("categoryId", ErrInvalidCategoryID)
	}
	return nil
}

// Build validates the input and returns the transaction it describes with the
// home-currency amount computed. Identity and timestamps are left to storage.
func (in TransactionInput) Build() (Transaction, error) {
	if err := in.Validate(); err != nil {
		return Transaction{}, err
	}

	home, err := NormalizeAmount(in.Amount, in.Currency, in.ExchangeRate)
	if err != nil {
		return Transaction{}, err
	}

	var rate *decimal.Decimal
	if !in.Currency.IsHome() {
		r := *in.ExchangeRate
		rate = &r
	}

	return Transaction{
		Description:          strings.TrimSpace(in.Description),
		Amount:               in.Amount,
		AmountInHomeCurrency: home,
		Currency:             in.Currency,
		ExchangeRate:         rate,
		CategoryID:           in.CategoryID,
		Date:                 in.Date,
		Type:                 in.Type,
	}, nil
}

func (in CategoryInput) Validate() error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return newValidationError("name", ErrEmptyName)
	}
	if len(name) > MaxNameLen {
		return newValidationError("name", ErrNameTooLong)
	}
	if !in.Type.IsValid() {
		return newValidationError("type", ErrInvalidType)
	}
	if !validIcon(strings.TrimSpace(in.Icon)) {
		return newValidationError("icon", ErrInvalidIcon)
	}
	if !validHexColor(strings.TrimSpace(in.Color)) {
		return newValidationError("color", ErrInvalidColor)
	}
	return nil
}

// Category returns the trimmed category described by the input.
func (in CategoryInput) Category() Category {
	return Category{
		Name:  strings.TrimSpace(in.Name),
		Type:  in.Type,
		Icon:  strings.TrimSpace(in.Icon),
		Color: strings.ToLower(strings.TrimSpace(in.Color)),
	}
}

func validIcon(icon string) bool {
	if icon == "" || len(icon) > MaxIconLen {
		return false
	}
	for _, r := range icon {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}

func validHexColor(color string) bool {
	if len(color) != 7 || color[0] != '#' {
		return false
	}
	for _, r := range color[1:] {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'f' || r >= 'A' && r <= 'F') {
			return false
		}
	}
	return true
}
