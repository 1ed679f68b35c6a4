// Package http serves the JSON API.
//
// This file holds the helpers that turn query strings, path values and JSON
// bodies into domain values.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"gastos/internal/core"
)

const maxBodyBytes = 1 << 20

var (
	ErrMalformedBody = errors.New("malformed request body")
	ErrInvalidID     = errors.New("invalid id")
	ErrInvalidPage   = errors.New("page must be a positive integer")
)

// ParsePeriodQuery reads ?year=&month=. A missing year means the current one
// and a missing month means the whole year.
func ParsePeriodQuery(r *http.Request, now time.Time) (core.Period, error) {
	q := r.URL.Query()
	year := strings.TrimSpace(q.Get("year"))
	if year == "" {
		year = strconv.Itoa(now.Year())
	}
	return core.ParsePeriod(year, q.Get("month"))
}

// ParseYearQuery reads ?year=, defaulting to the current year.
func ParseYearQuery(r *http.Request, now time.Time) (int, error) {
	p, err := ParsePeriodQuery(r, now)
	if err != nil {
		return 0, err
	}
	return p.Year, nil
}

// ParsePageQuery reads ?page=, defaulting to 1. Pages past the end are
// clamped by the service.
func ParsePageQuery(r *http.Request) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get("page"))
	if v == "" {
		return 1, nil
	}
	page, err := strconv.Atoi(v)
	if err != nil || page < 1 {
		return 0, &core.ValidationError{Field: "page", Err: ErrInvalidPage}
	}
	return page, nil
}

// PathID parses the {id} path value.
func PathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, r.PathValue("id"))
	}
	return id, nil
}

// DecodeJSON reads a single JSON object into v, rejecting unknown fields.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedBody, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("%w: trailing data", ErrMalformedBody)
	}
	return nil
}

// DecimalText accepts a JSON number or a string such as "12,50" and keeps
// the text for the domain parsers.
type DecimalText string

func (d *DecimalText) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*d = DecimalText(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*d = DecimalText(n)
	return nil
}

type (
	TransactionRequest struct {
		Description  string       `json:"description" validate:"required,max=255"`
		Amount       DecimalText  `json:"amount" validate:"required"`
		Currency     string       `json:"currency" validate:"required,oneof=ARS USD"`
		ExchangeRate *DecimalText `json:"exchangeRate" validate:"required_if=Currency USD"`
		CategoryID   int64        `json:"categoryId" validate:"required,gt=0"`
		Date         string       `json:"date" validate:"required"`
		Type         string       `json:"type" validate:"required,oneof=income expense"`
	}

	CategoryRequest struct {
		Name  string `json:"name" validate:"required,max=100"`
		Type  string `json:"type" validate:"required,oneof=income expense"`
		Icon  string `json:"icon" validate:"required,alphanum,max=50"`
		Color string `json:"color" validate:"required,hexcolor,len=7"`
	}
)

// RequestValidator checks request DTOs before they reach the services.
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &RequestValidator{validate: v}
}

// Struct validates s and reports the first failing field as a ValidationError.
func (rv *RequestValidator) Struct(s any) error {
	err := rv.validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &core.ValidationError{Field: fe.Field(), Err: fieldError(fe)}
	}
	return err
}

func fieldError(fe validator.FieldError) error {
	switch fe.Tag() {
	case "required", "required_if":
		return errors.New("is required")
	case "max":
		return fmt.Errorf("must be at most %s characters", fe.Param())
	case "oneof":
		return fmt.Errorf("must be one of: %s", fe.Param())
	case "gt":
		return fmt.Errorf("must be greater than %s", fe.Param())
	case "alphanum":
		return errors.New("must contain only letters and digits")
	case "hexcolor", "len":
		return core.ErrInvalidColor
	default:
		return fmt.Errorf("failed %s validation", fe.Tag())
	}
}

// Input converts a validated request into the domain input.
func (req TransactionRequest) Input() (core.TransactionInput, error) {
	amount, err := core.ParseAmount(string(req.Amount))
	if err != nil {
		return core.TransactionInput{}, &core.ValidationError{Field: "amount", Err: err}
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return core.TransactionInput{}, &core.ValidationError{Field: "date", Err: err}
	}

	in := core.TransactionInput{
		Description: req.Description,
		Amount:      amount,
		Currency:    core.Currency(req.Currency),
		CategoryID:  req.CategoryID,
		Date:        date,
		Type:        core.TransactionType(req.Type),
	}
	if req.ExchangeRate != nil && !in.Currency.IsHome() {
		rate, err := core.ParseExchangeRate(string(*req.ExchangeRate))
		if err != nil {
			return core.TransactionInput{}, &core.ValidationError{Field: "exchangeRate", Err: err}
		}
		in.ExchangeRate = &rate
	}
	return in, nil
}

func (req CategoryRequest) Input() core.CategoryInput {
	return core.CategoryInput{
		Name:  req.Name,
		Type:  core.TransactionType(req.Type),
		Icon:  req.Icon,
		Color: req.Color,
	}
}
