package crdeal

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/creditrisk/internal/deal"
)

// fieldReader pulls typed values out of one element's attributes. Missing or
// empty attributes are nil; values that fail coercion are nil too and leave a
// warning behind.
type fieldReader struct {
	attrs    map[string]string
	dealID   string
	warnings *[]deal.Warning
}

func (f *fieldReader) raw(name string) (string, bool) {
	v, ok := f.attrs[name]
	if !ok || v == "" {
		return "", false
	}

	return v, true
}

func (f *fieldReader) warn(name, value, msg string) {
	*f.warnings = append(*f.warnings, deal.Warning{
		Kind:    deal.WarnFieldCoercion,
		DealID:  f.dealID,
		Field:   name,
		Value:   value,
		Message: msg,
	})
}

func (f *fieldReader) text(name string) *string {
	v, ok := f.raw(name)
	if !ok {
		return nil
	}

	return &v
}

func (f *fieldReader) integer(name string) *int {
	v, ok := f.raw(name)
	if !ok {
		return nil
	}

	n, err := parseInt(v)
	if err != nil {
		f.warn(name, v, "not an integer")
		return nil
	}

	return &n
}

func (f *fieldReader) money(name string) decimal.NullDecimal {
	v, ok := f.raw(name)
	if !ok {
		return decimal.NullDecimal{}
	}

	d, err := parseDecimal(v)
	if err != nil {
		f.warn(name, v, "not a decimal")
		return decimal.NullDecimal{}
	}

	return decimal.NewNullDecimal(d)
}

func (f *fieldReader) date(name string) *civil.Date {
	v, ok := f.raw(name)
	if !ok {
		return nil
	}

	d, err := parseDate(v)
	if err != nil {
		f.warn(name, v, "not a date")
		return nil
	}

	return &d
}

func (f *fieldReader) status(name string) *deal.Status {
	n := f.integer(name)
	if n == nil {
		return nil
	}

	s := deal.Status(*n)
	if !s.Valid() {
		*f.warnings = append(*f.warnings, deal.Warning{
			Kind:    deal.WarnStatusOutOfRange,
			DealID:  f.dealID,
			Field:   name,
			Value:   strconv.Itoa(*n),
			Message: "status code outside 1..13",
		})
	}

	return &s
}

// parseDecimal accepts "." or "," as the decimal separator and ignores
// spaces used as thousand separators. With both separators present the last
// one is the decimal point.
func parseDecimal(s string) (decimal.Decimal, error) {
	clean := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}

		return r
	}, s)

	comma, dot := strings.LastIndex(clean, ","), strings.LastIndex(clean, ".")
	if comma >= 0 && dot >= 0 {
		if comma > dot {
			clean = strings.ReplaceAll(clean, ".", "")
		} else {
			clean = strings.ReplaceAll(clean, ",", "")
		}
	}

	return decimal.NewFromString(strings.ReplaceAll(clean, ",", "."))
}

var (
	errFractional = errors.New("fractional value")
	errIntRange   = errors.New("value out of integer range")

	minInt = decimal.NewFromInt(math.MinInt)
	maxInt = decimal.NewFromInt(math.MaxInt)
)

// parseInt also accepts integral decimals such as "45.0".
func parseInt(s string) (int, error) {
	s = strings.TrimSpace(s)

	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}

	d, err := parseDecimal(s)
	if err != nil {
		return 0, err
	}

	if !d.Equal(d.Truncate(0)) {
		return 0, errFractional
	}

	if d.LessThan(minInt) || d.GreaterThan(maxInt) {
		return 0, errIntRange
	}

	return int(d.IntPart()), nil
}

func parseDate(s string) (civil.Date, error) {
	s = strings.TrimSpace(s)

	var lastErr error

	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return civil.DateOf(t), nil
		}

		lastErr = err
	}

	return civil.Date{}, lastErr
}
