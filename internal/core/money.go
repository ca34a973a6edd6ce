// Package core contains the domain model and the pure calculation layer:
// VAT gross/net decomposition, statutory meal allowances (Verpflegungs-
// pauschalen) and mileage reimbursement. Nothing in this package performs
// I/O; every function is deterministic in its inputs.
package core

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Money is an amount in Euro cents. All stored amounts are kept in cents so
// that sums over persisted records stay exact.
type Money struct {
	Cents int64 `json:"cents"`
}

var ErrInvalidAmount = errors.New("invalid amount")

// MoneyFromEuros converts a Euro value to cents with half-up rounding on the
// third decimal. This is the single rounding point for all calculator
// results; callers persist what comes out of here and never re-round.
func MoneyFromEuros(euros float64) Money {
	return Money{Cents: int64(math.Round(euros * 100))}
}

// Euros returns the Euro value as a float64 for display and for feeding the
// VAT and mileage formulas. Use cents for sums.
func (m Money) Euros() float64 {
	return float64(m.Cents) / 100.0
}

func (m Money) IsZero() bool {
	return m.Cents == 0
}

func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

func (m Money) Sub(other Money) Money {
	return Money{Cents: m.Cents - other.Cents}
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// String formats the amount in the German style used on reports, e.g.
// "12,34 EUR".
func (m Money) String() string {
	cents := m.Cents
	neg := cents < 0
	if neg {
		cents = -cents
	}
	s := strconv.FormatInt(cents/100, 10) + "," + pad2(cents%100) + " EUR"
	if neg {
		return "-" + s
	}
	return s
}

func pad2(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}

// ParseDecimalToCents converts a decimal string to cents with half-up
// rounding on the third decimal place. It accepts both dot (12.34) and comma
// (12,34) separators; German users type commas. Returns an error for invalid
// formats, negative values, or zero amounts.
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	cents := iv*100 + fracCents
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}
