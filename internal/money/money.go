// Package money provides exact currency arithmetic in integer minor units.
//
// All amounts are stored as cents (or the equivalent minor unit) together
// with an ISO 4217 currency code. Arithmetic never touches binary floats;
// conversion to a decimal representation happens only at the display and
// transport boundaries.
package money

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

var (
	ErrCurrencyMismatch = errors.New("currency mismatch")
	ErrInvalidAmount    = errors.New("invalid amount")
)

// Money is an amount in integer minor units of a single currency.
// The zero value is zero units of the empty currency and is only
// meaningful as a placeholder.
type Money struct {
	Cents    int64  `json:"cents"`
	Currency string `json:"currency"`
}

// New returns an amount of the given minor units and currency.
func New(cents int64, currency string) Money {
	return Money{Cents: cents, Currency: strings.ToUpper(strings.TrimSpace(currency))}
}

// Parse converts a decimal string such as "12.34" or "12,34" into Money.
//
// It accepts both dot and comma decimal separators, an optional leading
// minus, and performs half-up rounding on the third decimal digit.
// Returns ErrInvalidAmount for anything else.
func Parse(s, currency string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")

	negative := false
	if strings.HasPrefix(s, "-") {
		negative = true
		s = s[1:]
	} else {
		s = strings.TrimPrefix(s, "+")
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return Money{}, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	if intPart == "0" && fracPart == "" && len(parts) == 2 {
		return Money{}, ErrInvalidAmount
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return Money{}, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return Money{}, ErrInvalidAmount
		}
	}

	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	const maxSafe = (1<<63 - 1) / 100
	if iv > maxSafe {
		return Money{}, ErrInvalidAmount
	}

	// First two fractional digits become cents, half-up on the third.
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
	if negative {
		cents = -cents
	}
	return New(cents, currency), nil
}

// MustParse is Parse for test fixtures and constants; it panics on error.
func MustParse(s, currency string) Money {
	m, err := Parse(s, currency)
	if err != nil {
		panic(fmt.Sprintf("money: parse %q: %v", s, err))
	}
	return m
}

// SameCurrency reports whether both amounts are denominated alike.
func (m Money) SameCurrency(o Money) bool {
	return m.Currency == o.Currency
}

// Add returns m + o.
func (m Money) Add(o Money) (Money, error) {
	if !m.SameCurrency(o) {
		return Money{}, fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, m.Currency, o.Currency)
	}
	return Money{Cents: m.Cents + o.Cents, Currency: m.Currency}, nil
}

// Sub returns m - o. The result may be negative; callers enforce
// non-negativity at their own boundaries.
func (m Money) Sub(o Money) (Money, error) {
	if !m.SameCurrency(o) {
		return Money{}, fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, m.Currency, o.Currency)
	}
	return Money{Cents: m.Cents - o.Cents, Currency: m.Currency}, nil
}

// Cmp compares two amounts of the same currency: -1 if m < o, 0 if equal,
// +1 if m > o.
func (m Money) Cmp(o Money) (int, error) {
	if !m.SameCurrency(o) {
		return 0, fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, m.Currency, o.Currency)
	}
	switch {
	case m.Cents < o.Cents:
		return -1, nil
	case m.Cents > o.Cents:
		return 1, nil
	default:
		return 0, nil
	}
}

// ScaleFraction returns m * num / den, truncated toward zero.
func (m Money) ScaleFraction(num, den int64) (Money, error) {
	if den == 0 {
		return Money{}, fmt.Errorf("%w: zero denominator", ErrInvalidAmount)
	}
	return Money{Cents: m.Cents * num / den, Currency: m.Currency}, nil
}

// Split divides m into n installments under the floor + remainder-last
// policy: the first n-1 parts are floor(m/n) and the final part takes
// whatever is left, so the parts always sum to m exactly.
func (m Money) Split(n int) ([]Money, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: split into %d parts", ErrInvalidAmount, n)
	}
	base := m.Cents / int64(n)
	parts := make([]Money, n)
	for i := 0; i < n-1; i++ {
		parts[i] = Money{Cents: base, Currency: m.Currency}
	}
	parts[n-1] = Money{Cents: m.Cents - base*int64(n-1), Currency: m.Currency}
	return parts, nil
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool { return m.Cents == 0 }

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool { return m.Cents < 0 }

// IsPositive reports whether the amount is above zero.
func (m Money) IsPositive() bool { return m.Cents > 0 }

// DecimalString renders the amount as a plain decimal with two fractional
// digits, e.g. -1234 cents -> "-12.34". This is the wire format.
func (m Money) DecimalString() string {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// Format renders the amount with its currency code for human-facing
// messages, e.g. "USD 12.34".
func (m Money) Format() string {
	return fmt.Sprintf("%s %s", m.Currency, m.DecimalString())
}

func (m Money) String() string { return m.Format() }
