package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Money is an amount of minor units in a named denomination. All
// arithmetic is integer-only.
//
// Examples:
//   - New(4900, "USD").WithSymbol("$") displays as $49.00
//   - New(100, "JPY") displays as JPY 100
type Money struct {
	Amount int64  `json:"amount"` // Minor units (cents, pence, satoshi, ...)
	Code   string `json:"code"`   // Denomination code, upper case
	Symbol string `json:"symbol,omitempty"`
}

// New creates a Money value in the denomination with the given code.
func New(amount int64, code string) Money {
	return Money{Amount: amount, Code: strings.ToUpper(code)}
}

// Zero returns a zero Money value in the denomination with the given code.
func Zero(code string) Money { return New(0, code) }

// WithSymbol returns a copy that displays with symbol instead of the code.
func (m Money) WithSymbol(symbol string) Money {
	m.Symbol = symbol
	return m
}

// Add adds two Money values. Panics if denominations don't match.
func (m Money) Add(other Money) Money {
	m.assertSameCode(other)
	m.Amount += other.Amount
	return m
}

// Subtract subtracts another Money value. Panics if denominations don't match.
func (m Money) Subtract(other Money) Money {
	m.assertSameCode(other)
	m.Amount -= other.Amount
	return m
}

// IsZero returns true if the amount is zero.
func (m Money) IsZero() bool { return m.Amount == 0 }

// IsPositive returns true if the amount is greater than zero.
func (m Money) IsPositive() bool { return m.Amount > 0 }

// IsNegative returns true if the amount is less than zero.
func (m Money) IsNegative() bool { return m.Amount < 0 }

// Equal reports whether amount and denomination code match. The display
// symbol is ignored.
func (m Money) Equal(other Money) bool {
	return m.Amount == other.Amount && m.Code == other.Code
}

// Min returns the smaller of two Money values. Panics if denominations don't match.
func (m Money) Min(other Money) Money {
	m.assertSameCode(other)
	if m.Amount < other.Amount {
		return m
	}
	return other
}

// FormatMajor returns the major unit string without symbol.
// "49.00" for New(4900, "USD"), "100" for New(100, "JPY").
func (m Money) FormatMajor() string {
	decimals := codeDecimals(m.Code)
	if decimals == 0 {
		return fmt.Sprintf("%d", m.Amount)
	}

	divisor := int64(1)
	for range decimals {
		divisor *= 10
	}

	isNegative := m.Amount < 0
	absAmount := m.Amount
	if isNegative {
		absAmount = -absAmount
	}

	result := fmt.Sprintf("%d.%0*d", absAmount/divisor, decimals, absAmount%divisor)
	if isNegative {
		return "-" + result
	}
	return result
}

// String returns a human-readable string: "$49.00" when a symbol is set,
// "JPY 100" otherwise.
func (m Money) String() string {
	if m.Symbol != "" {
		return m.Symbol + m.FormatMajor()
	}
	return m.Code + " " + m.FormatMajor()
}

// MarshalJSON implements json.Marshaler.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount  int64  `json:"amount"`
		Code    string `json:"code"`
		Display string `json:"display"`
	}{
		Amount:  m.Amount,
		Code:    m.Code,
		Display: m.String(),
	})
}

func (m Money) assertSameCode(other Money) {
	if m.Code != other.Code {
		panic(fmt.Sprintf("money: denomination mismatch: %s != %s", m.Code, other.Code))
	}
}

// codeDecimals returns the number of minor-unit digits for a code.
// Unknown codes are treated as two-decimal units.
func codeDecimals(code string) int {
	switch strings.ToUpper(code) {
	case "JPY", "KRW", "VND", "CLP", "PYG", "IDR", "HOUR", "UNIT":
		return 0
	case "BTC":
		return 8
	default:
		return 2
	}
}

// Sum adds values in the denomination with the given code. All values must
// share that code.
func Sum(code string, values ...Money) Money {
	result := Zero(code)
	for _, v := range values {
		result = result.Add(v)
	}
	return result
}
