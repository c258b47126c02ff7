package money

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	ErrInvalidCurrency  = errors.New("money: invalid currency code")
	ErrCurrencyMismatch = errors.New("money: currency mismatch")
	ErrNotPositive      = errors.New("money: amount must be positive")
	ErrOverflow         = errors.New("money: amount out of range")
)

// Money keeps amounts in whole currency units. Every listing price and
// reservation total in one deployment shares the same unit.
type Money struct {
	Amount   int64
	Currency string
}

func New(amount int64, currency string) (Money, error) {
	if len(strings.TrimSpace(currency)) != 3 {
		return Money{}, ErrInvalidCurrency
	}
	return Money{Amount: amount, Currency: strings.ToUpper(currency)}, nil
}

// Positive is New plus a check that the amount is above zero; nightly
// prices use it.
func Positive(amount int64, currency string) (Money, error) {
	m, err := New(amount, currency)
	if err != nil {
		return Money{}, err
	}
	if m.Amount <= 0 {
		return Money{}, ErrNotPositive
	}
	return m, nil
}

// Must panics on invalid input; for fixtures and tests.
func Must(amount int64, currency string) Money {
	m, err := New(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Add(other Money) (Money, error) {
	if err := m.ensureSameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{Amount: m.Amount + other.Amount, Currency: m.Currency}, nil
}

// Multiply fails with ErrOverflow when the product does not fit in int64.
func (m Money) Multiply(times int64) (Money, error) {
	product := m.Amount * times
	if m.Amount != 0 && (product/m.Amount != times || (m.Amount == -1 && times == math.MinInt64)) {
		return Money{}, ErrOverflow
	}
	return Money{Amount: product, Currency: m.Currency}, nil
}

func (m Money) Equal(other Money) bool {
	return m.Amount == other.Amount && m.Currency == other.Currency
}

func (m Money) IsZero() bool {
	return m.Amount == 0
}

func (m Money) String() string {
	return fmt.Sprintf("%d %s", m.Amount, m.Currency)
}

func (m Money) ensureSameCurrency(other Money) error {
	if m.Currency == "" || other.Currency == "" {
		return ErrInvalidCurrency
	}
	if m.Currency != other.Currency {
		return ErrCurrencyMismatch
	}
	return nil
}
