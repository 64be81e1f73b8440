package money

import (
	"errors"
	"strings"
)

var (
	ErrInvalidCurrency  = errors.New("money: invalid currency code")
	ErrCurrencyMismatch = errors.New("money: currency mismatch")
)

// DefaultCurrency is used for listings that do not declare one.
const DefaultCurrency = "INR"

// basisPoints is 100%.
const basisPoints = int64(10000)

// Money keeps amounts in integer currency units so fee math never touches floats.
type Money struct {
	Amount   int64
	Currency string
}

// New constructs a Money value validating minimal invariants.
func New(amount int64, currency string) (Money, error) {
	if len(currency) != 3 {
		return Money{}, ErrInvalidCurrency
	}
	return Money{Amount: amount, Currency: strings.ToUpper(currency)}, nil
}

// Must creates Money and panics if validation fails; useful in tests and fixtures.
func Must(amount int64, currency string) Money {
	m, err := New(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// Zero returns an empty amount in the given currency.
func Zero(currency string) Money {
	return Money{Currency: strings.ToUpper(currency)}
}

func (m Money) Add(other Money) (Money, error) {
	if err := m.ensureSameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{Amount: m.Amount + other.Amount, Currency: m.Currency}, nil
}

func (m Money) Sub(other Money) (Money, error) {
	if err := m.ensureSameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{Amount: m.Amount - other.Amount, Currency: m.Currency}, nil
}

// Multiply multiplies the amount by the provided factor.
func (m Money) Multiply(times int64) Money {
	return Money{Amount: m.Amount * times, Currency: m.Currency}
}

// PercentBps returns bps/10000 of the amount rounded half away from zero,
// so 5% of 9 gives 0 and 5% of 10 gives 1 (0.45 and 0.5).
func (m Money) PercentBps(bps int64) Money {
	if bps <= 0 || m.Amount == 0 {
		return Money{Currency: m.Currency}
	}
	product := m.Amount * bps
	neg := product < 0
	if neg {
		product = -product
	}
	amount := (product + basisPoints/2) / basisPoints
	if neg {
		amount = -amount
	}
	return Money{Amount: amount, Currency: m.Currency}
}

// MinorUnits converts to the smallest currency unit (paise, cents).
func (m Money) MinorUnits() int64 {
	return m.Amount * 100
}

func (m Money) IsZero() bool {
	return m.Amount == 0
}

func (m Money) IsPositive() bool {
	return m.Amount > 0
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
