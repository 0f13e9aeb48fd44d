package entity

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an immutable non-negative amount in a single ISO 4217 currency.
// Arithmetic between different currencies is rejected.
type Money struct {
	amount   decimal.Decimal
	currency string
}

// NewMoney validates amount and currency. The currency code is upper-cased.
func NewMoney(amount decimal.Decimal, currency string) (Money, error) {
	if amount.IsNegative() {
		return Money{}, fmt.Errorf("%w: %s", ErrNegativeMoney, amount.String())
	}
	cur, err := normalizeCurrency(currency)
	if err != nil {
		return Money{}, err
	}
	return Money{amount: amount, currency: cur}, nil
}

// ZeroMoney returns 0 in the given currency.
func ZeroMoney(currency string) (Money, error) {
	return NewMoney(decimal.Zero, currency)
}

func normalizeCurrency(currency string) (string, error) {
	cur := strings.ToUpper(strings.TrimSpace(currency))
	if len(cur) != 3 {
		return "", invalid("currency", "must be a 3-letter code")
	}
	for _, r := range cur {
		if r < 'A' || r > 'Z' {
			return "", invalid("currency", "must be a 3-letter code")
		}
	}
	return cur, nil
}

func (m Money) Amount() decimal.Decimal { return m.amount }
func (m Money) Currency() string        { return m.currency }
func (m Money) IsZero() bool            { return m.amount.IsZero() }

func (m Money) Add(o Money) (Money, error) {
	if m.currency != o.currency {
		return Money{}, fmt.Errorf("%w: %s and %s", ErrCurrencyMismatch, m.currency, o.currency)
	}
	return Money{amount: m.amount.Add(o.amount), currency: m.currency}, nil
}

func (m Money) Sub(o Money) (Money, error) {
	if m.currency != o.currency {
		return Money{}, fmt.Errorf("%w: %s and %s", ErrCurrencyMismatch, m.currency, o.currency)
	}
	res := m.amount.Sub(o.amount)
	if res.IsNegative() {
		return Money{}, fmt.Errorf("%w: %s - %s", ErrNegativeMoney, m.amount, o.amount)
	}
	return Money{amount: res, currency: m.currency}, nil
}

func (m Money) Mul(factor decimal.Decimal) (Money, error) {
	if factor.IsNegative() {
		return Money{}, fmt.Errorf("%w: factor %s", ErrNegativeMoney, factor)
	}
	return Money{amount: m.amount.Mul(factor), currency: m.currency}, nil
}

func (m Money) Div(divisor decimal.Decimal) (Money, error) {
	if divisor.IsZero() {
		return Money{}, ErrDivisionByZero
	}
	if divisor.IsNegative() {
		return Money{}, fmt.Errorf("%w: divisor %s", ErrNegativeMoney, divisor)
	}
	return Money{amount: m.amount.Div(divisor), currency: m.currency}, nil
}

// Round rounds half away from zero to the given number of decimal places.
func (m Money) Round(places int32) Money {
	return Money{amount: m.amount.Round(places), currency: m.currency}
}

func (m Money) Equal(o Money) bool {
	return m.currency == o.currency && m.amount.Equal(o.amount)
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.currency, m.amount.StringFixed(2))
}

type moneyJSON struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyJSON{Amount: m.amount, Currency: m.currency})
}

func (m *Money) UnmarshalJSON(b []byte) error {
	var raw moneyJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	v, err := NewMoney(raw.Amount, raw.Currency)
	if err != nil {
		return err
	}
	*m = v
	return nil
}
