package entity

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustMoney(t *testing.T, amount, currency string) Money {
	t.Helper()
	m, err := NewMoney(decimal.RequireFromString(amount), currency)
	require.NoError(t, err)
	return m
}

func TestNewMoney(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		amount   string
		currency string
		wantErr  error
		wantCur  string
	}{
		{name: "valid", amount: "12.5", currency: "USD", wantCur: "USD"},
		{name: "lowercase currency", amount: "1", currency: "eur", wantCur: "EUR"},
		{name: "zero", amount: "0", currency: "USD", wantCur: "USD"},
		{name: "negative", amount: "-0.01", currency: "USD", wantErr: ErrNegativeMoney},
		{name: "empty currency", amount: "1", currency: "", wantErr: ErrValidation},
		{name: "long currency", amount: "1", currency: "USDT", wantErr: ErrValidation},
		{name: "digits", amount: "1", currency: "US1", wantErr: ErrValidation},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m, err := NewMoney(decimal.RequireFromString(tt.amount), tt.currency)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCur, m.Currency())
			assert.True(t, m.Amount().Equal(decimal.RequireFromString(tt.amount)))
		})
	}
}

func TestMoneyArithmetic(t *testing.T) {
	t.Parallel()

	a := mustMoney(t, "10.50", "USD")
	b := mustMoney(t, "2.25", "USD")

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, "USD 12.75", sum.String())

	diff, err := a.Sub(b)
	require.NoError(t, err)
	assert.Equal(t, "USD 8.25", diff.String())

	_, err = b.Sub(a)
	assert.ErrorIs(t, err, ErrNegativeMoney)

	prod, err := b.Mul(decimal.NewFromInt(3))
	require.NoError(t, err)
	assert.Equal(t, "USD 6.75", prod.String())

	_, err = b.Mul(decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, ErrNegativeMoney)

	q, err := a.Div(decimal.NewFromInt(2))
	require.NoError(t, err)
	assert.True(t, q.Amount().Equal(decimal.RequireFromString("5.25")))

	_, err = a.Div(decimal.Zero)
	assert.ErrorIs(t, err, ErrDivisionByZero)
}

func TestMoneyCurrencyMismatch(t *testing.T) {
	t.Parallel()

	usd := mustMoney(t, "1", "USD")
	eur := mustMoney(t, "1", "EUR")

	_, err := usd.Add(eur)
	assert.ErrorIs(t, err, ErrCurrencyMismatch)

	_, err = usd.Sub(eur)
	assert.ErrorIs(t, err, ErrCurrencyMismatch)
}

func TestMoneyIsExact(t *testing.T) {
	t.Parallel()

	m := mustMoney(t, "0.1", "USD")
	sum, err := m.Add(mustMoney(t, "0.2", "USD"))
	require.NoError(t, err)
	assert.True(t, sum.Equal(mustMoney(t, "0.3", "USD")))
}

func TestMoneyJSON(t *testing.T) {
	t.Parallel()

	m := mustMoney(t, "3.5", "usd")
	b, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"3.5","currency":"USD"}`, string(b))

	var back Money
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, back.Equal(m))

	assert.Error(t, json.Unmarshal([]byte(`{"amount":"-1","currency":"USD"}`), &back))
}
