package values

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	tests := []struct {
		name     string
		amount   decimal.Decimal
		currency string
		wantErr  bool
	}{
		{"valid USD amount", decimal.NewFromFloat(123.45), USD, false},
		{"zero amount", decimal.Zero, USD, false},
		{"negative amount", decimal.NewFromFloat(-50.0), USD, false},
		{"lowercase currency normalized", decimal.NewFromFloat(10.0), "usd", false},
		{"empty currency", decimal.NewFromFloat(100.0), "", true},
		{"unsupported currency", decimal.NewFromFloat(100.0), "XXX", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			money, err := NewMoney(tt.amount, tt.currency)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, money.Amount().Equal(tt.amount))
		})
	}
}

func TestNewMoneyFromString(t *testing.T) {
	money, err := NewMoneyFromString("123.45", USD)
	require.NoError(t, err)
	assert.Equal(t, "123.45", money.Amount().String())
	assert.Equal(t, USD, money.Currency())

	_, err = NewMoneyFromString("not-a-number", USD)
	assert.Error(t, err)
}

func TestMoney_String(t *testing.T) {
	assert.Equal(t, "$123.45", MustNewMoneyFromFloat(123.45, USD).String())
	assert.Equal(t, "$0.00", Zero(USD).String())
	assert.Equal(t, "€9.90", MustNewMoneyFromFloat(9.9, EUR).String())
}

func TestMoney_Arithmetic(t *testing.T) {
	hundred := MustNewMoneyFromFloat(100.0, USD)
	fifty := MustNewMoneyFromFloat(50.0, USD)
	fiftyEUR := MustNewMoneyFromFloat(50.0, EUR)

	sum, err := hundred.Add(fifty)
	require.NoError(t, err)
	assert.Equal(t, "150", sum.Amount().String())

	diff, err := hundred.Sub(fifty)
	require.NoError(t, err)
	assert.Equal(t, "50", diff.Amount().String())

	_, err = hundred.Add(fiftyEUR)
	assert.ErrorContains(t, err, "cannot add different currencies")

	_, err = hundred.Sub(fiftyEUR)
	assert.ErrorContains(t, err, "cannot subtract different currencies")
}

func TestMoney_Comparison(t *testing.T) {
	a := MustNewMoneyFromFloat(100.0, USD)
	b := MustNewMoneyFromFloat(100.0, USD)
	c := MustNewMoneyFromFloat(50.0, USD)
	eur := MustNewMoneyFromFloat(100.0, EUR)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(eur))

	assert.Equal(t, 0, a.Compare(b))
	assert.Equal(t, 1, a.Compare(c))
	assert.Equal(t, -1, c.Compare(a))

	assert.Panics(t, func() { a.Compare(eur) })
}

func TestMoney_SignPredicates(t *testing.T) {
	positive := MustNewMoneyFromFloat(100.0, USD)
	negative := MustNewMoneyFromFloat(-50.0, USD)
	zero := Zero(USD)

	assert.True(t, zero.IsZero())
	assert.True(t, positive.IsPositive())
	assert.True(t, negative.IsNegative())
	assert.False(t, positive.IsZero())
	assert.False(t, zero.IsPositive())
	assert.False(t, positive.IsNegative())
}

func TestMoney_Rounding(t *testing.T) {
	money, err := NewMoneyFromString("123.456789", USD)
	require.NoError(t, err)

	assert.Equal(t, "123.46", money.Round(2).Amount().String())
	assert.Equal(t, "123.46", money.RoundToNearestCent().Amount().String())
}

func TestMoney_JSON(t *testing.T) {
	money := MustNewMoneyFromFloat(123.45, USD)

	data, err := json.Marshal(money)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"123.45","currency":"USD"}`, string(data))

	var decoded Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, money.Equal(decoded))

	assert.Error(t, json.Unmarshal([]byte(`{"amount":"invalid","currency":"USD"}`), &decoded))
	assert.Error(t, json.Unmarshal([]byte(`{"amount":"1.00","currency":"XXX"}`), &decoded))
}

func TestMustNewMoney(t *testing.T) {
	money := MustNewMoney(decimal.NewFromFloat(100.0), USD)
	assert.Equal(t, "100", money.Amount().String())

	assert.Panics(t, func() { MustNewMoney(decimal.NewFromFloat(100.0), "XXX") })
}
