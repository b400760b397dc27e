package values

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Supported ISO 4217 currency codes. The synthetic dataset is USD-only, but
// the value object stays currency-aware so mixed-currency bugs fail loudly
// instead of producing nonsense sums.
const (
	USD = "USD"
	EUR = "EUR"
	GBP = "GBP"
)

var currencySymbols = map[string]string{
	USD: "$",
	EUR: "€",
	GBP: "£",
}

// Money is an immutable amount-plus-currency pair backed by decimal
// arithmetic. The zero value is invalid; construct through NewMoney and
// friends.
type Money struct {
	amount   decimal.Decimal
	currency string
}

func NewMoney(amount decimal.Decimal, currency string) (Money, error) {
	currency = strings.ToUpper(currency)
	if _, ok := currencySymbols[currency]; !ok {
		if currency == "" {
			return Money{}, fmt.Errorf("currency cannot be empty")
		}
		return Money{}, fmt.Errorf("unsupported currency: %s", currency)
	}
	return Money{amount: amount, currency: currency}, nil
}

func NewMoneyFromString(amount, currency string) (Money, error) {
	dec, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount: %w", err)
	}
	return NewMoney(dec, currency)
}

// NewMoneyFromFloat converts through decimal.NewFromFloat; fine for the
// synthesizer's simulated amounts, not for exact accounting input.
func NewMoneyFromFloat(amount float64, currency string) (Money, error) {
	return NewMoney(decimal.NewFromFloat(amount), currency)
}

// MustNewMoney panics on a bad currency. For fixtures and constants.
func MustNewMoney(amount decimal.Decimal, currency string) Money {
	m, err := NewMoney(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

func MustNewMoneyFromFloat(amount float64, currency string) Money {
	return MustNewMoney(decimal.NewFromFloat(amount), currency)
}

func Zero(currency string) Money {
	return MustNewMoney(decimal.Zero, currency)
}

func (m Money) Amount() decimal.Decimal { return m.amount }
func (m Money) Currency() string       { return m.currency }

func (m Money) IsZero() bool     { return m.amount.IsZero() }
func (m Money) IsPositive() bool { return m.amount.IsPositive() }
func (m Money) IsNegative() bool { return m.amount.IsNegative() }

// String renders with the currency symbol at cent precision, e.g. "$123.45".
func (m Money) String() string {
	return currencySymbols[m.currency] + m.amount.StringFixed(2)
}

// Equal reports whether amount and currency both match.
func (m Money) Equal(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// Compare returns -1, 0, or 1. Panics on mismatched currencies: comparing
// across currencies is a programming error, not a recoverable condition.
func (m Money) Compare(other Money) int {
	if m.currency != other.currency {
		panic(fmt.Sprintf("cannot compare different currencies: %s vs %s", m.currency, other.currency))
	}
	return m.amount.Cmp(other.amount)
}

func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("cannot add different currencies: %s and %s", m.currency, other.currency)
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

func (m Money) Sub(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("cannot subtract different currencies: %s and %s", m.currency, other.currency)
	}
	return Money{amount: m.amount.Sub(other.amount), currency: m.currency}, nil
}

func (m Money) Round(places int32) Money {
	return Money{amount: m.amount.Round(places), currency: m.currency}
}

func (m Money) RoundToNearestCent() Money {
	return m.Round(2)
}

// ToFloat64 is the model boundary: the feature encoder works in float64.
func (m Money) ToFloat64() float64 {
	f, _ := m.amount.Float64()
	return f
}

type moneyJSON struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyJSON{Amount: m.amount.String(), Currency: m.currency})
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var raw moneyJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := NewMoneyFromString(raw.Amount, raw.Currency)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
