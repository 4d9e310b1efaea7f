package valueobject

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 code accepted by the shop
type Currency string

const (
	USD Currency = "USD"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
	JPY Currency = "JPY"
)

// DefaultCurrency applies when a product names none
const DefaultCurrency = USD

// decimal places per currency
var minorUnits = map[Currency]int32{USD: 2, EUR: 2, GBP: 2, JPY: 0}

// ParseCurrency upper-cases code and checks it is sold in; blank means DefaultCurrency
func ParseCurrency(code string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(code)))
	switch _, ok := minorUnits[c]; {
	case c == "":
		return DefaultCurrency, nil
	case !ok:
		return "", fmt.Errorf("unsupported currency: %s", code)
	}
	return c, nil
}

// MinorUnits is the number of decimal places prices carry, 2 when unknown
func (c Currency) MinorUnits() int32 {
	if places, ok := minorUnits[c]; ok {
		return places
	}
	return 2
}

// Money is an immutable amount in one currency. Arithmetic across
// currencies is an error; nothing converts between them.
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

type moneyJSON struct {
	Amount   string   `json:"amount"`
	Currency Currency `json:"currency"`
}

func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	if currency == "" {
		return Money{}, errors.New("currency cannot be empty")
	}
	return Money{amount: amount, currency: currency}, nil
}

// NewMoneyFromString parses amounts as stored in the database and sent by clients ("19.99")
func NewMoneyFromString(amount string, currency Currency) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	return NewMoney(d, currency)
}

func Zero(currency Currency) Money { return Money{amount: decimal.Zero, currency: currency} }

func (m Money) Amount() decimal.Decimal { return m.amount }
func (m Money) Currency() Currency      { return m.currency }
func (m Money) IsZero() bool            { return m.amount.IsZero() }
func (m Money) IsNegative() bool        { return m.amount.IsNegative() }

func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("currency mismatch: %s + %s", m.currency, other.currency)
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// MultiplyByInt prices qty units, as on an order line
func (m Money) MultiplyByInt(qty int64) Money {
	return Money{amount: m.amount.Mul(decimal.NewFromInt(qty)), currency: m.currency}
}

// Round rounds half away from zero to the currency's minor units
func (m Money) Round() Money {
	return Money{amount: m.amount.Round(m.currency.MinorUnits()), currency: m.currency}
}

func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

func (m Money) fixed() string { return m.amount.StringFixed(m.currency.MinorUnits()) }

// String formats as "19.99 USD"
func (m Money) String() string { return m.fixed() + " " + string(m.currency) }

// MarshalJSON writes the amount as a fixed-point string
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyJSON{Amount: m.fixed(), Currency: m.currency})
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var v moneyJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	parsed, err := NewMoneyFromString(v.Amount, v.Currency)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
