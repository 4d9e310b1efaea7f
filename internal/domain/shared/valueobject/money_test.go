package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("creates money with valid amount and currency", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromFloat(100.50), USD)
		require.NoError(t, err)
		assert.Equal(t, USD, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(100.50)))
	})

	t.Run("returns error for empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromFloat(100), "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "currency cannot be empty")
	})
}

func TestNewMoneyFromString(t *testing.T) {
	t.Run("valid string", func(t *testing.T) {
		m, err := NewMoneyFromString("123.45", EUR)
		require.NoError(t, err)
		assert.True(t, m.Amount().Equal(decimal.RequireFromString("123.45")))
	})

	t.Run("invalid string", func(t *testing.T) {
		_, err := NewMoneyFromString("not-a-number", EUR)
		assert.Error(t, err)
	})
}

func TestParseCurrency(t *testing.T) {
	c, err := ParseCurrency(" eur ")
	require.NoError(t, err)
	assert.Equal(t, EUR, c)

	c, err = ParseCurrency("")
	require.NoError(t, err)
	assert.Equal(t, DefaultCurrency, c)

	_, err = ParseCurrency("XYZ")
	assert.Error(t, err)
}

func TestMoney_Arithmetic(t *testing.T) {
	price, _ := NewMoneyFromString("19.99", USD)

	line := price.MultiplyByInt(3)
	assert.Equal(t, "59.97 USD", line.String())

	total, err := line.Add(price)
	require.NoError(t, err)
	assert.True(t, total.Amount().Equal(decimal.RequireFromString("79.96")))

	_, err = price.Add(Zero(EUR))
	assert.Error(t, err)
}

func TestMoney_RoundUsesMinorUnits(t *testing.T) {
	yen, _ := NewMoneyFromString("1200.6", JPY)
	assert.Equal(t, "1201 JPY", yen.Round().String())

	usd, _ := NewMoneyFromString("10.005", USD)
	assert.True(t, usd.Round().Amount().Equal(decimal.RequireFromString("10.01")))
}

func TestMoney_JSON(t *testing.T) {
	m, _ := NewMoneyFromString("5", USD)
	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"5.00","currency":"USD"}`, string(data))

	var decoded Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.Equals(m))

	assert.Error(t, json.Unmarshal([]byte(`{"amount":"abc","currency":"USD"}`), &decoded))
}
