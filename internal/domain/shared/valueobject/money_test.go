package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoney(t *testing.T) {
	t.Run("defaults to USD", func(t *testing.T) {
		m := NewMoney(decimal.NewFromInt(10), "")
		assert.Equal(t, "USD", m.Currency)
	})

	t.Run("add and sub require matching currencies", func(t *testing.T) {
		a := NewMoneyFromFloat(10.50, "USD")
		b := NewMoneyFromFloat(4.50, "USD")

		sum, err := a.Add(b)
		require.NoError(t, err)
		assert.True(t, sum.Amount.Equal(decimal.NewFromInt(15)))

		diff, err := a.Sub(b)
		require.NoError(t, err)
		assert.True(t, diff.Amount.Equal(decimal.NewFromInt(6)))

		_, err = a.Add(NewMoneyFromFloat(1, "EUR"))
		assert.Error(t, err)
	})

	t.Run("string formats two decimals", func(t *testing.T) {
		assert.Equal(t, "10.50 USD", NewMoneyFromFloat(10.5, "USD").String())
	})

	t.Run("scan accepts strings and floats", func(t *testing.T) {
		var m Money
		require.NoError(t, m.Scan("12.34"))
		assert.True(t, m.Amount.Equal(decimal.NewFromFloat(12.34)))

		var f Money
		require.NoError(t, f.Scan(5.0))
		assert.True(t, f.Amount.Equal(decimal.NewFromInt(5)))
	})
}

func TestAddressValidate(t *testing.T) {
	valid := Address{Name: "Jane", Street1: "1 Main St", City: "Springfield", State: "IL", PostalCode: "62701", Country: "US"}
	assert.NoError(t, valid.Validate())
	assert.False(t, valid.IsEmpty())

	missing := Address{Name: "Jane"}
	err := missing.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "street1")
	assert.Contains(t, err.Error(), "postal_code")

	assert.True(t, Address{}.IsEmpty())
}
