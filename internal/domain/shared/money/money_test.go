package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNormalizesCurrency(t *testing.T) {
	m, err := New(1250, " usd ")
	require.NoError(t, err)
	assert.Equal(t, "USD", m.Currency)

	_, err = New(10, "US")
	require.ErrorIs(t, err, ErrInvalidCurrency)
}

func TestArithmetic(t *testing.T) {
	a := Must(10000, "USD")
	b := Must(2550, "USD")

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, int64(12550), sum.Amount)

	diff, err := a.Sub(b)
	require.NoError(t, err)
	assert.Equal(t, int64(7450), diff.Amount)

	_, err = a.Add(Must(1, "EUR"))
	require.ErrorIs(t, err, ErrCurrencyMismatch)

	_, err = a.Sub(Money{Amount: 1})
	require.ErrorIs(t, err, ErrInvalidCurrency)

	assert.Equal(t, Must(50000, "USD"), a.Multiply(5))
}

func TestPercent(t *testing.T) {
	total := Must(50000, "USD")
	assert.Equal(t, int64(25000), total.Percent(50).Amount)
	assert.Equal(t, int64(50000), total.Percent(100).Amount)
	assert.True(t, total.Percent(0).IsZero())
	assert.Equal(t, int64(3), Must(7, "USD").Percent(50).Amount)
}

func TestString(t *testing.T) {
	assert.Equal(t, "500.00 USD", Must(50000, "USD").String())
	assert.Equal(t, "-0.05 EUR", Must(-5, "EUR").String())
	assert.True(t, Zero("USD").IsZero())
	assert.False(t, Zero("USD").IsPositive())
}
