package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	m, err := New(10000, "usd")
	require.NoError(t, err)
	assert.Equal(t, int64(10000), m.Amount)
	assert.Equal(t, "USD", m.Currency)

	_, err = New(100, "US")
	assert.ErrorIs(t, err, ErrInvalidCurrency)
	_, err = New(100, "")
	assert.ErrorIs(t, err, ErrInvalidCurrency)
}

func TestAdd(t *testing.T) {
	a := Must(2500, "USD")
	b := Must(500, "USD")
	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), sum.Amount)

	_, err = a.Add(Must(100, "EUR"))
	assert.ErrorIs(t, err, ErrCurrencyMismatch)

	_, err = a.Add(Money{Amount: 100})
	assert.ErrorIs(t, err, ErrInvalidCurrency)
}

func TestMultiply(t *testing.T) {
	nightly := Must(10000, "USD")
	assert.Equal(t, int64(40000), nightly.Multiply(4).Amount)
	assert.Equal(t, "USD", nightly.Multiply(4).Currency)
	assert.True(t, nightly.Multiply(0).IsZero())
}
