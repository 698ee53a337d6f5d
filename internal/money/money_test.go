package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := Parse(s)
	require.NoError(t, err)
	return d
}

func TestFormat(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "199.00", Format(decimal.NewFromInt(199)))
	assert.Equal(t, "19.99", Format(mustParse(t, "19.99")))
	// Половинки округляются вверх.
	assert.Equal(t, "20.00", Format(mustParse(t, "19.995")))
	assert.Equal(t, "0.00", Format(decimal.Zero))
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	_, err := Parse("not-a-number")
	assert.Error(t, err)

	_, err = Parse("")
	assert.Error(t, err)
}

func TestSum(t *testing.T) {
	t.Parallel()

	total := Sum(mustParse(t, "0.10"), mustParse(t, "0.20"))
	assert.Equal(t, "0.30", Format(total))

	assert.Equal(t, "0.00", Format(Sum()))
}

func TestEqual(t *testing.T) {
	t.Parallel()

	// Разный scale, одно значение.
	assert.True(t, Equal(mustParse(t, "199"), mustParse(t, "199.00")))
	// Расхождение в копейку - не равно.
	assert.False(t, Equal(mustParse(t, "19.99"), mustParse(t, "20.00")))
}
