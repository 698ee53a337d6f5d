package gateway

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"+79991234567", "+79991234567"},
		{"79991234567", "+79991234567"},
		{"9991234567", "+79991234567"},
		{"8 (999) 123-45-67", "89991234567"}, // 11 цифр без ведущей 7 - как есть
		{"+7 (999) 123-45-67", "+79991234567"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizePhone(tc.in), "input %q", tc.in)
	}
}

func TestBuildReceipt(t *testing.T) {
	t.Parallel()

	client := newTestClient("https://api.example.com")
	amount, _ := decimal.NewFromString("598")

	receipt := client.BuildReceipt(amount, "Invoice payment", "9991234567", "user@example.com")

	assert.Equal(t, "user@example.com", receipt.Customer.Email)
	assert.Equal(t, "+79991234567", receipt.Customer.Phone)
	require.Len(t, receipt.Items, 1)

	item := receipt.Items[0]
	assert.Equal(t, "Invoice payment", item.Description)
	assert.Equal(t, "1", item.Quantity)
	assert.Equal(t, "598.00", item.Amount.Value)
	assert.Equal(t, "RUB", item.Amount.Currency)
	assert.Equal(t, 1, item.VatCode)
	assert.Equal(t, 2, receipt.TaxSystemCode)
}

func TestBuildReceipt_NoPhone(t *testing.T) {
	t.Parallel()

	client := newTestClient("https://api.example.com")
	receipt := client.BuildReceipt(decimal.NewFromInt(199), "Subscription", "", "user@example.com")
	assert.Empty(t, receipt.Customer.Phone)
	assert.Equal(t, "user@example.com", receipt.Customer.Email)
}
