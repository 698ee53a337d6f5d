package gateway

import (
	"strings"
	"unicode"

	"cabinet_backend/internal/money"

	"github.com/shopspring/decimal"
)

// Receipt - фискальный чек по требованиям шлюза: покупатель,
// одна позиция, код НДС.
type Receipt struct {
	Customer      ReceiptCustomer `json:"customer"`
	Items         []ReceiptItem   `json:"items"`
	TaxSystemCode int             `json:"tax_system_code"`
}

type ReceiptCustomer struct {
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type ReceiptItem struct {
	Description    string        `json:"description"`
	Quantity       string        `json:"quantity"`
	Amount         amountPayload `json:"amount"`
	VatCode        int           `json:"vat_code"`
	PaymentMode    string        `json:"payment_mode"`
	PaymentSubject string        `json:"payment_subject"`
}

// BuildReceipt собирает чек с одной позицией на всю сумму.
func (c *Client) BuildReceipt(amount decimal.Decimal, description, customerPhone, customerEmail string) *Receipt {
	customer := ReceiptCustomer{Email: customerEmail}
	if phone := NormalizePhone(customerPhone); phone != "" {
		customer.Phone = phone
	}

	return &Receipt{
		Customer: customer,
		Items: []ReceiptItem{
			{
				Description:    description,
				Quantity:       "1",
				Amount:         amountPayload{Value: money.Format(amount), Currency: c.cfg.Currency},
				VatCode:        1,
				PaymentMode:    "full_payment",
				PaymentSubject: "service",
			},
		},
		TaxSystemCode: 2,
	}
}

// NormalizePhone приводит телефон к виду +7XXXXXXXXXX.
// 10 цифр - добавляем +7, 11 цифр с ведущей 7 - добавляем +.
func NormalizePhone(phone string) string {
	if phone == "" {
		return ""
	}

	var cleaned strings.Builder
	for _, ch := range phone {
		if unicode.IsDigit(ch) || ch == '+' {
			cleaned.WriteRune(ch)
		}
	}
	s := cleaned.String()
	if strings.HasPrefix(s, "+") {
		return s
	}

	digits := strings.ReplaceAll(s, "+", "")
	switch {
	case len(digits) == 10:
		return "+7" + digits
	case len(digits) == 11 && strings.HasPrefix(digits, "7"):
		return "+" + digits
	}
	return s
}
