package money

import "github.com/shopspring/decimal"

// Format приводит сумму к строке с ровно двумя знаками после запятой,
// округление half-up. Обе стороны сверки (ожидаемая сумма и сумма из
// уведомления) форматируются этой функцией и сравниваются как строки.
func Format(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// Parse разбирает сумму из строки уведомления шлюза.
func Parse(value string) (decimal.Decimal, error) {
	return decimal.NewFromString(value)
}

// Sum складывает суммы счетов.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// Equal - сравнение сумм через каноничное строковое представление.
func Equal(a, b decimal.Decimal) bool {
	return Format(a) == Format(b)
}
