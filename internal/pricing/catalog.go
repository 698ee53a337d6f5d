package pricing

import (
	"time"

	"cabinet_backend/internal/apperrors"
	"cabinet_backend/internal/models"

	"github.com/shopspring/decimal"
)

type planKey struct {
	Plan   models.TariffPlan
	Period models.TariffPeriod
}

// PlanItem - одна позиция каталога для публичной выдачи.
type PlanItem struct {
	Plan   models.TariffPlan   `json:"plan"`
	Period models.TariffPeriod `json:"period"`
	Price  string              `json:"price"`
}

// Catalog - неизменяемая таблица цен. Строится один раз при старте и
// передается в сервисы; единственный источник цены и при создании платежа,
// и при независимой сверке суммы из вебхука.
type Catalog struct {
	prices map[planKey]decimal.Decimal
	order  []planKey
}

// NewCatalog возвращает каталог с фиксированными тарифами.
func NewCatalog() *Catalog {
	c := &Catalog{prices: make(map[planKey]decimal.Decimal)}
	c.add(models.TariffPlanSimple, models.TariffPeriodMonth, 199)
	c.add(models.TariffPlanSimple, models.TariffPeriodYear, 1990)
	c.add(models.TariffPlanMedium, models.TariffPeriodMonth, 399)
	c.add(models.TariffPlanMedium, models.TariffPeriodYear, 3990)
	c.add(models.TariffPlanPremium, models.TariffPeriodMonth, 799)
	c.add(models.TariffPlanPremium, models.TariffPeriodYear, 7990)
	return c
}

func (c *Catalog) add(plan models.TariffPlan, period models.TariffPeriod, rub int64) {
	key := planKey{Plan: plan, Period: period}
	c.prices[key] = decimal.NewFromInt(rub)
	c.order = append(c.order, key)
}

// Price возвращает цену для пары (план, период).
// Любая пара вне закрытого множества - ErrUnknownPlan.
func (c *Catalog) Price(plan models.TariffPlan, period models.TariffPeriod) (decimal.Decimal, error) {
	price, ok := c.prices[planKey{Plan: plan, Period: period}]
	if !ok {
		return decimal.Decimal{}, apperrors.ErrUnknownPlan
	}
	return price, nil
}

// Plans возвращает позиции каталога в порядке объявления.
func (c *Catalog) Plans() []PlanItem {
	items := make([]PlanItem, 0, len(c.order))
	for _, key := range c.order {
		items = append(items, PlanItem{
			Plan:   key.Plan,
			Period: key.Period,
			Price:  c.prices[key].StringFixed(2),
		})
	}
	return items
}

// PaidUntil вычисляет конец оплаченного периода: 30 дней для месяца,
// 365 для года. Считается один раз при создании подписки.
func PaidUntil(period models.TariffPeriod, start time.Time) time.Time {
	if period == models.TariffPeriodYear {
		return start.Add(365 * 24 * time.Hour)
	}
	return start.Add(30 * 24 * time.Hour)
}
