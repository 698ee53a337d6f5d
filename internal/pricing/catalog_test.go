package pricing

import (
	"testing"
	"time"

	"cabinet_backend/internal/apperrors"
	"cabinet_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_Price(t *testing.T) {
	t.Parallel()
	catalog := NewCatalog()

	cases := []struct {
		plan   models.TariffPlan
		period models.TariffPeriod
		want   string
	}{
		{models.TariffPlanSimple, models.TariffPeriodMonth, "199.00"},
		{models.TariffPlanSimple, models.TariffPeriodYear, "1990.00"},
		{models.TariffPlanMedium, models.TariffPeriodMonth, "399.00"},
		{models.TariffPlanMedium, models.TariffPeriodYear, "3990.00"},
		{models.TariffPlanPremium, models.TariffPeriodMonth, "799.00"},
		{models.TariffPlanPremium, models.TariffPeriodYear, "7990.00"},
	}

	for _, tc := range cases {
		price, err := catalog.Price(tc.plan, tc.period)
		require.NoError(t, err, "pair %s/%s", tc.plan, tc.period)
		assert.Equal(t, tc.want, price.StringFixed(2))
	}
}

func TestCatalog_Price_UnknownPair(t *testing.T) {
	t.Parallel()
	catalog := NewCatalog()

	_, err := catalog.Price("enterprise", models.TariffPeriodMonth)
	assert.True(t, apperrors.Is(err, apperrors.ErrUnknownPlan))

	_, err = catalog.Price(models.TariffPlanSimple, "week")
	assert.True(t, apperrors.Is(err, apperrors.ErrUnknownPlan))

	_, err = catalog.Price("", "")
	assert.True(t, apperrors.Is(err, apperrors.ErrUnknownPlan))
}

func TestCatalog_Plans(t *testing.T) {
	t.Parallel()
	items := NewCatalog().Plans()

	require.Len(t, items, 6)
	// Порядок стабильный: simple -> medium -> premium, месяц перед годом.
	assert.Equal(t, models.TariffPlanSimple, items[0].Plan)
	assert.Equal(t, models.TariffPeriodMonth, items[0].Period)
	assert.Equal(t, "199.00", items[0].Price)
	assert.Equal(t, models.TariffPlanPremium, items[5].Plan)
	assert.Equal(t, models.TariffPeriodYear, items[5].Period)
	assert.Equal(t, "7990.00", items[5].Price)
}

func TestPaidUntil(t *testing.T) {
	t.Parallel()
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, start.Add(30*24*time.Hour), PaidUntil(models.TariffPeriodMonth, start))
	assert.Equal(t, start.Add(365*24*time.Hour), PaidUntil(models.TariffPeriodYear, start))
}
