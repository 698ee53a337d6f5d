package dto

import (
	"time"

	"cabinet_backend/internal/models"
)

// GrantSubscriptionRequest - прямое назначение плана пользователю (админ),
// минуя оплату.
type GrantSubscriptionRequest struct {
	UserID string `json:"user_id" validate:"required,uuid4"`
	Plan   string `json:"plan" validate:"required"`
	Period string `json:"period" validate:"required"`
}

type SubscriptionResponse struct {
	Plan      models.TariffPlan   `json:"plan"`
	Period    models.TariffPeriod `json:"period"`
	StartedAt time.Time           `json:"started_at"`
	PaidUntil time.Time           `json:"paid_until"`
}

func NewSubscriptionResponse(sub *models.Subscription) *SubscriptionResponse {
	return &SubscriptionResponse{
		Plan:      sub.Plan,
		Period:    sub.Period,
		StartedAt: sub.StartedAt,
		PaidUntil: sub.PaidUntil,
	}
}
