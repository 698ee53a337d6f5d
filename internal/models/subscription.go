package models

import "time"

type Subscription struct {
	BaseModel
	UserID string       `gorm:"type:uuid;not null;index;index:ux_subscriptions_user_active,unique,where:active" json:"-"`
	Plan   TariffPlan   `gorm:"type:varchar(16);not null" json:"plan"`
	Period TariffPeriod `gorm:"type:varchar(16);not null" json:"period"`

	// Не более одной активной подписки на пользователя;
	// частичный уникальный индекс страхует гонку двух вебхуков.
	Active    bool      `gorm:"not null;default:true" json:"-"`
	StartedAt time.Time `json:"started_at"`
	PaidUntil time.Time `gorm:"not null" json:"paid_until"`
}
