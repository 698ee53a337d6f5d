package models

import (
	"time"

	"gorm.io/datatypes"
)

// WebhookEvent хранит обработанные уведомления шлюза для дедупликации:
// повторная доставка того же payment id не применяется второй раз.
type WebhookEvent struct {
	ID              uint           `gorm:"primaryKey"`
	Provider        string         `gorm:"type:varchar(20);not null;index:ux_webhook_events_provider_event,unique,priority:1"`
	ProviderEventID string         `gorm:"type:varchar(191);not null;index:ux_webhook_events_provider_event,unique,priority:2"`
	EventType       string         `gorm:"type:varchar(100);not null"`
	Payload         datatypes.JSON `gorm:"type:jsonb"`
	ProcessedAt     *time.Time
	CreatedAt       time.Time `gorm:"autoCreateTime"`
}
