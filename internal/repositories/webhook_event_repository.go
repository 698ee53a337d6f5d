package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"cabinet_backend/internal/models"

	"gorm.io/gorm"
)

// ErrEventAlreadyProcessed - уведомление с таким id шлюза уже записано.
var ErrEventAlreadyProcessed = errors.New("webhook event already processed")

type WebhookEventRepository interface {
	Exists(ctx context.Context, db *gorm.DB, provider, providerEventID string) (bool, error)
	Record(ctx context.Context, db *gorm.DB, event *models.WebhookEvent) error
	MarkProcessed(ctx context.Context, db *gorm.DB, event *models.WebhookEvent) error
}

type WebhookEventRepositoryImpl struct{}

func NewWebhookEventRepository() WebhookEventRepository {
	return &WebhookEventRepositoryImpl{}
}

func (r *WebhookEventRepositoryImpl) Exists(ctx context.Context, db *gorm.DB, provider, providerEventID string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&models.WebhookEvent{}).
		Where("provider = ? AND provider_event_id = ?", provider, providerEventID).
		Count(&count).Error
	return count > 0, err
}

// Record вставляет запись о событии. Повтор того же (provider, event id)
// упирается в уникальный индекс и возвращает ErrEventAlreadyProcessed.
// Внутри транзакции это нарушение абортит транзакцию, поэтому вызывающий
// обязан сначала проверить Exists и трактовать эту ошибку как откат.
func (r *WebhookEventRepositoryImpl) Record(ctx context.Context, db *gorm.DB, event *models.WebhookEvent) error {
	err := db.WithContext(ctx).Create(event).Error
	if err != nil && isUniqueViolation(err) {
		return ErrEventAlreadyProcessed
	}
	return err
}

func (r *WebhookEventRepositoryImpl) MarkProcessed(ctx context.Context, db *gorm.DB, event *models.WebhookEvent) error {
	now := time.Now().UTC()
	event.ProcessedAt = &now
	return db.WithContext(ctx).
		Model(event).
		Update("processed_at", now).Error
}

// isUniqueViolation распознает нарушение уникального индекса и для postgres
// (SQLSTATE 23505), и для sqlite в тестах.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "23505") ||
		strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key")
}
