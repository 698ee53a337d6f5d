package repositories

import (
	"context"
	"errors"
	"time"

	"cabinet_backend/internal/models"

	"gorm.io/gorm"
)

type SubscriptionRepository interface {
	Create(ctx context.Context, db *gorm.DB, sub *models.Subscription) error
	FindActive(ctx context.Context, db *gorm.DB, userID string, now time.Time) (*models.Subscription, error)
	DeactivateAll(ctx context.Context, db *gorm.DB, userID string) error
	DeactivateExpired(ctx context.Context, db *gorm.DB, userID string, now time.Time) error
}

type SubscriptionRepositoryImpl struct{}

func NewSubscriptionRepository() SubscriptionRepository {
	return &SubscriptionRepositoryImpl{}
}

func (r *SubscriptionRepositoryImpl) Create(ctx context.Context, db *gorm.DB, sub *models.Subscription) error {
	return db.WithContext(ctx).Create(sub).Error
}

// FindActive возвращает самую свежую по paid_until активную и непросроченную
// подписку, либо nil.
func (r *SubscriptionRepositoryImpl) FindActive(ctx context.Context, db *gorm.DB, userID string, now time.Time) (*models.Subscription, error) {
	var sub models.Subscription
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("active = ?", true).
		Where("paid_until >= ?", now).
		Order("paid_until DESC").
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// DeactivateAll гасит все активные подписки пользователя (жесткий cutover
// при выборе нового плана, без зачета остатка).
func (r *SubscriptionRepositoryImpl) DeactivateAll(ctx context.Context, db *gorm.DB, userID string) error {
	return db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("user_id = ?", userID).
		Where("active = ?", true).
		Update("active", false).Error
}

// DeactivateExpired - ленивый sweep: активные строки с paid_until в прошлом
// переводятся в active=false.
func (r *SubscriptionRepositoryImpl) DeactivateExpired(ctx context.Context, db *gorm.DB, userID string, now time.Time) error {
	return db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("user_id = ?", userID).
		Where("active = ?", true).
		Where("paid_until < ?", now).
		Update("active", false).Error
}
