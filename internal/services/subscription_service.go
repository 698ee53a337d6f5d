package services

import (
	"context"
	"time"

	"cabinet_backend/internal/models"
	"cabinet_backend/internal/pricing"
	"cabinet_backend/internal/repositories"

	"gorm.io/gorm"
)

type SubscriptionService interface {
	// GetActive выполняет ленивый sweep просроченных подписок и потому
	// пишет в базу, хотя выглядит как чтение.
	GetActive(ctx context.Context, db *gorm.DB, userID string) (*models.Subscription, error)
	ChoosePlan(ctx context.Context, db *gorm.DB, user *models.User, plan models.TariffPlan, period models.TariffPeriod) (*models.Subscription, error)
}

type subscriptionService struct {
	subscriptionRepo repositories.SubscriptionRepository
	userRepo         repositories.UserRepository
	catalog          *pricing.Catalog
}

func NewSubscriptionService(
	subscriptionRepo repositories.SubscriptionRepository,
	userRepo repositories.UserRepository,
	catalog *pricing.Catalog,
) SubscriptionService {
	return &subscriptionService{
		subscriptionRepo: subscriptionRepo,
		userRepo:         userRepo,
		catalog:          catalog,
	}
}

// GetActive возвращает действующую подписку пользователя либо nil.
// Сначала sweep: активные строки с истекшим paid_until гасятся, затем
// читается самая свежая живая строка; денормализованный флаг пользователя
// синхронизируется с результатом. Все в одной транзакции.
func (s *subscriptionService) GetActive(ctx context.Context, db *gorm.DB, userID string) (*models.Subscription, error) {
	var active *models.Subscription

	err := db.Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		if err := s.subscriptionRepo.DeactivateExpired(ctx, tx, userID, now); err != nil {
			return err
		}

		sub, err := s.subscriptionRepo.FindActive(ctx, tx, userID, now)
		if err != nil {
			return err
		}
		active = sub

		return s.userRepo.SetHasSubscription(ctx, tx, userID, sub != nil)
	})
	if err != nil {
		return nil, err
	}
	return active, nil
}

// ChoosePlan - жесткий cutover: все активные подписки гасятся, остаток
// времени не зачитывается, вставляется одна новая активная строка.
// Частичный уникальный индекс (user_id WHERE active) не дает двум
// конкурентным вызовам оставить две активные строки.
func (s *subscriptionService) ChoosePlan(ctx context.Context, db *gorm.DB, user *models.User, plan models.TariffPlan, period models.TariffPeriod) (*models.Subscription, error) {
	// Пара (план, период) должна входить в закрытый каталог.
	if _, err := s.catalog.Price(plan, period); err != nil {
		return nil, err
	}

	var sub *models.Subscription
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := s.subscriptionRepo.DeactivateAll(ctx, tx, user.ID); err != nil {
			return err
		}

		now := time.Now().UTC()
		sub = &models.Subscription{
			UserID:    user.ID,
			Plan:      plan,
			Period:    period,
			Active:    true,
			StartedAt: now,
			PaidUntil: pricing.PaidUntil(period, now),
		}
		if err := s.subscriptionRepo.Create(ctx, tx, sub); err != nil {
			return err
		}

		return s.userRepo.SetHasSubscription(ctx, tx, user.ID, true)
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}
