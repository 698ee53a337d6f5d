package repositories

import (
	"context"
	"errors"

	"cabinet_backend/internal/apperrors"
	"cabinet_backend/internal/models"

	"gorm.io/gorm"
)

type UserRepository interface {
	FindByID(ctx context.Context, db *gorm.DB, id string) (*models.User, error)
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*models.User, error)
	Create(ctx context.Context, db *gorm.DB, user *models.User) error
	SetHasSubscription(ctx context.Context, db *gorm.DB, userID string, has bool) error
}

type UserRepositoryImpl struct{}

func NewUserRepository() UserRepository {
	return &UserRepositoryImpl{}
}

func (r *UserRepositoryImpl) FindByID(ctx context.Context, db *gorm.DB, id string) (*models.User, error) {
	var user models.User
	err := db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*models.User, error) {
	var user models.User
	err := db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) Create(ctx context.Context, db *gorm.DB, user *models.User) error {
	return db.WithContext(ctx).Create(user).Error
}

func (r *UserRepositoryImpl) SetHasSubscription(ctx context.Context, db *gorm.DB, userID string, has bool) error {
	return db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("has_subscription", has).Error
}
