package helpers

import (
	"testing"

	"cabinet_backend/internal/auth"
	"cabinet_backend/internal/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// CreateAndLoginClient создает клиента и возвращает токен.
func CreateAndLoginClient(t *testing.T, db *gorm.DB) (string, *models.User) {
	return createAndLogin(t, db, models.UserRoleClient)
}

// CreateAndLoginAdmin создает админа и возвращает токен.
func CreateAndLoginAdmin(t *testing.T, db *gorm.DB) (string, *models.User) {
	return createAndLogin(t, db, models.UserRoleAdmin)
}

func createAndLogin(t *testing.T, db *gorm.DB, role models.UserRole) (string, *models.User) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("test-password"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	user := &models.User{
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: string(hash),
		Phone:        "+79991234567",
		Role:         role,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	token, err := auth.GenerateToken(user.ID, role)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	return token, user
}
