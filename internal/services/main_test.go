package services_test

import (
	"path/filepath"
	"testing"
	"time"

	"cabinet_backend/database"
	"cabinet_backend/internal/models"
	"cabinet_backend/internal/pricing"
	"cabinet_backend/internal/repositories"
	"cabinet_backend/internal/services"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestDB поднимает чистую sqlite-БД в t.TempDir() со всеми миграциями.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "failed to open test database")
	require.NoError(t, database.AutoMigrate(db), "failed to migrate test database")
	return db
}

func newServices() (services.InvoiceService, services.SubscriptionService, *pricing.Catalog) {
	catalog := pricing.NewCatalog()
	invoiceService := services.NewInvoiceService(repositories.NewInvoiceRepository())
	subscriptionService := services.NewSubscriptionService(
		repositories.NewSubscriptionRepository(),
		repositories.NewUserRepository(),
		catalog,
	)
	return invoiceService, subscriptionService, catalog
}

func createTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := &models.User{
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "test-hash",
		Phone:        "+79991234567",
		Role:         models.UserRoleClient,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestInvoice(t *testing.T, db *gorm.DB, clientID, amount string, status models.InvoiceStatus, dueDate *time.Time) *models.Invoice {
	t.Helper()
	value, err := decimal.NewFromString(amount)
	require.NoError(t, err)
	invoice := &models.Invoice{
		ClientID:    clientID,
		Amount:      value,
		Description: "Test invoice",
		Status:      status,
		DueDate:     dueDate,
	}
	require.NoError(t, db.Create(invoice).Error)
	return invoice
}
