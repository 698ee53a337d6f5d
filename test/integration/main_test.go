package integration_test

import (
	"os"
	"sync"
	"testing"
	"time"

	"cabinet_backend/internal/models"
	"cabinet_backend/test/helpers"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	globalTestServer *helpers.TestServer
	serverOnce       sync.Once
)

// GetTestServer возвращает общий тестовый сервер (создает при первом вызове).
func GetTestServer(t *testing.T) *helpers.TestServer {
	serverOnce.Do(func() {
		globalTestServer = helpers.NewTestServer(t)
	})
	return globalTestServer
}

func TestMain(m *testing.M) {
	code := m.Run()
	if globalTestServer != nil {
		globalTestServer.Close()
	}
	os.Exit(code)
}

// CreateTestInvoice создает счет клиента.
func CreateTestInvoice(t *testing.T, db *gorm.DB, clientID, amount string, status models.InvoiceStatus, dueDate *time.Time) models.Invoice {
	t.Helper()
	value, err := decimal.NewFromString(amount)
	if err != nil {
		t.Fatalf("Failed to parse amount %q: %v", amount, err)
	}
	invoice := models.Invoice{
		ClientID:    clientID,
		Amount:      value,
		Description: "Integration test invoice",
		Status:      status,
		DueDate:     dueDate,
	}
	if err := db.Create(&invoice).Error; err != nil {
		t.Fatalf("Failed to create test invoice: %v", err)
	}
	return invoice
}
