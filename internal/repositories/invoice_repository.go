package repositories

import (
	"context"
	"time"

	"cabinet_backend/internal/models"

	"gorm.io/gorm"
)

type InvoiceRepository interface {
	FindForUser(ctx context.Context, db *gorm.DB, userID string, includePaid bool) ([]models.Invoice, error)
	FindPayable(ctx context.Context, db *gorm.DB, userID string, ids []string) ([]models.Invoice, error)
	FindByIDs(ctx context.Context, db *gorm.DB, userID string, ids []string) ([]models.Invoice, error)
	MarkPaid(ctx context.Context, db *gorm.DB, invoice *models.Invoice) error
	CreatePayment(ctx context.Context, db *gorm.DB, payment *models.Payment) error
	Create(ctx context.Context, db *gorm.DB, invoice *models.Invoice) error
}

type InvoiceRepositoryImpl struct{}

func NewInvoiceRepository() InvoiceRepository {
	return &InvoiceRepositoryImpl{}
}

// FindForUser возвращает непросроченные счета пользователя.
// Сортировка: due_date по возрастанию (NULL в конце), затем created_at по убыванию.
func (r *InvoiceRepositoryImpl) FindForUser(ctx context.Context, db *gorm.DB, userID string, includePaid bool) ([]models.Invoice, error) {
	now := time.Now().UTC()
	query := db.WithContext(ctx).
		Where("client_id = ?", userID).
		Where("due_date IS NULL OR due_date >= ?", now)

	if !includePaid {
		query = query.Where("status <> ?", models.InvoiceStatusPaid)
	}

	var invoices []models.Invoice
	err := query.
		Order("CASE WHEN due_date IS NULL THEN 1 ELSE 0 END, due_date ASC").
		Order("created_at DESC").
		Find(&invoices).Error
	return invoices, err
}

// FindPayable возвращает подмножество запрошенных счетов, которые принадлежат
// пользователю, не просрочены и еще не оплачены. Невошедшие id просто
// отсутствуют в результате.
func (r *InvoiceRepositoryImpl) FindPayable(ctx context.Context, db *gorm.DB, userID string, ids []string) ([]models.Invoice, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	now := time.Now().UTC()

	var invoices []models.Invoice
	err := db.WithContext(ctx).
		Where("client_id = ?", userID).
		Where("id IN ?", ids).
		Where("due_date IS NULL OR due_date >= ?", now).
		Where("status <> ?", models.InvoiceStatusPaid).
		Find(&invoices).Error
	return invoices, err
}

// FindByIDs - счета пользователя среди запрошенных id, без фильтра по статусу.
func (r *InvoiceRepositoryImpl) FindByIDs(ctx context.Context, db *gorm.DB, userID string, ids []string) ([]models.Invoice, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var invoices []models.Invoice
	err := db.WithContext(ctx).
		Where("client_id = ?", userID).
		Where("id IN ?", ids).
		Find(&invoices).Error
	return invoices, err
}

func (r *InvoiceRepositoryImpl) MarkPaid(ctx context.Context, db *gorm.DB, invoice *models.Invoice) error {
	invoice.Status = models.InvoiceStatusPaid
	return db.WithContext(ctx).Model(invoice).Update("status", models.InvoiceStatusPaid).Error
}

func (r *InvoiceRepositoryImpl) CreatePayment(ctx context.Context, db *gorm.DB, payment *models.Payment) error {
	return db.WithContext(ctx).Create(payment).Error
}

func (r *InvoiceRepositoryImpl) Create(ctx context.Context, db *gorm.DB, invoice *models.Invoice) error {
	return db.WithContext(ctx).Create(invoice).Error
}
