package services

import (
	"context"
	"time"

	"cabinet_backend/internal/models"
	"cabinet_backend/internal/repositories"

	"gorm.io/gorm"
)

type InvoiceService interface {
	ListForUser(ctx context.Context, db *gorm.DB, userID string, includePaid bool) ([]models.Invoice, error)
	GetPayable(ctx context.Context, db *gorm.DB, userID string, ids []string) ([]models.Invoice, error)
	Settle(ctx context.Context, db *gorm.DB, userID string, ids []string, approved bool) (processed, skipped []string, err error)
}

type invoiceService struct {
	invoiceRepo repositories.InvoiceRepository
}

func NewInvoiceService(invoiceRepo repositories.InvoiceRepository) InvoiceService {
	return &invoiceService{invoiceRepo: invoiceRepo}
}

func (s *invoiceService) ListForUser(ctx context.Context, db *gorm.DB, userID string, includePaid bool) ([]models.Invoice, error) {
	return s.invoiceRepo.FindForUser(ctx, db, userID, includePaid)
}

func (s *invoiceService) GetPayable(ctx context.Context, db *gorm.DB, userID string, ids []string) ([]models.Invoice, error) {
	return s.invoiceRepo.FindPayable(ctx, db, userID, ids)
}

// Settle переводит счета пользователя в paid и создает по одной записи
// Payment на каждый. Частичный успех - норма: ненайденные и уже оплаченные
// id возвращаются как skipped, остальные обрабатываются в одной транзакции.
// При approved=false ничего не изменяется, все id возвращаются как skipped.
func (s *invoiceService) Settle(ctx context.Context, db *gorm.DB, userID string, ids []string, approved bool) ([]string, []string, error) {
	if !approved {
		return []string{}, append([]string{}, ids...), nil
	}

	processed := []string{}
	skipped := []string{}

	err := db.Transaction(func(tx *gorm.DB) error {
		invoices, err := s.invoiceRepo.FindByIDs(ctx, tx, userID, ids)
		if err != nil {
			return err
		}

		found := make(map[string]*models.Invoice, len(invoices))
		for i := range invoices {
			found[invoices[i].ID] = &invoices[i]
		}

		// Ненайденные (чужие или несуществующие) id - skipped.
		for _, id := range ids {
			if _, ok := found[id]; !ok {
				skipped = append(skipped, id)
			}
		}

		now := time.Now().UTC()
		for _, id := range ids {
			inv, ok := found[id]
			if !ok {
				continue
			}
			if inv.Status == models.InvoiceStatusPaid {
				skipped = append(skipped, inv.ID)
				continue
			}

			if err := s.invoiceRepo.MarkPaid(ctx, tx, inv); err != nil {
				return err
			}
			payment := &models.Payment{
				InvoiceID: inv.ID,
				ClientID:  userID,
				Amount:    inv.Amount,
				Status:    models.PaymentStatusSuccess,
				PaidAt:    now,
			}
			if err := s.invoiceRepo.CreatePayment(ctx, tx, payment); err != nil {
				return err
			}
			processed = append(processed, inv.ID)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return processed, skipped, nil
}
