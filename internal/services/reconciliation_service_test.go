package services_test

import (
	"context"
	"encoding/json"
	"testing"

	"cabinet_backend/internal/apperrors"
	"cabinet_backend/internal/models"
	"cabinet_backend/internal/money"
	"cabinet_backend/internal/repositories"
	"cabinet_backend/internal/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWebhookSecret = "test-hook-secret"

func newReconciler(secret string) services.ReconciliationService {
	invoiceService, subscriptionService, catalog := newServices()
	return services.NewReconciliationService(
		catalog,
		invoiceService,
		subscriptionService,
		repositories.NewUserRepository(),
		repositories.NewWebhookEventRepository(),
		secret,
	)
}

// buildNotification собирает сырой вебхук в формате шлюза.
func buildNotification(t *testing.T, event, paymentID, objectStatus, amountValue string, metadata map[string]string) []byte {
	t.Helper()
	payload := map[string]interface{}{
		"event": event,
		"object": map[string]interface{}{
			"id":     paymentID,
			"status": objectStatus,
			"amount": map[string]string{
				"value":    amountValue,
				"currency": "RUB",
			},
			"metadata": metadata,
		},
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return raw
}

func TestProcessNotification_SecretMismatch(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	reconciler := newReconciler(testWebhookSecret)
	ctx := context.Background()

	raw := buildNotification(t, "payment.succeeded", uuid.NewString(), "succeeded", "199.00", nil)

	_, err := reconciler.ProcessNotification(ctx, db, "wrong-secret", raw)
	assert.True(t, apperrors.Is(err, apperrors.ErrWebhookSecret))

	_, err = reconciler.ProcessNotification(ctx, db, "", raw)
	assert.True(t, apperrors.Is(err, apperrors.ErrWebhookSecret))
}

func TestProcessNotification_SecretAccepted(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	reconciler := newReconciler(testWebhookSecret)
	ctx := context.Background()

	// Неинтересное событие, но секрет должен пройти в обоих вариантах.
	raw := buildNotification(t, "refund.succeeded", uuid.NewString(), "succeeded", "199.00", nil)

	status, err := reconciler.ProcessNotification(ctx, db, testWebhookSecret, raw)
	require.NoError(t, err)
	assert.Equal(t, services.StatusIgnored, status)

	status, err = reconciler.ProcessNotification(ctx, db, "Bearer "+testWebhookSecret, raw)
	require.NoError(t, err)
	assert.Equal(t, services.StatusIgnored, status)
}

func TestProcessNotification_NoSecretConfigured(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	reconciler := newReconciler("")
	ctx := context.Background()

	raw := buildNotification(t, "refund.succeeded", uuid.NewString(), "succeeded", "199.00", nil)
	status, err := reconciler.ProcessNotification(ctx, db, "", raw)
	require.NoError(t, err)
	assert.Equal(t, services.StatusIgnored, status)
}

func TestProcessNotification_InvalidJSON(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	reconciler := newReconciler("")
	ctx := context.Background()

	_, err := reconciler.ProcessNotification(ctx, db, "", []byte("not json"))
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidPayload))
}

func TestProcessNotification_FilteredEvents(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	reconciler := newReconciler("")
	ctx := context.Background()

	cases := []struct {
		name  string
		event string
		state string
	}{
		{"foreign event", "refund.succeeded", "succeeded"},
		{"canceled payment", "payment.canceled", "canceled"},
		{"pending status", "payment.succeeded", "pending"},
	}
	for _, tc := range cases {
		raw := buildNotification(t, tc.event, uuid.NewString(), tc.state, "199.00", nil)
		status, err := reconciler.ProcessNotification(ctx, db, "", raw)
		require.NoError(t, err, tc.name)
		assert.Equal(t, services.StatusIgnored, status, tc.name)
	}

	// Отфильтрованные события не фиксируются для дедупликации.
	var count int64
	db.Model(&models.WebhookEvent{}).Count(&count)
	assert.Zero(t, count)
}

func TestProcessNotification_UnknownKindIgnored(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	reconciler := newReconciler("")
	ctx := context.Background()

	raw := buildNotification(t, "payment.succeeded", uuid.NewString(), "succeeded", "199.00",
		map[string]string{"kind": "donation"})
	status, err := reconciler.ProcessNotification(ctx, db, "", raw)
	require.NoError(t, err)
	assert.Equal(t, services.StatusIgnored, status)
}

func TestProcessNotification_InvoicePayment(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	reconciler := newReconciler("")
	ctx := context.Background()

	user := createTestUser(t, db)
	first := createTestInvoice(t, db, user.ID, "199.00", models.InvoiceStatusPending, nil)
	second := createTestInvoice(t, db, user.ID, "399.00", models.InvoiceStatusPending, nil)

	paymentID := uuid.NewString()
	raw := buildNotification(t, "payment.succeeded", paymentID, "succeeded", "598.00",
		map[string]string{
			"kind":        "invoice",
			"user_id":     user.ID,
			"invoice_ids": first.ID + "," + second.ID,
		})

	status, err := reconciler.ProcessNotification(ctx, db, "", raw)
	require.NoError(t, err)
	assert.Equal(t, services.StatusApplied, status)

	// Оба счета оплачены, по записи Payment на каждый.
	for _, id := range []string{first.ID, second.ID} {
		var inv models.Invoice
		require.NoError(t, db.First(&inv, "id = ?", id).Error)
		assert.Equal(t, models.InvoiceStatusPaid, inv.Status)
	}
	var payments []models.Payment
	require.NoError(t, db.Find(&payments).Error)
	assert.Len(t, payments, 2)

	// Событие зафиксировано и помечено обработанным.
	var event models.WebhookEvent
	require.NoError(t, db.First(&event, "provider_event_id = ?", paymentID).Error)
	assert.Equal(t, "yookassa", event.Provider)
	assert.NotNil(t, event.ProcessedAt)
}

func TestProcessNotification_Replay(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	reconciler := newReconciler("")
	ctx := context.Background()

	user := createTestUser(t, db)
	invoice := createTestInvoice(t, db, user.ID, "199.00", models.InvoiceStatusPending, nil)

	paymentID := uuid.NewString()
	raw := buildNotification(t, "payment.succeeded", paymentID, "succeeded", "199.00",
		map[string]string{
			"kind":        "invoice",
			"user_id":     user.ID,
			"invoice_ids": invoice.ID,
		})

	status, err := reconciler.ProcessNotification(ctx, db, "", raw)
	require.NoError(t, err)
	assert.Equal(t, services.StatusApplied, status)

	// Повторная доставка того же payment id подтверждается без изменений.
	status, err = reconciler.ProcessNotification(ctx, db, "", raw)
	require.NoError(t, err)
	assert.Equal(t, services.StatusIgnored, status)

	var paymentCount int64
	db.Model(&models.Payment{}).Count(&paymentCount)
	assert.Equal(t, int64(1), paymentCount)
}

func TestProcessNotification_AmountMismatch(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	reconciler := newReconciler("")
	ctx := context.Background()

	user := createTestUser(t, db)
	invoice := createTestInvoice(t, db, user.ID, "199.00", models.InvoiceStatusPending, nil)

	raw := buildNotification(t, "payment.succeeded", uuid.NewString(), "succeeded", "1.00",
		map[string]string{
			"kind":        "invoice",
			"user_id":     user.ID,
			"invoice_ids": invoice.ID,
		})

	_, err := reconciler.ProcessNotification(ctx, db, "", raw)
	assert.True(t, apperrors.Is(err, apperrors.ErrAmountMismatch))

	// Отклоненное уведомление не оставляет следов: счет не тронут,
	// событие не записано, так что ретрай шлюза возможен.
	var reloaded models.Invoice
	require.NoError(t, db.First(&reloaded, "id = ?", invoice.ID).Error)
	assert.Equal(t, models.InvoiceStatusPending, reloaded.Status)

	var eventCount int64
	db.Model(&models.WebhookEvent{}).Count(&eventCount)
	assert.Zero(t, eventCount)
}

func TestProcessNotification_MissingInvoiceRejected(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	reconciler := newReconciler("")
	ctx := context.Background()

	user := createTestUser(t, db)
	paid := createTestInvoice(t, db, user.ID, "199.00", models.InvoiceStatusPaid, nil)

	// Счет уже оплачен - перезагрузка payable вернет меньше, чем запрошено.
	raw := buildNotification(t, "payment.succeeded", uuid.NewString(), "succeeded", "199.00",
		map[string]string{
			"kind":        "invoice",
			"user_id":     user.ID,
			"invoice_ids": paid.ID,
		})

	_, err := reconciler.ProcessNotification(ctx, db, "", raw)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvoicesNotFound))
}

func TestProcessNotification_InvalidMetadata(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	reconciler := newReconciler("")
	ctx := context.Background()

	// user_id не uuid.
	raw := buildNotification(t, "payment.succeeded", uuid.NewString(), "succeeded", "199.00",
		map[string]string{
			"kind":        "invoice",
			"user_id":     "not-a-uuid",
			"invoice_ids": uuid.NewString(),
		})
	_, err := reconciler.ProcessNotification(ctx, db, "", raw)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidPayload))

	// invoice_ids пуст.
	user := createTestUser(t, db)
	raw = buildNotification(t, "payment.succeeded", uuid.NewString(), "succeeded", "199.00",
		map[string]string{
			"kind":        "invoice",
			"user_id":     user.ID,
			"invoice_ids": "",
		})
	_, err = reconciler.ProcessNotification(ctx, db, "", raw)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidPayload))
}

func TestProcessNotification_SubscriptionPayment(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	reconciler := newReconciler("")
	ctx := context.Background()

	user := createTestUser(t, db)
	paymentID := uuid.NewString()
	raw := buildNotification(t, "payment.succeeded", paymentID, "succeeded", "399.00",
		map[string]string{
			"kind":    "subscription",
			"user_id": user.ID,
			"plan":    "medium",
			"period":  "month",
		})

	status, err := reconciler.ProcessNotification(ctx, db, "", raw)
	require.NoError(t, err)
	assert.Equal(t, services.StatusApplied, status)

	var sub models.Subscription
	require.NoError(t, db.First(&sub, "user_id = ? AND active = ?", user.ID, true).Error)
	assert.Equal(t, models.TariffPlanMedium, sub.Plan)
	assert.Equal(t, models.TariffPeriodMonth, sub.Period)

	var reloadedUser models.User
	require.NoError(t, db.First(&reloadedUser, "id = ?", user.ID).Error)
	assert.True(t, reloadedUser.HasSubscription)
}

func TestProcessNotification_SubscriptionAmountMismatch(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	reconciler := newReconciler("")
	ctx := context.Background()

	user := createTestUser(t, db)
	// Цена medium/month - 399.00, в уведомлении цена другого плана.
	raw := buildNotification(t, "payment.succeeded", uuid.NewString(), "succeeded", "199.00",
		map[string]string{
			"kind":    "subscription",
			"user_id": user.ID,
			"plan":    "medium",
			"period":  "month",
		})

	_, err := reconciler.ProcessNotification(ctx, db, "", raw)
	assert.True(t, apperrors.Is(err, apperrors.ErrAmountMismatch))

	var count int64
	db.Model(&models.Subscription{}).Count(&count)
	assert.Zero(t, count)
}

func TestProcessNotification_SubscriptionUnknownPlan(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	reconciler := newReconciler("")
	ctx := context.Background()

	user := createTestUser(t, db)
	raw := buildNotification(t, "payment.succeeded", uuid.NewString(), "succeeded", "199.00",
		map[string]string{
			"kind":    "subscription",
			"user_id": user.ID,
			"plan":    "enterprise",
			"period":  "month",
		})

	_, err := reconciler.ProcessNotification(ctx, db, "", raw)
	assert.True(t, apperrors.Is(err, apperrors.ErrUnknownPlan))
}

func TestProcessNotification_ExpectedAmountFormat(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	reconciler := newReconciler("")
	ctx := context.Background()

	user := createTestUser(t, db)
	invoice := createTestInvoice(t, db, user.ID, "199", models.InvoiceStatusPending, nil)

	// "199" и "199.00" - одна сумма после каноникализации.
	raw := buildNotification(t, "payment.succeeded", uuid.NewString(), "succeeded", "199.00",
		map[string]string{
			"kind":        "invoice",
			"user_id":     user.ID,
			"invoice_ids": invoice.ID,
		})

	status, err := reconciler.ProcessNotification(ctx, db, "", raw)
	require.NoError(t, err)
	assert.Equal(t, services.StatusApplied, status)

	var reloaded models.Invoice
	require.NoError(t, db.First(&reloaded, "id = ?", invoice.ID).Error)
	assert.Equal(t, "199.00", money.Format(reloaded.Amount))
}
