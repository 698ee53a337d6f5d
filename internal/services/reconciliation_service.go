package services

import (
	"context"
	"encoding/json"
	"strings"

	"cabinet_backend/internal/apperrors"
	"cabinet_backend/internal/dto"
	"cabinet_backend/internal/logger"
	"cabinet_backend/internal/models"
	"cabinet_backend/internal/money"
	"cabinet_backend/internal/pricing"
	"cabinet_backend/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ReconcileStatus - результат обработки уведомления.
type ReconcileStatus string

const (
	// StatusApplied - уведомление проверено и применено.
	StatusApplied ReconcileStatus = "ok"
	// StatusIgnored - уведомление отфильтровано без изменений состояния.
	StatusIgnored ReconcileStatus = "ignored"
)

const (
	providerName = "yookassa"

	eventPaymentSucceeded = "payment.succeeded"
	eventPaymentCanceled  = "payment.canceled"
	objectStatusSucceeded = "succeeded"

	metadataKindInvoice      = "invoice"
	metadataKindSubscription = "subscription"
)

// ReconciliationService сверяет асинхронные уведомления шлюза с независимо
// пересчитанным ожидаемым состоянием и только при совпадении применяет
// ровно одно из: погашение счетов или активацию подписки.
type ReconciliationService interface {
	ProcessNotification(ctx context.Context, db *gorm.DB, providedSecret string, raw []byte) (ReconcileStatus, error)
}

type reconciliationService struct {
	catalog             *pricing.Catalog
	invoiceService      InvoiceService
	subscriptionService SubscriptionService
	userRepo            repositories.UserRepository
	webhookRepo         repositories.WebhookEventRepository
	webhookSecret       string
}

func NewReconciliationService(
	catalog *pricing.Catalog,
	invoiceService InvoiceService,
	subscriptionService SubscriptionService,
	userRepo repositories.UserRepository,
	webhookRepo repositories.WebhookEventRepository,
	webhookSecret string,
) ReconciliationService {
	return &reconciliationService{
		catalog:             catalog,
		invoiceService:      invoiceService,
		subscriptionService: subscriptionService,
		userRepo:            userRepo,
		webhookRepo:         webhookRepo,
		webhookSecret:       webhookSecret,
	}
}

// ProcessNotification безопасно переживает произвольное число повторов
// одного и того же события: дубликаты отсекаются по id платежа, а
// запись события и применение идут в одной транзакции, так что
// отклоненное уведомление не оставляет следов и может быть доставлено снова.
func (s *reconciliationService) ProcessNotification(ctx context.Context, db *gorm.DB, providedSecret string, raw []byte) (ReconcileStatus, error) {
	if err := s.verifySecret(providedSecret); err != nil {
		return "", err
	}

	var notification dto.GatewayNotification
	if err := json.Unmarshal(raw, &notification); err != nil {
		return "", apperrors.ErrInvalidPayload.WithError(err)
	}

	// Интересны только успешные платежи; все прочее подтверждаем как
	// ignored, чтобы шлюз не зациклился на ретраях.
	if notification.Event != eventPaymentSucceeded && notification.Event != eventPaymentCanceled {
		return StatusIgnored, nil
	}
	if notification.Object.Status != objectStatusSucceeded {
		return StatusIgnored, nil
	}

	status := StatusIgnored
	err := db.Transaction(func(tx *gorm.DB) error {
		event, err := s.recordEvent(ctx, tx, &notification, raw)
		if err != nil {
			return err
		}

		applied, err := s.classifyAndApply(ctx, tx, &notification)
		if err != nil {
			return err
		}
		status = applied

		if event != nil && applied == StatusApplied {
			return s.webhookRepo.MarkProcessed(ctx, tx, event)
		}
		return nil
	})
	if apperrors.Is(err, repositories.ErrEventAlreadyProcessed) {
		// Повторная доставка уже обработанного платежа.
		logger.CtxInfo(ctx, "duplicate gateway notification ignored",
			"event_id", notification.Object.ID)
		return StatusIgnored, nil
	}
	if err != nil {
		return "", err
	}
	return status, nil
}

// verifySecret сверяет общий секрет вебхука: значение целиком либо с
// префиксом Bearer. Если секрет не настроен, проверка пропускается.
func (s *reconciliationService) verifySecret(provided string) error {
	if s.webhookSecret == "" {
		return nil
	}
	if provided == "" {
		return apperrors.ErrWebhookSecret
	}
	if provided == s.webhookSecret || provided == "Bearer "+s.webhookSecret {
		return nil
	}
	return apperrors.ErrWebhookSecret
}

// recordEvent фиксирует id платежа для дедупликации. Уведомления без id
// не дедуплицируются и полагаются на идемпотентность самих путей применения.
func (s *reconciliationService) recordEvent(ctx context.Context, tx *gorm.DB, n *dto.GatewayNotification, raw []byte) (*models.WebhookEvent, error) {
	if n.Object.ID == "" {
		return nil, nil
	}
	exists, err := s.webhookRepo.Exists(ctx, tx, providerName, n.Object.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, repositories.ErrEventAlreadyProcessed
	}
	event := &models.WebhookEvent{
		Provider:        providerName,
		ProviderEventID: n.Object.ID,
		EventType:       n.Event,
		Payload:         datatypes.JSON(raw),
	}
	if err := s.webhookRepo.Record(ctx, tx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *reconciliationService) classifyAndApply(ctx context.Context, tx *gorm.DB, n *dto.GatewayNotification) (ReconcileStatus, error) {
	kind := n.Object.Metadata["kind"]
	switch kind {
	case metadataKindInvoice:
		if err := s.applyInvoicePayment(ctx, tx, n); err != nil {
			return "", err
		}
		return StatusApplied, nil
	case metadataKindSubscription:
		if err := s.applySubscriptionPayment(ctx, tx, n); err != nil {
			return "", err
		}
		return StatusApplied, nil
	default:
		// Неизвестный kind подтверждаем без действий.
		return StatusIgnored, nil
	}
}

// applyInvoicePayment перезагружает счета из метаданных и пересчитывает
// ожидаемую сумму сам; сумма из уведомления используется только для сверки.
func (s *reconciliationService) applyInvoicePayment(ctx context.Context, tx *gorm.DB, n *dto.GatewayNotification) error {
	userID, err := parseUserID(n.Object.Metadata)
	if err != nil {
		return err
	}
	invoiceIDs, err := parseInvoiceIDs(n.Object.Metadata)
	if err != nil {
		return err
	}

	invoices, err := s.invoiceService.GetPayable(ctx, tx, userID, invoiceIDs)
	if err != nil {
		return err
	}
	// Размеры должны совпасть: иначе какой-то счет отсутствует, чужой
	// или уже погашен - отклоняем, ничего не меняя.
	if len(invoices) == 0 || len(invoices) != len(invoiceIDs) {
		return apperrors.ErrInvoicesNotFound
	}

	amounts := make([]decimal.Decimal, 0, len(invoices))
	for _, inv := range invoices {
		amounts = append(amounts, inv.Amount)
	}
	expected := money.Sum(amounts...)

	if err := s.verifyAmount(expected, n.Object.Amount.Value); err != nil {
		return err
	}

	_, _, err = s.invoiceService.Settle(ctx, tx, userID, invoiceIDs, true)
	return err
}

func (s *reconciliationService) applySubscriptionPayment(ctx context.Context, tx *gorm.DB, n *dto.GatewayNotification) error {
	userID, err := parseUserID(n.Object.Metadata)
	if err != nil {
		return err
	}
	plan := models.TariffPlan(n.Object.Metadata["plan"])
	period := models.TariffPeriod(n.Object.Metadata["period"])
	if plan == "" || period == "" {
		return apperrors.ErrInvalidPayload
	}

	expected, err := s.catalog.Price(plan, period)
	if err != nil {
		return err
	}

	if err := s.verifyAmount(expected, n.Object.Amount.Value); err != nil {
		return err
	}

	user, err := s.userRepo.FindByID(ctx, tx, userID)
	if err != nil {
		return err
	}
	_, err = s.subscriptionService.ChoosePlan(ctx, tx, user, plan, period)
	return err
}

// verifyAmount - ключевая защита от подмены и устаревших данных: обе
// суммы форматируются до двух знаков и сравниваются как строки.
func (s *reconciliationService) verifyAmount(expected decimal.Decimal, reportedValue string) error {
	reported, err := money.Parse(reportedValue)
	if err != nil {
		return apperrors.ErrInvalidPayload.WithError(err)
	}
	if !money.Equal(expected, reported) {
		return apperrors.ErrAmountMismatch.WithDetails(map[string]string{
			"expected": money.Format(expected),
			"reported": money.Format(reported),
		})
	}
	return nil
}

func parseUserID(metadata map[string]string) (string, error) {
	id, err := uuid.Parse(metadata["user_id"])
	if err != nil {
		return "", apperrors.ErrInvalidPayload.WithError(err)
	}
	return id.String(), nil
}

func parseInvoiceIDs(metadata map[string]string) ([]string, error) {
	var ids []string
	for _, part := range strings.Split(metadata["invoice_ids"], ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := uuid.Parse(part)
		if err != nil {
			return nil, apperrors.ErrInvalidPayload.WithError(err)
		}
		ids = append(ids, id.String())
	}
	if len(ids) == 0 {
		return nil, apperrors.ErrInvalidPayload
	}
	return ids, nil
}
