package handlers

import (
	"io"
	"net/http"
	"strings"

	"cabinet_backend/internal/apperrors"
	"cabinet_backend/internal/dto"
	"cabinet_backend/internal/gateway"
	"cabinet_backend/internal/middleware"
	"cabinet_backend/internal/models"
	"cabinet_backend/internal/money"
	"cabinet_backend/internal/pricing"
	"cabinet_backend/internal/repositories"
	"cabinet_backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type PaymentHandler struct {
	*BaseHandler
	gatewayClient  *gateway.Client
	invoiceService services.InvoiceService
	reconciler     services.ReconciliationService
	userRepo       repositories.UserRepository
	catalog        *pricing.Catalog
}

func NewPaymentHandler(
	base *BaseHandler,
	gatewayClient *gateway.Client,
	invoiceService services.InvoiceService,
	reconciler services.ReconciliationService,
	userRepo repositories.UserRepository,
	catalog *pricing.Catalog,
) *PaymentHandler {
	return &PaymentHandler{
		BaseHandler:    base,
		gatewayClient:  gatewayClient,
		invoiceService: invoiceService,
		reconciler:     reconciler,
		userRepo:       userRepo,
		catalog:        catalog,
	}
}

func (h *PaymentHandler) RegisterRoutes(r *gin.RouterGroup) {
	payments := r.Group("/payments/gateway")
	{
		// Вебхук аутентифицируется общим секретом, не JWT.
		payments.POST("/notify", h.HandleNotification)

		authorized := payments.Group("")
		authorized.Use(middleware.AuthMiddleware())
		{
			authorized.POST("/invoices", h.StartInvoicePayment)
			authorized.POST("/subscription", h.StartSubscriptionPayment)
		}
	}
}

// StartInvoicePayment создает платеж в шлюзе на сумму выбранных счетов и
// возвращает URL редиректа. Локально ничего не фиксируется: счета будут
// погашены только после подтверждения вебхуком.
func (h *PaymentHandler) StartInvoicePayment(c *gin.Context) {
	userID, ok := h.GetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateInvoicePaymentRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)
	ctx := c.Request.Context()

	invoices, err := h.invoiceService.GetPayable(ctx, db, userID, req.InvoiceIDs)
	if err != nil {
		apperrors.HandleError(c, apperrors.DatabaseError(err))
		return
	}
	if len(invoices) == 0 {
		apperrors.HandleError(c, apperrors.ErrInvoicesNotFound)
		return
	}
	// Каждый запрошенный id обязан быть оплачиваемым, иначе вызывающий
	// узнает об этом сейчас, а не после оплаты.
	if len(invoices) != len(req.InvoiceIDs) {
		apperrors.HandleError(c, apperrors.NewBadRequestError("Some invoices are not available for payment"))
		return
	}

	amounts := make([]decimal.Decimal, 0, len(invoices))
	invoiceIDs := make([]string, 0, len(invoices))
	for _, inv := range invoices {
		amounts = append(amounts, inv.Amount)
		invoiceIDs = append(invoiceIDs, inv.ID)
	}
	total := money.Sum(amounts...)

	user, err := h.userRepo.FindByID(ctx, db, userID)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}

	const description = "Invoice payment"
	redirectURL, err := h.gatewayClient.CreatePayment(ctx, gateway.CreatePaymentRequest{
		Amount:      total,
		Description: description,
		ReturnPath:  "/invoices/success",
		Metadata: map[string]string{
			"kind":        "invoice",
			"user_id":     userID,
			"invoice_ids": strings.Join(invoiceIDs, ","),
		},
		Receipt: h.gatewayClient.BuildReceipt(total, description, user.Phone, user.Email),
	})
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.PaymentRedirectResponse{RedirectURL: redirectURL})
}

// StartSubscriptionPayment создает платеж в шлюзе на цену тарифа.
func (h *PaymentHandler) StartSubscriptionPayment(c *gin.Context) {
	userID, ok := h.GetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateSubscriptionPaymentRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)
	ctx := c.Request.Context()

	price, err := h.catalog.Price(models.TariffPlan(req.Plan), models.TariffPeriod(req.Period))
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}

	user, err := h.userRepo.FindByID(ctx, db, userID)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}

	description := "Subscription " + req.Plan + "/" + req.Period
	redirectURL, err := h.gatewayClient.CreatePayment(ctx, gateway.CreatePaymentRequest{
		Amount:      price,
		Description: description,
		ReturnPath:  "/subscriptions/success",
		Metadata: map[string]string{
			"kind":    "subscription",
			"user_id": userID,
			"plan":    req.Plan,
			"period":  req.Period,
		},
		Receipt: h.gatewayClient.BuildReceipt(price, description, user.Phone, user.Email),
	})
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.PaymentRedirectResponse{RedirectURL: redirectURL})
}

// HandleNotification принимает асинхронный вебхук шлюза и передает его
// движку сверки. Ответ "ignored" подтверждает доставку без изменений.
func (h *PaymentHandler) HandleNotification(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("Failed to read request body"))
		return
	}

	provided := c.GetHeader("Authorization")
	if provided == "" {
		provided = c.GetHeader("X-Webhook-Secret")
	}

	status, err := h.reconciler.ProcessNotification(c.Request.Context(), h.GetDB(c), provided, raw)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.WebhookAck{Status: string(status)})
}
