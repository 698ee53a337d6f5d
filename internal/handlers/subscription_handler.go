package handlers

import (
	"net/http"

	"cabinet_backend/internal/apperrors"
	"cabinet_backend/internal/dto"
	"cabinet_backend/internal/middleware"
	"cabinet_backend/internal/models"
	"cabinet_backend/internal/pricing"
	"cabinet_backend/internal/repositories"
	"cabinet_backend/internal/services"

	"github.com/gin-gonic/gin"
)

type SubscriptionHandler struct {
	*BaseHandler
	subscriptionService services.SubscriptionService
	userRepo            repositories.UserRepository
	catalog             *pricing.Catalog
}

func NewSubscriptionHandler(
	base *BaseHandler,
	subscriptionService services.SubscriptionService,
	userRepo repositories.UserRepository,
	catalog *pricing.Catalog,
) *SubscriptionHandler {
	return &SubscriptionHandler{
		BaseHandler:         base,
		subscriptionService: subscriptionService,
		userRepo:            userRepo,
		catalog:             catalog,
	}
}

func (h *SubscriptionHandler) RegisterRoutes(r *gin.RouterGroup) {
	// Public routes - каталог тарифов
	r.GET("/plans", h.GetPlans)

	subscriptions := r.Group("/subscriptions")
	subscriptions.Use(middleware.AuthMiddleware())
	{
		subscriptions.GET("/active", h.GetActiveSubscription)

		// Прямое назначение плана без оплаты - только админ.
		subscriptions.POST("/grant", middleware.RoleMiddleware(models.UserRoleAdmin), h.GrantSubscription)
	}
}

// GetPlans - публичный список тарифов из каталога.
func (h *SubscriptionHandler) GetPlans(c *gin.Context) {
	items := h.catalog.Plans()
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// GetActiveSubscription возвращает действующую подписку пользователя.
// Вызов попутно гасит просроченные строки (ленивый sweep).
func (h *SubscriptionHandler) GetActiveSubscription(c *gin.Context) {
	userID, ok := h.GetUserID(c)
	if !ok {
		return
	}

	sub, err := h.subscriptionService.GetActive(c.Request.Context(), h.GetDB(c), userID)
	if err != nil {
		apperrors.HandleError(c, apperrors.DatabaseError(err))
		return
	}
	if sub == nil {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, dto.NewSubscriptionResponse(sub))
}

// GrantSubscription - админ назначает план пользователю напрямую.
func (h *SubscriptionHandler) GrantSubscription(c *gin.Context) {
	var req dto.GrantSubscriptionRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)
	user, err := h.userRepo.FindByID(c.Request.Context(), db, req.UserID)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}

	sub, err := h.subscriptionService.ChoosePlan(
		c.Request.Context(), db, user,
		models.TariffPlan(req.Plan), models.TariffPeriod(req.Period),
	)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSubscriptionResponse(sub))
}
