package handlers

import (
	"net/http"

	"cabinet_backend/internal/apperrors"
	"cabinet_backend/internal/dto"
	"cabinet_backend/internal/middleware"
	"cabinet_backend/internal/models"
	"cabinet_backend/internal/services"

	"github.com/gin-gonic/gin"
)

type InvoiceHandler struct {
	*BaseHandler
	invoiceService services.InvoiceService
}

func NewInvoiceHandler(base *BaseHandler, invoiceService services.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{
		BaseHandler:    base,
		invoiceService: invoiceService,
	}
}

func (h *InvoiceHandler) RegisterRoutes(r *gin.RouterGroup) {
	invoices := r.Group("/invoices")
	invoices.Use(middleware.AuthMiddleware())
	{
		invoices.GET("/my", h.ListMyInvoices)

		// Прямое погашение в обход подтверждения шлюза - только админ.
		invoices.POST("/pay", middleware.RoleMiddleware(models.UserRoleAdmin), h.PayInvoices)
	}
}

// ListMyInvoices - непросроченные счета текущего пользователя.
// ?include_paid=true добавляет оплаченные.
func (h *InvoiceHandler) ListMyInvoices(c *gin.Context) {
	userID, ok := h.GetUserID(c)
	if !ok {
		return
	}

	includePaid := c.Query("include_paid") == "true"
	invoices, err := h.invoiceService.ListForUser(c.Request.Context(), h.GetDB(c), userID, includePaid)
	if err != nil {
		apperrors.HandleError(c, apperrors.DatabaseError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoices": invoices, "total": len(invoices)})
}

// PayInvoices - прямое погашение счетов с флагом approved от вызывающего.
func (h *InvoiceHandler) PayInvoices(c *gin.Context) {
	userID, ok := h.GetUserID(c)
	if !ok {
		return
	}

	var req dto.InvoicePayRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	approved := true
	if req.Approved != nil {
		approved = *req.Approved
	}
	targetUserID := userID
	if req.UserID != "" {
		targetUserID = req.UserID
	}

	processed, skipped, err := h.invoiceService.Settle(c.Request.Context(), h.GetDB(c), targetUserID, req.InvoiceIDs, approved)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.InvoicePayResponse{
		ProcessedIDs: processed,
		SkippedIDs:   skipped,
	})
}
