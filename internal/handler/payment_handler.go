package handler

import (
	"net/http"

	"propertyhub/internal/authz"
	"propertyhub/internal/middleware"
	"propertyhub/internal/service"
	"propertyhub/pkg/pagination"
	"propertyhub/pkg/response"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	paymentService service.PaymentService
}

func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

func (h *PaymentHandler) RegisterRoutes(router *gin.RouterGroup) {
	payments := router.Group("/api/payments")
	{
		payments.GET("", middleware.RequirePermission(authz.ManagePayments), h.ListPayments)
		payments.POST("", middleware.RequirePermission(authz.ManagePayments), h.RecordPayment)
	}
}

// ListPayments returns a paginated list of payments
// @Summary      List payments
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        tenant_id     query     string  false  "Filter by tenant"
// @Param        payment_type  query     string  false  "Filter by type (RENT, DEPOSIT, REFUND)"
// @Param        page          query     int     false  "Page number (default 1)"
// @Param        limit         query     int     false  "Number of items per page (default 20)"
// @Success      200           {object}  response.Response{data=object}
// @Failure      500           {object}  response.Response
// @Router       /api/payments [get]
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	params := pagination.Parse(c)

	payments, total, err := h.paymentService.ListPayments(c.Request.Context(), c.Query("tenant_id"), c.Query("payment_type"), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch payments"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"payments": payments,
		"total":    total,
		"page":     params.Page,
		"limit":    params.Limit,
	}))
}

// RecordPayment records a rent or deposit payment
// @Summary      Record payment
// @Description  Records a RENT or DEPOSIT payment. Refunds cannot be recorded here; they are created by approving a refund_approval request.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.RecordPaymentRequest  true  "Record Payment Payload"
// @Success      201      {object}  response.Response{data=service.PaymentResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/payments [post]
func (h *PaymentHandler) RecordPayment(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	var req service.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	payment, err := h.paymentService.RecordPayment(c.Request.Context(), actor, req)
	if err != nil {
		status := http.StatusBadRequest
		if err == service.ErrPermissionDenied {
			status = http.StatusForbidden
		}
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, payment))
}
