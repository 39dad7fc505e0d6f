package handler

import (
	"context"
	"errors"
	"net/http"

	"propertyhub/internal/authz"
	"propertyhub/internal/middleware"
	"propertyhub/internal/service"
	"propertyhub/pkg/pagination"
	"propertyhub/pkg/response"

	"github.com/gin-gonic/gin"
)

type ApprovalHandler struct {
	approvalService service.ApprovalService
}

func NewApprovalHandler(approvalService service.ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{approvalService: approvalService}
}

func (h *ApprovalHandler) RegisterRoutes(router *gin.RouterGroup) {
	approvals := router.Group("/api/approvals")
	{
		approvals.GET("", middleware.RequirePermission(authz.ManageApprovals), h.ListApprovalRequests)
		approvals.GET("/stats", middleware.RequirePermission(authz.ManageApprovals), h.GetStats)
		approvals.GET("/search", middleware.RequirePermission(authz.ManageApprovals), h.SearchApprovalRequests)
		approvals.GET("/pending-count", middleware.RequirePermission(authz.ManageApprovals), h.GetPendingCount)
		approvals.GET("/:id", middleware.RequirePermission(authz.ManageApprovals), h.GetApprovalRequest)
		approvals.POST("", middleware.RequirePermission(authz.SubmitRequests), h.CreateApprovalRequest)
		approvals.POST("/bulk", middleware.RequirePermission(authz.ManageApprovals), h.BulkProcess)
		approvals.PUT("/:id/approve", middleware.RequirePermission(authz.ManageApprovals), h.ApproveRequest)
		approvals.PUT("/:id/reject", middleware.RequirePermission(authz.ManageApprovals), h.RejectRequest)
		approvals.PUT("/:id/cancel", middleware.RequireAuth(), h.CancelRequest)
	}
}

// approvalErrorStatus maps expected workflow failures to HTTP status codes.
// Anything not recognized is treated as a server error.
func approvalErrorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrApprovalNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrAlreadyDecided):
		return http.StatusConflict
	case errors.Is(err, service.ErrPermissionDenied), errors.Is(err, service.ErrNotRequester):
		return http.StatusForbidden
	case errors.Is(err, service.ErrUnknownRequestType), errors.Is(err, service.ErrInvalidPayload):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// ListApprovalRequests returns approval requests, optionally filtered by status and type
// @Summary      List approval requests
// @Description  Retrieves a paginated list of approval requests, optionally filtered by status and request type
// @Tags         approvals
// @Produce      json
// @Security     BearerAuth
// @Param        status        query     string  false  "Filter by status (pending, approved, rejected, cancelled)"
// @Param        request_type  query     string  false  "Filter by request type"
// @Param        page          query     int     false  "Page number (default 1)"
// @Param        limit         query     int     false  "Number of items per page (default 20)"
// @Success      200           {object}  response.Response{data=object}
// @Failure      500           {object}  response.Response
// @Router       /api/approvals [get]
func (h *ApprovalHandler) ListApprovalRequests(c *gin.Context) {
	params := pagination.Parse(c)

	filter := service.ApprovalListFilter{
		Status:      c.Query("status"),
		RequestType: c.Query("request_type"),
		Page:        params.Page,
		Limit:       params.Limit,
	}

	approvals, total, err := h.approvalService.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch approval requests"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"approvals": approvals,
		"total":     total,
		"page":      params.Page,
		"limit":     params.Limit,
	}))
}

// GetApprovalRequest returns a single approval request by ID
// @Summary      Get approval request
// @Description  Fetch a single approval request with requester and reviewer details
// @Tags         approvals
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Approval Request ID"
// @Success      200  {object}  response.Response{data=service.ApprovalRequestResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/approvals/{id} [get]
func (h *ApprovalHandler) GetApprovalRequest(c *gin.Context) {
	approval, err := h.approvalService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "Approval request not found"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, approval))
}

// CreateApprovalRequest submits a new approval request
// @Summary      Create approval request
// @Description  Submits a new approval request. The request always starts as pending and is attributed to the authenticated user.
// @Tags         approvals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateApprovalRequestDTO  true  "Approval Request Payload"
// @Success      201      {object}  response.Response{data=service.ApprovalRequestResponse}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      500      {object}  response.Response
// @Router       /api/approvals [post]
func (h *ApprovalHandler) CreateApprovalRequest(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	var req service.CreateApprovalRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	approval, err := h.approvalService.Create(c.Request.Context(), actor, req)
	if err != nil {
		status := approvalErrorStatus(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, approval))
}

type decisionPayload struct {
	Notes string `json:"notes"`
}

// ApproveRequest approves a pending approval request
// @Summary      Approve request
// @Description  Approves a pending approval request and executes its side effects. Fails with 409 if the request was already decided.
// @Tags         approvals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string           true   "Approval Request ID"
// @Param        payload  body      decisionPayload  false  "Optional reviewer notes"
// @Success      200      {object}  response.Response{data=service.ApprovalRequestResponse}
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/approvals/{id}/approve [put]
func (h *ApprovalHandler) ApproveRequest(c *gin.Context) {
	h.decide(c, h.approvalService.Approve)
}

// RejectRequest rejects a pending approval request
// @Summary      Reject request
// @Description  Rejects a pending approval request. Fails with 409 if the request was already decided.
// @Tags         approvals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string           true   "Approval Request ID"
// @Param        payload  body      decisionPayload  false  "Optional reviewer notes"
// @Success      200      {object}  response.Response{data=service.ApprovalRequestResponse}
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/approvals/{id}/reject [put]
func (h *ApprovalHandler) RejectRequest(c *gin.Context) {
	h.decide(c, h.approvalService.Reject)
}

func (h *ApprovalHandler) decide(c *gin.Context, fn func(ctx context.Context, actor service.Actor, id, notes string) (service.ApprovalRequestResponse, error)) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	var payload decisionPayload
	_ = c.ShouldBindJSON(&payload) // notes are optional; an empty body is fine

	approval, err := fn(c.Request.Context(), actor, c.Param("id"), payload.Notes)
	if err != nil {
		status := approvalErrorStatus(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, approval))
}

// CancelRequest cancels a pending approval request
// @Summary      Cancel request
// @Description  Cancels a pending approval request. Only the original requester may cancel, and only while the request is pending.
// @Tags         approvals
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Approval Request ID"
// @Success      200  {object}  response.Response{data=service.ApprovalRequestResponse}
// @Failure      403  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/approvals/{id}/cancel [put]
func (h *ApprovalHandler) CancelRequest(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	approval, err := h.approvalService.Cancel(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		status := approvalErrorStatus(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, approval))
}

type bulkProcessPayload struct {
	IDs    []string `json:"ids" binding:"required,min=1"`
	Action string   `json:"action" binding:"required,oneof=approve reject"`
	Notes  string   `json:"notes"`
}

// BulkProcess approves or rejects a batch of approval requests
// @Summary      Bulk process requests
// @Description  Applies the same decision to a batch of requests. Already-decided requests are skipped, the rest go through.
// @Tags         approvals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      bulkProcessPayload  true  "Bulk Decision Payload"
// @Success      200      {object}  response.Response{data=service.BulkProcessResult}
// @Failure      400      {object}  response.Response
// @Router       /api/approvals/bulk [post]
func (h *ApprovalHandler) BulkProcess(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	var payload bulkProcessPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.approvalService.BulkProcess(c.Request.Context(), actor, payload.IDs, payload.Action, payload.Notes)
	if err != nil {
		status := approvalErrorStatus(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// GetStats returns aggregate counters for the approval dashboard
// @Summary      Approval statistics
// @Description  Returns per-status and per-type counters plus today/this-week pending counts
// @Tags         approvals
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.ApprovalStats}
// @Failure      500  {object}  response.Response
// @Router       /api/approvals/stats [get]
func (h *ApprovalHandler) GetStats(c *gin.Context) {
	stats, err := h.approvalService.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to compute approval statistics"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, stats))
}

// GetPendingCount returns the number of pending approval requests
// @Summary      Pending approval count
// @Description  Returns the number of requests awaiting a decision, used for the notification badge
// @Tags         approvals
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=object}
// @Failure      500  {object}  response.Response
// @Router       /api/approvals/pending-count [get]
func (h *ApprovalHandler) GetPendingCount(c *gin.Context) {
	count, err := h.approvalService.PendingCount(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to count pending approvals"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{"pending": count}))
}

// SearchApprovalRequests performs a free-text search over approval requests
// @Summary      Search approval requests
// @Description  Case-insensitive search over title, description, type and status, optionally narrowed by priority
// @Tags         approvals
// @Produce      json
// @Security     BearerAuth
// @Param        q         query     string  false  "Search query (empty matches all)"
// @Param        priority  query     string  false  "Filter by priority (low, normal, high, urgent)"
// @Success      200       {object}  response.Response{data=object}
// @Failure      500       {object}  response.Response
// @Router       /api/approvals/search [get]
func (h *ApprovalHandler) SearchApprovalRequests(c *gin.Context) {
	approvals, err := h.approvalService.Search(c.Request.Context(), c.Query("q"), c.Query("priority"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to search approval requests"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"approvals": approvals,
		"total":     len(approvals),
	}))
}
