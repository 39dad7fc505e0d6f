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

type MaintenanceHandler struct {
	maintenanceService service.MaintenanceService
}

func NewMaintenanceHandler(maintenanceService service.MaintenanceService) *MaintenanceHandler {
	return &MaintenanceHandler{maintenanceService: maintenanceService}
}

func (h *MaintenanceHandler) RegisterRoutes(router *gin.RouterGroup) {
	maintenance := router.Group("/api/maintenance")
	{
		maintenance.GET("", middleware.RequireAuth(), h.ListRequests)
		maintenance.GET("/:id", middleware.RequireAuth(), h.GetRequest)
		maintenance.POST("", middleware.RequirePermission(authz.SubmitRequests), h.CreateRequest)
		maintenance.PUT("/:id/assign", middleware.RequirePermission(authz.ManageMaintenance), h.AssignTechnician)
		maintenance.PUT("/:id/complete", middleware.RequirePermission(authz.ManageMaintenance), h.CompleteRequest)
	}
}

// ListRequests returns a paginated list of maintenance requests
// @Summary      List maintenance requests
// @Tags         maintenance
// @Produce      json
// @Security     BearerAuth
// @Param        property_id  query     string  false  "Filter by property"
// @Param        status       query     string  false  "Filter by status (OPEN, APPROVED, REJECTED, IN_PROGRESS, COMPLETED)"
// @Param        page         query     int     false  "Page number (default 1)"
// @Param        limit        query     int     false  "Number of items per page (default 20)"
// @Success      200          {object}  response.Response{data=object}
// @Failure      500          {object}  response.Response
// @Router       /api/maintenance [get]
func (h *MaintenanceHandler) ListRequests(c *gin.Context) {
	params := pagination.Parse(c)

	requests, total, err := h.maintenanceService.ListRequests(c.Request.Context(), c.Query("property_id"), c.Query("status"), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch maintenance requests"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"requests": requests,
		"total":    total,
		"page":     params.Page,
		"limit":    params.Limit,
	}))
}

// GetRequest returns a single maintenance request by ID
// @Summary      Get maintenance request
// @Tags         maintenance
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Maintenance Request ID"
// @Success      200  {object}  response.Response{data=service.MaintenanceResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/maintenance/{id} [get]
func (h *MaintenanceHandler) GetRequest(c *gin.Context) {
	request, err := h.maintenanceService.GetRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "Maintenance request not found"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, request))
}

// CreateRequest files a new maintenance request
// @Summary      Create maintenance request
// @Description  Files a maintenance request in OPEN status. Work only starts after the linked approval request is approved.
// @Tags         maintenance
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateMaintenanceRequest  true  "Create Maintenance Payload"
// @Success      201      {object}  response.Response{data=service.MaintenanceResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/maintenance [post]
func (h *MaintenanceHandler) CreateRequest(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	var req service.CreateMaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	request, err := h.maintenanceService.CreateRequest(c.Request.Context(), actor, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, request))
}

type assignPayload struct {
	TechnicianID string `json:"technician_id" binding:"required,uuid"`
}

// AssignTechnician assigns a technician to an approved request
// @Summary      Assign technician
// @Description  Assigns a technician and moves the request to IN_PROGRESS. The request must be in APPROVED status.
// @Tags         maintenance
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string         true  "Maintenance Request ID"
// @Param        payload  body      assignPayload  true  "Technician Assignment"
// @Success      200      {object}  response.Response{data=service.MaintenanceResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/maintenance/{id}/assign [put]
func (h *MaintenanceHandler) AssignTechnician(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	var payload assignPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	request, err := h.maintenanceService.AssignTechnician(c.Request.Context(), actor, c.Param("id"), payload.TechnicianID)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, request))
}

// CompleteRequest closes out an in-progress request
// @Summary      Complete maintenance request
// @Description  Marks an IN_PROGRESS request as COMPLETED
// @Tags         maintenance
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Maintenance Request ID"
// @Success      200  {object}  response.Response{data=service.MaintenanceResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/maintenance/{id}/complete [put]
func (h *MaintenanceHandler) CompleteRequest(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	request, err := h.maintenanceService.CompleteRequest(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, request))
}
