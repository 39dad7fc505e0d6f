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

type TenantHandler struct {
	tenantService service.TenantService
}

func NewTenantHandler(tenantService service.TenantService) *TenantHandler {
	return &TenantHandler{tenantService: tenantService}
}

func (h *TenantHandler) RegisterRoutes(router *gin.RouterGroup) {
	tenants := router.Group("/api/tenants")
	{
		tenants.GET("", middleware.RequireAuth(), h.ListTenants)
		tenants.GET("/:id", middleware.RequireAuth(), h.GetTenant)
		tenants.POST("", middleware.RequirePermission(authz.ManageProperties), h.CreateTenant)
	}
}

// ListTenants returns a paginated list of tenants
// @Summary      List tenants
// @Description  Retrieves a paginated list of tenants, optionally filtered by property and status
// @Tags         tenants
// @Produce      json
// @Security     BearerAuth
// @Param        property_id  query     string  false  "Filter by property"
// @Param        status       query     string  false  "Filter by status (PENDING, ACTIVE, SUSPENDED, FORMER)"
// @Param        page         query     int     false  "Page number (default 1)"
// @Param        limit        query     int     false  "Number of items per page (default 20)"
// @Success      200          {object}  response.Response{data=object}
// @Failure      500          {object}  response.Response
// @Router       /api/tenants [get]
func (h *TenantHandler) ListTenants(c *gin.Context) {
	params := pagination.Parse(c)

	tenants, total, err := h.tenantService.ListTenants(c.Request.Context(), c.Query("property_id"), c.Query("status"), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch tenants"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"tenants": tenants,
		"total":   total,
		"page":    params.Page,
		"limit":   params.Limit,
	}))
}

// GetTenant returns a single tenant by ID
// @Summary      Get tenant
// @Tags         tenants
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Tenant ID"
// @Success      200  {object}  response.Response{data=service.TenantResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/tenants/{id} [get]
func (h *TenantHandler) GetTenant(c *gin.Context) {
	tenant, err := h.tenantService.GetTenant(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "Tenant not found"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, tenant))
}

// CreateTenant registers a new tenant in PENDING status
// @Summary      Create tenant
// @Description  Registers a tenant against a property. The tenant starts as PENDING and only becomes ACTIVE through an approved lease request.
// @Tags         tenants
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateTenantRequest  true  "Create Tenant Payload"
// @Success      201      {object}  response.Response{data=service.TenantResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/tenants [post]
func (h *TenantHandler) CreateTenant(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	var req service.CreateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	tenant, err := h.tenantService.CreateTenant(c.Request.Context(), actor, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, tenant))
}
