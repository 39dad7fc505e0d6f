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

type PropertyHandler struct {
	propertyService service.PropertyService
}

func NewPropertyHandler(propertyService service.PropertyService) *PropertyHandler {
	return &PropertyHandler{propertyService: propertyService}
}

func (h *PropertyHandler) RegisterRoutes(router *gin.RouterGroup) {
	properties := router.Group("/api/properties")
	{
		properties.GET("", middleware.RequireAuth(), h.ListProperties)
		properties.GET("/:id", middleware.RequireAuth(), h.GetProperty)
		properties.POST("", middleware.RequirePermission(authz.ManageProperties), h.CreateProperty)
		properties.PUT("/:id", middleware.RequirePermission(authz.ManageProperties), h.UpdateProperty)
		properties.DELETE("/:id", middleware.RequirePermission(authz.ManageProperties), h.DeleteProperty)
	}
}

// ListProperties returns a paginated list of properties
// @Summary      List properties
// @Description  Retrieves a paginated list of properties, optionally filtered by status or searched by name/address
// @Tags         properties
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Filter by status (ACTIVE, INACTIVE)"
// @Param        search  query     string  false  "Search by name or address"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Success      200     {object}  response.Response{data=object}
// @Failure      500     {object}  response.Response
// @Router       /api/properties [get]
func (h *PropertyHandler) ListProperties(c *gin.Context) {
	params := pagination.Parse(c)

	properties, total, err := h.propertyService.ListProperties(c.Request.Context(), c.Query("status"), c.Query("search"), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch properties"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"properties": properties,
		"total":      total,
		"page":       params.Page,
		"limit":      params.Limit,
	}))
}

// GetProperty returns a single property by ID
// @Summary      Get property
// @Tags         properties
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Property ID"
// @Success      200  {object}  response.Response{data=service.PropertyResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/properties/{id} [get]
func (h *PropertyHandler) GetProperty(c *gin.Context) {
	property, err := h.propertyService.GetProperty(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "Property not found"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, property))
}

// CreateProperty registers a new property
// @Summary      Create property
// @Tags         properties
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreatePropertyRequest  true  "Create Property Payload"
// @Success      201      {object}  response.Response{data=service.PropertyResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/properties [post]
func (h *PropertyHandler) CreateProperty(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	var req service.CreatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	property, err := h.propertyService.CreateProperty(c.Request.Context(), actor, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, property))
}

// UpdateProperty updates an existing property
// @Summary      Update property
// @Tags         properties
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                         true  "Property ID"
// @Param        payload  body      service.UpdatePropertyRequest  true  "Update Property Payload"
// @Success      200      {object}  response.Response{data=service.PropertyResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/properties/{id} [put]
func (h *PropertyHandler) UpdateProperty(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	var req service.UpdatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	property, err := h.propertyService.UpdateProperty(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, property))
}

// DeleteProperty removes a property
// @Summary      Delete property
// @Tags         properties
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Property ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/properties/{id} [delete]
func (h *PropertyHandler) DeleteProperty(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	if err := h.propertyService.DeleteProperty(c.Request.Context(), actor, c.Param("id")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Property deleted successfully"))
}
