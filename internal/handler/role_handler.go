package handler

import (
	"net/http"

	"propertyhub/internal/authz"
	"propertyhub/internal/middleware"
	"propertyhub/internal/service"
	"propertyhub/pkg/response"

	"github.com/gin-gonic/gin"
)

type RoleHandler struct {
	roleService service.RoleService
}

func NewRoleHandler(roleService service.RoleService) *RoleHandler {
	return &RoleHandler{roleService: roleService}
}

func (h *RoleHandler) RegisterRoutes(router *gin.RouterGroup) {
	roles := router.Group("/api/roles")
	{
		roles.GET("", middleware.RequirePermission(authz.ManageUsers), h.ListRoles)
		roles.GET("/assignable", middleware.RequirePermission(authz.ManageUsers), h.ListAssignableRoles)
		roles.GET("/permissions", middleware.RequirePermission(authz.ManageRoles), h.ListPermissions)
	}
}

// ListRoles returns the compiled-in role table
// @Summary      List roles
// @Description  Returns every role with its level and permission codes. The table is static; roles cannot be edited at runtime.
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.RoleResponse}
// @Router       /api/roles [get]
func (h *RoleHandler) ListRoles(c *gin.Context) {
	c.JSON(http.StatusOK, response.Success(http.StatusOK, h.roleService.ListRoles(c.Request.Context())))
}

// ListAssignableRoles returns the roles the caller may hand out
// @Summary      List assignable roles
// @Description  Returns the roles strictly below the caller's own level
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]string}
// @Router       /api/roles/assignable [get]
func (h *RoleHandler) ListAssignableRoles(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, h.roleService.AssignableRoles(c.Request.Context(), actor)))
}

// ListPermissions returns every known permission code
// @Summary      List permissions
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]string}
// @Router       /api/roles/permissions [get]
func (h *RoleHandler) ListPermissions(c *gin.Context) {
	c.JSON(http.StatusOK, response.Success(http.StatusOK, h.roleService.ListPermissions(c.Request.Context())))
}
