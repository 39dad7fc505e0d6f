package handler

import (
	"net/http"

	"propertyhub/internal/authz"
	"propertyhub/internal/service"
	"propertyhub/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// actorFromContext builds the acting identity from the JWT claims that the
// auth middleware stored in the gin context. Handlers pass the actor into
// the service layer explicitly; services never read the session themselves.
func actorFromContext(c *gin.Context) (service.Actor, bool) {
	rawID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "User ID not found in context"))
		return service.Actor{}, false
	}

	idStr, ok := rawID.(string)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid User ID format"))
		return service.Actor{}, false
	}

	userID, err := uuid.Parse(idStr)
	if err != nil {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid User ID format"))
		return service.Actor{}, false
	}

	role := c.GetString("userRole")
	if role == "" {
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Role not found in context"))
		return service.Actor{}, false
	}

	return service.Actor{UserID: userID, Role: authz.Role(role)}, true
}
