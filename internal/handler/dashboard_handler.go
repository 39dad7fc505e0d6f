package handler

import (
	"net/http"
	"time"

	"propertyhub/internal/authz"
	"propertyhub/internal/middleware"
	"propertyhub/internal/service"
	"propertyhub/pkg/response"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboardService service.DashboardService
}

func NewDashboardHandler(dashboardService service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

func (h *DashboardHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/api/dashboard", middleware.RequirePermission(authz.ViewAnalytics), h.GetDashboard)
}

// GetDashboard returns portfolio metrics for a time bracket
// @Summary      Dashboard metrics
// @Description  Aggregates property, tenant, payment and approval counters over the requested period. Defaults to the last 30 days.
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Param        start_date  query     string  false  "Period start (YYYY-MM-DD)"
// @Param        end_date    query     string  false  "Period end (YYYY-MM-DD)"
// @Success      200         {object}  response.Response{data=service.DashboardResponse}
// @Failure      400         {object}  response.Response
// @Failure      500         {object}  response.Response
// @Router       /api/dashboard [get]
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -30)

	if raw := c.Query("start_date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid start_date, expected YYYY-MM-DD"))
			return
		}
		startDate = parsed
	}
	if raw := c.Query("end_date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid end_date, expected YYYY-MM-DD"))
			return
		}
		// Include the whole end day
		endDate = parsed.Add(24*time.Hour - time.Second)
	}

	dashboard, err := h.dashboardService.GetDashboard(c.Request.Context(), startDate, endDate)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to compute dashboard metrics"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, dashboard))
}
