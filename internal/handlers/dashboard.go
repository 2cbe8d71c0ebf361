package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/khoward/worktrack/internal/middleware"
	"github.com/khoward/worktrack/internal/services"
	"github.com/khoward/worktrack/pkg/response"
)

type DashboardHandler struct {
	dashboardService *services.DashboardService
}

func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Stats returns the dashboard numbers for the signed-in user.
// GET /api/dashboard/stats
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.dashboardService.GetStats(middleware.GetUserID(c), time.Now())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}
