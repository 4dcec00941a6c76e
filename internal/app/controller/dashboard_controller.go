package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/storerate/storerate-backend/internal/app/service"
	"github.com/storerate/storerate-backend/internal/middleware"
)

type DashboardController struct {
	dashboardService service.DashboardService
}

func NewDashboardController(dashboardService service.DashboardService) *DashboardController {
	return &DashboardController{dashboardService: dashboardService}
}

// GetStats returns the entity totals
// GET /api/dashboard/stats
func (ctrl *DashboardController) GetStats(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	stats, err := ctrl.dashboardService.GetStats()
	if err != nil {
		respondUnexpected(c, log, "Failed to load dashboard stats", err, nil)
		return
	}

	c.JSON(http.StatusOK, stats)
}
