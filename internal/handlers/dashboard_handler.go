package handlers

import (
	"clinicore/internal/middleware"
	"clinicore/internal/services"
	"clinicore/pkg/response"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	statsService *services.StatsService
}

func NewDashboardHandler(statsService *services.StatsService) *DashboardHandler {
	return &DashboardHandler{statsService: statsService}
}

// Stats 诊所工作台统计
func (h *DashboardHandler) Stats(c *gin.Context) {
	claims := middleware.GetClaims(c)

	stats, err := h.statsService.Dashboard(claims.ClinicID)
	if err != nil {
		response.ServerError(c, "查询工作台统计失败")
		return
	}

	response.Success(c, stats)
}
