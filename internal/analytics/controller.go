package analytics

import (
	"net/http"
	"strconv"

	"tourly/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

func (ctrl *Controller) GetDashboard(c *gin.Context) {
	dashboard, err := ctrl.service.GetDashboard(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to load dashboard", err.Error())
		return
	}
	response.Success(c, http.StatusOK, "Dashboard analytics retrieved successfully", dashboard)
}

func (ctrl *Controller) GetDailyBookings(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))

	stats, err := ctrl.service.GetDailyBookings(c.Request.Context(), days)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to load booking stats", err.Error())
		return
	}
	response.Success(c, http.StatusOK, "Daily booking stats retrieved successfully", stats)
}

func (ctrl *Controller) RefreshDashboard(c *gin.Context) {
	if err := ctrl.service.Invalidate(c.Request.Context()); err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to refresh analytics", err.Error())
		return
	}
	ctrl.GetDashboard(c)
}
