package analytics

import (
	"github.com/gin-gonic/gin"
)

func SetupAnalyticsRoutes(admin *gin.RouterGroup, controller *Controller) {
	analytics := admin.Group("/analytics")
	{
		analytics.GET("/dashboard", controller.GetDashboard)
		analytics.POST("/dashboard/refresh", controller.RefreshDashboard)
		analytics.GET("/bookings/daily", controller.GetDailyBookings) // ?days=30
	}
}
