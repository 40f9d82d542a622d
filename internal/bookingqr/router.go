package bookingqr

import (
	"github.com/gin-gonic/gin"
)

func SetupQRRoutes(api, admin *gin.RouterGroup, controller *Controller) {
	api.GET("/bookings/:reference/qr", controller.GetQRCode)
	admin.POST("/qr/verify", controller.VerifyQRCode)
}
