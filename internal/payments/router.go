package payments

import (
	"github.com/gin-gonic/gin"
)

func SetupPaymentRoutes(api *gin.RouterGroup, controller *Controller) {
	payments := api.Group("/payments")
	{
		payments.POST("/webhook", controller.Webhook) // signature-verified, no auth
	}
}
