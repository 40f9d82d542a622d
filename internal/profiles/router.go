package profiles

import (
	"github.com/gin-gonic/gin"
)

// SetupProfileRoutes registers the admin profile routes on an admin-gated group
func SetupProfileRoutes(admin *gin.RouterGroup, controller *Controller) {
	profiles := admin.Group("/profiles")
	{
		profiles.GET("", controller.ListProfiles)
		profiles.GET("/:id", controller.GetProfile)
		profiles.PATCH("/:id/role", controller.UpdateRole)
	}
}
