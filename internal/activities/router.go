package activities

import (
	"github.com/gin-gonic/gin"
)

// SetupActivityRoutes registers public browsing on api and management on an admin-gated group
func SetupActivityRoutes(api *gin.RouterGroup, admin *gin.RouterGroup, controller *Controller) {
	public := api.Group("/activities")
	{
		public.GET("", controller.ListActivities)
		public.GET("/:id", controller.GetActivity) // id or slug
	}

	manage := admin.Group("/activities")
	{
		manage.GET("", controller.ListAllActivities)
		manage.GET("/:id", controller.GetActivity)
		manage.POST("", controller.CreateActivity)
		manage.PUT("/:id", controller.UpdateActivity)
		manage.DELETE("/:id", controller.DeleteActivity)
		manage.POST("/:id/images", controller.UploadImage)
		manage.DELETE("/:id/images/:imageId", controller.DeleteImage)
	}
}
