package bookings

import (
	"github.com/gin-gonic/gin"
)

// SetupBookingRoutes configures all booking-related routes. Guests address a
// booking by reference plus lead email; signed-in customers by their identity.
func SetupBookingRoutes(api, admin *gin.RouterGroup, controller *Controller, requireAuth, optionalAuth gin.HandlerFunc) {
	bookings := api.Group("/bookings")
	{
		bookings.POST("", optionalAuth, controller.CreateBooking)                   // POST /api/v1/bookings
		bookings.GET("/:reference", controller.GetBooking)                          // GET  /api/v1/bookings/:reference?email=
		bookings.POST("/:reference/payment-intent", controller.CreatePaymentIntent) // POST /api/v1/bookings/:reference/payment-intent
	}

	me := api.Group("/me/bookings")
	me.Use(requireAuth)
	{
		me.GET("", controller.GetMyBookings)
		me.POST("/:reference/cancel", controller.CancelMyBooking)
	}

	manage := admin.Group("/bookings")
	{
		manage.GET("", controller.ListBookings)
		manage.GET("/:reference", controller.AdminGetBooking)
		manage.PATCH("/:reference/status", controller.UpdateStatus)
	}
}
