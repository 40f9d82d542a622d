package bookings

import (
	"errors"
	"net/http"

	"tourly/internal/shared/middleware"
	"tourly/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// CreateBooking handles POST /api/v1/bookings and answers with an ActionResult
func (c *Controller) CreateBooking(ctx *gin.Context) {
	var req CreateBookingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		result := failure(failureValidation, "Validation failed: "+err.Error())
		ctx.JSON(result.HTTPStatus(), result)
		return
	}

	result := c.service.CreateBooking(ctx.Request.Context(), middleware.UserID(ctx), req)
	ctx.JSON(result.HTTPStatus(), result)
}

// GetBooking handles GET /api/v1/bookings/:reference?email=
func (c *Controller) GetBooking(ctx *gin.Context) {
	booking, err := c.service.GetForContact(ctx.Request.Context(), ctx.Param("reference"), ctx.Query("email"))
	if err != nil {
		c.fail(ctx, err)
		return
	}
	response.Success(ctx, http.StatusOK, "Booking retrieved successfully", booking)
}

type paymentIntentRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// CreatePaymentIntent handles POST /api/v1/bookings/:reference/payment-intent
func (c *Controller) CreatePaymentIntent(ctx *gin.Context) {
	var req paymentIntentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.ValidationError(ctx, err)
		return
	}

	intent, err := c.service.CreatePaymentIntent(ctx.Request.Context(), ctx.Param("reference"), req.Email)
	if err != nil {
		c.fail(ctx, err)
		return
	}
	response.Success(ctx, http.StatusCreated, "Payment intent created successfully", intent)
}

// GetMyBookings handles GET /api/v1/me/bookings
func (c *Controller) GetMyBookings(ctx *gin.Context) {
	var query ListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid query parameters", err.Error())
		return
	}

	result, err := c.service.ListByCustomer(ctx.Request.Context(), middleware.UserID(ctx), query)
	if err != nil {
		c.fail(ctx, err)
		return
	}
	response.Success(ctx, http.StatusOK, "Bookings retrieved successfully", result)
}

// CancelMyBooking handles POST /api/v1/me/bookings/:reference/cancel
func (c *Controller) CancelMyBooking(ctx *gin.Context) {
	booking, err := c.service.CancelOwn(ctx.Request.Context(), middleware.UserID(ctx), ctx.Param("reference"))
	if err != nil {
		c.fail(ctx, err)
		return
	}
	response.Success(ctx, http.StatusOK, "Booking cancelled successfully", booking)
}

// ListBookings handles GET /api/v1/admin/bookings
func (c *Controller) ListBookings(ctx *gin.Context) {
	var query ListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid query parameters", err.Error())
		return
	}

	result, err := c.service.ListBookings(ctx.Request.Context(), query)
	if err != nil {
		c.fail(ctx, err)
		return
	}
	response.Success(ctx, http.StatusOK, "Bookings retrieved successfully", result)
}

// AdminGetBooking handles GET /api/v1/admin/bookings/:reference
func (c *Controller) AdminGetBooking(ctx *gin.Context) {
	booking, err := c.service.GetByReference(ctx.Request.Context(), ctx.Param("reference"))
	if err != nil {
		c.fail(ctx, err)
		return
	}
	response.Success(ctx, http.StatusOK, "Booking retrieved successfully", booking)
}

// UpdateStatus handles PATCH /api/v1/admin/bookings/:reference/status
func (c *Controller) UpdateStatus(ctx *gin.Context) {
	var req UpdateStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.ValidationError(ctx, err)
		return
	}

	booking, err := c.service.UpdateStatus(ctx.Request.Context(), ctx.Param("reference"), Status(req.Status))
	if err != nil {
		c.fail(ctx, err)
		return
	}
	response.Success(ctx, http.StatusOK, "Booking status updated successfully", booking)
}

func (c *Controller) fail(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrBookingNotFound):
		response.Error(ctx, http.StatusNotFound, "Booking not found", nil)
	case errors.Is(err, ErrNotOwner):
		response.Error(ctx, http.StatusForbidden, err.Error(), nil)
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrStatusConflict), errors.Is(err, ErrNotPayable):
		response.Error(ctx, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, ErrPaymentsDisabled):
		response.Error(ctx, http.StatusServiceUnavailable, err.Error(), nil)
	default:
		response.Error(ctx, http.StatusInternalServerError, "Booking request failed", err.Error())
	}
}
