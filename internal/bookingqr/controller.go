package bookingqr

import (
	"errors"
	"net/http"

	"tourly/internal/bookings"
	"tourly/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service *Service
}

func NewController(service *Service) *Controller {
	return &Controller{service: service}
}

// GetQRCode handles GET /api/v1/bookings/:reference/qr?email=
func (ctrl *Controller) GetQRCode(c *gin.Context) {
	png, err := ctrl.service.Render(c.Request.Context(), c.Param("reference"), c.Query("email"))
	if err != nil {
		if errors.Is(err, bookings.ErrBookingNotFound) {
			response.Error(c, http.StatusNotFound, "Booking not found", nil)
			return
		}
		response.Error(c, http.StatusInternalServerError, "Failed to generate QR code", err.Error())
		return
	}

	c.Header("Cache-Control", "private, max-age=300")
	c.Data(http.StatusOK, "image/png", png)
}

type verifyRequest struct {
	Data string `json:"data" binding:"required"`
}

// VerifyQRCode handles POST /api/v1/admin/qr/verify
func (ctrl *Controller) VerifyQRCode(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	result := ctrl.service.Verify(c.Request.Context(), req.Data)
	response.Success(c, http.StatusOK, result.Message, result)
}
