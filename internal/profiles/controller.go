package profiles

import (
	"errors"
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

func (ctrl *Controller) ListProfiles(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	result, err := ctrl.service.ListProfiles(c.Request.Context(), ListFilter{
		ProfileType: c.Query("type"),
		Search:      c.Query("search"),
		Page:        page,
		Limit:       limit,
	})
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to list profiles", err.Error())
		return
	}

	response.Success(c, http.StatusOK, "Profiles retrieved successfully", result)
}

func (ctrl *Controller) GetProfile(c *gin.Context) {
	profile, err := ctrl.service.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			response.Error(c, http.StatusNotFound, "Profile not found", nil)
			return
		}
		response.Error(c, http.StatusInternalServerError, "Failed to get profile", err.Error())
		return
	}

	response.Success(c, http.StatusOK, "Profile retrieved successfully", profile)
}

func (ctrl *Controller) UpdateRole(c *gin.Context) {
	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	profile, err := ctrl.service.UpdateRole(c.Request.Context(), c.Param("id"), req.Role)
	if err != nil {
		switch {
		case errors.Is(err, ErrProfileNotFound):
			response.Error(c, http.StatusNotFound, "Profile not found", nil)
		case errors.Is(err, ErrInvalidRole):
			response.Error(c, http.StatusBadRequest, "Invalid role", nil)
		default:
			response.Error(c, http.StatusInternalServerError, "Failed to update role", err.Error())
		}
		return
	}

	response.Success(c, http.StatusOK, "Role updated successfully", profile)
}
