package activities

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"tourly/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service        Service
	maxUploadBytes int64
}

func NewController(service Service, maxUploadBytes int64) *Controller {
	return &Controller{service: service, maxUploadBytes: maxUploadBytes}
}

func (ctrl *Controller) ListActivities(c *gin.Context) {
	ctrl.list(c, false)
}

func (ctrl *Controller) ListAllActivities(c *gin.Context) {
	ctrl.list(c, true)
}

func (ctrl *Controller) list(c *gin.Context, includeInactive bool) {
	var query ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid query parameters", err.Error())
		return
	}
	query.IncludeInactive = includeInactive

	result, err := ctrl.service.ListActivities(c.Request.Context(), query)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to list activities", err.Error())
		return
	}

	response.Success(c, http.StatusOK, "Activities retrieved successfully", result)
}

func (ctrl *Controller) GetActivity(c *gin.Context) {
	activity, err := ctrl.service.GetActivity(c.Request.Context(), c.Param("id"))
	if err != nil {
		ctrl.fail(c, err, "Failed to get activity")
		return
	}

	if !activity.IsActive && !isAdminRoute(c) {
		response.Error(c, http.StatusNotFound, ErrActivityNotFound.Error(), nil)
		return
	}

	response.Success(c, http.StatusOK, "Activity retrieved successfully", activity)
}

func (ctrl *Controller) CreateActivity(c *gin.Context) {
	var req CreateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	activity, err := ctrl.service.CreateActivity(c.Request.Context(), req)
	if err != nil {
		ctrl.fail(c, err, "Failed to create activity")
		return
	}

	response.Success(c, http.StatusCreated, "Activity created successfully", activity)
}

func (ctrl *Controller) UpdateActivity(c *gin.Context) {
	var req UpdateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	activity, err := ctrl.service.UpdateActivity(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		ctrl.fail(c, err, "Failed to update activity")
		return
	}

	response.Success(c, http.StatusOK, "Activity updated successfully", activity)
}

func (ctrl *Controller) DeleteActivity(c *gin.Context) {
	if err := ctrl.service.DeleteActivity(c.Request.Context(), c.Param("id")); err != nil {
		ctrl.fail(c, err, "Failed to delete activity")
		return
	}

	response.Success(c, http.StatusOK, "Activity deleted successfully", nil)
}

func (ctrl *Controller) UploadImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Image file is required", err.Error())
		return
	}
	if file.Size > ctrl.maxUploadBytes {
		response.Error(c, http.StatusRequestEntityTooLarge, "Image exceeds the upload size limit", nil)
		return
	}

	f, err := file.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Failed to read image", err.Error())
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, ctrl.maxUploadBytes+1))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Failed to read image", err.Error())
		return
	}
	if int64(len(data)) > ctrl.maxUploadBytes {
		response.Error(c, http.StatusRequestEntityTooLarge, "Image exceeds the upload size limit", nil)
		return
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		response.Error(c, http.StatusUnsupportedMediaType, "Only image uploads are accepted", contentType)
		return
	}

	image, err := ctrl.service.AddImage(c.Request.Context(), c.Param("id"), ImageUpload{
		Filename:    file.Filename,
		ContentType: contentType,
		Data:        data,
		AltText:     c.PostForm("alt_text"),
	})
	if err != nil {
		ctrl.fail(c, err, "Failed to upload image")
		return
	}

	response.Success(c, http.StatusCreated, "Image uploaded successfully", image)
}

func (ctrl *Controller) DeleteImage(c *gin.Context) {
	if err := ctrl.service.DeleteImage(c.Request.Context(), c.Param("id"), c.Param("imageId")); err != nil {
		ctrl.fail(c, err, "Failed to delete image")
		return
	}

	response.Success(c, http.StatusOK, "Image deleted successfully", nil)
}

func (ctrl *Controller) fail(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrActivityNotFound), errors.Is(err, ErrImageNotFound):
		response.Error(c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, ErrSlugTaken):
		response.Error(c, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, ErrImageStoreUnavailable):
		response.Error(c, http.StatusServiceUnavailable, err.Error(), nil)
	default:
		response.Error(c, http.StatusInternalServerError, fallback, err.Error())
	}
}

func isAdminRoute(c *gin.Context) bool {
	return strings.Contains(c.FullPath(), "/admin/")
}
