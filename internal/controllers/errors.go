package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/franciscosanchezn/foodgram-api/internal/admin"
	"github.com/franciscosanchezn/foodgram-api/internal/middleware"
	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/pagination"
	"github.com/franciscosanchezn/foodgram-api/internal/permissions"
	"github.com/franciscosanchezn/foodgram-api/internal/services"
	"github.com/franciscosanchezn/foodgram-api/internal/storage"
	"github.com/franciscosanchezn/foodgram-api/internal/validation"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
}

// SetLogLevel sets the log level for the controllers package
func SetLogLevel(level logrus.Level) {
	log.SetLevel(level)
}

// errorResponse maps a service error to its HTTP status and body.
func errorResponse(err error) (int, models.APIError) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, models.NewAPIError(models.ErrValidationFailed, "Validation failed", verr.Details())
	case errors.Is(err, permissions.ErrNotAuthenticated), errors.Is(err, permissions.ErrForbidden):
		return middleware.PermissionError(err)
	case errors.Is(err, pagination.ErrInvalidPage):
		return http.StatusNotFound, models.NewAPIError(models.ErrInvalidPage, "Invalid page.")
	case errors.Is(err, services.ErrNotFound), errors.Is(err, admin.ErrNotFound), errors.Is(err, admin.ErrUnknownModel):
		return http.StatusNotFound, models.NewAPIError(models.ErrNotFound, "Not found.")
	case errors.Is(err, services.ErrAlreadyExists):
		return http.StatusConflict, models.NewAPIError(models.ErrConflict, "Object already exists.")
	case errors.Is(err, services.ErrNoIngredients), errors.Is(err, admin.ErrTooFewInlines):
		return http.StatusBadRequest, models.NewAPIError(models.ErrRecipeNoIngredients, err.Error())
	case errors.Is(err, storage.ErrInvalidImage):
		return http.StatusBadRequest, models.NewAPIError(models.ErrInvalidImage, err.Error())
	case errors.Is(err, services.ErrDuplicateIngredient),
		errors.Is(err, services.ErrInvalidReference),
		errors.Is(err, admin.ErrInvalidReference),
		errors.Is(err, services.ErrInvalidPassword):
		return http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, err.Error())
	}
	return http.StatusInternalServerError, models.NewAPIError(models.ErrInternalServer, "Internal server error")
}

func respondError(c *gin.Context, err error) {
	status, body := errorResponse(err)
	if status >= http.StatusInternalServerError {
		log.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"error":  err.Error(),
		}).Error("Request failed")
		_ = c.Error(err)
	}
	c.JSON(status, body)
}

// respondBindError reports a request body that failed to bind.
func respondBindError(c *gin.Context, err error) {
	var verr *validation.Error
	if errors.As(validation.Translate(err), &verr) {
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrValidationFailed, "Validation failed", verr.Details()))
		return
	}
	c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, "Invalid request body"))
}

// parseID reads a numeric path parameter and answers 400 when it is malformed.
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, "Invalid "+name+" format"))
		return 0, false
	}
	return uint(id), true
}

func parsePage(c *gin.Context) (pagination.Params, bool) {
	p, err := pagination.ParseParams(c.Request.URL.Query())
	if err != nil {
		respondError(c, err)
		return p, false
	}
	return p, true
}
