package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/food-listing-dashboard/apperror"
)

type JSONResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type FailureData struct {
	Kind  string `json:"kind"`
	Field string `json:"field,omitempty"`
	Query string `json:"query,omitempty"`
}

func RespondJSON(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, JSONResponse{
		Status:  code >= 200 && code < 300,
		Message: message,
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, err error) {
	c.JSON(code, JSONResponse{
		Status:  false,
		Message: err.Error(),
		Data:    nil,
	})
}

// RespondFailure maps a domain error onto an HTTP status. Errors outside the
// taxonomy are logged and reported as a generic 500.
func RespondFailure(c *gin.Context, err error) {
	appErr, ok := apperror.As(err)
	if !ok {
		ErrorLogger.WithError(err).WithField("path", c.Request.URL.Path).Error("unhandled error")
		RespondJSON(c, http.StatusInternalServerError, "an internal error occurred", nil)
		return
	}

	status := StatusFor(appErr)
	if status >= http.StatusInternalServerError {
		ErrorLogger.WithFields(map[string]interface{}{
			"kind":  appErr.KindName(),
			"path":  c.Request.URL.Path,
			"query": appErr.Query,
		}).Error(appErr.Error())
	}

	RespondJSON(c, status, appErr.Message, FailureData{
		Kind:  appErr.KindName(),
		Field: appErr.Field,
		Query: appErr.Query,
	})
}

func StatusFor(appErr *apperror.AppError) int {
	switch appErr.Kind {
	case apperror.ErrValidation:
		return http.StatusBadRequest
	case apperror.ErrNotFound:
		return http.StatusNotFound
	case apperror.ErrConnection:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
