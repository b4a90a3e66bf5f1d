package utils

import (
	"errors"
	"net/http"

	"vastramitra/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse defines the structure of error responses
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// ErrorHandler is a middleware to catch panics and return structured errors
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				GetLogger().Error("Unhandled panic", zap.Any("error", err))

				c.JSON(http.StatusInternalServerError, ErrorResponse{
					Message: "Internal Server Error",
					Details: "An unexpected error occurred. Please try again later.",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// JSONError sends a standardized JSON error response
func JSONError(c *gin.Context, status int, message string, details string) {
	GetLogger().Warn(message, zap.String("details", details))
	c.JSON(status, ErrorResponse{Message: message, Details: details})
}

// StatusFor maps a lifecycle error onto an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvalidTransition), errors.Is(err, models.ErrStaleRead):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// CommandError answers a failed command. Lifecycle errors keep their code
// and message; anything else is reported as an internal error.
func CommandError(c *gin.Context, err error) {
	status := StatusFor(err)
	var le *models.LifecycleError
	if errors.As(err, &le) && status != http.StatusInternalServerError {
		GetLogger().Info("Command rejected", zap.String("code", le.Code), zap.String("path", c.FullPath()), zap.Error(err))
		c.AbortWithStatusJSON(status, ErrorResponse{Message: le.Message, Code: le.Code})
		return
	}
	GetLogger().Error("Command failed", zap.String("path", c.FullPath()), zap.Error(err))
	c.AbortWithStatusJSON(status, ErrorResponse{Message: "Internal Server Error", Details: err.Error()})
}
