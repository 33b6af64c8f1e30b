package handler

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/covidtimeseries/metadata/internal/middleware"
	apperrors "github.com/covidtimeseries/metadata/internal/pkg/errors"
	"github.com/covidtimeseries/metadata/internal/validator"
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error   string                     `json:"error"`
	Message string                     `json:"message"`
	Details validator.ValidationErrors `json:"details,omitempty"`
}

// DataResponse wraps derived collections.
type DataResponse struct {
	Data interface{} `json:"data"`
}

// errorResponse creates a standardized JSON error response.
func errorResponse(c *fiber.Ctx, statusCode int, message string) error {
	errorName := http.StatusText(statusCode)
	if errorName == "" {
		errorName = "Error"
	}
	return c.Status(statusCode).JSON(ErrorResponse{
		Error:   errorName,
		Message: message,
	})
}

// validationResponse renders request validation failures as 400.
func validationResponse(c *fiber.Ctx, err error) error {
	resp := ErrorResponse{
		Error:   http.StatusText(fiber.StatusBadRequest),
		Message: err.Error(),
	}
	if verrs, ok := err.(validator.ValidationErrors); ok {
		resp.Details = verrs
	}
	return c.Status(fiber.StatusBadRequest).JSON(resp)
}

// serviceError maps a service error to its HTTP status. Errors that are
// not application errors become 500s. Server-side failures are logged,
// rejections by the open registry circuit at warn level.
func serviceError(c *fiber.Ctx, logger *zap.Logger, err error) error {
	appErr := apperrors.GetAppError(err)
	if appErr == nil {
		appErr = apperrors.Internal("An unexpected error occurred").WithError(err)
	}

	if appErr.StatusCode >= fiber.StatusInternalServerError {
		fields := []zap.Field{
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("path", c.Path()),
			zap.Int("status", appErr.StatusCode),
			zap.Error(err),
		}
		if apperrors.IsServiceUnavailable(appErr) {
			logger.Warn("metadata request rejected", fields...)
		} else {
			logger.Error("metadata request failed", fields...)
		}
	}

	return errorResponse(c, appErr.StatusCode, appErr.Message)
}
