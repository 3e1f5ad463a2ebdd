package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/metricadb/metrica/internal/logging"
	"github.com/metricadb/metrica/internal/models"
	"github.com/metricadb/metrica/internal/services"
)

// ErrorHandler returns the app-level error handler. Handlers return
// *services.ServiceError or fiber errors; anything else is a 500.
func ErrorHandler(logger *logging.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		detail := models.ErrorDetail{
			Code:    "ERROR",
			Message: "Internal Server Error",
		}

		var svcErr *services.ServiceError
		var fiberErr *fiber.Error
		switch {
		case errors.As(err, &svcErr):
			status = statusForServiceError(svcErr.Code)
			detail.Code = svcErr.Code
			detail.Message = svcErr.Message
		case errors.As(err, &fiberErr):
			status = fiberErr.Code
			detail.Message = fiberErr.Message
		}

		logger.Error("Request error",
			"path", c.Path(),
			"method", c.Method(),
			"status", status,
			"error", err,
		)

		return c.Status(status).JSON(models.ErrorResponse{Error: detail})
	}
}

// statusForServiceError maps service error codes onto HTTP statuses.
// Unknown codes are treated as server faults.
func statusForServiceError(code string) int {
	switch code {
	case services.CodeInvalidSample, services.CodeMissingType, services.CodeInvalidRequest:
		return fiber.StatusBadRequest
	case services.CodeInsufficientData:
		return fiber.StatusUnprocessableEntity
	case services.CodeAnalysisCanceled:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}
