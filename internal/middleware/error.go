package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/soltixdb/correlator/internal/logging"
	"github.com/soltixdb/correlator/internal/models"
)

// errorCodes names the statuses handlers and fiber itself produce
var errorCodes = map[int]string{
	fiber.StatusBadRequest:          "BAD_REQUEST",
	fiber.StatusUnauthorized:        "UNAUTHORIZED",
	fiber.StatusNotFound:            "NOT_FOUND",
	fiber.StatusMethodNotAllowed:    "METHOD_NOT_ALLOWED",
	fiber.StatusRequestTimeout:      "TIMEOUT",
	fiber.StatusServiceUnavailable:  "UNAVAILABLE",
	fiber.StatusInternalServerError: "INTERNAL_ERROR",
}

// ErrorHandler renders errors returned by handlers as ErrorResponse.
// Messages of non-fiber errors are not exposed.
func ErrorHandler(logger *logging.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		message := "Internal Server Error"

		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
			message = e.Message
		}

		if status >= fiber.StatusInternalServerError {
			logger.Error("Request error", "path", c.Path(), "method", c.Method(), "status", status, "error", err)
		} else {
			logger.Debug("Request rejected", "path", c.Path(), "method", c.Method(), "status", status, "error", err)
		}

		code, ok := errorCodes[status]
		if !ok {
			code = "ERROR"
		}

		return c.Status(status).JSON(models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    code,
				Message: message,
				Path:    c.Path(),
			},
		})
	}
}
