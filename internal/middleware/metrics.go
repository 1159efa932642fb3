package middleware

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/soltixdb/correlator/internal/metrics"
)

// RequestMetrics counts requests per matched route and status code
func RequestMetrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		status := c.Response().StatusCode()
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		} else if err != nil {
			status = fiber.StatusInternalServerError
		}

		metrics.APIRequests.WithLabelValues(c.Route().Path, strconv.Itoa(status)).Inc()
		return err
	}
}
