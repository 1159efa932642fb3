package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/soltixdb/correlator/internal/logging"
	"github.com/soltixdb/correlator/internal/models"
	"github.com/soltixdb/correlator/internal/services"
)

// ListDays handles GET /v1/days
func (h *Handler) ListDays(c *fiber.Ctx) error {
	resp, err := h.dayService.ListDays(c.UserContext())
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.JSON(resp)
}

// GetDay handles GET /v1/days/:day
func (h *Handler) GetDay(c *fiber.Ctx) error {
	day, err := intParam(c, "day")
	if err != nil {
		return badRequest(c, "INVALID_DAY", err.Error())
	}

	resp, err := h.dayService.GetDay(c.UserContext(), day)
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.JSON(resp)
}

// GetCell handles GET /v1/days/:day/cells/:row/:col
func (h *Handler) GetCell(c *fiber.Ctx) error {
	day, err := intParam(c, "day")
	if err != nil {
		return badRequest(c, "INVALID_DAY", err.Error())
	}
	row, err := intParam(c, "row")
	if err != nil {
		return badRequest(c, services.CodeInvalidCell, err.Error())
	}
	col, err := intParam(c, "col")
	if err != nil {
		return badRequest(c, services.CodeInvalidCell, err.Error())
	}

	resp, err := h.dayService.GetCell(c.UserContext(), day, row, col)
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.JSON(resp)
}

// Significant handles GET /v1/days/:day/significant?window=long&limit=N
func (h *Handler) Significant(c *fiber.Ctx) error {
	day, err := intParam(c, "day")
	if err != nil {
		return badRequest(c, "INVALID_DAY", err.Error())
	}
	limit := c.QueryInt("limit", 100)
	if limit < 0 {
		return badRequest(c, "INVALID_LIMIT", "limit cannot be negative")
	}

	resp, err := h.dayService.Significant(c.UserContext(), day, c.Query("window", services.WindowLong), limit)
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.JSON(resp)
}

// Transitive handles GET /v1/days/:day/transitive/:a/:b/:c
func (h *Handler) Transitive(c *fiber.Ctx) error {
	day, err := intParam(c, "day")
	if err != nil {
		return badRequest(c, "INVALID_DAY", err.Error())
	}

	var series [3]int
	for i, name := range []string{"a", "b", "c"} {
		if series[i], err = intParam(c, name); err != nil {
			return badRequest(c, services.CodeInvalidCell, err.Error())
		}
	}

	resp, err := h.dayService.Transitive(c.UserContext(), day, series[0], series[1], series[2])
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.JSON(resp)
}

func intParam(c *fiber.Ctx, name string) (int, error) {
	v, err := strconv.Atoi(c.Params(name))
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid "+name+": "+c.Params(name))
	}
	return v, nil
}

func badRequest(c *fiber.Ctx, code, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: message,
			Path:    c.Path(),
		},
	})
}

// serviceError maps service errors to HTTP responses
func (h *Handler) serviceError(c *fiber.Ctx, err error) error {
	svcErr, ok := services.AsServiceError(err)
	if !ok {
		logging.ErrorCtx(c.UserContext(), "Request failed", "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INTERNAL_ERROR",
				Message: err.Error(),
			},
		})
	}

	status := fiber.StatusInternalServerError
	switch svcErr.Code {
	case services.CodeDayNotFound:
		status = fiber.StatusNotFound
	case services.CodeInvalidCell, services.CodeInvalidWindow:
		status = fiber.StatusBadRequest
	default:
		logging.ErrorCtx(c.UserContext(), "Request failed", "path", c.Path(), "code", svcErr.Code, "error", svcErr.Message)
	}

	return c.Status(status).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    svcErr.Code,
			Message: svcErr.Message,
			Path:    c.Path(),
			Details: svcErr.Details,
		},
	})
}
