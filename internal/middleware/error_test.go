package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/soltixdb/correlator/internal/logging"
	"github.com/soltixdb/correlator/internal/models"
)

func errorResponse(t *testing.T, app *fiber.App, method, path string) (int, models.ErrorResponse) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(method, path, nil))
	if err != nil {
		t.Fatalf("Failed to test request: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected Content-Type 'application/json', got %q", ct)
	}

	body, _ := io.ReadAll(resp.Body)
	var errResp models.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	return resp.StatusCode, errResp
}

func TestErrorHandler_FiberError(t *testing.T) {
	tests := []struct {
		name           string
		fiberError     *fiber.Error
		expectedStatus int
		expectedCode   string
		expectedMsg    string
	}{
		{"BadRequest", fiber.ErrBadRequest, fiber.StatusBadRequest, "BAD_REQUEST", "Bad Request"},
		{"Unauthorized", fiber.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized"},
		{"NotFound", fiber.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", "Not Found"},
		{"ServiceUnavailable", fiber.ErrServiceUnavailable, fiber.StatusServiceUnavailable, "UNAVAILABLE", "Service Unavailable"},
		{"Custom", fiber.NewError(fiber.StatusTeapot, "I'm a teapot"), fiber.StatusTeapot, "ERROR", "I'm a teapot"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logging.NewNop())})
			app.Get("/v1/days/:day", func(c *fiber.Ctx) error {
				return tt.fiberError
			})

			status, errResp := errorResponse(t, app, "GET", "/v1/days/3")
			if status != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, status)
			}
			if errResp.Error.Code != tt.expectedCode {
				t.Errorf("Expected code %q, got %q", tt.expectedCode, errResp.Error.Code)
			}
			if errResp.Error.Message != tt.expectedMsg {
				t.Errorf("Expected message %q, got %q", tt.expectedMsg, errResp.Error.Message)
			}
			if errResp.Error.Path != "/v1/days/3" {
				t.Errorf("Expected path /v1/days/3, got %q", errResp.Error.Path)
			}
		})
	}
}

func TestErrorHandler_GenericError(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logging.NewNop())})
	app.Get("/v1/days", func(c *fiber.Ctx) error {
		return errors.New("catalog: connection refused")
	})

	status, errResp := errorResponse(t, app, "GET", "/v1/days")
	if status != fiber.StatusInternalServerError {
		t.Errorf("Expected status %d, got %d", fiber.StatusInternalServerError, status)
	}
	if errResp.Error.Message != "Internal Server Error" {
		t.Errorf("Expected message 'Internal Server Error', got %q", errResp.Error.Message)
	}
	if errResp.Error.Code != "INTERNAL_ERROR" {
		t.Errorf("Expected code 'INTERNAL_ERROR', got %q", errResp.Error.Code)
	}
}

func TestErrorHandler_MethodNotAllowed(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logging.NewNop())})
	app.Get("/v1/days", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	status, errResp := errorResponse(t, app, "POST", "/v1/days")
	if status != fiber.StatusMethodNotAllowed {
		t.Errorf("Expected status %d, got %d", fiber.StatusMethodNotAllowed, status)
	}
	if errResp.Error.Code != "METHOD_NOT_ALLOWED" {
		t.Errorf("Expected code 'METHOD_NOT_ALLOWED', got %q", errResp.Error.Code)
	}
}
