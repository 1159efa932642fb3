package middleware

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/soltixdb/correlator/internal/config"
	"github.com/soltixdb/correlator/internal/logging"
	"github.com/soltixdb/correlator/internal/models"
)

// generateAPIKey generates a valid API key of specified length
func generateAPIKey(length int) string {
	key := make([]byte, length)
	for i := range key {
		key[i] = 'a' + byte(i%26)
	}
	return string(key)
}

func newAuthApp(keys []string, enabled bool) *fiber.App {
	app := fiber.New()
	app.Use(APIKeyAuth(logging.NewNop(), config.AuthConfig{Enabled: enabled, APIKeys: keys}))
	app.Get("/v1/days", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})
	return app
}

func TestValidateAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		expected bool
	}{
		{"exactly 32 chars", generateAPIKey(32), true},
		{"longer than 32 chars", generateAPIKey(64), true},
		{"31 chars", generateAPIKey(31), false},
		{"empty", "", false},
		{"32 spaces", "                                ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateAPIKey(tt.key); got != tt.expected {
				t.Errorf("ValidateAPIKey(%q) = %v, want %v", tt.key, got, tt.expected)
			}
		})
	}
}

func TestMaskAPIKey(t *testing.T) {
	tests := map[string]string{
		"abcdefghijklmnop": "abcd****",
		"abcde":            "abcd****",
		"abcd":             "****",
		"":                 "****",
	}
	for key, want := range tests {
		if got := maskAPIKey(key); got != want {
			t.Errorf("maskAPIKey(%q) = %q, want %q", key, got, want)
		}
	}
}

func TestKeySet(t *testing.T) {
	first, second := generateAPIKey(32), generateAPIKey(40)
	set := newKeySet(logging.NewNop(), []string{first, "", "short", second})

	if len(set) != 2 {
		t.Fatalf("Expected 2 accepted keys, got %d", len(set))
	}
	if !set.contains(first) || !set.contains(second) {
		t.Error("Expected configured keys to be accepted")
	}
	if set.contains("short") || set.contains(first+"x") {
		t.Error("Expected unknown keys to be rejected")
	}
}

func TestAPIKeyAuth_Disabled(t *testing.T) {
	app := newAuthApp(nil, false)

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/days", nil))
	if err != nil {
		t.Fatalf("Failed to test request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
}

func TestAPIKeyAuth_Headers(t *testing.T) {
	validKey := generateAPIKey(32)
	app := newAuthApp([]string{validKey}, true)

	tests := []struct {
		name       string
		headerName string
		headerVal  string
		wantStatus int
	}{
		{"X-API-Key header", "X-API-Key", validKey, fiber.StatusOK},
		{"Authorization Bearer header", "Authorization", "Bearer " + validKey, fiber.StatusOK},
		{"Authorization plain header", "Authorization", validKey, fiber.StatusOK},
		{"missing API key", "", "", fiber.StatusUnauthorized},
		{"wrong API key", "X-API-Key", generateAPIKey(33), fiber.StatusUnauthorized},
		{"wrong bearer key", "Authorization", "Bearer " + generateAPIKey(33), fiber.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/v1/days", nil)
			if tt.headerName != "" {
				req.Header.Set(tt.headerName, tt.headerVal)
			}

			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("Failed to test request: %v", err)
			}
			if resp.StatusCode != tt.wantStatus {
				body, _ := io.ReadAll(resp.Body)
				t.Errorf("Expected status %d, got %d, body: %s", tt.wantStatus, resp.StatusCode, string(body))
			}
		})
	}
}

func TestAPIKeyAuth_UnauthorizedBody(t *testing.T) {
	app := newAuthApp([]string{generateAPIKey(32)}, true)

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/days", nil))
	if err != nil {
		t.Fatalf("Failed to test request: %v", err)
	}

	body, _ := io.ReadAll(resp.Body)
	var errResp models.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if errResp.Error.Code != "UNAUTHORIZED" {
		t.Errorf("Expected code UNAUTHORIZED, got %q", errResp.Error.Code)
	}
	if errResp.Error.Path != "/v1/days" {
		t.Errorf("Expected path /v1/days, got %q", errResp.Error.Path)
	}
}

func TestAPIKeyAuth_WeakKeysRejected(t *testing.T) {
	weakKeys := []string{"a", "short", generateAPIKey(31)}
	app := newAuthApp(weakKeys, true)

	// weak keys never make it into the key set
	for _, weakKey := range weakKeys {
		req := httptest.NewRequest("GET", "/v1/days", nil)
		req.Header.Set("X-API-Key", weakKey)

		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("Failed to test request: %v", err)
		}
		if resp.StatusCode != fiber.StatusUnauthorized {
			t.Errorf("Weak key %q (len=%d) should be rejected, got status %d",
				maskAPIKey(weakKey), len(weakKey), resp.StatusCode)
		}
	}
}
