package middleware

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRateLimiter_NotNil(t *testing.T) {
	limiter := NewRateLimiter(RateLimiterConfig{
		Max:        10,
		Expiration: time.Minute,
	})

	assert.NotNil(t, limiter)
}

func TestNewRateLimiter_DefaultKeyFunc(t *testing.T) {
	// Config without KeyFunc should use IP-based default
	limiter := NewRateLimiter(RateLimiterConfig{
		Max:        10,
		Expiration: time.Minute,
	})

	app := fiber.New()
	app.Use(limiter)
	app.Get("/test", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	req := httptest.NewRequest("GET", "/test", nil)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestNewRateLimiter_CustomMessage(t *testing.T) {
	customMessage := "Custom rate limit error message"

	limiter := NewRateLimiter(RateLimiterConfig{
		Max:        1, // Very low to trigger quickly
		Expiration: time.Hour,
		Message:    customMessage,
	})

	app := fiber.New()
	app.Use(limiter)
	app.Get("/test", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	// First request should succeed
	req1 := httptest.NewRequest("GET", "/test", nil)
	resp1, err := app.Test(req1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp1.StatusCode)

	// Second request should be rate limited
	req2 := httptest.NewRequest("GET", "/test", nil)
	resp2, err := app.Test(req2)
	require.NoError(t, err)
	assert.Equal(t, 429, resp2.StatusCode)

	// Check response body contains custom message
	body, _ := io.ReadAll(resp2.Body)
	assert.Contains(t, string(body), customMessage)
}

func TestRateLimitResponse_Format(t *testing.T) {
	limiter := NewRateLimiter(RateLimiterConfig{
		Max:        1,
		Expiration: time.Minute,
		Message:    "Rate limit exceeded",
	})

	app := fiber.New()
	app.Use(limiter)
	app.Get("/test", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	// Trigger rate limit
	req1 := httptest.NewRequest("GET", "/test", nil)
	_, _ = app.Test(req1)

	req2 := httptest.NewRequest("GET", "/test", nil)
	resp, err := app.Test(req2)
	require.NoError(t, err)

	body, _ := io.ReadAll(resp.Body)
	bodyStr := string(body)

	// Check JSON response structure
	assert.Contains(t, bodyStr, "error")
	assert.Contains(t, bodyStr, "message")
	assert.Contains(t, bodyStr, "retry_after")
}

func TestKeyFunc_IPBased(t *testing.T) {
	app := fiber.New()

	var capturedKey string
	limiter := NewRateLimiter(RateLimiterConfig{
		Max:        100,
		Expiration: time.Minute,
		KeyFunc: func(c *fiber.Ctx) string {
			capturedKey = "custom:" + c.IP()
			return capturedKey
		},
	})

	app.Use(limiter)
	app.Get("/test", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	req := httptest.NewRequest("GET", "/test", nil)
	_, err := app.Test(req)

	require.NoError(t, err)
	assert.Contains(t, capturedKey, "custom:")
}

func TestMCPLimiter(t *testing.T) {
	app := fiber.New()
	app.Use(MCPLimiter(2))
	app.Post("/mcp", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("POST", "/mcp", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	}

	// Third request within the window is rejected
	req := httptest.NewRequest("POST", "/mcp", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 429, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "MCP rate limit exceeded")
}

func TestMCPLimiter_Disabled(t *testing.T) {
	app := fiber.New()
	app.Use(MCPLimiter(0))
	app.Post("/mcp", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	// Zero budget means no limiting at all
	for i := 0; i < 10; i++ {
		req := httptest.NewRequest("POST", "/mcp", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	}
}

func TestGlobalAPILimiter_Integration(t *testing.T) {
	app := fiber.New()
	app.Use(GlobalAPILimiter())
	app.Get("/api/data", func(c *fiber.Ctx) error {
		return c.SendString("Data")
	})

	// First request should succeed
	req := httptest.NewRequest("GET", "/api/data", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestRateLimiter_ConcurrentRequests(t *testing.T) {
	app := fiber.New()
	app.Use(NewRateLimiter(RateLimiterConfig{
		Max:        1000,
		Expiration: time.Minute,
	}))
	app.Get("/test", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	done := make(chan bool, 10)

	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 10; j++ {
				req := httptest.NewRequest("GET", "/test", nil)
				resp, err := app.Test(req)
				if err == nil {
					resp.Body.Close()
				}
			}
			done <- true
		}()
	}

	// Wait for all goroutines
	for i := 0; i < 10; i++ {
		<-done
	}

	// No panics means success
}
