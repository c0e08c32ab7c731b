package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/storage/memory/v2"
)

// RateLimiterConfig holds configuration for rate limiting
type RateLimiterConfig struct {
	Max        int                     // Maximum number of requests
	Expiration time.Duration           // Time window for the rate limit
	KeyFunc    func(*fiber.Ctx) string // Function to generate the key for rate limiting
	Message    string                  // Custom error message
}

// NewRateLimiter creates a new rate limiter middleware with custom configuration
func NewRateLimiter(config RateLimiterConfig) fiber.Handler {
	// Use in-memory storage (can be replaced with Redis for distributed systems)
	storage := memory.New(memory.Config{
		GCInterval: 10 * time.Minute,
	})

	// Default key function uses IP address
	if config.KeyFunc == nil {
		config.KeyFunc = func(c *fiber.Ctx) string {
			return c.IP()
		}
	}

	// Default error message
	if config.Message == "" {
		config.Message = fmt.Sprintf("Rate limit exceeded. Maximum %d requests per %s allowed.",
			config.Max, config.Expiration.String())
	}

	return limiter.New(limiter.Config{
		Max:          config.Max,
		Expiration:   config.Expiration,
		KeyGenerator: config.KeyFunc,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       "Rate limit exceeded",
				"message":     config.Message,
				"retry_after": int(config.Expiration.Seconds()),
			})
		},
		Storage: storage,
	})
}

// MCPLimiter limits MCP protocol requests per client IP. The per-minute
// budget comes from configuration; zero or negative disables limiting.
func MCPLimiter(maxPerMin int) fiber.Handler {
	if maxPerMin <= 0 {
		return func(c *fiber.Ctx) error {
			return c.Next()
		}
	}
	return NewRateLimiter(RateLimiterConfig{
		Max:        maxPerMin,
		Expiration: 1 * time.Minute,
		KeyFunc: func(c *fiber.Ctx) string {
			return "mcp:" + c.IP()
		},
		Message: fmt.Sprintf("MCP rate limit exceeded. Maximum %d requests per minute allowed.", maxPerMin),
	})
}

// GlobalAPILimiter is a general rate limiter for all API endpoints
func GlobalAPILimiter() fiber.Handler {
	return NewRateLimiter(RateLimiterConfig{
		Max:        100,
		Expiration: 1 * time.Minute,
		KeyFunc: func(c *fiber.Ctx) string {
			return "global:" + c.IP()
		},
		Message: "API rate limit exceeded. Maximum 100 requests per minute allowed.",
	})
}
