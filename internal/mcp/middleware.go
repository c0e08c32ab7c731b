package mcp

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"github.com/sentinelmcp/sentinelmcp/internal/config"
)

// TokenClaims are the JWT claims the auth middleware understands. Scopes
// ride in a custom claim; everything else is standard.
type TokenClaims struct {
	Scopes  []string `json:"scopes,omitempty"`
	Service bool     `json:"service,omitempty"`
	jwt.RegisteredClaims
}

// AuthMiddleware returns a fiber handler that verifies the Authorization
// bearer token per cfg and populates the locals ExtractAuthContext reads.
// In "none" mode every request passes with the configured default scopes.
func AuthMiddleware(cfg config.AuthConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cfg.Mode == "none" {
			c.Locals("auth_type", "none")
			c.Locals("auth_scopes", cfg.DefaultScopes)
			c.Locals("auth_service", true)
			return c.Next()
		}

		token, ok := bearerToken(c.Get("Authorization"))
		if !ok {
			return unauthorized(c, "missing bearer token")
		}

		switch cfg.Mode {
		case "static":
			if subtleEquals(token, cfg.StaticToken) {
				c.Locals("auth_type", "static")
				c.Locals("auth_subject", "static")
				c.Locals("auth_scopes", cfg.DefaultScopes)
				return c.Next()
			}
			return unauthorized(c, "invalid token")

		case "jwt":
			claims, err := validateJWT(token, cfg.JWTSecret)
			if err != nil {
				log.Debug().Err(err).Msg("MCP: JWT validation failed")
				return unauthorized(c, err.Error())
			}
			scopes := claims.Scopes
			if len(scopes) == 0 {
				scopes = cfg.DefaultScopes
			}
			c.Locals("auth_type", "jwt")
			c.Locals("auth_subject", claims.Subject)
			c.Locals("auth_scopes", scopes)
			c.Locals("auth_service", claims.Service)
			return c.Next()
		}

		return unauthorized(c, "unsupported auth mode")
	}
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

// subtleEquals compares tokens in constant time. Length leaks are
// acceptable for a shared static token.
func subtleEquals(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func validateJWT(tokenString, secret string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("token expired")
		}
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "Unauthorized: " + message,
	})
}
