package httpapi

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthMiddleware validates the bearer token on every request.
// If the token is missing or invalid the request dies with 401; the
// handler never runs.
func AuthMiddleware(validToken string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(errorResponse{Error: "missing authorization header"})
		}

		token := strings.TrimPrefix(header, "Bearer ")
		if token != validToken {
			return c.Status(fiber.StatusUnauthorized).JSON(errorResponse{Error: "invalid token"})
		}

		return c.Next()
	}
}

// RequestLogger logs one structured line per request with method, path,
// status and latency
func RequestLogger(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		logger.Info("request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
		)

		return err
	}
}

// userIDFromHeader reads the caller identity set upstream by the auth
// gateway. The API itself does not issue sessions.
func userIDFromHeader(c *fiber.Ctx) (uuid.UUID, error) {
	return uuid.Parse(c.Get("X-User-Id"))
}
