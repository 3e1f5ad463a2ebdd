package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/metricadb/metrica/internal/logging"
	"github.com/metricadb/metrica/internal/models"
)

// MinAPIKeyLength rejects trivially short keys at configuration time.
// Requests carrying shorter keys can never authenticate.
const MinAPIKeyLength = 32

// ValidateAPIKey reports whether a configured key is acceptable:
// long enough and not blank.
func ValidateAPIKey(key string) bool {
	return len(key) >= MinAPIKeyLength && strings.TrimSpace(key) != ""
}

// apiKeySet is the accepted-key lookup used by the auth middleware.
type apiKeySet map[string]struct{}

// newAPIKeySet filters the configured keys through ValidateAPIKey.
// Rejected keys are logged individually. A configuration where every
// key fails validation locks all callers out, so that logs an error.
func newAPIKeySet(logger *logging.Logger, apiKeys []string) apiKeySet {
	set := make(apiKeySet, len(apiKeys))
	for _, key := range apiKeys {
		if key == "" {
			continue
		}
		if !ValidateAPIKey(key) {
			logger.Warn("Rejecting configured API key",
				"key", maskAPIKey(key),
				"min_length", MinAPIKeyLength)
			continue
		}
		set[key] = struct{}{}
	}
	if len(set) == 0 && len(apiKeys) > 0 {
		logger.Error("Auth enabled but no configured API key passed validation",
			"configured", len(apiKeys))
	}
	return set
}

// extractAPIKey pulls the caller's key from the request. X-API-Key
// wins; otherwise the Authorization header is used, with or without a
// Bearer prefix.
func extractAPIKey(c *fiber.Ctx) string {
	if key := c.Get("X-API-Key"); key != "" {
		return key
	}
	auth := c.Get("Authorization")
	if after, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return after
	}
	return auth
}

// APIKeyAuth returns the API key authentication middleware. With
// enabled false every request passes through untouched.
func APIKeyAuth(logger *logging.Logger, apiKeys []string, enabled bool) fiber.Handler {
	if !enabled {
		return func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	keys := newAPIKeySet(logger, apiKeys)

	return func(c *fiber.Ctx) error {
		key := extractAPIKey(c)
		if key == "" {
			logger.Warn("Request without API key",
				"path", c.Path(),
				"method", c.Method(),
				"ip", c.IP())
			return unauthorized(c, "API key required via X-API-Key or Authorization header")
		}
		if _, ok := keys[key]; !ok {
			logger.Warn("Request with unknown API key",
				"path", c.Path(),
				"method", c.Method(),
				"ip", c.IP(),
				"key", maskAPIKey(key))
			return unauthorized(c, "Unknown API key")
		}
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    "UNAUTHORIZED",
			Message: message,
		},
	})
}

// maskAPIKey keeps a short identifying prefix for logs and hides the
// rest.
func maskAPIKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return fmt.Sprintf("%s**** (%d chars)", key[:4], len(key))
}
