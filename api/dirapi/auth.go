package dirapi

import (
	"encoding/base64"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// authMiddleware enforces HTTP Basic authentication for API routes,
// validating credentials against the directory itself.
func authMiddleware(dir Directory) fiber.Handler {
	return func(c *fiber.Ctx) error {
		username, password, ok := parseBasicAuth(c)
		if !ok {
			c.Set("WWW-Authenticate", "Basic realm=directory")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid_client", "error_description": "missing credentials"})
		}
		verified, err := dir.VerifyCredential(c.Context(), username, password)
		if err != nil {
			return serverError(c, err)
		}
		if !verified {
			c.Set("WWW-Authenticate", "Basic realm=directory")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid_client", "error_description": "invalid credentials"})
		}
		return c.Next()
	}
}

// parseBasicAuth extracts Basic auth credentials from request headers
func parseBasicAuth(c *fiber.Ctx) (username, password string, ok bool) {
	auth := string(c.Request().Header.Peek("Authorization"))
	if auth == "" {
		return "", "", false
	}
	const prefix = "Basic "
	if !strings.HasPrefix(auth, prefix) {
		return "", "", false
	}
	b, err := base64.StdEncoding.DecodeString(auth[len(prefix):])
	if err != nil {
		return "", "", false
	}
	creds := string(b)
	i := strings.IndexByte(creds, ':')
	if i < 0 {
		return "", "", false
	}
	return creds[:i], creds[i+1:], true
}
