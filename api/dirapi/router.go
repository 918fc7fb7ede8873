// Package dirapi exposes the user directory over HTTP. It is the host-facing
// surface of the service; everything it does maps 1:1 to a directory
// operation.
package dirapi

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/cosmocode/sheetauth/storage/model"
)

// Directory is the subset of directory operations the API serves.
type Directory interface {
	Lookup(ctx context.Context, login string) (*model.UserRecord, error)
	Create(ctx context.Context, login, password, name, mail string, groups []string) error
	Update(ctx context.Context, login string, changes model.FieldChanges) error
	Delete(ctx context.Context, logins []string) (int, error)
	Enumerate(ctx context.Context, start, limit int, filter model.FilterSpec) ([]*model.UserRecord, error)
	VerifyCredential(ctx context.Context, login, secret string) (bool, error)
	ValidateSchema(ctx context.Context) (bool, error)
	InvalidateCache()
}

// Options controls optional features of the API registration.
type Options struct {
	// BasicAuth requires HTTP Basic authentication against the directory
	// itself for every route.
	BasicAuth bool
}

// Register mounts all directory API routes under the provided group.
func Register(r fiber.Router, dir Directory, opts Options) {
	if opts.BasicAuth {
		r.Use(authMiddleware(dir))
	}
	registerUsers(r, dir)

	r.Get("/schema", func(c *fiber.Ctx) error {
		valid, err := dir.ValidateSchema(c.Context())
		if err != nil {
			return serverError(c, err)
		}
		return c.JSON(fiber.Map{"valid": valid})
	})

	r.Post("/cache/purge", func(c *fiber.Ctx) error {
		dir.InvalidateCache()
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func serverError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch err.(type) {
	case model.RemoteUnavailableError, model.RemoteWriteError:
		status = fiber.StatusBadGateway
	case model.AuthenticationError, model.ConfigurationError:
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(fiber.Map{"error": "server_error", "error_description": err.Error()})
}
