package handlers

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/mes-portal/internal/auth"
	"github.com/spec-kit/mes-portal/internal/service"
	apperrors "github.com/spec-kit/mes-portal/pkg/util"
)

func currentPrincipal(c *fiber.Ctx) (*auth.Principal, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return principal, nil
}

func currentActor(c *fiber.Ctx) (service.Actor, error) {
	principal, err := currentPrincipal(c)
	if err != nil {
		return service.Actor{}, err
	}
	return service.Actor{UserID: principal.UserID, Role: principal.Role}, nil
}

// pathID decodes an id route parameter. Ticket ids contain "/" and arrive
// percent-encoded.
func pathID(c *fiber.Ctx) (string, error) {
	id, err := url.PathUnescape(c.Params("id"))
	if err != nil || id == "" {
		return "", apperrors.NewValidationError("invalid id", map[string]any{"id": c.Params("id")})
	}
	return id, nil
}
