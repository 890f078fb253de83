package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/mes-portal/internal/api/dto"
	"github.com/spec-kit/mes-portal/internal/navigation"
	apperrors "github.com/spec-kit/mes-portal/pkg/util"
)

// NavigationHandler exposes the navigation coordinator.
type NavigationHandler struct {
	nav *navigation.Coordinator
}

// NewNavigationHandler constructs handler.
func NewNavigationHandler(nav *navigation.Coordinator) *NavigationHandler {
	return &NavigationHandler{nav: nav}
}

// State GET /navigation.
func (h *NavigationHandler) State(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.nav.State()})
}

// Menu GET /navigation/menu.
func (h *NavigationHandler) Menu(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.nav.Menu()})
}

// Navigate POST /navigation.
func (h *NavigationHandler) Navigate(c *fiber.Ctx) error {
	var req dto.NavigateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	state := h.nav.Navigate(
		navigation.Target{Path: req.Path, ID: req.ID},
		navigation.Options{Referrer: req.Referrer, KeepStack: req.KeepStack},
	)
	return c.JSON(fiber.Map{"data": state})
}

// SyncHash POST /navigation/hash.
func (h *NavigationHandler) SyncHash(c *fiber.Ctx) error {
	var req dto.HashChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return c.JSON(fiber.Map{"data": h.nav.SyncFromHash(req.Fragment)})
}

// Back POST /navigation/back.
func (h *NavigationHandler) Back(c *fiber.Ctx) error {
	state, moved := h.nav.Back()
	return c.JSON(fiber.Map{"data": state, "moved": moved})
}
