package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/mes-portal/internal/domain"
	"github.com/spec-kit/mes-portal/internal/service"
)

// DashboardHandler serves the role-specific workbench configuration.
type DashboardHandler struct {
	dashboards *service.DashboardService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(dashboards *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboards: dashboards}
}

// Get GET /dashboard. ADM may preview another role with ?role=.
func (h *DashboardHandler) Get(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	role := principal.Role
	if preview := c.Query("role"); preview != "" && role == domain.RoleAdmin {
		role = domain.Role(preview)
	}
	cfg, err := h.dashboards.Resolve(c.UserContext(), role)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": cfg})
}
