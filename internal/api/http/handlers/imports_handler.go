package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/mes-portal/internal/api/dto"
	"github.com/spec-kit/mes-portal/internal/service"
	apperrors "github.com/spec-kit/mes-portal/pkg/util"
)

// ImportsHandler starts and completes standards-import tasks.
type ImportsHandler struct {
	imports *service.ImportService
}

// NewImportsHandler constructs handler.
func NewImportsHandler(imports *service.ImportService) *ImportsHandler {
	return &ImportsHandler{imports: imports}
}

// Start POST /imports.
func (h *ImportsHandler) Start(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.StartImportRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	item, err := h.imports.Start(c.UserContext(), actor, req.FileName)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": todoResponse(*item)})
}

// Complete POST /imports/:id/complete.
func (h *ImportsHandler) Complete(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.imports.Complete(c.UserContext(), actor, id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
