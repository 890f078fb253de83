package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/mes-portal/internal/api/dto"
	"github.com/spec-kit/mes-portal/internal/domain"
	"github.com/spec-kit/mes-portal/internal/modal"
	"github.com/spec-kit/mes-portal/internal/service"
	apperrors "github.com/spec-kit/mes-portal/pkg/util"
)

// ModalHandler exposes the single active modal request.
type ModalHandler struct {
	host    *modal.Host
	tickets *service.TicketService
}

// NewModalHandler constructs handler.
func NewModalHandler(host *modal.Host, tickets *service.TicketService) *ModalHandler {
	return &ModalHandler{host: host, tickets: tickets}
}

// Active GET /modal. Data is null when nothing is open.
func (h *ModalHandler) Active(c *fiber.Ctx) error {
	req, ok := h.host.Active()
	if !ok {
		return c.JSON(fiber.Map{"data": nil})
	}
	return c.JSON(fiber.Map{"data": modalResponse(req)})
}

// Open POST /modal/open.
func (h *ModalHandler) Open(c *fiber.Ctx) error {
	var req dto.OpenModalRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Key == "" {
		return apperrors.NewValidationError("key required", nil)
	}
	var data any
	if len(req.Data) > 0 {
		if err := json.Unmarshal(req.Data, &data); err != nil {
			return apperrors.NewValidationError("invalid data", nil)
		}
	}
	return c.JSON(fiber.Map{"data": modalResponse(h.host.OpenByKey(req.Key, data))})
}

// Close DELETE /modal.
func (h *ModalHandler) Close(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": fiber.Map{"closed": h.host.Close()}})
}

// Advance POST /modal/advance runs the next stage on the ticket shown in the
// active modal and refreshes its data with the result.
func (h *ModalHandler) Advance(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	active, ok := h.host.Active()
	if !ok {
		return apperrors.NewNotFound("active modal", nil)
	}
	ticket, ok := active.Data.(*domain.Ticket)
	if !ok || ticket == nil {
		return apperrors.NewValidationError("active modal does not show a ticket", map[string]any{"key": active.Key})
	}
	var req dto.AdvanceTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	updated, err := h.tickets.Advance(c.UserContext(), actor, ticket.ID, advancePayload(req))
	if err != nil {
		return err
	}
	refreshed, ok := h.host.Update(active.ID, updated)
	if !ok {
		// Closed or replaced while the transition ran.
		return c.JSON(fiber.Map{"data": nil, "ticket": ticketResponse(updated)})
	}
	return c.JSON(fiber.Map{"data": modalResponse(refreshed)})
}

func modalResponse(req modal.OpenRequest) dto.ModalResponse {
	resp := dto.ModalResponse{
		ID:     req.ID,
		Key:    req.Key,
		Mode:   req.Mode,
		Unit:   req.Unit,
		TodoID: req.TodoID,
		Data:   modalData(req.Data),
	}
	if mounted, ok := modal.Mount(req, nil, nil); ok {
		resp.Mounted = true
		resp.Shell = mounted.Shell
	}
	return resp
}

func modalData(data any) any {
	switch v := data.(type) {
	case *domain.Ticket:
		return ticketResponse(v)
	case domain.TodoItem:
		return todoResponse(v)
	default:
		return v
	}
}
