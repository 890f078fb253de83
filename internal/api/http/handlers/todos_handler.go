package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/mes-portal/internal/api/dto"
	"github.com/spec-kit/mes-portal/internal/domain"
	"github.com/spec-kit/mes-portal/internal/modal"
	"github.com/spec-kit/mes-portal/internal/service"
	apperrors "github.com/spec-kit/mes-portal/pkg/util"
)

// TodosHandler serves the task list and opens items in the modal host.
type TodosHandler struct {
	todos *service.TodoService
	host  *modal.Host
}

// NewTodosHandler constructs handler.
func NewTodosHandler(todos *service.TodoService, host *modal.Host) *TodosHandler {
	return &TodosHandler{todos: todos, host: host}
}

// ListTodos GET /todos?scope=mine|all.
func (h *TodosHandler) ListTodos(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	scope := c.Query("scope", "mine")
	if scope != "mine" && scope != "all" {
		return apperrors.NewValidationError("scope must be mine or all", map[string]any{"scope": scope})
	}
	items, err := h.todos.List(c.UserContext(), principal.Role, scope == "all")
	if err != nil {
		return err
	}
	resp := make([]dto.TodoResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, todoResponse(item))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// OpenTodo POST /todos/:id/open.
func (h *TodosHandler) OpenTodo(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	item, err := h.todos.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	req := h.host.OpenByTodo(*item)
	return c.JSON(fiber.Map{"data": modalResponse(req)})
}

func todoResponse(item domain.TodoItem) dto.TodoResponse {
	resp := dto.TodoResponse{
		ID:           item.ID,
		Title:        item.Title,
		Tag:          item.Tag,
		ComponentKey: item.ComponentKey,
		TicketID:     item.TicketID,
		Roles:        item.Roles,
		Status:       item.Status,
		UpdatedAt:    item.UpdatedAt,
	}
	if ticket, ok := item.Ticket(); ok {
		resp.Data = ticketResponse(ticket)
	} else if item.RawData != nil {
		resp.Data = item.RawData
	}
	if resp.Roles == nil {
		resp.Roles = []domain.Role{}
	}
	return resp
}
