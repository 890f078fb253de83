package dto

import (
	"time"

	"github.com/spec-kit/mes-portal/internal/domain"
)

// TodoResponse is a task-list row. Data is the mirrored ticket for
// ticket-origin items.
type TodoResponse struct {
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	Tag          string            `json:"tag"`
	ComponentKey string            `json:"component_key,omitempty"`
	TicketID     string            `json:"ticket_id,omitempty"`
	Roles        []domain.Role     `json:"roles"`
	Status       domain.TodoStatus `json:"status"`
	Data         any               `json:"data,omitempty"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// StartImportRequest payload.
type StartImportRequest struct {
	FileName string `json:"file_name"`
}
