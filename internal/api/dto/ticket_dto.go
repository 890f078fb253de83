package dto

import (
	"time"

	"github.com/spec-kit/mes-portal/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Type        string                `json:"type"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
}

// AdvanceTicketRequest carries the input of the current stage. Only the
// fields of that stage are read.
type AdvanceTicketRequest struct {
	Containment  string `json:"containment"`
	RootCause    string `json:"root_cause"`
	Solution     string `json:"solution"`
	VerifyResult *bool  `json:"verify_result"`
	VerifyNote   string `json:"verify_note"`
}

// TicketResponse provides full ticket info.
type TicketResponse struct {
	ID           string                `json:"id"`
	Type         string                `json:"type"`
	Description  string                `json:"description"`
	Priority     domain.TicketPriority `json:"priority"`
	Status       domain.TicketStatus   `json:"status"`
	Initiator    string                `json:"initiator"`
	Containment  *string               `json:"containment"`
	RootCause    *string               `json:"root_cause"`
	Solution     *string               `json:"solution"`
	VerifyResult *bool                 `json:"verify_result"`
	VerifyNote   *string               `json:"verify_note"`
	Actors       []domain.Role         `json:"actors"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
	ClosedAt     *time.Time            `json:"closed_at"`
}

// TicketHistoryResponse is one entry of a ticket's audit trail.
type TicketHistoryResponse struct {
	ID          string         `json:"id"`
	ChangedBy   string         `json:"changed_by"`
	ChangedRole domain.Role    `json:"changed_role"`
	ChangeType  string         `json:"change_type"`
	OldValue    map[string]any `json:"old_value"`
	NewValue    map[string]any `json:"new_value"`
	CreatedAt   time.Time      `json:"created_at"`
}
