package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spec-kit/mes-portal/internal/domain"
	apperrors "github.com/spec-kit/mes-portal/pkg/util"
)

// ErrInvalidTransition is wrapped by every error returned when a ticket
// cannot move: unknown id, terminal status, or a role that is not the
// stage's actor.
var ErrInvalidTransition = errors.New("invalid ticket transition")

// AdvancePayload carries the stage-specific input of a transition. Only the
// fields of the ticket's current stage are read.
type AdvancePayload struct {
	Containment  string
	RootCause    string
	Solution     string
	VerifyResult *bool
	VerifyNote   string
}

type transition struct {
	next  domain.TicketStatus
	apply func(next *domain.Ticket, payload AdvancePayload) error
}

// transitions maps each non-terminal status to its single outgoing edge.
// The acting roles come from domain.StageActors.
var transitions = map[domain.TicketStatus]transition{
	domain.TicketStatusPendingConfirm: {
		next:  domain.TicketStatusPendingAnalysis,
		apply: applyContainment,
	},
	domain.TicketStatusPendingAnalysis: {
		next:  domain.TicketStatusPendingVerify,
		apply: applyAnalysis,
	},
	domain.TicketStatusPendingVerify: {
		next:  domain.TicketStatusClosed,
		apply: applyVerification,
	},
}

func transitionFrom(status domain.TicketStatus) (transition, bool) {
	if status.Terminal() {
		return transition{}, false
	}
	step, ok := transitions[status]
	if !ok {
		panic(fmt.Sprintf("service: no transition defined for ticket status %q", string(status)))
	}
	return step, true
}

func applyContainment(next *domain.Ticket, payload AdvancePayload) error {
	containment := strings.TrimSpace(payload.Containment)
	if containment == "" {
		return apperrors.NewValidationError("containment required", map[string]any{"field": "containment"})
	}
	next.Containment = &containment
	return nil
}

func applyAnalysis(next *domain.Ticket, payload AdvancePayload) error {
	rootCause := strings.TrimSpace(payload.RootCause)
	solution := strings.TrimSpace(payload.Solution)
	missing := []string{}
	if rootCause == "" {
		missing = append(missing, "root_cause")
	}
	if solution == "" {
		missing = append(missing, "solution")
	}
	if len(missing) > 0 {
		return apperrors.NewValidationError("root cause and solution required", map[string]any{"fields": missing})
	}
	next.RootCause = &rootCause
	next.Solution = &solution
	return nil
}

func applyVerification(next *domain.Ticket, payload AdvancePayload) error {
	if payload.VerifyResult == nil {
		return apperrors.NewValidationError("verify_result required", map[string]any{"field": "verify_result"})
	}
	if !*payload.VerifyResult {
		// there is no rework path back to analysis
		return apperrors.NewValidationError("verification must be confirmed to close the ticket", map[string]any{"field": "verify_result"})
	}
	result := true
	next.VerifyResult = &result
	if note := strings.TrimSpace(payload.VerifyNote); note != "" {
		next.VerifyNote = &note
	}
	return nil
}

func closeIfTerminal(next *domain.Ticket, now time.Time) {
	if next.Status.Terminal() {
		closedAt := now
		next.ClosedAt = &closedAt
	}
}

func invalidTransition(message string, ticketID string, status domain.TicketStatus, role domain.Role) error {
	details := map[string]any{"ticket_id": ticketID, "role": role}
	if status != "" {
		details["status"] = status
		details["allowed_roles"] = domain.StageActors(status)
	}
	return apperrors.NewInvalidTransition(ErrInvalidTransition, message, details)
}
