package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/mes-portal/internal/domain"
	"github.com/spec-kit/mes-portal/internal/events"
	"github.com/spec-kit/mes-portal/internal/observability"
	"github.com/spec-kit/mes-portal/internal/repository"
	apperrors "github.com/spec-kit/mes-portal/pkg/util"
)

const defaultTicketIDPrefix = "HC/R-26-"

// Actor identifies who performs a ticket operation.
type Actor struct {
	UserID string
	Role   domain.Role
}

// TicketService owns the ticket lifecycle and keeps each ticket's todo
// mirror in step with it.
type TicketService struct {
	// mu serializes writes so two advances on the same ticket cannot
	// interleave between read and save.
	mu         sync.Mutex
	tickets    repository.TicketRepository
	history    repository.TicketHistoryRepository
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	idPrefix   string
	now        func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	HistoryRepo repository.TicketHistoryRepository
	Dispatcher  events.Dispatcher
	Metrics     *observability.Metrics
	Logger      *zap.Logger
	IDPrefix    string
	Now         func() time.Time
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Type        string
	Description string
	Priority    domain.TicketPriority
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	s := &TicketService{
		tickets:    deps.TicketRepo,
		history:    deps.HistoryRepo,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		idPrefix:   deps.IDPrefix,
		now:        deps.Now,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.idPrefix == "" {
		s.idPrefix = defaultTicketIDPrefix
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// CreateTicket raises a new ticket in PENDING_CONFIRM and inserts its todo
// mirror.
func (s *TicketService) CreateTicket(ctx context.Context, actor Actor, input TicketCreateInput) (*domain.Ticket, error) {
	ticketType := strings.TrimSpace(input.Type)
	description := strings.TrimSpace(input.Description)
	if ticketType == "" || description == "" || input.Priority == "" {
		return nil, apperrors.NewValidationError("type, description, priority required", nil)
	}
	if !input.Priority.Valid() {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": input.Priority})
	}
	if strings.TrimSpace(actor.UserID) == "" {
		return nil, apperrors.NewValidationError("initiator required", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.nextTicketID(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	now := s.now()
	ticket := &domain.Ticket{
		ID:          id,
		Type:        ticketType,
		Description: description,
		Priority:    input.Priority,
		Status:      domain.TicketStatusPendingConfirm,
		Initiator:   actor.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	todo := &domain.TodoItem{
		Title:        ticketType + " - " + stringPreview(description, 40),
		Tag:          domain.TodoTagAbnormal,
		ComponentKey: domain.ComponentKeyTicketDetail,
		Status:       domain.TodoStatusPending,
	}
	if err := s.tickets.Save(ctx, ticket, todo); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.recordHistory(ctx, actor, ticket.ID, domain.ChangeTypeCreated,
		nil,
		map[string]any{"status": ticket.Status, "type": ticket.Type, "priority": ticket.Priority})
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    eventActor(actor),
		Payload: events.TicketCreatedPayload{
			Type:     ticket.Type,
			Priority: ticket.Priority,
		},
	})
	s.logger.Info("ticket created",
		zap.String("ticket_id", ticket.ID),
		zap.String("initiator", actor.UserID),
		zap.String("priority", string(ticket.Priority)))
	return ticket, nil
}

// Advance moves the ticket one stage forward when actor's role is the
// stage's designated actor. On any failure nothing is written.
func (s *TicketService) Advance(ctx context.Context, actor Actor, ticketID string, payload AdvancePayload) (*domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Info("advance rejected: unknown ticket", zap.String("ticket_id", ticketID), zap.String("role", string(actor.Role)))
			return nil, invalidTransition("ticket not found", ticketID, "", actor.Role)
		}
		return nil, apperrors.MapError(err)
	}

	step, ok := transitionFrom(current.Status)
	if !ok {
		s.metrics.RecordRejectedTransition(string(current.Status), string(actor.Role))
		s.logger.Info("advance rejected: ticket closed", zap.String("ticket_id", ticketID), zap.String("role", string(actor.Role)))
		return nil, invalidTransition("ticket is closed", ticketID, current.Status, actor.Role)
	}
	if !domain.CanAct(current.Status, actor.Role) {
		s.metrics.RecordRejectedTransition(string(current.Status), string(actor.Role))
		s.logger.Info("advance rejected: role mismatch",
			zap.String("ticket_id", ticketID),
			zap.String("status", string(current.Status)),
			zap.String("role", string(actor.Role)))
		return nil, invalidTransition("you are not authorized to act on this ticket in its current state", ticketID, current.Status, actor.Role)
	}

	next := current.Clone()
	if err := step.apply(next, payload); err != nil {
		return nil, err
	}
	now := s.now()
	next.Status = step.next
	next.UpdatedAt = now
	closeIfTerminal(next, now)

	if err := s.tickets.Save(ctx, next, nil); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.metrics.RecordTransition(string(current.Status), string(next.Status))
	s.recordHistory(ctx, actor, next.ID, domain.ChangeTypeStatus,
		map[string]any{"status": current.Status},
		stageValues(next))
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: next.ID,
		Actor:    eventActor(actor),
		Payload: events.TicketStatusChangedPayload{
			OldStatus: current.Status,
			NewStatus: next.Status,
		},
	})
	s.logger.Info("ticket advanced",
		zap.String("ticket_id", next.ID),
		zap.String("from", string(current.Status)),
		zap.String("to", string(next.Status)),
		zap.String("role", string(actor.Role)))
	return next, nil
}

// GetTicket returns a ticket by id.
func (s *TicketService) GetTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// ListTickets returns tickets newest first.
func (s *TicketService) ListTickets(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	return s.tickets.List(ctx, filter)
}

// ListHistory returns the audit trail of a ticket.
func (s *TicketService) ListHistory(ctx context.Context, ticketID string) ([]domain.TicketHistory, error) {
	if _, err := s.GetTicket(ctx, ticketID); err != nil {
		return nil, err
	}
	if s.history == nil {
		return []domain.TicketHistory{}, nil
	}
	return s.history.ListByTicket(ctx, ticketID)
}

func (s *TicketService) nextTicketID(ctx context.Context) (string, error) {
	for {
		id := s.idPrefix + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
		_, err := s.tickets.GetByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return id, nil
		}
		if err != nil {
			return "", err
		}
	}
}

// recordHistory is best effort; the transition already happened.
func (s *TicketService) recordHistory(ctx context.Context, actor Actor, ticketID string, change domain.TicketChangeType, oldValue, newValue map[string]any) {
	if s.history == nil {
		return
	}
	entry := &domain.TicketHistory{
		TicketID:    ticketID,
		ChangedBy:   actor.UserID,
		ChangedRole: actor.Role,
		ChangeType:  change,
		OldValue:    oldValue,
		NewValue:    newValue,
	}
	if err := s.history.Create(ctx, entry); err != nil {
		s.logger.Warn("record ticket history", zap.String("ticket_id", ticketID), zap.Error(err))
	}
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish event", zap.String("type", string(event.Type)), zap.Error(err))
	}
}

func stageValues(t *domain.Ticket) map[string]any {
	values := map[string]any{"status": t.Status}
	switch t.Status {
	case domain.TicketStatusPendingAnalysis:
		values["containment"] = deref(t.Containment)
	case domain.TicketStatusPendingVerify:
		values["root_cause"] = deref(t.RootCause)
		values["solution"] = deref(t.Solution)
	case domain.TicketStatusClosed:
		values["verify_result"] = t.VerifyResult != nil && *t.VerifyResult
		if t.VerifyNote != nil {
			values["verify_note"] = *t.VerifyNote
		}
	}
	return values
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func eventActor(actor Actor) events.Actor {
	return events.Actor{UserID: actor.UserID, Role: actor.Role}
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if utf8.RuneCountInString(body) <= max {
		return body
	}
	runes := []rune(body)
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
