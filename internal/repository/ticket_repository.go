package repository

import (
	"context"
	"errors"

	"github.com/spec-kit/mes-portal/internal/domain"
)

// ErrNotFound is returned when a lookup misses.
var ErrNotFound = errors.New("repository: not found")

// TicketFilter captures ticket search parameters.
type TicketFilter struct {
	Statuses []domain.TicketStatus
	Type     string
	Limit    int
	Offset   int
}

// TicketRepository encapsulates ticket storage. Save writes the ticket and
// its mirrored todo item as one step so readers never see them disagree.
type TicketRepository interface {
	Save(ctx context.Context, ticket *domain.Ticket, todo *domain.TodoItem) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
}
