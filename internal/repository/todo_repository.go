package repository

import (
	"context"
	"errors"

	"github.com/spec-kit/mes-portal/internal/domain"
)

// ErrMirrorOpen is returned when removing a todo item whose ticket is still
// in progress.
var ErrMirrorOpen = errors.New("repository: todo mirrors an open ticket")

// ErrMirrorConflict is returned when an upsert would add a second mirror for a
// ticket or detach an existing mirror from its ticket.
var ErrMirrorConflict = errors.New("repository: todo conflicts with ticket mirror")

// TodoRepository holds todo items, ticket-derived and otherwise.
type TodoRepository interface {
	// List returns items most recently mutated first. An empty role returns
	// everything; otherwise only items that role can act on right now.
	List(ctx context.Context, role domain.Role) ([]domain.TodoItem, error)
	Get(ctx context.Context, id string) (*domain.TodoItem, error)
	Upsert(ctx context.Context, item *domain.TodoItem) error
	Remove(ctx context.Context, id string) error
	Count(ctx context.Context, predicate func(domain.TodoItem) bool) (int, error)
}
