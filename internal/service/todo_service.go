package service

import (
	"context"
	"errors"

	"github.com/spec-kit/mes-portal/internal/domain"
	"github.com/spec-kit/mes-portal/internal/repository"
	apperrors "github.com/spec-kit/mes-portal/pkg/util"
)

// TodoService serves the task list.
type TodoService struct {
	todos repository.TodoRepository
}

// NewTodoService constructs the service.
func NewTodoService(todos repository.TodoRepository) *TodoService {
	return &TodoService{todos: todos}
}

// List returns items for role, or every item when all is set.
func (s *TodoService) List(ctx context.Context, role domain.Role, all bool) ([]domain.TodoItem, error) {
	if all {
		role = ""
	}
	items, err := s.todos.List(ctx, role)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return items, nil
}

// Get returns a single item.
func (s *TodoService) Get(ctx context.Context, id string) (*domain.TodoItem, error) {
	item, err := s.todos.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("todo", map[string]any{"todo_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return item, nil
}
