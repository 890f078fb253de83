package worker

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/mes-portal/internal/domain"
	"github.com/spec-kit/mes-portal/internal/repository"
)

// TodoSource supplies externally provided todo records.
type TodoSource interface {
	Fetch(role domain.Role) []domain.TodoItem
}

// SeedTodos copies every record from source into todos.
func SeedTodos(ctx context.Context, source TodoSource, todos repository.TodoRepository, logger *zap.Logger) error {
	items := source.Fetch("")
	for i := range items {
		if err := todos.Upsert(ctx, &items[i]); err != nil {
			return fmt.Errorf("seed todo %s: %w", items[i].ID, err)
		}
	}
	logger.Info("seeded todos", zap.Int("count", len(items)))
	return nil
}
