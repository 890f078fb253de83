package worker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/mes-portal/internal/domain"
	"github.com/spec-kit/mes-portal/internal/events"
	"github.com/spec-kit/mes-portal/internal/repository"
	"github.com/spec-kit/mes-portal/internal/seed"
)

func TestSeedTodos(t *testing.T) {
	ctx := context.Background()
	provider, err := seed.NewTodoProvider()
	require.NoError(t, err)
	todos := repository.NewMemoryStore().TodoView()

	require.NoError(t, SeedTodos(ctx, provider, todos, zap.NewNop()))

	all, err := todos.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, len(provider.Fetch("")), all)

	done, err := todos.Count(ctx, func(item domain.TodoItem) bool { return item.Status == domain.TodoStatusDone })
	require.NoError(t, err)
	assert.Equal(t, 1, done)
}

func TestStartNotificationWorkerWithoutRedis(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	svc := StartNotificationWorker(dispatcher, nil, "portal:events", zap.NewNop())
	require.NotNil(t, svc)
	assert.NoError(t, dispatcher.Publish(context.Background(), events.Event{Type: events.EventTicketCreated}))
}
