package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/mes-portal/internal/domain"
	"github.com/spec-kit/mes-portal/internal/events"
)

type recordingPublisher struct {
	channel  string
	messages [][]byte
	err      error
}

func (p *recordingPublisher) Publish(_ context.Context, channel string, payload []byte) error {
	if p.err != nil {
		return p.err
	}
	p.channel = channel
	p.messages = append(p.messages, payload)
	return nil
}

func TestNotificationFanOut(t *testing.T) {
	ctx := context.Background()
	dispatcher := events.NewInMemoryDispatcher()
	pub := &recordingPublisher{}
	NewNotificationService(dispatcher, pub, "portal:events", nil).RegisterHandlers()

	err := dispatcher.Publish(ctx, events.Event{
		ID:       "evt-1",
		Type:     events.EventTicketStatusChanged,
		TicketID: "HC/R-26-ABC123",
		Actor:    events.Actor{UserID: "u-mgr", Role: domain.RoleManager},
		Payload: events.TicketStatusChangedPayload{
			OldStatus: domain.TicketStatusPendingConfirm,
			NewStatus: domain.TicketStatusPendingAnalysis,
		},
	})
	require.NoError(t, err)
	require.Len(t, pub.messages, 1)
	assert.Equal(t, "portal:events", pub.channel)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(pub.messages[0], &decoded))
	assert.Equal(t, "ticket_status_changed", decoded["type"])
	assert.Equal(t, "HC/R-26-ABC123", decoded["ticket_id"])
}

func TestNotificationPublisherFailure(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	pub := &recordingPublisher{err: errors.New("redis down")}
	NewNotificationService(dispatcher, pub, "portal:events", nil).RegisterHandlers()

	err := dispatcher.Publish(context.Background(), events.Event{Type: events.EventImportStarted})
	assert.ErrorIs(t, err, pub.err)
}

func TestNotificationWithoutPublisher(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	NewNotificationService(dispatcher, nil, "", nil).RegisterHandlers()

	assert.NoError(t, dispatcher.Publish(context.Background(), events.Event{Type: events.EventTicketCreated}))
}
