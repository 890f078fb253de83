package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/mes-portal/internal/domain"
)

func TestTransitionsAreLinear(t *testing.T) {
	for _, status := range domain.TicketStatuses {
		step, ok := transitionFrom(status)
		if status.Terminal() {
			assert.False(t, ok, status)
			continue
		}
		assert.True(t, ok, status)
		assert.Equal(t, status.Rank()+1, step.next.Rank(), "%s skips or regresses", status)
	}
}

func TestUnknownStatusPanics(t *testing.T) {
	assert.Panics(t, func() { transitionFrom(domain.TicketStatus("REOPENED")) })
	assert.Panics(t, func() { domain.TicketStatus("REOPENED").Rank() })
}
