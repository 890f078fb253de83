package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/tickets", "POST", 201, time.Millisecond)
	m.RecordRequest("/tickets", "POST", 201, time.Millisecond)
	m.RecordError("/tickets/:id/advance", "POST", "INVALID_TRANSITION")
	m.RecordTransition("PENDING_CONFIRM", "PENDING_ANALYSIS")
	m.RecordRejectedTransition("PENDING_CONFIRM", "QC")

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.Requests["/tickets|POST|201"])
	assert.Equal(t, int64(1), snap.Errors["/tickets/:id/advance|POST|INVALID_TRANSITION"])
	assert.Equal(t, int64(1), snap.Transitions["PENDING_CONFIRM->PENDING_ANALYSIS"])
	assert.Equal(t, int64(1), snap.Rejected["PENDING_CONFIRM|QC"])

	// snapshot is a copy
	snap.Transitions["PENDING_CONFIRM->PENDING_ANALYSIS"] = 99
	assert.Equal(t, int64(1), m.Snapshot().Transitions["PENDING_CONFIRM->PENDING_ANALYSIS"])
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, 0)
	m.RecordTransition("a", "b")
	assert.Empty(t, m.Snapshot().Requests)
}
