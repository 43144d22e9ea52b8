package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStreamMetricsSnapshot(t *testing.T) {
	m := &StreamMetrics{startTime: time.Now()}

	m.RecordStreamStart()
	m.RecordStreamStart()
	m.RecordStreamStart()
	m.RecordStreamEnd(nil)
	m.RecordStreamEnd(errors.New("upstream gone"))
	m.RecordAgentQuery()
	m.RecordAgentQuery()
	m.RecordAgentError()

	snap := m.Snapshot()
	assert.Equal(t, uint64(3), snap.StreamsStarted)
	assert.Equal(t, uint64(1), snap.StreamsCompleted)
	assert.Equal(t, uint64(1), snap.StreamsFailed)
	assert.Equal(t, uint64(1), snap.StreamsActive)
	assert.Equal(t, uint64(2), snap.AgentQueries)
	assert.Equal(t, uint64(1), snap.AgentErrors)
	assert.GreaterOrEqual(t, snap.UptimeSeconds, 0.0)
}

func TestGetReturnsSameInstance(t *testing.T) {
	assert.Same(t, Get(), Get())
}
