// Package metrics collects investigation service counters.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// StreamMetrics tracks investigation stream activity.
type StreamMetrics struct {
	streamsStarted   uint64
	streamsCompleted uint64
	streamsFailed    uint64
	agentQueries     uint64
	agentErrors      uint64

	startTime time.Time
}

var (
	global *StreamMetrics
	once   sync.Once
)

// Get returns the process-wide metrics instance.
func Get() *StreamMetrics {
	once.Do(func() {
		global = &StreamMetrics{startTime: time.Now()}
	})
	return global
}

// RecordStreamStart counts an accepted streaming investigation.
func (m *StreamMetrics) RecordStreamStart() {
	atomic.AddUint64(&m.streamsStarted, 1)
}

// RecordStreamEnd counts a finished streaming investigation.
func (m *StreamMetrics) RecordStreamEnd(err error) {
	if err != nil {
		atomic.AddUint64(&m.streamsFailed, 1)
		return
	}
	atomic.AddUint64(&m.streamsCompleted, 1)
}

// RecordAgentQuery counts one agent query attempt.
func (m *StreamMetrics) RecordAgentQuery() {
	atomic.AddUint64(&m.agentQueries, 1)
}

// RecordAgentError counts one failed agent query.
func (m *StreamMetrics) RecordAgentError() {
	atomic.AddUint64(&m.agentErrors, 1)
}

// Snapshot is a point-in-time view of the counters.
type Snapshot struct {
	StreamsStarted   uint64  `json:"streams_started"`
	StreamsCompleted uint64  `json:"streams_completed"`
	StreamsFailed    uint64  `json:"streams_failed"`
	StreamsActive    uint64  `json:"streams_active"`
	AgentQueries     uint64  `json:"agent_queries"`
	AgentErrors      uint64  `json:"agent_errors"`
	UptimeSeconds    float64 `json:"uptime_seconds"`
}

// Snapshot returns the current counter values.
func (m *StreamMetrics) Snapshot() Snapshot {
	started := atomic.LoadUint64(&m.streamsStarted)
	completed := atomic.LoadUint64(&m.streamsCompleted)
	failed := atomic.LoadUint64(&m.streamsFailed)

	active := uint64(0)
	if started > completed+failed {
		active = started - completed - failed
	}

	return Snapshot{
		StreamsStarted:   started,
		StreamsCompleted: completed,
		StreamsFailed:    failed,
		StreamsActive:    active,
		AgentQueries:     atomic.LoadUint64(&m.agentQueries),
		AgentErrors:      atomic.LoadUint64(&m.agentErrors),
		UptimeSeconds:    time.Since(m.startTime).Seconds(),
	}
}
