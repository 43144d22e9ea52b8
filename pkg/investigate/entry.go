package investigate

import (
	"crypto/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Level classifies a log entry for display.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarn    Level = "warn"
	LevelError   Level = "error"
	LevelSuccess Level = "success"
)

// LogEntry is one record on a channel. ID, Timestamp and Level are fixed at
// creation; only the message of the currently open streamed entry is mutated
// afterwards, via update callbacks.
type LogEntry struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Level     Level  `json:"level"`
	Message   string `json:"message"`
}

const timestampLayout = "15:04:05"

// idGenerator produces unique, monotonically ordered entry IDs.
type idGenerator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func newIDGenerator() *idGenerator {
	return &idGenerator{entropy: ulid.Monotonic(rand.Reader, 0)}
}

func (g *idGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy).String()
}

// levelFor assigns the display level for a standalone entry. agent_complete
// always reads as success; otherwise the first matching keyword rule wins.
func levelFor(kind EventKind, message string) Level {
	if kind == EventAgentComplete {
		return LevelSuccess
	}

	lower := strings.ToLower(message)
	switch {
	case containsAny(lower, "error", "fail", "exception"):
		return LevelError
	case containsAny(lower, "warn", "timeout", "slow"):
		return LevelWarn
	case containsAny(lower, "complete", "success"):
		return LevelSuccess
	default:
		return LevelInfo
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

const (
	msgAgentInitialized = "Agent initialized"
	msgAgentCompleted   = "Agent completed successfully"
	msgAgentWorking     = "Agent working..."
	msgGenericError     = "An unexpected error occurred"
)

// deriveMessage builds the message text for a standalone entry.
func deriveMessage(ev *StreamEvent) string {
	switch ev.Event {
	case EventAgentStart:
		return msgAgentInitialized
	case EventToolOutput:
		if ev.Data.Tool != "" {
			return "Executing tool: " + ev.Data.Tool
		}
		if ev.Data.Output != "" {
			return "Tool output: " + ev.Data.Output
		}
		return msgAgentWorking
	case EventAgentComplete:
		return msgAgentCompleted
	case EventError:
		if ev.Data.Message != "" {
			return ev.Data.Message
		}
		return msgGenericError
	default:
		return msgAgentWorking
	}
}
