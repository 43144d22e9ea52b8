package investigate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelFor(t *testing.T) {
	tests := []struct {
		name    string
		kind    EventKind
		message string
		want    Level
	}{
		{"agent complete always success", EventAgentComplete, "fatal error everywhere", LevelSuccess},
		{"error keyword", EventToolOutput, "Deployment FAILED on node 3", LevelError},
		{"exception keyword", EventError, "NullPointerException in handler", LevelError},
		{"timeout is warn", EventToolOutput, "Connection timeout while fetching logs", LevelWarn},
		{"slow is warn", EventToolOutput, "Query running slow", LevelWarn},
		{"error beats warn", EventError, "timeout error while polling", LevelError},
		{"complete is success", EventToolOutput, "Backfill complete", LevelSuccess},
		{"plain message", EventAgentStart, "Agent initialized", LevelInfo},
		{"empty message", EventTextStart, "", LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, levelFor(tt.kind, tt.message))
		})
	}
}

func TestIDGeneratorUnique(t *testing.T) {
	g := newIDGenerator()
	seen := make(map[string]struct{})
	prev := ""
	for i := 0; i < 1000; i++ {
		id := g.Next()
		_, dup := seen[id]
		assert.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
		assert.Greater(t, id, prev)
		prev = id
	}
}
