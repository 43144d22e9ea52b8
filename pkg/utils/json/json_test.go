package json

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

func TestMarshalUnmarshal(t *testing.T) {
	in := sample{ID: 7, Name: "investigator", Message: "root cause found"}

	data, err := Marshal(in)
	require.NoError(t, err)

	var out sample
	require.NoError(t, Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestEncoderDecoder(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, NewEncoder(&buf).Encode(map[string]any{"event": "agent_start", "phase": 1}))

	var out map[string]any
	require.NoError(t, NewDecoder(&buf).Decode(&out))
	assert.Equal(t, "agent_start", out["event"])
}
