package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feedAll(r *LineReader, chunks ...string) []string {
	var lines []string
	for _, c := range chunks {
		lines = append(lines, r.Feed([]byte(c))...)
	}
	if tail, ok := r.Flush(); ok {
		lines = append(lines, tail)
	}
	return lines
}

func TestLineReaderSingleChunk(t *testing.T) {
	var r LineReader
	lines := r.Feed([]byte("data: {\"a\":1}\n\ndata: [DONE]\n"))
	assert.Equal(t, []string{`data: {"a":1}`, "", "data: [DONE]"}, lines)
	assert.Zero(t, r.Buffered())
}

func TestLineReaderSplitMidLine(t *testing.T) {
	var r LineReader

	lines := r.Feed([]byte("data: {\"event\":\"agent"))
	assert.Empty(t, lines)
	assert.Positive(t, r.Buffered())

	lines = r.Feed([]byte("_start\"}\n"))
	assert.Equal(t, []string{`data: {"event":"agent_start"}`}, lines)
	assert.Zero(t, r.Buffered())
}

func TestLineReaderSplitInsideRune(t *testing.T) {
	// U+00E9 encodes as 0xC3 0xA9; split between the two bytes.
	payload := []byte("data: caf\xc3\xa9\n")
	var r LineReader

	assert.Empty(t, r.Feed(payload[:10]))
	lines := r.Feed(payload[10:])
	require.Len(t, lines, 1)
	assert.Equal(t, "data: café", lines[0])
}

func TestLineReaderReassemblyInvariant(t *testing.T) {
	stream := "data: {\"x\":\"héllo\"}\r\n:ka\n\ndata: [DONE]\n"
	var want []string
	{
		var r LineReader
		want = feedAll(&r, stream)
	}

	for cut1 := 0; cut1 <= len(stream); cut1++ {
		for cut2 := cut1; cut2 <= len(stream); cut2++ {
			var r LineReader
			got := feedAll(&r, stream[:cut1], stream[cut1:cut2], stream[cut2:])
			require.Equal(t, want, got, "cuts at %d,%d", cut1, cut2)
		}
	}
}

func TestLineReaderStripsTrailingCR(t *testing.T) {
	var r LineReader
	lines := r.Feed([]byte("data: one\r\ndata: two\n"))
	assert.Equal(t, []string{"data: one", "data: two"}, lines)
}

func TestLineReaderFlush(t *testing.T) {
	var r LineReader
	r.Feed([]byte("data: unterminated"))

	line, ok := r.Flush()
	require.True(t, ok)
	assert.Equal(t, "data: unterminated", line)

	_, ok = r.Flush()
	assert.False(t, ok)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Frame
	}{
		{"blank", "", Frame{Kind: FrameBlank}},
		{"whitespace only", "   \t", Frame{Kind: FrameBlank}},
		{"heartbeat", ": keep-alive", Frame{Kind: FrameHeartbeat}},
		{"heartbeat bare colon", ":", Frame{Kind: FrameHeartbeat}},
		{"heartbeat indented", "  : ping", Frame{Kind: FrameHeartbeat}},
		{"data", `data: {"event":"text_delta"}`, Frame{Kind: FrameData, Data: `{"event":"text_delta"}`}},
		{"data trimmed", "data:  {\"a\":1} ", Frame{Kind: FrameData, Data: `{"a":1}`}},
		{"done", "data: [DONE]", Frame{Kind: FrameDone}},
		{"done padded", "data:  [DONE] ", Frame{Kind: FrameDone}},
		{"missing space after colon", "data:{\"a\":1}", Frame{Kind: FrameUnrecognized}},
		{"indented data prefix", "  data: {}", Frame{Kind: FrameUnrecognized}},
		{"event field", "event: message", Frame{Kind: FrameUnrecognized}},
		{"garbage", "<<<>>>", Frame{Kind: FrameUnrecognized}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.line))
		})
	}
}
