package investigate

import (
	"errors"
	"io"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frame(kind EventKind, agent SourceAgent, phase int, data string) string {
	return `data: {"event":"` + string(kind) + `","agent":"` + string(agent) +
		`","phase":` + strconv.Itoa(phase) + `,"data":` + data + "}\n\n"
}

func runStream(t *testing.T, input string) *recorder {
	t.Helper()
	rec := &recorder{}
	s := NewStream(io.NopCloser(readerOf(input)), rec.callbacks())
	s.Run()
	return rec
}

type chunkReader struct {
	chunks [][]byte
}

func readerOf(s string) io.Reader {
	return &chunkReader{chunks: [][]byte{[]byte(s)}}
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.chunks) == 0 {
		return 0, io.EOF
	}
	chunk := r.chunks[0]
	n := copy(p, chunk)
	if n == len(chunk) {
		r.chunks = r.chunks[1:]
	} else {
		r.chunks[0] = chunk[n:]
	}
	return n, nil
}

func TestStreamEndToEnd(t *testing.T) {
	input := frame(EventAgentStart, AgentGitHub, 1, `{}`) +
		": keep-alive\n" +
		frame(EventTextStart, AgentGitHub, 1, `{}`) +
		frame(EventTextDelta, AgentGitHub, 1, `{"delta":"Found "}`) +
		frame(EventTextDelta, AgentGitHub, 1, `{"delta":"3 commits"}`) +
		frame(EventTextEnd, AgentGitHub, 1, `{}`) +
		frame(EventAgentComplete, AgentGitHub, 1, `{"response":"Found 3 commits"}`) +
		frame(EventAgentComplete, AgentReasoning, 2, `{"response":"Root cause: bad deploy"}`) +
		"data: [DONE]\n"

	rec := runStream(t, input)

	adds := rec.ofKind("add")
	require.Len(t, adds, 3)
	assert.Equal(t, "Agent initialized", adds[0].entry.Message)
	assert.Empty(t, adds[1].entry.Message)
	assert.Equal(t, "Agent completed successfully", adds[2].entry.Message)

	updates := rec.ofKind("update")
	require.Len(t, updates, 2)
	assert.Equal(t, "Found 3 commits", updates[1].message)

	completions := rec.ofKind("complete")
	require.Len(t, completions, 1)
	assert.Equal(t, "Root cause: bad deploy", completions[0].result)

	assert.Empty(t, rec.ofKind("error"))
}

func TestStreamReassemblyInvariant(t *testing.T) {
	input := frame(EventTextStart, AgentSlack, 1, `{}`) +
		frame(EventTextDelta, AgentSlack, 1, `{"delta":"héllo wörld"}`) +
		frame(EventAgentComplete, AgentReasoning, 2, `{"response":"done"}`) +
		"data: [DONE]\n"

	whole := runStream(t, input)

	byteAtATime := &recorder{}
	chunks := make([][]byte, 0, len(input))
	for i := 0; i < len(input); i++ {
		chunks = append(chunks, []byte{input[i]})
	}
	s := NewStream(io.NopCloser(&chunkReader{chunks: chunks}), byteAtATime.callbacks())
	s.Run()

	want := whole.all()
	got := byteAtATime.all()
	require.Equal(t, len(want), len(got))
	for i := range want {
		assert.Equal(t, want[i].kind, got[i].kind)
		assert.Equal(t, want[i].ch, got[i].ch)
		assert.Equal(t, want[i].message, got[i].message)
		assert.Equal(t, want[i].entry.Message, got[i].entry.Message)
		assert.Equal(t, want[i].result, got[i].result)
	}
}

func TestStreamMalformedFrameResilience(t *testing.T) {
	input := "data: {bad json\n" +
		frame(EventAgentStart, AgentGitHub, 1, `{}`) +
		"data: [DONE]\n"

	rec := runStream(t, input)

	adds := rec.ofKind("add")
	require.Len(t, adds, 1)
	assert.Equal(t, ChannelGitHub, adds[0].ch)
	assert.Equal(t, "Agent initialized", adds[0].entry.Message)

	completions := rec.ofKind("complete")
	require.Len(t, completions, 1)
	assert.Empty(t, completions[0].result)
}

func TestStreamNaturalEOFCompletes(t *testing.T) {
	input := frame(EventAgentComplete, AgentReasoning, 2, `{"response":"verdict"}`)

	rec := runStream(t, input)

	completions := rec.ofKind("complete")
	require.Len(t, completions, 1)
	assert.Equal(t, "verdict", completions[0].result)
	assert.Empty(t, rec.ofKind("error"))
}

func TestStreamFlushesUnterminatedTail(t *testing.T) {
	input := frame(EventAgentStart, AgentSlack, 1, `{}`)
	input = input[:len(input)-2] // strip the line terminators

	rec := runStream(t, input)

	adds := rec.ofKind("add")
	require.Len(t, adds, 1)
	assert.Equal(t, ChannelSlack, adds[0].ch)
	require.Len(t, rec.ofKind("complete"), 1)
}

func TestStreamPhaseCompleteTerminates(t *testing.T) {
	input := frame(EventPhaseComplete, AgentReasoning, 2, `{}`) +
		frame(EventAgentStart, AgentGitHub, 1, `{}`) +
		"data: [DONE]\n"

	rec := runStream(t, input)

	// Nothing after the completion trigger is delivered.
	assert.Empty(t, rec.ofKind("add"))
	assert.Len(t, rec.ofKind("complete"), 1)
}

func TestStreamReadErrorFiresErrorCallback(t *testing.T) {
	pr, pw := io.Pipe()
	rec := &recorder{}
	s := NewStream(pr, rec.callbacks())

	go func() {
		pw.Write([]byte(frame(EventAgentStart, AgentGitHub, 1, `{}`)))
		pw.CloseWithError(errors.New("connection reset"))
	}()

	s.Run()

	require.Len(t, rec.ofKind("add"), 1)
	errs := rec.ofKind("error")
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].err.Error(), "connection reset")
	assert.Empty(t, rec.ofKind("complete"))
}

func TestStreamCancelBetweenChunks(t *testing.T) {
	pr, pw := io.Pipe()
	rec := &recorder{}

	firstAdd := make(chan struct{}, 1)
	cb := rec.callbacks()
	inner := cb.OnAdd
	cb.OnAdd = func(ch Channel, entry LogEntry) {
		inner(ch, entry)
		select {
		case firstAdd <- struct{}{}:
		default:
		}
	}

	s := NewStream(pr, cb)
	go s.Run()

	_, err := pw.Write([]byte(frame(EventAgentStart, AgentGitHub, 1, `{}`)))
	require.NoError(t, err)

	select {
	case <-firstAdd:
	case <-time.After(2 * time.Second):
		t.Fatal("first entry never delivered")
	}

	s.Cancel()
	s.Cancel() // idempotent

	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not stop after cancel")
	}

	// The transport was released, so further writes fail.
	_, err = pw.Write([]byte("data: [DONE]\n"))
	assert.Error(t, err)

	assert.Len(t, rec.ofKind("add"), 1)
	assert.Empty(t, rec.ofKind("complete"))
	assert.Empty(t, rec.ofKind("error"))
	assert.True(t, s.Canceled())
}

func TestStreamClosesBodyOnCompletion(t *testing.T) {
	body := &closeTrackingReader{Reader: readerOf("data: [DONE]\n")}
	rec := &recorder{}
	s := NewStream(body, rec.callbacks())
	s.Run()

	assert.Equal(t, 1, body.closed)
	require.Len(t, rec.ofKind("complete"), 1)
}

type closeTrackingReader struct {
	io.Reader
	closed int
}

func (r *closeTrackingReader) Close() error {
	r.closed++
	return nil
}
