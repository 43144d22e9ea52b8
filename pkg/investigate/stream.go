package investigate

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/Developer-atomic-amardeep/NeuralOps-Incident-IQ/pkg/sse"
)

// Stream drives one event stream: it owns the response body, reads chunks,
// reassembles and classifies lines, and feeds the demultiplexer. The body is
// closed exactly once on every exit path.
type Stream struct {
	body  io.ReadCloser
	cb    Callbacks
	demux *Demux

	canceled  atomic.Bool
	closeOnce sync.Once
	done      chan struct{}
}

// NewStream wraps an open response body. The caller must call Run to start
// consuming; Run blocks until the stream terminates.
func NewStream(body io.ReadCloser, cb Callbacks) *Stream {
	return &Stream{
		body:  body,
		cb:    cb,
		demux: NewDemux(cb),
		done:  make(chan struct{}),
	}
}

// Run consumes the stream until completion, a fatal transport error, or
// cancellation. Events are processed strictly in arrival order on the
// calling goroutine.
func (s *Stream) Run() {
	defer close(s.done)
	defer s.closeBody()

	var reader sse.LineReader
	buf := make([]byte, 4096)

	for {
		n, err := s.body.Read(buf)
		if s.canceled.Load() {
			return
		}

		if n > 0 {
			for _, line := range reader.Feed(buf[:n]) {
				if s.canceled.Load() {
					return
				}
				if s.handleLine(line) {
					return
				}
			}
		}

		if err == nil {
			continue
		}
		if errors.Is(err, io.EOF) {
			s.finishEOF(&reader)
			return
		}
		if !s.demux.Completed() {
			s.cb.fail(fmt.Errorf("stream read failed: %w", err))
		}
		return
	}
}

// handleLine dispatches one reassembled line; it reports true when the
// stream reached a terminal state.
func (s *Stream) handleLine(line string) bool {
	switch f := sse.Classify(line); f.Kind {
	case sse.FrameData:
		s.demux.HandleData(f.Data)
		return s.demux.Completed()
	case sse.FrameDone:
		s.demux.Complete()
		return true
	default:
		return false
	}
}

// finishEOF flushes any unterminated trailing line, then treats natural end
// of the transport as a completion trigger.
func (s *Stream) finishEOF(reader *sse.LineReader) {
	if tail, ok := reader.Flush(); ok {
		if s.canceled.Load() || s.handleLine(tail) {
			return
		}
	}
	if !s.canceled.Load() {
		s.demux.Complete()
	}
}

// Cancel stops the stream and releases the transport. It is idempotent and
// safe from any goroutine. No callback is delivered after the cancellation
// is observed, and cancellation never surfaces as an error.
func (s *Stream) Cancel() {
	if !s.canceled.CompareAndSwap(false, true) {
		return
	}
	// Closing the body unblocks a Read pending in Run.
	s.closeBody()
}

// Canceled reports whether Cancel has been called.
func (s *Stream) Canceled() bool {
	return s.canceled.Load()
}

// Done is closed when Run returns.
func (s *Stream) Done() <-chan struct{} {
	return s.done
}

// Result returns the aggregated result observed so far.
func (s *Stream) Result() string {
	return s.demux.Result()
}

func (s *Stream) closeBody() {
	s.closeOnce.Do(func() {
		_ = s.body.Close()
	})
}
