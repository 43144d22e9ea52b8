// Package sse implements the line level of the investigation event stream:
// reassembling logical lines from arbitrarily-chunked response bytes and
// classifying each line as heartbeat, payload, terminal sentinel, or noise.
package sse

// LineReader turns a chunked byte stream into complete lines. Chunk
// boundaries may fall anywhere, including inside a multi-byte UTF-8
// sequence; the carry-over is kept as raw bytes so no byte is ever dropped
// or duplicated.
type LineReader struct {
	buf []byte
}

// Feed appends a chunk and returns all lines completed by it. The text
// after the last newline (or the whole chunk, if it holds none) is retained
// as carry-over for the next Feed. A trailing \r is stripped from each
// emitted line.
func (r *LineReader) Feed(chunk []byte) []string {
	data := r.buf
	data = append(data, chunk...)

	var lines []string
	start := 0
	for i := 0; i < len(data); i++ {
		if data[i] != '\n' {
			continue
		}
		lines = append(lines, trimCR(data[start:i]))
		start = i + 1
	}

	r.buf = append([]byte(nil), data[start:]...)
	return lines
}

// Flush returns the remaining unterminated line, if any, and resets the
// reader. Call it once the transport reports end of stream.
func (r *LineReader) Flush() (string, bool) {
	if len(r.buf) == 0 {
		return "", false
	}
	line := trimCR(r.buf)
	r.buf = nil
	return line, true
}

// Buffered returns the number of carry-over bytes held by the reader.
func (r *LineReader) Buffered() int {
	return len(r.buf)
}

func trimCR(b []byte) string {
	if n := len(b); n > 0 && b[n-1] == '\r' {
		b = b[:n-1]
	}
	return string(b)
}
