package sse

import "strings"

// FrameKind identifies how a reassembled line is interpreted.
type FrameKind uint8

const (
	// FrameBlank is an empty or whitespace-only separator line.
	FrameBlank FrameKind = iota

	// FrameHeartbeat is a comment/keep-alive line (first non-whitespace
	// character is ':'). It has no observable effect.
	FrameHeartbeat

	// FrameData carries a payload; Data holds the text after the
	// "data: " prefix, trimmed.
	FrameData

	// FrameDone is the explicit end-of-stream sentinel ("data: [DONE]").
	FrameDone

	// FrameUnrecognized is any other line shape; discarded silently.
	FrameUnrecognized
)

// Frame is one classified line of the stream.
type Frame struct {
	Kind FrameKind
	Data string
}

const (
	dataPrefix   = "data: "
	doneSentinel = "[DONE]"
)

// Classify classifies a single reassembled line. The "data: " prefix match
// is exact (no leading whitespace allowed); the heartbeat check looks at the
// first non-whitespace character only.
func Classify(line string) Frame {
	trimmed := strings.TrimLeft(line, " \t")
	if trimmed == "" {
		return Frame{Kind: FrameBlank}
	}
	if trimmed[0] == ':' {
		return Frame{Kind: FrameHeartbeat}
	}
	if strings.HasPrefix(line, dataPrefix) {
		rest := strings.TrimSpace(line[len(dataPrefix):])
		if rest == doneSentinel {
			return Frame{Kind: FrameDone}
		}
		return Frame{Kind: FrameData, Data: rest}
	}
	return Frame{Kind: FrameUnrecognized}
}
