// Package investigate implements the consumer side of the incident
// investigation stream: decoding tagged agent events, routing them to
// per-source log channels, accumulating streamed text into log entries, and
// detecting completion. One Stream instance owns one response body; instances
// share no state and may run concurrently.
package investigate

import "github.com/Developer-atomic-amardeep/NeuralOps-Incident-IQ/pkg/utils/json"

// EventKind tags a decoded stream event.
type EventKind string

const (
	EventAgentStart    EventKind = "agent_start"
	EventToolOutput    EventKind = "tool_output"
	EventTextStart     EventKind = "text_start"
	EventTextDelta     EventKind = "text_delta"
	EventTextEnd       EventKind = "text_end"
	EventAgentComplete EventKind = "agent_complete"
	EventPhaseComplete EventKind = "phase_complete"
	EventError         EventKind = "error"
)

// SourceAgent identifies which backend agent produced an event.
type SourceAgent string

const (
	AgentGitHub     SourceAgent = "GITHUB_AGENT"
	AgentCloudWatch SourceAgent = "AWS_CLOUDWATCH_AGENT"
	AgentSlack      SourceAgent = "SLACK_AGENT"
	AgentReasoning  SourceAgent = "REASONING_INVESTIGATOR"
)

// Channel is one of the per-source log sequences a consumer observes.
type Channel string

const (
	ChannelGitHub     Channel = "github"
	ChannelCloudWatch Channel = "cloudwatch"
	ChannelSlack      Channel = "slack"
)

// Channels lists all routable channels in display order.
func Channels() []Channel {
	return []Channel{ChannelGitHub, ChannelCloudWatch, ChannelSlack}
}

// StreamEvent is one decoded payload frame.
type StreamEvent struct {
	Event EventKind    `json:"event"`
	Agent SourceAgent  `json:"agent"`
	Phase int          `json:"phase"`
	Data  EventPayload `json:"data"`
}

// EventPayload holds the known payload fields plus an extension map for
// anything else the backend attaches. Known fields are only captured when
// the wire value is a string; other shapes stay in Extra.
type EventPayload struct {
	Delta    string
	Response string
	Tool     string
	Output   string
	Message  string
	Extra    map[string]any
}

// UnmarshalJSON decodes the payload, splitting known string fields from
// extension fields.
func (p *EventPayload) UnmarshalJSON(data []byte) error {
	raw := make(map[string]any)
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*p = EventPayload{}
	for key, value := range raw {
		if s, ok := value.(string); ok {
			switch key {
			case "delta":
				p.Delta = s
				continue
			case "response":
				p.Response = s
				continue
			case "tool":
				p.Tool = s
				continue
			case "output":
				p.Output = s
				continue
			case "message":
				p.Message = s
				continue
			}
		}
		if p.Extra == nil {
			p.Extra = make(map[string]any)
		}
		p.Extra[key] = value
	}
	return nil
}

// MarshalJSON re-merges known fields and extension fields. Empty known
// fields are omitted.
func (p EventPayload) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Extra)+5)
	for k, v := range p.Extra {
		out[k] = v
	}
	if p.Delta != "" {
		out["delta"] = p.Delta
	}
	if p.Response != "" {
		out["response"] = p.Response
	}
	if p.Tool != "" {
		out["tool"] = p.Tool
	}
	if p.Output != "" {
		out["output"] = p.Output
	}
	if p.Message != "" {
		out["message"] = p.Message
	}
	return json.Marshal(out)
}

// DecodeEvent parses one payload frame's text into a StreamEvent.
func DecodeEvent(text string) (*StreamEvent, error) {
	var ev StreamEvent
	if err := json.Unmarshal([]byte(text), &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}
