package investigate

import (
	"time"

	"github.com/kart-io/logger"
)

// Callbacks receives everything a stream instance emits. Nil members are
// skipped. Calls arrive on the goroutine running Stream.Run, strictly in
// wire order; at most one of OnComplete/OnError fires per stream, and
// nothing fires after cancellation is observed.
type Callbacks struct {
	// OnAdd delivers a freshly created entry on a channel.
	OnAdd func(ch Channel, entry LogEntry)

	// OnUpdate delivers the full replacement message for the open entry.
	OnUpdate func(ch Channel, id string, message string)

	// OnComplete delivers the final aggregated result, empty if the
	// reasoning source never produced one.
	OnComplete func(result string)

	// OnError delivers the single fatal transport error.
	OnError func(err error)
}

func (c Callbacks) add(ch Channel, entry LogEntry) {
	if c.OnAdd != nil {
		c.OnAdd(ch, entry)
	}
}

func (c Callbacks) update(ch Channel, id, message string) {
	if c.OnUpdate != nil {
		c.OnUpdate(ch, id, message)
	}
}

func (c Callbacks) complete(result string) {
	if c.OnComplete != nil {
		c.OnComplete(result)
	}
}

func (c Callbacks) fail(err error) {
	if c.OnError != nil {
		c.OnError(err)
	}
}

// channelState is the accumulator for one channel. An empty openID means
// Idle; otherwise the entry openID is streaming and text is its content so
// far. At most one entry is open per channel.
type channelState struct {
	openID string
	text   string
}

// Demux routes decoded events to channels, accumulates streamed text, tracks
// the aggregated result, and collapses the completion triggers to a single
// callback. It is owned by one Stream and is not safe for concurrent use.
type Demux struct {
	cb       Callbacks
	ids      *idGenerator
	channels map[Channel]*channelState

	result    string
	completed bool

	now func() time.Time
}

// NewDemux creates a demultiplexer delivering to cb.
func NewDemux(cb Callbacks) *Demux {
	return &Demux{
		cb:  cb,
		ids: newIDGenerator(),
		channels: map[Channel]*channelState{
			ChannelGitHub:     {},
			ChannelCloudWatch: {},
			ChannelSlack:      {},
		},
		now: time.Now,
	}
}

// HandleData decodes one payload frame and dispatches it. Malformed frames
// are logged and dropped; the stream continues.
func (d *Demux) HandleData(text string) {
	ev, err := DecodeEvent(text)
	if err != nil {
		logger.Warnw("Dropping malformed stream event", "error", err)
		return
	}
	d.HandleEvent(ev)
}

// HandleEvent routes one decoded event.
func (d *Demux) HandleEvent(ev *StreamEvent) {
	if ev.Phase == 2 {
		d.handlePhase2(ev)
		return
	}

	ch, ok := channelFor(ev.Agent)
	if !ok {
		return
	}
	d.accumulate(ch, ev)
}

// handlePhase2 observes reasoning-phase events. They never reach a channel:
// agent_complete captures the aggregated result, phase_complete triggers
// completion, everything else is ignored.
func (d *Demux) handlePhase2(ev *StreamEvent) {
	switch ev.Event {
	case EventAgentComplete:
		if ev.Data.Response != "" {
			d.result = ev.Data.Response
		}
	case EventPhaseComplete:
		d.Complete()
	}
}

func channelFor(agent SourceAgent) (Channel, bool) {
	switch agent {
	case AgentGitHub:
		return ChannelGitHub, true
	case AgentCloudWatch:
		return ChannelCloudWatch, true
	case AgentSlack:
		return ChannelSlack, true
	default:
		return "", false
	}
}

// accumulate runs the per-channel text state machine.
func (d *Demux) accumulate(ch Channel, ev *StreamEvent) {
	state := d.channels[ch]

	switch ev.Event {
	case EventTextStart:
		// An already-open entry is abandoned as-is; its last update stands.
		entry := d.newEntry(LevelInfo, "")
		state.openID = entry.ID
		state.text = ""
		d.cb.add(ch, entry)

	case EventTextDelta:
		if state.openID == "" {
			return
		}
		state.text += ev.Data.Delta
		d.cb.update(ch, state.openID, state.text)

	case EventTextEnd:
		state.openID = ""
		state.text = ""

	default:
		msg := deriveMessage(ev)
		d.cb.add(ch, d.newEntry(levelFor(ev.Event, msg), msg))
	}
}

func (d *Demux) newEntry(level Level, message string) LogEntry {
	return LogEntry{
		ID:        d.ids.Next(),
		Timestamp: d.now().Format(timestampLayout),
		Level:     level,
		Message:   message,
	}
}

// Complete fires the completion callback once; later triggers are no-ops.
func (d *Demux) Complete() {
	if d.completed {
		return
	}
	d.completed = true
	d.cb.complete(d.result)
}

// Completed reports whether a completion trigger has fired.
func (d *Demux) Completed() bool {
	return d.completed
}

// Result returns the aggregated result captured so far.
func (d *Demux) Result() string {
	return d.result
}
