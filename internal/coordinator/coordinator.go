// Package coordinator wires hotkey edges to the capture/transcription
// lifecycle: a four-state machine with a StopRequested latch and a
// QueuedStart slot, publishing frontend events and overlay pill updates.
// Every full down→up cycle produces exactly one transcript or one error
// event, in the order the cycles begin.
package coordinator

import (
	"context"

	"github.com/AustinKelsay/dicktaint/internal/hotkey"
	"github.com/AustinKelsay/dicktaint/internal/overlay"
	"github.com/AustinKelsay/dicktaint/pkg/logger"
)

// Frontend event channels.
const (
	EventHotkeyTriggered = "dictation:hotkey-triggered"
	EventStateChanged    = "dictation:state-changed"
)

// StateChange is the EventStateChanged payload.
type StateChange struct {
	State      string `json:"state"` // idle | listening | processing | error
	Error      string `json:"error,omitempty"`
	Transcript string `json:"transcript,omitempty"`
}

// Publisher receives frontend events. The daemon binds this to its
// transport; tests record the stream.
type Publisher interface {
	Publish(event string, payload any)
}

// PillSink receives overlay updates; overlay.Manager satisfies it.
type PillSink interface {
	Publish(overlay.Status)
}

// Session is the capture+transcription pipeline the coordinator drives,
// implemented by the engine composition root.
type Session interface {
	// Start begins capture, blocking through the mic-open handshake.
	Start() error
	// StopAndTranscribe joins the stream and runs the CLI, returning the
	// cleaned transcript.
	StopAndTranscribe(ctx context.Context) (string, error)
	// Cancel discards any active capture.
	Cancel()
}

// State is the coordinator's position in the hotkey cycle.
type State int

const (
	StateIdle State = iota
	StateStartInFlight
	StateListening
	StateStopInFlight
)

type eventKind int

const (
	evEdgeDown eventKind = iota
	evEdgeUp
	evStartDone
	evStopDone
	evCancel
)

type event struct {
	kind       eventKind
	err        error
	transcript string
}

// Coordinator owns the state machine. All transitions happen on the Run
// loop goroutine (the control task); public methods only post events.
type Coordinator struct {
	session Session
	pub     Publisher
	pills   PillSink

	// OnTranscript, when set, receives each successful transcript after the
	// state-changed event is published. The session's StopAndTranscribe has
	// already appended and inserted the transcript; the daemon uses this hook
	// to refresh its draft view.
	OnTranscript func(text string)

	events chan event
	stopCh chan struct{}

	state         State
	stopRequested bool
	queuedStart   bool
}

// New returns a Coordinator over the given session and sinks.
func New(session Session, pub Publisher, pills PillSink) *Coordinator {
	return &Coordinator{
		session: session,
		pub:     pub,
		pills:   pills,
		events:  make(chan event, 16),
		stopCh:  make(chan struct{}),
	}
}

// Run consumes hotkey edges until Stop is called. It is the control task:
// the only goroutine that mutates coordinator state.
func (c *Coordinator) Run(edges <-chan hotkey.Edge) {
	for {
		select {
		case <-c.stopCh:
			return
		case e, ok := <-edges:
			if !ok {
				return
			}
			switch e.Kind {
			case hotkey.EdgeDown:
				c.handle(event{kind: evEdgeDown})
			case hotkey.EdgeUp:
				c.handle(event{kind: evEdgeUp})
			}
		case ev := <-c.events:
			c.handle(ev)
		}
	}
}

// Stop terminates the Run loop.
func (c *Coordinator) Stop() {
	close(c.stopCh)
}

// Cancel discards the in-flight cycle from any state. Safe when idle.
func (c *Coordinator) Cancel() {
	select {
	case c.events <- event{kind: evCancel}:
	case <-c.stopCh:
	}
}

// handle applies one event to the state machine.
func (c *Coordinator) handle(ev event) {
	switch ev.kind {
	case evEdgeDown:
		c.onEdgeDown()
	case evEdgeUp:
		c.onEdgeUp()
	case evStartDone:
		c.onStartDone(ev.err)
	case evStopDone:
		c.onStopDone(ev.transcript, ev.err)
	case evCancel:
		c.onCancel()
	}
}

func (c *Coordinator) onEdgeDown() {
	switch c.state {
	case StateIdle:
		c.pub.Publish(EventHotkeyTriggered, nil)
		c.state = StateStartInFlight
		c.pills.Publish(overlay.Status{Message: "Starting…", State: overlay.PillWorking, Visible: true})
		go func() {
			err := c.session.Start()
			c.post(event{kind: evStartDone, err: err})
		}()
	case StateStopInFlight:
		// The next cycle begins before the current one drains; run it once
		// the in-flight stop completes.
		c.queuedStart = true
	}
}

func (c *Coordinator) onEdgeUp() {
	switch c.state {
	case StateStartInFlight:
		// A tap shorter than mic warm-up: latch the release instead of
		// dropping the cycle.
		c.stopRequested = true
	case StateListening:
		c.beginStop()
	case StateStopInFlight:
		// The release matching a queued start: latch it so the queued cycle
		// stops as soon as its warm-up completes.
		if c.queuedStart {
			c.stopRequested = true
		}
	}
}

func (c *Coordinator) onStartDone(err error) {
	if c.state != StateStartInFlight {
		// A cancel raced the mic-open; the session was already discarded.
		return
	}
	if err != nil {
		logger.Error(logger.CategoryHotkey, "capture start failed: %v", err)
		c.state = StateIdle
		c.stopRequested = false
		c.pub.Publish(EventStateChanged, StateChange{State: "error", Error: err.Error()})
		c.pills.Publish(overlay.Status{Message: "Mic error", State: overlay.PillError, Visible: true})
		return
	}

	c.state = StateListening
	c.pub.Publish(EventStateChanged, StateChange{State: "listening"})
	c.pills.Publish(overlay.Status{Message: "Listening", State: overlay.PillLive, Visible: true})

	if c.stopRequested {
		c.stopRequested = false
		c.beginStop()
	}
}

func (c *Coordinator) beginStop() {
	c.state = StateStopInFlight
	c.pub.Publish(EventStateChanged, StateChange{State: "processing"})
	c.pills.Publish(overlay.Status{Message: "Transcribing…", State: overlay.PillWorking, Visible: true})
	go func() {
		text, err := c.session.StopAndTranscribe(context.Background())
		c.post(event{kind: evStopDone, transcript: text, err: err})
	}()
}

func (c *Coordinator) onStopDone(transcript string, err error) {
	if c.state != StateStopInFlight {
		// Canceled mid-flight: the transcription completed but its output
		// is dropped.
		return
	}
	c.state = StateIdle

	if err != nil {
		c.pub.Publish(EventStateChanged, StateChange{State: "error", Error: err.Error()})
		c.pills.Publish(overlay.Status{Message: "No speech", State: overlay.PillError, Visible: true})
	} else {
		c.pub.Publish(EventStateChanged, StateChange{State: "idle", Transcript: transcript})
		c.pills.Publish(overlay.Status{Message: "Done", State: overlay.PillOK, Visible: false})
		if c.OnTranscript != nil {
			c.OnTranscript(transcript)
		}
	}

	if c.queuedStart {
		c.queuedStart = false
		c.onEdgeDown()
	}
}

func (c *Coordinator) onCancel() {
	if c.state == StateIdle {
		return
	}
	c.session.Cancel()
	c.state = StateIdle
	c.stopRequested = false
	c.queuedStart = false
	c.pub.Publish(EventStateChanged, StateChange{State: "idle"})
	c.pills.Publish(overlay.Status{Message: "Canceled", State: overlay.PillIdle, Visible: false})
}

// post delivers an async completion back to the control task.
func (c *Coordinator) post(ev event) {
	select {
	case c.events <- ev:
	case <-c.stopCh:
	}
}
