// Package capture implements the single-slot microphone recorder: an
// Idle → Starting → Recording → Stopping state machine over a pluggable
// audio backend, with signal conditioning applied at stop.
package capture

import (
	"sync"
	"time"

	"github.com/AustinKelsay/dicktaint/internal/engine/errs"
	"github.com/AustinKelsay/dicktaint/pkg/logger"
)

// State is the engine's lifecycle position.
type State int

const (
	// StateIdle means no session exists.
	StateIdle State = iota
	// StateStarting means the mic-open handshake is in flight.
	StateStarting
	// StateRecording means samples are accumulating.
	StateRecording
	// StateStopping means the stream is being joined and conditioned.
	StateStopping
)

// CapturedAudio is the conditioned result of a stop: 16kHz mono float32
// samples ready for the transcription driver.
type CapturedAudio struct {
	Samples    []float32
	SampleRate int
	Duration   time.Duration
}

// Engine is the single-slot recorder. All public methods are safe for
// concurrent use; the audio callback appends under a separate buffer mutex
// held only for the append.
type Engine struct {
	backend     Backend
	openTimeout time.Duration

	mu      sync.Mutex
	state   State
	session *Session

	// bufMu guards session appends from the audio thread. The control side
	// never holds both mutexes at once.
	bufMu sync.Mutex

	// startGen invalidates a late mic-open completion after a timeout or
	// cancel already returned the engine to idle.
	startGen uint64
}

// NewEngine returns an Engine over the given backend. openTimeout bounds the
// Start handshake; pass Config.MicOpenTimeoutMS converted by the caller.
func NewEngine(backend Backend, openTimeout time.Duration) *Engine {
	if openTimeout <= 0 {
		openTimeout = 5 * time.Second
	}
	return &Engine{backend: backend, openTimeout: openTimeout}
}

// State reports the current lifecycle position.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Start opens the microphone and begins accumulating samples. It blocks the
// caller until the stream is confirmed live or the open timeout elapses. A
// second Start while starting or recording fails with AlreadyRunning.
func (e *Engine) Start() error {
	e.mu.Lock()
	if e.state != StateIdle {
		e.mu.Unlock()
		return errs.ErrAlreadyRunning
	}
	e.state = StateStarting
	e.startGen++
	gen := e.startGen
	e.mu.Unlock()

	type openResult struct {
		info StreamInfo
		err  error
	}
	done := make(chan openResult, 1)

	// The session is created only after Open reports the stream format;
	// frames the callback receives before then are dropped.
	go func() {
		info, err := e.backend.Open(func(f Frame) {
			e.bufMu.Lock()
			if e.session != nil {
				e.session.appendFrame(f)
			}
			e.bufMu.Unlock()
		})
		done <- openResult{info: info, err: err}
	}()

	select {
	case res := <-done:
		e.mu.Lock()
		if e.startGen != gen || e.state != StateStarting {
			// A cancel raced the open; tear the stream back down.
			e.mu.Unlock()
			if res.err == nil {
				e.backend.Close()
			}
			return errs.MicOpenFailed("canceled during warm-up")
		}
		if res.err != nil {
			e.state = StateIdle
			e.mu.Unlock()
			return errs.MicOpenFailed(res.err.Error())
		}
		e.bufMu.Lock()
		e.session = newSession(res.info)
		e.bufMu.Unlock()
		e.state = StateRecording
		e.mu.Unlock()
		logger.Info(logger.CategoryCapture, "recording started: %0.fHz, %d channel(s), %s",
			res.info.SampleRate, res.info.Channels, res.info.Format)
		return nil

	case <-time.After(e.openTimeout):
		e.mu.Lock()
		e.startGen++ // invalidate the in-flight open
		e.state = StateIdle
		e.mu.Unlock()
		// Reap the stream whenever the open eventually completes.
		go func() {
			if res := <-done; res.err == nil {
				e.backend.Close()
			}
		}()
		logger.Error(logger.CategoryCapture, "mic open exceeded %s warm-up budget", e.openTimeout)
		return errs.MicOpenFailed("timeout")
	}
}

// Stop joins the stream, moves the session out of the engine, and runs the
// signal conditioning pass. Calling Stop while idle or still starting
// returns NotRunning.
func (e *Engine) Stop() (CapturedAudio, error) {
	e.mu.Lock()
	if e.state != StateRecording {
		e.mu.Unlock()
		return CapturedAudio{}, errs.ErrNotRunning
	}
	e.state = StateStopping
	e.mu.Unlock()

	if err := e.backend.Close(); err != nil {
		logger.Warning(logger.CategoryCapture, "error closing audio stream: %v", err)
	}

	e.bufMu.Lock()
	session := e.session
	e.session = nil
	e.bufMu.Unlock()

	e.mu.Lock()
	e.state = StateIdle
	e.mu.Unlock()

	if session == nil {
		return CapturedAudio{}, errs.ErrNotRunning
	}
	logger.Info(logger.CategoryCapture, "recording stopped after %s with %d raw samples",
		time.Since(session.StartedAt).Round(time.Millisecond), session.sampleCount())

	return Condition(session)
}

// Cancel discards the active session from any state. It is always safe and a
// no-op when idle.
func (e *Engine) Cancel() {
	e.mu.Lock()
	if e.state == StateIdle {
		e.mu.Unlock()
		return
	}
	wasStarting := e.state == StateStarting
	e.startGen++
	e.state = StateIdle
	e.mu.Unlock()

	if !wasStarting {
		// A starting stream is reaped by Start's own goroutine once the open
		// handshake resolves.
		e.backend.Close()
	}

	e.bufMu.Lock()
	e.session = nil
	e.bufMu.Unlock()

	logger.Info(logger.CategoryCapture, "recording canceled, samples discarded")
}
