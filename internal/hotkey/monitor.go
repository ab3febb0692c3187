package hotkey

import (
	"runtime"
	"strings"
	"sync"

	hook "github.com/robotn/gohook"

	"github.com/AustinKelsay/dicktaint/pkg/logger"
)

// EdgeKind is a key transition direction.
type EdgeKind int

const (
	// EdgeDown is the press transition.
	EdgeDown EdgeKind = iota
	// EdgeUp is the release transition.
	EdgeUp
)

// Edge is one detected transition of the bound combination.
type Edge struct {
	Kind EdgeKind
}

// edgeSource delivers raw down/up transitions for a binding. The registered
// macOS backend and the gohook global hook both implement it, so the Monitor
// (and its tests) never touch platform APIs directly.
type edgeSource interface {
	Start(b Binding, emit func(EdgeKind)) error
	Stop()
}

// Monitor edge-detects one binding and publishes transitions on a channel.
// At most one Monitor runs per process; the daemon owns it and hands its
// edges to the coordinator.
type Monitor struct {
	mu      sync.Mutex
	binding Binding
	source  edgeSource
	edges   chan Edge
	running bool

	// pressed dedupes OS key-repeat so only genuine transitions emit.
	pressed bool

	// newSource picks the platform path; swapped in tests.
	newSource func(b Binding) (edgeSource, error)
}

// NewMonitor returns an inactive Monitor for the binding.
func NewMonitor(b Binding) *Monitor {
	return &Monitor{
		binding:   b,
		edges:     make(chan Edge, 8),
		newSource: defaultSource,
	}
}

// Edges is the transition channel. Buffered: a slow consumer drops edges
// rather than blocking the hook thread.
func (m *Monitor) Edges() <-chan Edge {
	return m.edges
}

// Start begins global monitoring. A bare-Fn binding on a non-mac host
// returns HotkeyInactive and the monitor stays stopped.
func (m *Monitor) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return nil
	}
	if err := m.binding.Active(); err != nil {
		return err
	}

	source, err := m.newSource(m.binding)
	if err != nil {
		return err
	}
	if err := source.Start(m.binding, m.emit); err != nil {
		// Registration conflicts (another app owns the combo) fall back to
		// the global hook rather than failing the monitor outright.
		if m.binding.IsFnOnly() {
			return err
		}
		fallback := newHookSource()
		if ferr := fallback.Start(m.binding, m.emit); ferr != nil {
			return err
		}
		logger.Warning(logger.CategoryHotkey, "edge source failed (%v), using global hook for %s", err, m.binding.Display())
		source = fallback
	}
	m.source = source
	m.running = true
	logger.Info(logger.CategoryHotkey, "monitoring %s", m.binding.Display())
	return nil
}

// Stop halts monitoring. Safe to call when not running.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}
	m.source.Stop()
	m.source = nil
	m.running = false
	m.pressed = false
	logger.Info(logger.CategoryHotkey, "stopped monitoring %s", m.binding.Display())
}

// emit publishes a transition, deduplicating repeats: a Down while already
// pressed (key repeat) and an Up while not pressed are both dropped.
func (m *Monitor) emit(kind EdgeKind) {
	m.mu.Lock()
	switch kind {
	case EdgeDown:
		if m.pressed {
			m.mu.Unlock()
			return
		}
		m.pressed = true
	case EdgeUp:
		if !m.pressed {
			m.mu.Unlock()
			return
		}
		m.pressed = false
	}
	m.mu.Unlock()

	select {
	case m.edges <- Edge{Kind: kind}:
	default:
		logger.Warning(logger.CategoryHotkey, "edge channel full, dropping %v", kind)
	}
}

// defaultSource picks the platform edge path: bare Fn uses the macOS
// flags-watcher, regular bindings prefer the registered OS hotkey backend on
// macOS and fall back to the gohook global hook everywhere.
func defaultSource(b Binding) (edgeSource, error) {
	if b.IsFnOnly() {
		return newFnSource(), nil
	}
	if runtime.GOOS == "darwin" {
		if reg, ok := newRegisteredSource(b); ok {
			return reg, nil
		}
	}
	return newHookSource(), nil
}

// hookSource is the process-wide key hook path: it matches a parsed
// Binding against the hook's event stream and reports both down and up
// edges.
type hookSource struct {
	stopCh chan struct{}
	done   chan struct{}
}

func newHookSource() *hookSource {
	return &hookSource{}
}

func (h *hookSource) Start(b Binding, emit func(EdgeKind)) error {
	h.stopCh = make(chan struct{})
	h.done = make(chan struct{})

	go func() {
		defer close(h.done)
		evChan := hook.Start()
		defer hook.End()

		for {
			select {
			case <-h.stopCh:
				return
			case ev, ok := <-evChan:
				if !ok {
					return
				}
				switch ev.Kind {
				case hook.KeyDown, hook.KeyHold:
					if eventMatches(ev, b) {
						emit(EdgeDown)
					}
				case hook.KeyUp:
					if keyMatches(ev, b) {
						emit(EdgeUp)
					}
				}
			}
		}
	}()
	return nil
}

func (h *hookSource) Stop() {
	if h.stopCh == nil {
		return
	}
	close(h.stopCh)
	<-h.done
	h.stopCh = nil
}

// eventMatches requires both the main key and every bound modifier.
func eventMatches(ev hook.Event, b Binding) bool {
	return keyMatches(ev, b) && modifiersMatch(ev, b)
}

// keyMatches compares the event's key against the binding's main key token.
func keyMatches(ev hook.Event, b Binding) bool {
	if code, ok := rawcodeFor(b.Key); ok {
		return ev.Rawcode == code
	}
	if len(b.Key) == 1 {
		ch := string(ev.Keychar)
		return len(ch) == 1 && strings.EqualFold(ch, b.Key)
	}
	return false
}

// modifiersMatch checks the hook's modifier bits against the binding
// (ctrl, shift, alt, meta), accepting either the left or right key.
func modifiersMatch(ev hook.Event, b Binding) bool {
	shift := ev.Mask&(1<<0|1<<4) != 0
	ctrl := ev.Mask&(1<<1|1<<5) != 0
	meta := ev.Mask&(1<<2|1<<6) != 0
	alt := ev.Mask&(1<<3|1<<7) != 0

	for _, m := range b.Mods {
		switch m {
		case ModCtrl:
			if !ctrl {
				return false
			}
		case ModShift:
			if !shift {
				return false
			}
		case ModAlt:
			if !alt {
				return false
			}
		case ModCmd, ModSuper:
			if !meta {
				return false
			}
		case ModCmdOrCtrl:
			want := ctrl
			if runtime.GOOS == "darwin" {
				want = meta
			}
			if !want {
				return false
			}
		}
	}
	return true
}
