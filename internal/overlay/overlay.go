// Package overlay owns the per-monitor status pill windows: a capped
// fleet keyed by monitor id, reconciled against the monitor list passed to
// Manager.Refresh.
package overlay

import (
	"sync"

	"github.com/AustinKelsay/dicktaint/pkg/logger"
)

// PillState is the overlay's visual state.
type PillState string

const (
	PillIdle    PillState = "idle"
	PillWorking PillState = "working"
	PillLive    PillState = "live"
	PillOK      PillState = "ok"
	PillError   PillState = "error"
)

// Status is one pill update, broadcast to every overlay window.
type Status struct {
	Message string
	State   PillState
	Visible bool
}

// Monitor identifies one attached display.
type Monitor struct {
	ID   string
	Name string
}

// Window is one pill window. The fyne implementation lives in fyne.go;
// tests substitute a fake through the Manager's factory.
type Window interface {
	SetStatus(Status)
	Close()
}

// Manager owns the overlay records. It is safe for concurrent use; the
// coordinator publishes from its control task while Refresh may be called
// from another goroutine.
type Manager struct {
	factory func(Monitor) Window
	max     int

	mu      sync.Mutex
	windows map[string]Window
	last    Status
}

// NewManager returns a Manager creating windows through factory, keeping at
// most max windows (Config.MaxOverlays).
func NewManager(factory func(Monitor) Window, max int) *Manager {
	if max <= 0 {
		max = 6
	}
	return &Manager{
		factory: factory,
		max:     max,
		windows: map[string]Window{},
		last:    Status{State: PillIdle},
	}
}

// Refresh reconciles the window fleet against the current monitor list:
// new monitors get a window (up to the cap), departed monitors lose theirs.
// Existing windows are reused, not recreated.
func (m *Manager) Refresh(monitors []Monitor) {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := map[string]bool{}
	for i, mon := range monitors {
		if i >= m.max {
			logger.Warning(logger.CategoryOverlay, "monitor count exceeds overlay cap %d, ignoring %s", m.max, mon.ID)
			break
		}
		seen[mon.ID] = true
		if _, ok := m.windows[mon.ID]; ok {
			continue
		}
		w := m.factory(mon)
		w.SetStatus(m.last)
		m.windows[mon.ID] = w
		logger.Info(logger.CategoryOverlay, "created overlay for monitor %s", mon.ID)
	}

	for id, w := range m.windows {
		if !seen[id] {
			w.Close()
			delete(m.windows, id)
			logger.Info(logger.CategoryOverlay, "closed overlay for departed monitor %s", id)
		}
	}
}

// Publish pushes a status to every overlay window and remembers it for
// windows created by a later Refresh.
func (m *Manager) Publish(s Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = s
	for _, w := range m.windows {
		w.SetStatus(s)
	}
}

// Count reports the live window count.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.windows)
}

// Close tears down every window.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, w := range m.windows {
		w.Close()
		delete(m.windows, id)
	}
}
