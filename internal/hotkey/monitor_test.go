package hotkey

import (
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/AustinKelsay/dicktaint/internal/engine/errs"
)

// fakeSource lets tests drive edges into the Monitor by hand.
type fakeSource struct {
	emit    func(EdgeKind)
	stopped bool
}

func (f *fakeSource) Start(_ Binding, emit func(EdgeKind)) error {
	f.emit = emit
	return nil
}

func (f *fakeSource) Stop() { f.stopped = true }

func newTestMonitor(t *testing.T, bindingStr string) (*Monitor, *fakeSource) {
	t.Helper()
	b, err := Parse(bindingStr)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	src := &fakeSource{}
	m := NewMonitor(b)
	m.newSource = func(Binding) (edgeSource, error) { return src, nil }
	return m, src
}

func collectEdges(m *Monitor, n int) []Edge {
	var out []Edge
	timeout := time.After(time.Second)
	for len(out) < n {
		select {
		case e := <-m.Edges():
			out = append(out, e)
		case <-timeout:
			return out
		}
	}
	return out
}

func TestMonitorEmitsDownUpCycle(t *testing.T) {
	m, src := newTestMonitor(t, "Ctrl+Shift+D")
	if err := m.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer m.Stop()

	src.emit(EdgeDown)
	src.emit(EdgeUp)

	edges := collectEdges(m, 2)
	if len(edges) != 2 || edges[0].Kind != EdgeDown || edges[1].Kind != EdgeUp {
		t.Errorf("expected down then up, got %v", edges)
	}
}

func TestMonitorDedupesKeyRepeat(t *testing.T) {
	m, src := newTestMonitor(t, "Ctrl+Shift+D")
	if err := m.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer m.Stop()

	// OS key repeat delivers a stream of downs before the single up.
	src.emit(EdgeDown)
	src.emit(EdgeDown)
	src.emit(EdgeDown)
	src.emit(EdgeUp)
	src.emit(EdgeUp)

	edges := collectEdges(m, 2)
	if len(edges) != 2 {
		t.Fatalf("expected exactly 2 edges after dedupe, got %d", len(edges))
	}

	// No further edges should arrive.
	select {
	case e := <-m.Edges():
		t.Errorf("unexpected extra edge %v", e)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMonitorStopReleasesSource(t *testing.T) {
	m, src := newTestMonitor(t, "Ctrl+Shift+D")
	if err := m.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	m.Stop()
	if !src.stopped {
		t.Error("expected source to be stopped")
	}
	// Stop again is a no-op.
	m.Stop()
}

func TestMonitorFnInactiveOffMac(t *testing.T) {
	if runtime.GOOS == "darwin" {
		t.Skip("Fn is active on darwin")
	}
	b, err := Parse("Fn")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	m := NewMonitor(b)
	if err := m.Start(); !errors.Is(err, errs.ErrHotkeyInactive) {
		t.Errorf("expected HotkeyInactive starting Fn monitor off-mac, got %v", err)
	}
}
