package overlay

import (
	"fmt"
	"testing"
)

type fakeWindow struct {
	status Status
	closed bool
}

func (f *fakeWindow) SetStatus(s Status) { f.status = s }
func (f *fakeWindow) Close()             { f.closed = true }

type fakeFleet struct {
	created map[string]*fakeWindow
}

func newFakeFleet() *fakeFleet {
	return &fakeFleet{created: map[string]*fakeWindow{}}
}

func (f *fakeFleet) factory(mon Monitor) Window {
	w := &fakeWindow{}
	f.created[mon.ID] = w
	return w
}

func monitors(n int) []Monitor {
	out := make([]Monitor, n)
	for i := range out {
		out[i] = Monitor{ID: fmt.Sprintf("mon-%d", i), Name: fmt.Sprintf("Display %d", i)}
	}
	return out
}

func TestRefreshCreatesOnePerMonitor(t *testing.T) {
	fleet := newFakeFleet()
	m := NewManager(fleet.factory, 6)

	m.Refresh(monitors(3))
	if m.Count() != 3 {
		t.Errorf("expected 3 windows, got %d", m.Count())
	}
}

func TestRefreshHonorsCap(t *testing.T) {
	fleet := newFakeFleet()
	m := NewManager(fleet.factory, 6)

	m.Refresh(monitors(9))
	if m.Count() != 6 {
		t.Errorf("expected the 6-window cap, got %d", m.Count())
	}
}

func TestRefreshRemovesDepartedMonitors(t *testing.T) {
	fleet := newFakeFleet()
	m := NewManager(fleet.factory, 6)

	m.Refresh(monitors(3))
	m.Refresh(monitors(1))

	if m.Count() != 1 {
		t.Errorf("expected 1 window after unplug, got %d", m.Count())
	}
	if !fleet.created["mon-2"].closed {
		t.Error("expected departed monitor's window to be closed")
	}
	if fleet.created["mon-0"].closed {
		t.Error("expected surviving monitor's window to stay open")
	}
}

func TestRefreshReusesExistingWindows(t *testing.T) {
	fleet := newFakeFleet()
	m := NewManager(fleet.factory, 6)

	m.Refresh(monitors(2))
	first := fleet.created["mon-0"]
	m.Refresh(monitors(2))

	if fleet.created["mon-0"] != first {
		t.Error("expected the window to be reused, not recreated")
	}
}

func TestPublishReachesAllWindowsAndLateJoiners(t *testing.T) {
	fleet := newFakeFleet()
	m := NewManager(fleet.factory, 6)

	m.Refresh(monitors(2))
	status := Status{Message: "Listening", State: PillLive, Visible: true}
	m.Publish(status)

	for id, w := range fleet.created {
		if w.status != status {
			t.Errorf("window %s missed the publish: %+v", id, w.status)
		}
	}

	// A monitor plugged in after the publish starts with the last status.
	m.Refresh(monitors(3))
	if fleet.created["mon-2"].status != status {
		t.Errorf("late window did not receive last status: %+v", fleet.created["mon-2"].status)
	}
}

func TestCloseTearsDownFleet(t *testing.T) {
	fleet := newFakeFleet()
	m := NewManager(fleet.factory, 6)
	m.Refresh(monitors(2))
	m.Close()

	if m.Count() != 0 {
		t.Errorf("expected no windows after Close, got %d", m.Count())
	}
	for id, w := range fleet.created {
		if !w.closed {
			t.Errorf("window %s not closed", id)
		}
	}
}
