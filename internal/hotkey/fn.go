package hotkey

import (
	hook "github.com/robotn/gohook"
)

// fnRawcode is the macOS virtual keycode for the Fn key (kVK_Function).
const fnRawcode = 63

// fnSource watches the modifier-flags event stream for Fn transitions. It
// only ever runs on macOS (Binding.Active gates the other platforms) and
// dedupes against the last known state so flag-change repeats don't produce
// phantom edges.
type fnSource struct {
	stopCh  chan struct{}
	done    chan struct{}
	pressed bool
}

func newFnSource() *fnSource {
	return &fnSource{}
}

func (f *fnSource) Start(_ Binding, emit func(EdgeKind)) error {
	f.stopCh = make(chan struct{})
	f.done = make(chan struct{})

	go func() {
		defer close(f.done)
		evChan := hook.Start()
		defer hook.End()

		for {
			select {
			case <-f.stopCh:
				return
			case ev, ok := <-evChan:
				if !ok {
					return
				}
				if ev.Rawcode != fnRawcode {
					continue
				}
				switch ev.Kind {
				case hook.KeyDown, hook.KeyHold:
					if !f.pressed {
						f.pressed = true
						emit(EdgeDown)
					}
				case hook.KeyUp:
					if f.pressed {
						f.pressed = false
						emit(EdgeUp)
					}
				}
			}
		}
	}()
	return nil
}

func (f *fnSource) Stop() {
	if f.stopCh == nil {
		return
	}
	close(f.stopCh)
	<-f.done
	f.stopCh = nil
	f.pressed = false
}
