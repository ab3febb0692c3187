//go:build darwin

package hotkey

import (
	xhotkey "golang.design/x/hotkey"

	"github.com/AustinKelsay/dicktaint/pkg/logger"
)

// registeredSource drives a binding through the OS hotkey registration API
// instead of a global key hook. Its Keydown/Keyup channels deliver true
// transitions, so no repeat filtering is needed beyond the Monitor's own
// dedupe.
type registeredSource struct {
	hk     *xhotkey.Hotkey
	mods   []xhotkey.Modifier
	key    xhotkey.Key
	stopCh chan struct{}
	done   chan struct{}
}

// newRegisteredSource maps the binding onto the registration API. ok is
// false when the binding uses a key the API cannot express; the caller then
// falls back to the global hook.
func newRegisteredSource(b Binding) (edgeSource, bool) {
	key, ok := xKey(b.Key)
	if !ok {
		return nil, false
	}
	var mods []xhotkey.Modifier
	for _, m := range b.Mods {
		xm, ok := xMod(m)
		if !ok {
			return nil, false
		}
		mods = append(mods, xm)
	}
	return &registeredSource{mods: mods, key: key}, true
}

func (r *registeredSource) Start(b Binding, emit func(EdgeKind)) error {
	r.hk = xhotkey.New(r.mods, r.key)
	if err := r.hk.Register(); err != nil {
		r.hk = nil
		logger.Warning(logger.CategoryHotkey, "OS hotkey registration failed for %s: %v", b.Display(), err)
		return err
	}

	r.stopCh = make(chan struct{})
	r.done = make(chan struct{})
	down := r.hk.Keydown()
	up := r.hk.Keyup()

	go func() {
		defer close(r.done)
		for {
			select {
			case <-r.stopCh:
				return
			case _, ok := <-down:
				if !ok {
					return
				}
				emit(EdgeDown)
			case _, ok := <-up:
				if !ok {
					return
				}
				emit(EdgeUp)
			}
		}
	}()
	return nil
}

func (r *registeredSource) Stop() {
	if r.hk != nil {
		_ = r.hk.Unregister()
		r.hk = nil
	}
	if r.stopCh != nil {
		close(r.stopCh)
		<-r.done
		r.stopCh = nil
	}
}

func xMod(m Modifier) (xhotkey.Modifier, bool) {
	switch m {
	case ModCmdOrCtrl, ModCmd, ModSuper:
		return xhotkey.ModCmd, true
	case ModCtrl:
		return xhotkey.ModCtrl, true
	case ModAlt:
		return xhotkey.ModOption, true
	case ModShift:
		return xhotkey.ModShift, true
	default:
		return 0, false
	}
}

// xKey covers the keys the registration API expresses on macOS; anything
// else (arrows, paging keys, Fn) stays on the hook path.
func xKey(key string) (xhotkey.Key, bool) {
	letters := map[string]xhotkey.Key{
		"A": xhotkey.KeyA, "B": xhotkey.KeyB, "C": xhotkey.KeyC, "D": xhotkey.KeyD,
		"E": xhotkey.KeyE, "F": xhotkey.KeyF, "G": xhotkey.KeyG, "H": xhotkey.KeyH,
		"I": xhotkey.KeyI, "J": xhotkey.KeyJ, "K": xhotkey.KeyK, "L": xhotkey.KeyL,
		"M": xhotkey.KeyM, "N": xhotkey.KeyN, "O": xhotkey.KeyO, "P": xhotkey.KeyP,
		"Q": xhotkey.KeyQ, "R": xhotkey.KeyR, "S": xhotkey.KeyS, "T": xhotkey.KeyT,
		"U": xhotkey.KeyU, "V": xhotkey.KeyV, "W": xhotkey.KeyW, "X": xhotkey.KeyX,
		"Y": xhotkey.KeyY, "Z": xhotkey.KeyZ,
		"0": xhotkey.Key0, "1": xhotkey.Key1, "2": xhotkey.Key2, "3": xhotkey.Key3,
		"4": xhotkey.Key4, "5": xhotkey.Key5, "6": xhotkey.Key6, "7": xhotkey.Key7,
		"8": xhotkey.Key8, "9": xhotkey.Key9,
		"F1": xhotkey.KeyF1, "F2": xhotkey.KeyF2, "F3": xhotkey.KeyF3, "F4": xhotkey.KeyF4,
		"F5": xhotkey.KeyF5, "F6": xhotkey.KeyF6, "F7": xhotkey.KeyF7, "F8": xhotkey.KeyF8,
		"F9": xhotkey.KeyF9, "F10": xhotkey.KeyF10, "F11": xhotkey.KeyF11, "F12": xhotkey.KeyF12,
		"Space": xhotkey.KeySpace,
		"Tab":   xhotkey.KeyTab,
		"Enter": xhotkey.KeyReturn,
	}
	k, ok := letters[key]
	return k, ok
}
