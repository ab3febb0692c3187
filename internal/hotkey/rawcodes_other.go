//go:build !darwin && !windows

package hotkey

// rawcodes maps named key tokens to X11 keycodes under the standard evdev
// layout, which is what the global hook reports on Linux and the BSDs.
var rawcodes = map[string]uint16{
	"Space":     65,
	"Tab":       23,
	"Enter":     36,
	"Escape":    9,
	"Left":      113,
	"Right":     114,
	"Up":        111,
	"Down":      116,
	"Home":      110,
	"End":       115,
	"PageUp":    112,
	"PageDown":  117,
	"Insert":    118,
	"Delete":    119,
	"Backspace": 22,
	"F1":        67,
	"F2":        68,
	"F3":        69,
	"F4":        70,
	"F5":        71,
	"F6":        72,
	"F7":        73,
	"F8":        74,
	"F9":        75,
	"F10":       76,
	"F11":       95,
	"F12":       96,
	"F13":       191,
	"F14":       192,
	"F15":       193,
	"F16":       194,
	"F17":       195,
	"F18":       196,
	"F19":       197,
	"F20":       198,
	"F21":       199,
	"F22":       200,
	"F23":       201,
	"F24":       202,
}

func rawcodeFor(key string) (uint16, bool) {
	code, ok := rawcodes[key]
	return code, ok
}
