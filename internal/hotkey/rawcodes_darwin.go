//go:build darwin

package hotkey

// rawcodes maps named key tokens to macOS virtual keycodes (HIToolbox
// kVK_* values), used to match gohook events for keys with no character.
var rawcodes = map[string]uint16{
	"Space":     49,
	"Tab":       48,
	"Enter":     36,
	"Escape":    53,
	"Left":      123,
	"Right":     124,
	"Down":      125,
	"Up":        126,
	"Home":      115,
	"End":       119,
	"PageUp":    116,
	"PageDown":  121,
	"Insert":    114, // the Help key position on Apple keyboards
	"Delete":    117,
	"Backspace": 51,
	"Fn":        63,
	"F1":        122,
	"F2":        120,
	"F3":        99,
	"F4":        118,
	"F5":        96,
	"F6":        97,
	"F7":        98,
	"F8":        100,
	"F9":        101,
	"F10":       109,
	"F11":       103,
	"F12":       111,
	"F13":       105,
	"F14":       107,
	"F15":       113,
	"F16":       106,
	"F17":       64,
	"F18":       79,
	"F19":       80,
	"F20":       90,
}

func rawcodeFor(key string) (uint16, bool) {
	code, ok := rawcodes[key]
	return code, ok
}
