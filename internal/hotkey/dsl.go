// Package hotkey implements the binding DSL and the global key monitor.
// The monitor combines a gohook global hook with a registered macOS
// backend.
package hotkey

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/AustinKelsay/dicktaint/internal/engine/errs"
)

// Modifier is one modifier flag of a binding.
type Modifier int

const (
	// ModCmdOrCtrl matches Cmd on macOS and Ctrl elsewhere.
	ModCmdOrCtrl Modifier = iota
	ModCmd
	ModCtrl
	ModAlt
	ModShift
	ModSuper
)

// canonicalModOrder is the display order: CmdOrCtrl, Cmd, Ctrl, Alt, Shift,
// Super.
var canonicalModOrder = []Modifier{ModCmdOrCtrl, ModCmd, ModCtrl, ModAlt, ModShift, ModSuper}

var modNames = map[Modifier]string{
	ModCmdOrCtrl: "CmdOrCtrl",
	ModCmd:       "Cmd",
	ModCtrl:      "Ctrl",
	ModAlt:       "Alt",
	ModShift:     "Shift",
	ModSuper:     "Super",
}

var modAliases = map[string]Modifier{
	"cmdorctrl":        ModCmdOrCtrl,
	"commandorcontrol": ModCmdOrCtrl,
	"cmd":              ModCmd,
	"command":          ModCmd,
	"ctrl":             ModCtrl,
	"control":          ModCtrl,
	"alt":              ModAlt,
	"option":           ModAlt,
	"shift":            ModShift,
	"super":            ModSuper,
	"win":              ModSuper,
	"meta":             ModSuper,
}

// Binding is the parsed form of a hotkey string: a modifier set plus one
// main key token in canonical spelling. The literal Fn key with no
// modifiers is the macOS specialization.
type Binding struct {
	Mods []Modifier
	Key  string
}

// IsFnOnly reports whether this is the bare-Fn macOS binding.
func (b Binding) IsFnOnly() bool {
	return b.Key == "Fn" && len(b.Mods) == 0
}

// HasMod reports whether the binding carries the given modifier.
func (b Binding) HasMod(m Modifier) bool {
	for _, mod := range b.Mods {
		if mod == m {
			return true
		}
	}
	return false
}

// Display renders the binding in canonical form: modifiers in the fixed
// order, then the key. Parse(Display(b)) always round-trips to b.
func (b Binding) Display() string {
	var parts []string
	for _, m := range canonicalModOrder {
		if b.HasMod(m) {
			parts = append(parts, modNames[m])
		}
	}
	parts = append(parts, b.Key)
	return strings.Join(parts, "+")
}

// ActiveOn reports whether the binding can fire on the given GOOS. A bare-Fn
// binding is stored everywhere but only active on macOS; elsewhere the
// caller surfaces HotkeyInactive.
func (b Binding) ActiveOn(goos string) error {
	if b.IsFnOnly() && goos != "darwin" {
		return errs.WithDetail(errs.ErrHotkeyInactive, goos, nil)
	}
	return nil
}

// Active applies ActiveOn to the running platform.
func (b Binding) Active() error {
	return b.ActiveOn(runtime.GOOS)
}

// Parse parses a binding string of the form "Mod+Mod+...+Key". Failures are
// HotkeyInvalid with a reason: empty tokens, unknown tokens, more than one
// main key, CmdOrCtrl combined with Cmd or Ctrl, or Fn combined with any
// modifier.
func Parse(s string) (Binding, error) {
	tokens := strings.Split(s, "+")
	var b Binding
	haveKey := false

	for _, token := range tokens {
		token = strings.TrimSpace(token)
		if token == "" {
			return Binding{}, invalid("empty token in binding")
		}

		if mod, ok := modAliases[strings.ToLower(token)]; ok {
			if !b.HasMod(mod) {
				b.Mods = append(b.Mods, mod)
			}
			continue
		}

		key, ok := canonicalKey(token)
		if !ok {
			return Binding{}, invalid(fmt.Sprintf("unknown token %q", token))
		}
		if haveKey {
			return Binding{}, invalid("multiple main keys")
		}
		haveKey = true
		b.Key = key
	}

	if !haveKey {
		return Binding{}, invalid("no main key")
	}
	if b.HasMod(ModCmdOrCtrl) && (b.HasMod(ModCmd) || b.HasMod(ModCtrl)) {
		return Binding{}, invalid("CmdOrCtrl cannot be combined with Cmd or Ctrl")
	}
	if b.Key == "Fn" && len(b.Mods) > 0 {
		return Binding{}, invalid("Fn must stand alone")
	}

	// Normalize stored order to the canonical one so equal bindings compare
	// equal regardless of the order the user typed the modifiers.
	var ordered []Modifier
	for _, m := range canonicalModOrder {
		if b.HasMod(m) {
			ordered = append(ordered, m)
		}
	}
	b.Mods = ordered

	return b, nil
}

func invalid(reason string) error {
	return errs.WithDetail(errs.ErrHotkeyInvalid, reason, nil)
}

// namedKeys are the non-alphanumeric key tokens in canonical spelling.
var namedKeys = []string{
	"Space", "Tab", "Enter", "Escape",
	"Up", "Down", "Left", "Right",
	"Home", "End", "PageUp", "PageDown",
	"Insert", "Delete", "Backspace",
	"Fn",
}

// canonicalKey maps a token to its canonical key spelling: A-Z, 0-9, F1-F24,
// or one of the named keys.
func canonicalKey(token string) (string, bool) {
	up := strings.ToUpper(token)

	if len(up) == 1 {
		c := up[0]
		if (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			return up, true
		}
		return "", false
	}

	if fn, ok := functionKey(up); ok {
		return fn, true
	}

	for _, name := range namedKeys {
		if strings.EqualFold(name, token) {
			return name, true
		}
	}
	return "", false
}

// functionKey recognizes F1 through F24.
func functionKey(up string) (string, bool) {
	if len(up) < 2 || len(up) > 3 || up[0] != 'F' {
		return "", false
	}
	n := 0
	for _, c := range up[1:] {
		if c < '0' || c > '9' {
			return "", false
		}
		n = n*10 + int(c-'0')
	}
	if n < 1 || n > 24 {
		return "", false
	}
	return up, true
}
