package hotkey

import (
	"errors"
	"testing"

	"github.com/AustinKelsay/dicktaint/internal/engine/errs"
)

func TestParseValidBindings(t *testing.T) {
	cases := []struct {
		in   string
		want string // canonical display form
	}{
		{"CmdOrCtrl+Shift+D", "CmdOrCtrl+Shift+D"},
		{"cmdorctrl+shift+d", "CmdOrCtrl+Shift+D"},
		{"Shift+CmdOrCtrl+D", "CmdOrCtrl+Shift+D"},
		{"ctrl+alt+Space", "Ctrl+Alt+Space"},
		{"option+f5", "Alt+F5"},
		{"Super+Enter", "Super+Enter"},
		{"win+tab", "Super+Tab"},
		{"Cmd+Shift+9", "Cmd+Shift+9"},
		{"F24", "F24"},
		{"pageup", "PageUp"},
		{"Fn", "Fn"},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			b, err := Parse(tc.in)
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tc.in, err)
			}
			if got := b.Display(); got != tc.want {
				t.Errorf("Display() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestParseInvalidBindings(t *testing.T) {
	cases := []string{
		"",
		"+",
		"Ctrl+",
		"Ctrl++D",
		"A+B",              // two main keys
		"CmdOrCtrl+Ctrl+D", // CmdOrCtrl combined with Ctrl
		"CmdOrCtrl+Cmd+D",
		"Shift+Fn", // Fn must stand alone
		"Ctrl+Shift",
		"Ctrl+Banana",
		"F25",
		"F0",
	}

	for _, in := range cases {
		t.Run(in, func(t *testing.T) {
			if _, err := Parse(in); !errors.Is(err, errs.ErrHotkeyInvalid) {
				t.Errorf("Parse(%q) = %v, want HotkeyInvalid", in, err)
			}
		})
	}
}

// Canonicalization is idempotent: parse(display(b)) = b.
func TestDisplayParseRoundTrip(t *testing.T) {
	inputs := []string{
		"CmdOrCtrl+Shift+D",
		"shift+ctrl+a",
		"super+alt+F12",
		"Space",
		"Fn",
		"cmd+Backspace",
	}

	for _, in := range inputs {
		b, err := Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", in, err)
		}
		again, err := Parse(b.Display())
		if err != nil {
			t.Fatalf("re-parsing %q failed: %v", b.Display(), err)
		}
		if again.Display() != b.Display() {
			t.Errorf("round trip changed binding: %q -> %q", b.Display(), again.Display())
		}
		if again.Key != b.Key || len(again.Mods) != len(b.Mods) {
			t.Errorf("round trip changed structure for %q", in)
		}
	}
}

func TestFnActiveOnlyOnDarwin(t *testing.T) {
	b, err := Parse("Fn")
	if err != nil {
		t.Fatalf("Parse(Fn) failed: %v", err)
	}
	if err := b.ActiveOn("darwin"); err != nil {
		t.Errorf("expected Fn active on darwin, got %v", err)
	}
	if err := b.ActiveOn("linux"); !errors.Is(err, errs.ErrHotkeyInactive) {
		t.Errorf("expected HotkeyInactive on linux, got %v", err)
	}
	if err := b.ActiveOn("windows"); !errors.Is(err, errs.ErrHotkeyInactive) {
		t.Errorf("expected HotkeyInactive on windows, got %v", err)
	}
}

func TestRegularBindingActiveEverywhere(t *testing.T) {
	b, err := Parse("CmdOrCtrl+Shift+D")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	for _, goos := range []string{"darwin", "linux", "windows"} {
		if err := b.ActiveOn(goos); err != nil {
			t.Errorf("expected binding active on %s, got %v", goos, err)
		}
	}
}
