// Package insert synthesizes transcript insertion into the focused external
// field: clipboard hand-off plus a platform paste keystroke. The clipboard
// path tries the native binding first and falls back to shelling out; the
// keystroke synthesis uses xdotool/wtype/ydotool on Linux and the
// system-events facility on macOS.
package insert

import (
	"fmt"
	"os/exec"
	"runtime"
	"time"

	"github.com/atotto/clipboard"

	"github.com/AustinKelsay/dicktaint/pkg/logger"
)

// restoreDelay gives the focused application time to read the clipboard
// before the previous contents are put back.
const restoreDelay = 300 * time.Millisecond

// runCommand is swapped in tests so no real keystrokes are synthesized.
var runCommand = func(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

// SetClipboard puts text on the system clipboard, trying the library first
// and shelling to the platform tools when it fails (containers and remote
// desktops often lack the primary path).
func SetClipboard(text string) error {
	err := clipboard.WriteAll(text)
	if err == nil {
		return nil
	}
	logger.Warning(logger.CategoryApp, "primary clipboard method failed: %v", err)

	switch runtime.GOOS {
	case "linux":
		if hasCommand("xclip") {
			if err := pipeToCommand(text, "xclip", "-selection", "clipboard"); err == nil {
				return nil
			}
		}
		if hasCommand("xsel") {
			if err := pipeToCommand(text, "xsel", "--clipboard", "--input"); err == nil {
				return nil
			}
		}
		if hasCommand("wl-copy") {
			if err := pipeToCommand(text, "wl-copy"); err == nil {
				return nil
			}
		}
	case "darwin":
		if hasCommand("pbcopy") {
			if err := pipeToCommand(text, "pbcopy"); err == nil {
				return nil
			}
		}
	}
	return fmt.Errorf("clipboard copy failed: %w", err)
}

// PasteIntoFocusedField places text into whatever field currently holds
// focus: stash the clipboard, load the transcript, synthesize the paste
// keystroke, then restore the previous clipboard contents.
func PasteIntoFocusedField(text string) error {
	previous, prevErr := clipboard.ReadAll()

	if err := SetClipboard(text); err != nil {
		return err
	}
	if err := synthesizePaste(); err != nil {
		return err
	}

	if prevErr == nil {
		go func() {
			time.Sleep(restoreDelay)
			if err := SetClipboard(previous); err != nil {
				logger.Warning(logger.CategoryApp, "failed to restore clipboard: %v", err)
			}
		}()
	}
	return nil
}

// synthesizePaste triggers the platform's paste chord in the focused app.
func synthesizePaste() error {
	switch runtime.GOOS {
	case "darwin":
		return runCommand("osascript", "-e",
			`tell application "System Events" to keystroke "v" using command down`)
	case "linux":
		if hasCommand("xdotool") {
			return runCommand("xdotool", "key", "--clearmodifiers", "ctrl+v")
		}
		if hasCommand("wtype") {
			return runCommand("wtype", "-M", "ctrl", "v", "-m", "ctrl")
		}
		if hasCommand("ydotool") {
			return runCommand("ydotool", "key", "29:1", "47:1", "47:0", "29:0")
		}
		return fmt.Errorf("no keystroke synthesis tool found (need xdotool, wtype or ydotool)")
	case "windows":
		return runCommand("powershell", "-NoProfile", "-Command",
			`(New-Object -ComObject WScript.Shell).SendKeys('^v')`)
	default:
		return fmt.Errorf("focused-field insertion not supported on %s", runtime.GOOS)
	}
}

func pipeToCommand(text string, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		defer stdin.Close()
		fmt.Fprint(stdin, text)
	}()
	return cmd.Wait()
}

func hasCommand(cmd string) bool {
	_, err := exec.LookPath(cmd)
	return err == nil
}
