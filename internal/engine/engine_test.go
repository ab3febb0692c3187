package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/AustinKelsay/dicktaint/internal/capture"
	"github.com/AustinKelsay/dicktaint/internal/engine/errs"
)

// stubBackend satisfies capture.Backend; the engine command tests never
// record audio.
type stubBackend struct{}

func (stubBackend) Open(func(capture.Frame)) (capture.StreamInfo, error) {
	return capture.StreamInfo{SampleRate: 16000, Channels: 1, Format: capture.FormatF32}, nil
}
func (stubBackend) Close() error { return nil }

func testEngine(t *testing.T) *Engine {
	t.Helper()
	cfg := Config{HomeDir: t.TempDir()}
	return newEngine(cfg, stubBackend{})
}

func installModelFile(t *testing.T, e *Engine, fileName string) {
	t.Helper()
	dir := e.Config().ModelsDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, fileName), []byte("model-bytes"), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
}

func TestInstallUnknownModelLeavesSettingsUnchanged(t *testing.T) {
	e := testEngine(t)

	if _, err := e.SetDictationTrigger("Ctrl+Shift+D"); err != nil {
		t.Fatalf("set trigger failed: %v", err)
	}
	before, err := os.ReadFile(e.Config().SettingsPath())
	if err != nil {
		t.Fatalf("read settings failed: %v", err)
	}

	err = e.InstallDictationModel(context.Background(), "mega-ultra", nil)
	if !errors.Is(err, errs.ErrUnknownModel) {
		t.Fatalf("expected UnknownModel, got %v", err)
	}

	after, err := os.ReadFile(e.Config().SettingsPath())
	if err != nil {
		t.Fatalf("read settings failed: %v", err)
	}
	if string(before) != string(after) {
		t.Error("settings changed by a rejected install")
	}
}

func TestDeleteUnknownModelRejected(t *testing.T) {
	e := testEngine(t)
	if err := e.DeleteDictationModel("nope"); !errors.Is(err, errs.ErrUnknownModel) {
		t.Errorf("expected UnknownModel, got %v", err)
	}
}

// Deleting the selected model with another installed fails selection over
// to the best remaining installed model.
func TestDeleteSelectedModelFailsOver(t *testing.T) {
	e := testEngine(t)
	installModelFile(t, e, "ggml-medium.en.bin")
	installModelFile(t, e, "ggml-base.en.bin")

	// Select medium-en by hand, as an install would have.
	id := "medium-en"
	path := filepath.Join(e.Config().ModelsDir(), "ggml-medium.en.bin")
	set, err := e.loadSettings()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	set.SelectedModelID = &id
	set.SelectedModelPath = &path
	if err := e.store.Save(set); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if err := e.DeleteDictationModel("medium-en"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	set, err = e.loadSettings()
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if set.SelectedModelID == nil || *set.SelectedModelID != "base-en" {
		t.Errorf("expected failover to base-en, got %v", set.SelectedModelID)
	}
	if set.SelectedModelPath == nil || filepath.Base(*set.SelectedModelPath) != "ggml-base.en.bin" {
		t.Errorf("expected failover path, got %v", set.SelectedModelPath)
	}
	if _, err := os.Stat(filepath.Join(e.Config().ModelsDir(), "ggml-medium.en.bin")); !os.IsNotExist(err) {
		t.Error("expected the deleted model file to be gone")
	}
}

func TestDeleteSelectedModelWithNoReplacementClearsSelection(t *testing.T) {
	e := testEngine(t)
	installModelFile(t, e, "ggml-tiny.en.bin")

	id := "tiny-en"
	set, _ := e.loadSettings()
	set.SelectedModelID = &id
	if err := e.store.Save(set); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if err := e.DeleteDictationModel("tiny-en"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	set, _ = e.loadSettings()
	if set.SelectedModelID != nil {
		t.Errorf("expected selection cleared, got %v", *set.SelectedModelID)
	}
}

func TestSetDictationTriggerCanonicalizes(t *testing.T) {
	e := testEngine(t)

	if _, err := e.SetDictationTrigger("shift+cmdorctrl+d"); err != nil {
		t.Fatalf("set trigger failed: %v", err)
	}
	got, err := e.GetDictationTrigger()
	if err != nil {
		t.Fatalf("get trigger failed: %v", err)
	}
	if got != "CmdOrCtrl+Shift+D" {
		t.Errorf("expected canonical form, got %q", got)
	}
}

func TestInvalidTriggerDoesNotClobberCurrent(t *testing.T) {
	e := testEngine(t)

	if _, err := e.SetDictationTrigger("Ctrl+Shift+D"); err != nil {
		t.Fatalf("set trigger failed: %v", err)
	}
	if _, err := e.SetDictationTrigger("Fn+Shift"); !errors.Is(err, errs.ErrHotkeyInvalid) {
		t.Fatalf("expected HotkeyInvalid, got %v", err)
	}

	got, _ := e.GetDictationTrigger()
	if got != "Ctrl+Shift+D" {
		t.Errorf("expected previous binding preserved, got %q", got)
	}
}

func TestClearDictationTrigger(t *testing.T) {
	e := testEngine(t)
	if _, err := e.SetDictationTrigger("Ctrl+Shift+D"); err != nil {
		t.Fatalf("set trigger failed: %v", err)
	}
	if err := e.ClearDictationTrigger(); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	got, _ := e.GetDictationTrigger()
	if got != "" {
		t.Errorf("expected empty trigger after clear, got %q", got)
	}
}

func TestSetFocusedFieldInsertEnabledPersists(t *testing.T) {
	e := testEngine(t)
	if err := e.SetFocusedFieldInsertEnabled(true); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	set, err := e.loadSettings()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !set.FocusedFieldInsertEnabled {
		t.Error("expected toggle persisted")
	}
}

func TestStartWithoutSetupFailsSetupIncomplete(t *testing.T) {
	e := testEngine(t)
	// No model installed and (in this sandbox) no CLI resolvable.
	err := e.StartNativeDictation()
	if !errors.Is(err, errs.ErrSetupIncomplete) {
		t.Errorf("expected SetupIncomplete, got %v", err)
	}
}

func TestOnboardingPayloadShape(t *testing.T) {
	e := testEngine(t)
	installModelFile(t, e, "ggml-base.en.bin")

	payload, err := e.GetDictationOnboarding()
	if err != nil {
		t.Fatalf("onboarding failed: %v", err)
	}
	if len(payload.Models) != 12 {
		t.Errorf("expected the 12-entry catalog, got %d", len(payload.Models))
	}

	recommended := 0
	installed := 0
	for _, m := range payload.Models {
		if m.Recommended {
			recommended++
		}
		if m.Installed {
			installed++
		}
	}
	if recommended > 1 {
		t.Errorf("expected at most one recommended model, got %d", recommended)
	}
	if installed != 1 {
		t.Errorf("expected exactly one installed model, got %d", installed)
	}
	if payload.Device.LogicalCPUCores < 1 {
		t.Error("expected at least one logical core")
	}
}
