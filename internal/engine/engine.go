// Package engine is the composition root: one Engine value composed of the
// device profiler, settings store, model catalog, CLI resolver, capture
// engine and transcription driver, exposing the frontend command surface.
// The control task owns this value; there are no process-wide singletons.
package engine

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/AustinKelsay/dicktaint/internal/capture"
	"github.com/AustinKelsay/dicktaint/internal/cliresolver"
	"github.com/AustinKelsay/dicktaint/internal/device"
	"github.com/AustinKelsay/dicktaint/internal/engine/errs"
	"github.com/AustinKelsay/dicktaint/internal/hotkey"
	"github.com/AustinKelsay/dicktaint/internal/insert"
	"github.com/AustinKelsay/dicktaint/internal/models"
	"github.com/AustinKelsay/dicktaint/internal/settings"
	"github.com/AustinKelsay/dicktaint/internal/transcribecli"
	"github.com/AustinKelsay/dicktaint/pkg/logger"
)

// Engine binds every component behind the command surface. Command methods
// are invoked from the control task only; long operations hand off to the
// capture and transcription workers internally.
type Engine struct {
	cfg      Config
	store    *settings.Store
	modelMgr *models.Manager
	resolver *cliresolver.Resolver
	capture  *capture.Engine
	profile  device.Profile

	mu       sync.Mutex
	cli      *cliresolver.Resolved
	draft    strings.Builder
	transMdl string // model path captured at start, used by the matching stop

	// Foreground reports whether the host app's own window has focus;
	// focused-field insertion only fires when it does not. The daemon wires
	// this to its window state.
	Foreground func() bool
}

// New builds an Engine from cfg with the real microphone backend.
func New(cfg Config) *Engine {
	return newEngine(cfg, capture.NewPortAudioBackend())
}

func newEngine(cfg Config, backend capture.Backend) *Engine {
	cfg = cfg.normalized()
	return &Engine{
		cfg:      cfg,
		store:    settings.New(cfg.SettingsPath()),
		modelMgr: models.NewManager(cfg.ModelsDir()),
		resolver: cliresolver.New(cfg.CliPathOverride),
		capture:  capture.NewEngine(backend, time.Duration(cfg.MicOpenTimeoutMS)*time.Millisecond),
		profile:  device.Profiler(),
		Foreground: func() bool {
			return false
		},
	}
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config { return e.cfg }

// OnboardingPayload is the composite setup snapshot (get_dictation_onboarding).
type OnboardingPayload struct {
	Device          device.Profile        `json:"device"`
	Models          []models.RuntimeState `json:"models"`
	CliPath         string                `json:"cli_path,omitempty"`
	CliSource       string                `json:"cli_source,omitempty"`
	CliAvailable    bool                  `json:"cli_available"`
	SelectedModelID string                `json:"selected_model_id,omitempty"`
	Trigger         string                `json:"dictation_trigger,omitempty"`
	InsertEnabled   bool                  `json:"focused_field_insert_enabled"`
	Ready           bool                  `json:"ready"`
}

// GetDictationOnboarding fans out to the profiler, settings store, catalog
// and resolver and returns the composite payload.
func (e *Engine) GetDictationOnboarding() (OnboardingPayload, error) {
	set, err := e.loadSettings()
	if err != nil {
		return OnboardingPayload{}, err
	}

	payload := OnboardingPayload{
		Device:        e.profile,
		Models:        models.Evaluate(e.profile, e.cfg.ModelsDir(), set.SelectedModelID),
		InsertEnabled: set.FocusedFieldInsertEnabled,
	}
	if set.SelectedModelID != nil {
		payload.SelectedModelID = *set.SelectedModelID
	}
	if set.DictationTrigger != nil {
		payload.Trigger = *set.DictationTrigger
	}
	if cli, ok := e.resolveCli(); ok {
		payload.CliPath = cli.Path
		payload.CliSource = cli.Source
		payload.CliAvailable = true
	}
	_, modelErr := e.effectiveModelPath(set)
	payload.Ready = payload.CliAvailable && modelErr == nil

	return payload, nil
}

// InstallDictationModel downloads the model and persists it as the
// selection. An id outside the catalog is rejected with UnknownModel and
// settings are left untouched.
func (e *Engine) InstallDictationModel(ctx context.Context, id string, onProgress models.DownloadProgress) error {
	desc, ok := models.ByID(id)
	if !ok {
		return errs.WithDetail(errs.ErrUnknownModel, id, nil)
	}
	if err := e.modelMgr.Download(ctx, id, onProgress); err != nil {
		return err
	}

	set, err := e.loadSettings()
	if err != nil {
		return err
	}
	path := filepath.Join(e.cfg.ModelsDir(), desc.FileName)
	set.SelectedModelID = &id
	set.SelectedModelPath = &path
	return e.store.Save(set)
}

// DeleteDictationModel removes an installed model. When the deleted model
// was selected, selection fails over to the best remaining installed model,
// or clears when none remain; the settings write is atomic either way.
func (e *Engine) DeleteDictationModel(id string) error {
	if _, ok := models.ByID(id); !ok {
		return errs.WithDetail(errs.ErrUnknownModel, id, nil)
	}
	if err := e.modelMgr.Delete(id); err != nil {
		return err
	}

	set, err := e.loadSettings()
	if err != nil {
		return err
	}
	if set.SelectedModelID == nil || *set.SelectedModelID != id {
		return nil
	}

	states := models.Evaluate(e.profile, e.cfg.ModelsDir(), nil)
	if next, ok := models.FailoverCandidate(states); ok {
		desc, _ := models.ByID(next)
		path := filepath.Join(e.cfg.ModelsDir(), desc.FileName)
		set.SelectedModelID = &next
		set.SelectedModelPath = &path
		logger.Info(logger.CategoryModel, "selection failed over from %s to %s", id, next)
	} else {
		set.SelectedModelID = nil
		set.SelectedModelPath = nil
		logger.Info(logger.CategoryModel, "deleted selected model %s with no replacement installed", id)
	}
	return e.store.Save(set)
}

// StartNativeDictation checks readiness and begins capture, blocking
// through the mic-open handshake.
func (e *Engine) StartNativeDictation() error {
	set, err := e.loadSettings()
	if err != nil {
		return err
	}
	modelPath, err := e.effectiveModelPath(set)
	if err != nil {
		return err
	}
	cli, ok := e.resolveCli()
	if !ok {
		return errs.WithDetail(errs.ErrSetupIncomplete, "no transcription CLI available", nil)
	}

	if err := e.capture.Start(); err != nil {
		return err
	}

	e.mu.Lock()
	e.transMdl = modelPath
	e.cli = &cli
	e.mu.Unlock()
	return nil
}

// StopNativeDictation stops capture, transcribes, and returns the cleaned
// transcript. The transcript is also appended to the internal draft and,
// when enabled and the host app is background, pasted into the focused
// external field.
func (e *Engine) StopNativeDictation(ctx context.Context) (string, error) {
	audio, err := e.capture.Stop()
	if err != nil {
		return "", err
	}

	e.mu.Lock()
	modelPath := e.transMdl
	cli := e.cli
	e.mu.Unlock()
	if cli == nil {
		return "", errs.WithDetail(errs.ErrSetupIncomplete, "no transcription CLI available", nil)
	}

	driver := transcribecli.NewDriver(cli.Path, e.profile.LogicalCPUCores)
	text, err := driver.Transcribe(ctx, audio.Samples, modelPath)
	if err != nil {
		return "", err
	}

	e.HandleTranscript(text)
	return text, nil
}

// CancelNativeDictation interrupts capture and discards samples; safe in
// any state.
func (e *Engine) CancelNativeDictation() {
	e.capture.Cancel()
}

// HandleTranscript appends to the internal draft and, when focused-field
// insertion is enabled and the host app is not foreground, synthesizes a
// paste into the focused external field. The draft append happens in both
// cases.
func (e *Engine) HandleTranscript(text string) {
	e.mu.Lock()
	if e.draft.Len() > 0 {
		e.draft.WriteString(" ")
	}
	e.draft.WriteString(text)
	e.mu.Unlock()

	set, err := e.loadSettings()
	if err != nil || !set.FocusedFieldInsertEnabled {
		return
	}
	if e.Foreground() {
		return
	}
	if err := insert.PasteIntoFocusedField(text); err != nil {
		logger.Warning(logger.CategoryApp, "focused-field insertion failed: %v", err)
	}
}

// Draft returns the accumulated internal draft.
func (e *Engine) Draft() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft.String()
}

// GetDictationTrigger returns the stored binding string, or "" when unset.
func (e *Engine) GetDictationTrigger() (string, error) {
	set, err := e.loadSettings()
	if err != nil {
		return "", err
	}
	if set.DictationTrigger == nil {
		return "", nil
	}
	return *set.DictationTrigger, nil
}

// SetDictationTrigger validates and persists a binding in canonical form. A
// parse failure rejects the new binding without clobbering the current one.
func (e *Engine) SetDictationTrigger(trigger string) (hotkey.Binding, error) {
	b, err := hotkey.Parse(trigger)
	if err != nil {
		return hotkey.Binding{}, err
	}

	set, err := e.loadSettings()
	if err != nil {
		return hotkey.Binding{}, err
	}
	display := b.Display()
	set.DictationTrigger = &display
	if err := e.store.Save(set); err != nil {
		return hotkey.Binding{}, err
	}
	return b, nil
}

// ClearDictationTrigger removes the stored binding.
func (e *Engine) ClearDictationTrigger() error {
	set, err := e.loadSettings()
	if err != nil {
		return err
	}
	set.DictationTrigger = nil
	return e.store.Save(set)
}

// SetFocusedFieldInsertEnabled persists the insertion toggle.
func (e *Engine) SetFocusedFieldInsertEnabled(enabled bool) error {
	set, err := e.loadSettings()
	if err != nil {
		return err
	}
	set.FocusedFieldInsertEnabled = enabled
	return e.store.Save(set)
}

// InsertTextIntoFocusedField synthesizes a paste of arbitrary text.
func (e *Engine) InsertTextIntoFocusedField(text string) error {
	return insert.PasteIntoFocusedField(text)
}

// OpenWhisperSetupPage opens the whisper.cpp install instructions in the
// default browser.
func (e *Engine) OpenWhisperSetupPage() error {
	const url = "https://github.com/ggerganov/whisper.cpp#quick-start"
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}

// loadSettings reads settings, recovering from a corrupt file by preserving
// it as .bak and starting fresh.
func (e *Engine) loadSettings() (settings.Settings, error) {
	set, err := e.store.Load()
	if err == nil {
		return set, nil
	}
	logger.Error(logger.CategorySetup, "settings load failed: %v", err)
	if recErr := e.store.Recover(); recErr != nil {
		return settings.Settings{}, errs.WithDetail(errs.ErrConfigCorrupt, recErr.Error(), recErr)
	}
	return settings.Empty(), nil
}

// effectiveModelPath resolves the model file the transcriber will use: the
// environment override bypasses the persisted selection entirely.
func (e *Engine) effectiveModelPath(set settings.Settings) (string, error) {
	if e.cfg.ModelPathOverride != "" {
		if fileExists(e.cfg.ModelPathOverride) {
			return e.cfg.ModelPathOverride, nil
		}
		return "", errs.WithDetail(errs.ErrSetupIncomplete,
			fmt.Sprintf("model override %s does not exist", e.cfg.ModelPathOverride), nil)
	}

	if set.SelectedModelPath != nil && fileExists(*set.SelectedModelPath) {
		return *set.SelectedModelPath, nil
	}
	if set.SelectedModelID != nil {
		if desc, ok := models.ByID(*set.SelectedModelID); ok {
			path := filepath.Join(e.cfg.ModelsDir(), desc.FileName)
			if fileExists(path) {
				return path, nil
			}
		}
	}
	return "", errs.WithDetail(errs.ErrSetupIncomplete, "no model installed", nil)
}

// resolveCli resolves and caches the transcription executable.
func (e *Engine) resolveCli() (cliresolver.Resolved, bool) {
	e.mu.Lock()
	if e.cli != nil {
		cached := *e.cli
		e.mu.Unlock()
		return cached, true
	}
	e.mu.Unlock()

	cli, ok := e.resolver.Resolve()
	if !ok {
		return cliresolver.Resolved{}, false
	}
	e.mu.Lock()
	e.cli = &cli
	e.mu.Unlock()
	return cli, true
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
