// Package main is the entry point for the dicktaint dictation daemon: it
// composes the engine, hotkey monitor, coordinator, overlay fleet and the
// boundary HTTP server around a hide-on-close app shell.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"github.com/AustinKelsay/dicktaint/internal/boundary"
	"github.com/AustinKelsay/dicktaint/internal/coordinator"
	"github.com/AustinKelsay/dicktaint/internal/engine"
	"github.com/AustinKelsay/dicktaint/internal/hotkey"
	"github.com/AustinKelsay/dicktaint/internal/overlay"
	"github.com/AustinKelsay/dicktaint/pkg/logger"
)

// engineSession adapts the engine's command surface to the coordinator's
// session contract.
type engineSession struct {
	eng *engine.Engine
}

func (s engineSession) Start() error {
	return s.eng.StartNativeDictation()
}

func (s engineSession) StopAndTranscribe(ctx context.Context) (string, error) {
	return s.eng.StopNativeDictation(ctx)
}

func (s engineSession) Cancel() {
	s.eng.CancelNativeDictation()
}

// logPublisher renders frontend events into the log; the web frontend
// observes state through the boundary layer, so the daemon's own event
// stream is diagnostic.
type logPublisher struct{}

func (logPublisher) Publish(event string, payload any) {
	if payload == nil {
		logger.Debug(logger.CategoryApp, "event %s", event)
		return
	}
	logger.Debug(logger.CategoryApp, "event %s: %+v", event, payload)
}

func main() {
	debug := flag.Bool("debug", false, "Enable debug output")
	flag.Parse()

	if *debug {
		logger.SetLevel(logger.LevelDebug)
	}
	logger.Initialize()
	logger.Info(logger.CategoryApp, "starting dicktaint dictation daemon")

	cfg := engine.DefaultConfig()
	eng := engine.New(cfg)

	fyneApp := app.NewWithID("com.dicktaint.app")

	// Overlay fleet: one pill per monitor, capped by configuration.
	pills := overlay.NewManager(overlay.NewFyneFactory(fyneApp), cfg.MaxOverlays)
	pills.Refresh(overlay.EnumerateMonitors())
	defer pills.Close()

	// App shell window: hide on close, never quit.
	shell := fyneApp.NewWindow("dicktaint")
	draft := widget.NewMultiLineEntry()
	draft.Disable()
	draft.SetText("Hold your dictation hotkey to start speaking.")
	shell.SetContent(container.NewBorder(nil, nil, nil, nil, draft))
	shell.Resize(fyne.NewSize(420, 280))
	shell.SetCloseIntercept(func() {
		shell.Hide()
	})

	eng.Foreground = func() bool {
		// Treat a visible shell as the foreground app; pastes then stay in
		// the internal draft rather than leaving the process.
		return shellVisible(shell)
	}

	coord := coordinator.New(engineSession{eng: eng}, logPublisher{}, pills)
	coord.OnTranscript = func(text string) {
		draft.SetText(eng.Draft())
	}

	// Hotkey monitor from the persisted trigger.
	edges := startMonitor(eng)
	go coord.Run(edges)
	defer coord.Stop()

	// Boundary HTTP server for web mode.
	srv := boundary.NewServer(fmt.Sprintf("%s:%s", cfg.Host, cfg.Port), cfg.PublicDir)
	go func() {
		logger.Info(logger.CategoryHTTP, "serving %s on %s", cfg.PublicDir, srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error(logger.CategoryHTTP, "boundary server failed: %v", err)
		}
	}()
	defer srv.Close()

	// System tray keeps the daemon reachable while the shell is hidden.
	if desk, ok := fyneApp.(desktop.App); ok {
		menu := fyne.NewMenu("dicktaint",
			fyne.NewMenuItem("Show dicktaint", func() {
				shell.Show()
				shell.RequestFocus()
			}),
			fyne.NewMenuItem("Cancel dictation", func() {
				coord.Cancel()
			}),
		)
		desk.SetSystemTrayMenu(menu)
	}

	// Platform "reopen" (activation) re-shows and focuses the shell.
	fyneApp.Lifecycle().SetOnEnteredForeground(func() {
		shell.Show()
		shell.RequestFocus()
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info(logger.CategoryApp, "shutting down")
		coord.Cancel()
		fyneApp.Quit()
	}()

	if cfg.StartHidden {
		logger.Info(logger.CategoryApp, "starting hidden")
		fyneApp.Run()
	} else {
		shell.ShowAndRun()
	}
}

// startMonitor parses the persisted trigger and starts the global monitor.
// No trigger, an invalid stored value, or a platform-inactive binding all
// leave dictation reachable through the command surface only.
func startMonitor(eng *engine.Engine) <-chan hotkey.Edge {
	trigger, err := eng.GetDictationTrigger()
	if err != nil || trigger == "" {
		logger.Info(logger.CategoryHotkey, "no dictation trigger configured")
		return make(chan hotkey.Edge)
	}

	binding, err := hotkey.Parse(trigger)
	if err != nil {
		logger.Error(logger.CategoryHotkey, "stored trigger %q is invalid: %v", trigger, err)
		return make(chan hotkey.Edge)
	}

	monitor := hotkey.NewMonitor(binding)
	if err := monitor.Start(); err != nil {
		logger.Warning(logger.CategoryHotkey, "trigger %s not active: %v", binding.Display(), err)
		return make(chan hotkey.Edge)
	}
	return monitor.Edges()
}

// shellVisible reports whether the shell window is currently shown. The
// toolkit exposes no direct query, so visibility is tracked through the
// window's canvas size being laid out.
func shellVisible(w fyne.Window) bool {
	return w.Canvas() != nil && w.Canvas().Size().Width > 0
}
