package engine

import (
	"os"
	"path/filepath"
	"strings"
)

// Config enumerates every knob the engine is parameterized by. A Config
// value is built once at process start and handed to New; nothing in the
// engine reaches for a process-wide global afterward.
type Config struct {
	// HomeDir is the directory settings and models live under
	// (<HomeDir>/dictation-settings.json, <HomeDir>/whisper-models/).
	// Defaults to "<user home>/.dicktaint".
	HomeDir string

	// PublicDir is the static asset root served by the boundary layer.
	PublicDir string

	// CliPathOverride pins the transcription CLI path, bypassing probing.
	CliPathOverride string

	// ModelPathOverride pins the model file path, bypassing the persisted
	// selection entirely.
	ModelPathOverride string

	// StartHidden controls whether the app-shell window starts hidden;
	// mirrors DICKTAINT_START_HIDDEN. Overlay pills are unaffected.
	StartHidden bool

	// MaxOverlays caps the per-monitor pill window fleet. Default 6.
	MaxOverlays int

	// MicOpenTimeoutMS bounds the start() warm-up handshake. Default 5000.
	MicOpenTimeoutMS int

	// Host/Port bind the boundary HTTP server.
	Host string
	Port string
}

const (
	defaultMaxOverlays      = 6
	defaultMicOpenTimeoutMS = 5000
	settingsFileName        = "dictation-settings.json"
	modelsDirName           = "whisper-models"
)

// DefaultConfig returns the engine configuration derived from the process
// environment.
func DefaultConfig() Config {
	home := os.Getenv("HOME")
	if home == "" {
		if h, err := os.UserHomeDir(); err == nil {
			home = h
		}
	}

	cfg := Config{
		HomeDir:           filepath.Join(home, ".dicktaint"),
		PublicDir:         "public",
		CliPathOverride:   os.Getenv("WHISPER_CLI_PATH"),
		ModelPathOverride: os.Getenv("WHISPER_MODEL_PATH"),
		StartHidden:       parseBoolToggle(os.Getenv("DICKTAINT_START_HIDDEN")),
		MaxOverlays:       defaultMaxOverlays,
		MicOpenTimeoutMS:  defaultMicOpenTimeoutMS,
		Host:              envOr("HOST", "127.0.0.1"),
		Port:              envOr("PORT", "8787"),
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBoolToggle(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "on":
		return true
	default:
		return false
	}
}

// SettingsPath returns the persisted settings file path.
func (c Config) SettingsPath() string {
	return filepath.Join(c.HomeDir, settingsFileName)
}

// ModelsDir returns the models directory.
func (c Config) ModelsDir() string {
	return filepath.Join(c.HomeDir, modelsDirName)
}

// normalized returns a copy of c with zero-value fields backfilled to their
// defaults, so a caller building a partial Config by hand doesn't need to
// know every default.
func (c Config) normalized() Config {
	if c.HomeDir == "" {
		c.HomeDir = DefaultConfig().HomeDir
	}
	if c.PublicDir == "" {
		c.PublicDir = "public"
	}
	if c.MaxOverlays <= 0 {
		c.MaxOverlays = defaultMaxOverlays
	}
	if c.MicOpenTimeoutMS <= 0 {
		c.MicOpenTimeoutMS = defaultMicOpenTimeoutMS
	}
	if c.Host == "" {
		c.Host = "127.0.0.1"
	}
	if c.Port == "" {
		c.Port = "8787"
	}
	return c
}
