// Package settings implements the atomic, unknown-key-preserving JSON
// settings store. Saves go through a sibling temp file and rename, and a
// map[string]json.RawMessage overlay keeps fields this binary doesn't
// recognize round-tripping across a load/save cycle.
package settings

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/AustinKelsay/dicktaint/internal/engine/errs"
	"github.com/AustinKelsay/dicktaint/pkg/logger"
)

// Settings is the recognized, typed view of the persisted file.
type Settings struct {
	SelectedModelID           *string `json:"selected_model_id"`
	SelectedModelPath         *string `json:"selected_model_path"`
	DictationTrigger          *string `json:"dictation_trigger"`
	FocusedFieldInsertEnabled bool    `json:"focused_field_insert_enabled"`

	// raw carries every JSON key this struct doesn't recognize, preserved
	// verbatim across a load -> save round trip.
	raw map[string]json.RawMessage
}

// Empty returns a zero-value Settings, used both as the in-memory default
// when no file exists and as the rewritten content after ConfigCorrupt
// recovery.
func Empty() Settings {
	return Settings{raw: map[string]json.RawMessage{}}
}

// Store owns the on-disk settings file exclusively.
type Store struct {
	path string
}

// New returns a Store bound to path. The caller is responsible for passing
// Config.SettingsPath().
func New(path string) *Store {
	return &Store{path: path}
}

// Load reads the settings file. An absent file yields Empty() with no
// error. A malformed file returns a ConfigCorrupt error; the caller may then
// call Recover to preserve the bad file as .bak and start fresh.
func (s *Store) Load() (Settings, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Empty(), nil
		}
		return Settings{}, errs.WithDetail(errs.ErrConfigCorrupt, err.Error(), err)
	}

	var overlay map[string]json.RawMessage
	if err := json.Unmarshal(data, &overlay); err != nil {
		return Settings{}, errs.WithDetail(errs.ErrConfigCorrupt, err.Error(), err)
	}

	out := Empty()
	if raw, ok := overlay["selected_model_id"]; ok {
		_ = json.Unmarshal(raw, &out.SelectedModelID)
		delete(overlay, "selected_model_id")
	}
	if raw, ok := overlay["selected_model_path"]; ok {
		_ = json.Unmarshal(raw, &out.SelectedModelPath)
		delete(overlay, "selected_model_path")
	}
	if raw, ok := overlay["dictation_trigger"]; ok {
		_ = json.Unmarshal(raw, &out.DictationTrigger)
		delete(overlay, "dictation_trigger")
	}
	if raw, ok := overlay["focused_field_insert_enabled"]; ok {
		_ = json.Unmarshal(raw, &out.FocusedFieldInsertEnabled)
		delete(overlay, "focused_field_insert_enabled")
	}
	out.raw = overlay

	return out, nil
}

// Recover preserves the existing (unreadable) settings file as a sibling
// .bak and rewrites an empty settings file in its place.
func (s *Store) Recover() error {
	if _, err := os.Stat(s.path); err == nil {
		bak := s.path + ".bak"
		if err := os.Rename(s.path, bak); err != nil {
			return err
		}
		logger.Warning(logger.CategorySetup, "settings file was corrupt, preserved as %s", bak)
	}
	return s.Save(Empty())
}

// Save atomically writes Settings: marshal to a sibling temp file, fsync,
// then rename over the destination, so a crash between write and rename
// never leaves a partially-written settings file.
func (s *Store) Save(set Settings) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	merged := map[string]json.RawMessage{}
	for k, v := range set.raw {
		merged[k] = v
	}

	idBytes, _ := json.Marshal(set.SelectedModelID)
	merged["selected_model_id"] = idBytes
	pathBytes, _ := json.Marshal(set.SelectedModelPath)
	merged["selected_model_path"] = pathBytes
	trigBytes, _ := json.Marshal(set.DictationTrigger)
	merged["dictation_trigger"] = trigBytes
	insBytes, _ := json.Marshal(set.FocusedFieldInsertEnabled)
	merged["focused_field_insert_enabled"] = insBytes

	data, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".dictation-settings-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return err
	}

	return nil
}
