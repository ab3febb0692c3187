package models

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/AustinKelsay/dicktaint/internal/device"
)

// RuntimeState is a per-request annotation of a catalog entry.
type RuntimeState struct {
	Descriptor
	Installed      bool `json:"installed"`
	LikelyRunnable bool `json:"likely_runnable"`
	Recommended    bool `json:"recommended"`
}

// Evaluate annotates every catalog entry against the device profile and the
// models directory, then marks at most one entry Recommended.
func Evaluate(profile device.Profile, modelsDir string, selectedID *string) []RuntimeState {
	entries := List()
	states := make([]RuntimeState, len(entries))

	for i, d := range entries {
		states[i] = RuntimeState{
			Descriptor:     d,
			Installed:      isInstalled(modelsDir, d.FileName),
			LikelyRunnable: profile.TotalMemoryGB >= d.MinRAMGB,
		}
	}

	best := recommend(states, profile)
	if best >= 0 {
		states[best].Recommended = true
	}

	_ = selectedID // selection itself is a SettingsStore concern; kept for call-site symmetry with the onboarding payload.
	return states
}

func isInstalled(modelsDir, fileName string) bool {
	if modelsDir == "" {
		return false
	}
	_, err := os.Stat(filepath.Join(modelsDir, fileName))
	return err == nil
}

// recommend implements the composite ranking key:
//  1. fit level (profile.ram >= recommended_ram_gb), true beats false
//  2. recommended_ram_gb, higher wins
//  3. approx_size_gb, larger wins (biased toward the strongest runnable model)
//  4. catalog order
//
// Only entries with LikelyRunnable = true are considered. Returns -1 when no
// entry is runnable.
func recommend(states []RuntimeState, profile device.Profile) int {
	type candidate struct {
		index   int
		fit     bool
		recRAM  float64
		size    float64
	}

	var candidates []candidate
	for i, s := range states {
		if !s.LikelyRunnable {
			continue
		}
		candidates = append(candidates, candidate{
			index:  i,
			fit:    profile.TotalMemoryGB >= s.RecommendedRAMGB,
			recRAM: s.RecommendedRAMGB,
			size:   s.ApproxSizeGB,
		})
	}
	if len(candidates) == 0 {
		return -1
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.fit != b.fit {
			return a.fit
		}
		if a.recRAM != b.recRAM {
			return a.recRAM > b.recRAM
		}
		if a.size != b.size {
			return a.size > b.size
		}
		return a.index < b.index
	})

	return candidates[0].index
}
