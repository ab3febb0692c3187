// Package models implements the fixed model catalog, recommendation
// ranking, and download/delete/failover lifecycle.
package models

// Descriptor is one catalog entry.
type Descriptor struct {
	ID               string  `json:"id"`
	DisplayName      string  `json:"display_name"`
	WhisperRef       string  `json:"whisper_ref"`
	FileName         string  `json:"file_name"`
	ApproxSizeGB     float64 `json:"approx_size_gb"`
	MinRAMGB         float64 `json:"min_ram_gb"`
	RecommendedRAMGB float64 `json:"recommended_ram_gb"`
	SpeedNote        string  `json:"speed_note"`
	QualityNote      string  `json:"quality_note"`
}

// Catalog is the fixed, ordered 12-entry table. Order matters: it is the
// final tie-break in the recommendation ranking.
var catalog = []Descriptor{
	{
		ID: "tiny-en", DisplayName: "Tiny (English-only)", WhisperRef: "tiny.en", FileName: "ggml-tiny.en.bin",
		ApproxSizeGB: 0.075, MinRAMGB: 1.0, RecommendedRAMGB: 1.0,
		SpeedNote: "Fastest; runs comfortably on any modern laptop.", QualityNote: "Rough transcripts; best for quick notes.",
	},
	{
		ID: "tiny", DisplayName: "Tiny (multilingual)", WhisperRef: "tiny", FileName: "ggml-tiny.bin",
		ApproxSizeGB: 0.075, MinRAMGB: 1.0, RecommendedRAMGB: 1.0,
		SpeedNote: "Fastest; runs comfortably on any modern laptop.", QualityNote: "Rough transcripts, multilingual.",
	},
	{
		ID: "base-en", DisplayName: "Base (English-only)", WhisperRef: "base.en", FileName: "ggml-base.en.bin",
		ApproxSizeGB: 0.142, MinRAMGB: 1.0, RecommendedRAMGB: 2.0,
		SpeedNote: "Very fast, noticeably better than tiny.", QualityNote: "Good for clear dictation audio.",
	},
	{
		ID: "base", DisplayName: "Base (multilingual)", WhisperRef: "base", FileName: "ggml-base.bin",
		ApproxSizeGB: 0.142, MinRAMGB: 1.0, RecommendedRAMGB: 2.0,
		SpeedNote: "Very fast, noticeably better than tiny.", QualityNote: "Good for clear dictation audio, multilingual.",
	},
	{
		ID: "small-en", DisplayName: "Small (English-only)", WhisperRef: "small.en", FileName: "ggml-small.en.bin",
		ApproxSizeGB: 0.466, MinRAMGB: 2.0, RecommendedRAMGB: 6.0,
		SpeedNote: "Moderate speed, a solid daily driver.", QualityNote: "Handles accents and background noise better.",
	},
	{
		ID: "small", DisplayName: "Small (multilingual)", WhisperRef: "small", FileName: "ggml-small.bin",
		ApproxSizeGB: 0.466, MinRAMGB: 2.0, RecommendedRAMGB: 6.0,
		SpeedNote: "Moderate speed, a solid daily driver.", QualityNote: "Handles accents and background noise, multilingual.",
	},
	{
		ID: "medium-en", DisplayName: "Medium (English-only)", WhisperRef: "medium.en", FileName: "ggml-medium.en.bin",
		ApproxSizeGB: 1.5, MinRAMGB: 4.0, RecommendedRAMGB: 8.0,
		SpeedNote: "Noticeably slower; needs real headroom.", QualityNote: "High accuracy for everyday dictation.",
	},
	{
		ID: "medium", DisplayName: "Medium (multilingual)", WhisperRef: "medium", FileName: "ggml-medium.bin",
		ApproxSizeGB: 1.5, MinRAMGB: 4.0, RecommendedRAMGB: 8.0,
		SpeedNote: "Noticeably slower; needs real headroom.", QualityNote: "High accuracy, multilingual.",
	},
	{
		ID: "large-v1", DisplayName: "Large v1", WhisperRef: "large-v1", FileName: "ggml-large-v1.bin",
		ApproxSizeGB: 2.9, MinRAMGB: 17.0, RecommendedRAMGB: 24.0,
		SpeedNote: "Slow; workstation-class hardware only.", QualityNote: "Best-in-class accuracy, superseded by v2/v3.",
	},
	{
		ID: "large-v2", DisplayName: "Large v2", WhisperRef: "large-v2", FileName: "ggml-large-v2.bin",
		ApproxSizeGB: 2.9, MinRAMGB: 17.0, RecommendedRAMGB: 24.0,
		SpeedNote: "Slow; workstation-class hardware only.", QualityNote: "Best-in-class accuracy, more stable than v1.",
	},
	{
		ID: "large-v3", DisplayName: "Large v3", WhisperRef: "large-v3", FileName: "ggml-large-v3.bin",
		ApproxSizeGB: 2.9, MinRAMGB: 17.0, RecommendedRAMGB: 24.0,
		SpeedNote: "Slow; workstation-class hardware only.", QualityNote: "Best-in-class accuracy, latest training data.",
	},
	{
		ID: "turbo", DisplayName: "Turbo", WhisperRef: "large-v3-turbo", FileName: "ggml-large-v3-turbo.bin",
		ApproxSizeGB: 0.8, MinRAMGB: 6.0, RecommendedRAMGB: 8.0,
		SpeedNote: "Distilled from large-v3; fast for its quality tier.", QualityNote: "Close to large-v3 accuracy at a fraction of the cost.",
	},
}

// List returns the fixed ordered catalog.
func List() []Descriptor {
	out := make([]Descriptor, len(catalog))
	copy(out, catalog)
	return out
}

// ByID returns the descriptor for id, and whether it exists in the catalog.
func ByID(id string) (Descriptor, bool) {
	for _, d := range catalog {
		if d.ID == id {
			return d, true
		}
	}
	return Descriptor{}, false
}
