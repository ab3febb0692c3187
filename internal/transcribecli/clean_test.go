package transcribecli

import (
	"path/filepath"
	"testing"
)

func TestCleanTranscript(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "Hello world.", "Hello world."},
		{"bracketed blank audio", "[BLANK_AUDIO]", ""},
		{"lowercase bracketed", "[blank_audio]", ""},
		{"unbracketed artifact", "BLANK_AUDIO", ""},
		{"artifact amid speech", "Hello [NOISE] world", "Hello world"},
		{"multiple artifacts", "[MUSIC] [SILENCE] [NOISE]", ""},
		{"whitespace collapsed", "  Hello   world \n", "Hello world"},
		{"artifact leaves clean spacing", "Good [MUSIC] morning", "Good morning"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := cleanTranscript(tc.in); got != tc.want {
				t.Errorf("cleanTranscript(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestLooksLowInformation(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want bool
	}{
		{"empty is not low-info", "", false},
		{"very short", "hi", true},
		{"single repeated word", "yes yes yes yes yes", true},
		{"mostly punctuation", "... --- ...!!!", true},
		{"normal sentence", "Please schedule the review for Thursday afternoon.", false},
		{"two-word utterance", "stop recording", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := looksLowInformation(tc.in); got != tc.want {
				t.Errorf("looksLowInformation(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestCoverageScorePrefersRicherText(t *testing.T) {
	poor := coverageScore("the the the")
	rich := coverageScore("The quick brown fox jumps over the lazy dog.")
	if rich <= poor {
		t.Errorf("expected richer text to score higher: rich=%f poor=%f", rich, poor)
	}
}

func TestWAVRoundTripBitExact(t *testing.T) {
	samples := []float32{0, 0.25, -0.25, 0.5, -0.5, 1.0, -1.0, 0.001, -0.001}
	path := filepath.Join(t.TempDir(), "roundtrip.wav")

	if err := writeWAV(path, samples, 16000); err != nil {
		t.Fatalf("writeWAV failed: %v", err)
	}
	got, rate, err := readWAV(path)
	if err != nil {
		t.Fatalf("readWAV failed: %v", err)
	}
	if rate != 16000 {
		t.Errorf("expected 16000Hz, got %d", rate)
	}
	if len(got) != len(samples) {
		t.Fatalf("expected %d samples, got %d", len(samples), len(got))
	}

	// The write quantizes to int16; reading back must reproduce exactly the
	// quantized values.
	for i, s := range samples {
		want := pcm16ToFloat(floatToPCM16(s))
		if got[i] != want {
			t.Errorf("sample %d: got %f, want %f", i, got[i], want)
		}
	}
}
