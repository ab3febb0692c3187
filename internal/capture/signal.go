package capture

import (
	"math"
	"time"

	"github.com/AustinKelsay/dicktaint/internal/engine/errs"
	"github.com/AustinKelsay/dicktaint/pkg/logger"
)

const (
	targetRate = 16000

	// minSpeechDuration is the shortest trimmed clip worth transcribing.
	minSpeechDuration = 250 * time.Millisecond

	// edgePad keeps this much audio on each side of the detected speech so
	// plosives at the boundaries survive the trim.
	edgePad = 100 * time.Millisecond

	// trimWindow is the energy-measurement granularity for silence trimming.
	trimWindow = 10 * time.Millisecond

	// silenceRMS is the per-window energy below which audio counts as silence.
	silenceRMS = 0.01

	// noiseFloorRMS and audibilityPeak are the preflight guards: quieter than
	// this is not recoverable by gain.
	noiseFloorRMS  = 0.003
	audibilityPeak = 0.01

	// The gain normalization target band.
	targetRMSLow  = 0.05
	targetRMSHigh = 0.20
	peakCeiling   = 0.95
)

// Condition turns a raw capture session into transcription-ready audio:
// dominant-channel downmix, 16kHz resample, DC removal, silence trim with an
// edge pad, and gain normalization, with the NoSpeech preflight guards
// applied before handoff. The resample is linear interpolation.
func Condition(session *Session) (CapturedAudio, error) {
	raw := session.toFloat32()
	if len(raw) == 0 {
		return CapturedAudio{}, errs.WithDetail(errs.ErrNoSpeech, "no samples captured", nil)
	}

	mono := downmixDominant(raw, session.Channels)
	mono = resampleTo16k(mono, session.SampleRate)
	removeDCOffset(mono)

	peak := peakAmplitude(mono)
	if peak < audibilityPeak {
		return CapturedAudio{}, errs.WithDetail(errs.ErrNoSpeech, "peak below audibility floor", nil)
	}

	trimmed := trimSilence(mono)
	dur := time.Duration(float64(len(trimmed)) / targetRate * float64(time.Second))
	if dur < minSpeechDuration {
		return CapturedAudio{}, errs.WithDetail(errs.ErrNoSpeech, "trimmed audio shorter than minimum", nil)
	}
	if rms(trimmed) < noiseFloorRMS {
		return CapturedAudio{}, errs.WithDetail(errs.ErrNoSpeech, "energy below noise floor", nil)
	}

	normalizeGain(trimmed)

	logger.Debug(logger.CategoryCapture, "conditioned audio: %d samples (%.2fs), rms %.4f",
		len(trimmed), dur.Seconds(), rms(trimmed))

	return CapturedAudio{Samples: trimmed, SampleRate: targetRate, Duration: dur}, nil
}

// downmixDominant reduces interleaved multi-channel audio to mono by keeping
// the channel with the most energy, rather than averaging: a mic wired into
// only one channel of a stereo input would lose half its level under a mean.
func downmixDominant(samples []float32, channels int) []float32 {
	if channels <= 1 {
		return samples
	}

	frames := len(samples) / channels
	energy := make([]float64, channels)
	for i := 0; i < frames; i++ {
		for c := 0; c < channels; c++ {
			v := float64(samples[i*channels+c])
			energy[c] += v * v
		}
	}

	dominant := 0
	for c := 1; c < channels; c++ {
		if energy[c] > energy[dominant] {
			dominant = c
		}
	}

	mono := make([]float32, frames)
	for i := 0; i < frames; i++ {
		mono[i] = samples[i*channels+dominant]
	}
	return mono
}

// resampleTo16k linearly interpolates samples from rate to 16kHz.
func resampleTo16k(samples []float32, rate float64) []float32 {
	if rate == targetRate || len(samples) == 0 {
		return samples
	}

	ratio := targetRate / rate
	newLength := int(float64(len(samples)) * ratio)
	resampled := make([]float32, newLength)

	for i := 0; i < newLength; i++ {
		pos := float64(i) / ratio
		index := int(pos)
		if index >= len(samples)-1 {
			resampled[i] = samples[len(samples)-1]
			continue
		}
		weight := float32(pos - float64(index))
		resampled[i] = (1.0-weight)*samples[index] + weight*samples[index+1]
	}
	return resampled
}

// removeDCOffset subtracts the arithmetic mean in place.
func removeDCOffset(samples []float32) {
	if len(samples) == 0 {
		return
	}
	var sum float64
	for _, s := range samples {
		sum += float64(s)
	}
	mean := float32(sum / float64(len(samples)))
	for i := range samples {
		samples[i] -= mean
	}
}

// trimSilence drops leading and trailing windows whose RMS sits below the
// silence threshold, keeping an edgePad of audio on each side of the first
// and last speech window.
func trimSilence(samples []float32) []float32 {
	window := int(targetRate * trimWindow.Seconds())
	if window <= 0 || len(samples) < window {
		return samples
	}

	firstLoud, lastLoud := -1, -1
	for start := 0; start+window <= len(samples); start += window {
		if rms(samples[start:start+window]) >= silenceRMS {
			if firstLoud < 0 {
				firstLoud = start
			}
			lastLoud = start + window
		}
	}
	if firstLoud < 0 {
		return nil
	}

	pad := int(targetRate * edgePad.Seconds())
	lo := firstLoud - pad
	if lo < 0 {
		lo = 0
	}
	hi := lastLoud + pad
	if hi > len(samples) {
		hi = len(samples)
	}
	return samples[lo:hi]
}

// normalizeGain scales in place toward the target RMS band: quiet clips are
// boosted, clips whose peak crowds full scale are attenuated. The peak is
// never allowed past the ceiling.
func normalizeGain(samples []float32) {
	r := rms(samples)
	peak := peakAmplitude(samples)
	if r == 0 || peak == 0 {
		return
	}

	gain := float32(1.0)
	switch {
	case r < targetRMSLow:
		gain = targetRMSLow / r
	case r > targetRMSHigh:
		gain = targetRMSHigh / r
	}

	if peak*gain > peakCeiling {
		gain = peakCeiling / peak
	}
	if gain == 1.0 {
		return
	}
	for i := range samples {
		samples[i] *= gain
	}
}

func rms(samples []float32) float32 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	return float32(math.Sqrt(sum / float64(len(samples))))
}

func peakAmplitude(samples []float32) float32 {
	var peak float32
	for _, s := range samples {
		if s < 0 {
			s = -s
		}
		if s > peak {
			peak = s
		}
	}
	return peak
}
