package capture

import "time"

// SampleFormat identifies the native sample encoding a capture backend
// delivers. Conditioning converts everything to float32 at stop time.
type SampleFormat int

const (
	// FormatF32 is 32-bit float PCM in [-1, 1].
	FormatF32 SampleFormat = iota
	// FormatI16 is signed 16-bit PCM.
	FormatI16
	// FormatU16 is unsigned 16-bit PCM with a 32768 midpoint.
	FormatU16
)

func (f SampleFormat) String() string {
	switch f {
	case FormatF32:
		return "f32"
	case FormatI16:
		return "i16"
	case FormatU16:
		return "u16"
	default:
		return "unknown"
	}
}

// Session accumulates one recording. It is owned exclusively by the Engine
// while active (single-slot) and moved out, not copied, at stop.
type Session struct {
	SampleRate float64
	Channels   int
	Format     SampleFormat
	StartedAt  time.Time

	// Exactly one of these holds data, selected by Format. Samples are
	// interleaved when Channels > 1.
	f32 []float32
	i16 []int16
	u16 []uint16
}

func newSession(info StreamInfo) *Session {
	return &Session{
		SampleRate: info.SampleRate,
		Channels:   info.Channels,
		Format:     info.Format,
		StartedAt:  time.Now(),
	}
}

// appendFrame copies one callback frame into the session buffer. Called only
// from the audio worker; the Engine serializes access with its buffer mutex.
func (s *Session) appendFrame(f Frame) {
	switch s.Format {
	case FormatF32:
		s.f32 = append(s.f32, f.F32...)
	case FormatI16:
		s.i16 = append(s.i16, f.I16...)
	case FormatU16:
		s.u16 = append(s.u16, f.U16...)
	}
}

// sampleCount returns the number of raw interleaved samples accumulated.
func (s *Session) sampleCount() int {
	switch s.Format {
	case FormatF32:
		return len(s.f32)
	case FormatI16:
		return len(s.i16)
	case FormatU16:
		return len(s.u16)
	default:
		return 0
	}
}

// toFloat32 converts the raw buffer to float32 in [-1, 1], leaving the
// interleaving untouched.
func (s *Session) toFloat32() []float32 {
	switch s.Format {
	case FormatF32:
		out := make([]float32, len(s.f32))
		copy(out, s.f32)
		return out
	case FormatI16:
		out := make([]float32, len(s.i16))
		for i, v := range s.i16 {
			out[i] = float32(v) / 32768.0
		}
		return out
	case FormatU16:
		out := make([]float32, len(s.u16))
		for i, v := range s.u16 {
			out[i] = (float32(v) - 32768.0) / 32768.0
		}
		return out
	default:
		return nil
	}
}
