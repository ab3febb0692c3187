package capture

import (
	"fmt"

	"github.com/gordonklaus/portaudio"

	"github.com/AustinKelsay/dicktaint/pkg/logger"
)

// StreamInfo describes the negotiated input stream.
type StreamInfo struct {
	SampleRate float64
	Channels   int
	Format     SampleFormat
}

// Frame carries one audio callback's worth of samples in the stream's native
// format. Only the slice matching StreamInfo.Format is populated.
type Frame struct {
	F32 []float32
	I16 []int16
	U16 []uint16
}

// Backend abstracts the audio subsystem so the Engine's state machine can be
// tested with a fake.
type Backend interface {
	// Open opens the default input stream and begins delivering frames to
	// sink from the audio subsystem's own thread. It returns once the stream
	// is confirmed live.
	Open(sink func(Frame)) (StreamInfo, error)
	// Close stops and closes the stream, joining the audio thread.
	Close() error
}

const framesPerBuffer = 1024

// portaudioBackend is the production Backend: OpenDefaultStream with a
// copying callback. It tries a float32 stream first and falls back to
// int16 when the host API refuses the float format.
type portaudioBackend struct {
	stream      *portaudio.Stream
	initialized bool
}

// NewPortAudioBackend returns the real microphone backend.
func NewPortAudioBackend() Backend {
	return &portaudioBackend{}
}

func (b *portaudioBackend) Open(sink func(Frame)) (StreamInfo, error) {
	if err := portaudio.Initialize(); err != nil {
		return StreamInfo{}, fmt.Errorf("failed to initialize audio: %w", err)
	}
	b.initialized = true

	rate, channels := defaultInputParams()

	// Float32 is what every modern host API negotiates; some older ALSA
	// device configurations only accept 16-bit.
	stream, err := portaudio.OpenDefaultStream(channels, 0, rate, framesPerBuffer,
		func(in []float32) {
			frame := make([]float32, len(in))
			copy(frame, in)
			sink(Frame{F32: frame})
		})
	if err == nil {
		if startErr := stream.Start(); startErr != nil {
			stream.Close()
			return StreamInfo{}, fmt.Errorf("failed to start audio stream: %w", startErr)
		}
		b.stream = stream
		return StreamInfo{SampleRate: rate, Channels: channels, Format: FormatF32}, nil
	}
	logger.Warning(logger.CategoryCapture, "float32 input stream refused (%v), retrying as int16", err)

	stream, err = portaudio.OpenDefaultStream(channels, 0, rate, framesPerBuffer,
		func(in []int16) {
			frame := make([]int16, len(in))
			copy(frame, in)
			sink(Frame{I16: frame})
		})
	if err != nil {
		return StreamInfo{}, fmt.Errorf("failed to open audio stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return StreamInfo{}, fmt.Errorf("failed to start audio stream: %w", err)
	}
	b.stream = stream
	return StreamInfo{SampleRate: rate, Channels: channels, Format: FormatI16}, nil
}

func (b *portaudioBackend) Close() error {
	var firstErr error
	if b.stream != nil {
		if err := b.stream.Stop(); err != nil {
			firstErr = fmt.Errorf("failed to stop audio stream: %w", err)
		}
		if err := b.stream.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close audio stream: %w", err)
		}
		b.stream = nil
	}
	if b.initialized {
		b.initialized = false
		if err := portaudio.Terminate(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// defaultInputParams reads the default input device's native rate and channel
// count, clamped to stereo. Failing that it assumes 44.1kHz mono, which the
// conditioning pass resamples anyway.
func defaultInputParams() (float64, int) {
	rate := 44100.0
	channels := 1

	api, err := portaudio.DefaultHostApi()
	if err != nil || api.DefaultInputDevice == nil {
		logger.Warning(logger.CategoryCapture, "no default input device reported, assuming %0.fHz mono", rate)
		return rate, channels
	}

	dev := api.DefaultInputDevice
	if dev.DefaultSampleRate > 0 {
		rate = dev.DefaultSampleRate
	}
	if dev.MaxInputChannels >= 2 {
		channels = 2
	}
	logger.Debug(logger.CategoryCapture, "input device %q: %0.fHz, %d channel(s)", dev.Name, rate, channels)
	return rate, channels
}
