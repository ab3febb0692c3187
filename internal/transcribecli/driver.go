// Package transcribecli drives the external whisper-cli subprocess:
// write a temporary WAV, invoke the CLI with tuned flags, parse and clean
// the emitted text file, and optionally re-run a higher-accuracy pass when
// the output looks low-confidence.
package transcribecli

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/AustinKelsay/dicktaint/internal/engine/errs"
	"github.com/AustinKelsay/dicktaint/pkg/logger"
)

const (
	minThreads = 2
	maxThreads = 8

	fastBeam = 2
	fastBest = 2

	accurateBeam = 5
	accurateBest = 5
)

// Runner executes the CLI; tests swap in a fake that writes canned output
// files.
type Runner interface {
	// Run invokes cliPath with args and returns captured stderr. A non-nil
	// error means a non-zero exit.
	Run(ctx context.Context, cliPath string, args []string) (stderr string, err error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, cliPath string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, cliPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stderr.String(), err
}

// Driver owns one transcription invocation at a time. It holds no state
// between calls; temporary files are scoped to each call and removed on
// every exit path.
type Driver struct {
	cliPath string
	cores   int
	runner  Runner
}

// NewDriver returns a Driver bound to the resolved CLI. cores is the
// device's logical CPU count, used to choose the fast-pass thread budget.
func NewDriver(cliPath string, cores int) *Driver {
	return &Driver{cliPath: cliPath, cores: cores, runner: execRunner{}}
}

// newDriverWithRunner is the test constructor.
func newDriverWithRunner(cliPath string, cores int, r Runner) *Driver {
	return &Driver{cliPath: cliPath, cores: cores, runner: r}
}

// Transcribe converts 16kHz mono samples to cleaned text. It returns a
// NoSpeech error when the cleaned transcript is empty and TranscriptionFailed
// when the CLI exits non-zero or emits no output file.
func (d *Driver) Transcribe(ctx context.Context, samples []float32, modelPath string) (string, error) {
	tempDir, err := os.MkdirTemp("", "dicktaint-transcribe-*")
	if err != nil {
		return "", errs.WithDetail(errs.ErrTranscriptionFailed, err.Error(), err)
	}
	defer os.RemoveAll(tempDir)

	wavPath := filepath.Join(tempDir, "audio.wav")
	if err := writeWAV(wavPath, samples, 16000); err != nil {
		return "", errs.WithDetail(errs.ErrTranscriptionFailed, err.Error(), err)
	}

	threads := clampThreads(d.cores)

	fast, err := d.runPass(ctx, tempDir, wavPath, modelPath, "fast", threads, fastBeam, fastBest)
	if err != nil {
		return "", err
	}
	if fast == "" {
		return "", errs.WithDetail(errs.ErrNoSpeech, "empty transcript", nil)
	}

	if !looksLowInformation(fast) {
		return fast, nil
	}

	logger.Info(logger.CategoryTranscr, "fast pass looks low-confidence (%q), running accuracy pass", fast)
	accurate, err := d.runPass(ctx, tempDir, wavPath, modelPath, "accurate", threads, accurateBeam, accurateBest)
	if err != nil {
		// The fast pass already produced usable text; keep it rather than
		// failing the whole call on a retry-only error.
		logger.Warning(logger.CategoryTranscr, "accuracy pass failed, keeping fast result: %v", err)
		return fast, nil
	}

	if coverageScore(accurate) > coverageScore(fast) {
		return accurate, nil
	}
	return fast, nil
}

// runPass performs one CLI invocation and returns the cleaned transcript.
func (d *Driver) runPass(ctx context.Context, tempDir, wavPath, modelPath, label string, threads, beam, best int) (string, error) {
	prefix := filepath.Join(tempDir, "out-"+label)
	args := []string{
		"-m", modelPath,
		"-f", wavPath,
		"-l", "en",
		"-otxt",
		"-nt",
		"-np",
		"-of", prefix,
		"-t", strconv.Itoa(threads),
		"-bs", strconv.Itoa(beam),
		"-bo", strconv.Itoa(best),
	}

	logger.Debug(logger.CategoryTranscr, "invoking %s %v", d.cliPath, args)
	stderr, err := d.runner.Run(ctx, d.cliPath, args)
	if err != nil {
		return "", errs.WithDetail(errs.ErrTranscriptionFailed, stderr, err)
	}

	data, err := os.ReadFile(prefix + ".txt")
	if err != nil {
		return "", errs.WithDetail(errs.ErrTranscriptionFailed, "CLI produced no output file", err)
	}

	return cleanTranscript(string(data)), nil
}

// clampThreads picks the fast-pass thread count from the logical core count.
func clampThreads(cores int) int {
	if cores < minThreads {
		return minThreads
	}
	if cores > maxThreads {
		return maxThreads
	}
	return cores
}
