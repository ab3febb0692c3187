// Package cliresolver locates and validates the external transcription
// executable. Candidates are probed in a fixed order (explicit override,
// bundled sidecar, PATH, known install locations, dev sidecars) and each
// must pass a --help sanity check before it is accepted.
package cliresolver

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/AustinKelsay/dicktaint/pkg/logger"
)

const probeTimeout = 2 * time.Second

// Resolved describes a validated transcription executable.
type Resolved struct {
	// Path is the absolute path of the executable that passed validation.
	Path string
	// Source names the probe stage that produced it, for onboarding display.
	Source string
}

// Resolver probes for a usable whisper-cli, in order: explicit override,
// bundled sidecar, PATH, known install candidates, local dev sidecars.
type Resolver struct {
	override string

	// validate is swapped in tests; the default shells out to `--help`.
	validate func(path string) bool
}

// New returns a Resolver. override, when non-empty, is tried first and is
// typically Config.CliPathOverride (the WHISPER_CLI_PATH variable).
func New(override string) *Resolver {
	r := &Resolver{override: override}
	r.validate = r.helpProbe
	return r
}

// Resolve walks the probe chain and returns the first candidate that exists,
// is executable, and passes the --help validation. ok is false when no
// candidate qualifies.
func (r *Resolver) Resolve() (Resolved, bool) {
	for _, probe := range r.probes() {
		for _, candidate := range probe.candidates {
			if candidate == "" {
				continue
			}
			if !isExecutableFile(candidate) {
				continue
			}
			if !r.validate(candidate) {
				logger.Warning(logger.CategorySetup, "candidate %s failed --help validation, skipping", candidate)
				continue
			}
			logger.Info(logger.CategorySetup, "resolved transcription CLI via %s: %s", probe.name, candidate)
			return Resolved{Path: candidate, Source: probe.name}, true
		}
	}
	logger.Warning(logger.CategorySetup, "no usable transcription CLI found")
	return Resolved{}, false
}

type probe struct {
	name       string
	candidates []string
}

func (r *Resolver) probes() []probe {
	return []probe{
		{name: "override", candidates: []string{r.override}},
		{name: "sidecar", candidates: sidecarCandidates()},
		{name: "path", candidates: pathCandidates()},
		{name: "install", candidates: installCandidates()},
		{name: "dev-sidecar", candidates: devSidecarCandidates()},
	}
}

// sidecarCandidates lists binaries shipped next to the running executable,
// the way a packaged host runtime lays out its bundled tools.
func sidecarCandidates() []string {
	self, err := os.Executable()
	if err != nil {
		return nil
	}
	dir := filepath.Dir(self)
	name := exeName("whisper-cli")
	return []string{
		filepath.Join(dir, name),
		filepath.Join(dir, "resources", name),
	}
}

func pathCandidates() []string {
	path, err := exec.LookPath(exeName("whisper-cli"))
	if err != nil {
		return nil
	}
	return []string{path}
}

// installCandidates lists the per-OS locations a system package manager or
// installer drops whisper-cli into.
func installCandidates() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{
			"/opt/homebrew/bin/whisper-cli",
			"/usr/local/bin/whisper-cli",
		}
	case "windows":
		return []string{
			`C:\Program Files\whisper.cpp\whisper-cli.exe`,
		}
	default:
		return []string{
			"/usr/local/bin/whisper-cli",
			"/usr/bin/whisper-cli",
		}
	}
}

// devSidecarCandidates covers a source checkout with a vendored whisper.cpp
// build sitting next to the repo.
func devSidecarCandidates() []string {
	name := exeName("whisper-cli")
	return []string{
		filepath.Join("whisper.cpp", "build", "bin", name),
		filepath.Join("..", "whisper.cpp", "build", "bin", name),
	}
}

func exeName(base string) string {
	if runtime.GOOS == "windows" {
		return base + ".exe"
	}
	return base
}

// isExecutableFile reports whether path exists and carries an execute bit
// (all regular files count on Windows).
func isExecutableFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0111 != 0
}

// helpProbe invokes the candidate with --help under a 2s budget and checks
// the output resembles genuine whisper.cpp help, rejecting placeholder stubs
// that exit 0 without printing usage. Exceeding the budget disqualifies the
// candidate only; the chain continues.
func (r *Resolver) helpProbe(path string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, path, "--help").CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		logger.Warning(logger.CategorySetup, "candidate %s exceeded the %s probe budget", path, probeTimeout)
		return false
	}
	if err != nil {
		return false
	}
	return looksLikeWhisperHelp(string(out))
}

// looksLikeWhisperHelp requires the help text to mention usage plus a
// whisper.cpp marker (a model flag or the word "whisper"), which a stub
// echoing "ok" never does.
func looksLikeWhisperHelp(out string) bool {
	low := strings.ToLower(out)
	if !strings.Contains(low, "usage") {
		return false
	}
	for _, marker := range []string{"--model", "-m ", "whisper"} {
		if strings.Contains(low, marker) {
			return true
		}
	}
	return false
}
