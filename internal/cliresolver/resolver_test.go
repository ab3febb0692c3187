package cliresolver

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func writeFakeExe(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("failed to write fake executable: %v", err)
	}
	return path
}

func TestResolvePrefersOverride(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fake shell executables are not runnable on windows")
	}
	dir := t.TempDir()
	override := writeFakeExe(t, dir, "whisper-cli")

	r := New(override)
	r.validate = func(path string) bool { return true }

	got, ok := r.Resolve()
	if !ok {
		t.Fatal("expected resolution to succeed")
	}
	if got.Path != override {
		t.Errorf("expected override path %s, got %s", override, got.Path)
	}
	if got.Source != "override" {
		t.Errorf("expected source override, got %s", got.Source)
	}
}

func TestResolveSkipsFailingValidation(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fake shell executables are not runnable on windows")
	}
	dir := t.TempDir()
	override := writeFakeExe(t, dir, "whisper-cli")

	r := New(override)
	r.validate = func(path string) bool { return false }

	if _, ok := r.Resolve(); ok {
		t.Error("expected resolution to fail when every candidate fails validation")
	}
}

func TestResolveSkipsNonExecutable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("execute bits are not meaningful on windows")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "whisper-cli")
	if err := os.WriteFile(path, []byte("not executable"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	r := New(path)
	r.validate = func(string) bool { return true }

	if _, ok := r.Resolve(); ok {
		t.Error("expected a non-executable override to be skipped")
	}
}

func TestLooksLikeWhisperHelp(t *testing.T) {
	cases := []struct {
		name string
		out  string
		want bool
	}{
		{
			name: "genuine whisper help",
			out:  "usage: whisper-cli [options] file\n  -m FNAME, --model FNAME\n",
			want: true,
		},
		{
			name: "placeholder stub",
			out:  "ok\n",
			want: false,
		},
		{
			name: "usage without whisper flags",
			out:  "usage: something else entirely\n",
			want: false,
		},
		{
			name: "empty output",
			out:  "",
			want: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := looksLikeWhisperHelp(tc.out); got != tc.want {
				t.Errorf("looksLikeWhisperHelp(%q) = %v, want %v", tc.out, got, tc.want)
			}
		})
	}
}
