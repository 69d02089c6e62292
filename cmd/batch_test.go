package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vidrop/domain/scan"
)

func TestRunBatchWithDependencies(t *testing.T) {
	env := newScanEnv(t, "a.mp4", "b.mp4", "notes.txt")
	env.opener.hits["b.mp4"] = 20

	var out bytes.Buffer
	err := RunBatchWithDependencies(context.Background(), env.deps, defaultOptions(),
		BatchOptions{Workers: 2, Extensions: []string{".mp4"}}, env.dir, []string{env.logo}, &out)
	if err != nil {
		t.Fatalf("RunBatchWithDependencies() unexpected error: %v", err)
	}

	text := out.String()
	if !strings.Contains(text, "a.mp4: ") || !strings.Contains(text, "no match") {
		t.Errorf("output %q missing a.mp4 miss", text)
	}
	if !strings.Contains(text, "b.mp4: ") || !strings.Contains(text, "-> "+env.path("b_vidrop.mp4")) {
		t.Errorf("output %q missing b.mp4 hit", text)
	}
	if strings.Contains(text, "notes.txt") {
		t.Error("non-video file was scanned")
	}
	if strings.Index(text, "a.mp4: ") > strings.Index(text, "b.mp4: ") {
		t.Error("summary not in directory order")
	}
	if _, err := os.Stat(env.path("b_vidrop.mp4")); err != nil {
		t.Errorf("b.mp4 output missing: %v", err)
	}
}

func TestRunBatchWithDependencies_OutputDirectory(t *testing.T) {
	env := newScanEnv(t, "b.mp4")
	env.opener.hits["b.mp4"] = 20
	outDir := filepath.Join(env.dir, "trimmed", "today")
	opts := defaultOptions()
	opts.Output = outDir

	err := RunBatchWithDependencies(context.Background(), env.deps, opts,
		BatchOptions{Workers: 1, Extensions: []string{"mp4"}}, env.dir, []string{env.logo}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("RunBatchWithDependencies() unexpected error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "b_vidrop.mp4")); err != nil {
		t.Errorf("output not written to --output directory: %v", err)
	}
}

func TestRunBatchWithDependencies_NothingMatched(t *testing.T) {
	env := newScanEnv(t, "a.mp4", "c.mp4")

	err := RunBatchWithDependencies(context.Background(), env.deps, defaultOptions(),
		BatchOptions{Workers: 2, Extensions: []string{".mp4"}}, env.dir, []string{env.logo}, &bytes.Buffer{})
	if !errors.Is(err, ErrNoMatch) {
		t.Errorf("RunBatchWithDependencies() error = %v, want ErrNoMatch", err)
	}
}

func TestRunBatchWithDependencies_FailureReported(t *testing.T) {
	env := newScanEnv(t, "a.mp4", "b.mp4")
	env.opener.hits["a.mp4"] = 20
	env.opener.hits["b.mp4"] = 2 // too early to cut

	var out bytes.Buffer
	err := RunBatchWithDependencies(context.Background(), env.deps, defaultOptions(),
		BatchOptions{Workers: 2, Extensions: []string{".mp4"}}, env.dir, []string{env.logo}, &out)
	if err == nil || !strings.Contains(err.Error(), "1 of 2 videos failed") {
		t.Fatalf("RunBatchWithDependencies() error = %v, want one failure", err)
	}
	if !strings.Contains(out.String(), "video length is not enough") {
		t.Errorf("output %q missing failure reason", out.String())
	}
}

func TestRunBatchWithDependencies_EmptyDirectory(t *testing.T) {
	env := newScanEnv(t)

	err := RunBatchWithDependencies(context.Background(), env.deps, defaultOptions(),
		BatchOptions{Extensions: []string{".mp4"}}, env.dir, []string{env.logo}, &bytes.Buffer{})
	if !errors.Is(err, scan.ErrNotFound) {
		t.Errorf("RunBatchWithDependencies() error = %v, want ErrNotFound", err)
	}
}
