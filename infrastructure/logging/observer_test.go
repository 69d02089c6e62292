package logging

import (
	"strings"
	"testing"

	"vidrop/domain/frame"
	"vidrop/domain/scan"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestScanObserver_FrameScanned(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	o := NewScanObserver(zap.New(core), 30, 300)

	o.FrameScanned(scan.FrameProgress{Index: 90, MinScore: 412})

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	msg := entries[0].Message
	for _, want := range []string{"90 / 300", "30.00%", "3s", "412 pts"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q missing %q", msg, want)
		}
	}
}

func TestScanObserver_UnknownTotal(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	o := NewScanObserver(zap.New(core), 0, 0)

	o.FrameScanned(scan.FrameProgress{Index: 60, MinScore: 7})

	msg := logs.All()[0].Message
	if !strings.Contains(msg, "/ ?") || !strings.Contains(msg, "2s") {
		t.Errorf("message %q should show an unknown total at the default frame rate", msg)
	}
}

func TestScanObserver_SkipsBelowDebug(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	o := NewScanObserver(zap.New(core), 30, 0)

	o.FrameScanned(scan.FrameProgress{Index: 1})
	o.WindowCompared(scan.Comparison{FrameIndex: 1, Score: 900})

	if logs.Len() != 0 {
		t.Errorf("expected no entries, got %d", logs.Len())
	}
}

func TestScanObserver_LogsHit(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	o := NewScanObserver(zap.New(core), 30, 0)

	o.WindowCompared(scan.Comparison{
		FrameIndex: 5,
		Template:   &scan.Template{Path: "/t/logo.png"},
		Offset:     frame.Offset{Col: 20},
		Hit:        true,
	})

	if logs.Len() != 1 || !strings.Contains(logs.All()[0].Message, "/t/logo.png hit at 5") {
		t.Errorf("hit not logged: %+v", logs.All())
	}
}
