package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestLoggerWritesToGivenWriter(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, slog.LevelInfo)
	l.Info("parsing file", "path", "main.rs")

	if !strings.Contains(buf.String(), "parsing file") {
		t.Errorf("expected log output to contain the message, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), "main.rs") {
		t.Errorf("expected log output to contain the attribute value, got %q", buf.String())
	}
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, slog.LevelWarn)
	l.Debug("should not appear")
	l.Info("should not appear either")

	if buf.Len() != 0 {
		t.Errorf("expected no output below the configured level, got %q", buf.String())
	}

	l.Warn("should appear")
	if buf.Len() == 0 {
		t.Errorf("expected output at the configured level")
	}
}

func TestDefaultHonorsDiffsitterLogEnvVar(t *testing.T) {
	t.Setenv("DIFFSITTER_LOG", "debug")
	l := Default()

	var buf bytes.Buffer
	l.Logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: l.level}))
	l.Debug("visible at debug")
	if buf.Len() == 0 {
		t.Errorf("expected DIFFSITTER_LOG=debug to lower the default level below Info")
	}
}

func TestDefaultFallsBackToInfoOnInvalidEnvVar(t *testing.T) {
	t.Setenv("DIFFSITTER_LOG", "not-a-level")
	l := Default()

	var buf bytes.Buffer
	l.Logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: l.level}))
	l.Debug("should stay suppressed")
	if buf.Len() != 0 {
		t.Errorf("expected an invalid DIFFSITTER_LOG value to fall back to Info, suppressing Debug")
	}
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, slog.LevelError)
	l.Info("suppressed")
	if buf.Len() != 0 {
		t.Fatalf("expected no output before raising level verbosity")
	}

	l.SetLevel(slog.LevelInfo)
	l.Info("now visible")
	if buf.Len() == 0 {
		t.Errorf("expected output after lowering the level threshold")
	}
}
