package logging_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"soundblanket/internal/platform/logging"
)

func TestNewWritesLeveledOutput(t *testing.T) {
	t.Parallel()
	buf := &bytes.Buffer{}
	logger, closeFn, err := logging.New(logging.Options{Name: "test", Level: "warn", Output: buf})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	defer func() { _ = closeFn() }()

	logger.Info("hidden")
	logger.Warn("backend init failed", "channel", "Rain")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, "backend init failed") || !strings.Contains(out, "channel=Rain") {
		t.Fatalf("missing warn line: %s", out)
	}
}

func TestNewRejectsUnknownLevelAndWritesFile(t *testing.T) {
	t.Parallel()
	if _, _, err := logging.New(logging.Options{Level: "loud"}); err == nil {
		t.Fatalf("expected unknown level error")
	}

	path := filepath.Join(t.TempDir(), "logs", "app.log")
	logger, closeFn, err := logging.New(logging.Options{File: path})
	if err != nil {
		t.Fatalf("new file logger: %v", err)
	}
	logger.Info("saved mix", "name", "Storm")
	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(b), "saved mix") {
		t.Fatalf("log file missing entry: %s", b)
	}
}
