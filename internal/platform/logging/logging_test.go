package logging_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fastrack/internal/platform/logging"
)

func TestNewFiltersBelowLevel(t *testing.T) {
	t.Parallel()
	buf := &bytes.Buffer{}
	logger := logging.New("warn", buf)
	logger.Info("hidden")
	logger.Warn("save state failed", "error", "disk full")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, "save state failed") || !strings.Contains(out, "disk full") {
		t.Fatalf("warn line missing: %s", out)
	}
}

func TestNewUnknownLevelFallsBackToWarn(t *testing.T) {
	t.Parallel()
	buf := &bytes.Buffer{}
	logger := logging.New("chatty", buf)
	if !logger.IsWarn() || logger.IsInfo() {
		t.Fatalf("expected warn level logger")
	}
}

func TestOpenFileAppends(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "logs", "fastrack.log")
	logger, closer, err := logging.OpenFile(path, "info")
	if err != nil {
		t.Fatalf("open log file: %v", err)
	}
	logger.Info("tui started")
	if err := closer.Close(); err != nil {
		t.Fatalf("close log: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(b), "tui started") {
		t.Fatalf("log file missing line: %s", b)
	}
}
