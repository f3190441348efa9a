package logging_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stevemurr/scfiles-backend/logging"
)

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(&buf, "info", "json")
	if err != nil {
		t.Fatal(err)
	}
	logger.Debug("hidden")
	logger.Info("slot written", "slot", "movies", "count", 3)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line (debug filtered), got %d: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatal(err)
	}
	if entry["msg"] != "slot written" || entry["slot"] != "movies" {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestTextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(&buf, "debug", "text")
	if err != nil {
		t.Fatal(err)
	}
	logger.Debug("lock acquired", "slot", "series")
	out := buf.String()
	if !strings.Contains(out, "lock acquired") || !strings.Contains(out, "series") {
		t.Fatalf("expected message and attrs in output, got %q", out)
	}
}

func TestInvalidLevel(t *testing.T) {
	if _, err := logging.New(&bytes.Buffer{}, "loud", "text"); err == nil {
		t.Fatal("expected error for invalid level")
	}
}
