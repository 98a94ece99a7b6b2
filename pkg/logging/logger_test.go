package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func readEvents(t *testing.T, path string) []Event {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	var events []Event
	for _, line := range splitLines(data) {
		var e Event
		if err := json.Unmarshal(line, &e); err != nil {
			t.Fatalf("unmarshal line %q: %v", line, err)
		}
		events = append(events, e)
	}
	return events
}

func splitLines(data []byte) [][]byte {
	var lines [][]byte
	start := 0
	for i, b := range data {
		if b == '\n' {
			if i > start {
				lines = append(lines, data[start:i])
			}
			start = i + 1
		}
	}
	return lines
}

func TestLoggerWritesRunLog(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewLogger(dir, "run-1")
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	defer logger.Close()

	if err := logger.Info(CategoryPipeline, "run_started", "pipeline run started", map[string]any{"signals": 3}); err != nil {
		t.Fatalf("Info: %v", err)
	}

	events := readEvents(t, filepath.Join(dir, "runs", "run-1.jsonl"))
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].RunID != "run-1" {
		t.Errorf("run id not stamped: %+v", events[0])
	}
	if events[0].Category != CategoryPipeline {
		t.Errorf("category = %s, want pipeline", events[0].Category)
	}
	if events[0].Timestamp.IsZero() {
		t.Error("timestamp should be set automatically")
	}
}

func TestLoggerErrorsGoToSharedErrorLog(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewLogger(dir, "run-2")
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	defer logger.Close()

	logger.Error(CategoryPublish, "publish_failed", "auth failure", nil)
	logger.Info(CategoryPublish, "queued", "queued instead", nil)

	errEvents := readEvents(t, filepath.Join(dir, "errors.jsonl"))
	if len(errEvents) != 1 {
		t.Fatalf("expected 1 error event, got %d", len(errEvents))
	}
	if errEvents[0].EventType != "publish_failed" {
		t.Errorf("unexpected error event: %+v", errEvents[0])
	}
}

func TestLoggerMinLevel(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewLogger(dir, "run-3")
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	defer logger.Close()

	logger.Debug(CategoryEnrich, "keyword_extracted", "dropped below min level", nil)
	logger.SetMinLevel(LevelDebug)
	logger.Debug(CategoryEnrich, "keyword_extracted", "kept", nil)

	events := readEvents(t, filepath.Join(dir, "runs", "run-3.jsonl"))
	if len(events) != 1 {
		t.Fatalf("expected 1 event after level filtering, got %d", len(events))
	}
}

func TestNopLoggerDoesNotPanic(t *testing.T) {
	logger := NewNopLogger()
	if err := logger.Error(CategoryLedger, "persist_failed", "swallowed", nil); err != nil {
		t.Fatalf("nop logger returned error: %v", err)
	}
}
