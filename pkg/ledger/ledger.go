package ledger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	apperrors "github.com/SyedFrazAli/linkedin-automation-engine/pkg/errors"
	"github.com/SyedFrazAli/linkedin-automation-engine/pkg/logging"
)

// maxExecutions bounds the audit trail; oldest entries are evicted first.
const maxExecutions = 100

// Entry records a processed signal
type Entry struct {
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Execution is one audit-trail record of a pipeline run or operation
type Execution struct {
	Workflow  string    `json:"workflow_name"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Details   string    `json:"details,omitempty"`
}

type state struct {
	Processed  map[string]Entry `json:"processed"`
	Executions []Execution      `json:"executions"`
	Metadata   map[string]any   `json:"metadata"`
}

// Ledger is the durable at-most-once-processing record. Every mutation
// rewrites the backing JSON document wholesale; a persistence failure is
// logged and swallowed, leaving the in-memory state authoritative for the
// rest of the process lifetime.
type Ledger struct {
	mu     sync.Mutex
	path   string
	logger *logging.Logger
	state  state
}

// Load opens the ledger at path. A missing or corrupt store yields an
// empty ledger rather than failing startup.
func Load(path string, logger *logging.Logger) *Ledger {
	l := &Ledger{
		path:   path,
		logger: logger,
		state: state{
			Processed: make(map[string]Entry),
			Metadata:  make(map[string]any),
		},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn(logging.CategoryLedger, "load_failed", "state file unreadable, starting empty", map[string]any{
				"path":  path,
				"code":  string(apperrors.ErrCodeStorageRead),
				"error": err.Error(),
			})
		}
		return l
	}

	var loaded state
	if err := json.Unmarshal(data, &loaded); err != nil {
		logger.Warn(logging.CategoryLedger, "load_corrupt", "state file corrupt, starting empty", map[string]any{
			"path":  path,
			"code":  string(apperrors.ErrCodeStorageCorrupt),
			"error": err.Error(),
		})
		return l
	}

	if loaded.Processed == nil {
		loaded.Processed = make(map[string]Entry)
	}
	if loaded.Metadata == nil {
		loaded.Metadata = make(map[string]any)
	}
	if len(loaded.Executions) > maxExecutions {
		loaded.Executions = loaded.Executions[len(loaded.Executions)-maxExecutions:]
	}
	l.state = loaded
	return l
}

// HasProcessed reports whether a signal id is already recorded
func (l *Ledger) HasProcessed(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.state.Processed[id]
	return ok
}

// MarkProcessed records a signal id. Re-marking the same id overwrites
// metadata but does not duplicate the entry.
func (l *Ledger) MarkProcessed(id string, metadata map[string]any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.state.Processed[id] = Entry{
		Timestamp: time.Now(),
		Metadata:  metadata,
	}
	l.persistLocked()
}

// MarkIfNew atomically checks and marks a signal id, returning true if the
// id was new. Deployments with overlapping scheduled runs should use this
// instead of the HasProcessed/MarkProcessed pair.
func (l *Ledger) MarkIfNew(id string, metadata map[string]any) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.state.Processed[id]; ok {
		return false
	}
	l.state.Processed[id] = Entry{
		Timestamp: time.Now(),
		Metadata:  metadata,
	}
	l.persistLocked()
	return true
}

// ProcessedCount returns the number of recorded signal ids
func (l *Ledger) ProcessedCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.state.Processed)
}

// RecordExecution appends an audit-trail entry, retaining the most
// recent 100 entries.
func (l *Ledger) RecordExecution(workflow, status, details string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.state.Executions = append(l.state.Executions, Execution{
		Workflow:  workflow,
		Status:    status,
		Timestamp: time.Now(),
		Details:   details,
	})
	if len(l.state.Executions) > maxExecutions {
		l.state.Executions = l.state.Executions[len(l.state.Executions)-maxExecutions:]
	}
	l.persistLocked()
}

// RecentExecutions returns up to n audit entries, newest last
func (l *Ledger) RecentExecutions(n int) []Execution {
	l.mu.Lock()
	defer l.mu.Unlock()

	start := 0
	if n > 0 && len(l.state.Executions) > n {
		start = len(l.state.Executions) - n
	}
	out := make([]Execution, len(l.state.Executions)-start)
	copy(out, l.state.Executions[start:])
	return out
}

// Get returns a generic metadata value, or def when absent
func (l *Ledger) Get(key string, def any) any {
	l.mu.Lock()
	defer l.mu.Unlock()

	if v, ok := l.state.Metadata[key]; ok {
		return v
	}
	return def
}

// Set stores a generic metadata value
func (l *Ledger) Set(key string, value any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.state.Metadata[key] = value
	l.persistLocked()
}

// persistLocked rewrites the full state document. Durability is
// best-effort: failures are logged and swallowed.
func (l *Ledger) persistLocked() {
	data, err := json.MarshalIndent(l.state, "", "  ")
	if err != nil {
		l.logger.Error(logging.CategoryLedger, "persist_failed", "state marshal failed", map[string]any{"error": err.Error()})
		return
	}

	dir := filepath.Dir(l.path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			l.logger.Error(logging.CategoryLedger, "persist_failed", "state directory unavailable", map[string]any{"path": l.path, "error": err.Error()})
			return
		}
	}

	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		l.logger.Error(logging.CategoryLedger, "persist_failed", "state write failed", map[string]any{
			"path":  l.path,
			"code":  string(apperrors.ErrCodeStorageWrite),
			"error": err.Error(),
		})
		return
	}
	if err := os.Rename(tmp, l.path); err != nil {
		l.logger.Error(logging.CategoryLedger, "persist_failed", "state rename failed", map[string]any{
			"path":  l.path,
			"code":  string(apperrors.ErrCodeStorageWrite),
			"error": err.Error(),
		})
	}
}
