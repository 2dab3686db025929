// Package logging provides leveled logging and an audit trail for potency.
// It offers two complementary outputs:
//   - A leveled slog.Logger for stderr (operational output)
//   - An AuditLogger for structured JSONL run events (.potency/audit.jsonl)
//
// Every audit line carries one of the Event* names below. A run ends in
// exactly one of them: run_completed with its final metrics, run_rejected
// when the input or parameters were refused, or model_violation when the
// integrator caught potency rising, which is a defect to investigate.
package logging

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// LevelTrace is a custom slog level below Debug for per-step logging.
// At this level every integration step of a run is logged.
const LevelTrace = slog.LevelDebug - 4

// AuditFileName is the name of the audit trail inside the data directory.
const AuditFileName = "audit.jsonl"

// Audit event names.
const (
	EventRunCompleted   = "run_completed"
	EventRunRejected    = "run_rejected"
	EventModelViolation = "model_violation"
)

// ParseLevel maps a string level name to a slog.Level.
// Supported values: "info", "debug", "trace" (case-insensitive).
// Unknown values default to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "trace":
		return LevelTrace
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a leveled slog.Logger writing to w.
func NewLogger(level string, w io.Writer) *slog.Logger {
	lvl := ParseLevel(level)
	opts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Label the custom trace level
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Discard returns a logger that drops everything. Used where no logger is wired.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// AuditLogger appends structured run events to a JSONL file.
// It is safe for concurrent use. A nil AuditLogger is safe to use;
// all methods are no-ops on nil receiver.
type AuditLogger struct {
	mu   sync.Mutex
	file *os.File
	now  func() time.Time
}

// NewAuditLogger creates an audit logger appending to dir/audit.jsonl.
// Returns nil when disabled or when the file cannot be opened.
// All methods are nil-safe.
func NewAuditLogger(dir string, enabled bool) *AuditLogger {
	if !enabled || dir == "" {
		return nil
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil
	}

	path := filepath.Join(dir, AuditFileName)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil
	}

	return &AuditLogger{file: f, now: time.Now}
}

// Log writes one event as a single JSONL line. "event" and "time" fields are
// added automatically. The caller's map is not mutated.
// Safe to call on nil receiver.
func (al *AuditLogger) Log(event string, fields map[string]any) {
	if al == nil {
		return
	}

	entry := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		entry[k] = v
	}
	entry["event"] = event

	al.mu.Lock()
	defer al.mu.Unlock()

	if al.file == nil {
		return
	}
	entry["time"] = al.now().UTC().Format(time.RFC3339Nano)

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	data = append(data, '\n')
	_, _ = al.file.Write(data)
}

// Close closes the underlying file. Safe to call on nil receiver.
func (al *AuditLogger) Close() {
	if al == nil {
		return
	}

	al.mu.Lock()
	defer al.mu.Unlock()

	if al.file == nil {
		return
	}
	al.file.Close()
	al.file = nil
}
