package testutil

import "sync"

// LogEntry is a single captured log call.
type LogEntry struct {
	Level string
	Msg   string
	Args  []any
}

// RecordingLogger captures log calls in memory. It satisfies logging.Logger.
type RecordingLogger struct {
	mu      sync.Mutex
	entries []LogEntry
}

func (r *RecordingLogger) record(level, msg string, args []any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, LogEntry{Level: level, Msg: msg, Args: append([]any(nil), args...)})
}

// Debug records a debug entry.
func (r *RecordingLogger) Debug(msg string, args ...any) { r.record("debug", msg, args) }

// Info records an info entry.
func (r *RecordingLogger) Info(msg string, args ...any) { r.record("info", msg, args) }

// Warn records a warning entry.
func (r *RecordingLogger) Warn(msg string, args ...any) { r.record("warn", msg, args) }

// Error records an error entry.
func (r *RecordingLogger) Error(msg string, args ...any) { r.record("error", msg, args) }

// Entries returns a snapshot of captured entries.
func (r *RecordingLogger) Entries() []LogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]LogEntry(nil), r.entries...)
}

// Has reports whether an entry with the given level and message was captured.
func (r *RecordingLogger) Has(level, msg string) bool {
	for _, e := range r.Entries() {
		if e.Level == level && e.Msg == msg {
			return true
		}
	}
	return false
}
