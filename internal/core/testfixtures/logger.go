package testfixtures

import (
	"fmt"
	"strings"
	"sync"

	"kilometers.ai/loader/internal/core/ports"
)

// LogEntry is one recorded log call
type LogEntry struct {
	Level   string
	Name    string
	Message string
	Args    []interface{}
}

// String renders the entry for assertion messages
func (e LogEntry) String() string {
	return fmt.Sprintf("[%s] %s: %s %v", e.Level, e.Name, e.Message, e.Args)
}

// RecordingLogger records every log call, including those of its children
type RecordingLogger struct {
	name    string
	mu      *sync.Mutex
	entries *[]LogEntry
}

// NewRecordingLogger creates an empty recorder
func NewRecordingLogger() *RecordingLogger {
	return &RecordingLogger{mu: &sync.Mutex{}, entries: &[]LogEntry{}}
}

func (l *RecordingLogger) record(level, msg string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.entries = append(*l.entries, LogEntry{Level: level, Name: l.name, Message: msg, Args: args})
}

func (l *RecordingLogger) Debug(msg string, args ...interface{}) { l.record("debug", msg, args) }
func (l *RecordingLogger) Info(msg string, args ...interface{})  { l.record("info", msg, args) }
func (l *RecordingLogger) Warn(msg string, args ...interface{})  { l.record("warn", msg, args) }
func (l *RecordingLogger) Error(msg string, args ...interface{}) { l.record("error", msg, args) }

// Named returns a child sharing the same record
func (l *RecordingLogger) Named(name string) ports.Logger {
	child := name
	if l.name != "" {
		child = l.name + "." + name
	}
	return &RecordingLogger{name: child, mu: l.mu, entries: l.entries}
}

// Entries returns a copy of everything recorded so far
func (l *RecordingLogger) Entries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LogEntry, len(*l.entries))
	copy(out, *l.entries)
	return out
}

// Find returns the entries of the given level whose message contains substr
func (l *RecordingLogger) Find(level, substr string) []LogEntry {
	var out []LogEntry
	for _, e := range l.Entries() {
		if e.Level == level && strings.Contains(e.Message, substr) {
			out = append(out, e)
		}
	}
	return out
}

// Messages returns the messages recorded at level
func (l *RecordingLogger) Messages(level string) []string {
	var out []string
	for _, e := range l.Entries() {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}

var _ ports.Logger = (*RecordingLogger)(nil)
