// Package diag provides the shared diagnostics ring buffer.
//
// The ring is the one genuinely multi-writer resource in the editor: the
// dispatch loop, plugin hosts, and background watchers all append to it,
// while operator commands read it back. Access is guarded by a
// read/write lock independent of the dispatch loop.
package diag

import (
	"fmt"
	"sync"
	"time"
)

// Level is the severity of a record.
type Level int

const (
	// LevelDebug is for developer diagnostics.
	LevelDebug Level = iota
	// LevelInfo is for informational records.
	LevelInfo
	// LevelWarn is for recoverable anomalies.
	LevelWarn
	// LevelError is for faults.
	LevelError
)

// String returns the level name.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Record is one diagnostics entry.
type Record struct {
	Time      time.Time
	Level     Level
	Component string
	Message   string
}

// String formats the record for operator display.
func (r Record) String() string {
	return fmt.Sprintf("%s %-5s [%s] %s",
		r.Time.Format("15:04:05.000"), r.Level, r.Component, r.Message)
}

// DefaultCapacity is the retained record count when none is given.
const DefaultCapacity = 512

// Log is a fixed-capacity ring of records.
type Log struct {
	mu    sync.RWMutex
	recs  []Record
	next  int
	full  bool
	min   Level
	count uint64
}

// NewLog creates a ring with the given capacity (DefaultCapacity if
// capacity <= 0).
func NewLog(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{recs: make([]Record, capacity)}
}

// SetMinLevel drops records below level.
func (l *Log) SetMinLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.min = level
}

// Append adds a record.
func (l *Log) Append(level Level, component, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.min {
		return
	}
	l.recs[l.next] = Record{
		Time:      time.Now(),
		Level:     level,
		Component: component,
		Message:   fmt.Sprintf(format, args...),
	}
	l.next++
	l.count++
	if l.next == len(l.recs) {
		l.next = 0
		l.full = true
	}
}

// Debugf appends a debug record.
func (l *Log) Debugf(component, format string, args ...any) {
	l.Append(LevelDebug, component, format, args...)
}

// Infof appends an info record.
func (l *Log) Infof(component, format string, args ...any) {
	l.Append(LevelInfo, component, format, args...)
}

// Warnf appends a warning record.
func (l *Log) Warnf(component, format string, args ...any) {
	l.Append(LevelWarn, component, format, args...)
}

// Errorf appends an error record.
func (l *Log) Errorf(component, format string, args ...any) {
	l.Append(LevelError, component, format, args...)
}

// Records returns the retained records, oldest first.
func (l *Log) Records() []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if !l.full {
		out := make([]Record, l.next)
		copy(out, l.recs[:l.next])
		return out
	}
	out := make([]Record, 0, len(l.recs))
	out = append(out, l.recs[l.next:]...)
	out = append(out, l.recs[:l.next]...)
	return out
}

// Total returns the number of records ever appended, including those
// that have rotated out of the ring.
func (l *Log) Total() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.count
}

// Clear discards all retained records.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.next = 0
	l.full = false
}
