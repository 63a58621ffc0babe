package editor

import (
	"errors"
	"strings"
)

// ErrNoPattern is returned when searching with no pattern and no
// previous pattern to reuse.
var ErrNoPattern = errors.New("no search pattern")

// FindNext finds the next literal occurrence of pattern at or after
// from, wrapping to the start of the document. An empty pattern reuses
// the last searched pattern. A successful search becomes the new last
// pattern.
func (e *Editor) FindNext(pattern string, from int) (start, end int, ok bool, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if pattern == "" {
		pattern = e.lastPattern
	}
	if pattern == "" {
		return 0, 0, false, ErrNoPattern
	}
	if from < 0 {
		from = 0
	}
	if from > len(e.text) {
		from = len(e.text)
	}
	e.lastPattern = pattern

	if i := strings.Index(e.text[from:], pattern); i >= 0 {
		return from + i, from + i + len(pattern), true, nil
	}
	// Wrap around. Matches straddling the wrap point do not exist in
	// a linear document, so a plain prefix search suffices.
	if i := strings.Index(e.text[:min(from+len(pattern)-1, len(e.text))], pattern); i >= 0 {
		return i, i + len(pattern), true, nil
	}
	return 0, 0, false, nil
}

// LastPattern returns the most recently searched pattern.
func (e *Editor) LastPattern() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastPattern
}

// SetPattern records a pattern without searching, as when a search
// prompt is accepted.
func (e *Editor) SetPattern(pattern string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastPattern = pattern
}
