package editor

import (
	"strings"

	"github.com/rivo/uniseg"
)

// NextGrapheme returns the offset just past the grapheme cluster at
// offset, so combining sequences and emoji move as one unit. At or
// beyond the end of the document it returns the document length.
func (e *Editor) NextGrapheme(offset int) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if offset < 0 {
		offset = 0
	}
	if offset >= len(e.text) {
		return len(e.text)
	}
	_, rest, _, _ := uniseg.FirstGraphemeClusterInString(e.text[offset:], -1)
	return len(e.text) - len(rest)
}

// PrevGrapheme returns the offset of the grapheme cluster preceding
// offset, or 0 at the start of the document.
func (e *Editor) PrevGrapheme(offset int) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if offset <= 0 {
		return 0
	}
	if offset > len(e.text) {
		offset = len(e.text)
	}
	// Grapheme boundaries only resolve forward, so walk the line (or
	// document prefix) up to offset.
	start := strings.LastIndexByte(e.text[:offset], '\n') + 1
	if start == offset {
		// Offset sits just after a newline; the newline is the
		// preceding cluster.
		return offset - 1
	}
	pos := start
	state := -1
	rest := e.text[start:offset]
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		if pos+len(cluster) >= offset {
			break
		}
		pos += len(cluster)
	}
	return pos
}

// LineStart returns the offset of the first byte of the line holding
// offset.
func (e *Editor) LineStart(offset int) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	offset = clamp(offset, 0, len(e.text))
	return strings.LastIndexByte(e.text[:offset], '\n') + 1
}

// LineEnd returns the offset of the newline ending the line holding
// offset, or the document length for the final line.
func (e *Editor) LineEnd(offset int) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	offset = clamp(offset, 0, len(e.text))
	if i := strings.IndexByte(e.text[offset:], '\n'); i >= 0 {
		return offset + i
	}
	return len(e.text)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
