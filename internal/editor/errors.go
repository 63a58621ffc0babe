package editor

import "errors"

var (
	// ErrReadOnly is returned when an edit targets a read-only document.
	ErrReadOnly = errors.New("document is read-only")

	// ErrInvalidOffset is returned when an offset is out of range or
	// falls inside a UTF-8 sequence.
	ErrInvalidOffset = errors.New("invalid offset")

	// ErrInvalidRange is returned when a range's end precedes its start.
	ErrInvalidRange = errors.New("invalid range")

	// ErrNothingToUndo is returned when the undo stack is empty.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrNothingToRedo is returned when the redo stack is empty.
	ErrNothingToRedo = errors.New("nothing to redo")

	// ErrNoScratch is returned when closing a scratch window that is
	// not open.
	ErrNoScratch = errors.New("no scratch window open")
)
