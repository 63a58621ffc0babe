package editor

import (
	"fmt"
	"unicode/utf8"

	"github.com/fathom-editor/fathom/internal/action"
)

// ApplyEdit applies one edit operation. Negative At targets the cursor
// for inserts and the selection (or the rune under the cursor) for
// deletes and replaces.
func (e *Editor) ApplyEdit(op action.EditOp) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.applyEditLocked(op)
}

func (e *Editor) applyEditLocked(op action.EditOp) error {
	if e.readOnly {
		return ErrReadOnly
	}
	switch op.Kind {
	case action.EditInsert:
		at := op.At
		if at < 0 {
			at = e.cursor
		}
		if err := e.checkOffset(at); err != nil {
			return err
		}
		e.spliceLocked(at, at, op.Text)
		return nil
	case action.EditDelete:
		start, end, err := e.resolveRangeLocked(op)
		if err != nil {
			return err
		}
		e.spliceLocked(start, end, "")
		return nil
	case action.EditReplace:
		start, end, err := e.resolveRangeLocked(op)
		if err != nil {
			return err
		}
		e.spliceLocked(start, end, op.Text)
		return nil
	default:
		return fmt.Errorf("unknown edit kind %d", op.Kind)
	}
}

// resolveRangeLocked turns an edit's range into concrete offsets.
// Negative At means the active selection, falling back to the rune
// under the cursor when the selection is empty.
func (e *Editor) resolveRangeLocked(op action.EditOp) (start, end int, err error) {
	if op.At >= 0 {
		start, end = op.At, op.End
		if end < start {
			return 0, 0, fmt.Errorf("%w: [%d,%d)", ErrInvalidRange, start, end)
		}
		if err := e.checkOffset(start); err != nil {
			return 0, 0, err
		}
		if err := e.checkOffset(end); err != nil {
			return 0, 0, err
		}
		return start, end, nil
	}
	if !e.sel.IsEmpty() {
		return e.sel.Start(), e.sel.End(), nil
	}
	if e.cursor >= len(e.text) {
		return e.cursor, e.cursor, nil
	}
	_, size := utf8.DecodeRuneInString(e.text[e.cursor:])
	return e.cursor, e.cursor + size, nil
}

// spliceLocked replaces text[start:end] with repl, records the edit,
// and repositions the cursor. Offsets must already be validated.
func (e *Editor) spliceLocked(start, end int, repl string) {
	ed := appliedEdit{
		at:           start,
		oldText:      e.text[start:end],
		newText:      repl,
		cursorBefore: e.cursor,
	}
	e.text = e.text[:start] + repl + e.text[end:]

	switch {
	case e.cursor >= end:
		e.cursor += len(repl) - (end - start)
	case e.cursor > start:
		e.cursor = start + len(repl)
	case e.cursor == start && end == start:
		// Insert at cursor leaves the cursor after the new text.
		e.cursor += len(repl)
	}
	e.sel = action.Selection{Anchor: e.cursor, Head: e.cursor}

	ed.cursorAfter = e.cursor
	e.history.record(ed)
}

// Undo reverses the most recent edit group.
func (e *Editor) Undo() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	group, ok := e.history.popUndo()
	if !ok {
		return ErrNothingToUndo
	}
	for i := len(group) - 1; i >= 0; i-- {
		ed := group[i]
		e.text = e.text[:ed.at] + ed.oldText + e.text[ed.at+len(ed.newText):]
		e.cursor = ed.cursorBefore
	}
	e.sel = action.Selection{Anchor: e.cursor, Head: e.cursor}
	return nil
}

// Redo re-applies the most recently undone edit group.
func (e *Editor) Redo() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	group, ok := e.history.popRedo()
	if !ok {
		return ErrNothingToRedo
	}
	for _, ed := range group {
		e.text = e.text[:ed.at] + ed.newText + e.text[ed.at+len(ed.oldText):]
		e.cursor = ed.cursorAfter
	}
	e.sel = action.Selection{Anchor: e.cursor, Head: e.cursor}
	return nil
}
