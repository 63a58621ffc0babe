package editor

import (
	"fmt"

	"github.com/fathom-editor/fathom/internal/action"
	"github.com/fathom-editor/fathom/internal/plugin/hostctx"
)

// Snapshot captures the current state for an extension guest. The
// returned context is a copy; later edits do not alter it.
func (e *Editor) Snapshot() *hostctx.Context {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return &hostctx.Context{
		Text:      e.text,
		Cursor:    e.cursor,
		SelAnchor: e.sel.Anchor,
		SelHead:   e.sel.Head,
		Mode:      e.mode,
		FilePath:  e.path,
		ReadOnly:  e.readOnly,
	}
}

// ApplyPending applies a guest's requested operations in request
// order. Application stops at the first failure; operations already
// applied stay applied, and the whole run shares one undo group so it
// reverses as a single step. It returns the number of operations
// applied and the error that stopped the run, if any.
func (e *Editor) ApplyPending(ops []hostctx.PendingOp) (applied int, err error) {
	e.mu.Lock()
	e.history.beginGroup()
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.history.endGroup()
		e.mu.Unlock()
	}()

	for i, op := range ops {
		if err := e.applyOp(op); err != nil {
			e.warnf("pending op %d (%s) failed: %v, %d of %d applied",
				i, op, err, i, len(ops))
			return i, fmt.Errorf("pending op %d (%s): %w", i, op, err)
		}
	}
	return len(ops), nil
}

func (e *Editor) applyOp(op hostctx.PendingOp) error {
	switch op.Kind {
	case hostctx.OpInsert:
		return e.ApplyEdit(action.InsertAtCursor(op.Text))
	case hostctx.OpDelete:
		return e.ApplyEdit(action.DeleteSelection())
	case hostctx.OpSetCursor:
		return e.SetCursor(op.Offset)
	case hostctx.OpSetSelection:
		return e.SetSelection(action.Selection{Anchor: op.Anchor, Head: op.Head})
	case hostctx.OpOpenFile:
		return e.OpenFile(op.Path)
	default:
		return fmt.Errorf("unknown pending op kind %d", op.Kind)
	}
}
