package editor

// appliedEdit stores enough of a completed edit to reverse it.
type appliedEdit struct {
	at           int
	oldText      string
	newText      string
	cursorBefore int
	cursorAfter  int
}

// history is a pair of undo/redo stacks with optional grouping so a
// burst of edits (such as a guest's pending-operation queue) undoes as
// one step. Not safe for concurrent use; the Editor's lock guards it.
type history struct {
	undo       [][]appliedEdit
	redo       [][]appliedEdit
	groupDepth int
}

func newHistory() *history {
	return &history{}
}

// beginGroup opens an undo group. Groups nest; only the outermost
// close seals the group.
func (h *history) beginGroup() {
	if h.groupDepth == 0 {
		h.undo = append(h.undo, nil)
	}
	h.groupDepth++
}

// endGroup closes the current group. An empty group is discarded.
func (h *history) endGroup() {
	if h.groupDepth == 0 {
		return
	}
	h.groupDepth--
	if h.groupDepth == 0 && len(h.undo) > 0 && len(h.undo[len(h.undo)-1]) == 0 {
		h.undo = h.undo[:len(h.undo)-1]
	}
}

// record adds an edit to the open group, or as its own single-edit
// group when none is open. Recording invalidates the redo stack.
func (h *history) record(ed appliedEdit) {
	h.redo = nil
	if h.groupDepth > 0 {
		h.undo[len(h.undo)-1] = append(h.undo[len(h.undo)-1], ed)
		return
	}
	h.undo = append(h.undo, []appliedEdit{ed})
}

// popUndo removes and returns the most recent group.
func (h *history) popUndo() ([]appliedEdit, bool) {
	if len(h.undo) == 0 {
		return nil, false
	}
	g := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, g)
	return g, true
}

// popRedo removes and returns the most recently undone group.
func (h *history) popRedo() ([]appliedEdit, bool) {
	if len(h.redo) == 0 {
		return nil, false
	}
	g := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, g)
	return g, true
}
