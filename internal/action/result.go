package action

import "fmt"

// Tag identifies a Result variant. The set is closed: the dispatch
// pipeline registers handler chains per tag, and an unknown tag is a
// programming error surfaced as a developer diagnostic.
type Tag uint8

// Result variants.
const (
	// TagOk is the no-effect result.
	TagOk Tag = iota
	// TagEdit requests a document mutation.
	TagEdit
	// TagModeChange requests an input mode switch.
	TagModeChange
	// TagMotion requests a cursor/selection move.
	TagMotion
	// TagOpenScratch requests opening the scratch buffer.
	TagOpenScratch
	// TagCloseScratch requests closing the scratch buffer.
	TagCloseScratch
	// TagSearchNext requests advancing to the next search match.
	TagSearchNext
	// TagCommand defers a named command to the command queue.
	TagCommand
	// TagQuit requests ending the input loop. Honored only for
	// handler chains registered as terminal.
	TagQuit
)

// String returns the tag name.
func (t Tag) String() string {
	switch t {
	case TagOk:
		return "ok"
	case TagEdit:
		return "edit"
	case TagModeChange:
		return "mode-change"
	case TagMotion:
		return "motion"
	case TagOpenScratch:
		return "open-scratch"
	case TagCloseScratch:
		return "close-scratch"
	case TagSearchNext:
		return "search-next"
	case TagCommand:
		return "command"
	case TagQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// EditKind identifies an edit operation.
type EditKind uint8

// Edit kinds.
const (
	// EditInsert inserts Text at At.
	EditInsert EditKind = iota
	// EditDelete deletes [At, End).
	EditDelete
	// EditReplace replaces [At, End) with Text.
	EditReplace
)

// EditOp describes one document mutation. Offsets of -1 mean "at the
// current cursor/selection", resolved by the edit handler against live
// state.
type EditOp struct {
	Kind EditKind
	At   int
	End  int
	Text string
}

// InsertAtCursor builds an insert op at the current cursor.
func InsertAtCursor(text string) EditOp {
	return EditOp{Kind: EditInsert, At: -1, Text: text}
}

// DeleteSelection builds a delete op over the current selection.
func DeleteSelection() EditOp {
	return EditOp{Kind: EditDelete, At: -1, End: -1}
}

// Result is the tagged outcome of one action invocation. It carries a
// description of intended effect, never ownership of editor state;
// conversion into mutation happens in the dispatch pipeline.
type Result struct {
	Tag Tag

	// Edit is set for TagEdit.
	Edit EditOp

	// Mode is set for TagModeChange.
	Mode string

	// Selection is set for TagMotion.
	Selection Selection

	// Focus is set for TagOpenScratch.
	Focus bool

	// AddSelection is set for TagSearchNext.
	AddSelection bool

	// Command and Args are set for TagCommand.
	Command string
	Args    []string
}

// String returns a short description of the result.
func (r Result) String() string {
	switch r.Tag {
	case TagModeChange:
		return fmt.Sprintf("mode-change(%s)", r.Mode)
	case TagCommand:
		return fmt.Sprintf("command(%s)", r.Command)
	case TagMotion:
		return fmt.Sprintf("motion(%d..%d)", r.Selection.Anchor, r.Selection.Head)
	default:
		return r.Tag.String()
	}
}

// Ok returns the no-effect result.
func Ok() Result {
	return Result{Tag: TagOk}
}

// Edit returns a result requesting the given edit.
func Edit(op EditOp) Result {
	return Result{Tag: TagEdit, Edit: op}
}

// ModeChange returns a result requesting a mode switch.
func ModeChange(mode string) Result {
	return Result{Tag: TagModeChange, Mode: mode}
}

// Motion returns a result moving the selection.
func Motion(sel Selection) Result {
	return Result{Tag: TagMotion, Selection: sel}
}

// OpenScratch returns a result opening the scratch buffer.
func OpenScratch(focus bool) Result {
	return Result{Tag: TagOpenScratch, Focus: focus}
}

// CloseScratch returns a result closing the scratch buffer.
func CloseScratch() Result {
	return Result{Tag: TagCloseScratch}
}

// SearchNext returns a result advancing to the next search match.
func SearchNext(addSelection bool) Result {
	return Result{Tag: TagSearchNext, AddSelection: addSelection}
}

// Command returns a result deferring a command for the queue.
func Command(name string, args ...string) Result {
	return Result{Tag: TagCommand, Command: name, Args: args}
}

// Quit returns the terminal result.
func Quit() Result {
	return Result{Tag: TagQuit}
}
