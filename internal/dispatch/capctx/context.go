// Package capctx provides the capability context handed to result
// handlers. It is a thin facade over the editor: each handler declares
// which mutation surfaces it needs and receives only those, never the
// editor itself. A nil capability means the surface is unavailable (for
// example EditAccess on a read-only buffer) and handlers must treat that
// as an ordinary not-handled path, not a fault.
package capctx

import "github.com/fathom-editor/fathom/internal/action"

// Capability names, used in descriptors' RequiredCaps and for host
// configuration toggles.
const (
	CapEdit      = "edit"
	CapSelection = "selection"
	CapSearch    = "search"
	CapScratch   = "scratch"
	CapMessage   = "message"
)

// EditAccess mutates document text.
type EditAccess interface {
	// ApplyEdit performs one edit operation. Offsets of -1 resolve
	// against the current cursor/selection.
	ApplyEdit(op action.EditOp) error
}

// SelectionOps reads and mutates cursor/selection state.
type SelectionOps interface {
	Selection() action.Selection
	SetSelection(sel action.Selection) error
	SetCursor(offset int) error
}

// Search finds pattern matches over the current snapshot.
type Search interface {
	// FindNext returns the match at or after from, wrapping at the
	// end. ok is false if the pattern matches nowhere.
	FindNext(pattern string, from int) (start, end int, ok bool, err error)

	// LastPattern returns the most recent search pattern.
	LastPattern() string
}

// Scratch manages the scratch buffer.
type Scratch interface {
	OpenScratch(focus bool) error
	CloseScratch() error
}

// MessageAccess posts user-visible notifications.
type MessageAccess interface {
	ShowMessage(text string)
	ShowError(text string)
}

// Context is the capability set available to one dispatch. Members are
// nil when the host withholds the capability.
type Context struct {
	Edit      EditAccess
	Selection SelectionOps
	Search    Search
	Scratch   Scratch
	Message   MessageAccess

	// Modes switches input modes; separate from the five guest-facing
	// capabilities because mode state belongs to the input layer.
	Modes ModeSwitcher
}

// ModeSwitcher switches the active input mode.
type ModeSwitcher interface {
	Switch(name string) error
}

// Has returns true if the named capability is available.
func (c *Context) Has(name string) bool {
	switch name {
	case CapEdit:
		return c.Edit != nil
	case CapSelection:
		return c.Selection != nil
	case CapSearch:
		return c.Search != nil
	case CapScratch:
		return c.Scratch != nil
	case CapMessage:
		return c.Message != nil
	default:
		return false
	}
}

// HasAll returns true if every named capability is available.
func (c *Context) HasAll(names []string) bool {
	for _, n := range names {
		if !c.Has(n) {
			return false
		}
	}
	return true
}
