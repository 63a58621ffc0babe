// Package hostctx defines the data passed between the editor and an
// extension guest during a single invocation. The guest never touches
// live editor state: it reads an immutable Context snapshot taken at
// call entry and requests changes by appending PendingOp values, which
// the host applies in order after the guest returns.
package hostctx

import "fmt"

// OpKind identifies a requested mutation.
type OpKind int

const (
	// OpInsert inserts text at the cursor position current at the
	// time the operation is applied.
	OpInsert OpKind = iota
	// OpDelete removes the selection if one is active, otherwise the
	// rune under the cursor.
	OpDelete
	// OpSetCursor moves the cursor to an absolute byte offset.
	OpSetCursor
	// OpSetSelection sets the selection anchor and head.
	OpSetSelection
	// OpOpenFile asks the host to open a file in the current window.
	OpOpenFile
)

// String returns the operation kind name.
func (k OpKind) String() string {
	switch k {
	case OpInsert:
		return "insert"
	case OpDelete:
		return "delete"
	case OpSetCursor:
		return "set_cursor"
	case OpSetSelection:
		return "set_selection"
	case OpOpenFile:
		return "open_file"
	default:
		return fmt.Sprintf("OpKind(%d)", int(k))
	}
}

// PendingOp is one mutation requested by a guest. Fields beyond Kind
// are interpreted per kind; unused fields are ignored.
type PendingOp struct {
	Kind   OpKind
	Text   string // OpInsert payload
	Offset int    // OpSetCursor target
	Anchor int    // OpSetSelection anchor
	Head   int    // OpSetSelection head
	Path   string // OpOpenFile target
}

// String renders the op for diagnostics.
func (op PendingOp) String() string {
	switch op.Kind {
	case OpInsert:
		return fmt.Sprintf("insert(%q)", op.Text)
	case OpSetCursor:
		return fmt.Sprintf("set_cursor(%d)", op.Offset)
	case OpSetSelection:
		return fmt.Sprintf("set_selection(%d,%d)", op.Anchor, op.Head)
	case OpOpenFile:
		return fmt.Sprintf("open_file(%q)", op.Path)
	default:
		return op.Kind.String()
	}
}

// Message is one queued user notification. Like pending operations,
// messages accumulate on the context and are emitted by the host
// after the guest returns and its operations have been applied.
type Message struct {
	Text    string
	IsError bool
}

// Context is the host state snapshot exposed to a guest for one
// invocation. All fields are copies; mutating them has no effect on
// the editor.
type Context struct {
	// Text is the full document content at call entry.
	Text string
	// Cursor is the byte offset of the cursor at call entry.
	Cursor int
	// SelAnchor and SelHead describe the selection at call entry.
	// They are equal when no selection is active.
	SelAnchor int
	SelHead   int
	// Mode is the active editing mode name.
	Mode string
	// FilePath is the path of the current document, empty for an
	// unnamed buffer.
	FilePath string
	// ReadOnly reports whether the document rejects edits.
	ReadOnly bool
	// Config maps option names to their values at call entry. A
	// reload during the call cannot change what the guest sees.
	Config map[string]string

	pending  []PendingOp
	messages []Message
}

// HasSelection reports whether a non-empty selection was active.
func (c *Context) HasSelection() bool { return c.SelAnchor != c.SelHead }

// Request appends a mutation to the pending queue. Order of
// application matches order of request.
func (c *Context) Request(op PendingOp) { c.pending = append(c.pending, op) }

// Pending returns the queued operations in request order.
func (c *Context) Pending() []PendingOp { return c.pending }

// Post queues a user notification for emission after the call.
func (c *Context) Post(text string, isError bool) {
	c.messages = append(c.messages, Message{Text: text, IsError: isError})
}

// Messages returns the queued notifications in post order.
func (c *Context) Messages() []Message { return c.messages }
