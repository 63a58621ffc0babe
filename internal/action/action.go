// Package action defines the action input shape, the immutable context
// action handlers receive, and the closed Result set that describes an
// action's intended effect without touching editor state.
package action

// Source indicates the origin of an action.
type Source uint8

const (
	// SourceKeyboard indicates the action originated from a key binding.
	SourceKeyboard Source = iota
	// SourceCommand indicates the action originated from an ex command.
	SourceCommand
	// SourcePlugin indicates the action originated from a plugin.
	SourcePlugin
	// SourceQueue indicates the action was replayed from the deferred
	// command queue.
	SourceQueue
)

// String returns a string representation of the source.
func (s Source) String() string {
	switch s {
	case SourceKeyboard:
		return "keyboard"
	case SourceCommand:
		return "command"
	case SourcePlugin:
		return "plugin"
	case SourceQueue:
		return "queue"
	default:
		return "unknown"
	}
}

// Action is one resolved input event: a named behavior plus its
// count/extend/char-argument modifiers.
type Action struct {
	// Name is the registry lookup name (e.g. "cursor.left").
	Name string

	// Count is the repeat count; 0 means unspecified (treated as 1).
	Count int

	// Extend requests selection extension instead of cursor movement.
	Extend bool

	// Char is the character argument for actions that take one
	// (e.g. find-char motions, text object triggers).
	Char rune

	// Source records where the action came from.
	Source Source
}

// Selection is an anchor/head pair of byte offsets. Head carries the
// cursor; Anchor == Head means no selection.
type Selection struct {
	Anchor int
	Head   int
}

// IsEmpty returns true if the selection spans nothing.
func (s Selection) IsEmpty() bool {
	return s.Anchor == s.Head
}

// Start returns the lower offset.
func (s Selection) Start() int {
	if s.Anchor < s.Head {
		return s.Anchor
	}
	return s.Head
}

// End returns the higher offset.
func (s Selection) End() int {
	if s.Anchor > s.Head {
		return s.Anchor
	}
	return s.Head
}

// Context is the immutable snapshot an action handler runs against.
// Handlers never hold editor references; they describe their intent
// through the returned Result.
type Context struct {
	// Text is the document snapshot.
	Text string

	// Cursor is the byte offset of the cursor.
	Cursor int

	// Selection is the current selection.
	Selection Selection

	// Mode is the current input mode name.
	Mode string

	// Count is the effective repeat count (always >= 1).
	Count int

	// Extend is true when the motion should extend the selection.
	Extend bool

	// Char is the pending character argument, if any.
	Char rune

	// ReadOnly is true when the buffer cannot be edited.
	ReadOnly bool
}

// Handler produces exactly one Result per invocation. Handlers cannot
// fail; failure handling lives in the result pipeline where capability
// context is available.
type Handler func(ctx Context) Result
