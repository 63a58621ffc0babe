package editor

import (
	"fmt"
	"os"
	"sync"
	"unicode/utf8"

	"github.com/fathom-editor/fathom/internal/action"
	"github.com/fathom-editor/fathom/internal/diag"
)

// Message is one line shown in the message area.
type Message struct {
	Text    string
	IsError bool
}

// Editor holds a session's document and view state. All methods are
// safe for concurrent use, though the event loop is the only expected
// writer.
type Editor struct {
	mu sync.RWMutex

	text     string
	cursor   int
	sel      action.Selection
	mode     string
	path     string
	readOnly bool

	lastPattern string

	scratchOpen    bool
	scratchFocused bool
	scratchText    string

	messages []Message

	history *history

	log *diag.Log
}

// Option configures a new Editor.
type Option func(*Editor)

// WithText sets the initial document content.
func WithText(text string) Option {
	return func(e *Editor) { e.text = text }
}

// WithPath associates the editor with a file path without reading it.
func WithPath(path string) Option {
	return func(e *Editor) { e.path = path }
}

// WithReadOnly marks the document read-only.
func WithReadOnly(ro bool) Option {
	return func(e *Editor) { e.readOnly = ro }
}

// WithLog attaches a diagnostic log.
func WithLog(log *diag.Log) Option {
	return func(e *Editor) { e.log = log }
}

// New creates an empty editor in normal mode.
func New(opts ...Option) *Editor {
	e := &Editor{
		mode:    "normal",
		history: newHistory(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Text returns the full document content.
func (e *Editor) Text() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.text
}

// Cursor returns the cursor's byte offset.
func (e *Editor) Cursor() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cursor
}

// Mode returns the active mode name.
func (e *Editor) Mode() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.mode
}

// SetMode records the active mode name. Mode transition rules live in
// the input layer; the editor only tracks the current name so guests
// and the status line can observe it.
func (e *Editor) SetMode(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mode = name
}

// Path returns the document's file path, empty for an unnamed buffer.
func (e *Editor) Path() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.path
}

// ReadOnly reports whether edits are rejected.
func (e *Editor) ReadOnly() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.readOnly
}

// SetReadOnly toggles the read-only flag.
func (e *Editor) SetReadOnly(ro bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.readOnly = ro
}

// Selection returns the current selection. Anchor equals Head when no
// selection is active.
func (e *Editor) Selection() action.Selection {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.sel
}

// SetSelection sets the selection and moves the cursor to its head.
func (e *Editor) SetSelection(sel action.Selection) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.checkOffset(sel.Anchor); err != nil {
		return err
	}
	if err := e.checkOffset(sel.Head); err != nil {
		return err
	}
	e.sel = sel
	e.cursor = sel.Head
	return nil
}

// SetCursor moves the cursor and collapses the selection.
func (e *Editor) SetCursor(offset int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.setCursorLocked(offset)
}

func (e *Editor) setCursorLocked(offset int) error {
	if err := e.checkOffset(offset); err != nil {
		return err
	}
	e.cursor = offset
	e.sel = action.Selection{Anchor: offset, Head: offset}
	return nil
}

// checkOffset validates that offset is inside the document and on a
// rune boundary. Callers hold the lock.
func (e *Editor) checkOffset(offset int) error {
	if offset < 0 || offset > len(e.text) {
		return fmt.Errorf("%w: %d (document length %d)", ErrInvalidOffset, offset, len(e.text))
	}
	if offset < len(e.text) && !utf8.RuneStart(e.text[offset]) {
		return fmt.Errorf("%w: %d splits a UTF-8 sequence", ErrInvalidOffset, offset)
	}
	return nil
}

// OpenFile reads path into the editor, replacing the current document.
// The cursor resets to the start and history is cleared.
func (e *Editor) OpenFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.text = string(data)
	e.path = path
	e.cursor = 0
	e.sel = action.Selection{}
	e.history = newHistory()
	e.infof("opened %s (%d bytes)", path, len(data))
	return nil
}

// ShowMessage appends an informational message.
func (e *Editor) ShowMessage(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.messages = append(e.messages, Message{Text: text})
	if e.log != nil {
		e.log.Infof("editor", "%s", text)
	}
}

// ShowError appends an error message.
func (e *Editor) ShowError(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.messages = append(e.messages, Message{Text: text, IsError: true})
	if e.log != nil {
		e.log.Errorf("editor", "%s", text)
	}
}

// Messages returns all messages in order of arrival.
func (e *Editor) Messages() []Message {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Message, len(e.messages))
	copy(out, e.messages)
	return out
}

// ClearMessages empties the message area.
func (e *Editor) ClearMessages() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.messages = nil
}

// OpenScratch opens the scratch window, optionally giving it focus.
// Reopening an already open scratch only updates focus.
func (e *Editor) OpenScratch(focus bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scratchOpen = true
	e.scratchFocused = focus
	return nil
}

// CloseScratch closes the scratch window. Its content is retained for
// the next open.
func (e *Editor) CloseScratch() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.scratchOpen {
		return ErrNoScratch
	}
	e.scratchOpen = false
	e.scratchFocused = false
	return nil
}

// ScratchOpen reports whether the scratch window is visible and
// whether it holds focus.
func (e *Editor) ScratchOpen() (open, focused bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.scratchOpen, e.scratchFocused
}

// AppendScratch appends text to the scratch window content.
func (e *Editor) AppendScratch(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scratchText += text
}

// ScratchText returns the scratch window content.
func (e *Editor) ScratchText() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.scratchText
}

func (e *Editor) infof(format string, args ...any) {
	if e.log != nil {
		e.log.Infof("editor", format, args...)
	}
}

func (e *Editor) warnf(format string, args ...any) {
	if e.log != nil {
		e.log.Warnf("editor", format, args...)
	}
}
