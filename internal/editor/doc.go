// Package editor owns the mutable state a session edits: the document
// text, cursor, selection, scratch window, message line, and undo
// history. It is the single writer for that state; everything else
// reaches it through the capability interfaces in dispatch/capctx or
// through snapshot plus pending-operation application for extension
// guests.
package editor
