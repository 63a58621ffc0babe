// Package dispatch converts action results into editor effects.
//
// Result handlers register per result tag; for each dispatched Result
// the chain registered for its tag is tried in registration order until
// one reports Handled or Quit. Handlers receive only the capability
// context, never the editor, and a handler whose capability is absent
// returns NotHandled so the chain can fall through. A Result no handler
// claims is dropped with a developer diagnostic: it indicates a
// packaging gap, not a user error.
//
// Quit is honored only for tags registered as terminal; everything else
// is non-terminal by default and must be declared at registration time.
//
// Dispatch is single-threaded and cooperative. Deferred commands
// produced by Command results are queued FIFO and drained strictly
// after the input event that enqueued them finishes its own chain.
package dispatch
