// Package lua wraps gopher-lua for extension guests. A guest runs in
// its own sandboxed interpreter: only the safe standard libraries are
// open, require is restricted to the built-in safe modules and the
// editor's preloaded "ed" and "ed.*" modules, and every entry point
// runs with panic recovery so a faulting guest cannot take the host
// down with it.
//
// gopher-lua states are not goroutine-safe. A State serializes access
// with its own mutex, and the host is expected to drive each guest
// from the event loop goroutine only.
package lua
