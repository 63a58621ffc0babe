// Package plugin loads and runs extension guests. Each plugin is a
// directory with a plugin.json manifest and a Lua entry point, run in
// its own sandboxed interpreter. Guests register actions, hooks, and
// commands at load time; at invocation time they observe an immutable
// snapshot of the editor and request mutations through a pending
// operation queue the host applies after the guest returns.
//
// A guest fault never propagates: traps are caught, reported as
// diagnostics, and the operations queued before the trap still apply.
// Only a declared ABI mismatch disables a plugin outright.
package plugin
