// Package registry implements the static extension registry.
//
// Independently compiled units contribute descriptors (actions, commands,
// motions, text objects, key bindings, options, menu items) through a
// Builder that is composed once at process start. After Build the registry
// is read-only: lookups by name, alias, or key resolve ambiguity
// deterministically by priority, then provenance, then registration order,
// and every shadowing decision is retained as a Collision record for
// operator-facing diagnostics.
//
// Runtime plugins do not mutate the static set. They are layered in front
// of it by the plugin registry; when a plugin shadows a static descriptor
// the shadowing is recorded here so diagnostics cover both layers.
package registry
