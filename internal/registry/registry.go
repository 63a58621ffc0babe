package registry

import (
	"sort"
	"sync"
)

// record is an internal registration with its sequence number.
// seq preserves registration order for the final tie break.
type record struct {
	desc    Descriptor
	handler any
	seq     int
}

// Registry is the process-wide static registry. It is assembled once by
// a Builder and read-only afterward; the mutex exists only because
// runtime shadowing appends collision records to the shared diagnostics
// list while lookups proceed.
type Registry struct {
	mu sync.RWMutex

	byID   [kindCount]map[string]*record
	byName [kindCount]map[string][]*record // winner first
	byKey  [kindCount]map[string][]*record // winner first

	collisions []Collision
}

// wins reports whether a resolves ahead of b: higher priority first,
// then Runtime > Unit > Builtin, then first registered.
func wins(a, b *record) bool {
	if a.desc.Priority != b.desc.Priority {
		return a.desc.Priority > b.desc.Priority
	}
	if a.desc.Source.Type != b.desc.Source.Type {
		return a.desc.Source.Type > b.desc.Source.Type
	}
	return a.seq < b.seq
}

// sortRecords orders records winner-first.
func sortRecords(recs []*record) {
	sort.SliceStable(recs, func(i, j int) bool {
		return wins(recs[i], recs[j])
	})
}

// FindByName resolves a descriptor by name or alias.
// Returns the winning descriptor and true, or a zero descriptor and
// false if nothing matches.
func (r *Registry) FindByName(kind Kind, name string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	recs := r.byName[kind][name]
	if len(recs) == 0 {
		return Descriptor{}, false
	}
	return recs[0].desc, true
}

// FindByKey resolves a descriptor by its kind-specific key (a key
// binding's chord, a text object's trigger character).
func (r *Registry) FindByKey(kind Kind, key string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	recs := r.byKey[kind][key]
	if len(recs) == 0 {
		return Descriptor{}, false
	}
	return recs[0].desc, true
}

// HandlerByID returns the handler registered for a descriptor id.
func (r *Registry) HandlerByID(kind Kind, id string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.byID[kind][id]
	if !ok {
		return nil, false
	}
	return rec.handler, true
}

// HandlerByName resolves a name and returns the winning handler.
func (r *Registry) HandlerByName(kind Kind, name string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	recs := r.byName[kind][name]
	if len(recs) == 0 {
		return nil, false
	}
	return recs[0].handler, true
}

// All returns every descriptor of a kind, ordered by id.
func (r *Registry) All(kind Kind) []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Descriptor, 0, len(r.byID[kind]))
	for _, rec := range r.byID[kind] {
		out = append(out, rec.desc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Count returns the number of descriptors registered for a kind.
func (r *Registry) Count(kind Kind) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID[kind])
}

// Diagnostics returns a copy of every retained collision record.
func (r *Registry) Diagnostics() []Collision {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Collision, len(r.collisions))
	copy(out, r.collisions)
	return out
}

// ResetDiagnostics discards retained collision records.
func (r *Registry) ResetDiagnostics() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.collisions = nil
}

// NoteRuntimeShadow records that a runtime plugin descriptor now shadows
// a static descriptor for the given key. The static set is not mutated;
// precedence of the runtime layer is enforced by the dispatch lookup
// order, this call only keeps the diagnostics complete.
func (r *Registry) NoteRuntimeShadow(kind Kind, key string, winner, shadowed Descriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.collisions = append(r.collisions, Collision{
		Kind:             kind,
		Key:              key,
		WinnerID:         winner.ID,
		WinnerPriority:   winner.Priority,
		ShadowedID:       shadowed.ID,
		ShadowedPriority: shadowed.Priority,
		WinnerSource:     winner.Source,
		ShadowedSource:   shadowed.Source,
	})
}

// recordCollisions appends one collision per losing record in a
// winner-first list. Called at build time with the registry unlocked.
func (r *Registry) recordCollisions(kind Kind, key string, recs []*record) {
	if len(recs) < 2 {
		return
	}
	winner := recs[0]
	for _, loser := range recs[1:] {
		r.collisions = append(r.collisions, Collision{
			Kind:             kind,
			Key:              key,
			WinnerID:         winner.desc.ID,
			WinnerPriority:   winner.desc.Priority,
			ShadowedID:       loser.desc.ID,
			ShadowedPriority: loser.desc.Priority,
			WinnerSource:     winner.desc.Source,
			ShadowedSource:   loser.desc.Source,
		})
	}
}
