package registry

import "fmt"

// Builder composes contributions from independently compiled units into
// one Registry. Each unit exposes a plain function returning its entry
// list; the host process adds every list and calls Build exactly once at
// startup. This keeps registration order explicit and testable instead
// of depending on link order.
type Builder struct {
	entries []Entry
}

// NewBuilder creates an empty registration builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Add appends contributions in order.
func (b *Builder) Add(entries ...Entry) *Builder {
	b.entries = append(b.entries, entries...)
	return b
}

// AddUnit appends a unit's contributions, stamping each descriptor with
// the unit's provenance unless the entry already declares a source.
func (b *Builder) AddUnit(unit string, entries []Entry) *Builder {
	for _, e := range entries {
		if e.Descriptor.Source == (Source{}) {
			e.Descriptor.Source = Unit(unit)
		}
		b.entries = append(b.entries, e)
	}
	return b
}

// Build validates every contribution and assembles the registry.
// A duplicate id within a kind, an empty id or name, or a nil handler is
// a build-time contract violation and fails the whole build.
func (b *Builder) Build() (*Registry, error) {
	r := &Registry{}
	for k := 0; k < kindCount; k++ {
		r.byID[k] = make(map[string]*record)
		r.byName[k] = make(map[string][]*record)
		r.byKey[k] = make(map[string][]*record)
	}

	for seq, e := range b.entries {
		d := e.Descriptor
		if d.ID == "" {
			return nil, fmt.Errorf("%w (kind %s, entry %d)", ErrEmptyID, e.Kind, seq)
		}
		if d.Name == "" {
			return nil, fmt.Errorf("%w (kind %s, id %s)", ErrEmptyName, e.Kind, d.ID)
		}
		if e.Handler == nil {
			return nil, fmt.Errorf("%w (kind %s, id %s)", ErrNilHandler, e.Kind, d.ID)
		}
		if _, exists := r.byID[e.Kind][d.ID]; exists {
			return nil, fmt.Errorf("%w: %s (kind %s)", ErrDuplicateID, d.ID, e.Kind)
		}

		rec := &record{desc: d, handler: e.Handler, seq: seq}
		r.byID[e.Kind][d.ID] = rec

		r.byName[e.Kind][d.Name] = append(r.byName[e.Kind][d.Name], rec)
		for _, alias := range d.Aliases {
			r.byName[e.Kind][alias] = append(r.byName[e.Kind][alias], rec)
		}
		if d.Key != "" {
			r.byKey[e.Kind][d.Key] = append(r.byKey[e.Kind][d.Key], rec)
		}
	}

	// Resolve every lookup list winner-first and retain one collision
	// record per losing descriptor, whether or not the tie needed the
	// provenance or registration-order axes.
	for k := 0; k < kindCount; k++ {
		for name, recs := range r.byName[k] {
			sortRecords(recs)
			r.recordCollisions(Kind(k), name, recs)
		}
		for key, recs := range r.byKey[k] {
			sortRecords(recs)
			r.recordCollisions(Kind(k), key, recs)
		}
	}

	return r, nil
}
