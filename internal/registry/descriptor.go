package registry

// Kind identifies a registrable category.
type Kind uint8

// Registrable kinds.
const (
	// KindAction is an editing action invoked by name.
	KindAction Kind = iota
	// KindCommand is an ex-style command.
	KindCommand
	// KindMotion is a cursor motion.
	KindMotion
	// KindTextObject is a text object keyed by a trigger character.
	KindTextObject
	// KindKeyBinding is a key chord binding.
	KindKeyBinding
	// KindOption is a configuration option.
	KindOption
	// KindMenu is a menu item.
	KindMenu

	kindCount = int(KindMenu) + 1
)

// String returns a string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindAction:
		return "action"
	case KindCommand:
		return "command"
	case KindMotion:
		return "motion"
	case KindTextObject:
		return "textobject"
	case KindKeyBinding:
		return "keybinding"
	case KindOption:
		return "option"
	case KindMenu:
		return "menu"
	default:
		return "unknown"
	}
}

// SourceType identifies the provenance of a descriptor.
type SourceType uint8

// Source precedence on priority ties is Runtime > Unit > Builtin.
const (
	// SourceBuiltin marks descriptors contributed by the editor core.
	SourceBuiltin SourceType = iota
	// SourceUnit marks descriptors contributed by a named compiled unit.
	SourceUnit
	// SourceRuntime marks descriptors contributed by a runtime plugin.
	SourceRuntime
)

// String returns a string representation of the source type.
func (t SourceType) String() string {
	switch t {
	case SourceBuiltin:
		return "builtin"
	case SourceUnit:
		return "unit"
	case SourceRuntime:
		return "runtime"
	default:
		return "unknown"
	}
}

// Source records where a descriptor came from.
type Source struct {
	// Type is the provenance class.
	Type SourceType

	// Unit is the contributing unit name when Type is SourceUnit,
	// or the plugin id when Type is SourceRuntime.
	Unit string
}

// Builtin returns the builtin source.
func Builtin() Source {
	return Source{Type: SourceBuiltin}
}

// Unit returns a source for the named compiled unit.
func Unit(name string) Source {
	return Source{Type: SourceUnit, Unit: name}
}

// Runtime returns a source for the named runtime plugin.
func Runtime(plugin string) Source {
	return Source{Type: SourceRuntime, Unit: plugin}
}

// String returns a string representation of the source.
func (s Source) String() string {
	if s.Unit == "" {
		return s.Type.String()
	}
	return s.Type.String() + ":" + s.Unit
}

// Flags is a bitset of descriptor behavior flags.
type Flags uint32

// Descriptor flags.
const (
	// FlagHidden excludes the descriptor from user-facing listings.
	FlagHidden Flags = 1 << iota
	// FlagRepeatable marks an action as eligible for count repetition.
	FlagRepeatable
	// FlagExtendable marks a motion as usable with selection extension.
	FlagExtendable
)

// Has returns true if all bits in f are set.
func (fl Flags) Has(f Flags) bool {
	return fl&f == f
}

// Descriptor is the common metadata shape shared by every registrable
// kind. Descriptors are immutable once registered.
type Descriptor struct {
	// ID is globally unique within a kind (e.g. "core.cursor.left").
	ID string

	// Name is the lookup/display name (e.g. "cursor.left").
	Name string

	// Aliases are alternative lookup names.
	Aliases []string

	// Key is the kind-specific lookup key: a key binding's chord
	// or a text object's trigger character. Empty for kinds that
	// resolve by name only.
	Key string

	// Priority orders collision resolution; higher wins.
	Priority int16

	// Source records provenance, the tie breaker after priority.
	Source Source

	// RequiredCaps names the host capabilities the handler needs.
	RequiredCaps []string

	// Flags is a bitset of behavior flags.
	Flags Flags
}

// Matches returns true if the descriptor's name or one of its aliases
// equals name.
func (d Descriptor) Matches(name string) bool {
	if d.Name == name {
		return true
	}
	for _, a := range d.Aliases {
		if a == name {
			return true
		}
	}
	return false
}

// Entry is one contribution: a descriptor of a given kind plus its
// kind-specific handler. Handler types are owned by the consuming
// packages (action handlers, command handlers, option defaults) and
// carried opaquely here.
type Entry struct {
	Kind       Kind
	Descriptor Descriptor
	Handler    any
}
