// Package key models keyboard input: keys, modifiers, events, and
// the textual key notation used in keybinding declarations.
package key

// Key identifies a non-character key. Character input uses KeyRune
// with the character in Event.Rune.
type Key uint16

const (
	// KeyNone represents no key.
	KeyNone Key = iota

	KeyEscape
	KeyEnter
	KeyTab
	KeyBackspace
	KeyDelete
	KeySpace

	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown

	// KeyRune is a character key; Event.Rune carries the character.
	KeyRune
)

// String returns the canonical key name.
func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return "None"
}

var keyNames = map[Key]string{
	KeyEscape:    "Esc",
	KeyEnter:     "CR",
	KeyTab:       "Tab",
	KeyBackspace: "BS",
	KeyDelete:    "Del",
	KeySpace:     "Space",
	KeyUp:        "Up",
	KeyDown:      "Down",
	KeyLeft:      "Left",
	KeyRight:     "Right",
	KeyHome:      "Home",
	KeyEnd:       "End",
	KeyPageUp:    "PageUp",
	KeyPageDown:  "PageDown",
	KeyRune:      "Rune",
}

// keysByName maps lower-cased names and aliases back to keys.
var keysByName = map[string]Key{
	"esc":      KeyEscape,
	"escape":   KeyEscape,
	"cr":       KeyEnter,
	"enter":    KeyEnter,
	"return":   KeyEnter,
	"tab":      KeyTab,
	"bs":       KeyBackspace,
	"delete":   KeyDelete,
	"del":      KeyDelete,
	"space":    KeySpace,
	"up":       KeyUp,
	"down":     KeyDown,
	"left":     KeyLeft,
	"right":    KeyRight,
	"home":     KeyHome,
	"end":      KeyEnd,
	"pageup":   KeyPageUp,
	"pagedown": KeyPageDown,
}

// FromName resolves a key name or alias, KeyNone if unknown.
func FromName(name string) Key {
	return keysByName[name]
}
