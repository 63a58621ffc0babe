package key

import (
	"strings"

	"github.com/gdamore/tcell/v2"
)

// Modifier is a bitmask of held modifier keys.
type Modifier uint8

const (
	ModNone Modifier = 0
	ModCtrl Modifier = 1 << iota
	ModAlt
	ModShift
)

// With returns the modifier set with m added.
func (mods Modifier) With(m Modifier) Modifier { return mods | m }

// Has reports whether m is held.
func (mods Modifier) Has(m Modifier) bool { return mods&m != 0 }

// Event is one keystroke.
type Event struct {
	Key  Key
	Rune rune
	Mods Modifier
}

// NewRuneEvent creates a character keystroke.
func NewRuneEvent(r rune, mods Modifier) Event {
	return Event{Key: KeyRune, Rune: r, Mods: mods}
}

// NewSpecialEvent creates a non-character keystroke.
func NewSpecialEvent(k Key, mods Modifier) Event {
	return Event{Key: k, Mods: mods}
}

// IsRune reports whether the event is plain character input with no
// Ctrl or Alt held.
func (e Event) IsRune() bool {
	return e.Key == KeyRune && !e.Mods.Has(ModCtrl) && !e.Mods.Has(ModAlt)
}

// String renders the event in canonical binding notation: a bare
// character for plain runes, angle brackets otherwise ("<C-s>",
// "<Esc>", "<A-CR>").
func (e Event) String() string {
	if e.IsRune() {
		return string(e.Rune)
	}

	var b strings.Builder
	b.WriteByte('<')
	if e.Mods.Has(ModCtrl) {
		b.WriteString("C-")
	}
	if e.Mods.Has(ModAlt) {
		b.WriteString("A-")
	}
	if e.Mods.Has(ModShift) && e.Key != KeyRune {
		b.WriteString("S-")
	}
	if e.Key == KeyRune {
		b.WriteRune(e.Rune)
	} else {
		b.WriteString(e.Key.String())
	}
	b.WriteByte('>')
	return b.String()
}

// tcellSpecial maps terminal key codes to ours.
var tcellSpecial = map[tcell.Key]Key{
	tcell.KeyEscape:    KeyEscape,
	tcell.KeyEnter:     KeyEnter,
	tcell.KeyTab:       KeyTab,
	tcell.KeyBackspace: KeyBackspace,
	tcell.KeyDelete:    KeyDelete,
	tcell.KeyUp:        KeyUp,
	tcell.KeyDown:      KeyDown,
	tcell.KeyLeft:      KeyLeft,
	tcell.KeyRight:     KeyRight,
	tcell.KeyHome:      KeyHome,
	tcell.KeyEnd:       KeyEnd,
	tcell.KeyPgUp:      KeyPageUp,
	tcell.KeyPgDn:      KeyPageDown,
}

// FromTcell converts a terminal key event.
func FromTcell(ev *tcell.EventKey) Event {
	var mods Modifier
	if ev.Modifiers()&tcell.ModCtrl != 0 {
		mods = mods.With(ModCtrl)
	}
	if ev.Modifiers()&tcell.ModAlt != 0 {
		mods = mods.With(ModAlt)
	}
	if ev.Modifiers()&tcell.ModShift != 0 {
		mods = mods.With(ModShift)
	}

	if k, ok := tcellSpecial[ev.Key()]; ok {
		return NewSpecialEvent(k, mods)
	}
	if ev.Key() == tcell.KeyRune {
		if ev.Rune() == ' ' {
			return NewSpecialEvent(KeySpace, mods)
		}
		return NewRuneEvent(ev.Rune(), mods)
	}
	// Ctrl-letter arrives as a dedicated key code below 0x20.
	if ev.Key() >= tcell.KeyCtrlA && ev.Key() <= tcell.KeyCtrlZ {
		r := rune('a' + (ev.Key() - tcell.KeyCtrlA))
		return NewRuneEvent(r, mods.With(ModCtrl))
	}
	return Event{}
}
