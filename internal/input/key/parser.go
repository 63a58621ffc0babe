package key

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

var (
	// ErrEmptySpec is returned for an empty key specification.
	ErrEmptySpec = errors.New("empty key specification")
	// ErrInvalidSpec is returned for a malformed key specification.
	ErrInvalidSpec = errors.New("invalid key specification")
)

// Parse parses one keystroke specification.
//
// Supported forms:
//   - a bare character: "a", "G", "@"
//   - a named key in brackets: "<Esc>", "<CR>", "<Space>"
//   - with modifiers: "<C-s>", "<A-CR>", "<C-S-p>"
func Parse(spec string) (Event, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Event{}, ErrEmptySpec
	}

	if strings.HasPrefix(spec, "<") && strings.HasSuffix(spec, ">") {
		return parseBracketed(spec[1 : len(spec)-1])
	}

	if utf8.RuneCountInString(spec) == 1 {
		r, _ := utf8.DecodeRuneInString(spec)
		return NewRuneEvent(r, ModNone), nil
	}

	// A bare key name like "Esc" is accepted for convenience.
	if k := FromName(strings.ToLower(spec)); k != KeyNone {
		return NewSpecialEvent(k, ModNone), nil
	}
	return Event{}, fmt.Errorf("%w: %q", ErrInvalidSpec, spec)
}

func parseBracketed(inner string) (Event, error) {
	inner = strings.TrimSpace(inner)
	if inner == "" {
		return Event{}, ErrInvalidSpec
	}

	parts := strings.Split(inner, "-")
	keyPart := parts[len(parts)-1]

	var mods Modifier
	for _, p := range parts[:len(parts)-1] {
		switch strings.ToLower(strings.TrimSpace(p)) {
		case "c":
			mods = mods.With(ModCtrl)
		case "a", "m":
			mods = mods.With(ModAlt)
		case "s":
			mods = mods.With(ModShift)
		default:
			return Event{}, fmt.Errorf("%w: unknown modifier %q", ErrInvalidSpec, p)
		}
	}

	if k := FromName(strings.ToLower(keyPart)); k != KeyNone {
		return NewSpecialEvent(k, mods), nil
	}
	if utf8.RuneCountInString(keyPart) == 1 {
		r, _ := utf8.DecodeRuneInString(keyPart)
		return Event{Key: KeyRune, Rune: r, Mods: mods}, nil
	}
	return Event{}, fmt.Errorf("%w: unknown key %q", ErrInvalidSpec, keyPart)
}

// ParseSequence parses a chord specification into its keystrokes:
// "gg" is two events, "<C-w>v" is two, "dd" is two.
func ParseSequence(spec string) ([]Event, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, ErrEmptySpec
	}

	var events []Event
	for len(spec) > 0 {
		if spec[0] == '<' {
			end := strings.IndexByte(spec, '>')
			if end < 0 {
				return nil, fmt.Errorf("%w: unmatched '<' in %q", ErrInvalidSpec, spec)
			}
			ev, err := Parse(spec[:end+1])
			if err != nil {
				return nil, err
			}
			events = append(events, ev)
			spec = spec[end+1:]
			continue
		}
		r, size := utf8.DecodeRuneInString(spec)
		events = append(events, NewRuneEvent(r, ModNone))
		spec = spec[size:]
	}
	return events, nil
}

// SequenceString renders events back to canonical chord notation.
func SequenceString(events []Event) string {
	var b strings.Builder
	for _, ev := range events {
		b.WriteString(ev.String())
	}
	return b.String()
}
