// Package config holds the editor's options: their declarations,
// their current values, and the TOML file they load from. Values are
// typed at declaration; loading rejects unknown keys and type
// mismatches rather than guessing.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"

	"github.com/fathom-editor/fathom/internal/diag"
)

// Type is an option's value type.
type Type int

const (
	TypeString Type = iota
	TypeInt
	TypeBool
)

// String returns the type name.
func (t Type) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInt:
		return "int"
	case TypeBool:
		return "bool"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// Option declares one configuration option.
type Option struct {
	Name        string
	Description string
	Type        Type
	Default     any
}

var (
	// ErrUnknownOption is returned for a key no option declares.
	ErrUnknownOption = errors.New("unknown option")
	// ErrTypeMismatch is returned when a value has the wrong type.
	ErrTypeMismatch = errors.New("option type mismatch")
)

// Store holds declared options and their current values.
type Store struct {
	mu     sync.RWMutex
	opts   map[string]Option
	values map[string]any
	path   string

	watcher *fsnotify.Watcher
	log     *diag.Log
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithStoreLog attaches a diagnostic log.
func WithStoreLog(log *diag.Log) StoreOption {
	return func(s *Store) { s.log = log }
}

// NewStore declares the given options, all at their defaults.
func NewStore(options []Option, opts ...StoreOption) (*Store, error) {
	s := &Store{
		opts:   make(map[string]Option, len(options)),
		values: make(map[string]any, len(options)),
	}
	for _, o := range options {
		if _, dup := s.opts[o.Name]; dup {
			return nil, fmt.Errorf("duplicate option %q", o.Name)
		}
		if err := checkType(o.Type, o.Default); err != nil {
			return nil, fmt.Errorf("option %q default: %w", o.Name, err)
		}
		s.opts[o.Name] = o
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

func checkType(t Type, v any) error {
	switch t {
	case TypeString:
		if _, ok := v.(string); !ok {
			return fmt.Errorf("%w: want string, got %T", ErrTypeMismatch, v)
		}
	case TypeInt:
		switch v.(type) {
		case int, int64:
		default:
			return fmt.Errorf("%w: want int, got %T", ErrTypeMismatch, v)
		}
	case TypeBool:
		if _, ok := v.(bool); !ok {
			return fmt.Errorf("%w: want bool, got %T", ErrTypeMismatch, v)
		}
	}
	return nil
}

// Load reads a TOML file and applies its values. Unknown keys and
// mismatched types fail the whole load; the store keeps its previous
// values on failure. A missing file is not an error.
func (s *Store) Load(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		s.mu.Lock()
		s.path = path
		s.mu.Unlock()
		return nil
	}
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	staged := make(map[string]any, len(raw))
	for key, value := range raw {
		opt, ok := s.opts[key]
		if !ok {
			return fmt.Errorf("config %s: %w: %q", path, ErrUnknownOption, key)
		}
		if err := checkType(opt.Type, value); err != nil {
			return fmt.Errorf("config %s: %q: %w", path, key, err)
		}
		staged[key] = value
	}

	s.values = staged
	s.path = path
	s.infof("loaded %s (%d values)", path, len(staged))
	return nil
}

// Set applies one value at runtime, as from a set command.
func (s *Store) Set(name string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	opt, ok := s.opts[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownOption, name)
	}
	if err := checkType(opt.Type, value); err != nil {
		return fmt.Errorf("%q: %w", name, err)
	}
	s.values[name] = value
	return nil
}

// SetFromString parses a string form of the value per the option's
// declared type.
func (s *Store) SetFromString(name, raw string) error {
	s.mu.RLock()
	opt, ok := s.opts[name]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownOption, name)
	}
	switch opt.Type {
	case TypeString:
		return s.Set(name, raw)
	case TypeInt:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%q: %w: %q is not an int", name, ErrTypeMismatch, raw)
		}
		return s.Set(name, n)
	case TypeBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("%q: %w: %q is not a bool", name, ErrTypeMismatch, raw)
		}
		return s.Set(name, b)
	}
	return nil
}

// String returns a string option's value.
func (s *Store) String(name string) string {
	v, _ := s.value(name)
	if str, ok := v.(string); ok {
		return str
	}
	return ""
}

// Int returns an int option's value.
func (s *Store) Int(name string) int {
	v, _ := s.value(name)
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	}
	return 0
}

// Bool returns a bool option's value.
func (s *Store) Bool(name string) bool {
	v, _ := s.value(name)
	b, _ := v.(bool)
	return b
}

func (s *Store) value(name string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.values[name]; ok {
		return v, true
	}
	if opt, ok := s.opts[name]; ok {
		return opt.Default, true
	}
	return nil, false
}

// Lookup returns an option's value rendered as a string.
func (s *Store) Lookup(name string) (string, bool) {
	v, ok := s.value(name)
	if !ok {
		return "", false
	}
	return render(v), true
}

// Snapshot returns every option's current value rendered as a string.
// Extension guests read this frozen copy, so a reload while a guest
// call is in flight cannot change what the guest sees.
func (s *Store) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.opts))
	for name, opt := range s.opts {
		v, ok := s.values[name]
		if !ok {
			v = opt.Default
		}
		out[name] = render(v)
	}
	return out
}

func render(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// Options returns the declarations sorted by name.
func (s *Store) Options() []Option {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Option, 0, len(s.opts))
	for _, o := range s.opts {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Watch reloads the store when its file changes. Reload failures keep
// the current values and surface as diagnostics. Close stops the
// watcher.
func (s *Store) Watch() error {
	s.mu.RLock()
	path := s.path
	s.mu.RUnlock()
	if path == "" {
		return errors.New("config: nothing loaded, nothing to watch")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config watch: %w", err)
	}
	if err := w.Add(path); err != nil {
		w.Close()
		return fmt.Errorf("config watch %s: %w", path, err)
	}

	s.mu.Lock()
	s.watcher = w
	s.mu.Unlock()

	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				if err := s.Load(path); err != nil {
					s.errorf("reload: %v", err)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				s.errorf("watch: %v", err)
			}
		}
	}()
	return nil
}

// Close stops the file watcher, if one is running.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher != nil {
		err := s.watcher.Close()
		s.watcher = nil
		return err
	}
	return nil
}

func (s *Store) infof(format string, args ...any) {
	if s.log != nil {
		s.log.Infof("config", format, args...)
	}
}

func (s *Store) errorf(format string, args ...any) {
	if s.log != nil {
		s.log.Errorf("config", format, args...)
	}
}
