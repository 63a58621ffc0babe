package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fathom-editor/fathom/internal/config"
)

func testOptions() []config.Option {
	return []config.Option{
		{Name: "tabstop", Type: config.TypeInt, Default: 4, Description: "spaces per tab"},
		{Name: "theme", Type: config.TypeString, Default: "dark"},
		{Name: "wrap", Type: config.TypeBool, Default: false},
	}
}

func TestDefaults(t *testing.T) {
	s, err := config.NewStore(testOptions())
	if err != nil {
		t.Fatal(err)
	}
	if s.Int("tabstop") != 4 || s.String("theme") != "dark" || s.Bool("wrap") {
		t.Errorf("defaults: tabstop=%d theme=%q wrap=%v",
			s.Int("tabstop"), s.String("theme"), s.Bool("wrap"))
	}
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "tabstop = 8\ntheme = \"light\"\nwrap = true\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := config.NewStore(testOptions())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Load(path); err != nil {
		t.Fatal(err)
	}
	if s.Int("tabstop") != 8 || s.String("theme") != "light" || !s.Bool("wrap") {
		t.Errorf("loaded: tabstop=%d theme=%q wrap=%v",
			s.Int("tabstop"), s.String("theme"), s.Bool("wrap"))
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	s, err := config.NewStore(testOptions())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Load(filepath.Join(t.TempDir(), "absent.toml")); err != nil {
		t.Fatal(err)
	}
	if s.Int("tabstop") != 4 {
		t.Errorf("tabstop = %d", s.Int("tabstop"))
	}
}

func TestLoadRejectsUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("mystery = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := config.NewStore(testOptions())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Load(path); !errors.Is(err, config.ErrUnknownOption) {
		t.Errorf("expected ErrUnknownOption, got %v", err)
	}
}

func TestLoadRejectsWrongType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("tabstop = \"eight\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := config.NewStore(testOptions())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Load(path); !errors.Is(err, config.ErrTypeMismatch) {
		t.Errorf("expected ErrTypeMismatch, got %v", err)
	}
	// The failed load leaves the default intact.
	if s.Int("tabstop") != 4 {
		t.Errorf("tabstop = %d", s.Int("tabstop"))
	}
}

func TestSetFromString(t *testing.T) {
	s, err := config.NewStore(testOptions())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetFromString("tabstop", "2"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetFromString("wrap", "true"); err != nil {
		t.Fatal(err)
	}
	if s.Int("tabstop") != 2 || !s.Bool("wrap") {
		t.Errorf("tabstop=%d wrap=%v", s.Int("tabstop"), s.Bool("wrap"))
	}

	if err := s.SetFromString("tabstop", "many"); !errors.Is(err, config.ErrTypeMismatch) {
		t.Errorf("expected ErrTypeMismatch, got %v", err)
	}
	if err := s.SetFromString("nope", "1"); !errors.Is(err, config.ErrUnknownOption) {
		t.Errorf("expected ErrUnknownOption, got %v", err)
	}
}

func TestLookupStringForms(t *testing.T) {
	s, err := config.NewStore(testOptions())
	if err != nil {
		t.Fatal(err)
	}
	cases := map[string]string{
		"tabstop": "4",
		"theme":   "dark",
		"wrap":    "false",
	}
	for name, want := range cases {
		got, ok := s.Lookup(name)
		if !ok || got != want {
			t.Errorf("Lookup(%q) = %q, %v; want %q", name, got, ok, want)
		}
	}
	if _, ok := s.Lookup("absent"); ok {
		t.Error("Lookup of undeclared option should fail")
	}
}

func TestSnapshotIsFrozen(t *testing.T) {
	s, err := config.NewStore(testOptions())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetFromString("tabstop", "8"); err != nil {
		t.Fatal(err)
	}

	snap := s.Snapshot()
	want := map[string]string{"tabstop": "8", "theme": "dark", "wrap": "false"}
	if len(snap) != len(want) {
		t.Fatalf("snapshot = %v", snap)
	}
	for name, v := range want {
		if snap[name] != v {
			t.Errorf("snapshot[%q] = %q, want %q", name, snap[name], v)
		}
	}

	// Later writes do not show through an already-taken snapshot.
	if err := s.SetFromString("theme", "light"); err != nil {
		t.Fatal(err)
	}
	if snap["theme"] != "dark" {
		t.Errorf("snapshot theme = %q after store write", snap["theme"])
	}
}

func TestOptionsSorted(t *testing.T) {
	s, err := config.NewStore(testOptions())
	if err != nil {
		t.Fatal(err)
	}
	opts := s.Options()
	if len(opts) != 3 || opts[0].Name != "tabstop" || opts[2].Name != "wrap" {
		t.Errorf("options = %v", opts)
	}
}

func TestDuplicateDeclarationRejected(t *testing.T) {
	_, err := config.NewStore([]config.Option{
		{Name: "x", Type: config.TypeInt, Default: 1},
		{Name: "x", Type: config.TypeInt, Default: 2},
	})
	if err == nil {
		t.Error("duplicate option should fail")
	}
}
