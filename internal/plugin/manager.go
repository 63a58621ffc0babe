package plugin

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/fathom-editor/fathom/internal/diag"
	"github.com/fathom-editor/fathom/internal/registry"
)

// Manager owns every loaded plugin and the runtime contribution
// lookup. Runtime contributions are consulted before the static
// registry; when a plugin action shadows a static one the shadowing
// is recorded in the static registry's diagnostics.
type Manager struct {
	mu sync.RWMutex

	editor HostEditor
	static *registry.Registry
	config func() map[string]string
	log    *diag.Log

	hosts map[string]*Host
	order []string

	stateFile string

	watcher *fsnotify.Watcher
	watched map[string]string
	reloads chan string
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithManagerLog attaches a diagnostic log.
func WithManagerLog(log *diag.Log) ManagerOption {
	return func(m *Manager) { m.log = log }
}

// WithStateFile persists enable/disable choices across sessions.
func WithStateFile(path string) ManagerOption {
	return func(m *Manager) { m.stateFile = path }
}

// WithManagerConfig supplies the option snapshot copied into guest
// invocations and consulted for API group gating.
func WithManagerConfig(fn func() map[string]string) ManagerOption {
	return func(m *Manager) { m.config = fn }
}

// NewManager creates an empty manager.
func NewManager(editor HostEditor, static *registry.Registry, opts ...ManagerOption) *Manager {
	m := &Manager{
		editor:  editor,
		static:  static,
		hosts:   make(map[string]*Host),
		watched: make(map[string]string),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load loads and activates the plugin in dir. A plugin the user
// previously disabled loads but stays disabled.
func (m *Manager) Load(dir string) (*Host, error) {
	manifest, err := LoadManifest(dir)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.hosts[manifest.Name]; exists {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyLoaded, manifest.Name)
	}

	host := NewHost(manifest, m.editor,
		WithConfigSource(m.config),
		WithHostLog(m.log))
	if err := host.Load(); err != nil {
		if host.State() == StateDisabled {
			// ABI mismatch: keep it visible in the list so the user
			// sees why it is disabled.
			m.hosts[host.ID()] = host
			m.order = append(m.order, host.ID())
		}
		return host, err
	}

	m.noteShadows(host)

	if m.persistedDisabled(host.ID()) {
		if err := host.Disable(); err != nil {
			return host, err
		}
		m.infof("plugin %s loaded (disabled by user)", host.ID())
	} else if err := host.Activate(); err != nil {
		return host, err
	}

	m.hosts[host.ID()] = host
	m.order = append(m.order, host.ID())
	return host, nil
}

// LoadAll loads every plugin directory under root, in name order so
// runtime precedence is reproducible across sessions. Load failures
// are reported and skipped.
func (m *Manager) LoadAll(root string) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		return fmt.Errorf("plugin dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(root, e.Name(), ManifestName)); err != nil {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		if _, err := m.Load(filepath.Join(root, name)); err != nil {
			m.errorf("load %s: %v", name, err)
		}
	}
	return nil
}

// noteShadows records, for every action the plugin registered, any
// static registry entry it now shadows. Callers hold the lock.
func (m *Manager) noteShadows(host *Host) {
	if m.static == nil {
		return
	}
	for _, a := range host.Registration().Actions {
		if desc, ok := m.static.FindByName(registry.KindAction, a.Name); ok {
			winner := registry.Descriptor{
				ID:       host.ID() + "." + a.Name,
				Name:     a.Name,
				Key:      a.Key,
				Priority: int16(a.Priority),
				Source:   registry.Runtime(host.ID()),
			}
			m.static.NoteRuntimeShadow(registry.KindAction, a.Name, winner, desc)
			m.infof("plugin %s action %q shadows %s", host.ID(), a.Name, desc.ID)
		}
	}
}

// Get returns a loaded plugin by id.
func (m *Manager) Get(id string) (*Host, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	host, ok := m.hosts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return host, nil
}

// List returns loaded plugins in load order.
func (m *Manager) List() []*Host {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Host, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.hosts[id])
	}
	return out
}

// Unload removes a plugin entirely.
func (m *Manager) Unload(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	host, ok := m.hosts[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err := host.Unload(); err != nil {
		return err
	}
	delete(m.hosts, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// Enable re-activates a disabled plugin and persists the choice.
func (m *Manager) Enable(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	host, ok := m.hosts[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err := host.Enable(); err != nil {
		return err
	}
	m.persistDisabled(id, false)
	return nil
}

// Disable suspends a plugin's contributions and persists the choice.
func (m *Manager) Disable(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	host, ok := m.hosts[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err := host.Disable(); err != nil {
		return err
	}
	m.persistDisabled(id, true)
	return nil
}

// Reload unloads and loads a plugin from its directory, picking up
// changed source.
func (m *Manager) Reload(id string) error {
	m.mu.RLock()
	host, ok := m.hosts[id]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	dir := host.Manifest().Dir()
	if err := m.Unload(id); err != nil {
		return err
	}
	_, err := m.Load(dir)
	return err
}

// FindAction returns the first active plugin registering name, in
// load order. The caller checks here before the static registry.
func (m *Manager) FindAction(name string) (*Host, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range m.order {
		host := m.hosts[id]
		if host.State() != StateActive {
			continue
		}
		for _, a := range host.Registration().Actions {
			if a.Name == name {
				return host, true
			}
		}
	}
	return nil, false
}

// FindActionByKey returns the active plugin action bound to key.
func (m *Manager) FindActionByKey(key string) (*Host, string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range m.order {
		host := m.hosts[id]
		if host.State() != StateActive {
			continue
		}
		for _, a := range host.Registration().Actions {
			if a.Key != "" && a.Key == key {
				return host, a.Name, true
			}
		}
	}
	return nil, "", false
}

// HasKeyPrefix reports whether any active plugin action key strictly
// extends prefix, so the resolver can hold a chord that only a plugin
// binding completes.
func (m *Manager) HasKeyPrefix(prefix string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range m.order {
		host := m.hosts[id]
		if host.State() != StateActive {
			continue
		}
		for _, a := range host.Registration().Actions {
			if len(a.Key) > len(prefix) && strings.HasPrefix(a.Key, prefix) {
				return true
			}
		}
	}
	return false
}

// FindCommand returns the first active plugin registering a command.
func (m *Manager) FindCommand(name string) (*Host, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range m.order {
		host := m.hosts[id]
		if host.State() != StateActive {
			continue
		}
		for _, c := range host.Registration().Commands {
			if c.Name == name {
				return host, true
			}
		}
	}
	return nil, false
}

// EmitHook runs the event's hooks on every active plugin, in load
// order.
func (m *Manager) EmitHook(event string) {
	for _, host := range m.List() {
		if host.State() == StateActive {
			host.InvokeHook(event)
		}
	}
}

// persistedDisabled reports whether the user disabled id in a prior
// session. Callers hold the lock.
func (m *Manager) persistedDisabled(id string) bool {
	if m.stateFile == "" {
		return false
	}
	data, err := os.ReadFile(m.stateFile)
	if err != nil {
		return false
	}
	for _, v := range gjson.GetBytes(data, "disabled").Array() {
		if v.String() == id {
			return true
		}
	}
	return false
}

// persistDisabled updates the state file's disabled list. Callers
// hold the lock; failures are diagnostics, not errors, since the
// in-memory state is already correct.
func (m *Manager) persistDisabled(id string, disabled bool) {
	if m.stateFile == "" {
		return
	}
	data, err := os.ReadFile(m.stateFile)
	if err != nil {
		data = []byte(`{}`)
	}

	var list []string
	for _, v := range gjson.GetBytes(data, "disabled").Array() {
		if v.String() != id {
			list = append(list, v.String())
		}
	}
	if disabled {
		list = append(list, id)
		sort.Strings(list)
	}
	if list == nil {
		list = []string{}
	}

	out, err := sjson.SetBytes(data, "disabled", list)
	if err != nil {
		m.errorf("persist plugin state: %v", err)
		return
	}
	if err := os.WriteFile(m.stateFile, out, 0o644); err != nil {
		m.errorf("persist plugin state: %v", err)
	}
}

// WatchDev starts watching a plugin's directory for source changes
// and returns a channel that carries the plugin id when its files
// change. The caller reloads from its own loop; the watcher never
// touches interpreter state itself.
func (m *Manager) WatchDev(id string) (<-chan string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	host, ok := m.hosts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if m.watcher == nil {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			return nil, fmt.Errorf("plugin watch: %w", err)
		}
		m.watcher = w
		m.reloads = make(chan string, 16)
		go m.watchLoop()
	}

	dir := host.Manifest().Dir()
	if err := m.watcher.Add(dir); err != nil {
		return nil, fmt.Errorf("plugin watch %s: %w", dir, err)
	}
	m.watched[dir] = id
	m.infof("watching %s for changes", dir)
	return m.reloads, nil
}

func (m *Manager) watchLoop() {
	for {
		select {
		case ev, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			ext := filepath.Ext(ev.Name)
			if ext != ".lua" && filepath.Base(ev.Name) != ManifestName {
				continue
			}
			m.mu.RLock()
			id, ok := m.watched[filepath.Dir(ev.Name)]
			m.mu.RUnlock()
			if !ok {
				continue
			}
			select {
			case m.reloads <- id:
			default:
				// Channel full; a reload is already queued.
			}
		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			m.errorf("plugin watch: %v", err)
		}
	}
}

// Close stops the dev watcher.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.watcher != nil {
		err := m.watcher.Close()
		m.watcher = nil
		return err
	}
	return nil
}

func (m *Manager) infof(format string, args ...any) {
	if m.log != nil {
		m.log.Infof("plugin", format, args...)
	}
}

func (m *Manager) errorf(format string, args ...any) {
	if m.log != nil {
		m.log.Errorf("plugin", format, args...)
	}
}
