package plugin

import (
	"os"
	"path/filepath"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/workdeck/workdeck/internal/event"
	"github.com/workdeck/workdeck/internal/logging"
	"github.com/workdeck/workdeck/internal/settings"
	"github.com/workdeck/workdeck/internal/view"
)

// Config wires the manager to the shared registries plugins contribute to.
type Config struct {
	Views    *view.Registry
	Settings *settings.Store
	Bus      *event.Bus
	Logger   *logging.Logger
}

// Manager owns the plugin lifecycle: discovery and loading, one-time
// initialization, and release in reverse load order.
type Manager struct {
	views    *view.Registry
	settings *settings.Store
	bus      *event.Bus
	logger   *logging.Logger

	// Load order; unload walks this backwards.
	plugins []*Plugin
}

// NewManager creates a manager around the shared registries.
func NewManager(cfg Config) *Manager {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Nop
	}
	return &Manager{
		views:    cfg.Views,
		settings: cfg.Settings,
		bus:      cfg.Bus,
		logger:   logger.WithPrefix("plugin"),
	}
}

// Load discovers and loads every module in the directory. A directory that
// does not exist or contains no modules leaves the manager with an empty
// plugin set; neither is an error. Modules that fail to compile are recorded
// as failed and skipped by initialization.
func (m *Manager) Load(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		m.logger.Debug("no plugin directory at %s", dir)
		return nil
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		switch {
		case entry.IsDir():
			m.loadDirectory(path, entry.Name())
		case strings.HasSuffix(entry.Name(), ".lua"):
			name := strings.TrimSuffix(entry.Name(), ".lua")
			m.loadModule(&Plugin{Name: name, Path: path})
		}
	}

	m.logger.Info("loaded %d of %d plugins", m.countState(StateLoaded), len(m.plugins))
	return nil
}

// loadDirectory loads a directory-form plugin: either a plugin.yaml naming
// the entry script, or a bare init.lua.
func (m *Manager) loadDirectory(dir, name string) {
	p := &Plugin{Name: name}

	manifestPath := filepath.Join(dir, ManifestFileName)
	if _, err := os.Stat(manifestPath); err == nil {
		manifest, err := parseManifest(manifestPath)
		if err != nil {
			p.State = StateFailed
			p.Err = err
			m.plugins = append(m.plugins, p)
			m.logger.Warn("plugin %s: %v", name, err)
			return
		}
		p.Manifest = manifest
		if manifest.Name != "" {
			p.Name = manifest.Name
		}
		p.Path = filepath.Join(dir, manifest.Entry)
	} else {
		p.Path = filepath.Join(dir, "init.lua")
	}

	if _, err := os.Stat(p.Path); err != nil {
		// Directory with no loadable module; not a plugin.
		return
	}
	m.loadModule(p)
}

// loadModule compiles and runs the module's top level in a fresh Lua state
// with the shell API installed. Success transitions the plugin to Loaded.
func (m *Manager) loadModule(p *Plugin) {
	p.l = lua.NewState()
	m.installAPI(p)

	if err := p.l.DoFile(p.Path); err != nil {
		p.State = StateFailed
		p.Err = err
		p.l.Close()
		p.closed = true
		m.logger.Warn("plugin %s failed to load: %v", p.Name, err)
	} else {
		p.State = StateLoaded
	}
	m.plugins = append(m.plugins, p)
}

// InitializeAll invokes each loaded module's entrypoint exactly once. A
// module whose entrypoint is missing or fails is marked failed and excluded
// from further dispatch; the remaining modules still initialize.
func (m *Manager) InitializeAll() {
	for _, p := range m.plugins {
		if p.State != StateLoaded {
			continue
		}

		fn := p.l.GetGlobal(EntrypointName)
		if fn.Type() != lua.LTFunction {
			p.State = StateFailed
			p.Err = ErrNoEntrypoint
			m.logger.Warn("plugin %s: %v", p.Name, ErrNoEntrypoint)
			continue
		}

		err := p.l.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true})
		if err != nil {
			p.State = StateFailed
			p.Err = err
			m.logger.Warn("plugin %s failed to initialize: %v", p.Name, err)
			continue
		}

		p.State = StateInitialized
		m.logger.Debug("plugin %s initialized", p.Name)
	}
}

// UnloadAll releases every module handle in reverse load order,
// best-effort. It must only run once the view registry has been cleared;
// a Lua-backed view drawn after its state is closed would call into freed
// code. Event subscriptions made by each plugin are removed first.
func (m *Manager) UnloadAll() {
	for i := len(m.plugins) - 1; i >= 0; i-- {
		p := m.plugins[i]
		if m.bus != nil {
			m.bus.UnsubscribeAll(p.owner())
		}
		if !p.closed {
			p.l.Close()
			p.closed = true
		}
		p.State = StateUnloaded
	}
	m.logger.Debug("unloaded %d plugins", len(m.plugins))
}

// Plugins returns the modules in load order.
func (m *Manager) Plugins() []*Plugin {
	out := make([]*Plugin, len(m.plugins))
	copy(out, m.plugins)
	return out
}

func (m *Manager) countState(s State) int {
	n := 0
	for _, p := range m.plugins {
		if p.State == s {
			n++
		}
	}
	return n
}
