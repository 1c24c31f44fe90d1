package plugin

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/workdeck/workdeck/internal/event"
	"github.com/workdeck/workdeck/internal/logging"
	"github.com/workdeck/workdeck/internal/settings"
	"github.com/workdeck/workdeck/internal/view"
)

func testManager(t *testing.T) (*Manager, *view.Registry, *settings.Store, *event.Bus) {
	t.Helper()
	views := view.NewRegistry()
	store := settings.NewStore(filepath.Join(t.TempDir(), "settings.toml"), logging.Nop)
	bus := event.NewBus()
	m := NewManager(Config{Views: views, Settings: store, Bus: bus, Logger: logging.Nop})
	return m, views, store, bus
}

func writePlugin(t *testing.T, dir, name, source string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(source), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestManager_LoadMissingDirectory(t *testing.T) {
	m, _, _, _ := testManager(t)

	if err := m.Load(filepath.Join(t.TempDir(), "does-not-exist")); err != nil {
		t.Fatalf("Load of missing directory returned error: %v", err)
	}
	if got := len(m.Plugins()); got != 0 {
		t.Errorf("plugin set has %d entries, want 0", got)
	}
}

func TestManager_LoadEmptyDirectory(t *testing.T) {
	m, _, _, _ := testManager(t)

	if err := m.Load(t.TempDir()); err != nil {
		t.Fatalf("Load of empty directory returned error: %v", err)
	}
	if got := len(m.Plugins()); got != 0 {
		t.Errorf("plugin set has %d entries, want 0", got)
	}
}

func TestManager_LoadAndInitialize(t *testing.T) {
	m, _, _, _ := testManager(t)
	dir := t.TempDir()
	writePlugin(t, dir, "hello.lua", `
		function initializePlugin()
			workdeck.log("hello")
		end
	`)

	if err := m.Load(dir); err != nil {
		t.Fatal(err)
	}
	plugins := m.Plugins()
	if len(plugins) != 1 {
		t.Fatalf("loaded %d plugins, want 1", len(plugins))
	}
	if plugins[0].State != StateLoaded {
		t.Fatalf("state after Load = %v, want loaded", plugins[0].State)
	}
	if plugins[0].Name != "hello" {
		t.Errorf("name = %q, want hello", plugins[0].Name)
	}

	m.InitializeAll()
	if plugins[0].State != StateInitialized {
		t.Errorf("state after InitializeAll = %v, want initialized", plugins[0].State)
	}
}

func TestManager_InitFailureIsolation(t *testing.T) {
	m, _, _, _ := testManager(t)
	dir := t.TempDir()

	writePlugin(t, dir, "a_good.lua", `function initializePlugin() end`)
	writePlugin(t, dir, "b_bad.lua", `function initializePlugin() error("boom") end`)
	writePlugin(t, dir, "c_good.lua", `function initializePlugin() end`)

	if err := m.Load(dir); err != nil {
		t.Fatal(err)
	}
	m.InitializeAll()

	states := make(map[string]State)
	for _, p := range m.Plugins() {
		states[p.Name] = p.State
	}
	if states["a_good"] != StateInitialized || states["c_good"] != StateInitialized {
		t.Errorf("good plugins not initialized: %v", states)
	}
	if states["b_bad"] != StateFailed {
		t.Errorf("failing plugin state = %v, want failed", states["b_bad"])
	}
}

func TestManager_MissingEntrypoint(t *testing.T) {
	m, _, _, _ := testManager(t)
	dir := t.TempDir()
	writePlugin(t, dir, "noentry.lua", `local x = 1`)

	if err := m.Load(dir); err != nil {
		t.Fatal(err)
	}
	m.InitializeAll()

	p := m.Plugins()[0]
	if p.State != StateFailed {
		t.Errorf("state = %v, want failed", p.State)
	}
	if p.Err == nil {
		t.Error("no error recorded for missing entrypoint")
	}
}

func TestManager_CompileErrorFailsAtLoad(t *testing.T) {
	m, _, _, _ := testManager(t)
	dir := t.TempDir()
	writePlugin(t, dir, "broken.lua", `this is not lua (`)

	if err := m.Load(dir); err != nil {
		t.Fatal(err)
	}
	p := m.Plugins()[0]
	if p.State != StateFailed {
		t.Errorf("state after compile error = %v, want failed", p.State)
	}

	// InitializeAll skips it; UnloadAll copes with the already-closed state.
	m.InitializeAll()
	m.UnloadAll()
}

func TestManager_DirectoryPluginWithManifest(t *testing.T) {
	m, _, _, _ := testManager(t)
	dir := t.TempDir()
	pdir := filepath.Join(dir, "tools")
	if err := os.MkdirAll(pdir, 0o755); err != nil {
		t.Fatal(err)
	}
	writePlugin(t, pdir, "plugin.yaml", "name: extra-tools\nversion: 1.0.0\nentry: main.lua\n")
	writePlugin(t, pdir, "main.lua", `function initializePlugin() end`)

	if err := m.Load(dir); err != nil {
		t.Fatal(err)
	}
	plugins := m.Plugins()
	if len(plugins) != 1 {
		t.Fatalf("loaded %d plugins, want 1", len(plugins))
	}
	if plugins[0].Name != "extra-tools" {
		t.Errorf("name = %q, want extra-tools (from manifest)", plugins[0].Name)
	}
	if plugins[0].Manifest == nil || plugins[0].Manifest.Version != "1.0.0" {
		t.Errorf("manifest not parsed: %+v", plugins[0].Manifest)
	}

	m.InitializeAll()
	if plugins[0].State != StateInitialized {
		t.Errorf("state = %v, want initialized", plugins[0].State)
	}
}

func TestManager_DirectoryPluginInitLua(t *testing.T) {
	m, _, _, _ := testManager(t)
	dir := t.TempDir()
	pdir := filepath.Join(dir, "bare")
	if err := os.MkdirAll(pdir, 0o755); err != nil {
		t.Fatal(err)
	}
	writePlugin(t, pdir, "init.lua", `function initializePlugin() end`)

	// A directory with nothing loadable is skipped entirely.
	if err := os.MkdirAll(filepath.Join(dir, "not-a-plugin"), 0o755); err != nil {
		t.Fatal(err)
	}

	if err := m.Load(dir); err != nil {
		t.Fatal(err)
	}
	if got := len(m.Plugins()); got != 1 {
		t.Fatalf("loaded %d plugins, want 1", got)
	}
	if m.Plugins()[0].Name != "bare" {
		t.Errorf("name = %q, want bare", m.Plugins()[0].Name)
	}
}

func TestManager_UnloadAll(t *testing.T) {
	m, views, _, bus := testManager(t)
	dir := t.TempDir()
	writePlugin(t, dir, "sub.lua", `
		function initializePlugin()
			workdeck.on_event("file.loaded", function(path) end)
		end
	`)

	if err := m.Load(dir); err != nil {
		t.Fatal(err)
	}
	m.InitializeAll()

	if got := bus.Stats().Subscriptions; got != 1 {
		t.Fatalf("subscriptions after init = %d, want 1", got)
	}

	// Registry teardown strictly precedes unload.
	views.Clear()
	m.UnloadAll()

	if got := bus.Stats().Subscriptions; got != 0 {
		t.Errorf("subscriptions after unload = %d, want 0", got)
	}
	for _, p := range m.Plugins() {
		if p.State != StateUnloaded {
			t.Errorf("plugin %s state = %v, want unloaded", p.Name, p.State)
		}
	}
}

func TestState_String(t *testing.T) {
	tests := []struct {
		s    State
		want string
	}{
		{StateUnloaded, "unloaded"},
		{StateLoaded, "loaded"},
		{StateInitialized, "initialized"},
		{StateFailed, "failed"},
		{State(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.s, got, tt.want)
		}
	}
}
