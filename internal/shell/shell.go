// Package shell is the top-level orchestrator: it owns the native backend,
// runs the per-frame sequence, dispatches shortcuts, and composes the event
// bus, settings store, view registry, and plugin manager into one lifecycle.
package shell

import (
	"errors"
	"io"
	"sync/atomic"
	"time"

	"github.com/workdeck/workdeck/internal/event"
	"github.com/workdeck/workdeck/internal/logging"
	"github.com/workdeck/workdeck/internal/plugin"
	"github.com/workdeck/workdeck/internal/settings"
	"github.com/workdeck/workdeck/internal/shell/backend"
	"github.com/workdeck/workdeck/internal/view"
)

// shellOwner is the bus owner token for the shell's own subscriptions.
const shellOwner event.Owner = "shell"

// Settings keys owned by the shell.
const (
	categoryInterface = "interface"
	keyTheme          = "theme"
	keyScale          = "scale"
	keyShowFPS        = "show_fps"

	// viewStateCategory persists per-view open flags as Name = 0|1.
	viewStateCategory = "views"
)

// ErrAlreadyRunning is returned when Run is called on a running shell.
var ErrAlreadyRunning = errors.New("shell already running")

// InitError reports a fatal startup failure in a named component.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return "initializing " + e.Component + ": " + e.Err.Error()
}

func (e *InitError) Unwrap() error { return e.Err }

// Options configures the shell.
type Options struct {
	// SettingsPath is the persisted settings document.
	SettingsPath string

	// PluginDir is scanned for extension modules at startup.
	PluginDir string

	// LogLevel sets logging verbosity (debug, info, warn, error).
	LogLevel string

	// LogOutput is where logs are written. Defaults to stderr; the
	// terminal owns stdout.
	LogOutput io.Writer

	// Watch reloads the settings document when it changes on disk.
	Watch bool

	// Backend overrides the native surface. Defaults to the terminal.
	Backend backend.Backend

	// FrameRate is frames per second. Defaults to 30.
	FrameRate int
}

// Shell wires the components together and runs the frame loop. All state is
// owned by the frame goroutine; background goroutines reach it only through
// the bus deferred queue.
type Shell struct {
	opts    Options
	logger  *logging.Logger
	bus     *event.Bus
	store   *settings.Store
	recent  *settings.RecentFiles
	views   *view.Registry
	plugins *plugin.Manager
	backend backend.Backend
	watcher *settings.Watcher

	running        atomic.Bool
	closeRequested bool

	width, height int
	scale         float64
	fpsVisible    bool

	// One shortcut slot per frame; the last key press wins.
	shortcut *view.Shortcut

	// welcomeVisible mirrors the previous frame's draw outcome.
	welcomeVisible bool

	frames     int
	fps        float64
	fpsWindow  time.Time
}

// New constructs the shell and performs the startup sequence short of
// acquiring the native surface: subscriptions, built-in settings and views,
// settings load, the initial settings-changed publish, and the recent list.
func New(opts Options) (*Shell, error) {
	logCfg := logging.DefaultConfig()
	logCfg.Level = logging.ParseLevel(opts.LogLevel)
	if opts.LogOutput != nil {
		logCfg.Output = opts.LogOutput
	}
	logger := logging.New(logCfg)

	s := &Shell{
		opts:   opts,
		logger: logger,
		bus:    event.NewBus(),
		views:  view.NewRegistry(),
		scale:  1.0,
	}

	s.store = settings.NewStore(opts.SettingsPath, logger)
	s.recent = settings.NewRecentFiles(s.store)
	s.plugins = plugin.NewManager(plugin.Config{
		Views:    s.views,
		Settings: s.store,
		Bus:      s.bus,
		Logger:   logger,
	})

	if opts.Backend != nil {
		s.backend = opts.Backend
	} else {
		term, err := backend.NewTerminal()
		if err != nil {
			return nil, &InitError{Component: "terminal", Err: err}
		}
		s.backend = term
	}

	s.registerSettings()
	s.setupSubscriptions()

	if err := s.views.Register(newSettingsView(s.store, s.bus)); err != nil {
		return nil, &InitError{Component: "settings view", Err: err}
	}

	if err := s.store.Load(); err != nil {
		// Unreadable settings fall back to defaults.
		logger.Warn("loading settings: %v", err)
	}
	s.bus.Publish(event.TypeSettingsChanged, nil)
	s.recent.Load()

	return s, nil
}

// registerSettings registers the shell's own settings with display-only
// draw callbacks for the settings view.
func (s *Shell) registerSettings() {
	themeNames := []string{"dark", "light", "classic"}

	s.store.Register(categoryInterface, keyTheme, 0, func(f view.Frame, v any) (any, bool) {
		name := "dark"
		if n, ok := v.(int); ok && n >= 0 && n < len(themeNames) {
			name = themeNames[n]
		} else if n, ok := v.(int64); ok && n >= 0 && int(n) < len(themeNames) {
			name = themeNames[n]
		}
		if f != nil {
			f.Print(0, 0, "Color theme: "+name+"  (Ctrl+T cycles)")
		}
		return v, false
	})

	s.store.Register(categoryInterface, keyScale, 1.0, func(f view.Frame, v any) (any, bool) {
		if f != nil {
			f.Print(0, 0, "UI scale")
		}
		return v, false
	})

	s.store.Register(categoryInterface, keyShowFPS, false, func(f view.Frame, v any) (any, bool) {
		state := "off"
		if b, ok := v.(bool); ok && b {
			state = "on"
		}
		if f != nil {
			f.Print(0, 0, "FPS overlay: "+state)
		}
		return v, false
	})
}

// setupSubscriptions registers the shell's bus subscriptions under its
// owner token so shutdown can remove them atomically.
func (s *Shell) setupSubscriptions() {
	s.bus.Subscribe(event.TypeSettingsChanged, shellOwner, func(any) any {
		s.applySettings()
		return nil
	})

	s.bus.Subscribe(event.TypeFileLoaded, shellOwner, func(payload any) any {
		path, ok := payload.(string)
		if !ok {
			return nil
		}
		if err := s.recent.Touch(path); err != nil {
			s.logger.Warn("persisting recent files: %v", err)
		}
		return nil
	})

	s.bus.Subscribe(event.TypeWindowClosing, shellOwner, func(any) any {
		s.closeRequested = true
		return nil
	})

	s.bus.Subscribe(event.TypeOpenView, shellOwner, func(payload any) any {
		name, ok := payload.(string)
		if !ok {
			return nil
		}
		if v, found := s.views.FindByName(name); found {
			v.SetOpen(true)
		}
		return nil
	})
}

// applySettings pushes the persisted interface settings onto the backend.
func (s *Shell) applySettings() {
	s.backend.SetDefaultStyle(themeStyle(s.store.ReadInt(categoryInterface, keyTheme)))

	if scale := s.store.ReadFloat(categoryInterface, keyScale); scale > 0 {
		s.scale = scale
	} else {
		s.scale = 1.0
	}
	s.fpsVisible = s.store.ReadBool(categoryInterface, keyShowFPS)
}

func themeStyle(theme int) backend.Style {
	switch theme {
	case 1: // light
		return backend.Style{Foreground: backend.ColorBlack, Background: backend.ColorWhite}
	case 2: // classic
		return backend.Style{Foreground: backend.ColorYellow, Background: backend.ColorBlue}
	default: // dark
		return backend.Style{Foreground: backend.ColorWhite, Background: backend.ColorBlack}
	}
}

// Bus exposes the event bus for input adapters and startup file loads.
func (s *Shell) Bus() *event.Bus { return s.bus }

// Views exposes the registry for host-registered views.
func (s *Shell) Views() *view.Registry { return s.views }

// Settings exposes the settings store.
func (s *Shell) Settings() *settings.Store { return s.store }

// RecentFiles exposes the recent-files list.
func (s *Shell) RecentFiles() *settings.RecentFiles { return s.recent }

// Plugins exposes the plugin manager.
func (s *Shell) Plugins() *plugin.Manager { return s.plugins }

// RequestClose asks the frame loop to finish the current frame and shut
// down. Safe to call from any goroutine.
func (s *Shell) RequestClose() {
	s.bus.Defer(func() {
		s.bus.Publish(event.TypeWindowClosing, nil)
	})
	s.backend.Interrupt()
}

// Run acquires the native surface, loads plugins, and blocks in the frame
// loop until a close is requested, then performs the ordered shutdown.
func (s *Shell) Run() error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer s.running.Store(false)

	if err := s.backend.Init(); err != nil {
		return &InitError{Component: "backend", Err: err}
	}
	s.width, s.height = s.backend.Size()

	// Plugins load only once the surface exists, and unload before it
	// would be torn down again on the error paths below.
	if err := s.plugins.Load(s.opts.PluginDir); err != nil {
		s.logger.Warn("loading plugins: %v", err)
	}
	s.plugins.InitializeAll()
	s.restoreViewStates()

	if s.opts.Watch {
		w, err := settings.NewWatcher(s.store, s.bus, s.logger)
		if err != nil {
			s.logger.Warn("settings watcher unavailable: %v", err)
		} else {
			s.watcher = w
			w.Start()
		}
	}

	events := make(chan backend.Event, 64)
	go s.pumpEvents(events)

	rate := s.opts.FrameRate
	if rate <= 0 {
		rate = 30
	}
	ticker := time.NewTicker(time.Second / time.Duration(rate))
	defer ticker.Stop()

	s.fpsWindow = time.Now()
	for !s.closeRequested {
		<-ticker.C
		s.frame(events)
	}

	s.shutdown()
	return nil
}

// pumpEvents forwards native events to the frame loop. It exits when the
// backend is finalized.
func (s *Shell) pumpEvents(out chan<- backend.Event) {
	for {
		ev := s.backend.PollEvent()
		if ev.Type == backend.EventNone {
			return
		}
		out <- ev
	}
}

// shutdown tears the shell down in the strict order the ownership
// invariants require: backend first, then settings, then the view registry,
// then plugins, and finally the shell's own subscriptions.
func (s *Shell) shutdown() {
	if s.watcher != nil {
		s.watcher.Stop()
	}

	s.backend.Fini()

	s.saveViewStates()
	if err := s.store.Save(); err != nil {
		s.logger.Error("persisting settings: %v", err)
	}

	// Plugin-contributed views must be destroyed before their modules
	// are released.
	s.views.Clear()
	s.plugins.UnloadAll()

	s.bus.UnsubscribeAll(shellOwner)
	s.bus.Close()
}

// restoreViewStates applies persisted open flags to registered views.
func (s *Shell) restoreViewStates() {
	s.views.ForEach(func(v view.View) bool {
		if s.store.Read(viewStateCategory, v.Name()) != nil {
			v.SetOpen(s.store.ReadBool(viewStateCategory, v.Name()))
		}
		return true
	})
}

// saveViewStates writes every view's open flag as Name = 0|1.
func (s *Shell) saveViewStates() {
	s.views.ForEach(func(v view.View) bool {
		state := 0
		if v.Open() {
			state = 1
		}
		s.store.Write(viewStateCategory, v.Name(), state)
		return true
	})
}
