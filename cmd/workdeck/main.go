// Package main is the entry point for the Workdeck shell.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/workdeck/workdeck/internal/event"
	"github.com/workdeck/workdeck/internal/shell"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts, files := parseFlags()

	sh, err := shell.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}

	// Files named on the command line enter the load pipeline once the
	// frame loop starts draining the deferred queue.
	for _, path := range files {
		p := path
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		sh.Bus().Defer(func() {
			sh.Bus().Publish(event.TypeFileLoaded, p)
		})
	}

	// Handle signals for graceful shutdown
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-signals
		sh.RequestClose()
	}()

	if err := sh.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags() (shell.Options, []string) {
	var opts shell.Options
	var noWatch bool
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.SettingsPath, "config", "", "Path to settings file")
	flag.StringVar(&opts.SettingsPath, "c", "", "Path to settings file (shorthand)")
	flag.StringVar(&opts.PluginDir, "plugins", "", "Plugin directory")
	flag.StringVar(&opts.PluginDir, "p", "", "Plugin directory (shorthand)")
	flag.StringVar(&opts.LogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.BoolVar(&noWatch, "no-watch", false, "Disable settings file watching")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Workdeck - extensible workbench shell\n\n")
		fmt.Fprintf(os.Stderr, "Usage: workdeck [options] [files...]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  workdeck                    Open the welcome screen\n")
		fmt.Fprintf(os.Stderr, "  workdeck data.bin           Open a file\n")
		fmt.Fprintf(os.Stderr, "  workdeck -p ./plugins       Load plugins from a directory\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("Workdeck %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	// Validate log level
	switch opts.LogLevel {
	case "debug", "info", "warn", "error":
		// Valid
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.LogLevel)
		os.Exit(1)
	}

	if opts.SettingsPath == "" {
		opts.SettingsPath = defaultSettingsPath()
	}
	if opts.PluginDir == "" {
		opts.PluginDir = defaultPluginDir()
	}
	opts.Watch = !noWatch

	return opts, flag.Args()
}

func defaultSettingsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "workdeck.toml"
	}
	return filepath.Join(dir, "workdeck", "settings.toml")
}

// defaultPluginDir is the plugins directory next to the executable.
func defaultPluginDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "plugins"
	}
	return filepath.Join(filepath.Dir(exe), "plugins")
}
