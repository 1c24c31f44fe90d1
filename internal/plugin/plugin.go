// Package plugin discovers, loads, initializes, and unloads the Lua
// extension modules that contribute views and settings to the shell's shared
// registries. A module handle is a dedicated Lua state; releasing it after
// the view registry has been cleared is what keeps plugin-contributed hooks
// from running against freed code.
package plugin

import (
	"errors"
	"fmt"
	"os"

	lua "github.com/yuin/gopher-lua"
	"gopkg.in/yaml.v3"

	"github.com/workdeck/workdeck/internal/event"
)

// EntrypointName is the global function every plugin must expose. It is
// invoked exactly once, with no arguments.
const EntrypointName = "initializePlugin"

// ErrNoEntrypoint is recorded on plugins that load but define no entrypoint.
var ErrNoEntrypoint = errors.New("plugin defines no " + EntrypointName + " function")

// Plugin is one loadable extension module.
type Plugin struct {
	// Name is the module identifier, from the manifest or the file name.
	Name string

	// Path is the entry script that was loaded.
	Path string

	// Manifest is the parsed plugin.yaml, if the module had one.
	Manifest *Manifest

	// State is the lifecycle state.
	State State

	// Err records why a failed plugin failed.
	Err error

	l      *lua.LState
	closed bool
}

// owner is the event-bus owner token for subscriptions made by this plugin.
func (p *Plugin) owner() event.Owner {
	return event.Owner("plugin:" + p.Name)
}

// Manifest describes a directory-form plugin.
type Manifest struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Description string `yaml:"description"`

	// Entry is the Lua file to load, relative to the plugin directory.
	// Defaults to init.lua.
	Entry string `yaml:"entry"`
}

// ManifestFileName is the optional per-plugin metadata file.
const ManifestFileName = "plugin.yaml"

func parseManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if m.Entry == "" {
		m.Entry = "init.lua"
	}
	return &m, nil
}
