// Package settings provides the persisted configuration store: a
// category/key/value document on disk, per-entry draw callbacks for the
// settings UI, and the bounded recent-files list layered on top.
package settings

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/workdeck/workdeck/internal/logging"
	"github.com/workdeck/workdeck/internal/view"
)

// DrawFunc draws a setting's widget into the settings UI and returns the
// possibly-updated value plus whether it changed. The store never invokes
// draw callbacks itself; the settings view does, and uses the changed flag
// to decide whether to persist and publish a settings-changed event.
type DrawFunc func(f view.Frame, value any) (next any, changed bool)

// Entry is a single registered setting.
type Entry struct {
	Category string
	Key      string
	Default  any
	Draw     DrawFunc

	value any
	set   bool
}

// Value returns the current value, falling back to the default.
func (e *Entry) Value() any {
	if e.set {
		return e.value
	}
	return e.Default
}

type category struct {
	name    string
	entries map[string]*Entry
	order   []string
}

// Store holds the in-memory settings document and its file path. All access
// happens on the frame goroutine; the watcher hands reloads back to it
// through the event bus deferred queue.
type Store struct {
	path       string
	logger     *logging.Logger
	categories map[string]*category
	order      []string
}

// NewStore creates a store persisting to the given path. The file is not
// read until Load.
func NewStore(path string, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.Nop
	}
	return &Store{
		path:       path,
		logger:     logger,
		categories: make(map[string]*category),
	}
}

// Path returns the document path.
func (s *Store) Path() string { return s.path }

func (s *Store) category(name string) *category {
	c, ok := s.categories[name]
	if !ok {
		c = &category{name: name, entries: make(map[string]*Entry)}
		s.categories[name] = c
		s.order = append(s.order, name)
	}
	return c
}

func (s *Store) entry(categoryName, key string) *Entry {
	c := s.category(categoryName)
	e, ok := c.entries[key]
	if !ok {
		e = &Entry{Category: categoryName, Key: key}
		c.entries[key] = e
		c.order = append(c.order, key)
	}
	return e
}

// Register adds a setting with its default value and draw callback.
// Re-registering an existing key overwrites the callback and default but
// keeps any stored value, so component construction is idempotent.
func (s *Store) Register(categoryName, key string, def any, draw DrawFunc) {
	e := s.entry(categoryName, key)
	e.Default = def
	e.Draw = draw
}

// Read returns the current value for the key, the registered default if no
// value has been loaded or written, or nil for an unknown key.
func (s *Store) Read(categoryName, key string) any {
	c, ok := s.categories[categoryName]
	if !ok {
		return nil
	}
	e, ok := c.entries[key]
	if !ok {
		return nil
	}
	return e.Value()
}

// Write updates the in-memory value. It does not persist; call Save for
// that. Writing an unregistered key creates an implicit entry with no
// default and no draw callback.
func (s *Store) Write(categoryName, key string, value any) {
	e := s.entry(categoryName, key)
	e.value = value
	e.set = true
}

// ReadInt reads a value as int, tolerating the integer and float types the
// TOML decoder produces. Malformed values fall back to the registered
// default, then to zero.
func (s *Store) ReadInt(categoryName, key string) int {
	if n, ok := asInt(s.Read(categoryName, key)); ok {
		return n
	}
	if c, ok := s.categories[categoryName]; ok {
		if e, ok := c.entries[key]; ok {
			if n, ok := asInt(e.Default); ok {
				return n
			}
		}
	}
	return 0
}

// ReadBool reads a value as bool, accepting the 0/1 integers the legacy
// document format used for flags.
func (s *Store) ReadBool(categoryName, key string) bool {
	switch v := s.Read(categoryName, key).(type) {
	case bool:
		return v
	default:
		n, ok := asInt(v)
		return ok && n != 0
	}
}

// ReadString reads a value as string, falling back to the default for
// non-string values.
func (s *Store) ReadString(categoryName, key string) string {
	if v, ok := s.Read(categoryName, key).(string); ok {
		return v
	}
	return ""
}

// ReadFloat reads a value as float64.
func (s *Store) ReadFloat(categoryName, key string) float64 {
	switch v := s.Read(categoryName, key).(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	default:
		if n, ok := asInt(v); ok {
			return float64(n)
		}
	}
	return 0
}

// ReadStringSlice reads a value as a string slice, tolerating the []any the
// TOML decoder produces. Non-string elements are skipped.
func (s *Store) ReadStringSlice(categoryName, key string) []string {
	switch v := s.Read(categoryName, key).(type) {
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	}
	return nil
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

// Load reads the persisted document into memory. A missing file is not an
// error; a malformed document is logged and the registered defaults stand.
// Values for keys that are not yet registered are kept as implicit entries
// so that components constructed later (plugins, views) still find them.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading settings %s: %w", s.path, err)
	}

	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		s.logger.Warn("malformed settings document %s, using defaults: %v", s.path, err)
		return nil
	}

	for categoryName, raw := range doc {
		table, ok := raw.(map[string]any)
		if !ok {
			s.logger.Warn("settings category %q is not a table, skipping", categoryName)
			continue
		}
		for key, value := range table {
			e := s.entry(categoryName, key)
			e.value = value
			e.set = true
		}
	}
	return nil
}

// Save serializes the full in-memory document and rewrites the file. Only
// entries that hold a value (loaded or written) are persisted; registered
// defaults that were never touched stay out of the document, which keeps a
// Save directly after Load semantically identical to the loaded document.
func (s *Store) Save() error {
	doc := make(map[string]map[string]any)
	for _, categoryName := range s.order {
		c := s.categories[categoryName]
		for _, key := range c.order {
			e := c.entries[key]
			if !e.set {
				continue
			}
			table, ok := doc[categoryName]
			if !ok {
				table = make(map[string]any)
				doc[categoryName] = table
			}
			table[key] = e.value
		}
	}

	data, err := toml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating settings directory: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing settings %s: %w", s.path, err)
	}
	return nil
}

// DrawEntry invokes the entry's draw callback with the current value and
// stores the result if it changed. Returns whether it changed. Entries
// without a callback report no change.
func (s *Store) DrawEntry(f view.Frame, categoryName, key string) bool {
	c, ok := s.categories[categoryName]
	if !ok {
		return false
	}
	e, ok := c.entries[key]
	if !ok || e.Draw == nil {
		return false
	}
	next, changed := e.Draw(f, e.Value())
	if changed {
		e.value = next
		e.set = true
	}
	return changed
}

// Categories returns the category names in registration order.
func (s *Store) Categories() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Entries returns the drawable entries of a category in registration order.
func (s *Store) Entries(categoryName string) []*Entry {
	c, ok := s.categories[categoryName]
	if !ok {
		return nil
	}
	out := make([]*Entry, 0, len(c.order))
	for _, key := range c.order {
		if e := c.entries[key]; e.Draw != nil {
			out = append(out, e)
		}
	}
	return out
}
