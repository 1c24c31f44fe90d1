package settings

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/workdeck/workdeck/internal/logging"
	"github.com/workdeck/workdeck/internal/view"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "settings.toml"), logging.Nop)
}

func TestStore_ReadDefault(t *testing.T) {
	s := testStore(t)
	s.Register("interface", "theme", 0, nil)

	if got := s.ReadInt("interface", "theme"); got != 0 {
		t.Errorf("ReadInt = %d, want default 0", got)
	}
	if got := s.Read("interface", "missing"); got != nil {
		t.Errorf("Read of unknown key = %v, want nil", got)
	}
	if got := s.Read("nowhere", "theme"); got != nil {
		t.Errorf("Read of unknown category = %v, want nil", got)
	}
}

func TestStore_WriteRead(t *testing.T) {
	s := testStore(t)
	s.Register("interface", "theme", 0, nil)

	s.Write("interface", "theme", 2)
	if got := s.ReadInt("interface", "theme"); got != 2 {
		t.Errorf("ReadInt after Write = %d, want 2", got)
	}

	// Write to an unregistered key creates an implicit entry.
	s.Write("workdeck", "recent_files", []string{"a", "b"})
	if got := s.ReadStringSlice("workdeck", "recent_files"); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("ReadStringSlice = %v", got)
	}
}

func TestStore_ReRegisterKeepsValue(t *testing.T) {
	s := testStore(t)

	drawCalls := 0
	s.Register("interface", "theme", 0, nil)
	s.Write("interface", "theme", 1)

	// Re-registration overwrites the callback, not the stored value.
	s.Register("interface", "theme", 0, func(f view.Frame, v any) (any, bool) {
		drawCalls++
		return v, false
	})

	if got := s.ReadInt("interface", "theme"); got != 1 {
		t.Errorf("value after re-register = %d, want 1", got)
	}
	s.DrawEntry(nil, "interface", "theme")
	if drawCalls != 1 {
		t.Errorf("new draw callback called %d times, want 1", drawCalls)
	}
}

func TestStore_LoadMissingFile(t *testing.T) {
	s := testStore(t)
	s.Register("interface", "theme", 3, nil)

	if err := s.Load(); err != nil {
		t.Fatalf("Load of missing file failed: %v", err)
	}
	if got := s.ReadInt("interface", "theme"); got != 3 {
		t.Errorf("default lost after Load: got %d, want 3", got)
	}
}

func TestStore_LoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	if err := os.WriteFile(path, []byte("not [valid toml ==="), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewStore(path, logging.Nop)
	s.Register("interface", "theme", 3, nil)

	if err := s.Load(); err != nil {
		t.Fatalf("Load of malformed file returned error: %v", err)
	}
	if got := s.ReadInt("interface", "theme"); got != 3 {
		t.Errorf("defaults not used for malformed document: got %d", got)
	}
}

func TestStore_LoadAppliesValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	doc := "[interface]\ntheme = 2\nscale = 1.5\n\n[views]\n'Hex Editor' = 1\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewStore(path, logging.Nop)
	s.Register("interface", "theme", 0, nil)
	if err := s.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got := s.ReadInt("interface", "theme"); got != 2 {
		t.Errorf("theme = %d, want 2", got)
	}
	if got := s.ReadFloat("interface", "scale"); got != 1.5 {
		t.Errorf("scale = %v, want 1.5", got)
	}
	// Keys registered only later still see their loaded value.
	s.Register("interface", "scale", 1.0, nil)
	if got := s.ReadFloat("interface", "scale"); got != 1.5 {
		t.Errorf("scale after late registration = %v, want 1.5", got)
	}
	if got := s.ReadInt("views", "Hex Editor"); got != 1 {
		t.Errorf("view open-state = %d, want 1", got)
	}
}

func TestStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.toml")

	first := NewStore(path, logging.Nop)
	first.Register("interface", "theme", 0, nil)
	first.Write("interface", "theme", 2)
	first.Write("views", "Welcome", 1)
	first.Write("workdeck", "recent_files", []string{"/tmp/a", "/tmp/b"})
	if err := first.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Save immediately after Load must reproduce a semantically identical
	// document.
	second := NewStore(path, logging.Nop)
	second.Register("interface", "theme", 0, nil)
	if err := second.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := second.Save(); err != nil {
		t.Fatalf("Save after Load failed: %v", err)
	}

	third := NewStore(path, logging.Nop)
	if err := third.Load(); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if got := third.ReadInt("interface", "theme"); got != 2 {
		t.Errorf("theme after round trip = %d, want 2", got)
	}
	if got := third.ReadInt("views", "Welcome"); got != 1 {
		t.Errorf("view state after round trip = %d, want 1", got)
	}
	if got := third.ReadStringSlice("workdeck", "recent_files"); !reflect.DeepEqual(got, []string{"/tmp/a", "/tmp/b"}) {
		t.Errorf("recent files after round trip = %v", got)
	}
}

func TestStore_SaveSkipsUntouchedDefaults(t *testing.T) {
	s := testStore(t)
	s.Register("interface", "theme", 0, nil)
	s.Register("interface", "scale", 1.0, nil)
	s.Write("interface", "theme", 1)

	if err := s.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reload := NewStore(s.Path(), logging.Nop)
	if err := reload.Load(); err != nil {
		t.Fatal(err)
	}
	if got := reload.Read("interface", "scale"); got != nil {
		t.Errorf("untouched default was persisted: %v", got)
	}
	if got := reload.ReadInt("interface", "theme"); got != 1 {
		t.Errorf("touched value missing after Save: %d", got)
	}
}

func TestStore_DrawEntry(t *testing.T) {
	s := testStore(t)

	s.Register("interface", "theme", 0, func(f view.Frame, v any) (any, bool) {
		return 2, true
	})
	s.Register("interface", "scale", 1.0, func(f view.Frame, v any) (any, bool) {
		return v, false
	})

	if !s.DrawEntry(nil, "interface", "theme") {
		t.Error("DrawEntry did not report the change")
	}
	if got := s.ReadInt("interface", "theme"); got != 2 {
		t.Errorf("value after changed draw = %d, want 2", got)
	}

	if s.DrawEntry(nil, "interface", "scale") {
		t.Error("DrawEntry reported a change for an unchanged entry")
	}
	if s.DrawEntry(nil, "interface", "missing") {
		t.Error("DrawEntry reported a change for an unknown entry")
	}
}

func TestStore_EntriesOrder(t *testing.T) {
	s := testStore(t)
	draw := func(f view.Frame, v any) (any, bool) { return v, false }
	s.Register("interface", "theme", 0, draw)
	s.Register("interface", "scale", 1.0, draw)
	s.Write("interface", "hidden", 1) // no draw callback, not listed

	entries := s.Entries("interface")
	if len(entries) != 2 {
		t.Fatalf("Entries returned %d entries, want 2", len(entries))
	}
	if entries[0].Key != "theme" || entries[1].Key != "scale" {
		t.Errorf("entries out of registration order: %s, %s", entries[0].Key, entries[1].Key)
	}
}
