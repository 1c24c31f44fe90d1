package settings

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/workdeck/workdeck/internal/event"
	"github.com/workdeck/workdeck/internal/logging"
)

func TestWatcher_ReloadsOnExternalWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.toml")
	if err := os.WriteFile(path, []byte("[interface]\ntheme = 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	store := NewStore(path, logging.Nop)
	if err := store.Load(); err != nil {
		t.Fatal(err)
	}

	bus := event.NewBus()
	notified := false
	bus.Subscribe(event.TypeSettingsChanged, "test", func(any) any {
		notified = true
		return nil
	})

	w, err := NewWatcher(store, bus, logging.Nop)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Stop()
	w.Start()

	// External edit.
	if err := os.WriteFile(path, []byte("[interface]\ntheme = 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	// The watcher defers the reload to the frame goroutine; pump the
	// deferred queue until the event arrives.
	deadline := time.Now().Add(5 * time.Second)
	for !notified && time.Now().Before(deadline) {
		bus.DrainDeferred()
		time.Sleep(10 * time.Millisecond)
	}

	if !notified {
		t.Fatal("settings-changed event never arrived after external write")
	}
	if got := store.ReadInt("interface", "theme"); got != 2 {
		t.Errorf("theme after reload = %d, want 2", got)
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.toml")
	if err := os.WriteFile(path, []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}

	store := NewStore(path, logging.Nop)
	bus := event.NewBus()
	notified := false
	bus.Subscribe(event.TypeSettingsChanged, "test", func(any) any {
		notified = true
		return nil
	})

	w, err := NewWatcher(store, bus, logging.Nop)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Stop()
	w.Start()

	if err := os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	time.Sleep(200 * time.Millisecond)
	bus.DrainDeferred()
	if notified {
		t.Error("watcher reacted to an unrelated file")
	}
}
