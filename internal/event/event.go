// Package event provides the typed publish/subscribe bus that connects the
// shell, views, settings, and plugins. Dispatch is synchronous and runs on
// the frame goroutine; the bus also owns the per-frame deferred-call queue.
package event

// Type identifies an event on the bus.
type Type int

// Event types published by the shell and its components.
const (
	// TypeNone is the zero value and never dispatched.
	TypeNone Type = iota

	// TypeSettingsChanged fires after the settings document has been loaded
	// or an entry has been changed through its draw callback.
	TypeSettingsChanged

	// TypeFileLoaded fires after a file has been opened by a view. The
	// payload is the file path. The shell uses it to update the recent list.
	TypeFileLoaded

	// TypeFileDropped fires when exactly one file is dropped onto the
	// window. The payload is the file path.
	TypeFileDropped

	// TypeWindowClosing fires when the native window requests close.
	TypeWindowClosing

	// TypeShortcutPressed fires for every key press. The payload is a
	// view.Shortcut.
	TypeShortcutPressed

	// TypeOpenView requests that a named view be opened. The payload is the
	// view name.
	TypeOpenView
)

// String returns a human-readable event name.
func (t Type) String() string {
	switch t {
	case TypeSettingsChanged:
		return "settings.changed"
	case TypeFileLoaded:
		return "file.loaded"
	case TypeFileDropped:
		return "file.dropped"
	case TypeWindowClosing:
		return "window.closing"
	case TypeShortcutPressed:
		return "shortcut.pressed"
	case TypeOpenView:
		return "view.open"
	default:
		return "none"
	}
}

// Owner identifies the component that registered a subscription. All of an
// owner's subscriptions for an event can be removed atomically, which is how
// components tear themselves down without tracking individual handlers.
type Owner string

// Handler processes a published event. The return value is visible only to
// the immediate caller of Publish; broadcast publishers discard it.
type Handler func(payload any) any
