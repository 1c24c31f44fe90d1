// Package backend abstracts the native window and input surface the shell
// draws to. The terminal implementation wraps tcell; the null implementation
// backs tests with a scripted event queue and an in-memory cell grid.
package backend

// EventType identifies the type of a native event.
type EventType int

const (
	// EventNone is returned once the backend has been finalized.
	EventNone EventType = iota
	// EventKey is a key press with modifiers.
	EventKey
	// EventResize reports a new surface size.
	EventResize
	// EventDrop reports files dropped onto the window.
	EventDrop
	// EventClose is a window-close request.
	EventClose
	// EventInterrupt is a wakeup with no input attached.
	EventInterrupt
)

// Key represents a keyboard key.
type Key int

// Key constants for special keys. Printable input uses KeyRune with the Rune
// field set.
const (
	KeyNone Key = iota
	KeyRune
	KeyEscape
	KeyEnter
	KeyTab
	KeyBackspace
	KeyDelete
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyF1
	KeyF2
	KeyF3
	KeyF4
)

// ModMask is a bitmask of modifier keys.
type ModMask uint8

// Modifier flags.
const (
	ModCtrl ModMask = 1 << iota
	ModAlt
	ModShift
)

// Has reports whether all modifiers in mod are set.
func (m ModMask) Has(mod ModMask) bool { return m&mod == mod }

// Event is a native input or window event.
type Event struct {
	Type EventType

	// Key event fields.
	Key  Key
	Rune rune
	Mod  ModMask

	// Resize event fields.
	Width, Height int

	// Drop event fields. More than one path is delivered as-is; the shell
	// decides what to forward.
	Paths []string
}

// Color is a backend color.
type Color int

// Colors used by the shell chrome and themes.
const (
	ColorDefault Color = iota
	ColorBlack
	ColorWhite
	ColorGray
	ColorBlue
	ColorYellow
)

// Style is a foreground/background pair applied to drawn cells.
type Style struct {
	Foreground Color
	Background Color
	Reverse    bool
}

// Backend is the native window/graphics collaborator. All methods are called
// from the frame goroutine except PollEvent, which runs on a dedicated input
// goroutine.
type Backend interface {
	// Init acquires the native surface. Failure here is fatal to startup.
	Init() error

	// Fini releases the surface. PollEvent returns EventNone afterwards.
	Fini()

	// Size returns the surface size in cells.
	Size() (width, height int)

	// PollEvent blocks until the next native event.
	PollEvent() Event

	// Interrupt wakes a blocked PollEvent with an EventInterrupt.
	Interrupt()

	// SetCell draws a single rune with the given style.
	SetCell(x, y int, r rune, style Style)

	// Fill fills a rectangle with the rune and style.
	Fill(x, y, w, h int, r rune, style Style)

	// Clear erases the surface with the default style.
	Clear()

	// SetDefaultStyle sets the style used by Clear, for theming.
	SetDefaultStyle(style Style)

	// Show presents the composed frame to the native surface.
	Show()
}
