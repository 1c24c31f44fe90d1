// Package view defines the pluggable panel contract and the ordered registry
// that owns every registered panel until shutdown.
package view

// Size is a width/height hint in cells.
type Size struct {
	Width  int
	Height int
}

// ModMask is a bitmask of modifier keys held during a shortcut.
type ModMask uint8

// Modifier flags.
const (
	ModCtrl ModMask = 1 << iota
	ModAlt
	ModShift
)

// ModNone means no modifiers were held.
const ModNone ModMask = 0

// Has reports whether all modifiers in m are set.
func (m ModMask) Has(mod ModMask) bool { return m&mod == mod }

// Shortcut is a single key press with modifiers, offered to open views once
// per frame in registration order until one handles it.
type Shortcut struct {
	Key  rune
	Mods ModMask
}

// Frame is the drawing surface handed to a view for one frame. It is a
// region of the screen owned by the view; coordinates are view-local.
type Frame interface {
	// Size returns the region's width and height in cells.
	Size() (width, height int)

	// Print draws text starting at the view-local position, clipped to the
	// region.
	Print(x, y int, text string)

	// Fill fills the whole region with the given rune.
	Fill(r rune)
}

// View is a self-contained UI panel. The shell queries Open and Available
// every frame rather than caching them, since availability may depend on
// transient external state.
type View interface {
	// Name returns the unique display name. Registration rejects duplicates.
	Name() string

	// Open reports whether the user has the view open. Persisted across runs.
	Open() bool

	// SetOpen sets the open flag.
	SetOpen(open bool)

	// Available reports whether the view can be shown at all.
	Available() bool

	// MinSize returns the minimum content size hint, before UI scaling.
	MinSize() Size

	// MaxSize returns the maximum content size hint. Zero means unbounded.
	MaxSize() Size

	// HasMenuEntry reports whether the view gets a toggle entry in the
	// View menu.
	HasMenuEntry() bool

	// DrawContent draws the view's content for this frame.
	DrawContent(f Frame)

	// DrawMenu draws the view's own menu contribution, if any.
	DrawMenu(f Frame)

	// HandleShortcut processes a shortcut and reports whether it was
	// consumed. Views after the first consumer never see the shortcut.
	HandleShortcut(s Shortcut) bool
}

// Base is an embeddable default implementation of View. Concrete views embed
// it and override the hooks they care about.
type Base struct {
	ViewName string
	IsOpen   bool
}

// NewBase creates a Base with the given name, closed.
func NewBase(name string) Base {
	return Base{ViewName: name}
}

func (b *Base) Name() string          { return b.ViewName }
func (b *Base) Open() bool            { return b.IsOpen }
func (b *Base) SetOpen(open bool)     { b.IsOpen = open }
func (b *Base) Available() bool       { return true }
func (b *Base) MinSize() Size         { return Size{Width: 20, Height: 5} }
func (b *Base) MaxSize() Size         { return Size{} }
func (b *Base) HasMenuEntry() bool    { return true }
func (b *Base) DrawContent(Frame)     {}
func (b *Base) DrawMenu(Frame)        {}
func (b *Base) HandleShortcut(Shortcut) bool { return false }
