package backend

import (
	"sync"

	"github.com/gdamore/tcell/v2"
)

// Terminal implements Backend on a tcell screen.
type Terminal struct {
	mu     sync.Mutex
	screen tcell.Screen
	def    tcell.Style
}

// NewTerminal creates a terminal backend. The screen is not touched until
// Init.
func NewTerminal() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return &Terminal{screen: screen, def: tcell.StyleDefault}, nil
}

func (t *Terminal) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.screen.Init(); err != nil {
		return err
	}
	t.screen.EnablePaste()
	return nil
}

func (t *Terminal) Fini() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.screen.Fini()
}

func (t *Terminal) Size() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.screen.Size()
}

func (t *Terminal) PollEvent() Event {
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return Event{Type: EventNone}
		}
		switch tev := ev.(type) {
		case *tcell.EventKey:
			return t.convertKey(tev)
		case *tcell.EventResize:
			w, h := tev.Size()
			return Event{Type: EventResize, Width: w, Height: h}
		case *tcell.EventInterrupt:
			return Event{Type: EventInterrupt}
		default:
			// Paste and mouse events are not part of the shell's input
			// surface.
			continue
		}
	}
}

func (t *Terminal) convertKey(ev *tcell.EventKey) Event {
	var mods ModMask
	if ev.Modifiers()&tcell.ModCtrl != 0 {
		mods |= ModCtrl
	}
	if ev.Modifiers()&tcell.ModAlt != 0 {
		mods |= ModAlt
	}
	if ev.Modifiers()&tcell.ModShift != 0 {
		mods |= ModShift
	}

	k := ev.Key()

	// A terminal has no close button; Ctrl+C stands in for the native
	// window-close request.
	if k == tcell.KeyCtrlC {
		return Event{Type: EventClose}
	}

	// tcell reports control-letter chords as dedicated keys. Flatten them
	// back to rune+ModCtrl so shortcut matching sees one shape.
	if k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ {
		return Event{
			Type: EventKey,
			Key:  KeyRune,
			Rune: rune('a' + (k - tcell.KeyCtrlA)),
			Mod:  mods | ModCtrl,
		}
	}

	out := Event{Type: EventKey, Mod: mods}
	switch k {
	case tcell.KeyRune:
		out.Key = KeyRune
		out.Rune = ev.Rune()
	case tcell.KeyEscape:
		out.Key = KeyEscape
	case tcell.KeyEnter:
		out.Key = KeyEnter
	case tcell.KeyTab:
		out.Key = KeyTab
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		out.Key = KeyBackspace
	case tcell.KeyDelete:
		out.Key = KeyDelete
	case tcell.KeyUp:
		out.Key = KeyUp
	case tcell.KeyDown:
		out.Key = KeyDown
	case tcell.KeyLeft:
		out.Key = KeyLeft
	case tcell.KeyRight:
		out.Key = KeyRight
	case tcell.KeyHome:
		out.Key = KeyHome
	case tcell.KeyEnd:
		out.Key = KeyEnd
	case tcell.KeyPgUp:
		out.Key = KeyPageUp
	case tcell.KeyPgDn:
		out.Key = KeyPageDown
	case tcell.KeyF1:
		out.Key = KeyF1
	case tcell.KeyF2:
		out.Key = KeyF2
	case tcell.KeyF3:
		out.Key = KeyF3
	case tcell.KeyF4:
		out.Key = KeyF4
	default:
		out.Key = KeyNone
	}
	return out
}

func (t *Terminal) Interrupt() {
	t.mu.Lock()
	defer t.mu.Unlock()
	_ = t.screen.PostEvent(tcell.NewEventInterrupt(nil))
}

func (t *Terminal) SetCell(x, y int, r rune, style Style) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.screen.SetContent(x, y, r, nil, t.convertStyle(style))
}

func (t *Terminal) Fill(x, y, w, h int, r rune, style Style) {
	t.mu.Lock()
	defer t.mu.Unlock()

	st := t.convertStyle(style)
	sw, sh := t.screen.Size()
	for row := y; row < y+h && row < sh; row++ {
		for col := x; col < x+w && col < sw; col++ {
			if col >= 0 && row >= 0 {
				t.screen.SetContent(col, row, r, nil, st)
			}
		}
	}
}

func (t *Terminal) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.screen.SetStyle(t.def)
	t.screen.Clear()
}

func (t *Terminal) SetDefaultStyle(style Style) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.def = t.convertStyle(style)
}

func (t *Terminal) Show() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.screen.Show()
}

func (t *Terminal) convertStyle(style Style) tcell.Style {
	st := tcell.StyleDefault.
		Foreground(convertColor(style.Foreground)).
		Background(convertColor(style.Background))
	if style.Reverse {
		st = st.Reverse(true)
	}
	return st
}

func convertColor(c Color) tcell.Color {
	switch c {
	case ColorBlack:
		return tcell.ColorBlack
	case ColorWhite:
		return tcell.ColorWhite
	case ColorGray:
		return tcell.ColorGray
	case ColorBlue:
		return tcell.ColorNavy
	case ColorYellow:
		return tcell.ColorYellow
	default:
		return tcell.ColorDefault
	}
}
