package shell

import (
	"time"

	"github.com/workdeck/workdeck/internal/event"
	"github.com/workdeck/workdeck/internal/shell/backend"
	"github.com/workdeck/workdeck/internal/view"
)

// region is a clipped rectangular window onto the backend surface. Views
// draw through it; coordinates are region-local.
type region struct {
	b     backend.Backend
	x, y  int
	w, h  int
	style backend.Style
}

func (r *region) Size() (int, int) { return r.w, r.h }

func (r *region) Print(x, y int, text string) {
	if y < 0 || y >= r.h {
		return
	}
	col := 0
	for _, ch := range text {
		if x+col >= r.w {
			return
		}
		if x+col >= 0 {
			r.b.SetCell(r.x+x+col, r.y+y, ch, r.style)
		}
		col++
	}
}

func (r *region) Fill(ch rune) {
	r.b.Fill(r.x, r.y, r.w, r.h, ch, r.style)
}

// sub carves a smaller region out of r. The result is clipped to r.
func (r *region) sub(x, y, w, h int) *region {
	if x+w > r.w {
		w = r.w - x
	}
	if y+h > r.h {
		h = r.h - y
	}
	return &region{b: r.b, x: r.x + x, y: r.y + y, w: w, h: h, style: r.style}
}

// frame runs one iteration of the per-frame sequence: pending native input,
// the deferred queue, the view draw pass, the menu bar, shortcut dispatch,
// the welcome surface when nothing else drew, then present.
func (s *Shell) frame(events <-chan backend.Event) {
	s.shortcut = nil

input:
	for {
		select {
		case ev := <-events:
			s.handleNativeEvent(ev)
		default:
			break input
		}
	}

	s.bus.DrainDeferred()

	s.backend.Clear()
	root := &region{b: s.backend, w: s.width, h: s.height}

	drawn := s.drawViews(root)
	s.welcomeVisible = drawn == 0

	s.drawMenuBar(root)
	s.dispatchShortcut()

	if s.welcomeVisible {
		s.drawWelcome(root)
	}

	s.backend.Show()
	s.tickFPS()
}

// handleNativeEvent translates one backend event into shell state or bus
// traffic.
func (s *Shell) handleNativeEvent(ev backend.Event) {
	switch ev.Type {
	case backend.EventKey:
		s.handleKey(ev)
	case backend.EventResize:
		s.width, s.height = ev.Width, ev.Height
	case backend.EventDrop:
		// Only single-file drops enter the load pipeline.
		if len(ev.Paths) == 1 {
			s.bus.Publish(event.TypeFileDropped, ev.Paths[0])
		} else {
			s.logger.Debug("ignoring %d-file drop", len(ev.Paths))
		}
	case backend.EventClose:
		s.bus.Publish(event.TypeWindowClosing, nil)
	}
}

func (s *Shell) handleKey(ev backend.Event) {
	if ev.Key != backend.KeyRune {
		return
	}

	// Alt+digit toggles the corresponding menu entry.
	if ev.Mod.Has(backend.ModAlt) && ev.Rune >= '1' && ev.Rune <= '9' {
		s.toggleMenuView(int(ev.Rune - '1'))
		return
	}

	// One slot per frame; a later press replaces an earlier one.
	s.shortcut = &view.Shortcut{Key: ev.Rune, Mods: convertMods(ev.Mod)}
	s.bus.Publish(event.TypeShortcutPressed, *s.shortcut)
}

func convertMods(m backend.ModMask) view.ModMask {
	var out view.ModMask
	if m.Has(backend.ModCtrl) {
		out |= view.ModCtrl
	}
	if m.Has(backend.ModAlt) {
		out |= view.ModAlt
	}
	if m.Has(backend.ModShift) {
		out |= view.ModShift
	}
	return out
}

// toggleMenuView flips the open flag of the n-th view that has a menu entry.
func (s *Shell) toggleMenuView(n int) {
	i := 0
	s.views.ForEach(func(v view.View) bool {
		if !v.HasMenuEntry() {
			return true
		}
		if i == n {
			v.SetOpen(!v.Open())
			return false
		}
		i++
		return true
	})
}

// drawViews stacks every open and available view below the menu bar and
// returns how many drew. Each view gets a title row plus its scaled minimum
// height, clamped to the remaining surface.
func (s *Shell) drawViews(root *region) int {
	drawn := 0
	y := 1
	s.views.ForEach(func(v view.View) bool {
		if !v.Open() || !v.Available() {
			return true
		}
		if y >= root.h {
			return false
		}

		h := int(float64(v.MinSize().Height) * s.scale)
		if h < 3 {
			h = 3
		}
		if y+1+h > root.h {
			h = root.h - y - 1
		}
		if h < 1 {
			return false
		}

		root.Print(0, y, "== "+v.Name()+" ==")
		v.DrawContent(root.sub(0, y+1, root.w, h))
		y += 1 + h
		drawn++
		return true
	})
	return drawn
}

// dispatchShortcut offers the frame's shortcut to open views in registration
// order; the first view to handle it wins. Unhandled shortcuts fall through
// to the shell chrome.
func (s *Shell) dispatchShortcut() {
	sc := s.shortcut
	if sc == nil {
		return
	}

	handled := false
	s.views.ForEach(func(v view.View) bool {
		if !v.Open() {
			return true
		}
		if v.HandleShortcut(*sc) {
			handled = true
			return false
		}
		return true
	})
	if handled {
		return
	}

	if sc.Mods.Has(view.ModCtrl) && sc.Key == 'q' {
		s.bus.Publish(event.TypeWindowClosing, nil)
		return
	}
	if s.welcomeVisible {
		s.handleWelcomeShortcut(*sc)
	}
}

func (s *Shell) tickFPS() {
	s.frames++
	if elapsed := time.Since(s.fpsWindow); elapsed >= time.Second {
		s.fps = float64(s.frames) / elapsed.Seconds()
		s.frames = 0
		s.fpsWindow = time.Now()
	}
}
