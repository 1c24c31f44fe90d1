package shell

import (
	"fmt"

	"github.com/workdeck/workdeck/internal/event"
	"github.com/workdeck/workdeck/internal/view"
)

// drawWelcome renders the fallback surface shown when no view qualifies for
// drawing: a title, the recent files, and the key hints.
func (s *Shell) drawWelcome(root *region) {
	y := 2
	root.Print(2, y, "Workdeck")
	y += 2

	if s.recent.Len() > 0 {
		root.Print(2, y, "Recent:")
		y++
		for i, path := range s.recent.List() {
			root.Print(4, y, fmt.Sprintf("%d. %s", i+1, path))
			y++
		}
		y++
	}

	root.Print(2, y, "Press a number to reopen a recent file")
	y++
	root.Print(2, y, "Press s for settings, Ctrl+Q to quit")
}

// handleWelcomeShortcut reacts to keys that only mean something on the
// welcome surface. Recent entries are re-dropped so they run through the
// same load pipeline as a fresh file.
func (s *Shell) handleWelcomeShortcut(sc view.Shortcut) {
	if sc.Mods != 0 {
		return
	}
	switch {
	case sc.Key >= '1' && sc.Key <= '9':
		idx := int(sc.Key - '1')
		if idx < s.recent.Len() {
			s.bus.Publish(event.TypeFileDropped, s.recent.List()[idx])
		}
	case sc.Key == 's':
		s.bus.Publish(event.TypeOpenView, "Settings")
	}
}
