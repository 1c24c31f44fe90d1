package shell

import (
	"fmt"
	"strings"

	"github.com/workdeck/workdeck/internal/view"
)

// drawMenuBar renders the chrome row: static menus, the numbered view
// toggles, any per-view menu extensions, and the FPS readout when enabled.
func (s *Shell) drawMenuBar(root *region) {
	var sb strings.Builder
	sb.WriteString("File  Edit  View  Help")

	i := 0
	s.views.ForEach(func(v view.View) bool {
		if !v.HasMenuEntry() {
			return true
		}
		marker := ""
		if v.Open() {
			marker = "*"
		}
		fmt.Fprintf(&sb, "  %d:%s%s", i+1, v.Name(), marker)
		i++
		return true
	})

	bar := sb.String()
	root.Print(0, 0, bar)

	// Views may append their own text after the fixed entries.
	ext := root.sub(len(bar)+2, 0, root.w-len(bar)-2, 1)
	s.views.ForEach(func(v view.View) bool {
		if v.Open() && v.Available() {
			v.DrawMenu(ext)
		}
		return true
	})

	if s.fpsVisible {
		readout := fmt.Sprintf("%.1f FPS", s.fps)
		root.Print(root.w-len(readout), 0, readout)
	}
}
