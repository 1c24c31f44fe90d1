package shell

import (
	"github.com/workdeck/workdeck/internal/event"
	"github.com/workdeck/workdeck/internal/settings"
	"github.com/workdeck/workdeck/internal/view"
)

// settingsView renders every registered settings entry through its draw
// callback, one row per entry, grouped by category.
type settingsView struct {
	view.Base
	store *settings.Store
	bus   *event.Bus
}

func newSettingsView(store *settings.Store, bus *event.Bus) *settingsView {
	return &settingsView{
		Base:  view.NewBase("Settings"),
		store: store,
		bus:   bus,
	}
}

func (v *settingsView) MinSize() view.Size {
	return view.Size{Width: 40, Height: 10}
}

func (v *settingsView) DrawContent(f view.Frame) {
	y := 0
	for _, category := range v.store.Categories() {
		entries := v.store.Entries(category)
		if len(entries) == 0 {
			continue
		}
		f.Print(0, y, "["+category+"]")
		y++
		for _, e := range entries {
			row := &rowFrame{Frame: f, dy: y}
			if v.store.DrawEntry(row, category, e.Key) {
				// The widget changed the value; persist and notify.
				if err := v.store.Save(); err == nil {
					v.bus.Publish(event.TypeSettingsChanged, nil)
				}
			}
			y++
		}
		y++
	}
}

// HandleShortcut cycles the color theme on Ctrl+T.
func (v *settingsView) HandleShortcut(sc view.Shortcut) bool {
	if sc.Key != 't' || !sc.Mods.Has(view.ModCtrl) {
		return false
	}
	theme := (v.store.ReadInt(categoryInterface, keyTheme) + 1) % 3
	v.store.Write(categoryInterface, keyTheme, theme)
	if err := v.store.Save(); err == nil {
		v.bus.Publish(event.TypeSettingsChanged, nil)
	}
	return true
}

// rowFrame offsets a frame vertically so each entry draws on its own row.
type rowFrame struct {
	view.Frame
	dy int
}

func (r *rowFrame) Size() (int, int) {
	w, h := r.Frame.Size()
	return w, h - r.dy
}

func (r *rowFrame) Print(x, y int, text string) {
	r.Frame.Print(x, y+r.dy, text)
}
