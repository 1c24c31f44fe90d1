package plugin

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/workdeck/workdeck/internal/event"
	"github.com/workdeck/workdeck/internal/view"
)

// eventTypeByName maps the names exposed to Lua onto bus event types.
var eventTypeByName = map[string]event.Type{
	event.TypeSettingsChanged.String(): event.TypeSettingsChanged,
	event.TypeFileLoaded.String():      event.TypeFileLoaded,
	event.TypeFileDropped.String():     event.TypeFileDropped,
	event.TypeWindowClosing.String():   event.TypeWindowClosing,
	event.TypeOpenView.String():        event.TypeOpenView,
}

// installAPI publishes the workdeck table into the plugin's Lua state. The
// table is available to the module's top level as well as its entrypoint.
func (m *Manager) installAPI(p *Plugin) {
	L := p.l
	tbl := L.NewTable()

	L.SetField(tbl, "register_view", L.NewFunction(m.luaRegisterView(p)))
	L.SetField(tbl, "register_setting", L.NewFunction(m.luaRegisterSetting(p)))
	L.SetField(tbl, "get_setting", L.NewFunction(m.luaGetSetting(p)))
	L.SetField(tbl, "on_event", L.NewFunction(m.luaOnEvent(p)))
	L.SetField(tbl, "publish", L.NewFunction(m.luaPublish(p)))
	L.SetField(tbl, "log", L.NewFunction(m.luaLog(p)))

	L.SetGlobal("workdeck", tbl)
}

// luaRegisterView implements workdeck.register_view(name, opts). Supported
// opts: open, menu (booleans), min_width, min_height (numbers), draw
// (function returning a table of line strings), available (predicate
// function), shortcut (one-character string, matched as a Ctrl chord), and
// on_shortcut (function invoked when the shortcut matches).
func (m *Manager) luaRegisterView(p *Plugin) lua.LGFunction {
	return func(L *lua.LState) int {
		name := L.CheckString(1)
		opts := L.OptTable(2, L.NewTable())

		v := &luaView{
			Base:   view.NewBase(name),
			plugin: p,
		}
		v.IsOpen = lua.LVAsBool(opts.RawGetString("open"))
		if menu := opts.RawGetString("menu"); menu != lua.LNil {
			v.noMenu = !lua.LVAsBool(menu)
		}
		if w := opts.RawGetString("min_width"); w != lua.LNil {
			v.minSize.Width = int(lua.LVAsNumber(w))
		}
		if h := opts.RawGetString("min_height"); h != lua.LNil {
			v.minSize.Height = int(lua.LVAsNumber(h))
		}
		if fn := opts.RawGetString("draw"); fn.Type() == lua.LTFunction {
			v.drawFn = fn
		}
		if fn := opts.RawGetString("available"); fn.Type() == lua.LTFunction {
			v.availableFn = fn
		}
		if s := opts.RawGetString("shortcut"); s.Type() == lua.LTString {
			runes := []rune(s.String())
			if len(runes) > 0 {
				v.shortcutKey = runes[0]
			}
		}
		if fn := opts.RawGetString("on_shortcut"); fn.Type() == lua.LTFunction {
			v.shortcutFn = fn
		}

		if err := m.views.Register(v); err != nil {
			L.RaiseError("register_view %s: %s", name, err.Error())
		}
		return 0
	}
}

// luaRegisterSetting implements workdeck.register_setting(category, key,
// default). The setting has no draw callback; it is a plain persisted value.
func (m *Manager) luaRegisterSetting(p *Plugin) lua.LGFunction {
	return func(L *lua.LState) int {
		category := L.CheckString(1)
		key := L.CheckString(2)
		def := luaToGo(L.Get(3))
		m.settings.Register(category, key, def, nil)
		return 0
	}
}

// luaGetSetting implements workdeck.get_setting(category, key).
func (m *Manager) luaGetSetting(p *Plugin) lua.LGFunction {
	return func(L *lua.LState) int {
		category := L.CheckString(1)
		key := L.CheckString(2)
		L.Push(goToLua(L, m.settings.Read(category, key)))
		return 1
	}
}

// luaOnEvent implements workdeck.on_event(name, handler). Subscriptions are
// owned by the plugin and removed when it unloads.
func (m *Manager) luaOnEvent(p *Plugin) lua.LGFunction {
	return func(L *lua.LState) int {
		name := L.CheckString(1)
		fn := L.CheckFunction(2)

		t, ok := eventTypeByName[name]
		if !ok {
			L.RaiseError("unknown event %q", name)
			return 0
		}

		m.bus.Subscribe(t, p.owner(), func(payload any) any {
			if p.closed {
				return nil
			}
			err := L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, goToLua(L, payload))
			if err != nil {
				m.logger.Warn("plugin %s event handler: %v", p.Name, err)
			}
			return nil
		})
		return 0
	}
}

// luaPublish implements workdeck.publish(name, payload).
func (m *Manager) luaPublish(p *Plugin) lua.LGFunction {
	return func(L *lua.LState) int {
		name := L.CheckString(1)
		t, ok := eventTypeByName[name]
		if !ok {
			L.RaiseError("unknown event %q", name)
			return 0
		}
		m.bus.Publish(t, luaToGo(L.Get(2)))
		return 0
	}
}

// luaLog implements workdeck.log(msg).
func (m *Manager) luaLog(p *Plugin) lua.LGFunction {
	return func(L *lua.LState) int {
		m.logger.Info("[%s] %s", p.Name, L.CheckString(1))
		return 0
	}
}

func luaToGo(v lua.LValue) any {
	switch val := v.(type) {
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		return float64(val)
	case lua.LString:
		return string(val)
	default:
		return nil
	}
}

func goToLua(L *lua.LState, v any) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(val)
	case int:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case float64:
		return lua.LNumber(val)
	case string:
		return lua.LString(val)
	default:
		return lua.LNil
	}
}

// luaView proxies the view contract into a plugin's Lua state. The registry
// owns it; the ordering invariant (registry cleared before UnloadAll) is
// what guarantees the state is still open whenever a hook runs, and the
// closed check is the backstop for misuse.
type luaView struct {
	view.Base
	plugin *Plugin

	noMenu      bool
	minSize     view.Size
	drawFn      lua.LValue
	availableFn lua.LValue
	shortcutKey rune
	shortcutFn  lua.LValue
}

func (v *luaView) HasMenuEntry() bool { return !v.noMenu }

func (v *luaView) MinSize() view.Size {
	if v.minSize.Width > 0 || v.minSize.Height > 0 {
		return v.minSize
	}
	return v.Base.MinSize()
}

func (v *luaView) Available() bool {
	if v.availableFn == nil {
		return true
	}
	if v.plugin.closed {
		return false
	}
	L := v.plugin.l
	if err := L.CallByParam(lua.P{Fn: v.availableFn, NRet: 1, Protect: true}); err != nil {
		return false
	}
	ret := L.Get(-1)
	L.Pop(1)
	return lua.LVAsBool(ret)
}

func (v *luaView) DrawContent(f view.Frame) {
	if v.drawFn == nil || v.plugin.closed {
		return
	}
	L := v.plugin.l
	if err := L.CallByParam(lua.P{Fn: v.drawFn, NRet: 1, Protect: true}); err != nil {
		return
	}
	ret := L.Get(-1)
	L.Pop(1)

	lines, ok := ret.(*lua.LTable)
	if !ok {
		return
	}
	for i := 1; i <= lines.Len(); i++ {
		line := lines.RawGetInt(i)
		if line.Type() == lua.LTString {
			f.Print(0, i-1, line.String())
		}
	}
}

func (v *luaView) HandleShortcut(s view.Shortcut) bool {
	if v.shortcutKey == 0 || v.plugin.closed {
		return false
	}
	if s.Key != v.shortcutKey || !s.Mods.Has(view.ModCtrl) {
		return false
	}
	if v.shortcutFn != nil {
		L := v.plugin.l
		_ = L.CallByParam(lua.P{Fn: v.shortcutFn, NRet: 0, Protect: true},
			lua.LString(string(s.Key)))
	}
	return true
}
