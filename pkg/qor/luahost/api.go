package luahost

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/openstoryteller/chip32/pkg/qor"
)

// setupAPI installs the "ost" global table, the scripted counterpart of
// setupMinzAPI's "minz" module, exposing the thread's suspension points
// to the running script.
func (h *Host) setupAPI() {
	ost := h.L.NewTable()
	h.L.SetField(ost, "sleep", h.L.NewFunction(h.luaSleep))
	h.L.SetField(ost, "yield", h.L.NewFunction(h.luaYield))
	h.L.SetField(ost, "mbox_wait", h.L.NewFunction(h.luaMboxWait))
	h.L.SetField(ost, "mbox_notify", h.L.NewFunction(h.luaMboxNotify))
	h.L.SetGlobal("ost", ost)
}

func (h *Host) luaSleep(L *lua.LState) int {
	ms := L.CheckInt(1)
	h.thread.Sleep(ms)
	return 0
}

func (h *Host) luaYield(L *lua.LState) int {
	h.thread.Yield()
	return 0
}

// luaMboxWait(name, timeout_ms) -> msg, ok
func (h *Host) luaMboxWait(L *lua.LState) int {
	name := L.CheckString(1)
	timeoutMs := L.CheckInt(2)
	mbox, ok := h.mboxes[name]
	if !ok {
		L.RaiseError("luahost: unknown mailbox %q", name)
		return 0
	}
	msg, result := mbox.Wait(h.thread, timeoutMs)
	if result != qor.WaitOk {
		L.Push(lua.LNil)
		L.Push(lua.LBool(false))
		return 2
	}
	if lv, ok := msg.(lua.LValue); ok {
		L.Push(lv)
	} else {
		L.Push(lua.LNil)
	}
	L.Push(lua.LBool(true))
	return 2
}

// luaMboxNotify(name, msg, front) -> ok
func (h *Host) luaMboxNotify(L *lua.LState) int {
	name := L.CheckString(1)
	msg := L.CheckAny(2)
	front := false
	if L.GetTop() >= 3 {
		front = L.ToBool(3)
	}
	mbox, ok := h.mboxes[name]
	if !ok {
		L.RaiseError("luahost: unknown mailbox %q", name)
		return 0
	}
	result := mbox.Notify(msg, front)
	L.Push(lua.LBool(result == qor.NotifyOk))
	return 1
}
