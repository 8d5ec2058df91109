// Package luahost runs a Lua script as a qor scheduler thread, exposing
// sleep and mailbox operations to the script as plain function calls.
// It lets a story's host-side behavior (the logic that decides what a
// syscall from the running Chip32 image should do) be authored as data
// alongside a story package rather than compiled into the binary.
// Grounded on pkg/meta.LuaEvaluator's gopher-lua embedding pattern
// (NewLuaEvaluator/setupMinzAPI/EvaluateExpression), replacing its
// compile-time code-generation API with a runtime scheduling API.
package luahost

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/openstoryteller/chip32/pkg/qor"
)

// Host embeds a Lua state bound to one scheduler thread. Construct one
// per thread: Lua states are not safe to share across goroutines.
type Host struct {
	L          *lua.LState
	sched      *qor.Scheduler
	mboxes     map[string]*qor.Mailbox
	thread     *qor.Thread
	scriptName string
}

// New constructs a Host bound to sched and the named mailboxes a script
// may refer to by name in mbox_wait/mbox_notify calls.
func New(sched *qor.Scheduler, mailboxes map[string]*qor.Mailbox) *Host {
	return &Host{
		L:      lua.NewState(),
		sched:  sched,
		mboxes: mailboxes,
	}
}

// Close releases the Lua state. Call once the owning thread has no
// further use for the script (typically never, for a long-running
// story task — included for tests and short-lived scripts).
func (h *Host) Close() { h.L.Close() }

// Entry returns a qor thread entry function that installs this Host's
// API and runs source. Pass the result to Scheduler.CreateThread.
func (h *Host) Entry(scriptName, source string) func(*qor.Thread) {
	h.scriptName = scriptName
	return func(th *qor.Thread) {
		h.thread = th
		h.setupAPI()
		if err := h.L.DoString(source); err != nil {
			panic(fmt.Sprintf("luahost: script %q failed: %v", h.scriptName, err))
		}
	}
}
