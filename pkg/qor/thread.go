package qor

import "time"

// Thread is the handle a running entry function uses to suspend itself.
// It is the Go-native stand-in for the original firmware's implicit
// "calling from inside a task" context, with three suspension points:
// sleep, mbox_wait on empty, and an explicit yield.
type Thread struct {
	tcb   *TCB
	sched *Scheduler
}

// TCB exposes the thread's control block, e.g. for a debugger or test
// to inspect name/priority/state.
func (t *Thread) TCB() *TCB { return t.tcb }

// Sleep suspends the calling thread for at least ms milliseconds. The
// scheduler's reschedule pass, not this call, decides who else runs
// meanwhile.
func (t *Thread) Sleep(ms int) {
	s := t.sched
	s.mu.Lock()
	t.tcb.state = Sleeping
	t.tcb.wakeDeadline = time.Now().Add(time.Duration(ms) * time.Millisecond)
	s.reschedule()
	s.mu.Unlock()
	s.waitTurn(t.tcb)
}

// Yield is the explicit suspension point for a thread that never sleeps
// and holds no mailbox wait, giving the scheduler a chance to select a
// higher-priority thread that has become Active. It does not rotate among
// equal-priority threads: ties go to the thread found first in the
// thread list, so that thread is selected again.
func (t *Thread) Yield() {
	s := t.sched
	s.mu.Lock()
	s.reschedule()
	s.mu.Unlock()
	s.waitTurn(t.tcb)
}
