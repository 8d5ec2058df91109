package ostsyscall

import (
	"github.com/openstoryteller/chip32/pkg/chip32vm"
	"github.com/openstoryteller/chip32/pkg/qor"
)

// foreverMs bounds the qor.Mailbox.Wait call RunUntilHalt issues while
// the VM is paused on WaitEvent. It is long enough to be, in practice,
// "wait until notified"; the scheduler's sleep-deadline bookkeeping
// still needs a concrete number rather than true infinity.
const foreverMs = 24 * 60 * 60 * 1000

// RunUntilHalt drives vm to completion on behalf of th, resuming it
// across WaitEvent pauses by blocking on events — the qor thread stands
// in for the firmware resuming a paused machine by writing a result
// into R0 and stepping again. The notified message, if a uint32, is
// deposited into R0 before the VM resumes; any other payload resumes
// with R0 left unchanged.
func RunUntilHalt(vm *chip32vm.VM, th *qor.Thread, events *qor.Mailbox) chip32vm.Result {
	for {
		r := vm.Run()
		if r != chip32vm.WaitEvent {
			return r
		}
		msg, result := events.Wait(th, foreverMs)
		if result == qor.WaitOk {
			if v, ok := msg.(uint32); ok {
				vm.SetReg(chip32vm.R0, v)
			}
		}
	}
}
