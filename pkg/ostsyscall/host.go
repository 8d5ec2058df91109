package ostsyscall

import (
	"fmt"
	"log"

	"github.com/openstoryteller/chip32/pkg/chip32vm"
)

// ReferenceHost is a minimal chip32vm.Host that logs every syscall.
// WaitButton returns SyscallWaitEvent without blocking; RunUntilHalt
// pairs it with a qor mailbox a "button driver" thread notifies to
// resume the paused machine.
type ReferenceHost struct {
	Logger *log.Logger
}

// Syscall implements chip32vm.Host. Print reads a NUL-terminated string
// out of VM memory starting at the address in R0 and logs it.
// PlayAudio/ShowImage log their opaque argument and return immediately
// (the audio/display HALs themselves are out of scope). WaitButton asks
// the VM to pause; the caller resumes it by running the VM again once an
// event arrives (RunUntilHalt does this by waiting on a mailbox).
func (h *ReferenceHost) Syscall(vm *chip32vm.VM, code uint8) chip32vm.SyscallResult {
	switch Code(code) {
	case Print:
		s, err := readCString(vm, vm.Reg(chip32vm.R0), 256)
		if err != nil {
			h.logf("print: %v", err)
			return chip32vm.SyscallError
		}
		h.logf("print: %s", s)
		return chip32vm.SyscallOk

	case PlayAudio:
		h.logf("play_audio: track %d", vm.Reg(chip32vm.R0))
		return chip32vm.SyscallOk

	case ShowImage:
		h.logf("show_image: id %d", vm.Reg(chip32vm.R0))
		return chip32vm.SyscallOk

	case WaitButton:
		h.logf("wait_button")
		return chip32vm.SyscallWaitEvent

	default:
		h.logf("unknown syscall %d", code)
		return chip32vm.SyscallError
	}
}

func (h *ReferenceHost) logf(format string, args ...interface{}) {
	if h.Logger != nil {
		h.Logger.Printf(format, args...)
	}
}

func readCString(vm *chip32vm.VM, addr uint32, maxLen int) (string, error) {
	b := make([]byte, 0, 32)
	for i := 0; i < maxLen; i++ {
		v, err := vm.ReadMemory(addr+uint32(i), 1)
		if err != nil {
			return "", fmt.Errorf("reading string at %#x: %w", addr, err)
		}
		if v == 0 {
			return string(b), nil
		}
		b = append(b, byte(v))
	}
	return "", fmt.Errorf("string at %#x exceeds %d bytes without a terminator", addr, maxLen)
}
