package chip32vm

import "testing"

func newTestVM(t *testing.T, host Host) *VM {
	t.Helper()
	vm := New(Config{RomSize: 256, RamSize: 256}, host)
	return vm
}

func TestStepHalt(t *testing.T) {
	vm := newTestVM(t, nil)
	if err := vm.Initialize([]byte{byte(OpHalt)}); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if r := vm.Run(); r != Halted {
		t.Fatalf("state = %v, want Halted", r)
	}
}

func TestLconsAndAddDeterministic(t *testing.T) {
	code := []byte{
		byte(OpLcons), byte(R0), 2, 0, 0, 0,
		byte(OpLcons), byte(R1), 3, 0, 0, 0,
		byte(OpAdd), byte(R0), byte(R1),
		byte(OpHalt),
	}
	run := func() uint32 {
		vm := newTestVM(t, nil)
		if err := vm.Initialize(code); err != nil {
			t.Fatalf("initialize: %v", err)
		}
		if r := vm.Run(); r != Halted {
			t.Fatalf("state = %v, want Halted", r)
		}
		return vm.Reg(R0)
	}
	a, b := run(), run()
	if a != 5 || b != 5 {
		t.Fatalf("R0 = %d, %d, want 5, 5 (deterministic)", a, b)
	}
}

func TestDivisionByZero(t *testing.T) {
	code := []byte{
		byte(OpLcons), byte(R0), 10, 0, 0, 0,
		byte(OpLcons), byte(R1), 0, 0, 0, 0,
		byte(OpDiv), byte(R0), byte(R1),
		byte(OpHalt),
	}
	vm := newTestVM(t, nil)
	if err := vm.Initialize(code); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if r := vm.Run(); r != Error {
		t.Fatalf("state = %v, want Error", r)
	}
}

func TestWriteToROMFails(t *testing.T) {
	code := []byte{
		byte(OpLcons), byte(R0), 0, 0, 0, 0, // r0 = ROM address 0
		byte(OpLcons), byte(R1), 0xAB, 0, 0, 0,
		byte(OpStore), byte(R0), byte(R1), 1,
		byte(OpHalt),
	}
	vm := newTestVM(t, nil)
	if err := vm.Initialize(code); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if r := vm.Run(); r != Error {
		t.Fatalf("state = %v, want Error (write to ROM)", r)
	}
}

func TestStoreLoadRAMRoundTrip(t *testing.T) {
	bufAddr := EncodeAddress(true, 0)
	code := []byte{
		byte(OpLcons), byte(R0), byte(bufAddr), byte(bufAddr >> 8), byte(bufAddr >> 16), byte(bufAddr >> 24),
		byte(OpLcons), byte(R1), 0x2A, 0, 0, 0,
		byte(OpStore), byte(R0), byte(R1), 1,
		byte(OpLoad), byte(R2), byte(R0), 1,
		byte(OpHalt),
	}
	vm := newTestVM(t, nil)
	if err := vm.Initialize(code); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if r := vm.Run(); r != Halted {
		t.Fatalf("state = %v, want Halted", r)
	}
	if got := vm.Reg(R2); got != 0x2A {
		t.Fatalf("R2 = %#x, want 0x2A", got)
	}
}

func TestSkipzSkipsNextInstruction(t *testing.T) {
	code := []byte{
		byte(OpLcons), byte(R0), 0, 0, 0, 0, // r0 == 0
		byte(OpSkipz), byte(R0),
		byte(OpLcons), byte(R1), 1, 0, 0, 0, // skipped
		byte(OpLcons), byte(R2), 2, 0, 0, 0,
		byte(OpHalt),
	}
	vm := newTestVM(t, nil)
	if err := vm.Initialize(code); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if r := vm.Run(); r != Halted {
		t.Fatalf("state = %v, want Halted", r)
	}
	if vm.Reg(R1) != 0 {
		t.Fatalf("R1 = %d, want 0 (skipped)", vm.Reg(R1))
	}
	if vm.Reg(R2) != 2 {
		t.Fatalf("R2 = %d, want 2", vm.Reg(R2))
	}
}

func TestSkipnzDoesNotSkipOnZero(t *testing.T) {
	code := []byte{
		byte(OpLcons), byte(R0), 0, 0, 0, 0, // r0 == 0
		byte(OpSkipnz), byte(R0),
		byte(OpLcons), byte(R1), 1, 0, 0, 0, // not skipped, cond false
		byte(OpHalt),
	}
	vm := newTestVM(t, nil)
	if err := vm.Initialize(code); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if r := vm.Run(); r != Halted {
		t.Fatalf("state = %v, want Halted", r)
	}
	if vm.Reg(R1) != 1 {
		t.Fatalf("R1 = %d, want 1 (not skipped)", vm.Reg(R1))
	}
}

// stubHost records every syscall it services and reports WaitEvent once.
type stubHost struct {
	codes []uint8
	waits int
}

func (h *stubHost) Syscall(vm *VM, code uint8) SyscallResult {
	h.codes = append(h.codes, code)
	if h.waits == 0 {
		h.waits++
		return SyscallWaitEvent
	}
	return SyscallOk
}

func TestSyscallWaitEventThenResume(t *testing.T) {
	code := []byte{
		byte(OpSyscall), 7,
		byte(OpSyscall), 7,
		byte(OpHalt),
	}
	host := &stubHost{}
	vm := newTestVM(t, host)
	if err := vm.Initialize(code); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if r := vm.Run(); r != WaitEvent {
		t.Fatalf("state = %v, want WaitEvent", r)
	}
	if r := vm.Run(); r != Halted {
		t.Fatalf("state after resume = %v, want Halted", r)
	}
	if len(host.codes) != 2 || host.codes[0] != 7 || host.codes[1] != 7 {
		t.Fatalf("codes = %v, want [7 7]", host.codes)
	}
}

func TestInitializeRecoversFromError(t *testing.T) {
	vm := newTestVM(t, nil)
	if err := vm.Initialize([]byte{0xFF}); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if r := vm.Run(); r != Error {
		t.Fatalf("state = %v, want Error", r)
	}
	if err := vm.Initialize([]byte{byte(OpHalt)}); err != nil {
		t.Fatalf("re-initialize: %v", err)
	}
	if r := vm.Run(); r != Halted {
		t.Fatalf("state after recovery = %v, want Halted", r)
	}
}
