package chip32dbg

import (
	"bytes"
	"strings"
	"testing"

	"github.com/openstoryteller/chip32/pkg/chip32vm"
)

func newTestDebugger(t *testing.T, script string) (*Debugger, *bytes.Buffer) {
	t.Helper()
	code := []byte{
		byte(chip32vm.OpLcons), byte(chip32vm.R0), 1, 0, 0, 0,
		byte(chip32vm.OpLcons), byte(chip32vm.R1), 2, 0, 0, 0,
		byte(chip32vm.OpHalt),
	}
	vm := chip32vm.New(chip32vm.Config{RomSize: 64, RamSize: 64}, nil)
	if err := vm.Initialize(code); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	var out bytes.Buffer
	d := New(vm, nil, &Config{Input: strings.NewReader(script), Output: &out})
	return d, &out
}

func TestDebuggerStepAndRegs(t *testing.T) {
	d, out := newTestDebugger(t, "step\nregs\nquit\n")
	if err := d.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "r0:0x00000001") {
		t.Fatalf("output missing stepped register value:\n%s", out.String())
	}
}

func TestDebuggerSetRegister(t *testing.T) {
	d, out := newTestDebugger(t, "set r3 99\nregs\nquit\n")
	if err := d.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "r3:0x00000063") {
		t.Fatalf("output missing set register value:\n%s", out.String())
	}
}

func TestDebuggerBreakpointRunsToHalt(t *testing.T) {
	d, out := newTestDebugger(t, "break 0xc\ncontinue\nquit\n")
	if err := d.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	_ = out
}

func TestParseRegisterName(t *testing.T) {
	if r, ok := parseRegisterName("R0"); !ok || r != chip32vm.R0 {
		t.Fatalf("parseRegisterName(R0) = %v, %v", r, ok)
	}
	if _, ok := parseRegisterName("bogus"); ok {
		t.Fatalf("expected parseRegisterName(bogus) to fail")
	}
}
