package chip32dbg

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/openstoryteller/chip32/pkg/chip32vm"
)

func (d *Debugger) handleCommand(cmd string) error {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return nil
	}

	switch parts[0] {
	case "h", "help", "?":
		d.printHelp()

	case "s", "step":
		r := d.executeOne()
		fmt.Fprintf(d.output, "stepped to %s (%s)\n", d.locationString(d.currentAddress()), r)

	case "n", "next":
		startAddr := d.currentAddress()
		// Over a CALL, run until control returns to the instruction after
		// it; over anything else, run until PC leaves startAddr.
		returnAddr, overCall := startAddr, false
		if op, err := d.vm.ReadMemory(startAddr, 1); err == nil && chip32vm.Opcode(op) == chip32vm.OpCall {
			returnAddr, overCall = startAddr+3, true
		}
		for {
			r := d.executeOne()
			pc := d.currentAddress()
			if r != chip32vm.Ok || (overCall && pc == returnAddr) || (!overCall && pc != startAddr) {
				break
			}
		}
		fmt.Fprintf(d.output, "stepped to %s\n", d.locationString(d.currentAddress()))

	case "c", "continue", "run":
		d.stepMode = false
		d.running = true
		fmt.Fprintln(d.output, "running...")

	case "b", "break", "bp":
		if len(parts) < 2 {
			d.listBreakpoints()
		} else {
			addr, err := parseAddress(parts[1])
			if err != nil {
				return err
			}
			d.breakpoints[addr] = true
			fmt.Fprintf(d.output, "breakpoint set at %s\n", d.locationString(addr))
		}

	case "d", "delete":
		if len(parts) < 2 {
			return fmt.Errorf("usage: delete <address>")
		}
		addr, err := parseAddress(parts[1])
		if err != nil {
			return err
		}
		delete(d.breakpoints, addr)
		fmt.Fprintf(d.output, "breakpoint cleared at %s\n", d.locationString(addr))

	case "r", "regs", "registers":
		d.displayRegisters()

	case "m", "mem", "memory":
		if len(parts) < 2 {
			return fmt.Errorf("usage: mem <address> [size]")
		}
		addr, err := parseAddress(parts[1])
		if err != nil {
			return err
		}
		size := 64
		if len(parts) > 2 {
			n, err := strconv.Atoi(parts[2])
			if err != nil {
				return fmt.Errorf("bad size %q: %w", parts[2], err)
			}
			size = n
		}
		d.displayMemory(addr, size)

	case "set":
		if len(parts) < 3 {
			return fmt.Errorf("usage: set <register> <value>")
		}
		if err := d.setRegister(parts[1], parts[2]); err != nil {
			return err
		}

	case "history", "hist":
		d.displayHistory()

	case "q", "quit", "exit":
		fmt.Fprintln(d.output, "goodbye")

	default:
		fmt.Fprintf(d.output, "unknown command: %s (type 'help' for commands)\n", parts[0])
	}
	return nil
}

func (d *Debugger) listBreakpoints() {
	if len(d.breakpoints) == 0 {
		fmt.Fprintln(d.output, "no breakpoints set")
		return
	}
	for addr := range d.breakpoints {
		fmt.Fprintf(d.output, "  %s\n", d.locationString(addr))
	}
}

func (d *Debugger) displayRegisters() {
	fmt.Fprintf(d.output, "pc:%#06x sp:%#06x ra:%#06x  ", d.vm.Reg(chip32vm.PC), d.vm.Reg(chip32vm.SP), d.vm.Reg(chip32vm.RA))
	for r := chip32vm.R0; r <= chip32vm.R9; r++ {
		fmt.Fprintf(d.output, "%s:0x%08x ", r, d.vm.Reg(r))
	}
	fmt.Fprintln(d.output)
}

func (d *Debugger) displayMemory(addr uint32, size int) {
	for i := 0; i < size; i += 16 {
		fmt.Fprintf(d.output, "%#06x: ", addr+uint32(i))
		line := make([]byte, 0, 16)
		for j := 0; j < 16 && i+j < size; j++ {
			v, err := d.vm.ReadMemory(addr+uint32(i+j), 1)
			if err != nil {
				fmt.Fprint(d.output, ".. ")
				continue
			}
			fmt.Fprintf(d.output, "%02x ", byte(v))
			line = append(line, byte(v))
		}
		fmt.Fprintf(d.output, " %s\n", asciiPreview(line))
	}
}

func asciiPreview(bs []byte) string {
	out := make([]byte, len(bs))
	for i, b := range bs {
		if b >= 32 && b < 127 {
			out[i] = b
		} else {
			out[i] = '.'
		}
	}
	return string(out)
}

func (d *Debugger) displayHistory() {
	for _, h := range d.history {
		fmt.Fprintf(d.output, "  %s\n", d.locationString(h.Address))
	}
}

func (d *Debugger) setRegister(name, value string) error {
	r, ok := parseRegisterName(name)
	if !ok {
		return fmt.Errorf("unknown register %q", name)
	}
	v, err := strconv.ParseUint(value, 0, 32)
	if err != nil {
		return fmt.Errorf("bad value %q: %w", value, err)
	}
	d.vm.SetReg(r, uint32(v))
	return nil
}

func (d *Debugger) printHelp() {
	fmt.Fprintln(d.output, `commands:
  s, step              execute one instruction
  n, next              step over the current instruction
  c, continue, run      run until a breakpoint or halt
  b, break <addr>       set a breakpoint, or list breakpoints
  d, delete <addr>      clear a breakpoint
  r, regs               show registers
  m, mem <addr> [size]  show memory
  set <reg> <value>     write a register
  history                show recent execution history
  q, quit, exit          leave the debugger`)
}

func parseAddress(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("bad address %q: %w", s, err)
	}
	return uint32(v), nil
}

func parseRegisterName(s string) (chip32vm.Register, bool) {
	switch strings.ToLower(s) {
	case "r0":
		return chip32vm.R0, true
	case "r1":
		return chip32vm.R1, true
	case "r2":
		return chip32vm.R2, true
	case "r3":
		return chip32vm.R3, true
	case "r4":
		return chip32vm.R4, true
	case "r5":
		return chip32vm.R5, true
	case "r6":
		return chip32vm.R6, true
	case "r7":
		return chip32vm.R7, true
	case "r8":
		return chip32vm.R8, true
	case "r9":
		return chip32vm.R9, true
	case "pc":
		return chip32vm.PC, true
	case "sp":
		return chip32vm.SP, true
	case "ra":
		return chip32vm.RA, true
	default:
		return 0, false
	}
}
