// Package chip32dbg provides an interactive, line-oriented debugger for a
// running Chip32 machine: breakpoints, single-step and step-over,
// register and memory inspection, and an execution history ring.
// Grounded on pkg/debugger.Debugger's command-loop shape, rewritten
// against chip32vm.VM instead of a Z80 emulator. Breakpoints are keyed
// by ROM address, not by source line; an assembler's line map is used
// only to show the source line of an address.
package chip32dbg

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/openstoryteller/chip32/pkg/chip32asm"
	"github.com/openstoryteller/chip32/pkg/chip32vm"
)

// HistoryEntry records the machine state immediately before one
// instruction executed.
type HistoryEntry struct {
	Address uint32
	Line    int
	Regs    [13]uint32
}

// Config holds debugger construction options. A nil field takes the
// documented default, matching debugger.Config's pattern.
type Config struct {
	MaxHistory int
	Input      io.Reader
	Output     io.Writer
}

// Debugger drives a chip32vm.VM interactively or under breakpoint
// control, and reports source lines via a line map recovered from
// assembly (chip32asm.Result.LineMap).
type Debugger struct {
	vm      *chip32vm.VM
	lineMap []chip32asm.AddressLine

	breakpoints map[uint32]bool
	history     []HistoryEntry
	maxHistory  int

	input    *bufio.Scanner
	output   io.Writer
	running  bool
	stepMode bool
}

// New constructs a Debugger over vm, reporting source lines via lineMap
// (may be nil if unavailable).
func New(vm *chip32vm.VM, lineMap []chip32asm.AddressLine, config *Config) *Debugger {
	if config == nil {
		config = &Config{}
	}
	if config.MaxHistory == 0 {
		config.MaxHistory = 100
	}
	if config.Input == nil {
		config.Input = os.Stdin
	}
	if config.Output == nil {
		config.Output = os.Stdout
	}
	return &Debugger{
		vm:          vm,
		lineMap:     lineMap,
		breakpoints: make(map[uint32]bool),
		maxHistory:  config.MaxHistory,
		input:       bufio.NewScanner(config.Input),
		output:      config.Output,
		stepMode:    true,
	}
}

// Run starts the interactive command loop. It returns when the input
// stream is exhausted (EOF) or the quit command is issued.
func (d *Debugger) Run() error {
	fmt.Fprintln(d.output, "chip32dbg — type 'help' for commands")
	d.displayRegisters()

	for {
		if d.vm.State() == chip32vm.Halted || d.vm.State() == chip32vm.Error {
			fmt.Fprintf(d.output, "machine %s, address %#06x\n", d.vm.State(), d.currentAddress())
			d.stepMode = true
		} else if d.breakpoints[d.currentAddress()] && !d.stepMode {
			fmt.Fprintf(d.output, "breakpoint hit at %s\n", d.locationString(d.currentAddress()))
			d.stepMode = true
		}

		if !d.stepMode && d.running {
			d.executeOne()
			continue
		}

		fmt.Fprint(d.output, "dbg> ")
		if !d.input.Scan() {
			return nil
		}
		cmd := strings.TrimSpace(d.input.Text())
		if cmd == "" {
			cmd = "s"
		}
		if err := d.handleCommand(cmd); err != nil {
			fmt.Fprintf(d.output, "error: %v\n", err)
		}
		if cmd == "q" || cmd == "quit" || cmd == "exit" {
			return nil
		}
	}
}

// Dispatch runs one command line as handleCommand does, for a caller
// (e.g. a raw-mode terminal REPL) driving its own input loop instead of
// Run's bufio.Scanner-based one. It reports whether cmd was a quit
// command.
func (d *Debugger) Dispatch(cmd string) (quit bool, err error) {
	cmd = strings.TrimSpace(cmd)
	if cmd == "" {
		cmd = "s"
	}
	err = d.handleCommand(cmd)
	return cmd == "q" || cmd == "quit" || cmd == "exit", err
}

// Prompt returns the prompt string to display before reading a command.
func (d *Debugger) Prompt() string { return "dbg> " }

func (d *Debugger) currentAddress() uint32 {
	return d.vm.Reg(chip32vm.PC)
}

// locationString formats addr with its source line, when known.
func (d *Debugger) locationString(addr uint32) string {
	line := d.lineForAddress(addr)
	if line == 0 {
		return fmt.Sprintf("%#06x", addr)
	}
	return fmt.Sprintf("%#06x (line %d)", addr, line)
}

func (d *Debugger) lineForAddress(addr uint32) int {
	for _, al := range d.lineMap {
		if al.Address == addr {
			return al.Line
		}
	}
	return 0
}

// recordHistory appends the state before the next instruction executes,
// trimming from the front once maxHistory is exceeded.
func (d *Debugger) recordHistory() {
	entry := HistoryEntry{Address: d.currentAddress(), Line: d.lineForAddress(d.currentAddress())}
	for r := chip32vm.R0; r < 13; r++ {
		entry.Regs[r] = d.vm.Reg(r)
	}
	d.history = append(d.history, entry)
	if len(d.history) > d.maxHistory {
		d.history = d.history[len(d.history)-d.maxHistory:]
	}
}

func (d *Debugger) executeOne() chip32vm.Result {
	d.recordHistory()
	return d.vm.Step()
}
