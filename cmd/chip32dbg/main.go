// Command chip32dbg loads a Chip32 source file or assembled image and
// opens an interactive debugger against it. Grounded on cmd/minzc's
// cobra root command shape and cmd/repl's raw-terminal REPL.
package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openstoryteller/chip32/internal/buildinfo"
	"github.com/openstoryteller/chip32/pkg/chip32asm"
	"github.com/openstoryteller/chip32/pkg/chip32dbg"
	"github.com/openstoryteller/chip32/pkg/chip32vm"
	"github.com/openstoryteller/chip32/pkg/ostsyscall"
	"github.com/openstoryteller/chip32/pkg/version"
)

var (
	romSize     int
	ramSize     int
	batchScript string
	showVersion bool
)

var rootCmd = &cobra.Command{
	Use:   "chip32dbg [file]",
	Short: "Chip32 interactive debugger " + version.GetVersion(),
	Long: `chip32dbg - Interactive debugger for the Chip32 virtual machine

Accepts either an assembled image (.bin) or Chip32 source (.c32), which
is assembled in memory before debugging starts.

COMMANDS (once inside the debugger):
  s, step               execute one instruction
  n, next               step over the current instruction
  c, continue           run until a breakpoint or halt
  b, break <addr>        set or list breakpoints
  r, regs                show registers
  m, mem <addr> [size]   show memory
  set <reg> <value>      write a register
  q, quit                leave the debugger`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if buildinfo.PrintFullIfRequested(os.Stdout, showVersion) {
			return
		}
		if len(args) == 0 {
			cmd.Help()
			os.Exit(0)
		}
		if err := debugFile(args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.Flags().IntVar(&romSize, "rom", 1<<15, "ROM size in bytes")
	rootCmd.Flags().IntVar(&ramSize, "ram", 1<<15, "RAM size in bytes")
	rootCmd.Flags().StringVar(&batchScript, "script", "", "run commands from a file instead of the interactive REPL")
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "print version and exit")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func debugFile(path string) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	var image []byte
	var lineMap []chip32asm.AddressLine
	if strings.HasSuffix(strings.ToLower(path), ".c32") {
		result, err := chip32asm.New(chip32asm.Options{}).Assemble(string(source))
		if err != nil {
			return fmt.Errorf("assembling %s: %w", path, err)
		}
		image = result.Code
		lineMap = result.LineMap
	} else {
		image = source
	}

	host := &ostsyscall.ReferenceHost{Logger: log.New(os.Stderr, "", 0)}
	vm := chip32vm.New(chip32vm.Config{RomSize: romSize, RamSize: ramSize}, host)
	if err := vm.Initialize(image); err != nil {
		return fmt.Errorf("initializing VM: %w", err)
	}

	if batchScript != "" {
		f, err := os.Open(batchScript)
		if err != nil {
			return fmt.Errorf("opening script %s: %w", batchScript, err)
		}
		defer f.Close()
		dbg := chip32dbg.New(vm, lineMap, &chip32dbg.Config{Input: f, Output: os.Stdout})
		return dbg.Run()
	}

	return runInteractive(vm, lineMap)
}
