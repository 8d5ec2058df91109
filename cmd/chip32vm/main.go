// Command chip32vm loads an assembled Chip32 image and runs it against
// the reference host (pkg/ostsyscall), printing syscall activity and
// execution statistics. Grounded on cmd/mzv's flag-based runner shape.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/openstoryteller/chip32/internal/buildinfo"
	"github.com/openstoryteller/chip32/pkg/chip32vm"
	"github.com/openstoryteller/chip32/pkg/ostsyscall"
	"github.com/openstoryteller/chip32/pkg/version"
)

func main() {
	var (
		input    = flag.String("i", "", "input assembled image (.bin)")
		trace    = flag.Bool("trace", false, "trace executed instructions")
		maxSteps = flag.Int("max-steps", 1_000_000, "maximum instructions to execute (0 = unbounded)")
		romSize  = flag.Int("rom", 1<<15, "ROM size in bytes")
		ramSize  = flag.Int("ram", 1<<15, "RAM size in bytes")
		verbose  = flag.Bool("v", false, "verbose output")
		showHelp = flag.Bool("h", false, "show help")
		showVer  = flag.Bool("version", false, "print version and exit")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "chip32vm - Chip32 virtual machine\n\n")
		fmt.Fprintf(os.Stderr, "Usage: %s -i image.bin [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if buildinfo.PrintIfRequested(os.Stdout, *showVer) {
		return
	}
	if *showHelp {
		flag.Usage()
		return
	}
	if *input == "" && flag.NArg() > 0 {
		*input = flag.Arg(0)
	}
	if *input == "" {
		fmt.Fprintln(os.Stderr, "error: input image required")
		flag.Usage()
		os.Exit(1)
	}

	image, err := os.ReadFile(*input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading %s: %v\n", *input, err)
		os.Exit(1)
	}

	host := &ostsyscall.ReferenceHost{Logger: log.New(os.Stdout, "", 0)}
	cfg := chip32vm.Config{RomSize: *romSize, RamSize: *ramSize, MaxSteps: *maxSteps}
	if *trace {
		cfg.Trace = true
		cfg.Tracer = func(pc uint32, op chip32vm.Opcode) {
			fmt.Fprintf(os.Stderr, "%#06x: %s\n", pc, op)
		}
	}

	vm := chip32vm.New(cfg, host)
	if err := vm.Initialize(image); err != nil {
		fmt.Fprintf(os.Stderr, "error loading image: %v\n", err)
		os.Exit(1)
	}

	result := vm.Run()

	if *verbose {
		fmt.Printf("chip32vm %s\n", version.GetVersion())
		fmt.Printf("result: %s (%d instructions executed)\n", result, vm.Steps())
	}

	switch result {
	case chip32vm.Halted:
		os.Exit(0)
	case chip32vm.WaitEvent:
		fmt.Fprintln(os.Stderr, "machine paused on an unserviced event; no scheduler attached")
		os.Exit(2)
	default:
		fmt.Fprintf(os.Stderr, "execution ended in state %s\n", result)
		os.Exit(1)
	}
}
