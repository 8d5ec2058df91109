// Command chip32as assembles Chip32 source into a ROM image, optionally
// emitting a listing and a symbol table alongside the binary. Grounded
// on cmd/mza's flag-based CLI shape.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/openstoryteller/chip32/internal/buildinfo"
	"github.com/openstoryteller/chip32/pkg/chip32asm"
	"github.com/openstoryteller/chip32/pkg/version"
)

func main() {
	var (
		outputFile    = flag.String("o", "", "output binary file (default: input.bin)")
		listingFile   = flag.String("l", "", "generate a listing file")
		symbolFile    = flag.String("s", "", "generate a symbol file")
		caseSensitive = flag.Bool("case", false, "case-sensitive labels")
		verbose       = flag.Bool("v", false, "verbose output")
		showVersion   = flag.Bool("version", false, "print version and exit")
		help          = flag.Bool("h", false, "show help")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "chip32as - Chip32 assembler\n\n")
		fmt.Fprintf(os.Stderr, "Usage: chip32as [options] input.c32\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  chip32as story.c32                  # assemble to story.bin\n")
		fmt.Fprintf(os.Stderr, "  chip32as -o story.rom story.c32     # assemble to story.rom\n")
		fmt.Fprintf(os.Stderr, "  chip32as -l story.lst story.c32     # also write a listing\n")
		fmt.Fprintf(os.Stderr, "  chip32as -s story.sym story.c32     # also write a symbol table\n")
	}

	flag.Parse()

	if buildinfo.PrintIfRequested(os.Stdout, *showVersion) {
		return
	}
	if *help {
		flag.Usage()
		return
	}
	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "error: no input file specified")
		flag.Usage()
		os.Exit(1)
	}
	if flag.NArg() > 1 {
		fmt.Fprintln(os.Stderr, "error: multiple input files not supported")
		flag.Usage()
		os.Exit(1)
	}

	inputFile := flag.Arg(0)
	if !strings.HasSuffix(strings.ToLower(inputFile), ".c32") {
		fmt.Fprintln(os.Stderr, "warning: input file doesn't have a .c32 extension")
	}

	if *outputFile == "" {
		ext := filepath.Ext(inputFile)
		base := strings.TrimSuffix(inputFile, ext)
		*outputFile = base + ".bin"
	}

	if *verbose {
		fmt.Printf("chip32as %s\n", version.GetVersion())
		fmt.Printf("input:  %s\n", inputFile)
		fmt.Printf("output: %s\n", *outputFile)
	}

	source, err := os.ReadFile(inputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: reading %s: %v\n", inputFile, err)
		os.Exit(1)
	}

	asm := chip32asm.New(chip32asm.Options{CaseSensitiveLabels: *caseSensitive})
	result, err := asm.Assemble(string(source))
	if err != nil {
		fmt.Fprintf(os.Stderr, "assembly failed: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*outputFile, result.Code, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "error: writing %s: %v\n", *outputFile, err)
		os.Exit(1)
	}

	if *listingFile != "" {
		if err := writeListingFile(*listingFile, source, result); err != nil {
			fmt.Fprintf(os.Stderr, "error: writing listing %s: %v\n", *listingFile, err)
			os.Exit(1)
		}
	}

	if *symbolFile != "" {
		if err := writeSymbolFile(*symbolFile, result); err != nil {
			fmt.Fprintf(os.Stderr, "error: writing symbols %s: %v\n", *symbolFile, err)
			os.Exit(1)
		}
	}

	if *verbose {
		fmt.Printf("assembled %d ROM bytes, %d RAM bytes, %d symbols\n",
			result.RomSize, result.RamSize, len(result.Symbols))
	}
}

func writeListingFile(filename string, source []byte, result *chip32asm.Result) error {
	lines := strings.Split(string(source), "\n")
	addrByLine := make(map[int]uint32, len(result.LineMap))
	for _, al := range result.LineMap {
		addrByLine[al.Line] = al.Address
	}

	var out []string
	out = append(out, "Chip32 Assembler Listing", "========================", "")
	for i, src := range lines {
		lineNo := i + 1
		if addr, ok := addrByLine[lineNo]; ok {
			out = append(out, fmt.Sprintf("%04X  %s", addr, src))
		} else {
			out = append(out, fmt.Sprintf("      %s", src))
		}
	}
	return os.WriteFile(filename, []byte(strings.Join(out, "\n")), 0644)
}

func writeSymbolFile(filename string, result *chip32asm.Result) error {
	var out []string
	out = append(out, "Chip32 Assembler Symbol Table", "==============================", "")
	for name, sym := range result.Symbols {
		out = append(out, fmt.Sprintf("%-24s = %#06x (%s)", name, sym.Address, sym.Kind))
	}
	return os.WriteFile(filename, []byte(strings.Join(out, "\n")), 0644)
}
