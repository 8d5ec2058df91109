package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/openstoryteller/chip32/pkg/chip32asm"
	"github.com/openstoryteller/chip32/pkg/chip32dbg"
	"github.com/openstoryteller/chip32/pkg/chip32vm"
)

// runInteractive drives dbg from the terminal directly, adding arrow-key
// history navigation when stdin is a real terminal (raw mode) and
// falling back to plain line buffering otherwise (piped input, tests).
// Grounded on cmd/repl's readLineWithHistory, rewritten against
// chip32dbg.Debugger.Dispatch instead of MinZ's line evaluator.
func runInteractive(vm *chip32vm.VM, lineMap []chip32asm.AddressLine) error {
	dbg := chip32dbg.New(vm, lineMap, &chip32dbg.Config{Output: os.Stdout})

	fmt.Println("chip32dbg — type 'help' for commands, Ctrl+D to exit")

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return runCookedREPL(dbg, os.Stdin)
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return runCookedREPL(dbg, os.Stdin)
	}
	defer term.Restore(fd, oldState)

	var history []string
	for {
		fmt.Print(dbg.Prompt())
		line, ok := readLineRaw(dbg.Prompt(), &history)
		if !ok {
			fmt.Println()
			return nil
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if len(history) == 0 || history[len(history)-1] != line {
			history = append(history, line)
		}
		quit, err := dbg.Dispatch(line)
		if err != nil {
			fmt.Printf("error: %v\r\n", err)
		}
		if quit {
			return nil
		}
	}
}

func runCookedREPL(dbg *chip32dbg.Debugger, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Print(dbg.Prompt())
		if !scanner.Scan() {
			return nil
		}
		quit, err := dbg.Dispatch(scanner.Text())
		if err != nil {
			fmt.Printf("error: %v\n", err)
		}
		if quit {
			return nil
		}
	}
}

// readLineRaw reads one line of raw-mode terminal input with Up/Down
// history recall, Left/Right cursor movement, and basic editing. It
// returns ok == false on Ctrl+D with an empty line or a read error.
func readLineRaw(prompt string, history *[]string) (string, bool) {
	var line []rune
	cursor := 0
	histIdx := len(*history)

	redraw := func() {
		fmt.Print("\r\033[K", prompt, string(line))
		if back := len(line) - cursor; back > 0 {
			fmt.Printf("\033[%dD", back)
		}
	}

	var buf [3]byte
	for {
		n, err := os.Stdin.Read(buf[:])
		if err != nil || n == 0 {
			return "", false
		}

		switch {
		case buf[0] == 27 && n >= 3 && buf[1] == '[':
			switch buf[2] {
			case 'A': // up
				if histIdx > 0 {
					histIdx--
					line = []rune((*history)[histIdx])
					cursor = len(line)
					redraw()
				}
			case 'B': // down
				if histIdx < len(*history)-1 {
					histIdx++
					line = []rune((*history)[histIdx])
					cursor = len(line)
				} else {
					histIdx = len(*history)
					line = nil
					cursor = 0
				}
				redraw()
			case 'C': // right
				if cursor < len(line) {
					cursor++
					fmt.Print("\033[1C")
				}
			case 'D': // left
				if cursor > 0 {
					cursor--
					fmt.Print("\033[1D")
				}
			}

		case buf[0] == '\r' || buf[0] == '\n':
			fmt.Print("\r\n")
			return string(line), true

		case buf[0] == 3: // Ctrl+C
			fmt.Print("^C\r\n")
			return "", true

		case buf[0] == 4: // Ctrl+D
			if len(line) == 0 {
				return "", false
			}

		case buf[0] == 127 || buf[0] == 8: // backspace
			if cursor > 0 {
				line = append(line[:cursor-1], line[cursor:]...)
				cursor--
				redraw()
			}

		default:
			r := rune(buf[0])
			line = append(line[:cursor], append([]rune{r}, line[cursor:]...)...)
			cursor++
			redraw()
		}
	}
}
