package chip32asm

import "strings"

// parseRegister parses a case-insensitive register name, grounded on
// z80asm.parseRegister's switch-on-uppercased-string shape.
func parseRegister(s string) (Register, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "r0":
		return R0, true
	case "r1":
		return R1, true
	case "r2":
		return R2, true
	case "r3":
		return R3, true
	case "r4":
		return R4, true
	case "r5":
		return R5, true
	case "r6":
		return R6, true
	case "r7":
		return R7, true
	case "r8":
		return R8, true
	case "r9":
		return R9, true
	case "pc":
		return RegPC, true
	case "sp":
		return RegSP, true
	case "ra":
		return RegRA, true
	default:
		return 0, false
	}
}

// isIndirect reports whether an operand uses the "@reg" indirect prefix,
// grounded on z80asm.isIndirect/stripIndirect (there: parens; here: '@').
func isIndirect(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), "@")
}

func stripIndirect(s string) string {
	return strings.TrimPrefix(strings.TrimSpace(s), "@")
}
