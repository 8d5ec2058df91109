package chip32asm

import "strconv"

// parseNumber parses a decimal, "0x"-hex, or "0"-prefixed octal integer
// literal, grounded on z80asm.parseNumber's prefix-dispatch strconv calls.
// Negative literals are not supported; the original assembler has the
// same limitation and it is retained here.
func parseNumber(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}
