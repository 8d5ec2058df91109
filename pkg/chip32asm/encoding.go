package chip32asm

// operandKind classifies one operand slot of an instruction template,
// grounded on the shape of z80asm/instruction_table.go's opcode->encoder
// mapping, collapsed to Chip32's much smaller, fixed-width-per-opcode
// table.
type operandKind int

const (
	opndReg         operandKind = iota // plain register (1 byte)
	opndRegIndirect                    // "@reg" (1 byte, register index)
	opndU8                             // literal byte (syscall code, size)
	opndAddr16                         // u16 address, may be a code label
	opndImm32                          // u32 immediate, may be a data label
)

// instrTemplate describes one mnemonic's fixed operand shape.
type instrTemplate struct {
	opcode   byte
	operands []operandKind
}

// mnemonicOrder is the fixed opcode ordering: each mnemonic's numeric
// opcode is its index here.
var mnemonicOrder = []string{
	"nop", "halt", "syscall", "lcons", "mov", "push", "pop", "call", "ret",
	"store", "load", "add", "sub", "mul", "div", "shiftl", "shiftr",
	"ishiftr", "and", "or", "xor", "not", "jump", "jumpr", "skipz", "skipnz",
}

var instrTemplates map[string]instrTemplate

func init() {
	instrTemplates = make(map[string]instrTemplate, len(mnemonicOrder))
	for i, m := range mnemonicOrder {
		instrTemplates[m] = instrTemplate{opcode: byte(i), operands: operandShape(m)}
	}
}

func operandShape(mnemonic string) []operandKind {
	switch mnemonic {
	case "nop", "halt", "ret":
		return nil
	case "syscall":
		return []operandKind{opndU8}
	case "lcons":
		return []operandKind{opndReg, opndImm32}
	case "mov", "add", "sub", "mul", "div", "shiftl", "shiftr", "ishiftr", "and", "or", "xor", "not":
		return []operandKind{opndReg, opndReg}
	case "push", "pop", "jumpr", "skipz", "skipnz":
		return []operandKind{opndReg}
	case "call", "jump":
		return []operandKind{opndAddr16}
	case "store":
		return []operandKind{opndRegIndirect, opndReg, opndU8}
	case "load":
		return []operandKind{opndReg, opndRegIndirect, opndU8}
	default:
		return nil
	}
}
