package chip32asm

import "strings"

// Options configures an Assembler, grounded on z80asm.Assembler's exported
// bool configuration fields.
type Options struct {
	// CaseSensitiveLabels controls whether ".Start" and ".start" are the
	// same symbol. Default false, matching z80asm.CaseSensitive's default.
	CaseSensitiveLabels bool
}

// Assembler is the Chip32 two-pass symbolic assembler.
type Assembler struct {
	opts Options
}

// New creates a Chip32 assembler, grounded on z80asm.NewAssembler.
func New(opts Options) *Assembler {
	return &Assembler{opts: opts}
}

// Result is the output of a successful assembly, grounded on z80asm.Result.
type Result struct {
	Code    []byte            // ROM image: code + ROM data, in source order
	RomSize int               // == len(Code)
	RamSize int               // total bytes reserved by DVn directives
	Symbols map[string]Symbol // all defined symbols, keyed by prefixed name
	LineMap []AddressLine     // ROM address -> source line, for the debugger
}

// Assemble runs both passes over source text and returns the assembled
// image, or a *Error naming the offending line.
func (a *Assembler) Assemble(source string) (*Result, error) {
	lines, err := parseSource(source)
	if err != nil {
		return nil, err
	}

	state := &asmState{
		opts:    a.opts,
		symbols: make(map[string]*Symbol),
	}

	// Pass 1: layout. Walk the lines once, assigning addresses to labels
	// and data symbols, and encoding every instruction's bytes (with
	// zeroed holes for any label-valued operand) — grounded on
	// z80asm.Assembler.performPass/processLine/defineLabel.
	var records []*instRecord
	for _, line := range lines {
		rec, err := state.layoutLine(line)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			records = append(records, rec)
		}
	}

	// Pass 2: relocation. Patch every reserved hole now that all symbols
	// are known — grounded on z80asm's forward-reference resolution in
	// resolveSymbol, generalized to Chip32's fixed-width fixups.
	for _, rec := range records {
		for _, fx := range rec.fixups {
			if err := state.patchFixup(rec, fx); err != nil {
				return nil, err
			}
		}
	}

	result := &Result{
		RamSize: state.ramAddr,
		Symbols: make(map[string]Symbol, len(state.symbols)),
	}
	for name, sym := range state.symbols {
		result.Symbols[name] = *sym
	}
	for _, rec := range records {
		if rec.kind == kindRomCode || rec.kind == kindRomData {
			result.LineMap = append(result.LineMap, AddressLine{Address: rec.address, Line: rec.lineNumber})
			result.Code = append(result.Code, rec.bytes...)
		}
	}
	result.RomSize = len(result.Code)
	return result, nil
}

// asmState is the mutable state threaded through both passes.
type asmState struct {
	opts     Options
	symbols  map[string]*Symbol
	codeAddr uint32
	ramAddr  int
}

func (s *asmState) normalize(name string) string {
	if s.opts.CaseSensitiveLabels {
		return name
	}
	return strings.ToLower(name)
}

func (s *asmState) define(name string, addr uint32, kind SymbolKind, line int) error {
	key := s.normalize(name)
	if _, exists := s.symbols[key]; exists {
		return errf(line, "duplicate symbol definition: %q", name)
	}
	s.symbols[key] = &Symbol{Name: name, Address: addr, Kind: kind}
	return nil
}

func (s *asmState) lookup(name string) (*Symbol, bool) {
	sym, ok := s.symbols[s.normalize(name)]
	return sym, ok
}

// layoutLine processes one source line in pass 1.
func (s *asmState) layoutLine(line *sourceLine) (*instRecord, error) {
	switch line.kind {
	case lineBlank:
		return nil, nil

	case lineLabelDef:
		if err := s.define(line.label, s.codeAddr, KindLabel, line.number); err != nil {
			return nil, err
		}
		return nil, nil

	case lineDataDirective:
		isROM, bits, ok := directiveWidth(line.typeTag)
		if !ok {
			return nil, errf(line.number, "bad data directive type tag %q", line.typeTag)
		}
		if isROM {
			bts, err := encodeRomData(bits, line.operands, line.number)
			if err != nil {
				return nil, err
			}
			addr := s.codeAddr
			if err := s.define(line.name, addr, KindRomData, line.number); err != nil {
				return nil, err
			}
			s.codeAddr += uint32(len(bts))
			return &instRecord{lineNumber: line.number, mnemonic: line.name, address: addr, kind: kindRomData, bytes: bts}, nil
		}
		size, err := ramReservationSize(bits, line.operands, line.number)
		if err != nil {
			return nil, err
		}
		addr := s.ramAddr
		if err := s.define(line.name, uint32(addr), KindRamData, line.number); err != nil {
			return nil, err
		}
		s.ramAddr += size
		return &instRecord{lineNumber: line.number, mnemonic: line.name, address: uint32(addr), kind: kindRamData}, nil

	case lineInstruction:
		bts, fixups, err := encodeInstruction(line)
		if err != nil {
			return nil, err
		}
		addr := s.codeAddr
		s.codeAddr += uint32(len(bts))
		return &instRecord{
			lineNumber: line.number,
			mnemonic:   line.mnemonic,
			address:    addr,
			kind:       kindRomCode,
			bytes:      bts,
			fixups:     fixups,
		}, nil
	}
	return nil, nil
}

// patchFixup resolves one reserved hole against the completed symbol
// table, grounded on z80asm's pass-2 relocation rule.
func (s *asmState) patchFixup(rec *instRecord, fx Fixup) error {
	sym, ok := s.lookup(fx.Symbol)
	if !ok {
		return errf(rec.lineNumber, "unresolved symbol: %q", fx.Symbol)
	}
	addr := sym.Address
	switch fx.Width {
	case 2:
		if addr > 0xFFFF {
			return errf(rec.lineNumber, "address of %q does not fit in 16 bits", fx.Symbol)
		}
		rec.bytes[fx.Offset] = byte(addr)
		rec.bytes[fx.Offset+1] = byte(addr >> 8)
	case 4:
		rec.bytes[fx.Offset] = byte(addr)
		rec.bytes[fx.Offset+1] = byte(addr >> 8)
		rec.bytes[fx.Offset+2] = byte(addr >> 16)
		flag := byte(0x00)
		if fx.IsLcons && sym.Kind == KindRamData {
			flag = 0x80
		}
		rec.bytes[fx.Offset+3] = flag
	}
	return nil
}

// isLabelRef reports whether a raw operand text names a code label
// (".name", used by jump/call addr16 operands).
func isLabelRef(raw string) bool {
	return strings.HasPrefix(strings.TrimSpace(raw), ".")
}

// isDataLabelRef reports whether a raw operand text names a data label
// ("$name", used by lcons's label-mode immediate operand).
func isDataLabelRef(raw string) bool {
	return strings.HasPrefix(strings.TrimSpace(raw), "$")
}

// encodeInstruction compiles one instruction line into its opcode byte
// plus operand bytes, leaving zeroed holes (recorded as Fixups) for any
// label-valued operand. Grounded on z80asm's per-opcode encoder dispatch
// (encoder.go), collapsed to Chip32's uniform per-operand-kind encoding.
func encodeInstruction(line *sourceLine) ([]byte, []Fixup, error) {
	tpl, ok := instrTemplates[line.mnemonic]
	if !ok {
		return nil, nil, errf(line.number, "unknown mnemonic %q", line.mnemonic)
	}
	if len(line.operands) != len(tpl.operands) {
		return nil, nil, errf(line.number, "%s expects %d operand(s), got %d", line.mnemonic, len(tpl.operands), len(line.operands))
	}

	out := []byte{tpl.opcode}
	var fixups []Fixup

	for i, kind := range tpl.operands {
		raw := line.operands[i]
		switch kind {
		case opndReg:
			reg, ok := parseRegister(raw)
			if !ok {
				return nil, nil, errf(line.number, "%s: operand %d: bad register %q", line.mnemonic, i+1, raw)
			}
			out = append(out, byte(reg))

		case opndRegIndirect:
			if !isIndirect(raw) {
				return nil, nil, errf(line.number, "%s: operand %d must begin with '@'", line.mnemonic, i+1)
			}
			reg, ok := parseRegister(stripIndirect(raw))
			if !ok {
				return nil, nil, errf(line.number, "%s: operand %d: bad register %q", line.mnemonic, i+1, raw)
			}
			out = append(out, byte(reg))

		case opndU8:
			v, err := parseNumber(raw)
			if err != nil {
				return nil, nil, errf(line.number, "%s: operand %d: bad literal %q: %v", line.mnemonic, i+1, raw, err)
			}
			if v > 0xFF {
				return nil, nil, errf(line.number, "%s: operand %d: literal %d does not fit in a byte", line.mnemonic, i+1, v)
			}
			out = append(out, byte(v))

		case opndAddr16:
			if isLabelRef(raw) {
				fixups = append(fixups, Fixup{Offset: len(out), Width: 2, Symbol: raw})
				out = append(out, 0, 0)
			} else {
				v, err := parseNumber(raw)
				if err != nil {
					return nil, nil, errf(line.number, "%s: operand %d: bad address %q: %v", line.mnemonic, i+1, raw, err)
				}
				if v > 0xFFFF {
					return nil, nil, errf(line.number, "%s: operand %d: address %d does not fit in 16 bits", line.mnemonic, i+1, v)
				}
				out = append(out, byte(v), byte(v>>8))
			}

		case opndImm32:
			if isDataLabelRef(raw) {
				fixups = append(fixups, Fixup{Offset: len(out), Width: 4, Symbol: raw, IsLcons: true})
				out = append(out, 0, 0, 0, 0)
			} else {
				v, err := parseNumber(raw)
				if err != nil {
					return nil, nil, errf(line.number, "%s: operand %d: bad immediate %q: %v", line.mnemonic, i+1, raw, err)
				}
				out = append(out, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
			}
		}
	}

	return out, fixups, nil
}
