package chip32vm

import "fmt"

// Config bounds a VM's address spaces and execution budget. Grounded on
// mirvm.Config{MemorySize,StackSize,MaxSteps}, split into separate ROM/RAM
// sizes to match Chip32's disjoint address spaces.
type Config struct {
	RomSize int // bytes available to code/rodata fetches and reads
	RamSize int // bytes available to data reads/writes and the stack
	// MaxSteps bounds Run's instruction count; zero means unbounded.
	// Mirrors mirvm.Config.MaxSteps, a runaway-program guard.
	MaxSteps int
	// Trace, when set, calls Tracer for every instruction Step executes.
	Trace  bool
	Tracer func(pc uint32, op Opcode)
}

// VM is one Chip32 machine: a 13-entry register file plus the ROM/RAM
// byte stores image and execution operate over. Grounded on mirvm.VM's
// registers/memory/pc fields, narrowed to Chip32's fixed register count
// and split memory model.
type VM struct {
	cfg  Config
	host Host

	regs [registerCount]uint32
	rom  []byte
	ram  []byte

	romSize int
	ramSize int

	state Result
	steps int
}

// New constructs a VM bound to cfg and host. Call Initialize before the
// first Step/Run.
func New(cfg Config, host Host) *VM {
	if host == nil {
		host = NopHost{}
	}
	return &VM{
		cfg:     cfg,
		host:    host,
		rom:     make([]byte, cfg.RomSize),
		ram:     make([]byte, cfg.RamSize),
		romSize: cfg.RomSize,
		ramSize: cfg.RamSize,
		state:   Ready,
	}
}

// Initialize loads image into ROM starting at offset 0, zeroes RAM and all
// registers, and sets SP to the top of the RAM region (PUSH pre-decrements
// before writing, so SP starts one past the last valid slot). It is the
// only operation that can recover the VM from Halted or Error.
func (vm *VM) Initialize(image []byte) error {
	if len(image) > vm.romSize {
		return fmt.Errorf("image of %d bytes exceeds ROM size %d", len(image), vm.romSize)
	}
	for i := range vm.rom {
		vm.rom[i] = 0
	}
	copy(vm.rom, image)
	for i := range vm.ram {
		vm.ram[i] = 0
	}
	for i := range vm.regs {
		vm.regs[i] = 0
	}
	vm.regs[SP] = EncodeAddress(true, uint16(vm.ramSize))
	vm.state = Ready
	vm.steps = 0
	return nil
}

// State reports the VM's current execution state.
func (vm *VM) State() Result { return vm.state }

// Reg reads register r. Exported for Host implementations that need to
// inspect syscall arguments conventionally passed in R0..R9.
func (vm *VM) Reg(r Register) uint32 { return vm.regs[r] }

// SetReg writes register r. Exported for Host implementations that return
// a syscall result to the machine conventionally in R0.
func (vm *VM) SetReg(r Register, v uint32) { vm.regs[r] = v }

// ReadMemory exposes bounds-checked memory reads to a Host servicing a
// syscall (e.g. to read a string argument out of RAM).
func (vm *VM) ReadMemory(addr uint32, size int) (uint32, error) {
	return vm.readMemory(addr, size)
}

// WriteMemory exposes bounds-checked memory writes to a Host servicing a
// syscall (e.g. to write a result back into RAM).
func (vm *VM) WriteMemory(addr uint32, value uint32, size int) error {
	return vm.writeMemory(addr, value, size)
}

// Steps reports the number of instructions executed since the last
// Initialize.
func (vm *VM) Steps() int { return vm.steps }
