package emu

// NumRegs is the number of integer registers.
const NumRegs = 32

// Registers with a fixed role at reset.
const (
	RegZero uint8 = 0
	RegRA   uint8 = 1
	RegSP   uint8 = 2
)

// RegFile represents the RV64 integer register file and program counter.
type RegFile struct {
	// X holds x0-x31. X[0] is never written and always reads as 0.
	X [NumRegs]uint64

	// PC is the program counter.
	PC uint64
}

// ReadReg reads a register value. x0 and out-of-range indices return 0.
func (r *RegFile) ReadReg(reg uint8) uint64 {
	if reg == RegZero || reg >= NumRegs {
		return 0
	}
	return r.X[reg]
}

// WriteReg writes a register value. Writes to x0 are discarded.
func (r *RegFile) WriteReg(reg uint8, value uint64) {
	if reg == RegZero || reg >= NumRegs {
		return
	}
	r.X[reg] = value
}

// ReadReg32 reads the low 32 bits of a register.
func (r *RegFile) ReadReg32(reg uint8) uint32 {
	return uint32(r.ReadReg(reg))
}

// WriteReg32 writes a 32-bit result sign-extended to 64 bits.
func (r *RegFile) WriteReg32(reg uint8, value uint32) {
	r.WriteReg(reg, uint64(int64(int32(value))))
}

// Snapshot returns a copy of x0-x31.
func (r *RegFile) Snapshot() [NumRegs]uint64 {
	regs := r.X
	regs[RegZero] = 0
	return regs
}
