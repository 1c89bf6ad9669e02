package emu

import "github.com/sarchlab/rvsim/insts"

// ALU implements RV64I integer computation and the M extension.
type ALU struct {
	regFile *RegFile
}

// NewALU creates a new ALU connected to the given register file.
func NewALU(regFile *RegFile) *ALU {
	return &ALU{regFile: regFile}
}

// RegReg executes a register-register operation: rd = rs1 op rs2.
// It returns false if op is not a register-register ALU operation.
func (a *ALU) RegReg(op insts.Op, rd, rs1, rs2 uint8) bool {
	if isWordOp(op) {
		result, ok := compute32(op, a.regFile.ReadReg32(rs1), a.regFile.ReadReg32(rs2))
		if ok {
			a.regFile.WriteReg32(rd, result)
		}
		return ok
	}

	result, ok := compute64(op, a.regFile.ReadReg(rs1), a.regFile.ReadReg(rs2))
	if ok {
		a.regFile.WriteReg(rd, result)
	}
	return ok
}

// RegImm executes a register-immediate operation: rd = rs1 op imm.
// Shift immediates carry the shift amount in imm.
// It returns false if op is not a register-immediate ALU operation.
func (a *ALU) RegImm(op insts.Op, rd, rs1 uint8, imm int64) bool {
	if isWordOp(op) {
		result, ok := compute32(op, a.regFile.ReadReg32(rs1), uint32(imm))
		if ok {
			a.regFile.WriteReg32(rd, result)
		}
		return ok
	}

	result, ok := compute64(op, a.regFile.ReadReg(rs1), uint64(imm))
	if ok {
		a.regFile.WriteReg(rd, result)
	}
	return ok
}

func isWordOp(op insts.Op) bool {
	switch op {
	case insts.OpADDIW, insts.OpSLLIW, insts.OpSRLIW, insts.OpSRAIW,
		insts.OpADDW, insts.OpSUBW, insts.OpSLLW, insts.OpSRLW, insts.OpSRAW,
		insts.OpMULW, insts.OpDIVW, insts.OpDIVUW, insts.OpREMW, insts.OpREMUW:
		return true
	}
	return false
}

// compute64 evaluates a 64-bit operation. Shift amounts use the low 6 bits
// of b.
func compute64(op insts.Op, a, b uint64) (uint64, bool) {
	switch op {
	case insts.OpADD, insts.OpADDI:
		return a + b, true
	case insts.OpSUB:
		return a - b, true
	case insts.OpSLL, insts.OpSLLI:
		return a << (b & 0x3F), true
	case insts.OpSLT, insts.OpSLTI:
		return boolToUint64(int64(a) < int64(b)), true
	case insts.OpSLTU, insts.OpSLTIU:
		return boolToUint64(a < b), true
	case insts.OpXOR, insts.OpXORI:
		return a ^ b, true
	case insts.OpSRL, insts.OpSRLI:
		return a >> (b & 0x3F), true
	case insts.OpSRA, insts.OpSRAI:
		return uint64(int64(a) >> (b & 0x3F)), true
	case insts.OpOR, insts.OpORI:
		return a | b, true
	case insts.OpAND, insts.OpANDI:
		return a & b, true
	case insts.OpMUL:
		return a * b, true
	case insts.OpMULH:
		return mulh(a, b), true
	case insts.OpMULHSU:
		return mulhsu(a, b), true
	case insts.OpMULHU:
		return mulhu(a, b), true
	case insts.OpDIV:
		return div64(a, b), true
	case insts.OpDIVU:
		return divu64(a, b), true
	case insts.OpREM:
		return rem64(a, b), true
	case insts.OpREMU:
		return remu64(a, b), true
	}
	return 0, false
}

// compute32 evaluates a word operation on the low 32 bits of its operands.
// The caller sign-extends the result. Shift amounts use the low 5 bits of b.
func compute32(op insts.Op, a, b uint32) (uint32, bool) {
	switch op {
	case insts.OpADDW, insts.OpADDIW:
		return a + b, true
	case insts.OpSUBW:
		return a - b, true
	case insts.OpSLLW, insts.OpSLLIW:
		return a << (b & 0x1F), true
	case insts.OpSRLW, insts.OpSRLIW:
		return a >> (b & 0x1F), true
	case insts.OpSRAW, insts.OpSRAIW:
		return uint32(int32(a) >> (b & 0x1F)), true
	case insts.OpMULW:
		return a * b, true
	case insts.OpDIVW:
		return div32(a, b), true
	case insts.OpDIVUW:
		return divu32(a, b), true
	case insts.OpREMW:
		return rem32(a, b), true
	case insts.OpREMUW:
		return remu32(a, b), true
	}
	return 0, false
}

func boolToUint64(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
