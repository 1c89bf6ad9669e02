// Package insts provides RV64 instruction definitions and decoding.
package insts

// Op represents an RV64 operation.
type Op uint16

// RV64 operations.
const (
	OpUnknown Op = iota

	// RV64I
	OpLUI
	OpAUIPC
	OpJAL
	OpJALR
	OpBEQ
	OpBNE
	OpBLT
	OpBGE
	OpBLTU
	OpBGEU
	OpLB
	OpLH
	OpLW
	OpLD
	OpLBU
	OpLHU
	OpLWU
	OpSB
	OpSH
	OpSW
	OpSD
	OpADDI
	OpSLTI
	OpSLTIU
	OpXORI
	OpORI
	OpANDI
	OpSLLI
	OpSRLI
	OpSRAI
	OpADD
	OpSUB
	OpSLL
	OpSLT
	OpSLTU
	OpXOR
	OpSRL
	OpSRA
	OpOR
	OpAND
	OpADDIW
	OpSLLIW
	OpSRLIW
	OpSRAIW
	OpADDW
	OpSUBW
	OpSLLW
	OpSRLW
	OpSRAW

	// RV64M
	OpMUL
	OpMULH
	OpMULHSU
	OpMULHU
	OpDIV
	OpDIVU
	OpREM
	OpREMU
	OpMULW
	OpDIVW
	OpDIVUW
	OpREMW
	OpREMUW

	// MISC-MEM and SYSTEM
	OpFENCE
	OpFENCEI
	OpECALL
	OpEBREAK
	OpCSRRW
	OpCSRRS
	OpCSRRC
	OpCSRRWI
	OpCSRRSI
	OpCSRRCI

	numOps
)

// Format represents an instruction encoding format.
type Format uint8

// Instruction formats.
const (
	FormatUnknown Format = iota
	FormatR               // register-register
	FormatI               // 12-bit immediate
	FormatS               // store
	FormatB               // conditional branch
	FormatU               // upper immediate
	FormatJ               // jump
)

// Instruction represents a decoded RV64 instruction.
type Instruction struct {
	Op     Op     // Operation
	Format Format // Encoding format
	Word   uint32 // Raw machine word

	Rd  uint8 // Destination register
	Rs1 uint8 // First source register (zimm for CSR immediate forms)
	Rs2 uint8 // Second source register

	// Imm is the sign-extended immediate. Shift-immediate forms carry the
	// shift amount; CSR forms carry the CSR address.
	Imm int64

	// Fence ordering fields
	Pred uint8
	Succ uint8
	FM   uint8
}

// CSR returns the 12-bit CSR address of a CSR instruction.
func (i Instruction) CSR() uint16 {
	return uint16(i.Imm) & 0xFFF
}

// IsBranch reports whether the instruction may redirect the program counter.
func (i Instruction) IsBranch() bool {
	switch i.Op {
	case OpJAL, OpJALR, OpBEQ, OpBNE, OpBLT, OpBGE, OpBLTU, OpBGEU:
		return true
	}
	return false
}

// Decoder decodes RV64 machine code into instructions.
type Decoder struct{}

// NewDecoder creates a new RV64 instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode decodes a 32-bit RV64 instruction word. It always returns an
// instruction; unrecognized encodings have Op set to OpUnknown.
func (d *Decoder) Decode(word uint32) Instruction {
	inst := Instruction{
		Op:   OpUnknown,
		Word: word,
		Rd:   rd(word),
		Rs1:  rs1(word),
		Rs2:  rs2(word),
	}

	switch opcode(word) {
	case opcodeLUI:
		d.decodeUpper(word, &inst, OpLUI)
	case opcodeAUIPC:
		d.decodeUpper(word, &inst, OpAUIPC)
	case opcodeJAL:
		inst.Format = FormatJ
		inst.Op = OpJAL
		inst.Imm = immJ(word)
	case opcodeJALR:
		if funct3(word) == 0 {
			inst.Format = FormatI
			inst.Op = OpJALR
			inst.Imm = immI(word)
		}
	case opcodeBranch:
		d.decodeBranch(word, &inst)
	case opcodeLoad:
		d.decodeLoad(word, &inst)
	case opcodeStore:
		d.decodeStore(word, &inst)
	case opcodeOpImm:
		d.decodeOpImm(word, &inst)
	case opcodeOpImm32:
		d.decodeOpImm32(word, &inst)
	case opcodeOp:
		d.decodeOp(word, &inst)
	case opcodeOp32:
		d.decodeOp32(word, &inst)
	case opcodeMiscMem:
		d.decodeMiscMem(word, &inst)
	case opcodeSystem:
		d.decodeSystem(word, &inst)
	}

	if inst.Op == OpUnknown {
		inst.Format = FormatUnknown
	}

	return inst
}

// decodeUpper decodes LUI and AUIPC.
// Format: imm[31:12] | rd | opcode
func (d *Decoder) decodeUpper(word uint32, inst *Instruction, op Op) {
	inst.Format = FormatU
	inst.Op = op
	inst.Imm = immU(word)
}

var branchOps = [8]Op{
	0b000: OpBEQ,
	0b001: OpBNE,
	0b100: OpBLT,
	0b101: OpBGE,
	0b110: OpBLTU,
	0b111: OpBGEU,
}

// decodeBranch decodes conditional branches.
// Format: imm[12|10:5] | rs2 | rs1 | funct3 | imm[4:1|11] | 1100011
func (d *Decoder) decodeBranch(word uint32, inst *Instruction) {
	inst.Op = branchOps[funct3(word)]
	inst.Format = FormatB
	inst.Imm = immB(word)
}

var loadOps = [8]Op{
	0b000: OpLB,
	0b001: OpLH,
	0b010: OpLW,
	0b011: OpLD,
	0b100: OpLBU,
	0b101: OpLHU,
	0b110: OpLWU,
}

// decodeLoad decodes loads.
// Format: imm[11:0] | rs1 | funct3 | rd | 0000011
func (d *Decoder) decodeLoad(word uint32, inst *Instruction) {
	inst.Op = loadOps[funct3(word)]
	inst.Format = FormatI
	inst.Imm = immI(word)
}

var storeOps = [8]Op{
	0b000: OpSB,
	0b001: OpSH,
	0b010: OpSW,
	0b011: OpSD,
}

// decodeStore decodes stores.
// Format: imm[11:5] | rs2 | rs1 | funct3 | imm[4:0] | 0100011
func (d *Decoder) decodeStore(word uint32, inst *Instruction) {
	inst.Op = storeOps[funct3(word)]
	inst.Format = FormatS
	inst.Imm = immS(word)
}

// decodeOpImm decodes OP-IMM. RV64 shifts take a 6-bit shamt in
// bits [25:20]; bits [31:26] select logical or arithmetic right shift.
func (d *Decoder) decodeOpImm(word uint32, inst *Instruction) {
	inst.Format = FormatI
	inst.Imm = immI(word)

	shamt := int64(word >> 20 & 0x3F)
	high := word >> 26

	switch funct3(word) {
	case 0b000:
		inst.Op = OpADDI
	case 0b010:
		inst.Op = OpSLTI
	case 0b011:
		inst.Op = OpSLTIU
	case 0b100:
		inst.Op = OpXORI
	case 0b110:
		inst.Op = OpORI
	case 0b111:
		inst.Op = OpANDI
	case 0b001:
		if high == 0 {
			inst.Op = OpSLLI
			inst.Imm = shamt
		}
	case 0b101:
		switch high {
		case 0:
			inst.Op = OpSRLI
			inst.Imm = shamt
		case shamtHighArith:
			inst.Op = OpSRAI
			inst.Imm = shamt
		}
	}
}

// decodeOpImm32 decodes OP-IMM-32. Word shifts take a 5-bit shamt.
func (d *Decoder) decodeOpImm32(word uint32, inst *Instruction) {
	inst.Format = FormatI
	inst.Imm = immI(word)

	shamt := int64(rs2(word))

	switch funct3(word) {
	case 0b000:
		inst.Op = OpADDIW
	case 0b001:
		if funct7(word) == funct7Base {
			inst.Op = OpSLLIW
			inst.Imm = shamt
		}
	case 0b101:
		switch funct7(word) {
		case funct7Base:
			inst.Op = OpSRLIW
			inst.Imm = shamt
		case funct7Alt:
			inst.Op = OpSRAIW
			inst.Imm = shamt
		}
	}
}

var (
	opBase = [8]Op{
		0b000: OpADD,
		0b001: OpSLL,
		0b010: OpSLT,
		0b011: OpSLTU,
		0b100: OpXOR,
		0b101: OpSRL,
		0b110: OpOR,
		0b111: OpAND,
	}
	opAlt = [8]Op{
		0b000: OpSUB,
		0b101: OpSRA,
	}
	opMulDiv = [8]Op{
		0b000: OpMUL,
		0b001: OpMULH,
		0b010: OpMULHSU,
		0b011: OpMULHU,
		0b100: OpDIV,
		0b101: OpDIVU,
		0b110: OpREM,
		0b111: OpREMU,
	}
)

// decodeOp decodes OP, dispatching on funct7 then funct3.
// Format: funct7 | rs2 | rs1 | funct3 | rd | 0110011
func (d *Decoder) decodeOp(word uint32, inst *Instruction) {
	inst.Format = FormatR

	f3 := funct3(word)
	switch funct7(word) {
	case funct7Base:
		inst.Op = opBase[f3]
	case funct7Alt:
		inst.Op = opAlt[f3]
	case funct7MulDiv:
		inst.Op = opMulDiv[f3]
	}
}

var (
	op32Base = [8]Op{
		0b000: OpADDW,
		0b001: OpSLLW,
		0b101: OpSRLW,
	}
	op32Alt = [8]Op{
		0b000: OpSUBW,
		0b101: OpSRAW,
	}
	op32MulDiv = [8]Op{
		0b000: OpMULW,
		0b100: OpDIVW,
		0b101: OpDIVUW,
		0b110: OpREMW,
		0b111: OpREMUW,
	}
)

// decodeOp32 decodes OP-32 word operations.
func (d *Decoder) decodeOp32(word uint32, inst *Instruction) {
	inst.Format = FormatR

	f3 := funct3(word)
	switch funct7(word) {
	case funct7Base:
		inst.Op = op32Base[f3]
	case funct7Alt:
		inst.Op = op32Alt[f3]
	case funct7MulDiv:
		inst.Op = op32MulDiv[f3]
	}
}

// decodeMiscMem decodes FENCE and FENCE.I.
// FENCE format: fm | pred | succ | rs1 | 000 | rd | 0001111
func (d *Decoder) decodeMiscMem(word uint32, inst *Instruction) {
	inst.Format = FormatI
	inst.Imm = immI(word)

	switch funct3(word) {
	case 0b000:
		inst.Op = OpFENCE
		inst.FM = uint8(word >> 28)
		inst.Pred = uint8(word >> 24 & 0xF)
		inst.Succ = uint8(word >> 20 & 0xF)
	case 0b001:
		inst.Op = OpFENCEI
	}
}

var csrOps = [8]Op{
	0b001: OpCSRRW,
	0b010: OpCSRRS,
	0b011: OpCSRRC,
	0b101: OpCSRRWI,
	0b110: OpCSRRSI,
	0b111: OpCSRRCI,
}

// decodeSystem decodes ECALL, EBREAK and the CSR instructions. The CSR
// address reuses the I-type immediate slot.
func (d *Decoder) decodeSystem(word uint32, inst *Instruction) {
	inst.Format = FormatI
	inst.Imm = immI(word)

	f3 := funct3(word)
	if f3 != 0 {
		inst.Op = csrOps[f3]
		return
	}

	if inst.Rd != 0 || inst.Rs1 != 0 {
		return
	}

	switch inst.Imm {
	case 0:
		inst.Op = OpECALL
	case 1:
		inst.Op = OpEBREAK
	}
}
