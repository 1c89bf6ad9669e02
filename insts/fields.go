package insts

// Major opcodes, bits [6:0].
const (
	opcodeLoad     = 0x03
	opcodeMiscMem  = 0x0F
	opcodeOpImm    = 0x13
	opcodeAUIPC    = 0x17
	opcodeOpImm32  = 0x1B
	opcodeStore    = 0x23
	opcodeOp       = 0x33
	opcodeLUI      = 0x37
	opcodeOp32     = 0x3B
	opcodeBranch   = 0x63
	opcodeJALR     = 0x67
	opcodeJAL      = 0x6F
	opcodeSystem   = 0x73
	funct7Base     = 0x00
	funct7Alt      = 0x20
	funct7MulDiv   = 0x01
	shamtHighArith = 0x10 // imm[11:6] of SRAI
)

// Register and function fields share the same position in every format
// that carries them.
func opcode(word uint32) uint32 { return word & 0x7F }
func rd(word uint32) uint8      { return uint8(word >> 7 & 0x1F) }
func funct3(word uint32) uint32 { return word >> 12 & 0x7 }
func rs1(word uint32) uint8     { return uint8(word >> 15 & 0x1F) }
func rs2(word uint32) uint8     { return uint8(word >> 20 & 0x1F) }
func funct7(word uint32) uint32 { return word >> 25 }

// immI returns bits [31:20] sign-extended to 64 bits.
func immI(word uint32) int64 {
	return int64(int32(word) >> 20)
}

// immS returns bits [31:25] concatenated with bits [11:7], sign-extended.
func immS(word uint32) int64 {
	return int64(int32(word&0xFE000000)>>20) | int64(word>>7&0x1F)
}

// immB rebuilds the branch offset from the S-type bit pattern. Bit 0 of the
// S pattern holds imm[11]; the offset itself is always even.
func immB(word uint32) int64 {
	s := immS(word)
	b := s &^ 1
	b &^= 1 << 11
	return b | (s&1)<<11
}

// immU returns bits [31:12] in place with the low 12 bits cleared.
func immU(word uint32) int64 {
	return int64(int32(word & 0xFFFFF000))
}

// immJ reassembles the JAL offset and sign-extends it from imm[20].
func immJ(word uint32) int64 {
	imm := (word>>21&0x3FF)<<1 |
		(word>>20&0x1)<<11 |
		(word>>12&0xFF)<<12 |
		(word>>31)<<20
	return int64(int32(imm<<11) >> 11)
}
