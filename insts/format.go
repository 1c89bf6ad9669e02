package insts

import (
	"fmt"
	"strings"
)

// RegNames holds the ABI names of the integer registers.
var RegNames = [32]string{
	"zero", "ra", "sp", "gp",
	"tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1",
	"a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3",
	"s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11",
	"t3", "t4", "t5", "t6",
}

var opNames = [numOps]string{
	OpUnknown: "unknown",
	OpLUI:     "lui",
	OpAUIPC:   "auipc",
	OpJAL:     "jal",
	OpJALR:    "jalr",
	OpBEQ:     "beq",
	OpBNE:     "bne",
	OpBLT:     "blt",
	OpBGE:     "bge",
	OpBLTU:    "bltu",
	OpBGEU:    "bgeu",
	OpLB:      "lb",
	OpLH:      "lh",
	OpLW:      "lw",
	OpLD:      "ld",
	OpLBU:     "lbu",
	OpLHU:     "lhu",
	OpLWU:     "lwu",
	OpSB:      "sb",
	OpSH:      "sh",
	OpSW:      "sw",
	OpSD:      "sd",
	OpADDI:    "addi",
	OpSLTI:    "slti",
	OpSLTIU:   "sltiu",
	OpXORI:    "xori",
	OpORI:     "ori",
	OpANDI:    "andi",
	OpSLLI:    "slli",
	OpSRLI:    "srli",
	OpSRAI:    "srai",
	OpADD:     "add",
	OpSUB:     "sub",
	OpSLL:     "sll",
	OpSLT:     "slt",
	OpSLTU:    "sltu",
	OpXOR:     "xor",
	OpSRL:     "srl",
	OpSRA:     "sra",
	OpOR:      "or",
	OpAND:     "and",
	OpADDIW:   "addiw",
	OpSLLIW:   "slliw",
	OpSRLIW:   "srliw",
	OpSRAIW:   "sraiw",
	OpADDW:    "addw",
	OpSUBW:    "subw",
	OpSLLW:    "sllw",
	OpSRLW:    "srlw",
	OpSRAW:    "sraw",
	OpMUL:     "mul",
	OpMULH:    "mulh",
	OpMULHSU:  "mulhsu",
	OpMULHU:   "mulhu",
	OpDIV:     "div",
	OpDIVU:    "divu",
	OpREM:     "rem",
	OpREMU:    "remu",
	OpMULW:    "mulw",
	OpDIVW:    "divw",
	OpDIVUW:   "divuw",
	OpREMW:    "remw",
	OpREMUW:   "remuw",
	OpFENCE:   "fence",
	OpFENCEI:  "fence.i",
	OpECALL:   "ecall",
	OpEBREAK:  "ebreak",
	OpCSRRW:   "csrrw",
	OpCSRRS:   "csrrs",
	OpCSRRC:   "csrrc",
	OpCSRRWI:  "csrrwi",
	OpCSRRSI:  "csrrsi",
	OpCSRRCI:  "csrrci",
}

// String returns the assembler mnemonic of the operation.
func (op Op) String() string {
	if op >= numOps {
		return fmt.Sprintf("Op(%d)", uint16(op))
	}
	return opNames[op]
}

// String renders the instruction in assembler syntax with ABI register names.
func (i Instruction) String() string {
	rd, rs1, rs2 := RegNames[i.Rd&0x1F], RegNames[i.Rs1&0x1F], RegNames[i.Rs2&0x1F]

	switch i.Op {
	case OpUnknown:
		return fmt.Sprintf("unknown 0x%08x", i.Word)
	case OpLUI, OpAUIPC:
		return fmt.Sprintf("%v %s, 0x%x", i.Op, rd, uint64(i.Imm)>>12&0xFFFFF)
	case OpJAL:
		return fmt.Sprintf("%v %s, %d", i.Op, rd, i.Imm)
	case OpJALR, OpLB, OpLH, OpLW, OpLD, OpLBU, OpLHU, OpLWU:
		return fmt.Sprintf("%v %s, %d(%s)", i.Op, rd, i.Imm, rs1)
	case OpSB, OpSH, OpSW, OpSD:
		return fmt.Sprintf("%v %s, %d(%s)", i.Op, rs2, i.Imm, rs1)
	case OpBEQ, OpBNE, OpBLT, OpBGE, OpBLTU, OpBGEU:
		return fmt.Sprintf("%v %s, %s, %d", i.Op, rs1, rs2, i.Imm)
	case OpFENCE:
		return fmt.Sprintf("%v %s, %s", i.Op, fenceSet(i.Pred), fenceSet(i.Succ))
	case OpFENCEI, OpECALL, OpEBREAK:
		return i.Op.String()
	case OpCSRRW, OpCSRRS, OpCSRRC:
		return fmt.Sprintf("%v %s, %s, %s", i.Op, rd, i.csrString(), rs1)
	case OpCSRRWI, OpCSRRSI, OpCSRRCI:
		return fmt.Sprintf("%v %s, %s, %d", i.Op, rd, i.csrString(), i.Rs1)
	}

	if i.Format == FormatR {
		return fmt.Sprintf("%v %s, %s, %s", i.Op, rd, rs1, rs2)
	}
	return fmt.Sprintf("%v %s, %s, %d", i.Op, rd, rs1, i.Imm)
}

func (i Instruction) csrString() string {
	if name, ok := CSRName(i.CSR()); ok {
		return name
	}
	return fmt.Sprintf("0x%03x", i.CSR())
}

// fenceSet renders a fence predecessor/successor set, e.g. "iorw".
func fenceSet(bits uint8) string {
	var sb strings.Builder
	for n, c := range "iorw" {
		if bits&(0x8>>n) != 0 {
			sb.WriteRune(c)
		}
	}
	if sb.Len() == 0 {
		return "0"
	}
	return sb.String()
}
