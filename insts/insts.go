// Package insts provides RV64 instruction definitions and decoding.
//
// This package implements decoding of 32-bit RISC-V machine words into
// structured instruction values. It recognizes:
//   - RV64I: loads, stores, branches, jumps, LUI/AUIPC, register and
//     immediate ALU operations and their 32-bit word variants
//   - RV64M: multiply, divide and remainder, including word variants
//   - SYSTEM and MISC-MEM: ECALL, EBREAK, CSR operations, FENCE, FENCE.I
//
// Decoding never fails. Encodings outside the recognized set produce an
// instruction whose Op is OpUnknown.
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst := decoder.Decode(0x00500293) // addi t0, zero, 5
//	fmt.Printf("%v rd=%d rs1=%d imm=%d\n", inst.Op, inst.Rd, inst.Rs1, inst.Imm)
package insts
