package emu

import (
	"fmt"

	"github.com/sarchlab/rvsim/insts"
)

// InstructionSize is the size of an instruction in bytes.
const InstructionSize = 4

// BranchUnit implements RV64I jumps and conditional branches.
//
// The emulator advances PC by InstructionSize after every successful
// instruction, so a taken transfer leaves PC at target - InstructionSize.
// A transfer to a target that is not instruction aligned fails with
// ErrMisalignedTarget and changes no state.
type BranchUnit struct {
	regFile *RegFile
}

// NewBranchUnit creates a new BranchUnit connected to the given register file.
func NewBranchUnit(regFile *RegFile) *BranchUnit {
	return &BranchUnit{regFile: regFile}
}

func (b *BranchUnit) redirect(target uint64) error {
	if target%InstructionSize != 0 {
		return fmt.Errorf("target 0x%X: %w", target, ErrMisalignedTarget)
	}
	b.regFile.PC = target - InstructionSize
	return nil
}

// link jumps to target and then writes the return address to rd.
func (b *BranchUnit) link(rd uint8, target uint64) error {
	ret := b.regFile.PC + InstructionSize
	if err := b.redirect(target); err != nil {
		return err
	}
	b.regFile.WriteReg(rd, ret)
	return nil
}

// JAL performs rd = PC + 4 and jumps to PC + offset.
func (b *BranchUnit) JAL(rd uint8, offset int64) error {
	return b.link(rd, b.regFile.PC+uint64(offset))
}

// JALR performs rd = PC + 4 and jumps to (rs1 + offset) with bit 0 cleared.
// The target is computed before rd is written, so rd == rs1 is safe.
func (b *BranchUnit) JALR(rd, rs1 uint8, offset int64) error {
	return b.link(rd, (b.regFile.ReadReg(rs1)+uint64(offset))&^1)
}

// Branch jumps to PC + offset if the condition of op holds for rs1 and rs2.
// It returns whether the branch was taken.
func (b *BranchUnit) Branch(op insts.Op, rs1, rs2 uint8, offset int64) (bool, error) {
	if !CheckCondition(op, b.regFile.ReadReg(rs1), b.regFile.ReadReg(rs2)) {
		return false, nil
	}
	if err := b.redirect(b.regFile.PC + uint64(offset)); err != nil {
		return false, err
	}
	return true, nil
}

// CheckCondition evaluates the comparison of a conditional branch.
func CheckCondition(op insts.Op, a, c uint64) bool {
	switch op {
	case insts.OpBEQ:
		return a == c
	case insts.OpBNE:
		return a != c
	case insts.OpBLT:
		return int64(a) < int64(c)
	case insts.OpBGE:
		return int64(a) >= int64(c)
	case insts.OpBLTU:
		return a < c
	case insts.OpBGEU:
		return a >= c
	}
	return false
}
