package emu

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/rvsim/insts"
)

// execute applies a decoded instruction to the architectural state.
// Sequential instructions leave PC alone; Step advances it afterwards.
func (e *Emulator) execute(inst insts.Instruction) error {
	switch inst.Op {
	case insts.OpLUI:
		e.regFile.WriteReg(inst.Rd, uint64(inst.Imm))
	case insts.OpAUIPC:
		e.regFile.WriteReg(inst.Rd, e.regFile.PC+uint64(inst.Imm))
	case insts.OpJAL:
		return e.transfer(inst, e.branchUnit.JAL(inst.Rd, inst.Imm))
	case insts.OpJALR:
		return e.transfer(inst, e.branchUnit.JALR(inst.Rd, inst.Rs1, inst.Imm))
	case insts.OpBEQ, insts.OpBNE, insts.OpBLT, insts.OpBGE, insts.OpBLTU, insts.OpBGEU:
		_, err := e.branchUnit.Branch(inst.Op, inst.Rs1, inst.Rs2, inst.Imm)
		return e.transfer(inst, err)
	case insts.OpLB, insts.OpLH, insts.OpLW, insts.OpLD, insts.OpLBU, insts.OpLHU, insts.OpLWU:
		return e.executeLoad(inst)
	case insts.OpSB, insts.OpSH, insts.OpSW, insts.OpSD:
		return e.executeStore(inst)
	case insts.OpUnknown, insts.OpFENCE, insts.OpFENCEI, insts.OpECALL, insts.OpEBREAK,
		insts.OpCSRRW, insts.OpCSRRS, insts.OpCSRRC,
		insts.OpCSRRWI, insts.OpCSRRSI, insts.OpCSRRCI:
		return e.notImplemented(inst)
	default:
		var ok bool
		if inst.Format == insts.FormatR {
			ok = e.alu.RegReg(inst.Op, inst.Rd, inst.Rs1, inst.Rs2)
		} else {
			ok = e.alu.RegImm(inst.Op, inst.Rd, inst.Rs1, inst.Imm)
		}
		if !ok {
			return e.notImplemented(inst)
		}
	}

	return nil
}

// transfer turns a failed control transfer into an execution error.
func (e *Emulator) transfer(inst insts.Instruction, err error) error {
	if err != nil {
		return &ExecutionError{Kind: MisalignedTarget, PC: e.regFile.PC, Inst: inst, Err: err}
	}
	return nil
}

func (e *Emulator) executeLoad(inst insts.Instruction) error {
	w, signed, _ := loadKind(inst.Op)
	if err := e.lsu.Load(inst.Rd, inst.Rs1, inst.Imm, w, signed); err != nil {
		return &ExecutionError{Kind: ReadFailed, PC: e.regFile.PC, Inst: inst, Err: err}
	}
	return nil
}

func (e *Emulator) executeStore(inst insts.Instruction) error {
	w, _ := storeWidth(inst.Op)
	if err := e.lsu.Store(inst.Rs1, inst.Rs2, inst.Imm, w); err != nil {
		return &ExecutionError{Kind: WriteFailed, PC: e.regFile.PC, Inst: inst, Err: err}
	}

	if levelEnabled(e.logger, logrus.TraceLevel) {
		e.logger.WithFields(logrus.Fields{
			"addr":  fmt.Sprintf("0x%X", e.lsu.EffectiveAddress(inst.Rs1, inst.Imm)),
			"width": int(w),
			"value": fmt.Sprintf("0x%X", e.regFile.ReadReg(inst.Rs2)&w.mask()),
		}).Trace("bus write")
	}

	return nil
}

func (e *Emulator) notImplemented(inst insts.Instruction) error {
	return &ExecutionError{Kind: NotImplemented, PC: e.regFile.PC, Inst: inst}
}
