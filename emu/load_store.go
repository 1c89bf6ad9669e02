package emu

import "github.com/sarchlab/rvsim/insts"

// LoadStoreUnit implements RV64I load and store operations.
type LoadStoreUnit struct {
	regFile *RegFile
	bus     *Bus
}

// NewLoadStoreUnit creates a new LoadStoreUnit connected to the given
// register file and bus.
func NewLoadStoreUnit(regFile *RegFile, bus *Bus) *LoadStoreUnit {
	return &LoadStoreUnit{
		regFile: regFile,
		bus:     bus,
	}
}

// EffectiveAddress returns rs1 + imm with wrapping arithmetic.
func (lsu *LoadStoreUnit) EffectiveAddress(rs1 uint8, imm int64) uint64 {
	return lsu.regFile.ReadReg(rs1) + uint64(imm)
}

// Load performs rd = extend(mem[rs1 + imm]). On failure rd is unchanged.
func (lsu *LoadStoreUnit) Load(rd, rs1 uint8, imm int64, w Width, signed bool) error {
	value, err := lsu.bus.Read(lsu.EffectiveAddress(rs1, imm), w)
	if err != nil {
		return err
	}

	if signed {
		value = signExtend(value, w)
	}
	lsu.regFile.WriteReg(rd, value)

	return nil
}

// Store performs mem[rs1 + imm] = low w bits of rs2.
func (lsu *LoadStoreUnit) Store(rs1, rs2 uint8, imm int64, w Width) error {
	value := lsu.regFile.ReadReg(rs2) & w.mask()
	return lsu.bus.Write(lsu.EffectiveAddress(rs1, imm), w, value)
}

// loadKind returns the access width and signedness of a load operation.
func loadKind(op insts.Op) (w Width, signed bool, ok bool) {
	switch op {
	case insts.OpLB:
		return Width8, true, true
	case insts.OpLH:
		return Width16, true, true
	case insts.OpLW:
		return Width32, true, true
	case insts.OpLD:
		return Width64, false, true
	case insts.OpLBU:
		return Width8, false, true
	case insts.OpLHU:
		return Width16, false, true
	case insts.OpLWU:
		return Width32, false, true
	}
	return 0, false, false
}

// storeWidth returns the access width of a store operation.
func storeWidth(op insts.Op) (Width, bool) {
	switch op {
	case insts.OpSB:
		return Width8, true
	case insts.OpSH:
		return Width16, true
	case insts.OpSW:
		return Width32, true
	case insts.OpSD:
		return Width64, true
	}
	return 0, false
}

func signExtend(value uint64, w Width) uint64 {
	shift := 64 - uint(w)
	return uint64(int64(value<<shift) >> shift)
}
