// Package emu provides functional RV64 emulation.
package emu

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/rvsim/insts"
)

// ErrInstructionLimit is returned when the instruction budget set with
// WithMaxInstructions is used up. The CPU stays running.
var ErrInstructionLimit = errors.New("max instructions reached")

// StepResult represents the result of executing a single instruction.
type StepResult struct {
	// PC is the address the instruction was fetched from.
	PC uint64

	// Inst is the decoded instruction. It is zero if the fetch failed.
	Inst insts.Instruction

	// Halted is true if the CPU is no longer running after this step.
	Halted bool

	// Err is set if an error occurred during the step.
	Err error
}

// RunResult summarizes a call to Run.
type RunResult struct {
	// Steps is the number of instructions executed by this call.
	Steps uint64

	// Halted is true if the CPU stopped running.
	Halted bool

	// Err is the error that ended the run: the halting error, the
	// instruction limit or the context error.
	Err error
}

// Emulator executes RV64 instructions functionally.
type Emulator struct {
	regFile *RegFile
	bus     *Bus
	decoder *insts.Decoder

	// Execution units
	alu        *ALU
	lsu        *LoadStoreUnit
	branchUnit *BranchUnit

	logger logrus.FieldLogger

	base        uint64
	entry       uint64
	hasEntry    bool
	deviceLayer []func(Device) Device

	// Execution state
	running          bool
	err              error
	instructionCount uint64
	maxInstructions  uint64 // 0 means no limit
}

// EmulatorOption is a functional option for configuring the Emulator.
type EmulatorOption func(*Emulator)

// WithLogger sets the logger used for tracing. By default nothing is logged.
func WithLogger(logger logrus.FieldLogger) EmulatorOption {
	return func(e *Emulator) {
		e.logger = logger
	}
}

// WithBase sets the address memory is mapped at. The default is DRAMBase.
func WithBase(base uint64) EmulatorOption {
	return func(e *Emulator) {
		e.base = base
	}
}

// WithEntryPoint sets the initial program counter. The default is the base
// address.
func WithEntryPoint(pc uint64) EmulatorOption {
	return func(e *Emulator) {
		e.entry = pc
		e.hasEntry = true
	}
}

// WithMaxInstructions sets the maximum number of instructions to execute.
func WithMaxInstructions(max uint64) EmulatorOption {
	return func(e *Emulator) {
		e.maxInstructions = max
	}
}

// WithDeviceLayer wraps the memory device before it is mapped on the bus.
// Layers are applied in order, so the last one is outermost.
func WithDeviceLayer(layer func(Device) Device) EmulatorOption {
	return func(e *Emulator) {
		e.deviceLayer = append(e.deviceLayer, layer)
	}
}

// NewEmulator creates an emulator with memSize bytes of memory holding image
// at the base address. The program counter starts at the base address and
// the stack pointer at base + memSize.
func NewEmulator(image []byte, memSize uint64, opts ...EmulatorOption) (*Emulator, error) {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	e := &Emulator{
		regFile: &RegFile{},
		decoder: insts.NewDecoder(),
		logger:  discard,
		base:    DRAMBase,
		running: true,
	}

	for _, opt := range opts {
		opt(e)
	}

	dram, err := NewDRAM(memSize, image)
	if err != nil {
		return nil, fmt.Errorf("creating memory: %w", err)
	}

	var device Device = dram
	for _, layer := range e.deviceLayer {
		device = layer(device)
	}
	e.bus = NewBus(e.base, device)

	e.regFile.PC = e.base
	if e.hasEntry {
		if e.entry%InstructionSize != 0 {
			return nil, fmt.Errorf("entry point 0x%X is not aligned to %d bytes",
				e.entry, InstructionSize)
		}
		e.regFile.PC = e.entry
	}
	e.regFile.WriteReg(RegSP, e.base+memSize)

	// Create execution units
	e.alu = NewALU(e.regFile)
	e.lsu = NewLoadStoreUnit(e.regFile, e.bus)
	e.branchUnit = NewBranchUnit(e.regFile)

	return e, nil
}

// IsRunning reports whether the CPU has not halted.
func (e *Emulator) IsRunning() bool {
	return e.running
}

// Err returns the error that halted the CPU, or nil while running.
func (e *Emulator) Err() error {
	return e.err
}

// PC returns the program counter.
func (e *Emulator) PC() uint64 {
	return e.regFile.PC
}

// Registers returns a copy of x0-x31.
func (e *Emulator) Registers() [NumRegs]uint64 {
	return e.regFile.Snapshot()
}

// ReadMemory returns length bytes of memory starting at addr.
func (e *Emulator) ReadMemory(addr uint64, length int) ([]byte, error) {
	return e.bus.ReadBytes(addr, length)
}

// InstructionCount returns the number of instructions executed.
func (e *Emulator) InstructionCount() uint64 {
	return e.instructionCount
}

// Step executes a single instruction. It does nothing once the CPU has
// halted.
func (e *Emulator) Step() StepResult {
	if !e.running {
		return StepResult{PC: e.regFile.PC, Halted: true, Err: e.err}
	}

	// Check instruction limit before executing
	if e.maxInstructions > 0 && e.instructionCount >= e.maxInstructions {
		return StepResult{PC: e.regFile.PC, Err: ErrInstructionLimit}
	}

	pc := e.regFile.PC

	// 1. Fetch
	value, err := e.bus.Read(pc, Width32)
	if err != nil {
		return e.halt(StepResult{PC: pc}, &FetchError{PC: pc, Err: err})
	}
	word := uint32(value)

	// 2. Decode
	inst := e.decoder.Decode(word)
	if levelEnabled(e.logger, logrus.DebugLevel) {
		e.logger.WithFields(logrus.Fields{
			"pc":   fmt.Sprintf("0x%X", pc),
			"word": fmt.Sprintf("0x%08X", word),
			"inst": inst.String(),
		}).Debug("step")
	}

	// 3. Execute
	result := StepResult{PC: pc, Inst: inst}
	if err := e.execute(inst); err != nil {
		return e.halt(result, err)
	}

	e.regFile.PC += InstructionSize
	e.instructionCount++

	return result
}

// Run steps until the CPU halts, the instruction limit is reached or ctx is
// done. The context is checked between instructions.
func (e *Emulator) Run(ctx context.Context) RunResult {
	var steps uint64
	for {
		if err := ctx.Err(); err != nil {
			return RunResult{Steps: steps, Halted: !e.running, Err: err}
		}

		before := e.instructionCount
		result := e.Step()
		steps += e.instructionCount - before
		if result.Err != nil {
			return RunResult{Steps: steps, Halted: result.Halted, Err: result.Err}
		}
	}
}

func (e *Emulator) halt(result StepResult, err error) StepResult {
	e.running = false
	e.err = err
	e.logger.WithError(err).WithField("pc", fmt.Sprintf("0x%X", result.PC)).
		Warn("cpu halted")

	result.Halted = true
	result.Err = err
	return result
}

// levelEnabled reports whether logger emits entries at level. Loggers of
// unknown type are assumed to.
func levelEnabled(logger logrus.FieldLogger, level logrus.Level) bool {
	switch l := logger.(type) {
	case *logrus.Logger:
		return l.IsLevelEnabled(level)
	case *logrus.Entry:
		return l.Logger.IsLevelEnabled(level)
	}
	return true
}
