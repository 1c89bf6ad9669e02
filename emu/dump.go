package emu

import (
	"fmt"
	"io"
	"strings"

	"github.com/sarchlab/rvsim/insts"
)

const regsPerRow = 8

// DumpRegisters writes x0-x31 by ABI name as signed decimals, eight per row.
func (e *Emulator) DumpRegisters(w io.Writer) error {
	regs := e.Registers()

	var sb strings.Builder
	for i, value := range regs {
		fmt.Fprintf(&sb, "%6s = %-20d", insts.RegNames[i], int64(value))
		if (i+1)%regsPerRow == 0 {
			sb.WriteString("\n")
		} else {
			sb.WriteString(" ")
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// DumpState writes the program counter, run state and registers.
func (e *Emulator) DumpState(w io.Writer) error {
	state := "running"
	if !e.running {
		state = "halted"
	}

	_, err := fmt.Fprintf(w, "pc = 0x%016X  state = %s  instructions = %d\n",
		e.regFile.PC, state, e.instructionCount)
	if err != nil {
		return err
	}
	if e.err != nil {
		if _, err := fmt.Fprintf(w, "error: %v\n", e.err); err != nil {
			return err
		}
	}

	return e.DumpRegisters(w)
}

// DumpMemory writes a hex dump of n bytes starting at addr, sixteen bytes
// per row.
func (e *Emulator) DumpMemory(w io.Writer, addr uint64, n int) error {
	data, err := e.ReadMemory(addr, n)
	if err != nil {
		return err
	}

	for off := 0; off < len(data); off += 16 {
		row := data[off:min(off+16, len(data))]

		var sb strings.Builder
		fmt.Fprintf(&sb, "0x%016X:", addr+uint64(off))
		for _, b := range row {
			fmt.Fprintf(&sb, " %02x", b)
		}
		sb.WriteString(strings.Repeat("   ", 16-len(row)))
		sb.WriteString("  |")
		for _, b := range row {
			if b >= 0x20 && b < 0x7F {
				sb.WriteByte(b)
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteString("|\n")

		if _, err := io.WriteString(w, sb.String()); err != nil {
			return err
		}
	}

	return nil
}

// Disassemble decodes count instruction words starting at addr. It stops at
// the first word that cannot be read and returns what was decoded so far
// together with the error.
func (e *Emulator) Disassemble(addr uint64, count int) ([]insts.Instruction, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLength, count)
	}

	out := make([]insts.Instruction, 0, min(uint64(count), e.bus.available(addr)/InstructionSize))
	for i := 0; i < count; i++ {
		word, err := e.bus.Read(addr+uint64(i)*InstructionSize, Width32)
		if err != nil {
			return out, err
		}
		out = append(out, e.decoder.Decode(uint32(word)))
	}
	return out, nil
}
