// Package loader reads program images for the RV64 emulator, either raw
// binaries or RISC-V ELF64 executables.
package loader

import (
	"debug/elf"
	"fmt"
	"io"
)

// SegmentFlags represents memory protection flags for a segment.
type SegmentFlags uint32

const (
	// SegmentFlagExecute indicates the segment is executable.
	SegmentFlagExecute SegmentFlags = 1 << iota
	// SegmentFlagWrite indicates the segment is writable.
	SegmentFlagWrite
	// SegmentFlagRead indicates the segment is readable.
	SegmentFlagRead
)

// Segment represents a loadable segment from an ELF binary.
type Segment struct {
	// VirtAddr is the address where this segment should be loaded.
	VirtAddr uint64
	// Data contains the segment contents from the file.
	Data []byte
	// MemSize is the size in memory (may be larger than len(Data) for BSS).
	MemSize uint64
	// Flags contains the segment protection flags.
	Flags SegmentFlags
}

// Program represents the loadable contents of an ELF executable.
type Program struct {
	// EntryPoint is the address where execution should begin.
	EntryPoint uint64
	// Segments contains all loadable segments from the ELF file.
	Segments []Segment
}

// LoadELF parses a RISC-V ELF64 executable.
func LoadELF(path string) (*Program, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ELF file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if f.Class != elf.ELFCLASS64 {
		return nil, fmt.Errorf("not a 64-bit ELF file")
	}
	if f.Machine != elf.EM_RISCV {
		return nil, fmt.Errorf("not a RISC-V ELF file (machine type: %v)", f.Machine)
	}
	if f.Data != elf.ELFDATA2LSB {
		return nil, fmt.Errorf("not a little-endian ELF file")
	}

	prog := &Program{EntryPoint: f.Entry}

	for _, phdr := range f.Progs {
		if phdr.Type != elf.PT_LOAD {
			continue
		}

		// Reads stop at the end of the file whatever p_filesz claims.
		data, err := io.ReadAll(phdr.Open())
		if err != nil {
			return nil, fmt.Errorf("failed to read segment at 0x%x: %w", phdr.Vaddr, err)
		}
		if uint64(len(data)) != phdr.Filesz {
			return nil, fmt.Errorf("short read for segment at 0x%x: got %d bytes, expected %d",
				phdr.Vaddr, len(data), phdr.Filesz)
		}

		var flags SegmentFlags
		if phdr.Flags&elf.PF_X != 0 {
			flags |= SegmentFlagExecute
		}
		if phdr.Flags&elf.PF_W != 0 {
			flags |= SegmentFlagWrite
		}
		if phdr.Flags&elf.PF_R != 0 {
			flags |= SegmentFlagRead
		}

		prog.Segments = append(prog.Segments, Segment{
			VirtAddr: phdr.Vaddr,
			Data:     data,
			MemSize:  phdr.Memsz,
			Flags:    flags,
		})
	}

	return prog, nil
}

// Flatten lays the segments out in one byte slice that starts at base.
// BSS tails are zero. Segments below base or reaching past memSize bytes
// from base are rejected.
func (p *Program) Flatten(base, memSize uint64) ([]byte, error) {
	var end uint64
	for _, seg := range p.Segments {
		if seg.VirtAddr < base {
			return nil, fmt.Errorf("segment at 0x%x lies below base 0x%x", seg.VirtAddr, base)
		}

		offset := seg.VirtAddr - base
		size := max(seg.MemSize, uint64(len(seg.Data)))
		if size > memSize || offset > memSize-size {
			return nil, fmt.Errorf("segment at 0x%x (%d bytes) does not fit in %d bytes of memory at 0x%x",
				seg.VirtAddr, size, memSize, base)
		}
		end = max(end, offset+size)
	}

	image := make([]byte, end)
	for _, seg := range p.Segments {
		copy(image[seg.VirtAddr-base:], seg.Data)
	}

	return image, nil
}
