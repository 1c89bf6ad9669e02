package loader

import (
	"bytes"
	"debug/elf"
	"fmt"
	"os"
)

// Image is a program ready to be copied into memory at a base address.
type Image struct {
	// Data is placed at the base address.
	Data []byte
	// Entry is the initial program counter.
	Entry uint64
	// IsELF is true if the image was built from an ELF executable.
	IsELF bool
}

// Load reads the program at path. ELF files are flattened relative to
// base and start at their entry point; any other file is a raw image that
// starts at base. Either kind must fit in memSize bytes.
func Load(path string, base, memSize uint64) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	if !bytes.HasPrefix(data, []byte(elf.ELFMAG)) {
		if uint64(len(data)) > memSize {
			return nil, fmt.Errorf("image of %d bytes does not fit in %d bytes of memory",
				len(data), memSize)
		}
		return &Image{Data: data, Entry: base}, nil
	}

	prog, err := LoadELF(path)
	if err != nil {
		return nil, err
	}

	flat, err := prog.Flatten(base, memSize)
	if err != nil {
		return nil, err
	}

	return &Image{Data: flat, Entry: prog.EntryPoint, IsELF: true}, nil
}
