package emu

import "fmt"

// DRAM is a byte-addressable backing store.
//
// Byte access is the primitive. A 16, 32 or 64-bit access is built from two
// half-width accesses, the low half at offset and the high half at
// offset+bytes/2. If the high half of a write fails, the low half has
// already been stored: multi-byte writes are not atomic.
type DRAM struct {
	data []byte
}

// NewDRAM creates a DRAM of the given size with image copied to offset 0.
// The remaining bytes are zero.
func NewDRAM(size uint64, image []byte) (*DRAM, error) {
	if uint64(len(image)) > size {
		return nil, fmt.Errorf("image of %d bytes does not fit in %d bytes of memory",
			len(image), size)
	}

	data := make([]byte, size)
	copy(data, image)

	return &DRAM{data: data}, nil
}

// Size returns the size of the DRAM in bytes.
func (d *DRAM) Size() uint64 {
	return uint64(len(d.data))
}

// Read reads a little-endian value of width w at offset.
func (d *DRAM) Read(offset uint64, w Width) (uint64, error) {
	switch w {
	case Width8:
		if offset >= d.Size() {
			return 0, ErrOutOfRange
		}
		return uint64(d.data[offset]), nil
	case Width16, Width32, Width64:
		half := w / 2
		lo, err := d.Read(offset, half)
		if err != nil {
			return 0, err
		}
		hi, err := d.Read(offset+half.Bytes(), half)
		if err != nil {
			return 0, err
		}
		return lo | hi<<half, nil
	default:
		return 0, ErrInvalidWidth
	}
}

// Write stores the low w bits of value at offset, little-endian.
func (d *DRAM) Write(offset uint64, w Width, value uint64) error {
	switch w {
	case Width8:
		if offset >= d.Size() {
			return ErrOutOfRange
		}
		d.data[offset] = byte(value)
		return nil
	case Width16, Width32, Width64:
		half := w / 2
		if err := d.Write(offset, half, value); err != nil {
			return err
		}
		return d.Write(offset+half.Bytes(), half, value>>half)
	default:
		return ErrInvalidWidth
	}
}
