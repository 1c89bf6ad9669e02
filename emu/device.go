package emu

// Width is the size of a memory access in bits.
type Width uint8

// Access widths.
const (
	Width8  Width = 8
	Width16 Width = 16
	Width32 Width = 32
	Width64 Width = 64
)

// Bytes returns the number of bytes covered by the access.
func (w Width) Bytes() uint64 {
	return uint64(w) / 8
}

// Valid reports whether w is one of the supported access widths.
func (w Width) Valid() bool {
	switch w {
	case Width8, Width16, Width32, Width64:
		return true
	}
	return false
}

// mask returns a value with the low w bits set.
func (w Width) mask() uint64 {
	if w >= Width64 {
		return ^uint64(0)
	}
	return uint64(1)<<w - 1
}

// Device is a memory-mapped target on the bus. Offsets are relative to the
// start of the region the device is mapped at.
type Device interface {
	// Read returns the little-endian value of the given width at offset.
	Read(offset uint64, w Width) (uint64, error)
	// Write stores the low w bits of value at offset, little-endian.
	Write(offset uint64, w Width, value uint64) error
	// Size returns the number of addressable bytes.
	Size() uint64
}
