package emu

import "fmt"

// DRAMBase is the default address the memory is mapped at.
const DRAMBase uint64 = 0x8000_0000

// DefaultMemorySize is the default size of the mapped memory (1 MiB).
const DefaultMemorySize uint64 = 1024 * 1024

// Bus maps the address range [base, base+size) onto a single device.
// Accesses outside the range fail with an *AddressError.
type Bus struct {
	base   uint64
	device Device
}

// NewBus creates a bus that maps device at base.
func NewBus(base uint64, device Device) *Bus {
	return &Bus{base: base, device: device}
}

// Base returns the first mapped address.
func (b *Bus) Base() uint64 {
	return b.base
}

// Size returns the number of mapped bytes.
func (b *Bus) Size() uint64 {
	return b.device.Size()
}

// Contains reports whether addr is mapped.
func (b *Bus) Contains(addr uint64) bool {
	return addr >= b.base && addr-b.base < b.device.Size()
}

// Read reads a value of width w at addr.
func (b *Bus) Read(addr uint64, w Width) (uint64, error) {
	if addr < b.base {
		return 0, &AddressError{Addr: addr, Width: w, Err: ErrOutOfRange}
	}

	value, err := b.device.Read(addr-b.base, w)
	if err != nil {
		return 0, &AddressError{Addr: addr, Width: w, Err: err}
	}

	return value, nil
}

// Write stores the low w bits of value at addr. A failing multi-byte write
// may have stored part of the value.
func (b *Bus) Write(addr uint64, w Width, value uint64) error {
	if addr < b.base {
		return &AddressError{Addr: addr, Width: w, Write: true, Err: ErrOutOfRange}
	}

	if err := b.device.Write(addr-b.base, w, value); err != nil {
		return &AddressError{Addr: addr, Width: w, Write: true, Err: err}
	}

	return nil
}

// ReadBytes reads n consecutive bytes starting at addr. A range that runs
// past the mapped region fails before anything is read.
func (b *Bus) ReadBytes(addr uint64, n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLength, n)
	}
	if n == 0 {
		return []byte{}, nil
	}

	if avail := b.available(addr); uint64(n) > avail {
		return nil, &AddressError{Addr: addr + avail, Width: Width8, Err: ErrOutOfRange}
	}

	data := make([]byte, n)
	for i := range data {
		v, err := b.Read(addr+uint64(i), Width8)
		if err != nil {
			return nil, err
		}
		data[i] = byte(v)
	}
	return data, nil
}

// available returns the number of mapped bytes from addr to the end of the
// region.
func (b *Bus) available(addr uint64) uint64 {
	if !b.Contains(addr) {
		return 0
	}
	return b.device.Size() - (addr - b.base)
}
