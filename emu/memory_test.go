package emu_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvsim/emu"
)

var _ = Describe("DRAM", func() {
	It("should reject an image larger than the memory", func() {
		_, err := emu.NewDRAM(4, make([]byte, 5))
		Expect(err).To(HaveOccurred())
	})

	It("should hold the image at offset 0 and zero beyond", func() {
		dram, err := emu.NewDRAM(8, []byte{0x11, 0x22, 0x33})
		Expect(err).NotTo(HaveOccurred())

		Expect(dram.Size()).To(Equal(uint64(8)))
		Expect(dram.Read(0, emu.Width32)).To(Equal(uint64(0x00332211)))
		Expect(dram.Read(4, emu.Width32)).To(Equal(uint64(0)))
	})

	It("should compose wide accesses little-endian", func() {
		dram, _ := emu.NewDRAM(16, nil)

		Expect(dram.Write(3, emu.Width64, 0x0102030405060708)).To(Succeed())

		Expect(dram.Read(3, emu.Width8)).To(Equal(uint64(0x08)))
		Expect(dram.Read(3, emu.Width16)).To(Equal(uint64(0x0708)))
		Expect(dram.Read(5, emu.Width32)).To(Equal(uint64(0x03040506)))
		Expect(dram.Read(10, emu.Width8)).To(Equal(uint64(0x01)))
	})

	It("should store only the low bits of the value", func() {
		dram, _ := emu.NewDRAM(4, nil)

		Expect(dram.Write(0, emu.Width16, 0xAABBCCDD)).To(Succeed())

		Expect(dram.Read(0, emu.Width32)).To(Equal(uint64(0xCCDD)))
	})

	It("should fail an access that runs past the end", func() {
		dram, _ := emu.NewDRAM(8, nil)

		_, err := dram.Read(1, emu.Width64)
		Expect(err).To(MatchError(emu.ErrOutOfRange))
	})

	It("should keep the low half of a write that fails in the high half", func() {
		dram, _ := emu.NewDRAM(8, nil)

		err := dram.Write(6, emu.Width32, 0xAABBCCDD)

		Expect(err).To(MatchError(emu.ErrOutOfRange))
		Expect(dram.Read(6, emu.Width16)).To(Equal(uint64(0xCCDD)))
	})

	It("should reject invalid widths", func() {
		dram, _ := emu.NewDRAM(8, nil)

		_, err := dram.Read(0, emu.Width(12))
		Expect(err).To(MatchError(emu.ErrInvalidWidth))
		Expect(dram.Write(0, emu.Width(0), 1)).To(MatchError(emu.ErrInvalidWidth))
	})
})

var _ = Describe("Bus", func() {
	const (
		base = emu.DRAMBase
		size = 64
	)

	var bus *emu.Bus

	BeforeEach(func() {
		dram, err := emu.NewDRAM(size, nil)
		Expect(err).NotTo(HaveOccurred())
		bus = emu.NewBus(base, dram)
	})

	It("should report its mapping", func() {
		Expect(bus.Base()).To(Equal(base))
		Expect(bus.Size()).To(Equal(uint64(size)))
		Expect(bus.Contains(base - 1)).To(BeFalse())
		Expect(bus.Contains(base)).To(BeTrue())
		Expect(bus.Contains(base + size - 1)).To(BeTrue())
		Expect(bus.Contains(base + size)).To(BeFalse())
	})

	DescribeTable("64-bit store then load",
		func(offset uint64) {
			const value = uint64(0xDEADBEEFCAFEF00D)

			Expect(bus.Write(base+offset, emu.Width64, value)).To(Succeed())
			Expect(bus.Read(base+offset, emu.Width64)).To(Equal(value))
		},
		Entry("at the base", uint64(0)),
		Entry("aligned", uint64(16)),
		Entry("unaligned", uint64(13)),
		Entry("ending at the last byte", uint64(size-8)),
	)

	DescribeTable("byte access at the mapping boundary",
		func(addr uint64, ok bool) {
			_, err := bus.Read(addr, emu.Width8)
			if ok {
				Expect(err).NotTo(HaveOccurred())
			} else {
				Expect(err).To(HaveOccurred())
			}
		},
		Entry("base-1", base-1, false),
		Entry("base", base, true),
		Entry("base+size-1", base+size-1, true),
		Entry("base+size", base+size, false),
	)

	It("should report the failing address in an AddressError", func() {
		err := bus.Write(base+size-4, emu.Width64, 0)

		var addrErr *emu.AddressError
		Expect(errors.As(err, &addrErr)).To(BeTrue())
		Expect(addrErr.Addr).To(Equal(base + size - 4))
		Expect(addrErr.Width).To(Equal(emu.Width64))
		Expect(addrErr.Write).To(BeTrue())
		Expect(errors.Is(err, emu.ErrOutOfRange)).To(BeTrue())
	})

	It("should fail below the base without wrapping", func() {
		_, err := bus.Read(0, emu.Width32)

		var addrErr *emu.AddressError
		Expect(errors.As(err, &addrErr)).To(BeTrue())
		Expect(addrErr.Write).To(BeFalse())
	})

	It("should read byte ranges", func() {
		Expect(bus.Write(base+4, emu.Width32, 0x44332211)).To(Succeed())

		Expect(bus.ReadBytes(base+3, 6)).To(Equal([]byte{0, 0x11, 0x22, 0x33, 0x44, 0}))

		_, err := bus.ReadBytes(base+size-2, 4)
		Expect(err).To(HaveOccurred())
	})

	It("should reject byte ranges before reading them", func() {
		_, err := bus.ReadBytes(base, -1)
		Expect(err).To(MatchError(emu.ErrInvalidLength))

		_, err = bus.ReadBytes(base+8, 1<<62)
		var addrErr *emu.AddressError
		Expect(errors.As(err, &addrErr)).To(BeTrue())
		Expect(addrErr.Addr).To(Equal(base + size))

		_, err = bus.ReadBytes(0, 1<<62)
		Expect(errors.As(err, &addrErr)).To(BeTrue())
		Expect(addrErr.Addr).To(Equal(uint64(0)))

		Expect(bus.ReadBytes(base+size, 0)).To(BeEmpty())
	})
})

var _ = Describe("Width", func() {
	It("should convert bits to bytes", func() {
		Expect(emu.Width8.Bytes()).To(Equal(uint64(1)))
		Expect(emu.Width16.Bytes()).To(Equal(uint64(2)))
		Expect(emu.Width32.Bytes()).To(Equal(uint64(4)))
		Expect(emu.Width64.Bytes()).To(Equal(uint64(8)))
	})

	It("should validate widths", func() {
		Expect(emu.Width32.Valid()).To(BeTrue())
		Expect(emu.Width(24).Valid()).To(BeFalse())
	})
})
