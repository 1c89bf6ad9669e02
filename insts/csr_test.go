package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvsim/insts"
)

var _ = Describe("CSR table", func() {
	DescribeTable("should name the standard CSRs",
		func(addr uint16, name string) {
			got, ok := insts.CSRName(addr)
			Expect(ok).To(BeTrue())
			Expect(got).To(Equal(name))

			back, ok := insts.CSRAddr(name)
			Expect(ok).To(BeTrue())
			Expect(back).To(Equal(addr))
		},
		Entry("sstatus", uint16(0x100), "sstatus"),
		Entry("sedeleg", uint16(0x102), "sedeleg"),
		Entry("mstatus", uint16(0x300), "mstatus"),
		Entry("misa", uint16(0x301), "misa"),
		Entry("medeleg", uint16(0x302), "medeleg"),
		Entry("mhartid", uint16(0xF14), "mhartid"),
		Entry("cycle", uint16(0xC00), "cycle"),
	)

	It("should report unmapped addresses", func() {
		_, ok := insts.CSRName(0x7FF)
		Expect(ok).To(BeFalse())
	})

	It("should report unknown names", func() {
		_, ok := insts.CSRAddr("nosuchcsr")
		Expect(ok).To(BeFalse())
	})

	It("should ignore bits above the 12-bit address", func() {
		name, ok := insts.CSRName(0xF300)
		Expect(ok).To(BeTrue())
		Expect(name).To(Equal("mstatus"))
	})
})
