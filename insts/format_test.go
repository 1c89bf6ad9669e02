package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvsim/insts"
)

var _ = Describe("Instruction formatting", func() {
	var decoder *insts.Decoder

	BeforeEach(func() {
		decoder = insts.NewDecoder()
	})

	DescribeTable("should render assembler syntax",
		func(word uint32, text string) {
			Expect(decoder.Decode(word).String()).To(Equal(text))
		},
		Entry("addi", uint32(0x00500293), "addi t0, zero, 5"),
		Entry("add", uint32(0x00530333), "add t1, t1, t0"),
		Entry("ld", uint32(0x00813503), "ld a0, 8(sp)"),
		Entry("sd", uint32(0xFE613C23), "sd t1, -8(sp)"),
		Entry("beq", uint32(0xFEB50EE3), "beq a0, a1, -4"),
		Entry("jal", uint32(0x010000EF), "jal ra, 16"),
		Entry("jalr", uint32(0x000500E7), "jalr ra, 0(a0)"),
		Entry("lui", uint32(0x12345537), "lui a0, 0x12345"),
		Entry("csrrw", uint32(0x30059573), "csrrw a0, mstatus, a1"),
		Entry("csrrci", uint32(0x30047073), "csrrci zero, mstatus, 8"),
		Entry("fence", uint32(0x0FF0000F), "fence iorw, iorw"),
		Entry("ecall", uint32(0x00000073), "ecall"),
		Entry("unknown", uint32(0xFFFFFFFF), "unknown 0xffffffff"),
	)

	It("should name every operation", func() {
		Expect(insts.OpSRAIW.String()).To(Equal("sraiw"))
		Expect(insts.OpFENCEI.String()).To(Equal("fence.i"))
		Expect(insts.Op(0xFFFF).String()).To(Equal("Op(65535)"))
	})
})
