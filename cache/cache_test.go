package cache_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvsim/cache"
	"github.com/sarchlab/rvsim/emu"
)

var _ = Describe("Cache", func() {
	var (
		c      *cache.Cache
		memory *emu.DRAM
	)

	BeforeEach(func() {
		var err error
		memory, err = emu.NewDRAM(8*1024, nil)
		Expect(err).NotTo(HaveOccurred())

		// Small cache for testing: 4KB, 4-way, 64B lines, 16 sets
		config := cache.Config{
			Size:          4 * 1024,
			Associativity: 4,
			BlockSize:     64,
		}
		c, err = cache.New(config, memory)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("Read operations", func() {
		It("should miss on cold cache", func() {
			Expect(memory.Write(0x1000, emu.Width64, 0xDEADBEEF)).To(Succeed())

			Expect(c.Read(0x1000, emu.Width64)).To(Equal(uint64(0xDEADBEEF)))

			stats := c.Stats()
			Expect(stats.Reads).To(Equal(uint64(1)))
			Expect(stats.Misses).To(Equal(uint64(1)))
			Expect(stats.Hits).To(Equal(uint64(0)))
		})

		It("should hit on different addresses in same cache line", func() {
			Expect(memory.Write(0x1000, emu.Width32, 0x11111111)).To(Succeed())
			Expect(memory.Write(0x1004, emu.Width32, 0x22222222)).To(Succeed())

			_, _ = c.Read(0x1000, emu.Width32)

			Expect(c.Read(0x1004, emu.Width32)).To(Equal(uint64(0x22222222)))
			Expect(c.Stats().Hits).To(Equal(uint64(1)))
		})

		It("should split an access that spans two lines", func() {
			Expect(memory.Write(0x3C, emu.Width64, 0x8877665544332211)).To(Succeed())

			Expect(c.Read(0x3C, emu.Width64)).To(Equal(uint64(0x8877665544332211)))
			Expect(c.Stats().Misses).To(Equal(uint64(2)))
		})
	})

	Describe("Write operations", func() {
		It("should write-allocate on miss and keep the data in the cache", func() {
			Expect(c.Write(0x2000, emu.Width64, 0xCAFEBABE)).To(Succeed())

			Expect(c.Stats().Misses).To(Equal(uint64(1)))
			Expect(memory.Read(0x2000, emu.Width64)).To(Equal(uint64(0)))
			Expect(c.Read(0x2000, emu.Width64)).To(Equal(uint64(0xCAFEBABE)))
			Expect(c.Stats().Hits).To(Equal(uint64(1)))
		})

		It("should keep the bytes before a failure at the end of the device", func() {
			err := c.Write(8*1024-2, emu.Width32, 0xAABBCCDD)

			Expect(err).To(MatchError(emu.ErrOutOfRange))
			Expect(c.Read(8*1024-2, emu.Width16)).To(Equal(uint64(0xCCDD)))
		})
	})

	Describe("Eviction", func() {
		fillSet := func() {
			// Set 0 addresses: 0x0000, 0x0400, 0x0800, 0x0C00, 0x1000
			Expect(c.Write(0x0000, emu.Width64, 0x11111111)).To(Succeed())
			Expect(c.Write(0x0400, emu.Width64, 0x22222222)).To(Succeed())
			Expect(c.Write(0x0800, emu.Width64, 0x33333333)).To(Succeed())
			Expect(c.Write(0x0C00, emu.Width64, 0x44444444)).To(Succeed())
		}

		It("should evict when a set is full", func() {
			fillSet()

			Expect(c.Write(0x1000, emu.Width64, 0x55555555)).To(Succeed())

			Expect(c.Stats().Evictions).To(Equal(uint64(1)))
		})

		It("should write back the least recently used dirty block", func() {
			fillSet()
			_, _ = c.Read(0x0400, emu.Width64)
			_, _ = c.Read(0x0800, emu.Width64)
			_, _ = c.Read(0x0C00, emu.Width64)

			Expect(c.Write(0x1000, emu.Width64, 0x55555555)).To(Succeed())

			Expect(memory.Read(0x0000, emu.Width64)).To(Equal(uint64(0x11111111)))
			Expect(memory.Read(0x0400, emu.Width64)).To(Equal(uint64(0)))
			Expect(c.Stats().Writebacks).To(Equal(uint64(1)))
		})

		It("should read evicted data back from memory", func() {
			fillSet()
			Expect(c.Write(0x1000, emu.Width64, 0x55555555)).To(Succeed())

			Expect(c.Read(0x0000, emu.Width64)).To(Equal(uint64(0x11111111)))
		})
	})

	Describe("Flush", func() {
		It("should write back all dirty blocks", func() {
			Expect(c.Write(0x0000, emu.Width64, 0x11111111)).To(Succeed())
			Expect(c.Write(0x1000, emu.Width64, 0x22222222)).To(Succeed())

			Expect(memory.Read(0x0000, emu.Width64)).To(Equal(uint64(0)))

			Expect(c.Flush()).To(Succeed())

			Expect(memory.Read(0x0000, emu.Width64)).To(Equal(uint64(0x11111111)))
			Expect(memory.Read(0x1000, emu.Width64)).To(Equal(uint64(0x22222222)))
			Expect(c.Stats().Writebacks).To(Equal(uint64(2)))
		})
	})

	Describe("Invalidate", func() {
		It("should drop a line without writing it back", func() {
			Expect(c.Write(0x40, emu.Width8, 0x7F)).To(Succeed())

			c.Invalidate(0x41)

			Expect(c.Read(0x40, emu.Width8)).To(Equal(uint64(0)))
		})
	})

	It("should report the size of the backing device", func() {
		Expect(c.Size()).To(Equal(uint64(8 * 1024)))
	})

	It("should reject invalid widths", func() {
		_, err := c.Read(0, emu.Width(3))
		Expect(err).To(MatchError(emu.ErrInvalidWidth))
	})

	It("should clear statistics on reset", func() {
		_, _ = c.Read(0, emu.Width8)

		c.Reset()

		Expect(c.Stats()).To(Equal(cache.Statistics{}))
	})

	Describe("as an emulator device layer", func() {
		It("should not change the architectural result", func() {
			var layer *cache.Cache
			image := []byte{
				0x93, 0x02, 0x50, 0x00, // addi t0, zero, 5
				0x23, 0x3c, 0x51, 0xfe, // sd t0, -8(sp)
				0x03, 0x33, 0x81, 0xff, // ld t1, -8(sp)
			}
			e, err := emu.NewEmulator(image, 64, emu.WithDeviceLayer(func(d emu.Device) emu.Device {
				var err error
				layer, err = cache.New(cache.Config{Size: 256, Associativity: 2, BlockSize: 16}, d)
				Expect(err).NotTo(HaveOccurred())
				return layer
			}))
			Expect(err).NotTo(HaveOccurred())

			e.Run(context.Background())

			Expect(e.Registers()[6]).To(Equal(uint64(5)))
			Expect(layer.Stats().Hits).To(BeNumerically(">", 0))
		})
	})
})

var _ = Describe("Config", func() {
	It("should provide a valid default", func() {
		Expect(cache.DefaultConfig().Validate()).To(Succeed())
	})

	DescribeTable("invalid geometries",
		func(config cache.Config) {
			Expect(config.Validate()).NotTo(Succeed())
			_, err := cache.New(config, nil)
			Expect(err).To(HaveOccurred())
		},
		Entry("zero size", cache.Config{Size: 0, Associativity: 1, BlockSize: 64}),
		Entry("odd block size", cache.Config{Size: 960, Associativity: 1, BlockSize: 60}),
		Entry("partial set", cache.Config{Size: 100, Associativity: 2, BlockSize: 64}),
	)
})
