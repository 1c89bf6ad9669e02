package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/rvsim/config"
	"github.com/sarchlab/rvsim/emu"
)

var _ = Describe("SimConfig", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	Describe("Default", func() {
		It("should describe the reference machine", func() {
			c := config.Default()

			Expect(c.MemorySize).To(Equal(uint64(1024 * 1024)))
			Expect(c.Base).To(Equal(emu.DRAMBase))
			Expect(c.MaxInstructions).To(Equal(uint64(500)))
			Expect(c.Level()).To(Equal(logrus.WarnLevel))
			Expect(c.Cache.Enabled).To(BeFalse())
			Expect(c.Validate()).To(Succeed())
		})
	})

	Describe("Load", func() {
		It("should load JSON and keep defaults for missing fields", func() {
			path := filepath.Join(dir, "sim.json")
			Expect(os.WriteFile(path, []byte(`{"memory_size": 4096, "log_level": "debug"}`), 0644)).
				To(Succeed())

			c, err := config.Load(path)

			Expect(err).NotTo(HaveOccurred())
			Expect(c.MemorySize).To(Equal(uint64(4096)))
			Expect(c.Level()).To(Equal(logrus.DebugLevel))
			Expect(c.Base).To(Equal(emu.DRAMBase))
		})

		It("should load YAML with hexadecimal addresses", func() {
			path := filepath.Join(dir, "sim.yaml")
			content := "base: 0x1000\nmax_instructions: 0\ncache:\n  enabled: true\n  size: 1024\n"
			Expect(os.WriteFile(path, []byte(content), 0644)).To(Succeed())

			c, err := config.Load(path)

			Expect(err).NotTo(HaveOccurred())
			Expect(c.Base).To(Equal(uint64(0x1000)))
			Expect(c.MaxInstructions).To(Equal(uint64(0)))
			Expect(c.Cache.Enabled).To(BeTrue())
			Expect(c.Cache.Size).To(Equal(1024))
			Expect(c.Cache.BlockSize).To(Equal(64))
			Expect(c.Validate()).To(Succeed())
		})

		It("should fail on a missing file", func() {
			_, err := config.Load(filepath.Join(dir, "missing.json"))
			Expect(err).To(HaveOccurred())
		})

		It("should fail on malformed content", func() {
			path := filepath.Join(dir, "bad.json")
			Expect(os.WriteFile(path, []byte("{"), 0644)).To(Succeed())

			_, err := config.Load(path)
			Expect(err).To(HaveOccurred())
		})
	})

	DescribeTable("Save then Load",
		func(name string) {
			path := filepath.Join(dir, name)
			c := config.Default()
			c.MemorySize = 8192
			c.Cache.Enabled = true

			Expect(c.Save(path)).To(Succeed())
			loaded, err := config.Load(path)

			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(c))
		},
		Entry("JSON", "sim.json"),
		Entry("YAML", "sim.yml"),
	)

	Describe("Validate", func() {
		It("should reject zero memory", func() {
			c := config.Default()
			c.MemorySize = 0
			Expect(c.Validate()).NotTo(Succeed())
		})

		It("should reject a misaligned base", func() {
			c := config.Default()
			c.Base = 0x1002
			Expect(c.Validate()).NotTo(Succeed())
		})

		It("should reject a mapping past the end of the address space", func() {
			c := config.Default()
			c.Base = 0xFFFFFFFFFFFFF000
			Expect(c.Validate()).NotTo(Succeed())
		})

		It("should reject unknown log levels", func() {
			c := config.Default()
			c.LogLevel = "loud"
			Expect(c.Validate()).NotTo(Succeed())
			Expect(c.Level()).To(Equal(logrus.WarnLevel))
		})

		It("should check the cache geometry only when enabled", func() {
			c := config.Default()
			c.Cache.BlockSize = 48
			Expect(c.Validate()).To(Succeed())

			c.Cache.Enabled = true
			Expect(c.Validate()).NotTo(Succeed())
		})
	})

	It("should clone independently", func() {
		c := config.Default()
		clone := c.Clone()
		clone.Cache.Size = 1

		Expect(c.Cache.Size).NotTo(Equal(1))
		Expect(clone.MemorySize).To(Equal(c.MemorySize))
	})
})
