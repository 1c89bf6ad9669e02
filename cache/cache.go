// Package cache provides a write-back line cache device using Akita cache
// components.
package cache

import (
	"fmt"

	akitacache "github.com/sarchlab/akita/v4/mem/cache"

	"github.com/sarchlab/rvsim/emu"
)

// Config holds cache configuration parameters.
type Config struct {
	// Size in bytes
	Size int
	// Associativity (number of ways)
	Associativity int
	// BlockSize in bytes (cache line size)
	BlockSize int
}

// DefaultConfig returns a 32KB, 4-way cache with 64B lines.
func DefaultConfig() Config {
	return Config{
		Size:          32 * 1024,
		Associativity: 4,
		BlockSize:     64,
	}
}

// Validate checks that the geometry describes at least one full set.
func (c Config) Validate() error {
	if c.Size <= 0 || c.Associativity <= 0 || c.BlockSize <= 0 {
		return fmt.Errorf("cache size, associativity and block size must be positive")
	}
	if c.BlockSize&(c.BlockSize-1) != 0 {
		return fmt.Errorf("cache block size %d is not a power of two", c.BlockSize)
	}
	if c.Size%(c.Associativity*c.BlockSize) != 0 {
		return fmt.Errorf("cache size %d is not a multiple of associativity*block size (%d)",
			c.Size, c.Associativity*c.BlockSize)
	}
	return nil
}

// Statistics holds cache performance statistics. Reads and Writes count
// device accesses; Hits and Misses count line lookups, so an access that
// spans two lines contributes two lookups.
type Statistics struct {
	Reads      uint64
	Writes     uint64
	Hits       uint64
	Misses     uint64
	Evictions  uint64
	Writebacks uint64
}

// Cache is an emu.Device that caches another device. It is transparent to
// its users: every access returns what the backing device alone would
// return, and the backing device catches up on Flush or eviction.
type Cache struct {
	// Configuration
	config Config

	// Akita cache directory for tag/state management
	directory *akitacache.DirectoryImpl

	// Data storage - indexed by (setID * associativity + wayID)
	dataStore [][]byte

	// Statistics
	stats Statistics

	backing emu.Device
}

// New creates a new cache in front of backing.
func New(config Config, backing emu.Device) (*Cache, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	numSets := config.Size / (config.Associativity * config.BlockSize)
	totalBlocks := numSets * config.Associativity

	// Initialize data storage
	dataStore := make([][]byte, totalBlocks)
	for i := range dataStore {
		dataStore[i] = make([]byte, config.BlockSize)
	}

	return &Cache{
		config: config,
		directory: akitacache.NewDirectory(
			numSets,
			config.Associativity,
			config.BlockSize,
			akitacache.NewLRUVictimFinder(),
		),
		dataStore: dataStore,
		backing:   backing,
	}, nil
}

// Config returns the cache configuration.
func (c *Cache) Config() Config {
	return c.config
}

// Stats returns cache statistics.
func (c *Cache) Stats() Statistics {
	return c.stats
}

// Size returns the size of the backing device.
func (c *Cache) Size() uint64 {
	return c.backing.Size()
}

// Read performs a cached read.
func (c *Cache) Read(offset uint64, w emu.Width) (uint64, error) {
	c.stats.Reads++
	return c.access(offset, w, false, 0)
}

// Write performs a cached write. Uses write-allocate policy: on miss, the
// line is fetched first, then written. Bytes are written in ascending
// order, so a write running past the end of the device keeps the bytes
// before the failure.
func (c *Cache) Write(offset uint64, w emu.Width, value uint64) error {
	c.stats.Writes++
	_, err := c.access(offset, w, true, value)
	return err
}

func (c *Cache) access(offset uint64, w emu.Width, isWrite bool, value uint64) (uint64, error) {
	if !w.Valid() {
		return 0, emu.ErrInvalidWidth
	}

	blockSize := uint64(c.config.BlockSize)
	size := c.backing.Size()
	n := w.Bytes()

	var result uint64
	for i := uint64(0); i < n; {
		addr := offset + i
		if addr >= size {
			return 0, emu.ErrOutOfRange
		}

		lineOffset := addr % blockSize
		chunk := min(n-i, blockSize-lineOffset, size-addr)

		data, err := c.line(addr-lineOffset, isWrite)
		if err != nil {
			return 0, err
		}

		for j := uint64(0); j < chunk; j++ {
			shift := 8 * (i + j)
			if isWrite {
				data[lineOffset+j] = byte(value >> shift)
			} else {
				result |= uint64(data[lineOffset+j]) << shift
			}
		}

		i += chunk
	}

	return result, nil
}

// blockIndex computes the index into dataStore for a block.
func (c *Cache) blockIndex(block *akitacache.Block) int {
	return block.SetID*c.config.Associativity + block.WayID
}

// line returns the data of the line at blockAddr, filling it on a miss.
func (c *Cache) line(blockAddr uint64, isWrite bool) ([]byte, error) {
	block := c.directory.Lookup(0, blockAddr)
	if block != nil && block.IsValid {
		c.stats.Hits++
		c.directory.Visit(block) // Update LRU
		if isWrite {
			block.IsDirty = true
		}
		return c.dataStore[c.blockIndex(block)], nil
	}

	c.stats.Misses++

	victim := c.directory.FindVictim(blockAddr)
	if victim == nil {
		return nil, fmt.Errorf("no victim for block 0x%X", blockAddr)
	}

	victimData := c.dataStore[c.blockIndex(victim)]

	if victim.IsValid {
		c.stats.Evictions++

		if victim.IsDirty {
			if err := c.writeBack(victim.Tag, victimData); err != nil {
				return nil, err
			}
		}
		victim.IsValid = false
		victim.IsDirty = false
	}

	if err := c.fill(blockAddr, victimData); err != nil {
		return nil, err
	}

	// Tag stores the block-aligned offset
	victim.Tag = blockAddr
	victim.IsValid = true
	victim.IsDirty = isWrite

	c.directory.Visit(victim) // Update LRU

	return victimData, nil
}

// fill loads a line from the backing device. Bytes past the end of the
// device are zero.
func (c *Cache) fill(blockAddr uint64, data []byte) error {
	size := c.backing.Size()
	for i := range data {
		addr := blockAddr + uint64(i)
		if addr >= size {
			data[i] = 0
			continue
		}

		b, err := c.backing.Read(addr, emu.Width8)
		if err != nil {
			return fmt.Errorf("filling line 0x%X: %w", blockAddr, err)
		}
		data[i] = byte(b)
	}
	return nil
}

// writeBack stores a line to the backing device.
func (c *Cache) writeBack(blockAddr uint64, data []byte) error {
	c.stats.Writebacks++

	size := c.backing.Size()
	for i, b := range data {
		addr := blockAddr + uint64(i)
		if addr >= size {
			break
		}

		if err := c.backing.Write(addr, emu.Width8, uint64(b)); err != nil {
			return fmt.Errorf("writing back line 0x%X: %w", blockAddr, err)
		}
	}
	return nil
}

// Invalidate drops the line holding offset without writing it back.
func (c *Cache) Invalidate(offset uint64) {
	blockSize := uint64(c.config.BlockSize)
	block := c.directory.Lookup(0, offset/blockSize*blockSize)
	if block != nil && block.IsValid {
		block.IsValid = false
		block.IsDirty = false
	}
}

// Flush writes back all dirty blocks and invalidates them.
func (c *Cache) Flush() error {
	for _, set := range c.directory.GetSets() {
		for _, block := range set.Blocks {
			if block.IsValid && block.IsDirty {
				if err := c.writeBack(block.Tag, c.dataStore[c.blockIndex(block)]); err != nil {
					return err
				}
			}
			block.IsValid = false
			block.IsDirty = false
		}
	}
	return nil
}

// Reset invalidates all cache lines without writeback.
func (c *Cache) Reset() {
	c.directory.Reset()
	c.stats = Statistics{}
}
