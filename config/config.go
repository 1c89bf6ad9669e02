// Package config holds the simulator configuration and its file formats.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/sarchlab/rvsim/cache"
	"github.com/sarchlab/rvsim/emu"
)

// DefaultMaxInstructions bounds a run when no limit is configured.
const DefaultMaxInstructions = 500

// SimConfig holds the parameters of a simulation run.
type SimConfig struct {
	// MemorySize is the size of the mapped memory in bytes.
	// Default: 1 MiB.
	MemorySize uint64 `json:"memory_size" yaml:"memory_size"`

	// Base is the address memory is mapped at and execution starts from.
	// Default: 0x80000000.
	Base uint64 `json:"base" yaml:"base"`

	// MaxInstructions stops a run after this many instructions.
	// 0 means no limit. Default: 500.
	MaxInstructions uint64 `json:"max_instructions" yaml:"max_instructions"`

	// LogLevel is a logrus level name. Default: "warning".
	LogLevel string `json:"log_level" yaml:"log_level"`

	// Cache configures the optional line cache in front of memory.
	Cache CacheConfig `json:"cache" yaml:"cache"`
}

// CacheConfig configures the line cache device.
type CacheConfig struct {
	Enabled       bool `json:"enabled" yaml:"enabled"`
	Size          int  `json:"size" yaml:"size"`
	Associativity int  `json:"associativity" yaml:"associativity"`
	BlockSize     int  `json:"block_size" yaml:"block_size"`
}

// Default returns a SimConfig with default values.
func Default() *SimConfig {
	cacheConfig := cache.DefaultConfig()

	return &SimConfig{
		MemorySize:      emu.DefaultMemorySize,
		Base:            emu.DRAMBase,
		MaxInstructions: DefaultMaxInstructions,
		LogLevel:        logrus.WarnLevel.String(),
		Cache: CacheConfig{
			Enabled:       false,
			Size:          cacheConfig.Size,
			Associativity: cacheConfig.Associativity,
			BlockSize:     cacheConfig.BlockSize,
		},
	}
}

// isYAML reports whether path names a YAML file.
func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Load loads a SimConfig from a JSON or YAML file. Fields missing from the
// file keep their default values.
func Load(path string) (*SimConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if isYAML(path) {
		err = yaml.Unmarshal(data, config)
	} else {
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return config, nil
}

// Save writes the SimConfig to a JSON or YAML file, chosen by extension.
func (c *SimConfig) Save(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks that the configuration describes a runnable machine.
func (c *SimConfig) Validate() error {
	if c.MemorySize == 0 {
		return fmt.Errorf("memory_size must be > 0")
	}
	if c.Base%emu.InstructionSize != 0 {
		return fmt.Errorf("base must be aligned to %d bytes", emu.InstructionSize)
	}
	if c.Base+c.MemorySize < c.Base {
		return fmt.Errorf("base + memory_size overflows the address space")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if c.Cache.Enabled {
		if err := c.CacheConfig().Validate(); err != nil {
			return fmt.Errorf("cache: %w", err)
		}
	}
	return nil
}

// Level returns the configured log level, or warning if it does not parse.
func (c *SimConfig) Level() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.WarnLevel
	}
	return level
}

// CacheConfig returns the cache geometry.
func (c *SimConfig) CacheConfig() cache.Config {
	return cache.Config{
		Size:          c.Cache.Size,
		Associativity: c.Cache.Associativity,
		BlockSize:     c.Cache.BlockSize,
	}
}

// Clone returns a deep copy of the SimConfig.
func (c *SimConfig) Clone() *SimConfig {
	clone := *c
	return &clone
}
