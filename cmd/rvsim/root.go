package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/pkg/profile"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sarchlab/rvsim/cache"
	"github.com/sarchlab/rvsim/config"
	"github.com/sarchlab/rvsim/emu"
	"github.com/sarchlab/rvsim/loader"
)

// options holds the persistent flags shared by all subcommands.
type options struct {
	configPath      string
	memSize         uint64
	base            uint64
	maxInstructions uint64
	logLevel        string
	cache           bool
	profileDir      string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "rvsim",
		Short: "A functional RV64IM simulator",
		Long: `rvsim executes RV64I and RV64M programs one instruction at a time.
Images are raw binaries placed at the base address, or RISC-V ELF64
executables whose loadable segments are placed relative to it.
`,
		SilenceUsage: true,
	}

	defaults := config.Default()
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to a JSON or YAML configuration file")
	flags.Uint64Var(&opts.memSize, "mem-size", defaults.MemorySize, "memory size in bytes")
	flags.Uint64Var(&opts.base, "base", defaults.Base, "address memory is mapped at")
	flags.Uint64Var(&opts.maxInstructions, "max-instructions", defaults.MaxInstructions,
		"stop after this many instructions (0 for no limit)")
	flags.StringVar(&opts.logLevel, "log-level", defaults.LogLevel, "log level (trace, debug, info, warning, error)")
	flags.BoolVar(&opts.cache, "cache", false, "put a line cache in front of memory")
	flags.StringVar(&opts.profileDir, "profile", "", "write a CPU profile to `dir`")

	rootCmd.AddCommand(
		newRunCmd(opts),
		newDebugCmd(opts),
		newDisasmCmd(opts),
	)

	return rootCmd
}

// loadConfig reads the configuration file, if any, and applies the flags
// that were set explicitly on top of it.
func (o *options) loadConfig(cmd *cobra.Command) (*config.SimConfig, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		cfg, err = config.Load(o.configPath)
		if err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("mem-size") {
		cfg.MemorySize = o.memSize
	}
	if flags.Changed("base") {
		cfg.Base = o.base
	}
	if flags.Changed("max-instructions") {
		cfg.MaxInstructions = o.maxInstructions
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if flags.Changed("cache") {
		cfg.Cache.Enabled = o.cache
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// session is a loaded program and the machine that runs it.
type session struct {
	cfg    *config.SimConfig
	logger *logrus.Logger
	image  *loader.Image
	emu    *emu.Emulator
	cache  *cache.Cache
}

// withSession loads the image at path, builds an emulator for it and calls
// fn. The cache is flushed and the profile stopped when fn returns.
func (o *options) withSession(cmd *cobra.Command, path string, fn func(s *session) error) error {
	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := logrus.New()
	logger.SetOutput(cmd.ErrOrStderr())
	logger.SetLevel(cfg.Level())

	image, err := loader.Load(path, cfg.Base, cfg.MemorySize)
	if err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"path":  path,
		"size":  len(image.Data),
		"entry": fmt.Sprintf("0x%X", image.Entry),
		"elf":   image.IsELF,
	}).Info("loaded image")

	s := &session{cfg: cfg, logger: logger, image: image}

	emuOpts := []emu.EmulatorOption{
		emu.WithLogger(logger),
		emu.WithBase(cfg.Base),
		emu.WithEntryPoint(image.Entry),
		emu.WithMaxInstructions(cfg.MaxInstructions),
	}

	var cacheErr error
	if cfg.Cache.Enabled {
		emuOpts = append(emuOpts, emu.WithDeviceLayer(func(d emu.Device) emu.Device {
			s.cache, cacheErr = cache.New(cfg.CacheConfig(), d)
			if cacheErr != nil {
				return d
			}
			return s.cache
		}))
	}

	s.emu, err = emu.NewEmulator(image.Data, cfg.MemorySize, emuOpts...)
	if err != nil {
		return err
	}
	if cacheErr != nil {
		return fmt.Errorf("creating cache: %w", cacheErr)
	}

	if o.profileDir != "" {
		p := profile.Start(
			profile.CPUProfile,
			profile.ProfilePath(o.profileDir),
			profile.NoShutdownHook,
			profile.Quiet,
		)
		defer p.Stop()
	}

	fnErr := fn(s)

	if s.cache != nil {
		if err := s.cache.Flush(); err != nil && fnErr == nil {
			fnErr = fmt.Errorf("flushing cache: %w", err)
		}
	}

	return fnErr
}

// signalContext returns a context that is cancelled on interrupt.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return signal.NotifyContext(ctx, os.Interrupt)
}
