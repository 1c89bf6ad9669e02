package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sarchlab/rvsim/emu"
)

func newRunCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run <image>",
		Short: "Run a program until it halts",
		Long: `Run executes the program until it halts or the instruction limit is
reached, then prints the final machine state. Running off the end of the
program halts the CPU with a fetch error and is not a failure.
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd, args[0], func(s *session) error {
				ctx, cancel := signalContext(cmd)
				defer cancel()

				result := s.emu.Run(ctx)
				return report(cmd.OutOrStdout(), s, result)
			})
		},
	}
}

func report(w io.Writer, s *session, result emu.RunResult) error {
	switch {
	case errors.Is(result.Err, emu.ErrInstructionLimit):
		fmt.Fprintf(w, "stopped: instruction limit of %d reached\n", s.cfg.MaxInstructions)
	case result.Halted:
		fmt.Fprintf(w, "halted: %v\n", result.Err)
	case result.Err != nil:
		fmt.Fprintf(w, "interrupted: %v\n", result.Err)
	}

	if err := s.emu.DumpState(w); err != nil {
		return err
	}

	if s.cache != nil {
		stats := s.cache.Stats()
		fmt.Fprintf(w, "cache: reads = %d  writes = %d  hits = %d  misses = %d  evictions = %d  writebacks = %d\n",
			stats.Reads, stats.Writes, stats.Hits, stats.Misses, stats.Evictions, stats.Writebacks)
	}

	return nil
}
