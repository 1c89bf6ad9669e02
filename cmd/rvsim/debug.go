package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/sarchlab/rvsim/monitor"
)

func newDebugCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "debug <image>",
		Short: "Step through a program in the monitor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd, args[0], func(s *session) error {
				ctx, cancel := signalContext(cmd)
				defer cancel()

				return monitor.RunInteractive(ctx, func(out io.Writer) *monitor.Monitor {
					return monitor.New(s.emu, out, s.logger)
				})
			})
		},
	}
}
