package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sarchlab/rvsim/emu"
)

func newDisasmCmd(opts *options) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "disasm <image>",
		Short: "List the instructions of a program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd, args[0], func(s *session) error {
				start := s.emu.PC()
				n := count
				if n <= 0 {
					end := s.cfg.Base + uint64(len(s.image.Data))
					if end > start {
						n = int((end - start) / emu.InstructionSize)
					}
				}

				list, err := s.emu.Disassemble(start, n)
				w := cmd.OutOrStdout()
				for i, inst := range list {
					fmt.Fprintf(w, "0x%X: %08x  %v\n", start+uint64(i)*emu.InstructionSize, inst.Word, inst)
				}
				return err
			})
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 0, "number of instructions (default: to the end of the image)")

	return cmd
}
