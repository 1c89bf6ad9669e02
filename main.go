// Package main provides the entry point for rvsim.
// rvsim is a functional RV64IM instruction-set simulator.
//
// For the full CLI, use: go run ./cmd/rvsim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("rvsim - RV64IM Instruction-Set Simulator")
	fmt.Println("")
	fmt.Println("Usage: rvsim <command> [flags] <image>")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  run       Run a program until it halts")
	fmt.Println("  debug     Step through a program in the monitor")
	fmt.Println("  disasm    List the instructions of a program")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/rvsim --help' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/rvsim' instead.")
	}
}
