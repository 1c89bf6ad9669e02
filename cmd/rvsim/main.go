// Package main provides the rvsim command line.
// rvsim is a functional RV64IM instruction-set simulator.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
