// Package main provides the entry point for RV32Sim.
// RV32Sim is a functional RV32IMA instruction-set simulator.
//
// For the full CLI, use: go run ./cmd/rv32sim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("RV32Sim - RV32IMA Instruction Set Simulator")
	fmt.Println("")
	fmt.Println("Usage: rv32sim [options] <program.elf>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -c, --cycles N   Cycle budget (0 = run to completion)")
	fmt.Println("  -i, --monitor    Interactive monitor")
	fmt.Println("  -d, --debug      Per-stage trace logging")
	fmt.Println("  -e, --estimate   Static pipelined-cycle estimate")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/rv32sim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/rv32sim' instead.")
	}
}
