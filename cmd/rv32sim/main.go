// Package main provides the RV32Sim command line.
package main

import (
	"fmt"
	"log/slog"
	"os"

	getopt "github.com/pborman/getopt/v2"

	"github.com/sarchlab/rv32sim/emu"
	"github.com/sarchlab/rv32sim/loader"
	"github.com/sarchlab/rv32sim/monitor"
	"github.com/sarchlab/rv32sim/timing/latency"
	"github.com/sarchlab/rv32sim/util/logger"
)

func main() {
	optCycles := getopt.Uint64Long("cycles", 'c', 0, "Cycle budget, 0 runs to completion")
	optMemMB := getopt.Uint32Long("mem", 'm', 128, "Memory size in MiB")
	optDebug := getopt.BoolLong("debug", 'd', "Trace every pipeline stage")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optMonitor := getopt.BoolLong("monitor", 'i', "Enter the interactive monitor")
	optTiming := getopt.StringLong("timing", 't', "", "Latency config JSON for the cycle estimate")
	optEstimate := getopt.BoolLong("estimate", 'e', "Report an estimated pipelined cycle count")
	optKernel := getopt.BoolLong("raw", 'r', "Treat the image as a raw kernel, not an ELF")
	optDTB := getopt.StringLong("dtb", 'b', "", "DTB image for raw kernel boot")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp || getopt.NArgs() < 1 {
		getopt.Usage()
		os.Exit(0)
	}

	var logOut *os.File
	if *optLogFile != "" {
		var err error
		logOut, err = os.Create(*optLogFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "cannot create log file: %v\n", err)
			os.Exit(1)
		}
	}
	level := new(slog.LevelVar)
	if *optDebug {
		level.Set(slog.LevelDebug)
	}
	log := slog.New(logger.NewHandler(logOut, &slog.HandlerOptions{Level: level}, logOut == nil))
	slog.SetDefault(log)

	mem := emu.NewWordMemory(*optMemMB << 20)

	opts := []emu.Option{
		emu.WithLogger(log),
		emu.WithDebug(*optDebug),
	}

	imagePath := getopt.Arg(0)
	tohostAddr := uint32(0)

	if *optKernel {
		if _, err := loader.LoadRaw(imagePath, mem, emu.DRAMBase); err != nil {
			log.Error(err.Error())
			os.Exit(1)
		}
		if *optDTB != "" {
			if _, err := loader.LoadRaw(*optDTB, mem, emu.DefaultDTBAddr); err != nil {
				log.Error(err.Error())
				os.Exit(1)
			}
		}
		opts = append(opts, emu.WithEntryPC(emu.DRAMBase), emu.WithTohostAddr(0))
	} else {
		prog, err := loader.Load(imagePath)
		if err != nil {
			log.Error(err.Error())
			os.Exit(1)
		}
		if err := prog.CopyTo(mem); err != nil {
			log.Error(err.Error())
			os.Exit(1)
		}
		opts = append(opts, emu.WithEntryPC(prog.Entry))
		if prog.TohostAddr != 0 {
			tohostAddr = prog.TohostAddr
			opts = append(opts, emu.WithTohostAddr(prog.TohostAddr))
		} else {
			tohostAddr = emu.DefaultTohostAddr
		}
	}

	core := emu.NewCore(mem, opts...)

	if *optMonitor {
		monitor.Run(core, mem)
		return
	}

	res := core.Run(*optCycles)

	exitCode := 0
	switch {
	case tohostAddr != 0:
		done, code := loader.ExitStatus(mem.ReadWord((tohostAddr - emu.DRAMBase) / 4))
		if done {
			exitCode = int(code)
			log.Info("htif exit", "code", code, "cycles", res.Cycles)
		} else if res.Exited {
			exitCode = int(res.ExitCode)
			log.Info("ecall exit", "code", res.ExitCode, "cycles", res.Cycles)
		} else {
			log.Warn("cycle budget exhausted", "cycles", res.Cycles)
			exitCode = 1
		}
	case res.Exited:
		exitCode = int(res.ExitCode)
		log.Info("ecall exit", "code", res.ExitCode, "cycles", res.Cycles)
	default:
		log.Warn("cycle budget exhausted", "cycles", res.Cycles)
		exitCode = 1
	}

	stats := core.Stats()
	log.Info("retired", "instructions", stats.Total(), "cycles", res.Cycles)

	if *optEstimate || *optTiming != "" {
		table := latency.NewTable()
		if *optTiming != "" {
			cfg, err := latency.LoadConfig(*optTiming)
			if err != nil {
				log.Error(err.Error())
				os.Exit(1)
			}
			if err := cfg.Validate(); err != nil {
				log.Error(err.Error())
				os.Exit(1)
			}
			table = latency.NewTableWithConfig(cfg)
		}
		log.Info("timing estimate", "cycles", table.Estimate(stats))
	}

	os.Exit(exitCode)
}
