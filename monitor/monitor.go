// Package monitor provides an interactive console for inspecting and
// stepping a core, in the manner of a front-panel debugger.
package monitor

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/sarchlab/rv32sim/emu"
)

var commands = []string{"help", "step", "run", "regs", "csr", "mem", "reset", "quit"}

// regNames are the ABI register names, indexed by register number.
var regNames = [32]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

// Run reads and executes console commands until quit or EOF.
func Run(core *emu.Core, mem *emu.WordMemory) {
	line := liner.NewLiner()
	defer func() { _ = line.Close() }()

	line.SetCtrlCAborts(true)
	line.SetCompleter(func(prefix string) []string {
		var out []string
		for _, cmd := range commands {
			if strings.HasPrefix(cmd, prefix) {
				out = append(out, cmd)
			}
		}
		return out
	})

	for {
		command, err := line.Prompt("rv32> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				return
			}
			fmt.Println("error reading line: " + err.Error())
			return
		}

		line.AppendHistory(command)
		quit, err := process(command, core, mem)
		if err != nil {
			fmt.Println("Error: " + err.Error())
		}
		if quit {
			return
		}
	}
}

func process(command string, core *emu.Core, mem *emu.WordMemory) (bool, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return false, nil
	}

	switch fields[0] {
	case "help":
		fmt.Println("step [n]      execute n instructions (default 1)")
		fmt.Println("run [cycles]  run until exit or the cycle budget")
		fmt.Println("regs          dump the register file")
		fmt.Println("csr           dump the machine CSRs")
		fmt.Println("mem <addr> [n]  dump n words at addr (default 4)")
		fmt.Println("reset         re-initialize the core")
		fmt.Println("quit          leave the monitor")

	case "step":
		n := uint64(1)
		if len(fields) > 1 {
			v, err := parseNum(fields[1])
			if err != nil {
				return false, err
			}
			n = v
		}
		for i := uint64(0); i < n; i++ {
			res := core.Step()
			if res.Exited {
				fmt.Printf("program exited with code %d\n", res.ExitCode)
				break
			}
		}
		fmt.Printf("pc=0x%08X\n", core.RegFile().PC)

	case "run":
		var budget uint64
		if len(fields) > 1 {
			v, err := parseNum(fields[1])
			if err != nil {
				return false, err
			}
			budget = v
		}
		res := core.Run(budget)
		if res.Exited {
			fmt.Printf("program exited with code %d after %d cycles\n", res.ExitCode, res.Cycles)
		} else {
			fmt.Printf("stopped at cycle %d, pc=0x%08X\n", res.Cycles, core.RegFile().PC)
		}

	case "regs":
		regs := core.RegFile()
		fmt.Printf("pc   0x%08X\n", regs.PC)
		for i := 0; i < 32; i += 4 {
			for j := i; j < i+4; j++ {
				fmt.Printf("%-4s 0x%08X   ", regNames[j], uint32(regs.X[j]))
			}
			fmt.Println()
		}

	case "csr":
		csr := core.CSRFile()
		fmt.Printf("mstatus  0x%08X  mie     0x%08X  mip     0x%08X\n",
			csr.MStatus, csr.MIE, csr.MIP)
		fmt.Printf("mtvec    0x%08X  mepc    0x%08X  mcause  0x%08X\n",
			csr.MTVec, csr.MEPC, csr.MCause)
		fmt.Printf("mscratch 0x%08X\n", csr.MScratch)
		fmt.Printf("mcycle   %d  minstret %d  mtimecmp %d\n",
			csr.MCycle, csr.MInstret, csr.MTimeCmp)

	case "mem":
		if len(fields) < 2 {
			return false, fmt.Errorf("usage: mem <addr> [words]")
		}
		addr, err := parseNum(fields[1])
		if err != nil {
			return false, err
		}
		n := uint64(4)
		if len(fields) > 2 {
			if n, err = parseNum(fields[2]); err != nil {
				return false, err
			}
		}
		for i := uint64(0); i < n; i++ {
			a := uint32(addr) + uint32(i)*4
			fmt.Printf("0x%08X: 0x%08X\n", a, mem.ReadWord((a-emu.DRAMBase)/4))
		}

	case "reset":
		core.Init()
		fmt.Printf("core reset, pc=0x%08X\n", core.RegFile().PC)

	case "quit", "exit":
		return true, nil

	default:
		return false, fmt.Errorf("unknown command %q, try help", fields[0])
	}

	return false, nil
}

// parseNum accepts decimal or 0x-prefixed hex.
func parseNum(s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("bad number %q", s)
	}
	return v, nil
}
