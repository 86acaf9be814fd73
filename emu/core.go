package emu

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/sarchlab/rv32sim/insts"
)

// Core is one RV32IMA hart: register file, CSRs, LR/SC reservation, and
// termination flag, bound to a memory bus. All state lives in this value;
// multiple cores over separate buses are independent.
type Core struct {
	regs    RegFile
	csr     *CSRFile
	bus     Bus
	decoder *insts.Decoder

	lrValid bool
	lrAddr  uint32

	finished bool

	stats Stats

	entryPC    uint32
	dtbAddr    uint32
	stackTop   uint32
	tohostAddr uint32
	enableM    bool
	enableA    bool
	debug      bool

	uartOut io.Writer
	logger  *slog.Logger
}

// StepResult reports what one step-loop iteration did.
type StepResult struct {
	// Exited is true once an ecall with x17 == 93 has retired.
	Exited bool

	// ExitCode is x10 at the exit ecall.
	ExitCode int32

	// InterruptTaken is true when the iteration delivered the timer
	// interrupt instead of executing an instruction.
	InterruptTaken bool
}

// RunResult reports a completed Run.
type RunResult struct {
	Cycles   uint64
	Exited   bool
	ExitCode int32
}

// Option is a functional option for configuring a Core.
type Option func(*Core)

// WithEntryPC sets the reset program counter.
func WithEntryPC(pc uint32) Option {
	return func(c *Core) { c.entryPC = pc }
}

// WithDTBAddr sets the device-tree pointer placed in x11 at reset.
func WithDTBAddr(addr uint32) Option {
	return func(c *Core) { c.dtbAddr = addr }
}

// WithStackTop sets the reset stack pointer. The default is the last byte
// of the attached memory.
func WithStackTop(sp uint32) Option {
	return func(c *Core) { c.stackTop = sp }
}

// WithTohostAddr sets the HTIF tohost word. Zero disables the hook.
func WithTohostAddr(addr uint32) Option {
	return func(c *Core) { c.tohostAddr = addr }
}

// WithUARTOutput redirects UART transmit bytes.
func WithUARTOutput(w io.Writer) Option {
	return func(c *Core) { c.uartOut = w }
}

// WithLogger sets the logger used for debug tracing and bus warnings.
func WithLogger(l *slog.Logger) Option {
	return func(c *Core) { c.logger = l }
}

// WithDebug enables per-stage trace logging.
func WithDebug(debug bool) Option {
	return func(c *Core) { c.debug = debug }
}

// WithMExtension controls whether multiply/divide opcodes execute or trap
// as illegal.
func WithMExtension(enable bool) Option {
	return func(c *Core) { c.enableM = enable }
}

// WithAExtension controls whether atomic opcodes execute or trap as
// illegal.
func WithAExtension(enable bool) Option {
	return func(c *Core) { c.enableA = enable }
}

// NewCore creates a core bound to the given bus and resets it.
func NewCore(bus Bus, opts ...Option) *Core {
	c := &Core{
		bus:        bus,
		csr:        NewCSRFile(),
		decoder:    insts.NewDecoder(),
		entryPC:    DRAMBase,
		dtbAddr:    DefaultDTBAddr,
		tohostAddr: DefaultTohostAddr,
		enableM:    true,
		enableA:    true,
		uartOut:    os.Stdout,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.stackTop == 0 {
		c.stackTop = DRAMBase + bus.Words()*4 - 1
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	c.Init()
	return c
}

// Init resets registers, CSRs, the reservation, counters, and the
// termination flag. The configured entry PC, stack top, and DTB pointer
// are reinstalled.
func (c *Core) Init() {
	c.regs.Reset(c.entryPC, c.stackTop, c.dtbAddr)
	c.csr.Reset()
	c.lrValid = false
	c.lrAddr = 0
	c.finished = false
	c.stats = Stats{}

	if c.debug {
		c.logger.Debug("core reset",
			"pc", hex32(c.regs.PC), "sp", hex32(uint32(c.regs.X[2])))
	}
}

// RegFile returns the core's register file.
func (c *Core) RegFile() *RegFile {
	return &c.regs
}

// CSRFile returns the core's CSR state.
func (c *Core) CSRFile() *CSRFile {
	return c.csr
}

// Stats returns the per-class retired-instruction counts.
func (c *Core) Stats() Stats {
	return c.stats
}

// Finished reports whether the exit ecall has retired.
func (c *Core) Finished() bool {
	return c.finished
}

// Step runs one loop iteration: advance mcycle, deliver a pending timer
// interrupt, or fetch, decode, execute, access memory, and write back one
// instruction.
func (c *Core) Step() StepResult {
	c.csr.MCycle++

	timerIRQ := c.csr.MCycle >= c.csr.MTimeCmp
	c.csr.SetTimerPending(timerIRQ)

	if timerIRQ && c.csr.MStatus&StatusMIE != 0 && c.csr.MIE&IntMTI != 0 {
		c.enterTimerInterrupt()
		return StepResult{InterruptTaken: true}
	}

	pc := c.regs.PC
	word := c.fetch(pc)
	inst := c.decoder.Decode(word)

	rs1Val := c.regs.Read(inst.Rs1)
	rs2Val := c.regs.Read(inst.Rs2)

	if c.debug {
		c.logger.Debug("fetch", "pc", hex32(pc), "instr", hex32(word))
		c.logger.Debug("decode", "opcode", inst.Opcode, "rd", inst.Rd,
			"rs1", inst.Rs1, "rs2", inst.Rs2, "imm", inst.Imm)
	}

	ex := c.execute(inst, pc, rs1Val, rs2Val)
	if c.debug {
		c.logger.Debug("execute", "result", hex32(uint32(ex.ALUResult)),
			"trap", ex.IsTrap, "branch", ex.BranchTaken)
	}

	mem := c.memory(ex)
	if c.debug && (ex.MemRead || ex.MemWrite || ex.IsAtomic) {
		c.logger.Debug("memory", "addr", hex32(uint32(ex.ALUResult)), "value", hex32(uint32(mem.Value)))
	}

	if mem.RegWrite {
		c.regs.Write(ex.Rd, mem.Value)
		if c.debug {
			c.logger.Debug("writeback", "rd", ex.Rd, "value", hex32(uint32(mem.Value)))
		}
	}

	c.csr.MInstret++
	c.stats.count(inst)

	if ex.BranchTaken {
		c.regs.PC = ex.NextPC
	} else {
		c.regs.PC = pc + 4
	}

	if ex.Finished {
		c.finished = true
		return StepResult{Exited: true, ExitCode: c.regs.Read(10)}
	}
	return StepResult{}
}

// Run steps until the exit ecall retires or the cycle budget is exhausted.
// A budget of zero runs until exit. The retired cycle count is reported in
// the result.
func (c *Core) Run(maxCycles uint64) RunResult {
	for {
		res := c.Step()
		if res.Exited {
			return RunResult{Cycles: c.csr.MCycle, Exited: true, ExitCode: res.ExitCode}
		}
		if maxCycles > 0 && c.csr.MCycle >= maxCycles {
			return RunResult{Cycles: c.csr.MCycle}
		}
	}
}

// fetch reads the instruction word at pc. An out-of-range PC reads zero,
// which decodes as an illegal instruction and traps.
func (c *Core) fetch(pc uint32) uint32 {
	return c.bus.ReadWord((pc - DRAMBase) >> 2)
}

// enterTimerInterrupt performs machine-timer trap entry: stash MIE in
// MPIE, disable interrupts, and vector to mtvec. The iteration retires no
// instruction.
func (c *Core) enterTimerInterrupt() {
	if c.csr.MStatus&StatusMIE != 0 {
		c.csr.MStatus |= StatusMPIE
	} else {
		c.csr.MStatus &^= StatusMPIE
	}
	c.csr.MStatus &^= StatusMIE

	c.csr.MEPC = c.regs.PC
	c.csr.MCause = CauseMachineTimer
	c.regs.PC = c.csr.MTVec
	c.lrValid = false

	if c.debug {
		c.logger.Debug("timer interrupt", "mepc", hex32(c.csr.MEPC), "mtvec", hex32(c.csr.MTVec))
	}
}

// hex32 formats a register or address value for trace output.
func hex32(v uint32) string {
	return fmt.Sprintf("0x%08X", v)
}
