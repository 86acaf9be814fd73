package emu

import (
	"github.com/sarchlab/rv32sim/insts"
)

// Simulation memory map. The UART and CLINT windows sit below DRAM and are
// matched before the DRAM bounds check.
const (
	UARTBase uint32 = 0x10000000
	UARTSize uint32 = 0x1000

	// UARTStatusReady is returned for every read in the UART window: the
	// transmitter is always ready in simulation.
	UARTStatusReady uint32 = 0x60

	CLINTTimeCmpLo uint32 = 0x02004000
	CLINTTimeCmpHi uint32 = 0x02004004
	CLINTTimeLo    uint32 = 0x0200BFF8
	CLINTTimeHi    uint32 = 0x0200BFFC

	// DefaultTohostAddr is where riscv-tests link .tohost when the ELF
	// does not say otherwise.
	DefaultTohostAddr uint32 = 0x80001000

	// fromhostOffsetWords separates tohost from the fromhost
	// acknowledgement word.
	fromhostOffsetWords uint32 = 16
)

// MemOut is the memory stage's result record.
type MemOut struct {
	Value    int32
	RegWrite bool
}

// memory performs the load, store, or atomic effect of an executed
// instruction. Non-memory instructions pass the ALU result through.
func (c *Core) memory(ex ExecOut) MemOut {
	out := MemOut{Value: ex.ALUResult, RegWrite: ex.RegWrite}
	if ex.IsTrap {
		return out
	}

	switch {
	case ex.IsAtomic:
		out = c.memAtomic(ex)
	case ex.MemRead:
		out.Value = c.memLoad(uint32(ex.ALUResult), ex.Funct3)
	case ex.MemWrite:
		c.memStore(uint32(ex.ALUResult), ex.Funct3, ex.StoreVal)
		c.lrValid = false
	}

	return out
}

// memLoad reads up to 32 bits at ea and sign- or zero-extends per funct3.
// Misaligned 16- and 32-bit loads that span a word boundary are assembled
// from two adjacent words.
func (c *Core) memLoad(ea uint32, funct3 uint8) int32 {
	raw := c.read32(ea)

	switch funct3 {
	case 0: // LB
		return int32(int8(raw))
	case 1: // LH
		return int32(int16(raw))
	case 4: // LBU
		return int32(raw & 0xFF)
	case 5: // LHU
		return int32(raw & 0xFFFF)
	default: // LW
		return int32(raw)
	}
}

// read32 returns the naturally rotated 32-bit window at ea: MMIO first,
// then DRAM. An out-of-range DRAM read warns and returns zero.
func (c *Core) read32(ea uint32) uint32 {
	switch {
	case ea >= UARTBase && ea < UARTBase+UARTSize:
		return UARTStatusReady
	case ea == CLINTTimeCmpLo:
		return uint32(c.csr.MTimeCmp)
	case ea == CLINTTimeCmpHi:
		return uint32(c.csr.MTimeCmp >> 32)
	case ea == CLINTTimeLo:
		return uint32(c.csr.MCycle)
	case ea == CLINTTimeHi:
		return uint32(c.csr.MCycle >> 32)
	}

	idx := (ea - DRAMBase) >> 2
	if idx >= c.bus.Words() {
		c.logger.Warn("load out of bounds", "addr", ea)
		return 0
	}

	off := ea & 3
	w0 := c.bus.ReadWord(idx)
	w1 := c.bus.ReadWord(idx + 1)
	return w0>>(off*8) | w1<<((4-off)*8)
}

// memStore writes the low funct3-sized part of value at ea. DRAM stores go
// through a read-modify-write with a 64-bit mask split across the two words
// a misaligned access may touch.
func (c *Core) memStore(ea uint32, funct3 uint8, value int32) {
	switch {
	case ea >= UARTBase && ea < UARTBase+UARTSize:
		if ea == UARTBase {
			_, _ = c.uartOut.Write([]byte{byte(value)})
		}
		return
	case ea == CLINTTimeCmpLo:
		c.csr.MTimeCmp = c.csr.MTimeCmp&^uint64(0xFFFFFFFF) | uint64(uint32(value))
		return
	case ea == CLINTTimeCmpHi:
		c.csr.MTimeCmp = c.csr.MTimeCmp&uint64(0xFFFFFFFF) | uint64(uint32(value))<<32
		return
	case ea == CLINTTimeLo, ea == CLINTTimeHi:
		// mtime is a read-only alias of mcycle.
		return
	}

	idx := (ea - DRAMBase) >> 2
	if idx >= c.bus.Words() {
		c.logger.Warn("store out of bounds", "addr", ea)
		return
	}

	off := ea & 3
	var width uint64
	switch funct3 {
	case 0: // SB
		width = 0xFF
	case 1: // SH
		width = 0xFFFF
	default: // SW
		width = 0xFFFFFFFF
	}
	full := width << (off * 8)
	mask0 := uint32(full)
	mask1 := uint32(full >> 32)
	sv := uint32(value)

	w0 := c.bus.ReadWord(idx)
	c.bus.WriteWord(idx, w0&^mask0|sv<<(off*8)&mask0)

	if mask1 != 0 && idx+1 < c.bus.Words() {
		w1 := c.bus.ReadWord(idx + 1)
		c.bus.WriteWord(idx+1, w1&^mask1|sv>>((4-off)*8)&mask1)
	}

	// HTIF hook: acknowledge a tohost store so self-hosted tests that wait
	// on fromhost do not deadlock.
	if c.tohostAddr != 0 && idx == (c.tohostAddr-DRAMBase)>>2 {
		c.bus.WriteWord(idx+fromhostOffsetWords, 1)
	}
}

// memAtomic performs the LR/SC and AMO family. The reservation is a single
// word: LR.W records it, any store or SC (taken or not) clears it.
func (c *Core) memAtomic(ex ExecOut) MemOut {
	ea := uint32(ex.ALUResult)

	switch ex.AtomicOp {
	case insts.AtomicLR:
		v := c.read32(ea)
		c.lrValid = true
		c.lrAddr = ea
		return MemOut{Value: int32(v), RegWrite: true}

	case insts.AtomicSC:
		if c.lrValid && c.lrAddr == ea {
			c.memStore(ea, 2, ex.StoreVal)
			c.lrValid = false
			return MemOut{Value: 0, RegWrite: true}
		}
		c.lrValid = false
		return MemOut{Value: 1, RegWrite: true}

	default:
		old := int32(c.read32(ea))
		c.memStore(ea, 2, amoCompute(ex.AtomicOp, old, ex.StoreVal))
		c.lrValid = false
		return MemOut{Value: old, RegWrite: true}
	}
}

// amoCompute folds the AMO operand into the loaded word.
func amoCompute(op uint8, old, operand int32) int32 {
	switch op {
	case insts.AtomicSWAP:
		return operand
	case insts.AtomicADD:
		return old + operand
	case insts.AtomicXOR:
		return old ^ operand
	case insts.AtomicAND:
		return old & operand
	case insts.AtomicOR:
		return old | operand
	case insts.AtomicMIN:
		if operand < old {
			return operand
		}
		return old
	case insts.AtomicMAX:
		if operand > old {
			return operand
		}
		return old
	case insts.AtomicMINU:
		if uint32(operand) < uint32(old) {
			return operand
		}
		return old
	default: // AMOMAXU.W
		if uint32(operand) > uint32(old) {
			return operand
		}
		return old
	}
}
