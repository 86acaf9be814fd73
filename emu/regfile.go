// Package emu provides functional RV32IMA emulation.
package emu

// Architectural reset values.
const (
	// ReturnAddrSentinel is placed in x1 at reset so that a stray return
	// from the entry function is recognizable in a trace.
	ReturnAddrSentinel = 0xDEADBEEF

	// DefaultDTBAddr is the device-tree blob pointer handed to the kernel
	// in x11 at reset.
	DefaultDTBAddr = 0x80800000
)

// RegFile represents the RV32 integer register file and the program counter.
// Register x0 is architecturally zero; the slot is re-cleared after every
// write rather than guarded on the write path.
type RegFile struct {
	// X holds the general-purpose registers x0-x31 as signed words.
	X [32]int32

	// PC is the program counter.
	PC uint32
}

// Read returns a register value. Register 0 always reads as 0.
func (r *RegFile) Read(reg uint8) int32 {
	if reg == 0 {
		return 0
	}
	return r.X[reg]
}

// Write writes a value to a register. A write to register 0 is discarded
// by re-clearing the slot, preserving the x0 invariant.
func (r *RegFile) Write(reg uint8, value int32) {
	r.X[reg] = value
	r.X[0] = 0
}

// Reset clears all registers and installs the boot-time sentinels: the
// return-address marker in x1, the stack pointer in x2, the hart id in x10,
// and the DTB pointer in x11.
func (r *RegFile) Reset(entryPC, stackTop, dtbAddr uint32) {
	for i := range r.X {
		r.X[i] = 0
	}
	sentinel := uint32(ReturnAddrSentinel)
	r.X[1] = int32(sentinel)
	r.X[2] = int32(stackTop)
	r.X[10] = 0
	r.X[11] = int32(dtbAddr)
	r.PC = entryPC
}
