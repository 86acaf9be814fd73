// Package loader provides ELF binary loading for RV32 executables.
package loader

import (
	"debug/elf"
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/rv32sim/emu"
)

// Segment represents a loadable segment from an ELF binary.
type Segment struct {
	// PhysAddr is the physical address where this segment should be loaded.
	PhysAddr uint32
	// Data contains the segment contents from the file.
	Data []byte
	// MemSize is the size in memory (may be larger than len(Data) for BSS).
	MemSize uint32
}

// Program represents a loaded ELF program ready for execution.
type Program struct {
	// Entry is the address where execution should begin.
	Entry uint32
	// Segments contains all loadable segments from the ELF file.
	Segments []Segment
	// TohostAddr is the address of the .tohost section, or zero when the
	// image has none.
	TohostAddr uint32
}

// Load parses an RV32 ELF binary and returns a Program ready for copying
// into simulator memory.
func Load(path string) (*Program, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ELF file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if f.Class != elf.ELFCLASS32 {
		return nil, fmt.Errorf("not a 32-bit ELF file")
	}
	if f.Machine != elf.EM_RISCV {
		return nil, fmt.Errorf("not a RISC-V ELF file (machine type: %v)", f.Machine)
	}

	prog := &Program{
		Entry: uint32(f.Entry),
	}

	for _, phdr := range f.Progs {
		if phdr.Type != elf.PT_LOAD {
			continue
		}

		data := make([]byte, phdr.Filesz)
		if phdr.Filesz > 0 {
			n, err := phdr.ReadAt(data, 0)
			if err != nil && err != io.EOF {
				return nil, fmt.Errorf("failed to read segment at 0x%x: %w", phdr.Paddr, err)
			}
			if uint64(n) != phdr.Filesz {
				return nil, fmt.Errorf("short read for segment at 0x%x: got %d bytes, expected %d",
					phdr.Paddr, n, phdr.Filesz)
			}
		}

		prog.Segments = append(prog.Segments, Segment{
			PhysAddr: uint32(phdr.Paddr),
			Data:     data,
			MemSize:  uint32(phdr.Memsz),
		})
	}

	if sec := f.Section(".tohost"); sec != nil {
		prog.TohostAddr = uint32(sec.Addr)
	}

	return prog, nil
}

// CopyTo writes every segment into simulator memory, zero-filling the BSS
// remainder between filesz and memsz. Segments below DRAM are rejected.
func (p *Program) CopyTo(mem *emu.WordMemory) error {
	for _, seg := range p.Segments {
		if seg.PhysAddr < emu.DRAMBase {
			return fmt.Errorf("segment at 0x%x is below DRAM base 0x%x",
				seg.PhysAddr, emu.DRAMBase)
		}
		base := seg.PhysAddr - emu.DRAMBase
		for i, b := range seg.Data {
			mem.Write8(base+uint32(i), b)
		}
		for i := uint32(len(seg.Data)); i < seg.MemSize; i++ {
			mem.Write8(base+i, 0)
		}
	}
	return nil
}

// LoadRaw places a raw binary image (a flat kernel or a DTB) at the given
// physical address. The original bring-up flow boots Linux from a raw
// kernel at the DRAM base and a DTB at the address handed to x11.
func LoadRaw(path string, mem *emu.WordMemory, physAddr uint32) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read image: %w", err)
	}
	if physAddr < emu.DRAMBase {
		return 0, fmt.Errorf("image address 0x%x is below DRAM base 0x%x",
			physAddr, emu.DRAMBase)
	}
	base := physAddr - emu.DRAMBase
	for i, b := range data {
		mem.Write8(base+uint32(i), b)
	}
	return len(data), nil
}

// ExitStatus decodes the HTIF tohost word: bit 0 set means the test is
// done, and the remaining bits carry the exit code (0 = pass).
func ExitStatus(tohost uint32) (done bool, code uint32) {
	return tohost&1 != 0, tohost >> 1
}
