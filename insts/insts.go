// Package insts provides RV32IMA instruction definitions and decoding.
//
// This package implements decoding of RISC-V machine code into structured
// instruction representations. It covers the RV32I base integer set plus
// the M (multiply/divide) and A (atomic) extensions:
//   - Integer register and immediate arithmetic, loads, stores
//   - Branches, JAL, JALR, LUI, AUIPC
//   - SYSTEM instructions: ECALL, EBREAK, WFI, MRET, and the CSR ops
//   - AMO instructions under opcode 0x2F, including LR.W/SC.W
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst := decoder.Decode(0x00100093) // ADDI x1, x0, 1
//	fmt.Printf("Opcode: 0x%02X, Rd: %d, Imm: %d\n", inst.Opcode, inst.Rd, inst.Imm)
package insts

// RV32 major opcodes (bits [6:0] of the instruction word).
const (
	OpLoad    uint8 = 0x03 // LB, LH, LW, LBU, LHU
	OpMiscMem uint8 = 0x0F // FENCE, FENCE.I
	OpImm     uint8 = 0x13 // ADDI, SLTI, SLTIU, XORI, ORI, ANDI, shifts
	OpAUIPC   uint8 = 0x17
	OpStore   uint8 = 0x23 // SB, SH, SW
	OpAMO     uint8 = 0x2F // LR.W, SC.W, AMO*.W
	OpReg     uint8 = 0x33 // R-type ALU and the M extension
	OpLUI     uint8 = 0x37
	OpBranch  uint8 = 0x63 // BEQ, BNE, BLT, BGE, BLTU, BGEU
	OpJALR    uint8 = 0x67
	OpJAL     uint8 = 0x6F
	OpSystem  uint8 = 0x73 // ECALL, EBREAK, WFI, MRET, CSR ops
)

// Atomic operation codes, funct7[6:2] of an opcode-0x2F instruction.
const (
	AtomicADD  uint8 = 0x00
	AtomicSWAP uint8 = 0x01
	AtomicLR   uint8 = 0x02
	AtomicSC   uint8 = 0x03
	AtomicXOR  uint8 = 0x04
	AtomicOR   uint8 = 0x08
	AtomicAND  uint8 = 0x0C
	AtomicMIN  uint8 = 0x10
	AtomicMAX  uint8 = 0x14
	AtomicMINU uint8 = 0x18
	AtomicMAXU uint8 = 0x1C
)

// funct12 values selecting the non-CSR SYSTEM instructions (funct3 == 0).
const (
	SysECALL  uint32 = 0x000
	SysEBREAK uint32 = 0x001
	SysWFI    uint32 = 0x105
	SysMRET   uint32 = 0x302
)
