package emu_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32sim/emu"
)

// execOne runs a single instruction with the register file prepared by
// setup and returns the core for inspection.
func execOne(word uint32, setup func(*emu.RegFile)) *emu.Core {
	core, _ := newTestCore([]uint32{word})
	if setup != nil {
		setup(core.RegFile())
	}
	core.Step()
	return core
}

var _ = Describe("Executor", func() {
	Describe("R-type ALU", func() {
		It("should execute ADD and SUB", func() {
			core := execOne(encodeR(0x00, 2, 1, 0, 3), func(r *emu.RegFile) {
				r.Write(1, 10)
				r.Write(2, -3)
			})
			Expect(core.RegFile().Read(3)).To(Equal(int32(7)))

			core = execOne(encodeR(0x20, 2, 1, 0, 3), func(r *emu.RegFile) {
				r.Write(1, 10)
				r.Write(2, -3)
			})
			Expect(core.RegFile().Read(3)).To(Equal(int32(13)))
		})

		It("should mask the shift amount to 5 bits", func() {
			core := execOne(encodeR(0x00, 2, 1, 1, 3), func(r *emu.RegFile) {
				r.Write(1, 1)
				r.Write(2, 33) // shamt = 1
			})
			Expect(core.RegFile().Read(3)).To(Equal(int32(2)))
		})

		It("should distinguish SRL from SRA", func() {
			core := execOne(encodeR(0x00, 2, 1, 5, 3), func(r *emu.RegFile) {
				r.Write(1, -8)
				r.Write(2, 1)
			})
			Expect(uint32(core.RegFile().Read(3))).To(Equal(uint32(0x7FFFFFFC)))

			core = execOne(encodeR(0x20, 2, 1, 5, 3), func(r *emu.RegFile) {
				r.Write(1, -8)
				r.Write(2, 1)
			})
			Expect(core.RegFile().Read(3)).To(Equal(int32(-4)))
		})

		It("should compare signed for SLT and unsigned for SLTU", func() {
			core := execOne(encodeR(0x00, 2, 1, 2, 3), func(r *emu.RegFile) {
				r.Write(1, -1)
				r.Write(2, 1)
			})
			Expect(core.RegFile().Read(3)).To(Equal(int32(1)))

			core = execOne(encodeR(0x00, 2, 1, 3, 3), func(r *emu.RegFile) {
				r.Write(1, -1) // 0xFFFFFFFF unsigned
				r.Write(2, 1)
			})
			Expect(core.RegFile().Read(3)).To(Equal(int32(0)))
		})

		It("should trap an unknown funct7", func() {
			core := execOne(encodeR(0x11, 2, 1, 0, 3), nil)
			Expect(core.CSRFile().MCause).To(Equal(emu.CauseIllegalInstruction))
		})
	})

	Describe("I-type ALU", func() {
		It("should execute ADDI with a negative immediate", func() {
			core := execOne(addi(3, 1, -5), func(r *emu.RegFile) {
				r.Write(1, 3)
			})
			Expect(core.RegFile().Read(3)).To(Equal(int32(-2)))
		})

		It("should select SRAI by bit 30", func() {
			srai := encodeI(0x13, 5, 3, 1, 2) | 1<<30
			core := execOne(srai, func(r *emu.RegFile) {
				r.Write(1, -16)
			})
			Expect(core.RegFile().Read(3)).To(Equal(int32(-4)))

			srli := encodeI(0x13, 5, 3, 1, 2)
			core = execOne(srli, func(r *emu.RegFile) {
				r.Write(1, -16)
			})
			Expect(uint32(core.RegFile().Read(3))).To(Equal(uint32(0x3FFFFFFC)))
		})

		It("should compare SLTIU against the sign-extended immediate", func() {
			core := execOne(encodeI(0x13, 3, 3, 1, -1), func(r *emu.RegFile) {
				r.Write(1, 5)
			})
			// -1 sign-extends to 0xFFFFFFFF, so almost everything is below it.
			Expect(core.RegFile().Read(3)).To(Equal(int32(1)))
		})
	})

	Describe("LUI and AUIPC", func() {
		It("should load the upper immediate", func() {
			core := execOne(encodeLUI(5, 0xAABBD000), nil)
			Expect(uint32(core.RegFile().Read(5))).To(Equal(uint32(0xAABBD000)))
		})

		It("should add the upper immediate to the PC", func() {
			core := execOne(encodeAUIPC(5, 0x1000), nil)
			Expect(uint32(core.RegFile().Read(5))).To(Equal(emu.DRAMBase + 0x1000))
		})
	})

	Describe("M extension", func() {
		mul := func(funct3 uint32, a, b int32) int32 {
			core := execOne(encodeR(0x01, 2, 1, funct3, 3), func(r *emu.RegFile) {
				r.Write(1, a)
				r.Write(2, b)
			})
			return core.RegFile().Read(3)
		}

		It("should truncate MUL to 32 bits", func() {
			Expect(mul(0, 0x10000, 0x10000)).To(Equal(int32(0)))
			Expect(mul(0, 7, -3)).To(Equal(int32(-21)))
		})

		It("should return high halves for MULH/MULHSU/MULHU", func() {
			Expect(mul(1, -1, -1)).To(Equal(int32(0)))                       // MULH
			Expect(uint32(mul(2, -1, -1))).To(Equal(uint32(0xFFFFFFFF)))     // MULHSU
			Expect(uint32(mul(3, -1, -1))).To(Equal(uint32(0xFFFFFFFE)))     // MULHU
		})

		It("should handle the signed division overflow", func() {
			Expect(mul(4, math.MinInt32, -1)).To(Equal(int32(math.MinInt32))) // DIV
			Expect(mul(6, math.MinInt32, -1)).To(Equal(int32(0)))             // REM
		})

		It("should handle division by zero", func() {
			Expect(mul(4, 42, 0)).To(Equal(int32(-1)))                    // DIV
			Expect(mul(6, 42, 0)).To(Equal(int32(42)))                    // REM
			Expect(uint32(mul(5, 42, 0))).To(Equal(uint32(0xFFFFFFFF)))   // DIVU
			Expect(mul(7, 42, 0)).To(Equal(int32(42)))                    // REMU
		})

		It("should follow the dividend's sign for REM", func() {
			Expect(mul(4, -7, 2)).To(Equal(int32(-3)))
			Expect(mul(6, -7, 2)).To(Equal(int32(-1)))
			Expect(mul(6, 7, -2)).To(Equal(int32(1)))
		})
	})

	Describe("CSR operations", func() {
		It("should read the old value and write unconditionally for CSRRW", func() {
			core, _ := newTestCore([]uint32{
				encodeCSR(1, 0x340, 1, 2), // csrrw x2, mscratch, x1
			})
			core.RegFile().Write(1, 0x1234)
			core.CSRFile().MScratch = 0x5678

			core.Step()

			Expect(core.RegFile().Read(2)).To(Equal(int32(0x5678)))
			Expect(core.CSRFile().MScratch).To(Equal(uint32(0x1234)))
		})

		It("should skip the write for CSRRS with rs1 == x0", func() {
			core, _ := newTestCore([]uint32{
				encodeCSR(2, 0x340, 0, 2), // csrrs x2, mscratch, x0
			})
			core.CSRFile().MScratch = 0xFF

			core.Step()

			Expect(core.RegFile().Read(2)).To(Equal(int32(0xFF)))
			Expect(core.CSRFile().MScratch).To(Equal(uint32(0xFF)))
		})

		It("should set and clear bits for CSRRS and CSRRC", func() {
			core, _ := newTestCore([]uint32{
				encodeCSR(2, 0x340, 1, 0), // csrrs x0, mscratch, x1
				encodeCSR(3, 0x340, 2, 0), // csrrc x0, mscratch, x2
			})
			core.RegFile().Write(1, 0x0F0)
			core.RegFile().Write(2, 0x030)
			core.CSRFile().MScratch = 0x00F

			core.Step()
			Expect(core.CSRFile().MScratch).To(Equal(uint32(0x0FF)))
			core.Step()
			Expect(core.CSRFile().MScratch).To(Equal(uint32(0x0CF)))
		})

		It("should use the rs1 field as the immediate for CSRRWI", func() {
			core, _ := newTestCore([]uint32{
				encodeCSR(5, 0x340, 0x15, 2), // csrrwi x2, mscratch, 21
			})
			core.Step()

			Expect(core.CSRFile().MScratch).To(Equal(uint32(21)))
		})

		It("should skip the write for CSRRSI/CSRRCI with a zero immediate", func() {
			core, _ := newTestCore([]uint32{
				encodeCSR(6, 0x340, 0, 2), // csrrsi x2, mscratch, 0
				encodeCSR(7, 0x340, 0, 3), // csrrci x3, mscratch, 0
			})
			core.CSRFile().MScratch = 0xAA

			core.Step()

			Expect(core.RegFile().Read(2)).To(Equal(int32(0xAA)))
			Expect(core.CSRFile().MScratch).To(Equal(uint32(0xAA)))

			core.Step()

			Expect(core.RegFile().Read(3)).To(Equal(int32(0xAA)))
			Expect(core.CSRFile().MScratch).To(Equal(uint32(0xAA)))
		})

		It("should trap the unused funct3 encoding", func() {
			core, _ := newTestCore([]uint32{
				encodeCSR(4, 0x340, 0, 2),
			})
			core.Step()

			Expect(core.CSRFile().MCause).To(Equal(emu.CauseIllegalInstruction))
		})
	})

	Describe("trap synthesis", func() {
		It("should suppress writeback of the trapping instruction", func() {
			core, _ := newTestCore([]uint32{
				encodeR(0x11, 2, 1, 0, 3), // illegal funct7
			})
			core.RegFile().Write(3, 77)

			core.Step()

			Expect(core.RegFile().Read(3)).To(Equal(int32(77)))
		})

		It("should record mepc and redirect to mtvec on ecall", func() {
			core, _ := newTestCore([]uint32{
				addi(1, 0, 1),
				ecallWord,
			})
			core.CSRFile().MTVec = emu.DRAMBase + 0x100

			core.Step()
			res := core.Step()

			Expect(res.Exited).To(BeFalse()) // x17 != 93
			Expect(core.CSRFile().MCause).To(Equal(emu.CauseMachineECall))
			Expect(core.CSRFile().MEPC).To(Equal(emu.DRAMBase + 4))
			Expect(core.RegFile().PC).To(Equal(emu.DRAMBase + 0x100))
		})
	})
})
