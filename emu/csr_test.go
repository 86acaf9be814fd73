package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32sim/emu"
)

var _ = Describe("CSRFile", func() {
	var csr *emu.CSRFile

	BeforeEach(func() {
		csr = emu.NewCSRFile()
	})

	Describe("writable CSRs", func() {
		It("should round-trip writes", func() {
			for _, addr := range []uint32{
				emu.CSRMStatus, emu.CSRMIE, emu.CSRMTVec,
				emu.CSRMScratch, emu.CSRMEPC, emu.CSRMCause,
			} {
				csr.Write(addr, 0x12345678)
				Expect(csr.Read(addr)).To(Equal(uint32(0x12345678)), "csr 0x%03X", addr)
			}
		})
	})

	Describe("read-only CSRs", func() {
		It("should report RV32IMA in misa and ignore writes", func() {
			Expect(csr.Read(emu.CSRMISA)).To(Equal(uint32(0x40001101)))
			csr.Write(emu.CSRMISA, 0)
			Expect(csr.Read(emu.CSRMISA)).To(Equal(uint32(0x40001101)))
		})

		It("should read zero for the id registers", func() {
			for _, addr := range []uint32{
				emu.CSRMVendorID, emu.CSRMArchID, emu.CSRMImpID, emu.CSRMHartID,
			} {
				Expect(csr.Read(addr)).To(BeZero())
			}
		})
	})

	Describe("counters", func() {
		It("should expose mcycle and minstret as split halves", func() {
			csr.MCycle = 0x11223344_55667788
			csr.MInstret = 0x99AABBCC_DDEEFF00

			Expect(csr.Read(emu.CSRMCycle)).To(Equal(uint32(0x55667788)))
			Expect(csr.Read(emu.CSRMCycleH)).To(Equal(uint32(0x11223344)))
			Expect(csr.Read(emu.CSRMInstret)).To(Equal(uint32(0xDDEEFF00)))
			Expect(csr.Read(emu.CSRMInstretH)).To(Equal(uint32(0x99AABBCC)))
		})

		It("should mirror the counters into the user aliases", func() {
			csr.MCycle = 42
			csr.MInstret = 7

			Expect(csr.Read(emu.CSRCycle)).To(Equal(uint32(42)))
			Expect(csr.Read(emu.CSRInstret)).To(Equal(uint32(7)))
			Expect(csr.Read(emu.CSRCycleH)).To(BeZero())
		})

		It("should ignore writes to the user aliases", func() {
			csr.MCycle = 42
			csr.Write(emu.CSRCycle, 0)
			Expect(csr.MCycle).To(Equal(uint64(42)))
		})

		It("should write the counter halves independently", func() {
			csr.Write(emu.CSRMCycle, 0x55667788)
			csr.Write(emu.CSRMCycleH, 0x11223344)
			Expect(csr.MCycle).To(Equal(uint64(0x11223344_55667788)))
		})
	})

	Describe("sink CSRs", func() {
		It("should store without effect", func() {
			for _, addr := range []uint32{
				emu.CSRMEDeleg, emu.CSRMIDeleg, emu.CSRMCountInhibit,
				emu.CSRMTVal, emu.CSRSATP,
			} {
				csr.Write(addr, 0xCAFE)
				Expect(csr.Read(addr)).To(Equal(uint32(0xCAFE)), "csr 0x%03X", addr)
			}
		})
	})

	Describe("unlisted CSRs", func() {
		It("should read zero and drop writes", func() {
			csr.Write(0x7C0, 0xFFFF)
			Expect(csr.Read(0x7C0)).To(BeZero())
		})
	})

	Describe("mip", func() {
		It("should keep MTIP under timer control", func() {
			csr.SetTimerPending(true)
			csr.Write(emu.CSRMIP, 0) // software cannot clear MTIP
			Expect(csr.Read(emu.CSRMIP) & emu.IntMTI).NotTo(BeZero())

			csr.SetTimerPending(false)
			Expect(csr.Read(emu.CSRMIP) & emu.IntMTI).To(BeZero())
		})
	})

	Describe("Reset", func() {
		It("should saturate mtimecmp and clear everything else", func() {
			csr.MTVec = 0x1000
			csr.MCycle = 99
			csr.MTimeCmp = 5

			csr.Reset()

			Expect(csr.MTVec).To(BeZero())
			Expect(csr.MCycle).To(BeZero())
			Expect(csr.MTimeCmp).To(Equal(^uint64(0)))
		})
	})
})
