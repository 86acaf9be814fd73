package emu

// Machine-mode CSR addresses.
const (
	CSRMStatus       uint32 = 0x300
	CSRMISA          uint32 = 0x301
	CSRMEDeleg       uint32 = 0x302
	CSRMIDeleg       uint32 = 0x303
	CSRMIE           uint32 = 0x304
	CSRMTVec         uint32 = 0x305
	CSRMCountInhibit uint32 = 0x320
	CSRMScratch      uint32 = 0x340
	CSRMEPC          uint32 = 0x341
	CSRMCause        uint32 = 0x342
	CSRMTVal         uint32 = 0x343
	CSRMIP           uint32 = 0x344
	CSRSATP          uint32 = 0x180

	CSRMCycle    uint32 = 0xB00
	CSRMCycleH   uint32 = 0xB80
	CSRMInstret  uint32 = 0xB02
	CSRMInstretH uint32 = 0xB82

	// User-mode read-only counter aliases.
	CSRCycle    uint32 = 0xC00
	CSRCycleH   uint32 = 0xC80
	CSRInstret  uint32 = 0xC02
	CSRInstretH uint32 = 0xC82

	CSRMVendorID uint32 = 0xF11
	CSRMArchID   uint32 = 0xF12
	CSRMImpID    uint32 = 0xF13
	CSRMHartID   uint32 = 0xF14
)

// mstatus bits. Only MIE and MPIE participate in this machine-mode-only
// design.
const (
	StatusMIE  uint32 = 1 << 3
	StatusMPIE uint32 = 1 << 7
)

// mie/mip bit for the machine timer interrupt.
const (
	IntMTI uint32 = 1 << 7
)

// Trap causes.
const (
	CauseIllegalInstruction uint32 = 2
	CauseBreakpoint         uint32 = 3
	CauseMachineECall       uint32 = 11
	CauseMachineTimer       uint32 = 0x80000007
)

// MISAValue advertises RV32IMA: XLEN=32 in the top bits plus the I, M, and
// A extension letters.
const MISAValue uint32 = 0x40001101

// CSRFile holds the machine-mode CSR state. Registers with architectural
// side effects are named fields; pure-storage CSRs (medeleg, mideleg,
// mcountinhibit, mtval, satp) live in a sink map. Unlisted CSRs read as
// zero and ignore writes.
type CSRFile struct {
	MStatus  uint32
	MIE      uint32
	MTVec    uint32
	MScratch uint32
	MEPC     uint32
	MCause   uint32
	MIP      uint32

	// MCycle counts step-loop iterations and doubles as mtime.
	MCycle uint64

	// MInstret counts retired instructions.
	MInstret uint64

	// MTimeCmp is the CLINT timer compare register. It is reached through
	// the memory bus, not a CSR address.
	MTimeCmp uint64

	sink map[uint32]uint32
}

// NewCSRFile creates a CSR file in its reset state.
func NewCSRFile() *CSRFile {
	c := &CSRFile{}
	c.Reset()
	return c
}

// Reset restores every CSR to its boot value. mtimecmp starts saturated so
// the timer never fires until software programs it.
func (c *CSRFile) Reset() {
	c.MStatus = 0
	c.MIE = 0
	c.MTVec = 0
	c.MScratch = 0
	c.MEPC = 0
	c.MCause = 0
	c.MIP = 0
	c.MCycle = 0
	c.MInstret = 0
	c.MTimeCmp = ^uint64(0)
	c.sink = map[uint32]uint32{}
}

// Read returns the value of a CSR. Unlisted addresses read as zero.
func (c *CSRFile) Read(addr uint32) uint32 {
	switch addr {
	case CSRMStatus:
		return c.MStatus
	case CSRMISA:
		return MISAValue
	case CSRMIE:
		return c.MIE
	case CSRMTVec:
		return c.MTVec
	case CSRMScratch:
		return c.MScratch
	case CSRMEPC:
		return c.MEPC
	case CSRMCause:
		return c.MCause
	case CSRMIP:
		return c.MIP
	case CSRMCycle, CSRCycle:
		return uint32(c.MCycle)
	case CSRMCycleH, CSRCycleH:
		return uint32(c.MCycle >> 32)
	case CSRMInstret, CSRInstret:
		return uint32(c.MInstret)
	case CSRMInstretH, CSRInstretH:
		return uint32(c.MInstret >> 32)
	case CSRMVendorID, CSRMArchID, CSRMImpID, CSRMHartID:
		return 0
	case CSRMEDeleg, CSRMIDeleg, CSRMCountInhibit, CSRMTVal, CSRSATP:
		return c.sink[addr]
	default:
		return 0
	}
}

// Write updates a CSR. Writes to read-only CSRs and to unlisted addresses
// are silently ignored.
func (c *CSRFile) Write(addr, value uint32) {
	switch addr {
	case CSRMStatus:
		c.MStatus = value
	case CSRMIE:
		c.MIE = value
	case CSRMTVec:
		c.MTVec = value
	case CSRMScratch:
		c.MScratch = value
	case CSRMEPC:
		c.MEPC = value
	case CSRMCause:
		c.MCause = value
	case CSRMIP:
		// MTIP is owned by the timer; software writes keep the other bits.
		c.MIP = (c.MIP & IntMTI) | (value &^ IntMTI)
	case CSRMCycle:
		c.MCycle = c.MCycle&^uint64(0xFFFFFFFF) | uint64(value)
	case CSRMCycleH:
		c.MCycle = c.MCycle&uint64(0xFFFFFFFF) | uint64(value)<<32
	case CSRMInstret:
		c.MInstret = c.MInstret&^uint64(0xFFFFFFFF) | uint64(value)
	case CSRMInstretH:
		c.MInstret = c.MInstret&uint64(0xFFFFFFFF) | uint64(value)<<32
	case CSRMEDeleg, CSRMIDeleg, CSRMCountInhibit, CSRMTVal, CSRSATP:
		c.sink[addr] = value
	}
}

// SetTimerPending mirrors the timer condition into mip.MTIP.
func (c *CSRFile) SetTimerPending(pending bool) {
	if pending {
		c.MIP |= IntMTI
	} else {
		c.MIP &^= IntMTI
	}
}
