package insts

// Instruction represents a decoded RV32 instruction.
//
// The register source values are not part of the record; the decoder is a
// pure function of the instruction word, and the executor reads the register
// file itself.
type Instruction struct {
	Opcode uint8 // bits [6:0]
	Rd     uint8 // bits [11:7]
	Funct3 uint8 // bits [14:12]
	Rs1    uint8 // bits [19:15]
	Rs2    uint8 // bits [24:20]
	Funct7 uint8 // bits [31:25]

	// Imm is the sign-extended immediate. The encoding form is selected by
	// the opcode: S-type for stores, B-type for branches, J-type for JAL,
	// zero for AMOs, and I-type for everything else.
	Imm int32

	// Raw is the undecoded instruction word.
	Raw uint32
}

// CSRAddr returns the CSR address of a SYSTEM instruction, which occupies
// the same bits as the I-type immediate.
func (i *Instruction) CSRAddr() uint32 {
	return i.Raw >> 20
}

// AtomicOp returns funct7[6:2], the operation selector of an AMO.
func (i *Instruction) AtomicOp() uint8 {
	return i.Funct7 >> 2
}

// Decoder decodes RV32 machine code into instructions.
type Decoder struct{}

// NewDecoder creates a new RV32 instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode decodes a 32-bit RV32 instruction word.
func (d *Decoder) Decode(word uint32) *Instruction {
	inst := &Instruction{
		Opcode: uint8(word & 0x7F),         // bits [6:0]
		Rd:     uint8((word >> 7) & 0x1F),  // bits [11:7]
		Funct3: uint8((word >> 12) & 0x7),  // bits [14:12]
		Rs1:    uint8((word >> 15) & 0x1F), // bits [19:15]
		Rs2:    uint8((word >> 20) & 0x1F), // bits [24:20]
		Funct7: uint8(word >> 25),          // bits [31:25]
		Raw:    word,
	}

	switch inst.Opcode {
	case OpStore:
		inst.Imm = immS(word)
	case OpBranch:
		inst.Imm = immB(word)
	case OpJAL:
		inst.Imm = immJ(word)
	case OpAMO:
		inst.Imm = 0
	default:
		// I-type covers JALR, loads, ALU-immediate, and SYSTEM.
		inst.Imm = immI(word)
	}

	return inst
}

// immI extracts the I-type immediate: insn[31:20], sign-extended from 12 bits.
func immI(word uint32) int32 {
	return int32(word) >> 20
}

// immS extracts the S-type immediate: {insn[31:25], insn[11:7]},
// sign-extended from 12 bits.
func immS(word uint32) int32 {
	imm := (word>>25)<<5 | (word>>7)&0x1F
	return int32(imm<<20) >> 20
}

// immB extracts the B-type immediate:
// {insn[31], insn[7], insn[30:25], insn[11:8], 0}, sign-extended from 13 bits.
func immB(word uint32) int32 {
	imm := (word>>31)<<12 |
		((word >> 7) & 0x1) << 11 |
		((word >> 25) & 0x3F) << 5 |
		((word >> 8) & 0xF) << 1
	return int32(imm<<19) >> 19
}

// immJ extracts the J-type immediate:
// {insn[31], insn[19:12], insn[20], insn[30:21], 0}, sign-extended from 21 bits.
func immJ(word uint32) int32 {
	imm := (word>>31)<<20 |
		((word >> 12) & 0xFF) << 12 |
		((word >> 20) & 0x1) << 11 |
		((word >> 21) & 0x3FF) << 1
	return int32(imm<<11) >> 11
}
