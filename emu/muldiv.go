package emu

import "math"

// mulDiv implements the M extension (funct7 == 0x01 under opcode 0x33).
//
// The division edge cases follow the RISC-V convention: divide-by-zero
// yields an all-ones quotient and passes the dividend through as the
// remainder; INT_MIN / −1 wraps to INT_MIN with remainder 0.
func mulDiv(funct3 uint8, rs1Val, rs2Val int32) int32 {
	switch funct3 {
	case 0: // MUL
		return rs1Val * rs2Val
	case 1: // MULH
		return int32(int64(rs1Val) * int64(rs2Val) >> 32)
	case 2: // MULHSU
		return int32(int64(rs1Val) * int64(uint32(rs2Val)) >> 32)
	case 3: // MULHU
		return int32(uint64(uint32(rs1Val)) * uint64(uint32(rs2Val)) >> 32)
	case 4: // DIV
		switch {
		case rs2Val == 0:
			return -1
		case rs1Val == math.MinInt32 && rs2Val == -1:
			return math.MinInt32
		default:
			return rs1Val / rs2Val
		}
	case 5: // DIVU
		if rs2Val == 0 {
			return -1
		}
		return int32(uint32(rs1Val) / uint32(rs2Val))
	case 6: // REM
		switch {
		case rs2Val == 0:
			return rs1Val
		case rs1Val == math.MinInt32 && rs2Val == -1:
			return 0
		default:
			return rs1Val % rs2Val
		}
	default: // REMU
		if rs2Val == 0 {
			return rs1Val
		}
		return int32(uint32(rs1Val) % uint32(rs2Val))
	}
}
