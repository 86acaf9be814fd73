package emu

import "github.com/sarchlab/rv32sim/insts"

// InstClass buckets retired instructions for the timing estimator.
type InstClass uint8

// Instruction classes.
const (
	ClassALU InstClass = iota
	ClassMul
	ClassDiv
	ClassLoad
	ClassStore
	ClassBranch
	ClassJump
	ClassAtomic
	ClassSystem
	NumInstClasses
)

// String returns the class name used in reports.
func (cl InstClass) String() string {
	switch cl {
	case ClassALU:
		return "alu"
	case ClassMul:
		return "mul"
	case ClassDiv:
		return "div"
	case ClassLoad:
		return "load"
	case ClassStore:
		return "store"
	case ClassBranch:
		return "branch"
	case ClassJump:
		return "jump"
	case ClassAtomic:
		return "atomic"
	case ClassSystem:
		return "system"
	default:
		return "unknown"
	}
}

// Stats accumulates per-class retired-instruction counts.
type Stats struct {
	Retired [NumInstClasses]uint64
}

// Total returns the number of retired instructions counted.
func (s *Stats) Total() uint64 {
	var n uint64
	for _, v := range s.Retired {
		n += v
	}
	return n
}

func (s *Stats) count(inst *insts.Instruction) {
	s.Retired[classify(inst)]++
}

func classify(inst *insts.Instruction) InstClass {
	switch inst.Opcode {
	case insts.OpLoad:
		return ClassLoad
	case insts.OpStore:
		return ClassStore
	case insts.OpBranch:
		return ClassBranch
	case insts.OpJAL, insts.OpJALR:
		return ClassJump
	case insts.OpAMO:
		return ClassAtomic
	case insts.OpSystem:
		return ClassSystem
	case insts.OpReg:
		if inst.Funct7 == 0x01 {
			if inst.Funct3 >= 4 {
				return ClassDiv
			}
			return ClassMul
		}
		return ClassALU
	default:
		return ClassALU
	}
}
