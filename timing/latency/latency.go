// Package latency provides a static instruction timing model.
//
// The model scores a retired-instruction mix against a per-class latency
// table to estimate how many cycles the program would take on a simple
// in-order pipeline. It is a reporting aid: the architectural cycle
// counter of the functional core always advances one per step.
package latency

import (
	"github.com/sarchlab/rv32sim/emu"
)

// Table provides per-class latency lookups.
type Table struct {
	config *TimingConfig
}

// NewTable creates a latency table with the default timing values.
func NewTable() *Table {
	return &Table{config: DefaultTimingConfig()}
}

// NewTableWithConfig creates a latency table with a custom configuration.
func NewTableWithConfig(config *TimingConfig) *Table {
	return &Table{config: config}
}

// ClassLatency returns the latency in cycles charged to one instruction of
// the given class.
func (t *Table) ClassLatency(class emu.InstClass) uint64 {
	switch class {
	case emu.ClassMul:
		return t.config.MultiplyLatency
	case emu.ClassDiv:
		return t.config.DivideLatency
	case emu.ClassLoad:
		return t.config.LoadLatency
	case emu.ClassStore:
		return t.config.StoreLatency
	case emu.ClassBranch:
		return t.config.BranchLatency
	case emu.ClassJump:
		return t.config.JumpLatency
	case emu.ClassAtomic:
		return t.config.AtomicLatency
	case emu.ClassSystem:
		return t.config.SystemLatency
	default:
		return t.config.ALULatency
	}
}

// Estimate scores a full retired-instruction mix.
func (t *Table) Estimate(stats emu.Stats) uint64 {
	var cycles uint64
	for class := emu.InstClass(0); class < emu.NumInstClasses; class++ {
		cycles += stats.Retired[class] * t.ClassLatency(class)
	}
	return cycles
}

// Config returns the current timing configuration.
func (t *Table) Config() *TimingConfig {
	return t.config
}
