package latency

import (
	"encoding/json"
	"fmt"
	"os"
)

// TimingConfig holds latency values per instruction class. The defaults
// describe a small in-order RV32 pipeline; a JSON file can override any
// field.
type TimingConfig struct {
	// ALULatency is the execution latency for register and immediate
	// arithmetic. Default: 1 cycle.
	ALULatency uint64 `json:"alu_latency"`

	// MultiplyLatency is the latency of the M-extension multiplies.
	// Default: 3 cycles.
	MultiplyLatency uint64 `json:"multiply_latency"`

	// DivideLatency is the latency of the shared divider used by
	// DIV/DIVU/REM/REMU. Default: 33 cycles (one bit per cycle plus
	// sign fixup).
	DivideLatency uint64 `json:"divide_latency"`

	// LoadLatency is the load-to-use latency. Default: 2 cycles.
	LoadLatency uint64 `json:"load_latency"`

	// StoreLatency is the store commit latency. Default: 1 cycle.
	StoreLatency uint64 `json:"store_latency"`

	// BranchLatency is the branch resolution latency. Default: 1 cycle.
	BranchLatency uint64 `json:"branch_latency"`

	// JumpLatency covers JAL/JALR. Default: 2 cycles (target redirect).
	JumpLatency uint64 `json:"jump_latency"`

	// AtomicLatency covers LR/SC and the AMOs. Default: 4 cycles
	// (read-modify-write on the bus).
	AtomicLatency uint64 `json:"atomic_latency"`

	// SystemLatency covers CSR ops, ECALL, EBREAK, MRET. Default: 3
	// cycles.
	SystemLatency uint64 `json:"system_latency"`
}

// DefaultTimingConfig returns a TimingConfig with the in-order defaults.
func DefaultTimingConfig() *TimingConfig {
	return &TimingConfig{
		ALULatency:      1,
		MultiplyLatency: 3,
		DivideLatency:   33,
		LoadLatency:     2,
		StoreLatency:    1,
		BranchLatency:   1,
		JumpLatency:     2,
		AtomicLatency:   4,
		SystemLatency:   3,
	}
}

// LoadConfig loads a TimingConfig from a JSON file. Absent fields keep
// their defaults.
func LoadConfig(path string) (*TimingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read timing config file: %w", err)
	}

	config := DefaultTimingConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse timing config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a TimingConfig to a JSON file.
func (c *TimingConfig) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize timing config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write timing config file: %w", err)
	}

	return nil
}

// Validate checks that all latency values are non-zero.
func (c *TimingConfig) Validate() error {
	fields := map[string]uint64{
		"alu_latency":      c.ALULatency,
		"multiply_latency": c.MultiplyLatency,
		"divide_latency":   c.DivideLatency,
		"load_latency":     c.LoadLatency,
		"store_latency":    c.StoreLatency,
		"branch_latency":   c.BranchLatency,
		"jump_latency":     c.JumpLatency,
		"atomic_latency":   c.AtomicLatency,
		"system_latency":   c.SystemLatency,
	}
	for name, v := range fields {
		if v == 0 {
			return fmt.Errorf("%s must be > 0", name)
		}
	}
	return nil
}
