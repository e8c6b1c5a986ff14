package kernel

import "github.com/danielpatrickdp/relational-ledger/internal/state"

// #region config
// DefaultRuptureThreshold is the risk level that triggers rupture detection
// when no explicit threshold is configured.
const DefaultRuptureThreshold = 0.6

// Config holds construction parameters for a Kernel.
type Config struct {
	RuptureThreshold float64                // risk level in [0, 1] that triggers gating
	InitialState     *state.RelationalState // nil = healthy defaults
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{RuptureThreshold: DefaultRuptureThreshold}
}

// #endregion config

// #region status
// GateEventStatus is one gate transition in a Status report.
type GateEventStatus struct {
	Action      string  `json:"action"`
	Timestamp   string  `json:"timestamp"`
	Reason      string  `json:"reason,omitempty"`
	RuptureRisk float64 `json:"rupture_risk"`
}

// Status is a full inspection snapshot of the kernel.
type Status struct {
	State            state.Snapshot    `json:"state"`
	IsGated          bool              `json:"is_gated"`
	RuptureThreshold float64           `json:"rupture_threshold"`
	SignalCount      int               `json:"signal_count"`
	GateHistory      []GateEventStatus `json:"gate_history"`
}

// #endregion status
