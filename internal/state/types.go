package state

import "time"

// #region relational-state
// RelationalState holds the four relational primitives plus derived fields.
// Each primitive is a scalar in [0, 1]; 1.0 is healthy.
type RelationalState struct {
	Trust       float64 // confidence signal
	Intent      float64 // directional signal
	Narrative   float64 // coherence signal
	Commitments float64 // accountability signal

	// Derived by the kernel's risk computation, not by Apply.
	RuptureRisk float64
	IsGated     bool

	LastUpdated time.Time
}

// #endregion relational-state

// #region patch
// Patch carries a partial update to the four primitives.
// A nil field keeps the previous value.
type Patch struct {
	Trust       *float64
	Intent      *float64
	Narrative   *float64
	Commitments *float64
}

// #endregion patch

// #region snapshot
// Snapshot is the JSON-serializable view of a RelationalState.
// Timestamps are rendered as RFC 3339 strings.
type Snapshot struct {
	Trust       float64 `json:"trust"`
	Intent      float64 `json:"intent"`
	Narrative   float64 `json:"narrative"`
	Commitments float64 `json:"commitments"`
	RuptureRisk float64 `json:"rupture_risk"`
	IsGated     bool    `json:"is_gated"`
	LastUpdated string  `json:"last_updated"`
}

// #endregion snapshot
