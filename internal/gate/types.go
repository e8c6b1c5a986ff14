package gate

import "time"

// #region status
// Status is the gate's flow-control position.
type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// #endregion status

// #region actions
// Actions recorded in the gate history.
const (
	ActionClosed   = "closed"
	ActionReleased = "released"
)

// ReasonRepairAcknowledged is the fixed reason recorded on release.
const ReasonRepairAcknowledged = "repair_acknowledged"

// #endregion actions

// #region event
// Event records a single gate transition.
type Event struct {
	ID          string
	Action      string // "closed" | "released"
	Timestamp   time.Time
	Reason      string
	RuptureRisk float64 // risk at the moment of the transition
}

// #endregion event
