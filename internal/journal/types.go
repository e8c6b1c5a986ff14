package journal

import "time"

// #region signal-row
// SignalRow is a journaled signal emission.
type SignalRow struct {
	ID          string
	SessionID   string
	Kind        string
	RuptureRisk float64
	Context     string
	CreatedAt   time.Time
}

// #endregion signal-row

// #region gate-event-row
// GateEventRow is a journaled gate transition.
type GateEventRow struct {
	ID          string
	SessionID   string
	Action      string // "closed" | "released"
	Reason      string
	RuptureRisk float64
	CreatedAt   time.Time
}

// #endregion gate-event-row
