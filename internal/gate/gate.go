package gate

import (
	"time"

	"github.com/google/uuid"
)

// #region gate
// Gate blocks interaction while closed. The kernel closes it on rupture
// detection and releases it once repair is acknowledged; the gate itself
// does not know what repair looks like.
type Gate struct {
	status   Status
	closedAt *time.Time
	reason   string
	history  []Event
}

// NewGate returns an open gate with empty history.
func NewGate() *Gate {
	return &Gate{status: StatusOpen}
}

// #endregion gate

// #region accessors
// Status returns the current flow-control position.
func (g *Gate) Status() Status {
	return g.status
}

// ClosedAt returns when the gate closed, or nil while open.
func (g *Gate) ClosedAt() *time.Time {
	if g.closedAt == nil {
		return nil
	}
	t := *g.closedAt
	return &t
}

// Reason returns the close reason, empty while open.
func (g *Gate) Reason() string {
	return g.reason
}

// Check reports whether interaction can proceed.
func (g *Gate) Check() bool {
	return g.status == StatusOpen
}

// History returns a copy of the transition log in chronological order.
func (g *Gate) History() []Event {
	out := make([]Event, len(g.history))
	copy(out, g.history)
	return out
}

// #endregion accessors

// #region close
// Close blocks interaction until repair. No-op when already closed.
func (g *Gate) Close(reason string, risk float64) {
	if g.status == StatusClosed {
		return
	}
	now := time.Now().UTC()
	g.status = StatusClosed
	g.closedAt = &now
	g.reason = reason
	g.history = append(g.history, Event{
		ID:          uuid.New().String(),
		Action:      ActionClosed,
		Timestamp:   now,
		Reason:      reason,
		RuptureRisk: risk,
	})
}

// #endregion close

// #region release
// Release reopens the gate after a repair claim. No-op when already open.
func (g *Gate) Release(risk float64) {
	if g.status == StatusOpen {
		return
	}
	g.status = StatusOpen
	g.history = append(g.history, Event{
		ID:          uuid.New().String(),
		Action:      ActionReleased,
		Timestamp:   time.Now().UTC(),
		Reason:      ReasonRepairAcknowledged,
		RuptureRisk: risk,
	})
	g.closedAt = nil
	g.reason = ""
}

// #endregion release
