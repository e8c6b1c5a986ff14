package signals

import (
	"fmt"
	"time"
)

// #region kind
// Kind enumerates the signal variants the kernel can emit.
type Kind string

const (
	KindRuptureDetected Kind = "RUPTURE_DETECTED"
)

// #endregion kind

// #region signal
// Signal is an immutable observation record. Signals nudge upward; they
// carry no instructions.
type Signal struct {
	ID          string
	Kind        Kind
	Timestamp   time.Time
	RuptureRisk float64
	Context     string // optional free text
}

func (s Signal) String() string {
	return fmt.Sprintf("[%s] risk=%.2f at %s", s.Kind, s.RuptureRisk, s.Timestamp.Format(time.RFC3339))
}

// #endregion signal
