package state

import (
	"fmt"
	"time"
)

// #region validation-error
// ValidationError reports a primitive outside the [0, 1] interval.
type ValidationError struct {
	Field string
	Value float64
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s must be between 0.0 and 1.0, got %v", e.Field, e.Value)
}

// #endregion validation-error

// #region constructors
// NewRelationalState returns a healthy initial state: all primitives 1.0,
// zero risk, gate not engaged.
func NewRelationalState() RelationalState {
	return RelationalState{
		Trust:       1.0,
		Intent:      1.0,
		Narrative:   1.0,
		Commitments: 1.0,
		RuptureRisk: 0.0,
		IsGated:     false,
		LastUpdated: time.Now().UTC(),
	}
}

// New builds a state from explicit primitive values.
func New(trust, intent, narrative, commitments float64) (RelationalState, error) {
	s := RelationalState{
		Trust:       trust,
		Intent:      intent,
		Narrative:   narrative,
		Commitments: commitments,
		LastUpdated: time.Now().UTC(),
	}
	if err := s.validate(); err != nil {
		return RelationalState{}, err
	}
	return s, nil
}

// #endregion constructors

// #region apply
// Apply returns a new state with the patched primitives replaced and the
// rest carried over. RuptureRisk and IsGated pass through untouched; risk
// recomputation is a separate kernel step.
func (s RelationalState) Apply(p Patch) (RelationalState, error) {
	next := s
	if p.Trust != nil {
		next.Trust = *p.Trust
	}
	if p.Intent != nil {
		next.Intent = *p.Intent
	}
	if p.Narrative != nil {
		next.Narrative = *p.Narrative
	}
	if p.Commitments != nil {
		next.Commitments = *p.Commitments
	}
	if err := next.validate(); err != nil {
		return RelationalState{}, err
	}
	next.LastUpdated = time.Now().UTC()
	return next, nil
}

// #endregion apply

// #region validate
func (s RelationalState) validate() error {
	checks := []struct {
		field string
		value float64
	}{
		{"trust", s.Trust},
		{"intent", s.Intent},
		{"narrative", s.Narrative},
		{"commitments", s.Commitments},
	}
	for _, c := range checks {
		if c.value < 0.0 || c.value > 1.0 {
			return &ValidationError{Field: c.field, Value: c.value}
		}
	}
	return nil
}

// #endregion validate

// #region snapshot
// Snapshot returns the serializable view of the state.
func (s RelationalState) Snapshot() Snapshot {
	return Snapshot{
		Trust:       s.Trust,
		Intent:      s.Intent,
		Narrative:   s.Narrative,
		Commitments: s.Commitments,
		RuptureRisk: s.RuptureRisk,
		IsGated:     s.IsGated,
		LastUpdated: s.LastUpdated.Format(time.RFC3339Nano),
	}
}

// #endregion snapshot
