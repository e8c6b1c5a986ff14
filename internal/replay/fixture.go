package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/relational-ledger/internal/state"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a scenario fixture.
type Fixture struct {
	Description      string             `json:"description"`
	RuptureThreshold float64            `json:"rupture_threshold"`
	StartState       *FixtureStartState `json:"start_state,omitempty"`
	Steps            []FixtureStep      `json:"steps"`
}

// FixtureStartState overrides the default healthy initial state.
type FixtureStartState struct {
	Trust       float64 `json:"trust"`
	Intent      float64 `json:"intent"`
	Narrative   float64 `json:"narrative"`
	Commitments float64 `json:"commitments"`
}

// FixtureStep is one scripted kernel operation plus its expectations.
// Op is "update", "acknowledge", or "check".
type FixtureStep struct {
	StepID   string           `json:"step_id"`
	Op       string           `json:"op"`
	Patch    *FixturePatch    `json:"patch,omitempty"`
	Expected *FixtureExpected `json:"expected,omitempty"`
}

// FixturePatch mirrors state.Patch with JSON tags. Absent fields keep
// their previous values.
type FixturePatch struct {
	Trust       *float64 `json:"trust,omitempty"`
	Intent      *float64 `json:"intent,omitempty"`
	Narrative   *float64 `json:"narrative,omitempty"`
	Commitments *float64 `json:"commitments,omitempty"`
}

// FixtureExpected lists the assertions for a step. Nil fields are not
// checked.
type FixtureExpected struct {
	RuptureRisk *float64 `json:"rupture_risk,omitempty"`
	Gated       *bool    `json:"gated,omitempty"`
	SignalCount *int     `json:"signal_count,omitempty"`
	Released    *bool    `json:"released,omitempty"` // acknowledge return value
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// ToPatch converts a FixturePatch to a domain Patch.
func (p *FixturePatch) ToPatch() state.Patch {
	return state.Patch{
		Trust:       p.Trust,
		Intent:      p.Intent,
		Narrative:   p.Narrative,
		Commitments: p.Commitments,
	}
}

// ToState converts a FixtureStartState to a domain RelationalState.
func (s *FixtureStartState) ToState() (state.RelationalState, error) {
	return state.New(s.Trust, s.Intent, s.Narrative, s.Commitments)
}

// #endregion fixture-loader
