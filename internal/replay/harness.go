package replay

import (
	"fmt"
	"math"

	"github.com/danielpatrickdp/relational-ledger/internal/kernel"
)

// #region types

// riskEpsilon is the tolerance for expected-risk comparisons.
const riskEpsilon = 1e-9

// StepResult captures the outcome of one scripted step.
type StepResult struct {
	StepID      string
	Op          string
	RuptureRisk float64
	Gated       bool
	SignalCount int
	Released    *bool // set for acknowledge steps
	Err         string

	Matched    bool
	Mismatches []string
}

// Summary provides aggregate stats from a harness run.
type Summary struct {
	TotalSteps  int
	Matches     int
	Divergences int
	FinalStatus kernel.Status
}

// #endregion types

// #region run

// Run drives a fresh kernel through the fixture's steps, checking each
// step's expectations. Operates entirely in-memory.
func Run(f *Fixture) ([]StepResult, Summary, error) {
	cfg := kernel.Config{RuptureThreshold: f.RuptureThreshold}
	if f.StartState != nil {
		s, err := f.StartState.ToState()
		if err != nil {
			return nil, Summary{}, fmt.Errorf("start state: %w", err)
		}
		cfg.InitialState = &s
	}

	k, err := kernel.New(cfg)
	if err != nil {
		return nil, Summary{}, fmt.Errorf("build kernel: %w", err)
	}

	results := make([]StepResult, 0, len(f.Steps))
	summary := Summary{TotalSteps: len(f.Steps)}

	for _, step := range f.Steps {
		res := StepResult{StepID: step.StepID, Op: step.Op}

		switch step.Op {
		case "update":
			patch := FixturePatch{}
			if step.Patch != nil {
				patch = *step.Patch
			}
			if err := k.UpdateState(patch.ToPatch()); err != nil {
				res.Err = err.Error()
			}
		case "acknowledge":
			released := k.AcknowledgeRepair()
			res.Released = &released
		case "check":
			// observation only
		default:
			res.Err = fmt.Sprintf("unknown op %q", step.Op)
		}

		res.RuptureRisk = k.RuptureRisk()
		res.Gated = k.IsGated()
		res.SignalCount = len(k.SignalHistory())

		res.Matched, res.Mismatches = checkExpected(step.Expected, res)
		if res.Matched {
			summary.Matches++
		} else {
			summary.Divergences++
		}
		results = append(results, res)
	}

	summary.FinalStatus = k.Status()
	return results, summary, nil
}

// #endregion run

// #region expectations

// checkExpected compares a step result against its expectations.
// A step with no expectations (or an op error) counts as matched unless an
// assertion fails; op errors are surfaced in StepResult.Err.
func checkExpected(exp *FixtureExpected, res StepResult) (bool, []string) {
	if exp == nil {
		return true, nil
	}

	var mismatches []string
	if exp.RuptureRisk != nil && math.Abs(res.RuptureRisk-*exp.RuptureRisk) > riskEpsilon {
		mismatches = append(mismatches,
			fmt.Sprintf("rupture_risk: expected %.4f, got %.4f", *exp.RuptureRisk, res.RuptureRisk))
	}
	if exp.Gated != nil && res.Gated != *exp.Gated {
		mismatches = append(mismatches,
			fmt.Sprintf("gated: expected %v, got %v", *exp.Gated, res.Gated))
	}
	if exp.SignalCount != nil && res.SignalCount != *exp.SignalCount {
		mismatches = append(mismatches,
			fmt.Sprintf("signal_count: expected %d, got %d", *exp.SignalCount, res.SignalCount))
	}
	if exp.Released != nil {
		if res.Released == nil {
			mismatches = append(mismatches, "released: expected but step was not an acknowledge")
		} else if *res.Released != *exp.Released {
			mismatches = append(mismatches,
				fmt.Sprintf("released: expected %v, got %v", *exp.Released, *res.Released))
		}
	}

	return len(mismatches) == 0, mismatches
}

// #endregion expectations
