package kernel

import (
	"math"
	"testing"

	"github.com/danielpatrickdp/relational-ledger/internal/gate"
	"github.com/danielpatrickdp/relational-ledger/internal/signals"
	"github.com/danielpatrickdp/relational-ledger/internal/state"
)

func f(v float64) *float64 { return &v }

func fullPatch(trust, intent, narrative, commitments float64) state.Patch {
	return state.Patch{
		Trust:       f(trust),
		Intent:      f(intent),
		Narrative:   f(narrative),
		Commitments: f(commitments),
	}
}

func mustKernel(t *testing.T, threshold float64) *Kernel {
	t.Helper()
	k, err := New(Config{RuptureThreshold: threshold})
	if err != nil {
		t.Fatalf("build kernel: %v", err)
	}
	return k
}

func riskEqual(got, want float64) bool {
	return math.Abs(got-want) < 1e-9
}

func TestNewDefaults(t *testing.T) {
	k := mustKernel(t, DefaultRuptureThreshold)

	s := k.State()
	if s.Trust != 1.0 || s.Intent != 1.0 || s.Narrative != 1.0 || s.Commitments != 1.0 {
		t.Fatalf("expected healthy defaults, got %+v", s)
	}
	if k.RuptureRisk() != 0.0 {
		t.Errorf("expected zero risk, got %v", k.RuptureRisk())
	}
	if k.IsGated() {
		t.Error("expected not gated")
	}
	if !k.CheckGate() {
		t.Error("expected open gate")
	}
	if k.RuptureThreshold() != 0.6 {
		t.Errorf("expected default threshold 0.6, got %v", k.RuptureThreshold())
	}
}

func TestNewRejectsBadThreshold(t *testing.T) {
	for _, v := range []float64{-0.1, 1.1} {
		if _, err := New(Config{RuptureThreshold: v}); err == nil {
			t.Errorf("threshold %v should be rejected", v)
		}
	}
}

func TestNewWithInitialState(t *testing.T) {
	initial, err := state.New(0.9, 0.9, 0.9, 0.9)
	if err != nil {
		t.Fatal(err)
	}
	k, err := New(Config{RuptureThreshold: 0.6, InitialState: &initial})
	if err != nil {
		t.Fatal(err)
	}
	if k.State().Trust != 0.9 {
		t.Fatalf("expected initial state adopted, got %+v", k.State())
	}
}

func TestRiskFormula(t *testing.T) {
	k := mustKernel(t, 1.0) // high threshold so the gate stays out of the way

	if err := k.UpdateState(fullPatch(0.2, 0.2, 0.2, 0.2)); err != nil {
		t.Fatal(err)
	}
	if !riskEqual(k.RuptureRisk(), 0.8) {
		t.Fatalf("expected risk 0.8, got %v", k.RuptureRisk())
	}

	if err := k.UpdateState(fullPatch(1.0, 0.5, 0.0, 0.5)); err != nil {
		t.Fatal(err)
	}
	if !riskEqual(k.RuptureRisk(), 0.5) {
		t.Fatalf("expected risk 0.5, got %v", k.RuptureRisk())
	}
}

func TestRuptureClosesGateAndEmitsOnce(t *testing.T) {
	k := mustKernel(t, 0.5)
	var received []signals.Signal
	k.Subscribe(func(sig signals.Signal) { received = append(received, sig) })

	if err := k.UpdateState(fullPatch(0.2, 0.2, 0.2, 0.2)); err != nil {
		t.Fatal(err)
	}

	if len(received) != 1 {
		t.Fatalf("expected exactly one signal, got %d", len(received))
	}
	sig := received[0]
	if sig.Kind != signals.KindRuptureDetected {
		t.Errorf("expected RUPTURE_DETECTED, got %s", sig.Kind)
	}
	if !riskEqual(sig.RuptureRisk, 0.8) {
		t.Errorf("expected signal risk 0.8, got %v", sig.RuptureRisk)
	}
	if sig.Context == "" {
		t.Error("expected human-readable context")
	}
	if k.CheckGate() {
		t.Error("expected gate closed")
	}
	if !k.IsGated() {
		t.Error("expected IsGated true")
	}
	if !k.State().IsGated {
		t.Error("expected state gated flag set")
	}
}

func TestSignalEmittedBeforeGateCloses(t *testing.T) {
	k := mustKernel(t, 0.5)
	var openAtEmit bool
	k.Subscribe(func(signals.Signal) { openAtEmit = k.CheckGate() })

	if err := k.UpdateState(fullPatch(0.2, 0.2, 0.2, 0.2)); err != nil {
		t.Fatal(err)
	}

	if !openAtEmit {
		t.Fatal("signal must be emitted while the gate is still open")
	}
}

func TestRecomputeWhileGatedDoesNotReEmit(t *testing.T) {
	k := mustKernel(t, 0.5)
	if err := k.UpdateState(fullPatch(0.2, 0.2, 0.2, 0.2)); err != nil {
		t.Fatal(err)
	}

	before := k.State().LastUpdated
	k.ComputeRuptureRisk()
	if err := k.UpdateState(state.Patch{Trust: f(0.1)}); err != nil {
		t.Fatal(err)
	}

	if len(k.SignalHistory()) != 1 {
		t.Fatalf("expected no re-emission while gated, got %d signals", len(k.SignalHistory()))
	}
	closed := 0
	for _, ev := range k.GateHistory() {
		if ev.Action == gate.ActionClosed {
			closed++
		}
	}
	if closed != 1 {
		t.Fatalf("expected a single closed event, got %d", closed)
	}
	if !riskEqual(k.RuptureRisk(), 0.825) {
		t.Errorf("risk should still be refreshed while gated, got %v", k.RuptureRisk())
	}
	if k.State().LastUpdated.Before(before) {
		t.Error("timestamp should be refreshed while gated")
	}
}

func TestComputeReturnsRisk(t *testing.T) {
	k := mustKernel(t, 1.0)
	if err := k.UpdateState(fullPatch(0.5, 0.5, 0.5, 0.5)); err != nil {
		t.Fatal(err)
	}
	if got := k.ComputeRuptureRisk(); !riskEqual(got, 0.5) {
		t.Fatalf("expected 0.5, got %v", got)
	}
}

func TestThresholdBoundaryTriggers(t *testing.T) {
	// risk == threshold exactly must gate (>= comparison)
	k := mustKernel(t, 0.5)
	if err := k.UpdateState(fullPatch(0.5, 0.5, 0.5, 0.5)); err != nil {
		t.Fatal(err)
	}
	if k.CheckGate() {
		t.Fatal("risk equal to threshold should close the gate")
	}
}

func TestAcknowledgeRepairOnOpenGate(t *testing.T) {
	k := mustKernel(t, 0.5)

	if k.AcknowledgeRepair() {
		t.Fatal("acknowledge on open gate should return false")
	}
	if len(k.GateHistory()) != 0 {
		t.Fatal("acknowledge on open gate should leave history empty")
	}
	if k.RuptureRisk() != 0.0 {
		t.Errorf("acknowledge on open gate should not recompute risk, got %v", k.RuptureRisk())
	}
}

func TestAcknowledgeRepairReleasesGate(t *testing.T) {
	k := mustKernel(t, 0.5)
	if err := k.UpdateState(fullPatch(0.2, 0.2, 0.2, 0.2)); err != nil {
		t.Fatal(err)
	}
	if err := k.UpdateState(fullPatch(0.8, 0.8, 0.8, 0.8)); err != nil {
		t.Fatal(err)
	}

	if !k.AcknowledgeRepair() {
		t.Fatal("acknowledge on closed gate should return true")
	}
	if !k.CheckGate() {
		t.Error("gate should be open after acknowledgment")
	}
	if k.IsGated() || k.State().IsGated {
		t.Error("gated flags should be cleared")
	}

	released := 0
	var last gate.Event
	for _, ev := range k.GateHistory() {
		if ev.Action == gate.ActionReleased {
			released++
			last = ev
		}
	}
	if released != 1 {
		t.Fatalf("expected exactly one released event, got %d", released)
	}
	if !riskEqual(last.RuptureRisk, 0.2) {
		t.Errorf("released event should carry the recomputed risk, got %v", last.RuptureRisk)
	}
}

func TestAcknowledgeRepairReleasesUnconditionally(t *testing.T) {
	// No repair performed: risk is still above threshold, release happens anyway.
	k := mustKernel(t, 0.5)
	if err := k.UpdateState(fullPatch(0.2, 0.2, 0.2, 0.2)); err != nil {
		t.Fatal(err)
	}

	if !k.AcknowledgeRepair() {
		t.Fatal("expected release despite risk above threshold")
	}
	if !k.CheckGate() {
		t.Fatal("gate should be open")
	}
	if !riskEqual(k.RuptureRisk(), 0.8) {
		t.Errorf("expected risk still 0.8, got %v", k.RuptureRisk())
	}
}

func TestUpdateValidationAbandonsTransition(t *testing.T) {
	k := mustKernel(t, 0.5)

	err := k.UpdateState(state.Patch{Trust: f(1.5)})
	if err == nil {
		t.Fatal("expected validation error")
	}

	if k.State().Trust != 1.0 {
		t.Errorf("state should be untouched, got trust %v", k.State().Trust)
	}
	if k.RuptureRisk() != 0.0 {
		t.Errorf("risk should not be recomputed on failed update, got %v", k.RuptureRisk())
	}
	if len(k.SignalHistory()) != 0 {
		t.Error("no signal should be emitted on failed update")
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	k := mustKernel(t, 0.5)
	var calls int
	token := k.Subscribe(func(signals.Signal) { calls++ })
	k.Unsubscribe(token)

	if err := k.UpdateState(fullPatch(0.2, 0.2, 0.2, 0.2)); err != nil {
		t.Fatal(err)
	}
	if calls != 0 {
		t.Fatalf("unsubscribed callback fired %d times", calls)
	}
}

func TestHistoriesAreCopies(t *testing.T) {
	k := mustKernel(t, 0.5)
	if err := k.UpdateState(fullPatch(0.2, 0.2, 0.2, 0.2)); err != nil {
		t.Fatal(err)
	}

	sigs := k.SignalHistory()
	sigs[0].RuptureRisk = 0.0
	if k.SignalHistory()[0].RuptureRisk == 0.0 {
		t.Error("mutating returned signal history must not affect the kernel")
	}

	events := k.GateHistory()
	events[0].Action = "tampered"
	if k.GateHistory()[0].Action != gate.ActionClosed {
		t.Error("mutating returned gate history must not affect the kernel")
	}

	status := k.Status()
	status.GateHistory[0].Action = "tampered"
	if k.Status().GateHistory[0].Action != gate.ActionClosed {
		t.Error("mutating a status report must not affect the kernel")
	}
}

func TestEndToEndRuptureRepairFlow(t *testing.T) {
	k := mustKernel(t, 0.5)

	if err := k.UpdateState(fullPatch(0.1, 0.1, 0.2, 0.2)); err != nil {
		t.Fatal(err)
	}
	if k.CheckGate() {
		t.Fatal("expected gated after damaging exchange")
	}
	if len(k.SignalHistory()) != 1 {
		t.Fatalf("expected 1 signal, got %d", len(k.SignalHistory()))
	}
	if !riskEqual(k.RuptureRisk(), 0.85) {
		t.Fatalf("expected risk 0.85, got %v", k.RuptureRisk())
	}

	if err := k.UpdateState(fullPatch(0.8, 0.8, 0.8, 0.8)); err != nil {
		t.Fatal(err)
	}
	if !k.AcknowledgeRepair() {
		t.Fatal("expected release")
	}
	if !k.CheckGate() {
		t.Fatal("expected open gate after acknowledgment")
	}

	status := k.Status()
	if status.SignalCount != 1 {
		t.Errorf("expected signal count 1, got %d", status.SignalCount)
	}
	if len(status.GateHistory) != 2 {
		t.Fatalf("expected 2 gate events, got %d", len(status.GateHistory))
	}
	if status.GateHistory[0].Action != gate.ActionClosed || status.GateHistory[1].Action != gate.ActionReleased {
		t.Fatalf("expected [closed, released], got [%s, %s]",
			status.GateHistory[0].Action, status.GateHistory[1].Action)
	}
	if status.RuptureThreshold != 0.5 {
		t.Errorf("expected threshold 0.5 in status, got %v", status.RuptureThreshold)
	}
	if status.IsGated {
		t.Error("expected status not gated")
	}
}
