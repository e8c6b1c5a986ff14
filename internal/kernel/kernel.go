package kernel

// #region imports
import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/danielpatrickdp/relational-ledger/internal/gate"
	"github.com/danielpatrickdp/relational-ledger/internal/signals"
	"github.com/danielpatrickdp/relational-ledger/internal/state"
)

// #endregion

// #region kernel-struct

// Kernel is the top-level coordinator: it owns one relational state, one
// gate, and one signal bus, and orchestrates update → risk computation →
// signal emission → gate transition → repair acknowledgment.
//
// The kernel senses and signals but does not decide how repair happens;
// that is the caller's job. Single-writer semantics: the kernel defines no
// internal locking, so concurrent callers must wrap it in their own mutex.
type Kernel struct {
	state     state.RelationalState
	gate      *gate.Gate
	bus       *signals.Bus
	threshold float64
}

// #endregion

// #region constructor

// New creates a kernel from the given configuration.
// The rupture threshold is fixed for the kernel's lifetime.
func New(cfg Config) (*Kernel, error) {
	if cfg.RuptureThreshold < 0.0 || cfg.RuptureThreshold > 1.0 {
		return nil, fmt.Errorf("rupture threshold must be between 0.0 and 1.0, got %v", cfg.RuptureThreshold)
	}
	s := state.NewRelationalState()
	if cfg.InitialState != nil {
		s = *cfg.InitialState
	}
	return &Kernel{
		state:     s,
		gate:      gate.NewGate(),
		bus:       signals.NewBus(),
		threshold: cfg.RuptureThreshold,
	}, nil
}

// #endregion

// #region accessors

// State returns a snapshot copy of the current relational state.
func (k *Kernel) State() state.RelationalState {
	return k.state
}

// RuptureRisk returns the current rupture risk level.
func (k *Kernel) RuptureRisk() float64 {
	return k.state.RuptureRisk
}

// IsGated reports whether interaction is currently blocked.
func (k *Kernel) IsGated() bool {
	return !k.gate.Check()
}

// RuptureThreshold returns the configured threshold.
func (k *Kernel) RuptureThreshold() float64 {
	return k.threshold
}

// SignalHistory returns a copy of all emitted signals.
func (k *Kernel) SignalHistory() []signals.Signal {
	return k.bus.History()
}

// GateHistory returns a copy of the gate transition log.
func (k *Kernel) GateHistory() []gate.Event {
	return k.gate.History()
}

// #endregion

// #region subscription

// Subscribe registers a signal callback and returns its handle token.
func (k *Kernel) Subscribe(fn func(signals.Signal)) string {
	return k.bus.Subscribe(fn)
}

// Unsubscribe removes a previously registered callback by token.
func (k *Kernel) Unsubscribe(token string) {
	k.bus.Unsubscribe(token)
}

// #endregion

// #region update-state

// UpdateState merges the patched primitives into the state, then
// unconditionally recomputes rupture risk. A validation failure abandons
// the transition: state, gate, and bus are left untouched.
func (k *Kernel) UpdateState(p state.Patch) error {
	next, err := k.state.Apply(p)
	if err != nil {
		return err
	}
	k.state = next
	k.ComputeRuptureRisk()
	return nil
}

// #endregion

// #region compute-risk

// ComputeRuptureRisk derives risk as the equal-weighted mean deficiency of
// the four primitives and writes it, with a refreshed timestamp, into the
// live state. When risk reaches the threshold while the gate is open, it
// emits RUPTURE_DETECTED, closes the gate, and marks the state gated. An
// already-closed gate only gets the risk/timestamp refresh; the gate's own
// no-op guard is the second line of defense against double closes.
func (k *Kernel) ComputeRuptureRisk() float64 {
	risk := ((1 - k.state.Trust) +
		(1 - k.state.Intent) +
		(1 - k.state.Narrative) +
		(1 - k.state.Commitments)) / 4

	k.state.RuptureRisk = risk
	k.state.LastUpdated = time.Now().UTC()

	if risk >= k.threshold && k.gate.Check() {
		k.emitRuptureDetected(risk)
		reason := fmt.Sprintf("rupture_risk=%.2f >= threshold=%v", risk, k.threshold)
		k.gate.Close(reason, risk)
		k.state.IsGated = true
		log.Printf("[KERNEL] gate closed: %s", reason)
	}

	return risk
}

// #endregion

// #region acknowledge-repair

// AcknowledgeRepair accepts the caller's claim that repair was performed.
// Returns false without side effects when the gate is already open.
// Otherwise it recomputes risk (the caller should have raised the
// primitives via UpdateState first), releases the gate, and returns true.
// The release is unconditional once closed: the recomputed risk is recorded
// on the released event but not checked against the threshold.
func (k *Kernel) AcknowledgeRepair() bool {
	if k.gate.Check() {
		return false
	}

	k.ComputeRuptureRisk()

	k.gate.Release(k.state.RuptureRisk)
	k.state.IsGated = false
	log.Printf("[KERNEL] gate released: rupture_risk=%.2f", k.state.RuptureRisk)

	return true
}

// #endregion

// #region check-gate

// CheckGate reports whether interaction can proceed.
func (k *Kernel) CheckGate() bool {
	return k.gate.Check()
}

// #endregion

// #region emit

func (k *Kernel) emitRuptureDetected(risk float64) {
	k.bus.Emit(signals.Signal{
		ID:          uuid.New().String(),
		Kind:        signals.KindRuptureDetected,
		Timestamp:   time.Now().UTC(),
		RuptureRisk: risk,
		Context:     fmt.Sprintf("Rupture risk %.2f exceeded threshold %v", risk, k.threshold),
	})
}

// #endregion

// #region status

// Status returns a full inspection snapshot: state, gate flag, threshold,
// emitted-signal count, and the chronological gate history.
func (k *Kernel) Status() Status {
	events := k.gate.History()
	history := make([]GateEventStatus, len(events))
	for i, e := range events {
		history[i] = GateEventStatus{
			Action:      e.Action,
			Timestamp:   e.Timestamp.Format(time.RFC3339Nano),
			Reason:      e.Reason,
			RuptureRisk: e.RuptureRisk,
		}
	}
	return Status{
		State:            k.state.Snapshot(),
		IsGated:          k.IsGated(),
		RuptureThreshold: k.threshold,
		SignalCount:      len(k.bus.History()),
		GateHistory:      history,
	}
}

// #endregion
