package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/relational-ledger/internal/journal"
	"github.com/danielpatrickdp/relational-ledger/internal/kernel"
	"github.com/danielpatrickdp/relational-ledger/internal/signals"
	"github.com/danielpatrickdp/relational-ledger/internal/state"
)

// #region main

// Walks the kernel through a full rupture and repair cycle: a damaging
// exchange trips the threshold, the gate blocks interaction, a repair
// raises the primitives, and acknowledgment releases the gate.
func main() {
	threshold := flag.Float64("threshold", 0.5, "rupture threshold in [0, 1]")
	dbPath := flag.String("db", "", "optional journal db path (records signals and gate events)")
	flag.Parse()

	k, err := kernel.New(kernel.Config{RuptureThreshold: *threshold})
	if err != nil {
		fmt.Fprintf(os.Stderr, "build kernel: %v\n", err)
		os.Exit(2)
	}

	var jnl *journal.Journal
	sessionID := journal.NewSessionID()
	if *dbPath != "" {
		jnl, err = journal.Open(*dbPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open journal: %v\n", err)
			os.Exit(2)
		}
		defer jnl.Close()
		rec := journal.NewRecorder(jnl, sessionID)
		k.Subscribe(rec.Handle)
	}

	k.Subscribe(func(sig signals.Signal) {
		fmt.Printf("\n!! SIGNAL: %s\n", sig)
	})

	fmt.Println("1. Initial state (healthy relationship)")
	printState(k)

	fmt.Println("\n2. Exchange damages trust and narrative...")
	if err := k.UpdateState(patch(0.2, 0.3, 0.2, 0.3)); err != nil {
		fmt.Fprintf(os.Stderr, "update: %v\n", err)
		os.Exit(1)
	}
	printState(k)

	fmt.Println("\n3. Interaction is blocked, repair required")
	if !k.CheckGate() {
		fmt.Println("   cannot proceed until repair")
	}

	fmt.Println("\n4. External repair raises the primitives...")
	if err := k.UpdateState(patch(0.8, 0.8, 0.8, 0.8)); err != nil {
		fmt.Fprintf(os.Stderr, "update: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\n5. Acknowledge repair")
	released := k.AcknowledgeRepair()
	fmt.Printf("   gate released: %v\n", released)
	printState(k)

	if jnl != nil {
		for _, ev := range k.GateHistory() {
			if err := jnl.RecordGateEvent(sessionID, ev); err != nil {
				fmt.Fprintf(os.Stderr, "journal gate event: %v\n", err)
				os.Exit(1)
			}
		}
		fmt.Printf("\nJournaled session %s to %s\n", sessionID, *dbPath)
	}

	fmt.Println("\nStatus:")
	data, err := json.MarshalIndent(k.Status(), "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshal status: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(data))
}

// #endregion main

// #region helpers

func patch(trust, intent, narrative, commitments float64) state.Patch {
	return state.Patch{
		Trust:       &trust,
		Intent:      &intent,
		Narrative:   &narrative,
		Commitments: &commitments,
	}
}

func printState(k *kernel.Kernel) {
	s := k.State()
	fmt.Printf("   trust=%.2f intent=%.2f narrative=%.2f commitments=%.2f\n",
		s.Trust, s.Intent, s.Narrative, s.Commitments)
	fmt.Printf("   rupture_risk=%.2f gate_open=%v\n", k.RuptureRisk(), k.CheckGate())
}

// #endregion helpers
