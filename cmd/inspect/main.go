package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/relational-ledger/internal/journal"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to journal db")
	last := flag.Int("last", 20, "show N most recent rows per table")
	jsonOut := flag.Bool("json", false, "output as JSON instead of tables")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/journal.db [--last N] [--json]")
		os.Exit(2)
	}

	jnl, err := journal.Open(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer jnl.Close()

	sigRows, err := jnl.ListSignals(*last)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	evRows, err := jnl.ListGateEvents(*last)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *jsonOut {
		if err := printJSON(sigRows, evRows); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}
	printTables(sigRows, evRows)
}

// #endregion main

// #region json-output

type inspectOutput struct {
	Signals    []signalRow    `json:"signals"`
	GateEvents []gateEventRow `json:"gate_events"`
}

type signalRow struct {
	ID          string  `json:"id"`
	SessionID   string  `json:"session_id"`
	Kind        string  `json:"kind"`
	RuptureRisk float64 `json:"rupture_risk"`
	Context     string  `json:"context,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

type gateEventRow struct {
	ID          string  `json:"id"`
	SessionID   string  `json:"session_id"`
	Action      string  `json:"action"`
	Reason      string  `json:"reason,omitempty"`
	RuptureRisk float64 `json:"rupture_risk"`
	CreatedAt   string  `json:"created_at"`
}

func printJSON(sigs []journal.SignalRow, evs []journal.GateEventRow) error {
	out := inspectOutput{
		Signals:    make([]signalRow, len(sigs)),
		GateEvents: make([]gateEventRow, len(evs)),
	}
	for i, s := range sigs {
		out.Signals[i] = signalRow{
			ID:          s.ID,
			SessionID:   s.SessionID,
			Kind:        s.Kind,
			RuptureRisk: s.RuptureRisk,
			Context:     s.Context,
			CreatedAt:   s.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
	}
	for i, e := range evs {
		out.GateEvents[i] = gateEventRow{
			ID:          e.ID,
			SessionID:   e.SessionID,
			Action:      e.Action,
			Reason:      e.Reason,
			RuptureRisk: e.RuptureRisk,
			CreatedAt:   e.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// #endregion json-output

// #region table-output

func printTables(sigs []journal.SignalRow, evs []journal.GateEventRow) {
	fmt.Printf("Signals (%d):\n", len(sigs))
	fmt.Printf("%-12s  %-10s  %-18s  %6s  %s\n", "ID", "Session", "Kind", "Risk", "Time")
	fmt.Printf("%-12s+-%-10s+-%-18s+-%6s+-%s\n",
		"------------", "----------", "------------------", "------", "--------------------")
	for _, s := range sigs {
		fmt.Printf("%-12s  %-10s  %-18s  %6.2f  %s\n",
			shortID(s.ID), shortID(s.SessionID), s.Kind, s.RuptureRisk,
			s.CreatedAt.Format("2006-01-02T15:04:05Z"))
	}

	fmt.Printf("\nGate events (%d):\n", len(evs))
	fmt.Printf("%-12s  %-10s  %-10s  %6s  %-20s  %s\n", "ID", "Session", "Action", "Risk", "Time", "Reason")
	fmt.Printf("%-12s+-%-10s+-%-10s+-%6s+-%-20s+-%s\n",
		"------------", "----------", "----------", "------", "--------------------", "--------")
	for _, e := range evs {
		fmt.Printf("%-12s  %-10s  %-10s  %6.2f  %-20s  %s\n",
			shortID(e.ID), shortID(e.SessionID), e.Action, e.RuptureRisk,
			e.CreatedAt.Format("2006-01-02T15:04:05Z"), e.Reason)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion table-output
