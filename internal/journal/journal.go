package journal

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/relational-ledger/internal/gate"
	"github.com/danielpatrickdp/relational-ledger/internal/signals"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS signal_log (
	id            TEXT PRIMARY KEY,
	session_id    TEXT NOT NULL,
	kind          TEXT NOT NULL,
	rupture_risk  REAL NOT NULL,
	context       TEXT,
	created_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS gate_event_log (
	id            TEXT PRIMARY KEY,
	session_id    TEXT NOT NULL,
	action        TEXT NOT NULL,
	reason        TEXT,
	rupture_risk  REAL NOT NULL,
	created_at    TEXT NOT NULL
);
`

// #endregion schema

// #region journal-struct
// Journal is a write-only audit log in SQLite. The kernel never reads it
// back; it exists for post-hoc inspection via cmd/inspect.
type Journal struct {
	db *sql.DB
}

// #endregion journal-struct

// #region constructor
// Open opens (or creates) the journal database and runs migrations.
func Open(dbPath string) (*Journal, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Journal{db: db}, nil
}

// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (j *Journal) Close() error {
	return j.db.Close()
}

// #endregion close

// #region record-signal
// RecordSignal appends an emitted signal to the journal.
func (j *Journal) RecordSignal(sessionID string, sig signals.Signal) error {
	_, err := j.db.Exec(
		`INSERT INTO signal_log (id, session_id, kind, rupture_risk, context, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sig.ID, sessionID, string(sig.Kind), sig.RuptureRisk,
		nullIfEmpty(sig.Context), sig.Timestamp.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record signal: %w", err)
	}
	return nil
}

// #endregion record-signal

// #region record-gate-event
// RecordGateEvent appends a gate transition to the journal.
func (j *Journal) RecordGateEvent(sessionID string, ev gate.Event) error {
	_, err := j.db.Exec(
		`INSERT INTO gate_event_log (id, session_id, action, reason, rupture_risk, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		ev.ID, sessionID, ev.Action, nullIfEmpty(ev.Reason),
		ev.RuptureRisk, ev.Timestamp.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record gate event: %w", err)
	}
	return nil
}

// #endregion record-gate-event

// #region list-signals
// ListSignals returns the most recent journaled signals, newest first.
func (j *Journal) ListSignals(limit int) ([]SignalRow, error) {
	rows, err := j.db.Query(
		`SELECT id, session_id, kind, rupture_risk, context, created_at
		 FROM signal_log ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list signals: %w", err)
	}
	defer rows.Close()

	var out []SignalRow
	for rows.Next() {
		var r SignalRow
		var context sql.NullString
		var createdStr string
		if err := rows.Scan(&r.ID, &r.SessionID, &r.Kind, &r.RuptureRisk, &context, &createdStr); err != nil {
			return nil, fmt.Errorf("scan signal row: %w", err)
		}
		if context.Valid {
			r.Context = context.String
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		out = append(out, r)
	}
	return out, rows.Err()
}

// #endregion list-signals

// #region list-gate-events
// ListGateEvents returns the most recent journaled gate transitions, newest first.
func (j *Journal) ListGateEvents(limit int) ([]GateEventRow, error) {
	rows, err := j.db.Query(
		`SELECT id, session_id, action, reason, rupture_risk, created_at
		 FROM gate_event_log ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list gate events: %w", err)
	}
	defer rows.Close()

	var out []GateEventRow
	for rows.Next() {
		var r GateEventRow
		var reason sql.NullString
		var createdStr string
		if err := rows.Scan(&r.ID, &r.SessionID, &r.Action, &reason, &r.RuptureRisk, &createdStr); err != nil {
			return nil, fmt.Errorf("scan gate event row: %w", err)
		}
		if reason.Valid {
			r.Reason = reason.String
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		out = append(out, r)
	}
	return out, rows.Err()
}

// #endregion list-gate-events

// #region recorder
// NewSessionID returns a fresh session identifier for grouping journal rows.
func NewSessionID() string {
	return uuid.New().String()
}

// Recorder journals every signal emitted by a bus it is subscribed to.
// Journal write failures are logged into lastErr rather than propagated,
// so a broken journal cannot abort the kernel's signal fan-out.
type Recorder struct {
	journal   *Journal
	sessionID string
	lastErr   error
}

// NewRecorder creates a Recorder writing to j under sessionID.
func NewRecorder(j *Journal, sessionID string) *Recorder {
	return &Recorder{journal: j, sessionID: sessionID}
}

// Handle is the subscriber callback to register on a kernel or bus.
func (r *Recorder) Handle(sig signals.Signal) {
	if err := r.journal.RecordSignal(r.sessionID, sig); err != nil {
		r.lastErr = err
	}
}

// Err returns the most recent journal write failure, if any.
func (r *Recorder) Err() error {
	return r.lastErr
}

// #endregion recorder

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
