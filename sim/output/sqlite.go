package output

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/transmission-sim/transmission-sim/sim"
)

// SQLiteSink stores the event stream of one run in a SQLite database. Every
// row carries the run id so several runs can share one file. Events are
// written inside a single transaction committed on Close.
type SQLiteSink struct {
	path  string
	runID string

	mu     sync.Mutex
	ctx    context.Context
	db     *sql.DB
	tx     *sql.Tx
	insert *sql.Stmt
	seq    int64
}

func NewSQLiteSink(path, runID string) *SQLiteSink {
	return &SQLiteSink{path: path, runID: runID}
}

// Init opens the database, creates the tables and registers the run.
func (s *SQLiteSink) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.runID == "" {
		return errors.New("run id is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}
	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO runs (id, created_at) VALUES (?, ?)`,
		s.runID, time.Now().UTC().Format(time.RFC3339)); err != nil {
		_ = db.Close()
		return fmt.Errorf("registering run %s: %w", s.runID, err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		_ = db.Close()
		return err
	}
	insert, err := tx.PrepareContext(ctx, `
		INSERT INTO events (run_id, seq, type, t, person_id, contact_id, infected_by)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		_ = tx.Rollback()
		_ = db.Close()
		return err
	}

	s.ctx = ctx
	s.db = db
	s.tx = tx
	s.insert = insert
	return nil
}

// RunID returns the id stamped on this sink's rows.
func (s *SQLiteSink) RunID() string {
	return s.runID
}

func (s *SQLiteSink) Emit(ev sim.SimulationEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.insert == nil {
		return errors.New("sqlite sink is not initialized")
	}
	s.seq++
	_, err := s.insert.ExecContext(s.ctx, s.runID, s.seq, string(ev.Type), ev.Time, int64(ev.PersonID),
		nullPerson(ev.ContactID), nullPerson(ev.InfectedBy))
	return err
}

// Close commits the run's events and closes the database.
func (s *SQLiteSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	var errs []error
	if err := s.insert.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := s.tx.Commit(); err != nil {
		errs = append(errs, fmt.Errorf("committing events: %w", err))
	}
	if err := s.db.Close(); err != nil {
		errs = append(errs, err)
	}
	s.db, s.tx, s.insert = nil, nil, nil
	return errors.Join(errs...)
}

// ReadRun loads the events of runID from the database at path in emission order.
func ReadRun(ctx context.Context, path, runID string) ([]sim.SimulationEvent, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `
		SELECT type, t, person_id, contact_id, infected_by
		FROM events WHERE run_id = ? ORDER BY seq
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []sim.SimulationEvent
	for rows.Next() {
		var (
			typ                 string
			ev                  sim.SimulationEvent
			person              int64
			contact, infectedBy sql.NullInt64
		)
		if err := rows.Scan(&typ, &ev.Time, &person, &contact, &infectedBy); err != nil {
			return nil, err
		}
		ev.Type = sim.EventType(typ)
		ev.PersonID = sim.PersonID(person)
		ev.ContactID = personFromNull(contact)
		ev.InfectedBy = personFromNull(infectedBy)
		events = append(events, ev)
	}
	return events, rows.Err()
}

func nullPerson(p *sim.PersonID) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func personFromNull(n sql.NullInt64) *sim.PersonID {
	if !n.Valid {
		return nil
	}
	p := sim.PersonID(n.Int64)
	return &p
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS events (
			run_id TEXT NOT NULL REFERENCES runs(id),
			seq INTEGER NOT NULL,
			type TEXT NOT NULL,
			t REAL NOT NULL,
			person_id INTEGER NOT NULL,
			contact_id INTEGER,
			infected_by INTEGER,
			PRIMARY KEY (run_id, seq)
		);
	`)
	return err
}
