package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roach88/fmmfsm/internal/engine"
)

// ErrRunNotFound is returned by ReadRun for an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

// Run is one recorded evolution.
type Run struct {
	ID         string
	Seq        int64 // assigned by WriteRun
	ConfigName string
	ConfigHash string
	Result     *engine.Result
}

// RunSummary is a run without its history.
type RunSummary struct {
	ID         string `json:"id"`
	Seq        int64  `json:"seq"`
	ConfigName string `json:"config_name"`
	ConfigHash string `json:"config_hash"`
	States     int    `json:"states"`
	Steps      int    `json:"steps"`
}

// WriteRun stores a run and its full history in one transaction.
//
// Uses ON CONFLICT(id) DO NOTHING: writing an ID that already exists leaves
// the stored run untouched and returns nil.
func (s *Store) WriteRun(ctx context.Context, run Run) error {
	if run.Result == nil {
		return fmt.Errorf("write run %s: nil result", run.ID)
	}
	res := run.Result

	statesJSON, err := json.Marshal(res.States)
	if err != nil {
		return fmt.Errorf("write run %s: marshal states: %w", run.ID, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run %s: begin: %w", run.ID, err)
	}
	defer tx.Rollback() // No-op if committed

	out, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, seq, config_name, config_hash, states, steps)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM runs), ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, run.ID, run.ConfigName, run.ConfigHash, string(statesJSON), res.Steps())
	if err != nil {
		return fmt.Errorf("write run %s: %w", run.ID, err)
	}
	if n, err := out.RowsAffected(); err != nil {
		return fmt.Errorf("write run %s: %w", run.ID, err)
	} else if n == 0 {
		return nil
	}

	memStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO memberships (run_id, step, state, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("write run %s: prepare memberships: %w", run.ID, err)
	}
	defer memStmt.Close()

	for step, vec := range res.History {
		for _, state := range res.States {
			if _, err := memStmt.ExecContext(ctx, run.ID, step, state, vec[state]); err != nil {
				return fmt.Errorf("write run %s: membership step %d state %q: %w", run.ID, step, state, err)
			}
		}
	}

	blockStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO blocking (run_id, step, b, c) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("write run %s: prepare blocking: %w", run.ID, err)
	}
	defer blockStmt.Close()

	for step, rec := range res.Blocking {
		if _, err := blockStmt.ExecContext(ctx, run.ID, step, rec.B, rec.C); err != nil {
			return fmt.Errorf("write run %s: blocking step %d: %w", run.ID, step, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write run %s: commit: %w", run.ID, err)
	}
	return nil
}

// ReadRun loads a run and its history.
// Returns an error wrapping ErrRunNotFound if the ID is unknown.
func (s *Store) ReadRun(ctx context.Context, id string) (*Run, error) {
	run := &Run{ID: id}
	var statesJSON string
	var steps int

	err := s.db.QueryRowContext(ctx, `
		SELECT seq, config_name, config_hash, states, steps
		FROM runs WHERE id = ?
	`, id).Scan(&run.Seq, &run.ConfigName, &run.ConfigHash, &statesJSON, &steps)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("read run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read run %s: %w", id, err)
	}

	var states engine.StateSet
	if err := json.Unmarshal([]byte(statesJSON), &states); err != nil {
		return nil, fmt.Errorf("read run %s: decode states: %w", id, err)
	}

	res := &engine.Result{
		States:   states,
		History:  make([]engine.MembershipVector, steps+1),
		Blocking: make([]engine.BlockingRecord, steps),
	}
	for i := range res.History {
		res.History[i] = make(engine.MembershipVector, len(states))
	}

	if err := s.readMemberships(ctx, id, res); err != nil {
		return nil, err
	}
	if err := s.readBlocking(ctx, id, res); err != nil {
		return nil, err
	}

	run.Result = res
	return run, nil
}

func (s *Store) readMemberships(ctx context.Context, id string, res *engine.Result) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT step, state, value FROM memberships
		WHERE run_id = ?
		ORDER BY step ASC, state ASC COLLATE BINARY
	`, id)
	if err != nil {
		return fmt.Errorf("read run %s: memberships: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var step int
		var state string
		var value float64
		if err := rows.Scan(&step, &state, &value); err != nil {
			return fmt.Errorf("read run %s: scan membership: %w", id, err)
		}
		if step < 0 || step >= len(res.History) {
			return fmt.Errorf("read run %s: membership step %d out of range", id, step)
		}
		res.History[step][state] = value
	}
	return rows.Err()
}

func (s *Store) readBlocking(ctx context.Context, id string, res *engine.Result) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT step, b, c FROM blocking
		WHERE run_id = ?
		ORDER BY step ASC
	`, id)
	if err != nil {
		return fmt.Errorf("read run %s: blocking: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var step int
		var rec engine.BlockingRecord
		if err := rows.Scan(&step, &rec.B, &rec.C); err != nil {
			return fmt.Errorf("read run %s: scan blocking: %w", id, err)
		}
		if step < 0 || step >= len(res.Blocking) {
			return fmt.Errorf("read run %s: blocking step %d out of range", id, step)
		}
		res.Blocking[step] = rec
	}
	return rows.Err()
}

// ListRuns returns all runs ordered by seq.
func (s *Store) ListRuns(ctx context.Context) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, config_name, config_hash, states, steps
		FROM runs
		ORDER BY seq ASC, id ASC COLLATE BINARY
	`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		var statesJSON string
		if err := rows.Scan(&r.ID, &r.Seq, &r.ConfigName, &r.ConfigHash, &statesJSON, &r.Steps); err != nil {
			return nil, fmt.Errorf("list runs: scan: %w", err)
		}
		var states []string
		if err := json.Unmarshal([]byte(statesJSON), &states); err != nil {
			return nil, fmt.Errorf("list runs: decode states of %s: %w", r.ID, err)
		}
		r.States = len(states)
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}
