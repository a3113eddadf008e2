// Package store implements core/store backends.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	core "github.com/kilianp07/chargesim/core/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS input_parameters (
    id TEXT PRIMARY KEY,
    station_power_kw REAL NOT NULL,
    consumption REAL NOT NULL,
    station_count INTEGER NOT NULL,
    arrival_multiplier REAL NOT NULL,
    created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS simulation_results (
    id TEXT PRIMARY KEY,
    parameters_id TEXT NOT NULL REFERENCES input_parameters(id) ON DELETE CASCADE,
    options TEXT NOT NULL,
    result TEXT NOT NULL,
    created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS simulation_results_parameters ON simulation_results(parameters_id, created_at);
`

// SQLiteStore persists parameter sets and results in a SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens or creates the database at dsn and ensures the
// schema. dsn is a file path or a sqlite URI such as
// "file:sim?mode=memory&cache=shared".
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// SQLite serializes writers; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

var _ core.Store = (*SQLiteStore)(nil)

// CreateParameters stores p under a new ID.
func (s *SQLiteStore) CreateParameters(ctx context.Context, p core.InputParameters) (core.InputParameters, error) {
	p.ID = uuid.NewString()
	p.CreatedAt = s.stamp()
	_, err := s.db.ExecContext(ctx, `INSERT INTO input_parameters
        (id, station_power_kw, consumption, station_count, arrival_multiplier, created_at)
        VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.StationPowerKW, p.Consumption, p.StationCount, p.ArrivalMultiplier, p.CreatedAt.UnixNano())
	if err != nil {
		return core.InputParameters{}, err
	}
	return p, nil
}

// ListParameters returns all parameter sets in creation order.
func (s *SQLiteStore) ListParameters(ctx context.Context) ([]core.InputParameters, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, station_power_kw, consumption, station_count, arrival_multiplier, created_at
        FROM input_parameters ORDER BY created_at, rowid`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	res := []core.InputParameters{}
	for rows.Next() {
		p, err := scanParameters(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// GetParameters returns the set with the given ID.
func (s *SQLiteStore) GetParameters(ctx context.Context, id string) (core.InputParameters, error) {
	return s.getParameters(ctx, s.db, id)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLiteStore) getParameters(ctx context.Context, q queryer, id string) (core.InputParameters, error) {
	row := q.QueryRowContext(ctx, `SELECT id, station_power_kw, consumption, station_count, arrival_multiplier, created_at
        FROM input_parameters WHERE id = ?`, id)
	p, err := scanParameters(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.InputParameters{}, fmt.Errorf("parameters %s: %w", id, core.ErrNotFound)
	}
	return p, err
}

// UpdateParameters applies patch to the set with the given ID.
func (s *SQLiteStore) UpdateParameters(ctx context.Context, id string, patch core.ParametersPatch) (core.InputParameters, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return core.InputParameters{}, err
	}
	defer func() { _ = tx.Rollback() }()

	p, err := s.getParameters(ctx, tx, id)
	if err != nil {
		return core.InputParameters{}, err
	}
	p = patch.Apply(p)
	if _, err := tx.ExecContext(ctx, `UPDATE input_parameters
        SET station_power_kw = ?, consumption = ?, station_count = ?, arrival_multiplier = ?
        WHERE id = ?`,
		p.StationPowerKW, p.Consumption, p.StationCount, p.ArrivalMultiplier, id); err != nil {
		return core.InputParameters{}, err
	}
	return p, tx.Commit()
}

// DeleteParameters removes the set and its results.
func (s *SQLiteStore) DeleteParameters(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM simulation_results WHERE parameters_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM input_parameters WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("parameters %s: %w", id, core.ErrNotFound)
	}
	return tx.Commit()
}

// AddResult stores rec under a new ID.
func (s *SQLiteStore) AddResult(ctx context.Context, rec core.SimulationRecord) (core.SimulationRecord, error) {
	if _, err := s.GetParameters(ctx, rec.ParametersID); err != nil {
		return core.SimulationRecord{}, err
	}
	opts, err := json.Marshal(rec.Options)
	if err != nil {
		return core.SimulationRecord{}, fmt.Errorf("encode options: %w", err)
	}
	out, err := json.Marshal(rec.Result)
	if err != nil {
		return core.SimulationRecord{}, fmt.Errorf("encode result: %w", err)
	}
	rec.ID = uuid.NewString()
	rec.CreatedAt = s.stamp()
	_, err = s.db.ExecContext(ctx, `INSERT INTO simulation_results (id, parameters_id, options, result, created_at)
        VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.ParametersID, string(opts), string(out), rec.CreatedAt.UnixNano())
	if err != nil {
		return core.SimulationRecord{}, err
	}
	return rec, nil
}

// ListResults returns the results of a parameter set in creation order.
func (s *SQLiteStore) ListResults(ctx context.Context, parametersID string) ([]core.SimulationRecord, error) {
	if _, err := s.GetParameters(ctx, parametersID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, parameters_id, options, result, created_at
        FROM simulation_results WHERE parameters_id = ? ORDER BY created_at, rowid`, parametersID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	res := []core.SimulationRecord{}
	for rows.Next() {
		var (
			rec        core.SimulationRecord
			opts, out  string
			createdAtN int64
		)
		if err := rows.Scan(&rec.ID, &rec.ParametersID, &opts, &out, &createdAtN); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(opts), &rec.Options); err != nil {
			return nil, fmt.Errorf("decode options of %s: %w", rec.ID, err)
		}
		if err := json.Unmarshal([]byte(out), &rec.Result); err != nil {
			return nil, fmt.Errorf("decode result of %s: %w", rec.ID, err)
		}
		rec.CreatedAt = time.Unix(0, createdAtN).UTC()
		res = append(res, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) stamp() time.Time {
	return s.now().UTC()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanParameters(sc scanner) (core.InputParameters, error) {
	var (
		p          core.InputParameters
		createdAtN int64
	)
	if err := sc.Scan(&p.ID, &p.StationPowerKW, &p.Consumption, &p.StationCount, &p.ArrivalMultiplier, &createdAtN); err != nil {
		return core.InputParameters{}, err
	}
	p.CreatedAt = time.Unix(0, createdAtN).UTC()
	return p, nil
}
