//go:build sqlite

package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"
)

// SQLiteStore writes one row per evaluated run into a metrics table
type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func newSQLiteStore(path string) (MetricsStore, error) {
	return NewSQLiteStore(path), nil
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
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

	s.db = db
	return nil
}

func (s *SQLiteStore) SaveMetrics(ctx context.Context, runID string, rows []Metrics) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin metrics tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO metrics (
			run_id, idx, algorithm, collection_rate, collision_count,
			search_distance, elapsed_time, targets_touched, terminal
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, idx, algorithm) DO UPDATE SET
			collection_rate = excluded.collection_rate,
			collision_count = excluded.collision_count,
			search_distance = excluded.search_distance,
			elapsed_time = excluded.elapsed_time,
			targets_touched = excluded.targets_touched,
			terminal = excluded.terminal
	`)
	if err != nil {
		return fmt.Errorf("prepare metrics insert: %w", err)
	}
	defer stmt.Close()

	for _, m := range rows {
		if _, err := stmt.ExecContext(ctx, runID, m.Index, m.Algorithm, m.CollectionRate,
			m.CollisionCount, m.SearchDistance, m.ElapsedTime, m.TargetsTouched, string(m.Terminal)); err != nil {
			return fmt.Errorf("insert metrics %s/%d: %w", runID, m.Index, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) GetMetrics(ctx context.Context, runID string) ([]Metrics, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, false, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT idx, algorithm, collection_rate, collision_count,
			search_distance, elapsed_time, targets_touched, terminal
		FROM metrics WHERE run_id = ? ORDER BY idx, algorithm
	`, runID)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	var out []Metrics
	for rows.Next() {
		var (
			m        Metrics
			terminal string
		)
		if err := rows.Scan(&m.Index, &m.Algorithm, &m.CollectionRate, &m.CollisionCount,
			&m.SearchDistance, &m.ElapsedTime, &m.TargetsTouched, &terminal); err != nil {
			return nil, false, fmt.Errorf("scan metrics %s: %w", runID, err)
		}
		m.Terminal = TerminalState(terminal)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	if len(out) == 0 {
		return nil, false, nil
	}
	return out, true, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context) ([]string, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT DISTINCT run_id FROM metrics ORDER BY run_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS metrics (
			run_id TEXT NOT NULL,
			idx INTEGER NOT NULL,
			algorithm TEXT NOT NULL,
			collection_rate REAL NOT NULL,
			collision_count INTEGER NOT NULL,
			search_distance INTEGER NOT NULL,
			elapsed_time REAL NOT NULL,
			targets_touched INTEGER NOT NULL,
			terminal TEXT NOT NULL,
			PRIMARY KEY (run_id, idx, algorithm)
		);
	`)
	return err
}
