/*
 * store.go, part of gocrest.
 *
 *
 * Copyright 2024 Raul Mera <rmeraa{at}academicosdotutadotcl
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 *
 */

// Package store keeps the summary rows of conformer-search runs in a
// SQLite database.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rmera/gocrest/csearch"
)

// Store manages the SQLite connection and schema.
type Store struct {
	db *sql.DB
}

// Run is one run of a pool of conformer searches.
type Run struct {
	ID       string
	Started  time.Time
	Manifest string
}

// Open opens, or creates, the database in path, with WAL mode enabled.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("store/Open: failed to open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store/Open: failed to ping sqlite db: %w", err)
	}
	for _, p := range []string{"PRAGMA journal_mode=WAL;", "PRAGMA foreign_keys=ON;"} {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("store/Open: %s: %w", p, err)
		}
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store/Open: schema migration failed: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		started DATETIME NOT NULL,
		manifest TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS molecules (
		run_id TEXT NOT NULL REFERENCES runs(run_id),
		molecule TEXT NOT NULL,
		status TEXT NOT NULL,
		conformers INTEGER NOT NULL,
		rejected INTEGER NOT NULL DEFAULT 0,
		diagnostic TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (run_id, molecule)
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

// BeginRun records a new run, started now, for the given manifest file.
func (s *Store) BeginRun(ctx context.Context, runID, manifest string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO runs (run_id, started, manifest) VALUES (?, ?, ?)`,
		runID, time.Now().UTC(), manifest)
	if err != nil {
		return fmt.Errorf("store/BeginRun: %s: %w", runID, err)
	}
	return nil
}

// Put stores the row for a molecule in the run runID. The run is created
// if it was not recorded before. A second row for the same molecule in
// the same run is an error.
func (s *Store) Put(ctx context.Context, runID string, r csearch.Row) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store/Put: %w", err)
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO runs (run_id, started) VALUES (?, ?)`, runID, time.Now().UTC()); err != nil {
		return fmt.Errorf("store/Put: %s: %w", runID, err)
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO molecules (run_id, molecule, status, conformers, rejected, diagnostic) VALUES (?, ?, ?, ?, ?, ?)`,
		runID, r.Molecule, string(r.Status), r.Conformers, r.Rejected, r.Diagnostic)
	if err != nil {
		return fmt.Errorf("store/Put: %s %s: %w", runID, r.Molecule, err)
	}
	return tx.Commit()
}

// Rows returns the rows of the run runID, in the order they were stored.
func (s *Store) Rows(ctx context.Context, runID string) ([]csearch.Row, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT molecule, status, conformers, rejected, diagnostic FROM molecules WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("store/Rows: %w", err)
	}
	defer rows.Close()
	var ret []csearch.Row
	for rows.Next() {
		var r csearch.Row
		var status string
		if err := rows.Scan(&r.Molecule, &status, &r.Conformers, &r.Rejected, &r.Diagnostic); err != nil {
			return nil, fmt.Errorf("store/Rows: %w", err)
		}
		r.Status = csearch.Status(status)
		ret = append(ret, r)
	}
	return ret, rows.Err()
}

// Runs returns all the runs recorded, the most recent first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT run_id, started, manifest FROM runs ORDER BY started DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("store/Runs: %w", err)
	}
	defer rows.Close()
	var ret []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Started, &r.Manifest); err != nil {
			return nil, fmt.Errorf("store/Runs: %w", err)
		}
		ret = append(ret, r)
	}
	return ret, rows.Err()
}
