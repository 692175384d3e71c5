/*
 * store.go, part of gorate.
 *
 *
 * Copyright 2026 The gorate authors
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

//Package store keeps the results of the QM batches in a SQLite database,
//so the rates can be computed again later, and an interrupted batch can
//be resumed without computing again the species that already finished.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	rate "github.com/rmera/gorate"
	"github.com/rmera/gorate/qm"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS batches (
	batch_id     TEXT PRIMARY KEY,
	started_at   TEXT NOT NULL,
	finished_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS species (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	batch_id     TEXT NOT NULL,
	name         TEXT NOT NULL,
	g_tot        REAL,
	e0           REAL,
	is_ts        INTEGER NOT NULL DEFAULT 0,
	reused       INTEGER NOT NULL DEFAULT 0,
	error        TEXT,
	log          TEXT,
	created_at   TEXT NOT NULL,
	FOREIGN KEY (batch_id) REFERENCES batches(batch_id)
);

CREATE INDEX IF NOT EXISTS species_name ON species(name);
`

// ErrUnknownBatch is returned when a batch ID is not in the database.
var ErrUnknownBatch = errors.New("store: unknown batch")

// Store is a SQLite archive of species records.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at path and runs the migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA foreign_keys=ON"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: %s: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func nullable(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// SaveBatch stores all the outcomes of B, successful or not, in one transaction.
func (s *Store) SaveBatch(B *qm.BatchResult) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback()
	_, err = tx.Exec(`INSERT INTO batches (batch_id, started_at, finished_at) VALUES (?, ?, ?)`,
		B.ID.String(), B.Started.UTC().Format(time.RFC3339Nano), B.Finished.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("store: insert batch: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, o := range B.Outcomes {
		var g, e0 interface{}
		var ts bool
		var errmsg interface{}
		if o.Record != nil {
			g, e0, ts = nullable(o.Record.G), nullable(o.Record.E0), o.Record.TS
		}
		if o.Err != nil {
			errmsg = o.Err.Error()
		}
		_, err = tx.Exec(`INSERT INTO species (batch_id, name, g_tot, e0, is_ts, reused, error, log, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			B.ID.String(), o.Name, g, e0, boolInt(ts), boolInt(o.Reused), errmsg, o.Log, now)
		if err != nil {
			return fmt.Errorf("store: insert species %s: %w", o.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row scanner) (*rate.Record, error) {
	var name string
	var g, e0 sql.NullFloat64
	var ts int64
	if err := row.Scan(&name, &g, &e0, &ts); err != nil {
		return nil, err
	}
	r := &rate.Record{Name: name, TS: ts != 0}
	if g.Valid {
		r.G = rate.Float(g.Float64)
	}
	if e0.Valid {
		r.E0 = rate.Float(e0.Float64)
	}
	return r, nil
}

// Record returns the latest complete record for the species name, from any batch.
// It returns false if there is none.
func (s *Store) Record(name string) (*rate.Record, bool, error) {
	row := s.db.QueryRow(`SELECT name, g_tot, e0, is_ts FROM species
		WHERE name = ? AND error IS NULL AND g_tot IS NOT NULL AND e0 IS NOT NULL
		ORDER BY id DESC LIMIT 1`, name)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("store: record %s: %w", name, err)
	}
	return r, true, nil
}

// LoadTable returns the successful records of the batch batchID. If batchID is empty,
// it returns the latest successful record of each species, from any batch.
func (s *Store) LoadTable(batchID string) (rate.Table, error) {
	var rows *sql.Rows
	var err error
	if batchID == "" {
		rows, err = s.db.Query(`SELECT name, g_tot, e0, is_ts FROM species
			WHERE id IN (SELECT MAX(id) FROM species WHERE error IS NULL GROUP BY name)`)
	} else {
		var n int
		if err = s.db.QueryRow(`SELECT COUNT(*) FROM batches WHERE batch_id = ?`, batchID).Scan(&n); err != nil {
			return nil, fmt.Errorf("store: load table: %w", err)
		}
		if n == 0 {
			return nil, fmt.Errorf("%w: %s", ErrUnknownBatch, batchID)
		}
		rows, err = s.db.Query(`SELECT name, g_tot, e0, is_ts FROM species
			WHERE batch_id = ? AND error IS NULL ORDER BY id`, batchID)
	}
	if err != nil {
		return nil, fmt.Errorf("store: load table: %w", err)
	}
	defer rows.Close()
	T := make(rate.Table)
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("store: load table: %w", err)
		}
		if err := T.Add(r); err != nil {
			log.Printf("store: %v", err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: load table: %w", err)
	}
	return T, nil
}

// BatchInfo summarizes one stored batch.
type BatchInfo struct {
	ID       string
	Started  time.Time
	Finished time.Time
	Species  int
	Failed   int
}

// Batches returns all the stored batches, the latest first.
func (s *Store) Batches() ([]BatchInfo, error) {
	rows, err := s.db.Query(`SELECT b.batch_id, b.started_at, b.finished_at,
		COUNT(s.id), COALESCE(SUM(CASE WHEN s.error IS NULL THEN 0 ELSE 1 END), 0)
		FROM batches b LEFT JOIN species s ON s.batch_id = b.batch_id
		GROUP BY b.batch_id ORDER BY b.started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("store: batches: %w", err)
	}
	defer rows.Close()
	var ret []BatchInfo
	for rows.Next() {
		var b BatchInfo
		var started, finished string
		if err := rows.Scan(&b.ID, &started, &finished, &b.Species, &b.Failed); err != nil {
			return nil, fmt.Errorf("store: batches: %w", err)
		}
		b.Started, _ = time.Parse(time.RFC3339Nano, started)
		b.Finished, _ = time.Parse(time.RFC3339Nano, finished)
		ret = append(ret, b)
	}
	return ret, rows.Err()
}

// Skipper returns a function that can be given to qm.WithSkip, so species
// already in the store are not computed again.
func (s *Store) Skipper() func(name string) (*rate.Record, bool) {
	return func(name string) (*rate.Record, bool) {
		r, ok, err := s.Record(name)
		if err != nil {
			log.Printf("Couldn't look for %s in the store, will compute it: %v", name, err)
			return nil, false
		}
		return r, ok
	}
}
