// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog keeps a SQLite history of completed fetch runs: the query,
// its summary, the files written for it and the fetched records, so a past
// run can be listed or re-exported without querying the API again.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/jstage-search/internal/export"
	"github.com/pdiddy/jstage-search/pkg/types"
)

// ErrNotFound is returned when a run ID is not in the catalog.
var ErrNotFound = errors.New("run not found")

// Entry summarizes one recorded run.
type Entry struct {
	ID           string    `json:"id" yaml:"id"`
	Term         string    `json:"term" yaml:"term"`
	Field        string    `json:"field" yaml:"field"`
	YearFrom     int       `json:"year_from" yaml:"year_from"`
	MaxRecords   int       `json:"max_records" yaml:"max_records"`
	Records      int       `json:"records" yaml:"records"`
	TotalResults *int      `json:"total_results" yaml:"total_results"`
	UniqueDOIs   int       `json:"unique_dois" yaml:"unique_dois"`
	Files        []string  `json:"files" yaml:"files"`
	FetchedAt    time.Time `json:"fetched_at" yaml:"fetched_at"`
}

// Store manages the run history database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the catalog database at cfg.Path and creates the
// schema if it does not exist.
func Open(cfg types.CatalogConfig) (*Store, error) {
	path := cfg.Path
	if path == "" {
		path = types.DefaultCatalogConfig().Path
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating catalog directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			term TEXT NOT NULL,
			field TEXT NOT NULL,
			year_from INTEGER NOT NULL,
			max_records INTEGER NOT NULL,
			interval_ms INTEGER NOT NULL DEFAULT 0,
			records INTEGER NOT NULL,
			total_results INTEGER,
			unique_dois INTEGER NOT NULL,
			files TEXT,
			fetched_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS records (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			doi TEXT,
			data TEXT NOT NULL,
			PRIMARY KEY (run_id, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_doi ON records(doi)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_fetched_at ON runs(fetched_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores run and the files written for it, and returns the new run ID.
func (s *Store) Record(ctx context.Context, run export.Run, files []string) (string, error) {
	id := uuid.New().String()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	filesJSON, _ := json.Marshal(nonNil(files))
	var total any
	if run.Result.TotalCount != nil {
		total = *run.Result.TotalCount
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, term, field, year_from, max_records, interval_ms,
			records, total_results, unique_dois, files, fetched_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, run.Query.Term, string(run.Query.Field), run.Query.YearFrom,
		run.Query.MaxRecords, run.Query.Interval.Milliseconds(),
		len(run.Result.Records), total, run.Result.UniqueDOIs(),
		string(filesJSON), run.FetchedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO records (run_id, position, doi, data) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range run.Result.Records {
		data, err := json.Marshal(rec)
		if err != nil {
			return "", fmt.Errorf("encoding record %d: %w", i, err)
		}
		var doi any
		if rec.DOI != nil {
			doi = *rec.DOI
		}
		if _, err := stmt.ExecContext(ctx, id, i, doi, string(data)); err != nil {
			return "", fmt.Errorf("inserting record %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing run: %w", err)
	}
	return id, nil
}

const entryColumns = `id, term, field, year_from, max_records, records,
	total_results, unique_dois, files, fetched_at`

// List returns recorded runs, newest first. A limit of zero or less returns
// every run.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM runs ORDER BY fetched_at DESC, rowid DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Get returns the entry for one run ID.
func (s *Store) Get(ctx context.Context, id string) (Entry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM runs WHERE id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e, err
}

// Load rebuilds the stored run for id, records in their original order.
func (s *Store) Load(ctx context.Context, id string) (export.Run, error) {
	var (
		term, field, fetchedAt                string
		yearFrom, maxRecords, intervalMS, num int
		total                                 sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT term, field, year_from, max_records, interval_ms, records, total_results, fetched_at
		 FROM runs WHERE id = ?`, id,
	).Scan(&term, &field, &yearFrom, &maxRecords, &intervalMS, &num, &total, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return export.Run{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return export.Run{}, fmt.Errorf("loading run %s: %w", id, err)
	}

	run := export.Run{
		Query: types.Query{
			Term:       term,
			Field:      types.Field(field),
			YearFrom:   yearFrom,
			MaxRecords: maxRecords,
			Interval:   time.Duration(intervalMS) * time.Millisecond,
		},
		Result: types.Result{Records: make([]types.Record, 0, num)},
	}
	if total.Valid {
		n := int(total.Int64)
		run.Result.TotalCount = &n
	}
	run.FetchedAt, _ = time.Parse(time.RFC3339Nano, fetchedAt)

	rows, err := s.db.QueryContext(ctx,
		`SELECT data FROM records WHERE run_id = ? ORDER BY position`, id)
	if err != nil {
		return export.Run{}, fmt.Errorf("loading records for %s: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return export.Run{}, fmt.Errorf("scanning record: %w", err)
		}
		var rec types.Record
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return export.Run{}, fmt.Errorf("decoding record: %w", err)
		}
		if rec.Authors == nil {
			rec.Authors = []string{}
		}
		run.Result.Records = append(run.Result.Records, rec)
	}
	return run, rows.Err()
}

// Delete removes a run and its records.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting run %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var (
		e         Entry
		total     sql.NullInt64
		files     sql.NullString
		fetchedAt string
	)
	if err := row.Scan(&e.ID, &e.Term, &e.Field, &e.YearFrom, &e.MaxRecords,
		&e.Records, &total, &e.UniqueDOIs, &files, &fetchedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return e, err
		}
		return e, fmt.Errorf("scanning run: %w", err)
	}
	if total.Valid {
		n := int(total.Int64)
		e.TotalResults = &n
	}
	if files.Valid && files.String != "" {
		if err := json.Unmarshal([]byte(files.String), &e.Files); err != nil {
			return e, fmt.Errorf("decoding files of run %s: %w", e.ID, err)
		}
	}
	if e.Files == nil {
		e.Files = []string{}
	}
	e.FetchedAt, _ = time.Parse(time.RFC3339Nano, fetchedAt)
	return e, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
