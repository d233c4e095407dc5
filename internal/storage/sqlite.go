package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/arvimal/daisho/internal/record"
	"github.com/arvimal/daisho/internal/store"
	_ "modernc.org/sqlite"
)

// SQLite keeps records in a single SQLite database file.
type SQLite struct {
	db *sql.DB
}

// selectRecordFields contains the standard field list for SELECT queries.
const selectRecordFields = `id, kind, body, tags_json, status,
	created_at, updated_at, due, priority, done`

// timeLayout is how timestamps are stored in TEXT columns.
const timeLayout = time.RFC3339Nano

// OpenSQLite opens or creates a SQLite database at the given path.
// Failing to reach the database is reported as store.ErrConnection.
func OpenSQLite(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("%w: creating directory for %s: %w", store.ErrConnection, path, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %w", store.ErrConnection, err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: connecting to %s: %w", store.ErrConnection, path, err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: creating schema: %w", store.ErrConnection, err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// createSchema creates the database schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS records (
			id INTEGER PRIMARY KEY,
			kind TEXT NOT NULL,
			body TEXT NOT NULL,
			tags_json TEXT,
			status TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			due TEXT,
			priority TEXT,
			done INTEGER NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_records_status ON records(status);

		-- Key/value metadata, currently only the id high-water mark
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`

	_, err := db.Exec(schema)
	return err
}

// NextID bumps the high-water mark inside a transaction.
func (s *SQLite) NextID() (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	var last int64
	var stored sql.NullString
	err = tx.QueryRow(`SELECT value FROM meta WHERE key = 'last_id'`).Scan(&stored)
	if err != nil && err != sql.ErrNoRows {
		return 0, fmt.Errorf("reading last id: %w", err)
	}
	if stored.Valid {
		last, err = strconv.ParseInt(stored.String, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parsing last id %q: %w", stored.String, err)
		}
	}

	var maxID sql.NullInt64
	if err := tx.QueryRow(`SELECT MAX(id) FROM records`).Scan(&maxID); err != nil {
		return 0, fmt.Errorf("reading max id: %w", err)
	}
	if maxID.Valid && maxID.Int64 > last {
		last = maxID.Int64
	}

	next := last + 1
	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES ('last_id', ?)`, strconv.FormatInt(next, 10)); err != nil {
		return 0, fmt.Errorf("storing last id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing id allocation: %w", err)
	}
	return next, nil
}

// Get retrieves a record by its ID.
func (s *SQLite) Get(id int64) (record.Record, bool, error) {
	row := s.db.QueryRow(`SELECT `+selectRecordFields+` FROM records WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return record.Record{}, false, nil
		}
		return record.Record{}, false, fmt.Errorf("querying record %d: %w", id, err)
	}
	return rec, true, nil
}

// List returns all records ordered by id.
func (s *SQLite) List() ([]record.Record, error) {
	rows, err := s.db.Query(`SELECT ` + selectRecordFields + ` FROM records ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	defer rows.Close()

	var recs []record.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// Put inserts or replaces a record.
func (s *SQLite) Put(rec record.Record) error {
	var tagsJSON []byte
	if len(rec.Tags) > 0 {
		var err error
		tagsJSON, err = json.Marshal(rec.Tags)
		if err != nil {
			return fmt.Errorf("marshaling tags for %d: %w", rec.ID, err)
		}
	}

	var due sql.NullString
	if rec.Due != nil {
		due = sql.NullString{String: rec.Due.Format(timeLayout), Valid: true}
	}

	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO records (
			id, kind, body, tags_json, status,
			created_at, updated_at, due, priority, done
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, string(rec.Kind), rec.Body, nullableString(tagsJSON), string(rec.Status),
		rec.CreatedAt.Format(timeLayout), rec.UpdatedAt.Format(timeLayout),
		due, nullableStringValue(rec.Priority.String()), rec.Done,
	)
	if err != nil {
		return fmt.Errorf("writing record %d: %w", rec.ID, err)
	}
	return nil
}

// Delete removes a record by id.
func (s *SQLite) Delete(id int64) error {
	if _, err := s.db.Exec(`DELETE FROM records WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting record %d: %w", id, err)
	}
	return nil
}

// scanner interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(s scanner) (record.Record, error) {
	var rec record.Record
	var kind, status, createdAt, updatedAt string
	var tagsJSON, due, priority sql.NullString

	err := s.Scan(
		&rec.ID, &kind, &rec.Body, &tagsJSON, &status,
		&createdAt, &updatedAt, &due, &priority, &rec.Done,
	)
	if err != nil {
		return record.Record{}, err
	}

	rec.Kind = record.Kind(kind)
	rec.Status = record.Status(status)

	if rec.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return record.Record{}, fmt.Errorf("parsing created_at for %d: %w", rec.ID, err)
	}
	if rec.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return record.Record{}, fmt.Errorf("parsing updated_at for %d: %w", rec.ID, err)
	}
	if due.Valid {
		t, err := time.Parse(timeLayout, due.String)
		if err != nil {
			return record.Record{}, fmt.Errorf("parsing due for %d: %w", rec.ID, err)
		}
		rec.Due = &t
	}
	if priority.Valid {
		if rec.Priority, err = record.ParsePriority(priority.String); err != nil {
			return record.Record{}, fmt.Errorf("parsing priority for %d: %w", rec.ID, err)
		}
	}
	if tagsJSON.Valid && tagsJSON.String != "" {
		if err := json.Unmarshal([]byte(tagsJSON.String), &rec.Tags); err != nil {
			return record.Record{}, fmt.Errorf("parsing tags JSON for %d: %w", rec.ID, err)
		}
	}

	return rec, nil
}

func nullableString(b []byte) sql.NullString {
	if len(b) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: string(b), Valid: true}
}

// nullableStringValue converts a string to sql.NullString, treating empty as NULL.
func nullableStringValue(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
