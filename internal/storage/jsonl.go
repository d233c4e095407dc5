// Package storage implements the record store backends: SQLite, JSONL files
// and bbolt.
package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/arvimal/daisho/internal/record"
	"github.com/arvimal/daisho/internal/store"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines (1MB per line).
const MaxJSONLLineCapacity = 1024 * 1024

// JSONL stores one record per line in a plain text file. The id high-water
// mark lives next to it in a small JSON file so ids survive purges.
type JSONL struct {
	path     string
	metaPath string
}

// jsonlMeta is the content of the meta file.
type jsonlMeta struct {
	LastID int64 `json:"last_id"`
}

// MetaPath returns the id high-water mark file for a JSONL records path.
func MetaPath(recordsPath string) string {
	return filepath.Join(filepath.Dir(recordsPath), "meta.json")
}

// OpenJSONL opens (creating if needed) a JSONL records file.
func OpenJSONL(path string) (*JSONL, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("%w: creating directory for %s: %w", store.ErrConnection, path, err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %w", store.ErrConnection, path, err)
	}
	f.Close()

	return &JSONL{path: path, metaPath: MetaPath(path)}, nil
}

// ReadAll reads all records from a JSONL file.
func ReadAll(path string) ([]record.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // Missing file is an empty store
		}
		return nil, fmt.Errorf("opening records file: %w", err)
	}
	defer f.Close()

	var recs []record.Record
	scanner := bufio.NewScanner(f)

	// Increase buffer size for long lines
	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue // Skip empty lines
		}

		var rec record.Record
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("invalid record at line %d: %w", lineNum, err)
		}
		recs = append(recs, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading records file: %w", err)
	}

	return recs, nil
}

// writeRecordJSONL marshals a record to JSON and writes it as a JSONL line.
func writeRecordJSONL(w io.Writer, rec record.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding record %d: %w", rec.ID, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing record %d: %w", rec.ID, err)
	}
	if _, err := w.Write([]byte("\n")); err != nil {
		return fmt.Errorf("writing newline: %w", err)
	}
	return nil
}

// WriteAll replaces the file content with recs. The new content is written to
// a temporary file and renamed into place, so a crash never leaves a torn file.
func WriteAll(path string, recs []record.Record) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".records-*.jsonl")
	if err != nil {
		return fmt.Errorf("creating temp records file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	for _, rec := range recs {
		if err := writeRecordJSONL(w, rec); err != nil {
			tmp.Close()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("flushing records: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing records: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing records file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing records file: %w", err)
	}
	return nil
}

// FindByID searches for a record by ID.
func FindByID(recs []record.Record, id int64) (int, bool) {
	for i, rec := range recs {
		if rec.ID == id {
			return i, true
		}
	}
	return -1, false
}

func (j *JSONL) readMeta() (jsonlMeta, error) {
	var meta jsonlMeta
	data, err := os.ReadFile(j.metaPath)
	if err != nil {
		if os.IsNotExist(err) {
			return meta, nil
		}
		return meta, fmt.Errorf("reading meta: %w", err)
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return meta, fmt.Errorf("parsing meta: %w", err)
	}
	return meta, nil
}

func (j *JSONL) writeMeta(meta jsonlMeta) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding meta: %w", err)
	}
	if err := os.WriteFile(j.metaPath, data, 0644); err != nil {
		return fmt.Errorf("writing meta: %w", err)
	}
	return nil
}

// NextID bumps the stored high-water mark. Records already in the file are
// taken into account in case the meta file was lost.
func (j *JSONL) NextID() (int64, error) {
	meta, err := j.readMeta()
	if err != nil {
		return 0, err
	}
	recs, err := ReadAll(j.path)
	if err != nil {
		return 0, err
	}
	for _, rec := range recs {
		if rec.ID > meta.LastID {
			meta.LastID = rec.ID
		}
	}

	meta.LastID++
	if err := j.writeMeta(meta); err != nil {
		return 0, err
	}
	return meta.LastID, nil
}

func (j *JSONL) Get(id int64) (record.Record, bool, error) {
	recs, err := ReadAll(j.path)
	if err != nil {
		return record.Record{}, false, err
	}
	idx, found := FindByID(recs, id)
	if !found {
		return record.Record{}, false, nil
	}
	return recs[idx], true, nil
}

func (j *JSONL) List() ([]record.Record, error) {
	return ReadAll(j.path)
}

// Put rewrites the file with rec inserted or replaced in place.
func (j *JSONL) Put(rec record.Record) error {
	recs, err := ReadAll(j.path)
	if err != nil {
		return err
	}
	if idx, found := FindByID(recs, rec.ID); found {
		recs[idx] = rec
	} else {
		recs = append(recs, rec)
	}
	return WriteAll(j.path, recs)
}

func (j *JSONL) Delete(id int64) error {
	recs, err := ReadAll(j.path)
	if err != nil {
		return err
	}
	idx, found := FindByID(recs, id)
	if !found {
		return nil
	}
	recs = append(recs[:idx], recs[idx+1:]...)
	return WriteAll(j.path, recs)
}

// Close is a no-op; every call opens and closes the file itself.
func (j *JSONL) Close() error {
	return nil
}
