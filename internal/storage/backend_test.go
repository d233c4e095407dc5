package storage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/arvimal/daisho/internal/record"
	"github.com/arvimal/daisho/internal/store"
)

// backendCase opens a backend rooted at a directory. Opening the same
// directory twice must see the same data.
type backendCase struct {
	name string
	open func(t *testing.T, dir string) store.Backend
}

var backendCases = []backendCase{
	{"sqlite", func(t *testing.T, dir string) store.Backend {
		b, err := Open(BackendSQLite, filepath.Join(dir, "daisho.db"))
		if err != nil {
			t.Fatalf("Open(sqlite) error = %v", err)
		}
		return b
	}},
	{"jsonl", func(t *testing.T, dir string) store.Backend {
		b, err := Open(BackendJSONL, filepath.Join(dir, "records.jsonl"))
		if err != nil {
			t.Fatalf("Open(jsonl) error = %v", err)
		}
		return b
	}},
	{"bolt", func(t *testing.T, dir string) store.Backend {
		b, err := Open(BackendBolt, filepath.Join(dir, "daisho.bolt"))
		if err != nil {
			t.Fatalf("Open(bolt) error = %v", err)
		}
		return b
	}},
}

func sampleTask(id int64) record.Record {
	created := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	due := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	return record.Record{
		ID:        id,
		Kind:      record.KindTask,
		Body:      "Pay rent",
		Tags:      []string{"home", "money"},
		Status:    record.StatusActive,
		CreatedAt: created,
		UpdatedAt: created,
		Due:       &due,
		Priority:  record.PriorityHigh,
	}
}

func sampleNote(id int64) record.Record {
	created := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	return record.Record{
		ID:        id,
		Kind:      record.KindNote,
		Body:      "Project ideas",
		Status:    record.StatusTrashed,
		CreatedAt: created,
		UpdatedAt: created.Add(time.Minute),
	}
}

func assertSameRecord(t *testing.T, got, want record.Record) {
	t.Helper()
	if got.ID != want.ID || got.Kind != want.Kind || got.Body != want.Body || got.Status != want.Status {
		t.Errorf("record = {%d %s %q %s}, want {%d %s %q %s}",
			got.ID, got.Kind, got.Body, got.Status, want.ID, want.Kind, want.Body, want.Status)
	}
	if !got.CreatedAt.Equal(want.CreatedAt) || !got.UpdatedAt.Equal(want.UpdatedAt) {
		t.Errorf("timestamps = %v/%v, want %v/%v", got.CreatedAt, got.UpdatedAt, want.CreatedAt, want.UpdatedAt)
	}
	if len(got.Tags) != len(want.Tags) {
		t.Errorf("Tags = %v, want %v", got.Tags, want.Tags)
	}
	if (got.Due == nil) != (want.Due == nil) || (got.Due != nil && !got.Due.Equal(*want.Due)) {
		t.Errorf("Due = %v, want %v", got.Due, want.Due)
	}
	if got.Priority != want.Priority || got.Done != want.Done {
		t.Errorf("Priority/Done = %v/%v, want %v/%v", got.Priority, got.Done, want.Priority, want.Done)
	}
}

func TestBackend_PutGetList(t *testing.T) {
	for _, bc := range backendCases {
		t.Run(bc.name, func(t *testing.T) {
			b := bc.open(t, t.TempDir())
			defer b.Close()

			task, note := sampleTask(1), sampleNote(2)
			for _, r := range []record.Record{task, note} {
				if err := b.Put(r); err != nil {
					t.Fatalf("Put(%d) error = %v", r.ID, err)
				}
			}

			got, ok, err := b.Get(1)
			if err != nil || !ok {
				t.Fatalf("Get(1) = ok %v, err %v", ok, err)
			}
			assertSameRecord(t, got, task)

			if _, ok, err := b.Get(99); err != nil || ok {
				t.Errorf("Get(99) = ok %v, err %v, want absent", ok, err)
			}

			all, err := b.List()
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(all) != 2 {
				t.Fatalf("List() returned %d records, want 2", len(all))
			}

			// Replace in place
			task.Done = true
			task.Body = "Pay rent (done)"
			if err := b.Put(task); err != nil {
				t.Fatalf("Put(replace) error = %v", err)
			}
			got, _, _ = b.Get(1)
			assertSameRecord(t, got, task)
			if all, _ := b.List(); len(all) != 2 {
				t.Errorf("List() after replace returned %d records, want 2", len(all))
			}
		})
	}
}

func TestBackend_Delete(t *testing.T) {
	for _, bc := range backendCases {
		t.Run(bc.name, func(t *testing.T) {
			b := bc.open(t, t.TempDir())
			defer b.Close()

			if err := b.Put(sampleTask(1)); err != nil {
				t.Fatalf("Put() error = %v", err)
			}
			if err := b.Delete(1); err != nil {
				t.Fatalf("Delete(1) error = %v", err)
			}
			if _, ok, _ := b.Get(1); ok {
				t.Error("Get(1) found record after Delete")
			}
			if err := b.Delete(1); err != nil {
				t.Errorf("Delete(missing) error = %v, want nil", err)
			}
		})
	}
}

func TestBackend_NextIDNeverReused(t *testing.T) {
	for _, bc := range backendCases {
		t.Run(bc.name, func(t *testing.T) {
			dir := t.TempDir()
			b := bc.open(t, dir)

			seen := make(map[int64]bool)
			var last int64
			for i := 0; i < 3; i++ {
				id, err := b.NextID()
				if err != nil {
					t.Fatalf("NextID() error = %v", err)
				}
				if seen[id] || id <= last {
					t.Fatalf("NextID() = %d after %d", id, last)
				}
				seen[id] = true
				last = id
				if err := b.Put(sampleTask(id)); err != nil {
					t.Fatalf("Put(%d) error = %v", id, err)
				}
			}

			// Purge the newest record, then reopen: its id stays burned.
			if err := b.Delete(last); err != nil {
				t.Fatalf("Delete() error = %v", err)
			}
			if err := b.Close(); err != nil {
				t.Fatalf("Close() error = %v", err)
			}

			b = bc.open(t, dir)
			defer b.Close()
			id, err := b.NextID()
			if err != nil {
				t.Fatalf("NextID() after reopen error = %v", err)
			}
			if id <= last {
				t.Errorf("NextID() after reopen = %d, want > %d", id, last)
			}

			// Records written with explicit ids push the mark forward too.
			if err := b.Put(sampleTask(id + 10)); err != nil {
				t.Fatalf("Put() error = %v", err)
			}
			next, err := b.NextID()
			if err != nil {
				t.Fatalf("NextID() error = %v", err)
			}
			if next <= id+10 {
				t.Errorf("NextID() = %d, want > %d", next, id+10)
			}
		})
	}
}

func TestBackend_WithStore(t *testing.T) {
	for _, bc := range backendCases {
		t.Run(bc.name, func(t *testing.T) {
			dir := t.TempDir()
			s := store.New(bc.open(t, dir))

			rec, err := s.Create(record.KindTask, "Renew passport", []string{"admin"}, store.TaskFields{})
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			if _, err := s.SetStatus(rec.ID, record.StatusTrashed); err != nil {
				t.Fatalf("SetStatus() error = %v", err)
			}
			if err := s.Close(); err != nil {
				t.Fatalf("Close() error = %v", err)
			}

			// Identity, status and timestamps survive a restart.
			s = store.New(bc.open(t, dir))
			defer s.Close()
			got, err := s.Get(rec.ID)
			if err != nil {
				t.Fatalf("Get() after reopen error = %v", err)
			}
			if got.Status != record.StatusTrashed || !got.CreatedAt.Equal(rec.CreatedAt) {
				t.Errorf("Get() after reopen = %+v", got)
			}
		})
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	if _, err := Open("postgres", filepath.Join(t.TempDir(), "x")); err == nil {
		t.Error("Open(postgres) error = nil, want error")
	}
}

func TestOpen_ConnectionError(t *testing.T) {
	// A regular file where the parent directory should be.
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	b, err := Open(BackendJSONL, filepath.Join(dir, "records.jsonl"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	b.Close()
	if err := WriteAll(blocker, nil); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}

	for _, backend := range ValidBackends {
		_, err := Open(backend, filepath.Join(blocker, "data"))
		if !errors.Is(err, store.ErrConnection) {
			t.Errorf("Open(%s) under a file error = %v, want ErrConnection", backend, err)
		}
	}
}
