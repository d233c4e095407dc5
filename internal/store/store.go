// Package store owns the lifetime of notes and tasks. It enforces the record
// invariants and persists every change through a Backend before returning.
package store

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"strings"
	"time"

	"github.com/arvimal/daisho/internal/record"
	"go.uber.org/zap"
)

// ErrConnection is returned when the backing store cannot be reached.
var ErrConnection = errors.New("store unreachable")

// Backend is the persistence contract the Store needs. Implementations must
// write synchronously: once a call returns, the change is durable.
type Backend interface {
	// NextID allocates a fresh id. Ids are never handed out twice, even
	// after the record holding one is purged.
	NextID() (int64, error)
	// Get returns the record with the given id, or ok=false if absent.
	Get(id int64) (rec record.Record, ok bool, err error)
	// List returns every stored record in any order.
	List() ([]record.Record, error)
	// Put inserts or replaces a record.
	Put(rec record.Record) error
	// Delete physically removes a record. Missing ids are not an error.
	Delete(id int64) error
	Close() error
}

// TaskFields carries the task-only attributes for Create.
// A zero Priority means the default.
type TaskFields struct {
	Due      *time.Time
	Priority record.Priority
	Done     bool
}

// Changes is a partial update. Nil fields are left alone.
// ID and Kind exist only so attempts to change them can be rejected.
type Changes struct {
	ID   *int64
	Kind *record.Kind

	Body     *string
	Tags     *[]string
	Due      *time.Time
	ClearDue bool
	Priority *record.Priority
	Done     *bool
}

// IsEmpty reports whether the changes would modify nothing.
func (c Changes) IsEmpty() bool {
	return c.ID == nil && c.Kind == nil && c.Body == nil && c.Tags == nil &&
		c.Due == nil && !c.ClearDue && c.Priority == nil && c.Done == nil
}

// Store provides typed CRUD over records.
type Store struct {
	backend Backend
	now     func() time.Time
	logger  *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger for mutation events.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New wraps a backend.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		now:     time.Now,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC()
}

// Create validates and persists a new active record.
func (s *Store) Create(kind record.Kind, body string, tags []string, task TaskFields) (record.Record, error) {
	rec := record.Record{
		Kind:   kind,
		Body:   strings.TrimSpace(body),
		Tags:   record.NormalizeTags(tags),
		Status: record.StatusActive,
	}
	if kind == record.KindTask {
		rec.Due = task.Due
		rec.Priority = task.Priority
		rec.Done = task.Done
		if rec.Priority == 0 {
			rec.Priority = record.DefaultPriority
		}
	} else if task.Due != nil || task.Priority != 0 || task.Done {
		return record.Record{}, record.ErrTaskFieldOnNote
	}

	if err := rec.Validate(); err != nil {
		return record.Record{}, err
	}

	id, err := s.backend.NextID()
	if err != nil {
		return record.Record{}, fmt.Errorf("allocating id: %w", err)
	}
	rec.ID = id
	rec.CreatedAt = s.timestamp()
	rec.UpdatedAt = rec.CreatedAt

	if err := s.backend.Put(rec); err != nil {
		return record.Record{}, fmt.Errorf("saving record %d: %w", id, err)
	}

	s.logger.Debug("record created", zap.Int64("id", id), zap.String("kind", string(kind)))
	return rec.Clone(), nil
}

// load fetches a record that still exists, including deleted ones awaiting purge.
func (s *Store) load(id int64) (record.Record, error) {
	rec, ok, err := s.backend.Get(id)
	if err != nil {
		return record.Record{}, fmt.Errorf("reading record %d: %w", id, err)
	}
	if !ok {
		return record.Record{}, record.NotFound(id)
	}
	return rec, nil
}

// Get returns an active or trashed record.
func (s *Store) Get(id int64) (record.Record, error) {
	rec, err := s.load(id)
	if err != nil {
		return record.Record{}, err
	}
	if rec.Status == record.StatusDeleted {
		return record.Record{}, record.NotFound(id)
	}
	return rec, nil
}

// Update applies a partial change and bumps updated_at.
func (s *Store) Update(id int64, c Changes) (record.Record, error) {
	if c.ID != nil {
		return record.Record{}, fmt.Errorf("%w: id", record.ErrImmutableField)
	}
	if c.Kind != nil {
		return record.Record{}, fmt.Errorf("%w: kind", record.ErrImmutableField)
	}

	rec, err := s.Get(id)
	if err != nil {
		return record.Record{}, err
	}

	if c.Body != nil {
		rec.Body = strings.TrimSpace(*c.Body)
	}
	if c.Tags != nil {
		rec.Tags = record.NormalizeTags(*c.Tags)
	}
	if c.Due != nil || c.ClearDue || c.Priority != nil || c.Done != nil {
		if !rec.IsTask() {
			return record.Record{}, record.ErrTaskFieldOnNote
		}
	}
	if c.ClearDue {
		rec.Due = nil
	}
	if c.Due != nil {
		due := *c.Due
		rec.Due = &due
	}
	if c.Priority != nil {
		rec.Priority = *c.Priority
	}
	if c.Done != nil {
		rec.Done = *c.Done
	}

	if err := rec.Validate(); err != nil {
		return record.Record{}, err
	}
	return s.save(rec, "record updated")
}

// SetStatus moves a record along the status graph.
func (s *Store) SetStatus(id int64, status record.Status) (record.Record, error) {
	rec, err := s.load(id)
	if err != nil {
		return record.Record{}, err
	}
	if err := rec.Transition(status); err != nil {
		return record.Record{}, err
	}
	return s.save(rec, "record status changed")
}

// Purge physically removes a record that has been moved to deleted.
func (s *Store) Purge(id int64) error {
	rec, err := s.load(id)
	if err != nil {
		return err
	}
	if rec.Status != record.StatusDeleted {
		return fmt.Errorf("%w: id %d is %s, not deleted", record.ErrNotFound, id, rec.Status)
	}
	if err := s.backend.Delete(id); err != nil {
		return fmt.Errorf("purging record %d: %w", id, err)
	}
	s.logger.Debug("record purged", zap.Int64("id", id))
	return nil
}

// PurgeDeleted removes every record still in the deleted state, such as one
// whose purge failed after the status change. It returns how many it removed.
func (s *Store) PurgeDeleted() (int, error) {
	recs, err := s.backend.List()
	if err != nil {
		return 0, fmt.Errorf("listing records: %w", err)
	}

	n := 0
	for _, r := range recs {
		if r.Status != record.StatusDeleted {
			continue
		}
		if err := s.backend.Delete(r.ID); err != nil {
			return n, fmt.Errorf("purging record %d: %w", r.ID, err)
		}
		n++
	}
	if n > 0 {
		s.logger.Info("purged leftover deleted records", zap.Int("count", n))
	}
	return n, nil
}

// All returns a snapshot of every active and trashed record, ordered by
// creation time then id. The sequence can be ranged over any number of times.
func (s *Store) All() (iter.Seq[record.Record], error) {
	recs, err := s.backend.List()
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}

	snapshot := make([]record.Record, 0, len(recs))
	for _, r := range recs {
		if r.Status != record.StatusDeleted {
			snapshot = append(snapshot, r.Clone())
		}
	}
	slices.SortFunc(snapshot, record.Compare)

	return func(yield func(record.Record) bool) {
		for _, r := range snapshot {
			if !yield(r.Clone()) {
				return
			}
		}
	}, nil
}

// save stamps updated_at, keeping it non-decreasing, and persists.
func (s *Store) save(rec record.Record, event string) (record.Record, error) {
	now := s.timestamp()
	if now.After(rec.UpdatedAt) {
		rec.UpdatedAt = now
	}
	if err := s.backend.Put(rec); err != nil {
		return record.Record{}, fmt.Errorf("saving record %d: %w", rec.ID, err)
	}
	s.logger.Debug(event, zap.Int64("id", rec.ID), zap.String("status", string(rec.Status)))
	return rec.Clone(), nil
}
