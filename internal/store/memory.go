package store

import "github.com/arvimal/daisho/internal/record"

// Memory is a Backend that keeps records in a map. Nothing survives Close.
type Memory struct {
	records map[int64]record.Record
	lastID  int64
}

// NewMemory returns an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{records: make(map[int64]record.Record)}
}

func (m *Memory) NextID() (int64, error) {
	m.lastID++
	return m.lastID, nil
}

func (m *Memory) Get(id int64) (record.Record, bool, error) {
	rec, ok := m.records[id]
	return rec.Clone(), ok, nil
}

func (m *Memory) List() ([]record.Record, error) {
	out := make([]record.Record, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, r.Clone())
	}
	return out, nil
}

func (m *Memory) Put(rec record.Record) error {
	m.records[rec.ID] = rec.Clone()
	if rec.ID > m.lastID {
		m.lastID = rec.ID
	}
	return nil
}

func (m *Memory) Delete(id int64) error {
	delete(m.records, id)
	return nil
}

func (m *Memory) Close() error {
	return nil
}
