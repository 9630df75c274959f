// ABOUTME: In-memory store backend for tests and ephemeral sessions
// ABOUTME: Assigns increasing ids per kind and copies fields in and out
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/harperreed/prospecta/models"
)

var (
	_ Store    = (*MemoryStore)(nil)
	_ Importer = (*MemoryStore)(nil)
)

type MemoryStore struct {
	mu      sync.RWMutex
	records map[Kind]map[models.RecordID]Fields
	next    map[Kind]models.RecordID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[Kind]map[models.RecordID]Fields),
		next:    make(map[Kind]models.RecordID),
	}
}

func (m *MemoryStore) List(_ context.Context, kind Kind, filter Filter) ([]Record, error) {
	if err := CheckKind(kind); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Record
	for id, fields := range m.records[kind] {
		rec := Record{ID: id, Fields: fields.Clone()}
		if Matches(rec, filter) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) Create(_ context.Context, kind Kind, fields Fields) (models.RecordID, error) {
	if err := CheckKind(kind); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if kind != KindProspects {
		pid := fields.ID("prospect_id")
		if _, ok := m.records[KindProspects][pid]; !ok {
			return 0, &NotFoundError{Kind: KindProspects, ID: pid}
		}
	}

	m.next[kind]++
	id := m.next[kind]
	m.put(kind, id, fields)
	return id, nil
}

func (m *MemoryStore) Update(_ context.Context, kind Kind, id models.RecordID, fields Fields) error {
	if err := CheckKind(kind); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.records[kind][id]
	if !ok {
		return &NotFoundError{Kind: kind, ID: id}
	}
	for k, v := range fields {
		if k == "id" {
			continue
		}
		existing[k] = v
	}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, kind Kind, id models.RecordID) error {
	if err := CheckKind(kind); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[kind][id]; !ok {
		return &NotFoundError{Kind: kind, ID: id}
	}
	delete(m.records[kind], id)
	return nil
}

// Import stores rec under its own id and keeps the id sequence ahead of it.
func (m *MemoryStore) Import(_ context.Context, kind Kind, rec Record) error {
	if err := CheckKind(kind); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.put(kind, rec.ID, rec.Fields)
	if rec.ID > m.next[kind] {
		m.next[kind] = rec.ID
	}
	return nil
}

func (m *MemoryStore) put(kind Kind, id models.RecordID, fields Fields) {
	if m.records[kind] == nil {
		m.records[kind] = make(map[models.RecordID]Fields)
	}
	stored := fields.Clone()
	delete(stored, "id")
	m.records[kind][id] = stored
}
