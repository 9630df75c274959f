// ABOUTME: Shared fixtures for pipeline tests
// ABOUTME: Fixed clock, memory store and a store wrapper that injects failures
package crm

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/harperreed/prospecta/models"
	"github.com/harperreed/prospecta/store"
)

var testNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

// faultyStore fails queued calls per operation and kind, then passes
// through. A nil entry in the queue lets that call through.
type faultyStore struct {
	store.Store
	mu     sync.Mutex
	faults map[string][]error
	calls  map[string]int
}

func newFaultyStore(inner store.Store) *faultyStore {
	return &faultyStore{Store: inner, faults: map[string][]error{}, calls: map[string]int{}}
}

func (f *faultyStore) fail(op string, kind store.Kind, errs ...error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := op + "/" + string(kind)
	f.faults[key] = append(f.faults[key], errs...)
}

func (f *faultyStore) next(op string, kind store.Kind) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := op + "/" + string(kind)
	f.calls[key]++
	queue := f.faults[key]
	if len(queue) == 0 {
		return nil
	}
	f.faults[key] = queue[1:]
	return queue[0]
}

func (f *faultyStore) count(op string, kind store.Kind) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op+"/"+string(kind)]
}

func (f *faultyStore) List(ctx context.Context, kind store.Kind, filter store.Filter) ([]store.Record, error) {
	if err := f.next("list", kind); err != nil {
		return nil, err
	}
	return f.Store.List(ctx, kind, filter)
}

func (f *faultyStore) Create(ctx context.Context, kind store.Kind, fields store.Fields) (models.RecordID, error) {
	if err := f.next("create", kind); err != nil {
		return 0, err
	}
	return f.Store.Create(ctx, kind, fields)
}

func (f *faultyStore) Update(ctx context.Context, kind store.Kind, id models.RecordID, fields store.Fields) error {
	if err := f.next("update", kind); err != nil {
		return err
	}
	return f.Store.Update(ctx, kind, id, fields)
}

func (f *faultyStore) Delete(ctx context.Context, kind store.Kind, id models.RecordID) error {
	if err := f.next("delete", kind); err != nil {
		return err
	}
	return f.Store.Delete(ctx, kind, id)
}

func newTestService(t *testing.T) (*Service, *faultyStore) {
	t.Helper()
	fs := newFaultyStore(store.NewMemoryStore())
	svc := NewService(fs,
		WithLogger(zaptest.NewLogger(t)),
		WithClock(func() time.Time { return testNow }),
	)
	return svc, fs
}

func mustProspect(t *testing.T, svc *Service, name string) *models.Prospect {
	t.Helper()
	p, err := svc.CreateProspect(context.Background(), NewProspect{CompanyName: name})
	require.NoError(t, err)
	return p
}

func mustContact(t *testing.T, svc *Service, prospectID models.RecordID, name string) models.RecordID {
	t.Helper()
	id, err := svc.Store().Create(context.Background(), store.KindContacts, store.Fields{
		"prospect_id": prospectID,
		"name":        name,
	})
	require.NoError(t, err)
	return id
}

func contactIDs(t *testing.T, svc *Service, prospectID models.RecordID) []models.RecordID {
	t.Helper()
	contacts, err := svc.ListContacts(context.Background(), prospectID)
	require.NoError(t, err)
	ids := make([]models.RecordID, 0, len(contacts))
	for _, c := range contacts {
		ids = append(ids, c.ID)
	}
	return ids
}

func row(id int64, name string) models.ContactRow {
	r := models.ContactRow{Name: name}
	if id > 0 {
		r.ID = models.SomeID(models.RecordID(id))
	}
	return r
}
