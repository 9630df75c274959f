// ABOUTME: Tests for the in-memory store and field helpers
// ABOUTME: Checks id assignment, filtering and not-found reporting
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/harperreed/prospecta/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreCRUD(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	for _, name := range []string{"Acme", "Globex"} {
		_, err := s.Create(ctx, KindProspects, Fields{"company_name": name})
		require.NoError(t, err)
	}

	id1, err := s.Create(ctx, KindContacts, Fields{"prospect_id": models.RecordID(1), "name": "Alice"})
	require.NoError(t, err)
	id2, err := s.Create(ctx, KindContacts, Fields{"prospect_id": models.RecordID(2), "name": "Bob"})
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)

	recs, err := s.List(ctx, KindContacts, ByProspect(1))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Alice", recs[0].Fields.String("name"))

	require.NoError(t, s.Update(ctx, KindContacts, id1, Fields{"name": "Alice Updated"}))
	recs, err = s.List(ctx, KindContacts, ByID(id1))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Alice Updated", recs[0].Fields.String("name"))
	assert.Equal(t, models.RecordID(1), recs[0].Fields.ID("prospect_id"))

	require.NoError(t, s.Delete(ctx, KindContacts, id1))
	err = s.Delete(ctx, KindContacts, id1)
	assert.True(t, IsNotFound(err))

	var nf *NotFoundError
	require.True(t, errors.As(s.Update(ctx, KindContacts, id1, Fields{"name": "x"}), &nf))
	assert.Equal(t, id1, nf.ID)
	assert.Equal(t, KindContacts, nf.Kind)
}

func TestMemoryStoreListReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	id, err := s.Create(ctx, KindProspects, Fields{"company_name": "Acme"})
	require.NoError(t, err)

	recs, err := s.List(ctx, KindProspects, nil)
	require.NoError(t, err)
	recs[0].Fields["company_name"] = "mutated"

	recs, err = s.List(ctx, KindProspects, ByID(id))
	require.NoError(t, err)
	assert.Equal(t, "Acme", recs[0].Fields.String("company_name"))
}

func TestMemoryStoreUnknownKind(t *testing.T) {
	_, err := NewMemoryStore().List(context.Background(), Kind("deals"), nil)
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestMemoryStoreImportKeepsSequenceAhead(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Import(ctx, KindProspects, Record{ID: 3, Fields: Fields{"company_name": "Acme"}}))
	require.NoError(t, s.Import(ctx, KindSamples, Record{ID: 10, Fields: Fields{"prospect_id": int64(3), "product": "Vanilla"}}))

	id, err := s.Create(ctx, KindSamples, Fields{"prospect_id": int64(3), "product": "Pepper"})
	require.NoError(t, err)
	assert.Equal(t, models.RecordID(11), id)
}

func TestMemoryStoreRejectsOrphans(t *testing.T) {
	_, err := NewMemoryStore().Create(context.Background(), KindActivities, Fields{"prospect_id": int64(9)})
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, KindProspects, nf.Kind)
	assert.Equal(t, models.RecordID(9), nf.ID)
}

func TestFieldsTime(t *testing.T) {
	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	f := Fields{
		"native": ts,
		"text":   ts.Format(time.RFC3339Nano),
		"sqlite": "2025-03-01 10:00:00+00:00",
		"null":   nil,
		"empty":  "",
	}

	for _, key := range []string{"native", "text", "sqlite"} {
		got, ok := f.Time(key)
		require.True(t, ok, key)
		assert.True(t, ts.Equal(got), key)
	}
	assert.Nil(t, f.TimePtr("null"))
	assert.Nil(t, f.TimePtr("empty"))
	assert.Nil(t, f.TimePtr("missing"))
}

func TestValuesEqual(t *testing.T) {
	assert.True(t, ValuesEqual(models.RecordID(3), json.Number("3")))
	assert.True(t, ValuesEqual(float64(3), "3"))
	assert.True(t, ValuesEqual("sent", "sent"))
	assert.False(t, ValuesEqual("sent", "pending"))
	assert.False(t, ValuesEqual(nil, "x"))
	assert.True(t, ValuesEqual(nil, nil))
}

func TestErrorTaxonomy(t *testing.T) {
	transient := &TransientIOError{Op: "list", Kind: KindProspects, Err: errors.New("connection reset")}
	wrapped := errors.Join(errors.New("context"), transient)
	assert.True(t, IsTransient(wrapped))
	assert.False(t, IsNotFound(wrapped))

	nf := &NotFoundError{Kind: KindSamples, ID: 4}
	assert.True(t, IsNotFound(nf))
	assert.False(t, IsTransient(nf))
	assert.Contains(t, nf.Error(), "samples 4")
}

func TestIsPermanent(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"unknown kind", CheckKind("deals"), true},
		{"unknown field", fmt.Errorf("list: %w: budget", ErrUnknownField), true},
		{"corrupt record", fmt.Errorf("decode: %w: %w", ErrCorruptRecord, errors.New("bad json")), true},
		{"bad id", models.ErrInvalidID, true},
		{"transient", &TransientIOError{Op: "list", Kind: KindProspects, Err: errors.New("timeout")}, false},
		{"not found", &NotFoundError{Kind: KindProspects, ID: 1}, false},
		{"unclassified", errors.New("connection refused"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPermanent(tt.err))
		})
	}
}
