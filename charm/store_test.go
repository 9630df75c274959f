// ABOUTME: Tests for the KV-backed entity store
// ABOUTME: Runs against a temporary BadgerDB through the charm client wrapper

package charm

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/harperreed/prospecta/models"
	"github.com/harperreed/prospecta/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKVStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewStore(NewTestClient(t))

	now := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	pid, err := s.Create(ctx, store.KindProspects, store.Fields{
		"company_name":     "Épices Martin",
		"stage":            models.StageQualification,
		"last_action_date": now,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RecordID(1), pid)

	cid, err := s.Create(ctx, store.KindContacts, store.Fields{"prospect_id": pid, "name": "Alice"})
	require.NoError(t, err)

	recs, err := s.List(ctx, store.KindContacts, store.ByProspect(pid))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, cid, recs[0].ID)
	assert.Equal(t, pid, recs[0].Fields.ID("prospect_id"))

	recs, err = s.List(ctx, store.KindProspects, store.ByID(pid))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	got, ok := recs[0].Fields.Time("last_action_date")
	require.True(t, ok)
	assert.True(t, now.Equal(got))
	assert.Equal(t, "qualification", recs[0].Fields.String("stage"))

	recs, err = s.List(ctx, store.KindProspects, store.Filter{"stage": models.StageQualification})
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestKVStoreUpdateDeleteMissing(t *testing.T) {
	ctx := context.Background()
	s := NewStore(NewTestClient(t))

	assert.True(t, store.IsNotFound(s.Update(ctx, store.KindSamples, 5, store.Fields{"feedback": "ok"})))
	assert.True(t, store.IsNotFound(s.Delete(ctx, store.KindSamples, 5)))

	recs, err := s.List(ctx, store.KindSamples, store.ByID(5))
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestKVStoreRejectsOrphans(t *testing.T) {
	s := NewStore(NewTestClient(t))

	_, err := s.Create(context.Background(), store.KindActivities, store.Fields{
		"prospect_id": models.RecordID(77),
		"type":        models.ActivityNote,
	})
	assert.True(t, store.IsNotFound(err))
}

func TestKVStoreUpdateMergesFields(t *testing.T) {
	ctx := context.Background()
	s := NewStore(NewTestClient(t))

	pid, err := s.Create(ctx, store.KindProspects, store.Fields{"company_name": "A", "country": "FR"})
	require.NoError(t, err)
	require.NoError(t, s.Update(ctx, store.KindProspects, pid, store.Fields{"country": "BE"}))

	recs, err := s.List(ctx, store.KindProspects, store.ByID(pid))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "A", recs[0].Fields.String("company_name"))
	assert.Equal(t, "BE", recs[0].Fields.String("country"))
}

func TestKVStoreImportAdvancesSequence(t *testing.T) {
	ctx := context.Background()
	s := NewStore(NewTestClient(t))

	require.NoError(t, s.Import(ctx, store.KindProspects, store.Record{ID: 40, Fields: store.Fields{"company_name": "Old"}}))
	id, err := s.Create(ctx, store.KindProspects, store.Fields{"company_name": "New"})
	require.NoError(t, err)
	assert.Equal(t, models.RecordID(41), id)

	all, err := s.List(ctx, store.KindProspects, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, models.RecordID(40), all[0].ID)
}

func TestClientKeysWithPrefix(t *testing.T) {
	c := NewTestClient(t)
	require.NoError(t, c.Set([]byte("contacts/1"), []byte("{}")))
	require.NoError(t, c.Set([]byte("samples/1"), []byte("{}")))

	keys, err := c.KeysWithPrefix("contacts/")
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, "contacts/1", string(keys[0]))

	_, err = c.Get([]byte("missing"))
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestSyncStatusCountsRecords(t *testing.T) {
	c := NewTestClient(t)
	s := NewStore(c)
	ctx := context.Background()
	id, err := s.Create(ctx, store.KindProspects, store.Fields{"company_name": "Nutrifoods"})
	require.NoError(t, err)
	_, err = s.Create(ctx, store.KindContacts, store.Fields{"prospect_id": id, "name": "Alice"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, showSyncStatus(&buf, c))
	out := buf.String()
	assert.Contains(t, out, "local badger store")
	assert.Contains(t, out, "Not connected")
	assert.Contains(t, out, "prospects: 1")
	assert.Contains(t, out, "contacts:  1")
	assert.Contains(t, out, "samples:   0")
}

func TestWipeDeletesEverything(t *testing.T) {
	c := NewTestClient(t)
	s := NewStore(c)
	ctx := context.Background()
	_, err := s.Create(ctx, store.KindProspects, store.Fields{"company_name": "Nutrifoods"})
	require.NoError(t, err)

	n, err := Wipe(c)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	keys, err := c.KeysWithPrefix("")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestKVStoreCorruptRecordIsPermanent(t *testing.T) {
	c := NewTestClient(t)
	s := NewStore(c)
	require.NoError(t, c.Set(recordKey(store.KindProspects, 1), []byte("{not json")))

	_, err := s.List(context.Background(), store.KindProspects, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrCorruptRecord)
	assert.True(t, store.IsPermanent(err))
	assert.False(t, store.IsTransient(err))
}
