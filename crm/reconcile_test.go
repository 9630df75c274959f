// ABOUTME: Tests for contact reconciliation
// ABOUTME: Covers planning, idempotence, completeness and per-row failures
package crm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/prospecta/models"
	"github.com/harperreed/prospecta/store"
)

func TestPlanContactsAliceBob(t *testing.T) {
	plan := PlanContacts(ReconciliationRequest{
		ProspectID: 1,
		Stored:     []models.Contact{{ID: 1, ProspectID: 1, Name: "Alice"}},
		Working:    []models.ContactRow{row(1, "Alice Updated"), row(0, "Bob"), row(0, "")},
	})

	assert.Empty(t, plan.Deletes)
	require.Len(t, plan.Updates, 1)
	assert.Equal(t, models.RecordID(1), plan.Updates[0].ID)
	assert.Equal(t, "Alice Updated", plan.Updates[0].Contact.Name)
	require.Len(t, plan.Creates, 1)
	assert.Equal(t, "Bob", plan.Creates[0].Contact.Name)
	assert.Equal(t, 1, plan.Creates[0].Row)
	assert.Empty(t, plan.Failures)
}

func TestReconcileContactsAliceBob(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	p := mustProspect(t, svc, "Épices Martin")
	alice := mustContact(t, svc, p.ID, "Alice")

	res, err := svc.ReconcileContacts(ctx, p.ID, []models.ContactRow{
		row(int64(alice), "Alice Updated"), row(0, "Bob"), row(0, ""),
	})
	require.NoError(t, err)
	assert.Empty(t, res.Failed)
	require.Len(t, res.Applied, 2)
	assert.Equal(t, OpUpdate, res.Applied[0].Kind)
	assert.Equal(t, OpCreate, res.Applied[1].Kind)

	contacts, err := svc.ListContacts(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	assert.Equal(t, "Alice Updated", contacts[0].Name)
	assert.Equal(t, "Bob", contacts[1].Name)

	bobID, ok := res.Working[1].ID.Get()
	require.True(t, ok)
	assert.Equal(t, contacts[1].ID, bobID)
	assert.False(t, res.Working[2].ID.IsSet())
}

func TestReconcileIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, fs := newTestService(t)
	p := mustProspect(t, svc, "Acme")
	a := mustContact(t, svc, p.ID, "Alice")
	mustContact(t, svc, p.ID, "Carol")

	working := []models.ContactRow{
		row(int64(a), "  Alice  "),
		row(0, "Bob"),
		{Name: "Dan", Email: "dan@example.com"},
		row(0, " "),
	}
	first, err := svc.ReconcileContacts(ctx, p.ID, working)
	require.NoError(t, err)
	assert.NotEmpty(t, first.Applied)

	stored, err := svc.ListContacts(ctx, p.ID)
	require.NoError(t, err)
	plan := PlanContacts(ReconciliationRequest{ProspectID: p.ID, Stored: stored, Working: first.Working})
	assert.True(t, plan.Empty())

	writes := fs.count("create", store.KindContacts) + fs.count("update", store.KindContacts) + fs.count("delete", store.KindContacts)
	second, err := svc.ReconcileContacts(ctx, p.ID, first.Working)
	require.NoError(t, err)
	assert.Empty(t, second.Applied)
	assert.Empty(t, second.Failed)
	assert.Equal(t, writes,
		fs.count("create", store.KindContacts)+fs.count("update", store.KindContacts)+fs.count("delete", store.KindContacts))
}

func TestReconcileCompleteness(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	p := mustProspect(t, svc, "Acme")
	a := mustContact(t, svc, p.ID, "Alice")
	b := mustContact(t, svc, p.ID, "Bob")
	mustContact(t, svc, p.ID, "Carol")

	res, err := svc.ReconcileContacts(ctx, p.ID, []models.ContactRow{
		row(int64(b), "Bob"),
		row(0, "Eve"),
		row(int64(a), "Alice"),
	})
	require.NoError(t, err)
	assert.Empty(t, res.Failed)

	var want []models.RecordID
	for _, r := range res.Working {
		if id, ok := r.ID.Get(); ok && !r.Blank() {
			want = append(want, id)
		}
	}
	assert.ElementsMatch(t, want, contactIDs(t, svc, p.ID))
	assert.Len(t, want, 3)
}

func TestReconcileSkipsBlankRows(t *testing.T) {
	plan := PlanContacts(ReconciliationRequest{
		ProspectID: 1,
		Working:    []models.ContactRow{row(0, ""), row(0, "   "), {Role: "Buyer"}},
	})
	assert.True(t, plan.Empty())
	assert.Empty(t, plan.Failures)
}

func TestReconcileClearedNameIsNotDeleted(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	p := mustProspect(t, svc, "Acme")
	a := mustContact(t, svc, p.ID, "Alice")

	res, err := svc.ReconcileContacts(ctx, p.ID, []models.ContactRow{row(int64(a), "")})
	require.NoError(t, err)
	assert.Empty(t, res.Applied)
	require.Len(t, res.Failed, 1)

	var verr *ValidationError
	require.ErrorAs(t, res.Failed[0].Err, &verr)
	assert.Equal(t, "name", verr.Field)
	assert.Equal(t, 0, verr.Row)

	contacts, err := svc.ListContacts(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, "Alice", contacts[0].Name)
}

func TestReconcileUnknownTokenIsNotRecreated(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	p := mustProspect(t, svc, "Acme")

	res, err := svc.ReconcileContacts(ctx, p.ID, []models.ContactRow{row(42, "Ghost"), row(0, "Real")})
	require.NoError(t, err)
	require.Len(t, res.Failed, 1)
	assert.True(t, store.IsNotFound(res.Failed[0].Err))
	assert.Equal(t, models.RecordID(42), res.Failed[0].ID)

	contacts, err := svc.ListContacts(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, "Real", contacts[0].Name)
	assert.NotEqual(t, models.RecordID(42), contacts[0].ID)
}

func TestReconcileDuplicateTokenWritesOnce(t *testing.T) {
	plan := PlanContacts(ReconciliationRequest{
		ProspectID: 1,
		Stored:     []models.Contact{{ID: 7, Name: "Alice"}},
		Working:    []models.ContactRow{row(7, "Alice B"), row(7, "Alice C")},
	})
	require.Len(t, plan.Updates, 1)
	assert.Equal(t, "Alice B", plan.Updates[0].Contact.Name)
	require.Len(t, plan.Failures, 1)
	assert.Equal(t, 1, plan.Failures[0].Row)
}

func TestReconcileDeletesUnlistedStoredContacts(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	p := mustProspect(t, svc, "Acme")
	a := mustContact(t, svc, p.ID, "Alice")
	b := mustContact(t, svc, p.ID, "Bob")

	res, err := svc.ReconcileContacts(ctx, p.ID, []models.ContactRow{row(int64(b), "Bob")})
	require.NoError(t, err)
	require.Len(t, res.Applied, 1)
	assert.Equal(t, OpDelete, res.Applied[0].Kind)
	assert.Equal(t, a, res.Applied[0].ID)
	assert.Equal(t, []models.RecordID{b}, contactIDs(t, svc, p.ID))
}

func TestReconcileContinuesPastRowFailures(t *testing.T) {
	ctx := context.Background()
	svc, fs := newTestService(t)
	p := mustProspect(t, svc, "Acme")
	a := mustContact(t, svc, p.ID, "Alice")
	b := mustContact(t, svc, p.ID, "Bob")

	fs.fail("delete", store.KindContacts, &store.NotFoundError{Kind: store.KindContacts, ID: b})
	fs.fail("create", store.KindContacts, &store.TransientIOError{Op: "create", Kind: store.KindContacts, Err: errors.New("reset")})

	working := []models.ContactRow{row(int64(a), "Alice"), row(0, "Carol")}
	for i := 0; i < 8; i++ {
		working = append(working, row(0, "Extra"))
	}
	res, err := svc.ReconcileContacts(ctx, p.ID, working)
	require.NoError(t, err)

	require.Len(t, res.Failed, 2)
	assert.Equal(t, -1, res.Failed[0].Row)
	assert.True(t, store.IsNotFound(res.Failed[0].Err))
	assert.Equal(t, 1, res.Failed[1].Row)
	assert.True(t, store.IsTransient(res.Failed[1].Err))

	assert.Len(t, res.Applied, 8)
	assert.False(t, res.Working[1].ID.IsSet())
}

func TestReconcileUnreachableStore(t *testing.T) {
	ctx := context.Background()
	svc, fs := newTestService(t)
	p := mustProspect(t, svc, "Acme")

	fs.fail("list", store.KindContacts, errors.New("connection refused"))
	res, err := svc.ReconcileContacts(ctx, p.ID, []models.ContactRow{row(0, "Bob")})
	assert.Nil(t, res)
	assert.True(t, store.IsTransient(err))
	assert.Empty(t, contactIDs(t, svc, p.ID))
}

func TestReconcilePermanentStoreFaultIsNotTransient(t *testing.T) {
	ctx := context.Background()
	svc, fs := newTestService(t)
	p := mustProspect(t, svc, "Acme")

	fs.fail("list", store.KindContacts, fmt.Errorf("decode contacts 3: %w", store.ErrCorruptRecord))
	_, err := svc.ReconcileContacts(ctx, p.ID, []models.ContactRow{row(0, "Bob")})
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrCorruptRecord)
	assert.False(t, store.IsTransient(err))
}

func TestReconcileMissingProspect(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.ReconcileContacts(context.Background(), 99, []models.ContactRow{row(0, "Bob")})
	assert.True(t, store.IsNotFound(err))
}

func TestPlanContactsHoldsDeletesOnRejectedRow(t *testing.T) {
	rejected := RowFailure{Row: 1, Op: OpUpdate, Err: models.ErrInvalidID}
	plan := PlanContacts(ReconciliationRequest{
		ProspectID: 1,
		Stored: []models.Contact{
			{ID: 1, ProspectID: 1, Name: "Alice"},
			{ID: 2, ProspectID: 1, Name: "Bob"},
		},
		Working:  []models.ContactRow{row(1, "Alice"), {}, row(0, "Carol")},
		Rejected: []RowFailure{rejected},
	})

	assert.Empty(t, plan.Deletes)
	require.Len(t, plan.Held, 1)
	assert.Equal(t, models.RecordID(2), plan.Held[0].ID)
	require.Len(t, plan.Creates, 1)
	assert.Equal(t, []RowFailure{rejected}, plan.Failures)
}

func TestReconcileWithRejectsKeepsUnlistedContacts(t *testing.T) {
	ctx := context.Background()
	svc, fs := newTestService(t)
	p := mustProspect(t, svc, "Acme")
	alice := mustContact(t, svc, p.ID, "Alice")
	bob := mustContact(t, svc, p.ID, "Bob")

	rejected := []RowFailure{{Row: 1, Op: OpUpdate, Err: models.ErrInvalidID}}
	res, err := svc.ReconcileContactsWithRejects(ctx, p.ID,
		[]models.ContactRow{row(int64(alice), "Alice"), {}}, rejected)
	require.NoError(t, err)
	assert.Zero(t, fs.count("delete", store.KindContacts))
	assert.Empty(t, res.Applied)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, 1, res.Failed[0].Row)
	require.Len(t, res.Held, 1)
	assert.Equal(t, bob, res.Held[0].ID)

	contacts, err := svc.ListContacts(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, contacts, 2)
}
