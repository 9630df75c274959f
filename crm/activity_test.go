// ABOUTME: Tests for activity logging and the last-action date
// ABOUTME: Includes partial failures and their resumption
package crm

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/prospecta/models"
	"github.com/harperreed/prospecta/store"
)

func TestLogActivityTouchesProspect(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	p := mustProspect(t, svc, "Acme")

	at := testNow.Add(72 * time.Hour)
	a, err := svc.LogActivity(ctx, p.ID, models.ActivityNote, "x", at)
	require.NoError(t, err)
	assert.True(t, a.ID.Valid())

	got, err := svc.GetProspect(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, at.Equal(got.LastActionDate))

	activities, err := svc.ListActivities(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.True(t, at.Equal(activities[0].Date))
	assert.Equal(t, models.ActivityNote, activities[0].Type)
	assert.Equal(t, "x", activities[0].Content)
}

func TestLogActivityDefaultsToNow(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	p := mustProspect(t, svc, "Acme")

	a, err := svc.LogActivity(ctx, p.ID, "meeting", "visite usine", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, models.ActivityMeeting, a.Type)
	assert.True(t, testNow.Equal(a.Date))
}

func TestLogActivityPartialFailure(t *testing.T) {
	ctx := context.Background()
	svc, fs := newTestService(t)
	p := mustProspect(t, svc, "Acme")
	at := testNow.AddDate(0, 0, 2)

	fs.fail("update", store.KindProspects, &store.TransientIOError{Op: "update", Kind: store.KindProspects, Err: errors.New("timeout")})
	a, err := svc.LogActivity(ctx, p.ID, models.ActivityNote, "appel", at)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPartialFailure)
	assert.True(t, store.IsTransient(err))

	pf, ok := AsPartialFailure(err)
	require.True(t, ok)
	assert.Equal(t, []string{stepCreateActivity}, pf.Completed)
	assert.Equal(t, stepTouchProspect, pf.Failed)
	assert.Equal(t, p.ID, pf.ProspectID)
	assert.Equal(t, a.ID, pf.ActivityID)
	assert.True(t, at.Equal(pf.At))

	got, err := svc.GetProspect(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, testNow.Equal(got.LastActionDate))

	require.NoError(t, pf.Resume(ctx))
	require.NoError(t, pf.Resume(ctx))
	got, err = svc.GetProspect(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, at.Equal(got.LastActionDate))

	activities, err := svc.ListActivities(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, activities, 1)
}

func TestTouchLastActionIsRepeatable(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	p := mustProspect(t, svc, "Acme")
	at := testNow.AddDate(0, 1, 0)

	require.NoError(t, svc.TouchLastAction(ctx, p.ID, at))
	require.NoError(t, svc.TouchLastAction(ctx, p.ID, at))
	got, err := svc.GetProspect(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, at.Equal(got.LastActionDate))
}

func TestBackdatedActivityKeepsLastAction(t *testing.T) {
	ctx := context.Background()
	svc, fs := newTestService(t)
	p := mustProspect(t, svc, "Acme")

	later := testNow.AddDate(0, 0, 5)
	_, err := svc.LogActivity(ctx, p.ID, models.ActivityNote, "appel", later)
	require.NoError(t, err)
	updates := fs.count("update", store.KindProspects)

	_, err = svc.LogActivity(ctx, p.ID, models.ActivityMeeting, "visite oubliée", testNow.AddDate(0, 0, -60))
	require.NoError(t, err)
	assert.Equal(t, updates, fs.count("update", store.KindProspects))

	got, err := svc.GetProspect(ctx, p.ID)
	require.NoError(t, err)
	activities, err := svc.ListActivities(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, activities, 2)
	assert.True(t, later.Equal(activities[0].Date))
	assert.True(t, later.Equal(got.LastActionDate))
	assert.False(t, got.LastActionDate.Before(activities[0].Date))
}

func TestBackdatedSampleKeepsLastAction(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	p := mustProspect(t, svc, "Acme")

	_, err := svc.SendSample(ctx, p.ID, "Curcuma", "", testNow.AddDate(0, 0, -20))
	require.NoError(t, err)

	got, err := svc.GetProspect(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, testNow.Equal(got.LastActionDate))
}

func TestTouchLastActionNeverGoesBack(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	p := mustProspect(t, svc, "Acme")

	require.NoError(t, svc.TouchLastAction(ctx, p.ID, testNow.AddDate(0, 0, -1)))
	got, err := svc.GetProspect(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, testNow.Equal(got.LastActionDate))

	assert.True(t, store.IsNotFound(svc.TouchLastAction(ctx, 404, testNow)))
}

func TestLogActivityFirstStepFailure(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	a, err := svc.LogActivity(ctx, 404, models.ActivityNote, "x", testNow)
	assert.Nil(t, a)
	assert.True(t, store.IsNotFound(err))
	assert.NotErrorIs(t, err, ErrPartialFailure)
}

func TestLogActivityRejectsUnknownType(t *testing.T) {
	svc, _ := newTestService(t)
	p := mustProspect(t, svc, "Acme")

	_, err := svc.LogActivity(context.Background(), p.ID, models.ActivityType("Call"), "x", testNow)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "type", verr.Field)
}

func TestListActivitiesNewestFirst(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	p := mustProspect(t, svc, "Acme")

	for i, content := range []string{"first", "second", "third"} {
		_, err := svc.LogActivity(ctx, p.ID, models.ActivityNote, content, testNow.AddDate(0, 0, i))
		require.NoError(t, err)
	}
	activities, err := svc.ListActivities(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, activities, 3)
	assert.Equal(t, "third", activities[0].Content)
	assert.Equal(t, "first", activities[2].Content)
}

func TestRecordDraftedEmail(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	p := mustProspect(t, svc, "Acme")
	at := testNow.AddDate(0, 0, 1)

	a, err := svc.RecordDraftedEmail(ctx, p.ID, "Bonjour Alice,\n...", at)
	require.NoError(t, err)
	assert.Equal(t, models.ActivityNote, a.Type)
	assert.True(t, strings.HasSuffix(a.Content, "Bonjour Alice,\n..."))

	got, err := svc.GetProspect(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, at.Equal(got.LastActionDate))

	_, err = svc.RecordDraftedEmail(ctx, p.ID, "  ", at)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}
