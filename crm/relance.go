// ABOUTME: Relance alert engine for samples awaiting feedback
// ABOUTME: Pure functions over samples and a reference time, recomputed on each call
package crm

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/harperreed/prospecta/models"
	"github.com/harperreed/prospecta/store"
)

// Alert is a sample overdue for follow-up, with its prospect for display.
// Prospect is nil when the owner could not be found.
type Alert struct {
	Sample      models.Sample
	Prospect    *models.Prospect
	DaysElapsed int
}

// DaysElapsed counts whole days from sent to now, rounding down.
func DaysElapsed(sent, now time.Time) int {
	return int(math.Floor(now.Sub(sent).Hours() / 24))
}

// NeedsFollowUp reports a sample with no feedback whose whole days since
// sending exceed thresholdDays. Unsent samples never qualify.
func NeedsFollowUp(sample models.Sample, now time.Time, thresholdDays int) bool {
	if sample.DateSent == nil || sample.DateSent.IsZero() {
		return false
	}
	if !sample.AwaitingFeedback() {
		return false
	}
	return DaysElapsed(*sample.DateSent, now) > thresholdDays
}

// ComputeAlerts returns the overdue samples, longest waiting first and by
// sample id among equals.
func ComputeAlerts(samples []models.Sample, prospects []models.Prospect, now time.Time, thresholdDays int) []Alert {
	owners := make(map[models.RecordID]*models.Prospect, len(prospects))
	for i := range prospects {
		owners[prospects[i].ID] = &prospects[i]
	}

	var alerts []Alert
	for _, sm := range samples {
		if !NeedsFollowUp(sm, now, thresholdDays) {
			continue
		}
		alerts = append(alerts, Alert{
			Sample:      sm,
			Prospect:    owners[sm.ProspectID],
			DaysElapsed: DaysElapsed(*sm.DateSent, now),
		})
	}
	sort.SliceStable(alerts, func(i, j int) bool {
		if alerts[i].DaysElapsed != alerts[j].DaysElapsed {
			return alerts[i].DaysElapsed > alerts[j].DaysElapsed
		}
		return alerts[i].Sample.ID < alerts[j].Sample.ID
	})
	return alerts
}

// CountAlerts is the badge count for ComputeAlerts.
func CountAlerts(samples []models.Sample, now time.Time, thresholdDays int) int {
	n := 0
	for _, sm := range samples {
		if NeedsFollowUp(sm, now, thresholdDays) {
			n++
		}
	}
	return n
}

// Alerts loads every sample and prospect and computes the current relances.
func (s *Service) Alerts(ctx context.Context) ([]Alert, error) {
	samples, err := s.ListSamples(ctx, 0)
	if err != nil {
		return nil, err
	}
	prospects, err := s.ListProspects(ctx, "")
	if err != nil {
		return nil, err
	}
	return ComputeAlerts(samples, prospects, s.Now(), s.threshold), nil
}

func (s *Service) AlertCount(ctx context.Context) (int, error) {
	samples, err := s.ListSamples(ctx, 0)
	if err != nil {
		return 0, err
	}
	return CountAlerts(samples, s.Now(), s.threshold), nil
}

// ListSamples lists the samples of one prospect, or all samples for id 0.
func (s *Service) ListSamples(ctx context.Context, prospectID models.RecordID) ([]models.Sample, error) {
	var filter store.Filter
	if prospectID.Valid() {
		filter = store.ByProspect(prospectID)
	}
	recs, err := s.list(ctx, store.KindSamples, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list samples: %w", err)
	}
	out := make([]models.Sample, 0, len(recs))
	for _, rec := range recs {
		out = append(out, sampleFromRecord(rec))
	}
	return out, nil
}
