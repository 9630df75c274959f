// ABOUTME: Activity log writes coupled to the prospect's last-action date
// ABOUTME: Both writes run as one unit; a stale date comes back as PartialFailure
package crm

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/harperreed/prospecta/models"
	"github.com/harperreed/prospecta/store"
)

const (
	stepCreateActivity = "create_activity"
	stepTouchProspect  = "touch_prospect"
)

// LogActivity appends an activity dated at and advances the prospect's
// last-action date to at when at is later. A zero at means now. If the
// activity lands but the prospect update does not, the error is a
// *PartialFailure whose Resume re-applies the date.
func (s *Service) LogActivity(ctx context.Context, prospectID models.RecordID, typ models.ActivityType, content string, at time.Time) (*models.Activity, error) {
	typ, err := models.ParseActivityType(string(typ))
	if err != nil {
		return nil, invalid("type", err.Error())
	}
	at = s.at(at)
	log := s.runLogger("log_activity").With(zap.Int64("prospect_id", int64(prospectID)))

	activity := &models.Activity{ProspectID: prospectID, Type: typ, Content: content, Date: at}
	u := newUnit("log_activity", prospectID, at)
	s.appendActivitySteps(u, activity)

	if err := s.runUnit(ctx, u, log, activity, nil); err != nil {
		if _, partial := AsPartialFailure(err); partial {
			return activity, err
		}
		return nil, err
	}
	log.Debug("activity logged", zap.Int64("activity_id", int64(activity.ID)), zap.String("type", string(typ)))
	return activity, nil
}

// appendActivitySteps adds the activity write and the last-action update
// to u. The activity id is filled in once written.
func (s *Service) appendActivitySteps(u *unit, activity *models.Activity) {
	u.then(stepCreateActivity, func(ctx context.Context) error {
		if activity.ID.Valid() {
			return nil
		}
		id, err := s.store.Create(ctx, store.KindActivities,
			activityFields(activity.ProspectID, activity.Type, activity.Content, activity.Date))
		if err != nil {
			return err
		}
		activity.ID = id
		return nil
	})
	u.then(stepTouchProspect, func(ctx context.Context) error {
		return s.TouchLastAction(ctx, activity.ProspectID, activity.Date)
	})
}

func (s *Service) runUnit(ctx context.Context, u *unit, log *zap.Logger, activity *models.Activity, sample *models.Sample) error {
	pf, err := u.run(ctx)
	if pf != nil {
		if activity != nil {
			pf.ActivityID = activity.ID
		}
		if sample != nil {
			pf.SampleID = sample.ID
		}
		log.Error("unit of work left incomplete",
			zap.Strings("completed", pf.Completed),
			zap.String("failed", pf.Failed),
			zap.Error(pf.Err),
		)
		return pf
	}
	if err != nil {
		return fmt.Errorf("%s: %w", u.op, err)
	}
	return nil
}

// TouchLastAction advances the prospect's last-action date to at. A date
// not after the stored one writes nothing, so backdated activities never
// move it backwards and repeating the call is harmless.
func (s *Service) TouchLastAction(ctx context.Context, prospectID models.RecordID, at time.Time) error {
	at = s.at(at)
	p, err := s.GetProspect(ctx, prospectID)
	if err != nil {
		return err
	}
	if !at.After(p.LastActionDate) {
		return nil
	}
	return s.store.Update(ctx, store.KindProspects, prospectID, store.Fields{"last_action_date": at})
}

// ListActivities returns a prospect's activities, newest first.
func (s *Service) ListActivities(ctx context.Context, prospectID models.RecordID) ([]models.Activity, error) {
	recs, err := s.list(ctx, store.KindActivities, store.ByProspect(prospectID))
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	out := make([]models.Activity, 0, len(recs))
	for _, rec := range recs {
		out = append(out, activityFromRecord(rec))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// RecordDraftedEmail logs a drafted email as a note on the prospect.
func (s *Service) RecordDraftedEmail(ctx context.Context, prospectID models.RecordID, body string, at time.Time) (*models.Activity, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, invalid("body", "empty email")
	}
	return s.LogActivity(ctx, prospectID, models.ActivityNote, "Email de relance rédigé :\n"+body, at)
}
