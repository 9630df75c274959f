// ABOUTME: Prospect lifecycle: creation, edits, explicit deletion and detail loads
// ABOUTME: Deleting a prospect removes its children before the prospect itself
package crm

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/harperreed/prospecta/models"
	"github.com/harperreed/prospecta/store"
)

// NewProspect holds the fields a user fills in when opening a project.
type NewProspect struct {
	CompanyName     string
	Stage           models.Stage
	Country         string
	PotentialVolume string
	Notes           string
}

// ProspectUpdate edits descriptive fields; nil pointers are left alone.
type ProspectUpdate struct {
	CompanyName     *string
	Country         *string
	PotentialVolume *string
	Notes           *string
}

func (u ProspectUpdate) fields() (store.Fields, error) {
	f := store.Fields{}
	if u.CompanyName != nil {
		name := strings.TrimSpace(*u.CompanyName)
		if name == "" {
			return nil, invalid("company_name", "required")
		}
		f["company_name"] = name
	}
	if u.Country != nil {
		f["country"] = strings.TrimSpace(*u.Country)
	}
	if u.PotentialVolume != nil {
		f["potential_volume"] = strings.TrimSpace(*u.PotentialVolume)
	}
	if u.Notes != nil {
		f["notes"] = *u.Notes
	}
	return f, nil
}

// ProspectDetail is a prospect with everything it owns.
type ProspectDetail struct {
	Prospect   models.Prospect
	Contacts   []models.Contact
	Samples    []models.Sample
	Activities []models.Activity
}

// CreateProspect stores a new prospect at the first stage unless another
// valid stage is given. Its last-action date starts at creation time.
func (s *Service) CreateProspect(ctx context.Context, in NewProspect) (*models.Prospect, error) {
	name := strings.TrimSpace(in.CompanyName)
	if name == "" {
		return nil, invalid("company_name", "required")
	}
	stage := in.Stage
	if stage == "" {
		stage = models.StageProspection
	}
	if !stage.Valid() {
		return nil, invalid("stage", "unknown stage "+string(stage))
	}

	now := s.Now()
	p := models.Prospect{
		CompanyName:     name,
		Stage:           stage,
		Country:         strings.TrimSpace(in.Country),
		PotentialVolume: strings.TrimSpace(in.PotentialVolume),
		Notes:           in.Notes,
		LastActionDate:  now,
		CreatedAt:       now,
	}
	id, err := s.store.Create(ctx, store.KindProspects, prospectFields(p))
	if err != nil {
		return nil, fmt.Errorf("failed to create prospect: %w", err)
	}
	p.ID = id
	s.logger.Info("prospect created", zap.Int64("prospect_id", int64(id)), zap.String("company", name))
	return &p, nil
}

func (s *Service) UpdateProspect(ctx context.Context, id models.RecordID, upd ProspectUpdate) (*models.Prospect, error) {
	fields, err := upd.fields()
	if err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, store.KindProspects, id, fields); err != nil {
		return nil, fmt.Errorf("failed to update prospect: %w", err)
	}
	return s.GetProspect(ctx, id)
}

// DeleteProspect is the explicit user delete. Activities, samples and
// contacts go first so no backend is left with orphans; a failure midway
// leaves the prospect in place and the call can be repeated.
func (s *Service) DeleteProspect(ctx context.Context, id models.RecordID) error {
	if _, err := s.getOne(ctx, store.KindProspects, id); err != nil {
		return err
	}
	for _, kind := range []store.Kind{store.KindActivities, store.KindSamples, store.KindContacts} {
		recs, err := s.list(ctx, kind, store.ByProspect(id))
		if err != nil {
			return fmt.Errorf("failed to delete prospect: %w", err)
		}
		for _, rec := range recs {
			if err := s.store.Delete(ctx, kind, rec.ID); err != nil && !store.IsNotFound(err) {
				return fmt.Errorf("failed to delete %s %d: %w", kind, rec.ID, err)
			}
		}
	}
	if err := s.store.Delete(ctx, store.KindProspects, id); err != nil {
		return fmt.Errorf("failed to delete prospect: %w", err)
	}
	s.logger.Info("prospect deleted", zap.Int64("prospect_id", int64(id)))
	return nil
}

// ListProspects lists prospects in one stage, or all of them for "",
// most recently active first.
func (s *Service) ListProspects(ctx context.Context, stage models.Stage) ([]models.Prospect, error) {
	var filter store.Filter
	if stage != "" {
		filter = store.Filter{"stage": string(stage)}
	}
	recs, err := s.list(ctx, store.KindProspects, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list prospects: %w", err)
	}
	out := make([]models.Prospect, 0, len(recs))
	for _, rec := range recs {
		out = append(out, prospectFromRecord(rec))
	}
	sortByLastAction(out)
	return out, nil
}

// LoadProspect fetches a prospect and its contacts, samples and
// activities, the latter newest first.
func (s *Service) LoadProspect(ctx context.Context, id models.RecordID) (*ProspectDetail, error) {
	p, err := s.GetProspect(ctx, id)
	if err != nil {
		return nil, err
	}
	contacts, err := s.ListContacts(ctx, id)
	if err != nil {
		return nil, err
	}
	samples, err := s.ListSamples(ctx, id)
	if err != nil {
		return nil, err
	}
	activities, err := s.ListActivities(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ProspectDetail{Prospect: *p, Contacts: contacts, Samples: samples, Activities: activities}, nil
}

func sortByLastAction(ps []models.Prospect) {
	sort.SliceStable(ps, func(i, j int) bool {
		if !ps[i].LastActionDate.Equal(ps[j].LastActionDate) {
			return ps[i].LastActionDate.After(ps[j].LastActionDate)
		}
		return ps[i].ID < ps[j].ID
	})
}
