// ABOUTME: Stage changes for prospects
// ABOUTME: Direct set to any stage, or one step along the pipeline
package crm

import (
	"context"

	"go.uber.org/zap"

	"github.com/harperreed/prospecta/models"
	"github.com/harperreed/prospecta/store"
)

// SetStage assigns any known stage regardless of the current one. It does
// not log an activity or touch the last-action date.
func (s *Service) SetStage(ctx context.Context, prospectID models.RecordID, stage models.Stage) error {
	if !stage.Valid() {
		return invalid("stage", "unknown stage "+string(stage))
	}
	if err := s.store.Update(ctx, store.KindProspects, prospectID, store.Fields{"stage": string(stage)}); err != nil {
		return err
	}
	s.logger.Debug("stage set", zap.Int64("prospect_id", int64(prospectID)), zap.String("stage", string(stage)))
	return nil
}

// Advance moves a prospect one stage forward. At Won, on Lost, or on an
// unknown stage nothing is written and the current stage is returned.
func (s *Service) Advance(ctx context.Context, prospectID models.RecordID) (models.Stage, error) {
	return s.step(ctx, prospectID, models.Advance)
}

// Retreat moves a prospect one stage back, with the same no-op rules.
func (s *Service) Retreat(ctx context.Context, prospectID models.RecordID) (models.Stage, error) {
	return s.step(ctx, prospectID, models.Retreat)
}

func (s *Service) step(ctx context.Context, prospectID models.RecordID, move func(models.Stage) models.Stage) (models.Stage, error) {
	p, err := s.GetProspect(ctx, prospectID)
	if err != nil {
		return "", err
	}
	next := move(p.Stage)
	if next == p.Stage {
		return p.Stage, nil
	}
	if err := s.SetStage(ctx, prospectID, next); err != nil {
		return p.Stage, err
	}
	return next, nil
}
