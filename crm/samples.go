// ABOUTME: Sample lifecycle: sending, feedback and free-form status changes
// ABOUTME: Sending a sample also logs it and touches the prospect
package crm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/harperreed/prospecta/models"
	"github.com/harperreed/prospecta/store"
)

const stepCreateSample = "create_sample"

// SendSample records a sample shipped at at (now when zero) with status
// sent and no feedback, then logs a Sample activity and moves the
// prospect's last-action date. After the first write, failures are
// reported as *PartialFailure.
func (s *Service) SendSample(ctx context.Context, prospectID models.RecordID, product, reference string, at time.Time) (*models.Sample, error) {
	product = strings.TrimSpace(product)
	reference = strings.TrimSpace(reference)
	if product == "" {
		return nil, invalid("product", "required")
	}
	at = s.at(at)
	log := s.runLogger("send_sample").With(zap.Int64("prospect_id", int64(prospectID)))

	sample := &models.Sample{
		ProspectID: prospectID,
		Product:    product,
		Reference:  reference,
		Status:     models.SampleStatusSent,
		DateSent:   &at,
	}
	content := "Échantillon envoyé : " + product
	if reference != "" {
		content += " (" + reference + ")"
	}
	activity := &models.Activity{ProspectID: prospectID, Type: models.ActivitySample, Content: content, Date: at}

	u := newUnit("send_sample", prospectID, at)
	u.then(stepCreateSample, func(ctx context.Context) error {
		id, err := s.store.Create(ctx, store.KindSamples, store.Fields{
			"prospect_id": prospectID,
			"product":     product,
			"reference":   reference,
			"status":      string(models.SampleStatusSent),
			"date_sent":   at,
			"feedback":    nil,
		})
		if err != nil {
			return err
		}
		sample.ID = id
		return nil
	})
	s.appendActivitySteps(u, activity)

	if err := s.runUnit(ctx, u, log, activity, sample); err != nil {
		if _, partial := AsPartialFailure(err); partial {
			return sample, err
		}
		return nil, err
	}
	log.Debug("sample sent", zap.Int64("sample_id", int64(sample.ID)))
	return sample, nil
}

// RecordFeedback stores feedback text and, when status is given, the new
// status. Blank feedback puts the sample back under relance alerting.
func (s *Service) RecordFeedback(ctx context.Context, sampleID models.RecordID, feedback string, status *models.SampleStatus) error {
	fields := store.Fields{"feedback": nil}
	if text := strings.TrimSpace(feedback); text != "" {
		fields["feedback"] = text
	}
	if status != nil {
		if strings.TrimSpace(string(*status)) == "" {
			return invalid("status", "empty status")
		}
		fields["status"] = string(*status)
	}
	if err := s.store.Update(ctx, store.KindSamples, sampleID, fields); err != nil {
		return fmt.Errorf("failed to record feedback: %w", err)
	}
	return nil
}

// SetSampleStatus sets any status, known or legacy text, without checking
// the current one.
func (s *Service) SetSampleStatus(ctx context.Context, sampleID models.RecordID, status models.SampleStatus) error {
	if strings.TrimSpace(string(status)) == "" {
		return invalid("status", "empty status")
	}
	if err := s.store.Update(ctx, store.KindSamples, sampleID, store.Fields{"status": string(status)}); err != nil {
		return fmt.Errorf("failed to set sample status: %w", err)
	}
	return nil
}
