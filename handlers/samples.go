// ABOUTME: Sample MCP tool handlers
// ABOUTME: Sends samples, records feedback and lists overdue relances
package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/prospecta/crm"
	"github.com/harperreed/prospecta/models"
)

type SampleHandlers struct {
	svc *crm.Service
}

func NewSampleHandlers(svc *crm.Service) *SampleHandlers {
	return &SampleHandlers{svc: svc}
}

type SampleOutput struct {
	ID          int64  `json:"id"`
	ProspectID  int64  `json:"prospect_id"`
	Product     string `json:"product"`
	Reference   string `json:"reference,omitempty"`
	Status      string `json:"status"`
	StatusLabel string `json:"status_label"`
	DateSent    string `json:"date_sent,omitempty"`
	Feedback    string `json:"feedback,omitempty"`
}

func sampleToOutput(s models.Sample) SampleOutput {
	out := SampleOutput{
		ID:          int64(s.ID),
		ProspectID:  int64(s.ProspectID),
		Product:     s.Product,
		Reference:   s.Reference,
		Status:      string(s.Status),
		StatusLabel: s.Status.Label(),
		Feedback:    s.Feedback,
	}
	if s.DateSent != nil {
		out.DateSent = formatTime(*s.DateSent)
	}
	return out
}

type SendSampleInput struct {
	ProspectID int64  `json:"prospect_id" jsonschema:"Prospect ID (required)"`
	Product    string `json:"product" jsonschema:"Product name (required)"`
	Reference  string `json:"reference,omitempty" jsonschema:"Batch or product reference"`
	DateSent   string `json:"date_sent,omitempty" jsonschema:"Shipping date YYYY-MM-DD (default today)"`
}

type SendSampleOutput struct {
	Sample  SampleOutput `json:"sample"`
	Message string       `json:"message"`
}

func (h *SampleHandlers) SendSample(ctx context.Context, _ *mcp.CallToolRequest, input SendSampleInput) (*mcp.CallToolResult, SendSampleOutput, error) {
	at, err := parseDate(input.DateSent)
	if err != nil {
		return nil, SendSampleOutput{}, err
	}

	sample, err := h.svc.SendSample(ctx, models.RecordID(input.ProspectID), input.Product, input.Reference, at)
	if err = resumeOnce(ctx, err); err != nil {
		return nil, SendSampleOutput{}, fmt.Errorf("failed to send sample: %w", err)
	}
	return nil, SendSampleOutput{
		Sample:  sampleToOutput(*sample),
		Message: fmt.Sprintf("sample %d sent to prospect %d", sample.ID, input.ProspectID),
	}, nil
}

type RecordFeedbackInput struct {
	SampleID int64  `json:"sample_id" jsonschema:"Sample ID (required)"`
	Feedback string `json:"feedback" jsonschema:"Customer feedback; empty clears it"`
	Status   string `json:"status,omitempty" jsonschema:"Optional new status: pending, sent, in_test, validated, rejected"`
}

func (h *SampleHandlers) RecordFeedback(ctx context.Context, _ *mcp.CallToolRequest, input RecordFeedbackInput) (*mcp.CallToolResult, SampleOutput, error) {
	var status *models.SampleStatus
	if strings.TrimSpace(input.Status) != "" {
		st := models.ParseSampleStatus(input.Status)
		status = &st
	}
	id := models.RecordID(input.SampleID)
	if err := h.svc.RecordFeedback(ctx, id, input.Feedback, status); err != nil {
		return nil, SampleOutput{}, err
	}
	sample, err := h.svc.GetSample(ctx, id)
	if err != nil {
		return nil, SampleOutput{}, err
	}
	return nil, sampleToOutput(*sample), nil
}

type ListSamplesInput struct {
	ProspectID int64 `json:"prospect_id,omitempty" jsonschema:"Only samples of this prospect (default all)"`
}

type ListSamplesOutput struct {
	Samples []SampleOutput `json:"samples"`
}

func (h *SampleHandlers) ListSamples(ctx context.Context, _ *mcp.CallToolRequest, input ListSamplesInput) (*mcp.CallToolResult, ListSamplesOutput, error) {
	samples, err := h.svc.ListSamples(ctx, models.RecordID(input.ProspectID))
	if err != nil {
		return nil, ListSamplesOutput{}, err
	}
	out := ListSamplesOutput{Samples: make([]SampleOutput, 0, len(samples))}
	for _, s := range samples {
		out.Samples = append(out.Samples, sampleToOutput(s))
	}
	return nil, out, nil
}

type ListRelancesInput struct{}

type AlertOutput struct {
	Sample      SampleOutput `json:"sample"`
	ProspectID  int64        `json:"prospect_id"`
	CompanyName string       `json:"company_name,omitempty"`
	DaysElapsed int          `json:"days_elapsed"`
}

type ListRelancesOutput struct {
	ThresholdDays int           `json:"threshold_days"`
	Count         int           `json:"count"`
	Alerts        []AlertOutput `json:"alerts"`
}

func alertToOutput(a crm.Alert) AlertOutput {
	out := AlertOutput{
		Sample:      sampleToOutput(a.Sample),
		ProspectID:  int64(a.Sample.ProspectID),
		DaysElapsed: a.DaysElapsed,
	}
	if a.Prospect != nil {
		out.CompanyName = a.Prospect.CompanyName
	}
	return out
}

func (h *SampleHandlers) ListRelances(ctx context.Context, _ *mcp.CallToolRequest, _ ListRelancesInput) (*mcp.CallToolResult, ListRelancesOutput, error) {
	alerts, err := h.svc.Alerts(ctx)
	if err != nil {
		return nil, ListRelancesOutput{}, err
	}
	out := ListRelancesOutput{
		ThresholdDays: h.svc.RelanceThreshold(),
		Count:         len(alerts),
		Alerts:        make([]AlertOutput, 0, len(alerts)),
	}
	for _, a := range alerts {
		out.Alerts = append(out.Alerts, alertToOutput(a))
	}
	return nil, out, nil
}

// parseDate accepts a calendar date or RFC3339; blank means now.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD", s)
	}
	return t, nil
}

// resumeOnce retries the unfinished steps of a partially applied write.
func resumeOnce(ctx context.Context, err error) error {
	pf, ok := crm.AsPartialFailure(err)
	if !ok {
		return err
	}
	return pf.Resume(ctx)
}
