// ABOUTME: MCP prompt handlers for reusable sales workflow templates
// ABOUTME: Provides the relance email prompt and a pipeline review prompt
package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/prospecta/crm"
	"github.com/harperreed/prospecta/models"
)

const (
	PromptFollowUpEmail  = "follow-up-email"
	PromptPipelineReview = "pipeline-review"
)

type PromptHandlers struct {
	svc *crm.Service
}

func NewPromptHandlers(svc *crm.Service) *PromptHandlers {
	return &PromptHandlers{svc: svc}
}

// Prompts lists the templates served by GetPrompt.
func (h *PromptHandlers) Prompts() []*mcp.Prompt {
	return []*mcp.Prompt{
		{
			Name:        PromptFollowUpEmail,
			Description: "Draft a relance email asking for feedback on a sample",
			Arguments: []*mcp.PromptArgument{
				{Name: "sample_id", Description: "ID of the sample awaiting feedback", Required: true},
			},
		},
		{
			Name:        PromptPipelineReview,
			Description: "Review the pipeline and suggest where to spend effort this week",
		},
	}
}

// GetPrompt generates the prompt message based on the template
func (h *PromptHandlers) GetPrompt(ctx context.Context, request *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	switch request.Params.Name {
	case PromptFollowUpEmail:
		return h.getFollowUpEmailPrompt(ctx, request.Params.Arguments)
	case PromptPipelineReview:
		return h.getPipelineReviewPrompt(ctx)
	default:
		return nil, fmt.Errorf("unknown prompt: %s", request.Params.Name)
	}
}

func (h *PromptHandlers) getFollowUpEmailPrompt(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	raw, ok := args["sample_id"]
	if !ok {
		return nil, fmt.Errorf("sample_id is required")
	}
	sampleID, err := models.ParseRecordID(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid sample_id: %w", err)
	}

	alert, contacts, err := AlertContext(ctx, h.svc, sampleID)
	if err != nil {
		return nil, err
	}

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Relance email for sample: %s", alert.Sample.Product),
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: crm.FollowUpPrompt(alert, contacts)},
			},
		},
	}, nil
}

// AlertContext loads a sample with its prospect and contacts, shaped the
// way the follow-up prompt expects. The sample does not need to be overdue.
func AlertContext(ctx context.Context, svc *crm.Service, sampleID models.RecordID) (crm.Alert, []models.Contact, error) {
	sample, err := svc.GetSample(ctx, sampleID)
	if err != nil {
		return crm.Alert{}, nil, fmt.Errorf("failed to fetch sample: %w", err)
	}
	prospect, err := svc.GetProspect(ctx, sample.ProspectID)
	if err != nil {
		return crm.Alert{}, nil, fmt.Errorf("failed to fetch prospect: %w", err)
	}
	contacts, err := svc.ListContacts(ctx, sample.ProspectID)
	if err != nil {
		return crm.Alert{}, nil, fmt.Errorf("failed to fetch contacts: %w", err)
	}

	alert := crm.Alert{Sample: *sample, Prospect: prospect}
	if sample.DateSent != nil {
		alert.DaysElapsed = crm.DaysElapsed(*sample.DateSent, svc.Now())
	}
	return alert, contacts, nil
}

func (h *PromptHandlers) getPipelineReviewPrompt(ctx context.Context) (*mcp.GetPromptResult, error) {
	cols, err := h.svc.Board(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load pipeline: %w", err)
	}
	alerts, err := h.svc.Alerts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load relances: %w", err)
	}

	var promptText strings.Builder
	promptText.WriteString("Please review this ingredient sales pipeline:\n\n")
	for _, col := range cols {
		promptText.WriteString(fmt.Sprintf("%s: %d\n", col.Stage.PlainLabel(), len(col.Prospects)))
		for _, p := range col.Prospects {
			promptText.WriteString(fmt.Sprintf("  - %s (last action %s)\n", p.CompanyName, p.LastActionDate.Format("2006-01-02")))
		}
	}

	if len(alerts) > 0 {
		promptText.WriteString(fmt.Sprintf("\nSamples waiting for feedback beyond %d days:\n", h.svc.RelanceThreshold()))
		for _, a := range alerts {
			company := "unknown prospect"
			if a.Prospect != nil {
				company = a.Prospect.CompanyName
			}
			promptText.WriteString(fmt.Sprintf("  - %s, %s: %d days\n", company, a.Sample.Product, a.DaysElapsed))
		}
	}

	promptText.WriteString("\nPlease provide:")
	promptText.WriteString("\n1. The prospects most likely to move forward soon")
	promptText.WriteString("\n2. Relances to send first")
	promptText.WriteString("\n3. Stalled prospects worth closing as lost")

	return &mcp.GetPromptResult{
		Description: "Pipeline review",
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: promptText.String()},
			},
		},
	}, nil
}
