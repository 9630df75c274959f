// ABOUTME: Activity MCP tool handlers
// ABOUTME: Logs notes, meetings and drafted emails against a prospect
package handlers

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/prospecta/crm"
	"github.com/harperreed/prospecta/models"
)

type ActivityHandlers struct {
	svc *crm.Service
}

func NewActivityHandlers(svc *crm.Service) *ActivityHandlers {
	return &ActivityHandlers{svc: svc}
}

type ActivityOutput struct {
	ID         int64  `json:"id"`
	ProspectID int64  `json:"prospect_id"`
	Type       string `json:"type"`
	Content    string `json:"content"`
	Date       string `json:"date"`
}

func activityToOutput(a models.Activity) ActivityOutput {
	return ActivityOutput{
		ID:         int64(a.ID),
		ProspectID: int64(a.ProspectID),
		Type:       string(a.Type),
		Content:    a.Content,
		Date:       formatTime(a.Date),
	}
}

type LogActivityInput struct {
	ProspectID int64  `json:"prospect_id" jsonschema:"Prospect ID (required)"`
	Type       string `json:"type" jsonschema:"Activity type: Note, Sample or Meeting"`
	Content    string `json:"content" jsonschema:"What happened"`
	Date       string `json:"date,omitempty" jsonschema:"Date YYYY-MM-DD (default now)"`
}

func (h *ActivityHandlers) LogActivity(ctx context.Context, _ *mcp.CallToolRequest, input LogActivityInput) (*mcp.CallToolResult, ActivityOutput, error) {
	at, err := parseDate(input.Date)
	if err != nil {
		return nil, ActivityOutput{}, err
	}
	activity, err := h.svc.LogActivity(ctx, models.RecordID(input.ProspectID), models.ActivityType(input.Type), input.Content, at)
	if err = resumeOnce(ctx, err); err != nil {
		return nil, ActivityOutput{}, fmt.Errorf("failed to log activity: %w", err)
	}
	return nil, activityToOutput(*activity), nil
}

type ListActivitiesOutput struct {
	Activities []ActivityOutput `json:"activities"`
}

func (h *ActivityHandlers) ListActivities(ctx context.Context, _ *mcp.CallToolRequest, input ProspectIDInput) (*mcp.CallToolResult, ListActivitiesOutput, error) {
	activities, err := h.svc.ListActivities(ctx, models.RecordID(input.ID))
	if err != nil {
		return nil, ListActivitiesOutput{}, err
	}
	out := ListActivitiesOutput{Activities: make([]ActivityOutput, 0, len(activities))}
	for _, a := range activities {
		out.Activities = append(out.Activities, activityToOutput(a))
	}
	return nil, out, nil
}

type RecordDraftedEmailInput struct {
	ProspectID int64  `json:"prospect_id" jsonschema:"Prospect ID (required)"`
	Body       string `json:"body" jsonschema:"Email text that was drafted"`
}

func (h *ActivityHandlers) RecordDraftedEmail(ctx context.Context, _ *mcp.CallToolRequest, input RecordDraftedEmailInput) (*mcp.CallToolResult, ActivityOutput, error) {
	activity, err := h.svc.RecordDraftedEmail(ctx, models.RecordID(input.ProspectID), input.Body, h.svc.Now())
	if err = resumeOnce(ctx, err); err != nil {
		return nil, ActivityOutput{}, fmt.Errorf("failed to record drafted email: %w", err)
	}
	return nil, activityToOutput(*activity), nil
}
