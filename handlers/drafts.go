// ABOUTME: Relance email drafting MCP handler
// ABOUTME: Asks the configured text generator for an email and logs it as a note
package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/prospecta/assistant"
	"github.com/harperreed/prospecta/crm"
	"github.com/harperreed/prospecta/models"
)

var ErrNoAssistant = errors.New("no assistant configured: set ANTHROPIC_API_KEY or GEMINI_API_KEY")

type DraftHandlers struct {
	svc *crm.Service
	gen assistant.Generator
}

func NewDraftHandlers(svc *crm.Service, gen assistant.Generator) *DraftHandlers {
	return &DraftHandlers{svc: svc, gen: gen}
}

type DraftEmailInput struct {
	SampleID int64 `json:"sample_id" jsonschema:"Sample awaiting feedback (required)"`
	Record   bool  `json:"record,omitempty" jsonschema:"Also log the draft as a note on the prospect"`
}

type DraftEmailOutput struct {
	ProspectID int64  `json:"prospect_id"`
	Body       string `json:"body"`
	Recorded   bool   `json:"recorded"`
}

func (h *DraftHandlers) DraftEmail(ctx context.Context, _ *mcp.CallToolRequest, input DraftEmailInput) (*mcp.CallToolResult, DraftEmailOutput, error) {
	body, alert, err := DraftRelance(ctx, h.svc, h.gen, models.RecordID(input.SampleID))
	if err != nil {
		return nil, DraftEmailOutput{}, err
	}

	out := DraftEmailOutput{ProspectID: int64(alert.Sample.ProspectID), Body: body}
	if input.Record {
		_, err := h.svc.RecordDraftedEmail(ctx, alert.Sample.ProspectID, body, h.svc.Now())
		if err = resumeOnce(ctx, err); err != nil {
			return nil, DraftEmailOutput{}, fmt.Errorf("failed to record drafted email: %w", err)
		}
		out.Recorded = true
	}
	return nil, out, nil
}

// DraftRelance generates the body of a relance email for a sample.
func DraftRelance(ctx context.Context, svc *crm.Service, gen assistant.Generator, sampleID models.RecordID) (string, crm.Alert, error) {
	if gen == nil {
		return "", crm.Alert{}, ErrNoAssistant
	}
	alert, contacts, err := AlertContext(ctx, svc, sampleID)
	if err != nil {
		return "", crm.Alert{}, err
	}
	body, err := gen.Generate(ctx, crm.FollowUpPrompt(alert, contacts))
	if err != nil {
		return "", crm.Alert{}, fmt.Errorf("failed to draft email: %w", err)
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return "", crm.Alert{}, fmt.Errorf("failed to draft email: empty reply")
	}
	return body, alert, nil
}
