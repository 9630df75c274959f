// ABOUTME: Prospect MCP tool handlers
// ABOUTME: Implements create, list, get, update, delete and stage tools
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

type ProspectHandlers struct {
	svc *crm.Service
}

func NewProspectHandlers(svc *crm.Service) *ProspectHandlers {
	return &ProspectHandlers{svc: svc}
}

type ProspectOutput struct {
	ID              int64  `json:"id"`
	CompanyName     string `json:"company_name"`
	Stage           string `json:"stage"`
	StageLabel      string `json:"stage_label"`
	Country         string `json:"country,omitempty"`
	PotentialVolume string `json:"potential_volume,omitempty"`
	Notes           string `json:"notes,omitempty"`
	LastActionDate  string `json:"last_action_date"`
	CreatedAt       string `json:"created_at"`
}

func prospectToOutput(p *models.Prospect) ProspectOutput {
	return ProspectOutput{
		ID:              int64(p.ID),
		CompanyName:     p.CompanyName,
		Stage:           string(p.Stage),
		StageLabel:      p.Stage.Label(),
		Country:         p.Country,
		PotentialVolume: p.PotentialVolume,
		Notes:           p.Notes,
		LastActionDate:  formatTime(p.LastActionDate),
		CreatedAt:       formatTime(p.CreatedAt),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

type CreateProspectInput struct {
	CompanyName     string `json:"company_name" jsonschema:"Company name (required)"`
	Stage           string `json:"stage,omitempty" jsonschema:"Initial stage value or label (default prospection)"`
	Country         string `json:"country,omitempty" jsonschema:"Country"`
	PotentialVolume string `json:"potential_volume,omitempty" jsonschema:"Potential yearly volume, free text"`
	Notes           string `json:"notes,omitempty" jsonschema:"Notes"`
}

func (h *ProspectHandlers) CreateProspect(ctx context.Context, _ *mcp.CallToolRequest, input CreateProspectInput) (*mcp.CallToolResult, ProspectOutput, error) {
	var stage models.Stage
	if strings.TrimSpace(input.Stage) != "" {
		var err error
		if stage, err = models.ParseStage(input.Stage); err != nil {
			return nil, ProspectOutput{}, err
		}
	}
	p, err := h.svc.CreateProspect(ctx, crm.NewProspect{
		CompanyName:     input.CompanyName,
		Stage:           stage,
		Country:         input.Country,
		PotentialVolume: input.PotentialVolume,
		Notes:           input.Notes,
	})
	if err != nil {
		return nil, ProspectOutput{}, err
	}
	return nil, prospectToOutput(p), nil
}

type ListProspectsInput struct {
	Stage string `json:"stage,omitempty" jsonschema:"Only prospects in this stage (value or label)"`
}

type ListProspectsOutput struct {
	Prospects []ProspectOutput `json:"prospects"`
}

func (h *ProspectHandlers) ListProspects(ctx context.Context, _ *mcp.CallToolRequest, input ListProspectsInput) (*mcp.CallToolResult, ListProspectsOutput, error) {
	var stage models.Stage
	if strings.TrimSpace(input.Stage) != "" {
		var err error
		if stage, err = models.ParseStage(input.Stage); err != nil {
			return nil, ListProspectsOutput{}, err
		}
	}
	prospects, err := h.svc.ListProspects(ctx, stage)
	if err != nil {
		return nil, ListProspectsOutput{}, err
	}
	out := ListProspectsOutput{Prospects: make([]ProspectOutput, 0, len(prospects))}
	for i := range prospects {
		out.Prospects = append(out.Prospects, prospectToOutput(&prospects[i]))
	}
	return nil, out, nil
}

type ProspectIDInput struct {
	ID int64 `json:"id" jsonschema:"Prospect ID (required)"`
}

type ProspectDetailOutput struct {
	Prospect   ProspectOutput   `json:"prospect"`
	Contacts   []ContactOutput  `json:"contacts"`
	Samples    []SampleOutput   `json:"samples"`
	Activities []ActivityOutput `json:"activities"`
}

func (h *ProspectHandlers) GetProspect(ctx context.Context, _ *mcp.CallToolRequest, input ProspectIDInput) (*mcp.CallToolResult, ProspectDetailOutput, error) {
	detail, err := h.svc.LoadProspect(ctx, models.RecordID(input.ID))
	if err != nil {
		return nil, ProspectDetailOutput{}, err
	}
	out := ProspectDetailOutput{
		Prospect:   prospectToOutput(&detail.Prospect),
		Contacts:   make([]ContactOutput, 0, len(detail.Contacts)),
		Samples:    make([]SampleOutput, 0, len(detail.Samples)),
		Activities: make([]ActivityOutput, 0, len(detail.Activities)),
	}
	for _, c := range detail.Contacts {
		out.Contacts = append(out.Contacts, contactToOutput(c))
	}
	for _, s := range detail.Samples {
		out.Samples = append(out.Samples, sampleToOutput(s))
	}
	for _, a := range detail.Activities {
		out.Activities = append(out.Activities, activityToOutput(a))
	}
	return nil, out, nil
}

type UpdateProspectInput struct {
	ID              int64   `json:"id" jsonschema:"Prospect ID (required)"`
	CompanyName     *string `json:"company_name,omitempty" jsonschema:"New company name"`
	Country         *string `json:"country,omitempty" jsonschema:"New country"`
	PotentialVolume *string `json:"potential_volume,omitempty" jsonschema:"New potential volume"`
	Notes           *string `json:"notes,omitempty" jsonschema:"New notes"`
}

func (h *ProspectHandlers) UpdateProspect(ctx context.Context, _ *mcp.CallToolRequest, input UpdateProspectInput) (*mcp.CallToolResult, ProspectOutput, error) {
	p, err := h.svc.UpdateProspect(ctx, models.RecordID(input.ID), crm.ProspectUpdate{
		CompanyName:     input.CompanyName,
		Country:         input.Country,
		PotentialVolume: input.PotentialVolume,
		Notes:           input.Notes,
	})
	if err != nil {
		return nil, ProspectOutput{}, err
	}
	return nil, prospectToOutput(p), nil
}

type DeleteOutput struct {
	Deleted bool   `json:"deleted"`
	Message string `json:"message"`
}

func (h *ProspectHandlers) DeleteProspect(ctx context.Context, _ *mcp.CallToolRequest, input ProspectIDInput) (*mcp.CallToolResult, DeleteOutput, error) {
	if err := h.svc.DeleteProspect(ctx, models.RecordID(input.ID)); err != nil {
		return nil, DeleteOutput{}, err
	}
	return nil, DeleteOutput{Deleted: true, Message: fmt.Sprintf("prospect %d and its records deleted", input.ID)}, nil
}

type SetStageInput struct {
	ID    int64  `json:"id" jsonschema:"Prospect ID (required)"`
	Stage string `json:"stage" jsonschema:"Target stage value or label: prospection, qualification, sample_sent, rd_test, industrial_trial, negotiation, won, lost"`
}

type StageOutput struct {
	ID         int64  `json:"id"`
	Stage      string `json:"stage"`
	StageLabel string `json:"stage_label"`
	Changed    bool   `json:"changed"`
}

func (h *ProspectHandlers) SetStage(ctx context.Context, _ *mcp.CallToolRequest, input SetStageInput) (*mcp.CallToolResult, StageOutput, error) {
	stage, err := models.ParseStage(input.Stage)
	if err != nil {
		return nil, StageOutput{}, err
	}
	if err := h.svc.SetStage(ctx, models.RecordID(input.ID), stage); err != nil {
		return nil, StageOutput{}, err
	}
	return nil, StageOutput{ID: input.ID, Stage: string(stage), StageLabel: stage.Label(), Changed: true}, nil
}

type MoveStageInput struct {
	ID        int64  `json:"id" jsonschema:"Prospect ID (required)"`
	Direction string `json:"direction" jsonschema:"advance or retreat"`
}

func (h *ProspectHandlers) MoveStage(ctx context.Context, _ *mcp.CallToolRequest, input MoveStageInput) (*mcp.CallToolResult, StageOutput, error) {
	id := models.RecordID(input.ID)
	before, err := h.svc.GetProspect(ctx, id)
	if err != nil {
		return nil, StageOutput{}, err
	}

	var after models.Stage
	switch strings.ToLower(strings.TrimSpace(input.Direction)) {
	case "advance", "forward", "next":
		after, err = h.svc.Advance(ctx, id)
	case "retreat", "back", "previous":
		after, err = h.svc.Retreat(ctx, id)
	default:
		return nil, StageOutput{}, fmt.Errorf("invalid direction: %s (valid: advance, retreat)", input.Direction)
	}
	if err != nil {
		return nil, StageOutput{}, err
	}
	return nil, StageOutput{ID: input.ID, Stage: string(after), StageLabel: after.Label(), Changed: after != before.Stage}, nil
}
