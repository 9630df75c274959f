// ABOUTME: MCP resource handlers for exposing sales pipeline data
// ABOUTME: Provides read-only access to prospects, the board and relances via URI
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/prospecta/crm"
	"github.com/harperreed/prospecta/models"
)

const resourceScheme = "prospecta://"

type ResourceHandlers struct {
	svc *crm.Service
}

func NewResourceHandlers(svc *crm.Service) *ResourceHandlers {
	return &ResourceHandlers{svc: svc}
}

// Resources lists the fixed URIs served by ReadResource.
func (h *ResourceHandlers) Resources() []*mcp.Resource {
	return []*mcp.Resource{
		{URI: resourceScheme + "prospects", Name: "prospects", Description: "All prospects, most recent action first", MIMEType: "application/json"},
		{URI: resourceScheme + "pipeline", Name: "pipeline", Description: "Prospects grouped by stage", MIMEType: "application/json"},
		{URI: resourceScheme + "relances", Name: "relances", Description: "Samples overdue for a follow-up", MIMEType: "application/json"},
	}
}

// Templates lists the parameterised URIs served by ReadResource.
func (h *ResourceHandlers) Templates() []*mcp.ResourceTemplate {
	return []*mcp.ResourceTemplate{
		{URITemplate: resourceScheme + "prospects/{id}", Name: "prospect", Description: "One prospect with contacts, samples and activities", MIMEType: "application/json"},
	}
}

// ReadResource handles resource read requests
func (h *ResourceHandlers) ReadResource(ctx context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	if !strings.HasPrefix(uri, resourceScheme) {
		return nil, fmt.Errorf("invalid URI scheme: expected %s", resourceScheme)
	}

	parts := strings.Split(strings.TrimPrefix(uri, resourceScheme), "/")
	switch parts[0] {
	case "prospects":
		if len(parts) == 1 {
			return h.readAllProspects(ctx, uri)
		}
		return h.readProspect(ctx, uri, parts[1])
	case "pipeline":
		return h.readPipeline(ctx, uri)
	case "relances":
		return h.readRelances(ctx, uri)
	default:
		return nil, fmt.Errorf("unknown resource: %s", parts[0])
	}
}

func (h *ResourceHandlers) readAllProspects(ctx context.Context, uri string) (*mcp.ReadResourceResult, error) {
	prospects, err := h.svc.ListProspects(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prospects: %w", err)
	}
	out := make([]ProspectOutput, 0, len(prospects))
	for i := range prospects {
		out = append(out, prospectToOutput(&prospects[i]))
	}
	return jsonResource(uri, out)
}

func (h *ResourceHandlers) readProspect(ctx context.Context, uri, idStr string) (*mcp.ReadResourceResult, error) {
	id, err := models.ParseRecordID(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid prospect ID: %w", err)
	}
	_, detail, err := NewProspectHandlers(h.svc).GetProspect(ctx, nil, ProspectIDInput{ID: int64(id)})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prospect: %w", err)
	}
	return jsonResource(uri, detail)
}

type pipelineColumn struct {
	Stage      string           `json:"stage"`
	StageLabel string           `json:"stage_label"`
	Count      int              `json:"count"`
	Prospects  []ProspectOutput `json:"prospects"`
}

func (h *ResourceHandlers) readPipeline(ctx context.Context, uri string) (*mcp.ReadResourceResult, error) {
	cols, err := h.svc.Board(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pipeline: %w", err)
	}
	out := make([]pipelineColumn, 0, len(cols))
	for _, col := range cols {
		pc := pipelineColumn{
			Stage:      string(col.Stage),
			StageLabel: col.Stage.Label(),
			Count:      len(col.Prospects),
			Prospects:  make([]ProspectOutput, 0, len(col.Prospects)),
		}
		for i := range col.Prospects {
			pc.Prospects = append(pc.Prospects, prospectToOutput(&col.Prospects[i]))
		}
		out = append(out, pc)
	}
	return jsonResource(uri, out)
}

func (h *ResourceHandlers) readRelances(ctx context.Context, uri string) (*mcp.ReadResourceResult, error) {
	_, out, err := NewSampleHandlers(h.svc).ListRelances(ctx, nil, ListRelancesInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch relances: %w", err)
	}
	return jsonResource(uri, out)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource: %w", err)
	}
	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}
