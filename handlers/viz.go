// ABOUTME: GraphViz visualization MCP handlers
// ABOUTME: Provides the pipeline graph and dashboard tools for agents
package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/prospecta/crm"
	"github.com/harperreed/prospecta/viz"
)

type VizHandlers struct {
	svc *crm.Service
}

func NewVizHandlers(svc *crm.Service) *VizHandlers {
	return &VizHandlers{svc: svc}
}

type GenerateGraphInput struct {
	Prospects bool `json:"prospects,omitempty" jsonschema:"Include one node per prospect under its stage"`
}

type GenerateGraphOutput struct {
	DOTSource string `json:"dot_source"`
	NodeCount int    `json:"node_count"`
	EdgeCount int    `json:"edge_count"`
}

func (h *VizHandlers) GenerateGraph(ctx context.Context, _ *mcp.CallToolRequest, input GenerateGraphInput) (*mcp.CallToolResult, GenerateGraphOutput, error) {
	cols, err := h.svc.Board(ctx)
	if err != nil {
		return nil, GenerateGraphOutput{}, err
	}
	alerts, err := h.svc.Alerts(ctx)
	if err != nil {
		return nil, GenerateGraphOutput{}, err
	}

	dot, err := viz.PipelineGraph(ctx, cols, alerts, viz.PipelineOptions{Prospects: input.Prospects, PlainLabels: true})
	if err != nil {
		return nil, GenerateGraphOutput{}, fmt.Errorf("failed to generate graph: %w", err)
	}

	// Count nodes and edges for stats
	return nil, GenerateGraphOutput{
		DOTSource: dot,
		NodeCount: strings.Count(dot, "label="),
		EdgeCount: strings.Count(dot, "->"),
	}, nil
}

type DashboardInput struct{}

type DashboardOutput struct {
	Text           string `json:"text"`
	TotalProspects int    `json:"total_prospects"`
	Relances       int    `json:"relances"`
	Dormant        int    `json:"dormant"`
}

func (h *VizHandlers) Dashboard(ctx context.Context, _ *mcp.CallToolRequest, _ DashboardInput) (*mcp.CallToolResult, DashboardOutput, error) {
	cols, err := h.svc.Board(ctx)
	if err != nil {
		return nil, DashboardOutput{}, err
	}
	alerts, err := h.svc.Alerts(ctx)
	if err != nil {
		return nil, DashboardOutput{}, err
	}
	stats := viz.DashboardFromBoard(cols, alerts, h.svc.Now())
	return nil, DashboardOutput{
		Text:           viz.RenderDashboard(stats, true),
		TotalProspects: stats.TotalProspects,
		Relances:       len(stats.Relances),
		Dormant:        len(stats.Dormant),
	}, nil
}
