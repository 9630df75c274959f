// ABOUTME: GraphViz rendering of the sales pipeline
// ABOUTME: Stage funnel with prospects hanging off their stage and relances flagged
package viz

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"

	"github.com/harperreed/prospecta/crm"
	"github.com/harperreed/prospecta/models"
)

var stageColors = map[models.Stage]string{
	models.StageProspection:     "lightgrey",
	models.StageQualification:   "lightblue",
	models.StageSampleSent:      "lightyellow",
	models.StageRDTest:          "khaki",
	models.StageIndustrialTrial: "orange",
	models.StageNegotiation:     "lightsalmon",
	models.StageWon:             "palegreen",
	models.StageLost:            "white",
}

type PipelineOptions struct {
	// Prospects adds one node per prospect under its stage.
	Prospects bool
	// PlainLabels drops emoji from stage labels.
	PlainLabels bool
}

// PipelineGraph renders board columns as a DOT funnel. Prospects with an
// overdue sample are drawn in red.
func PipelineGraph(ctx context.Context, cols []crm.Column, alerts []crm.Alert, opts PipelineOptions) (string, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create graphviz: %w", err)
	}
	defer func() { _ = gv.Close() }()

	graph, err := gv.Graph()
	if err != nil {
		return "", fmt.Errorf("failed to create graph: %w", err)
	}
	defer func() { _ = graph.Close() }()

	graph.SetLabel("Pipeline")
	graph.SetRankDir(cgraph.LRRank)

	overdue := make(map[models.RecordID]int)
	for _, a := range alerts {
		overdue[a.Sample.ProspectID]++
	}

	var prev *cgraph.Node
	for _, col := range cols {
		node, err := graph.CreateNodeByName("stage_" + string(col.Stage))
		if err != nil {
			return "", fmt.Errorf("failed to create stage node: %w", err)
		}
		label := col.Stage.Label()
		if opts.PlainLabels {
			label = col.Stage.PlainLabel()
		}
		node.SetLabel(fmt.Sprintf("%s\n%d", label, len(col.Prospects)))
		node.SetShape("box")
		node.SetStyle("filled")
		node.SetFillColor(stageColors[col.Stage])

		if col.Stage == models.StageLost {
			node.SetStyle("dashed")
		} else if prev != nil {
			if _, err := graph.CreateEdgeByName("next", prev, node); err != nil {
				return "", fmt.Errorf("failed to create edge: %w", err)
			}
		}
		if col.Stage != models.StageLost {
			prev = node
		}

		if !opts.Prospects {
			continue
		}
		for _, p := range col.Prospects {
			pn, err := graph.CreateNodeByName(fmt.Sprintf("prospect_%d", p.ID))
			if err != nil {
				return "", fmt.Errorf("failed to create prospect node: %w", err)
			}
			pn.SetLabel(p.CompanyName)
			pn.SetShape("ellipse")
			if n := overdue[p.ID]; n > 0 {
				pn.SetLabel(fmt.Sprintf("%s\n⏰ %d", p.CompanyName, n))
				pn.SetStyle("filled")
				pn.SetFillColor("tomato")
			}
			edge, err := graph.CreateEdgeByName("holds", node, pn)
			if err != nil {
				return "", fmt.Errorf("failed to create edge: %w", err)
			}
			edge.SetStyle("dotted")
		}
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, graphviz.XDOT, &buf); err != nil {
		return "", fmt.Errorf("failed to render graph: %w", err)
	}
	return buf.String(), nil
}
