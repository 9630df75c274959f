// ABOUTME: Visualization CLI commands
// ABOUTME: Handles the pipeline graph and dashboard commands
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/harperreed/prospecta/crm"
	"github.com/harperreed/prospecta/viz"
)

// VizPipelineCommand prints the pipeline as a GraphViz graph.
func VizPipelineCommand(svc *crm.Service, args []string) error {
	fs := flag.NewFlagSet("viz pipeline", flag.ExitOnError)
	output := fs.String("output", "", "Output file (default: stdout)")
	prospects := fs.Bool("prospects", false, "Draw one node per prospect")

	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	cols, err := svc.Board(ctx)
	if err != nil {
		return err
	}
	alerts, err := svc.Alerts(ctx)
	if err != nil {
		return err
	}

	dot, err := viz.PipelineGraph(ctx, cols, alerts, viz.PipelineOptions{Prospects: *prospects, PlainLabels: plainOutput()})
	if err != nil {
		return err
	}

	if *output != "" {
		return os.WriteFile(*output, []byte(dot), 0644)
	}

	_, _ = fmt.Fprintln(stdout, dot)
	return nil
}

// VizDashboardCommand prints a text summary of the pipeline.
func VizDashboardCommand(svc *crm.Service, args []string) error {
	fs := flag.NewFlagSet("viz dashboard", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	cols, err := svc.Board(ctx)
	if err != nil {
		return err
	}
	alerts, err := svc.Alerts(ctx)
	if err != nil {
		return err
	}

	stats := viz.DashboardFromBoard(cols, alerts, svc.Now())
	_, _ = fmt.Fprint(stdout, viz.RenderDashboard(stats, plainOutput()))
	return nil
}
