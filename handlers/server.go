// ABOUTME: Builds the MCP server with every tool, prompt and resource registered
// ABOUTME: Shared by the mcp subcommand and the handler tests
package handlers

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/prospecta/assistant"
	"github.com/harperreed/prospecta/crm"
)

// NewServer wires the handlers to a fresh MCP server. gen may be nil, in
// which case the drafting tool reports that no assistant is configured.
func NewServer(svc *crm.Service, gen assistant.Generator, version string) *mcp.Server {
	prospectHandlers := NewProspectHandlers(svc)
	contactHandlers := NewContactHandlers(svc)
	sampleHandlers := NewSampleHandlers(svc)
	activityHandlers := NewActivityHandlers(svc)
	draftHandlers := NewDraftHandlers(svc, gen)
	vizHandlers := NewVizHandlers(svc)
	promptHandlers := NewPromptHandlers(svc)
	resourceHandlers := NewResourceHandlers(svc)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "prospecta",
		Version: version,
	}, nil)

	// Register tools
	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_prospect",
		Description: "Open a new prospect (company) in the sales pipeline",
	}, prospectHandlers.CreateProspect)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_prospects",
		Description: "List prospects, most recent action first, optionally filtered by stage",
	}, prospectHandlers.ListProspects)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_prospect",
		Description: "Get a prospect with its contacts, samples and activity log",
	}, prospectHandlers.GetProspect)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_prospect",
		Description: "Update a prospect's company name, country, potential volume or notes",
	}, prospectHandlers.UpdateProspect)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_prospect",
		Description: "Delete a prospect together with its contacts, samples and activities",
	}, prospectHandlers.DeleteProspect)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "set_stage",
		Description: "Move a prospect to any pipeline stage, including lost",
	}, prospectHandlers.SetStage)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "move_stage",
		Description: "Advance or retreat a prospect by one pipeline stage",
	}, prospectHandlers.MoveStage)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "save_contacts",
		Description: "Save the full edited contact list of a prospect; contacts left out are deleted unless a row has an unreadable id",
	}, contactHandlers.SaveContacts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "send_sample",
		Description: "Record a sample shipment and log it in the prospect's activity",
	}, sampleHandlers.SendSample)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "record_feedback",
		Description: "Record customer feedback on a sample, optionally changing its status",
	}, sampleHandlers.RecordFeedback)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_samples",
		Description: "List samples, for one prospect or all",
	}, sampleHandlers.ListSamples)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_relances",
		Description: "List samples sent long ago without feedback, oldest first",
	}, sampleHandlers.ListRelances)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "log_activity",
		Description: "Log a note, sample or meeting and update the prospect's last action date",
	}, activityHandlers.LogActivity)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_activities",
		Description: "List a prospect's activities, newest first",
	}, activityHandlers.ListActivities)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "record_drafted_email",
		Description: "Log a relance email you drafted as a note on the prospect",
	}, activityHandlers.RecordDraftedEmail)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "draft_relance_email",
		Description: "Draft a relance email for a sample with the configured assistant",
	}, draftHandlers.DraftEmail)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_pipeline_graph",
		Description: "Render the pipeline as a GraphViz DOT graph",
	}, vizHandlers.GenerateGraph)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "pipeline_dashboard",
		Description: "Summarise the pipeline: prospects per stage, relances and dormant prospects",
	}, vizHandlers.Dashboard)

	for _, p := range promptHandlers.Prompts() {
		server.AddPrompt(p, promptHandlers.GetPrompt)
	}
	for _, r := range resourceHandlers.Resources() {
		server.AddResource(r, resourceHandlers.ReadResource)
	}
	for _, t := range resourceHandlers.Templates() {
		server.AddResourceTemplate(t, resourceHandlers.ReadResource)
	}

	return server
}
