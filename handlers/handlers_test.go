// ABOUTME: Tests for the MCP tool, prompt and resource handlers
// ABOUTME: Runs handlers against an in-memory store with a fixed clock
package handlers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/harperreed/prospecta/assistant"
	"github.com/harperreed/prospecta/crm"
	"github.com/harperreed/prospecta/models"
	"github.com/harperreed/prospecta/store"
)

var testNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func setupTestService(t *testing.T) *crm.Service {
	t.Helper()
	return crm.NewService(store.NewMemoryStore(),
		crm.WithLogger(zaptest.NewLogger(t)),
		crm.WithClock(func() time.Time { return testNow }),
	)
}

func createProspect(t *testing.T, svc *crm.Service, name string) ProspectOutput {
	t.Helper()
	_, out, err := NewProspectHandlers(svc).CreateProspect(context.Background(), nil, CreateProspectInput{CompanyName: name, Country: "France"})
	require.NoError(t, err)
	return out
}

func TestCreateAndListProspects(t *testing.T) {
	svc := setupTestService(t)
	h := NewProspectHandlers(svc)
	ctx := context.Background()

	created := createProspect(t, svc, "Nutrifoods")
	assert.Equal(t, "Nutrifoods", created.CompanyName)
	assert.Equal(t, string(models.StageProspection), created.Stage)
	assert.Equal(t, testNow.Format(time.RFC3339), created.LastActionDate)

	_, _, err := h.CreateProspect(ctx, nil, CreateProspectInput{CompanyName: "Bad", Stage: "shipped"})
	assert.Error(t, err)

	_, _, err = h.CreateProspect(ctx, nil, CreateProspectInput{CompanyName: "Lactalis", Stage: "negotiation"})
	require.NoError(t, err)

	_, all, err := h.ListProspects(ctx, nil, ListProspectsInput{})
	require.NoError(t, err)
	assert.Len(t, all.Prospects, 2)

	_, filtered, err := h.ListProspects(ctx, nil, ListProspectsInput{Stage: "negotiation"})
	require.NoError(t, err)
	require.Len(t, filtered.Prospects, 1)
	assert.Equal(t, "Lactalis", filtered.Prospects[0].CompanyName)
}

func TestStageTools(t *testing.T) {
	svc := setupTestService(t)
	h := NewProspectHandlers(svc)
	ctx := context.Background()
	p := createProspect(t, svc, "Nutrifoods")

	_, out, err := h.SetStage(ctx, nil, SetStageInput{ID: p.ID, Stage: "won"})
	require.NoError(t, err)
	assert.Equal(t, string(models.StageWon), out.Stage)

	_, moved, err := h.MoveStage(ctx, nil, MoveStageInput{ID: p.ID, Direction: "retreat"})
	require.NoError(t, err)
	assert.Equal(t, string(models.StageNegotiation), moved.Stage)
	assert.True(t, moved.Changed)

	_, _, err = h.MoveStage(ctx, nil, MoveStageInput{ID: p.ID, Direction: "sideways"})
	assert.Error(t, err)

	_, _, err = h.SetStage(ctx, nil, SetStageInput{ID: p.ID, Stage: "nowhere"})
	assert.Error(t, err)
}

func TestUpdateAndDeleteProspect(t *testing.T) {
	svc := setupTestService(t)
	h := NewProspectHandlers(svc)
	ctx := context.Background()
	p := createProspect(t, svc, "Nutrifoods")

	volume := "20 t/an"
	_, updated, err := h.UpdateProspect(ctx, nil, UpdateProspectInput{ID: p.ID, PotentialVolume: &volume})
	require.NoError(t, err)
	assert.Equal(t, volume, updated.PotentialVolume)
	assert.Equal(t, "France", updated.Country)

	_, del, err := h.DeleteProspect(ctx, nil, ProspectIDInput{ID: p.ID})
	require.NoError(t, err)
	assert.True(t, del.Deleted)

	_, _, err = h.GetProspect(ctx, nil, ProspectIDInput{ID: p.ID})
	assert.True(t, store.IsNotFound(err))
}

func TestSaveContacts(t *testing.T) {
	svc := setupTestService(t)
	h := NewContactHandlers(svc)
	ctx := context.Background()
	p := createProspect(t, svc, "Nutrifoods")

	_, first, err := h.SaveContacts(ctx, nil, SaveContactsInput{
		ProspectID: p.ID,
		Contacts: []ContactRowInput{
			{Name: "Alice"},
			{Name: "Bob", Role: "R&D"},
			{},
		},
	})
	require.NoError(t, err)
	assert.Len(t, first.Applied, 2)
	assert.Empty(t, first.Failed)
	require.Len(t, first.Contacts, 2)

	var aliceID int64
	for _, c := range first.Contacts {
		if c.Name == "Alice" {
			aliceID = c.ID
		}
	}
	require.NotZero(t, aliceID)

	// Bob is left out, Alice gets a role and the second row carries a
	// token that cannot be parsed, so Bob is kept for now.
	_, second, err := h.SaveContacts(ctx, nil, SaveContactsInput{
		ProspectID: p.ID,
		Contacts: []ContactRowInput{
			{ID: float64(aliceID), Name: "Alice", Role: "Achats"},
			{ID: "abc", Name: "Mallory"},
		},
	})
	require.NoError(t, err)
	require.Len(t, second.Applied, 1)
	assert.Equal(t, "update", second.Applied[0].Op)
	require.Len(t, second.Failed, 1)
	assert.Equal(t, 1, second.Failed[0].Row)
	require.Len(t, second.Held, 1)
	assert.Len(t, second.Contacts, 2)

	// Without the unreadable row the omission deletes Bob.
	_, third, err := h.SaveContacts(ctx, nil, SaveContactsInput{
		ProspectID: p.ID,
		Contacts:   []ContactRowInput{{ID: float64(aliceID), Name: "Alice", Role: "Achats"}},
	})
	require.NoError(t, err)
	require.Len(t, third.Applied, 1)
	assert.Equal(t, "delete", third.Applied[0].Op)
	assert.Equal(t, second.Held[0], third.Applied[0].ID)
	assert.Empty(t, third.Held)
	require.Len(t, third.Contacts, 1)
	assert.Equal(t, "Achats", third.Contacts[0].Role)

	_, _, err = h.SaveContacts(ctx, nil, SaveContactsInput{ProspectID: 999})
	assert.True(t, store.IsNotFound(err))
}

func TestSampleToolsAndRelances(t *testing.T) {
	svc := setupTestService(t)
	h := NewSampleHandlers(svc)
	ctx := context.Background()
	p := createProspect(t, svc, "Nutrifoods")

	_, sent, err := h.SendSample(ctx, nil, SendSampleInput{ProspectID: p.ID, Product: "Inuline", Reference: "IN-42", DateSent: "2025-02-01"})
	require.NoError(t, err)
	assert.Equal(t, string(models.SampleStatusSent), sent.Sample.Status)
	assert.Equal(t, "2025-02-01T00:00:00Z", sent.Sample.DateSent)

	_, _, err = h.SendSample(ctx, nil, SendSampleInput{ProspectID: p.ID, Product: "Pectine", DateSent: "01/02/2025"})
	assert.Error(t, err)

	_, relances, err := h.ListRelances(ctx, nil, ListRelancesInput{})
	require.NoError(t, err)
	assert.Equal(t, crm.DefaultRelanceThresholdDays, relances.ThresholdDays)
	require.Equal(t, 1, relances.Count)
	assert.Equal(t, 37, relances.Alerts[0].DaysElapsed)
	assert.Equal(t, "Nutrifoods", relances.Alerts[0].CompanyName)

	_, fb, err := h.RecordFeedback(ctx, nil, RecordFeedbackInput{SampleID: sent.Sample.ID, Feedback: "Bon rendu en cuisson", Status: "in_test"})
	require.NoError(t, err)
	assert.Equal(t, string(models.SampleStatusInTest), fb.Status)
	assert.Equal(t, "Bon rendu en cuisson", fb.Feedback)

	_, relances, err = h.ListRelances(ctx, nil, ListRelancesInput{})
	require.NoError(t, err)
	assert.Zero(t, relances.Count)

	_, list, err := h.ListSamples(ctx, nil, ListSamplesInput{ProspectID: p.ID})
	require.NoError(t, err)
	assert.Len(t, list.Samples, 1)

	_, detail, err := NewProspectHandlers(svc).GetProspect(ctx, nil, ProspectIDInput{ID: p.ID})
	require.NoError(t, err)
	require.Len(t, detail.Activities, 1)
	assert.Equal(t, string(models.ActivitySample), detail.Activities[0].Type)
	// A sample dated before the prospect's last action leaves it in place.
	assert.Equal(t, testNow.Format(time.RFC3339), detail.Prospect.LastActionDate)
}

func TestActivityTools(t *testing.T) {
	svc := setupTestService(t)
	h := NewActivityHandlers(svc)
	ctx := context.Background()
	p := createProspect(t, svc, "Nutrifoods")

	_, logged, err := h.LogActivity(ctx, nil, LogActivityInput{ProspectID: p.ID, Type: "meeting", Content: "Visite usine", Date: "2025-03-01"})
	require.NoError(t, err)
	assert.Equal(t, string(models.ActivityMeeting), logged.Type)

	_, _, err = h.LogActivity(ctx, nil, LogActivityInput{ProspectID: p.ID, Type: "Fax", Content: "?"})
	var verr *crm.ValidationError
	assert.True(t, errors.As(err, &verr))

	_, drafted, err := h.RecordDraftedEmail(ctx, nil, RecordDraftedEmailInput{ProspectID: p.ID, Body: "Bonjour Alice"})
	require.NoError(t, err)
	assert.Equal(t, string(models.ActivityNote), drafted.Type)
	assert.Contains(t, drafted.Content, "Bonjour Alice")

	_, list, err := h.ListActivities(ctx, nil, ProspectIDInput{ID: p.ID})
	require.NoError(t, err)
	require.Len(t, list.Activities, 2)
	assert.Equal(t, drafted.ID, list.Activities[0].ID)

	prospect, err := svc.GetProspect(ctx, models.RecordID(p.ID))
	require.NoError(t, err)
	assert.True(t, prospect.LastActionDate.Equal(testNow))
}

func sendOverdueSample(t *testing.T, svc *crm.Service, prospectID int64) int64 {
	t.Helper()
	_, out, err := NewSampleHandlers(svc).SendSample(context.Background(), nil, SendSampleInput{ProspectID: prospectID, Product: "Inuline", DateSent: "2025-02-01"})
	require.NoError(t, err)
	return out.Sample.ID
}

func TestDraftEmail(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	p := createProspect(t, svc, "Nutrifoods")
	sampleID := sendOverdueSample(t, svc, p.ID)

	mock := &assistant.Mock{Reply: "  Bonjour, avez-vous pu tester l'inuline ?  "}
	_, out, err := NewDraftHandlers(svc, mock).DraftEmail(ctx, nil, DraftEmailInput{SampleID: sampleID, Record: true})
	require.NoError(t, err)
	assert.Equal(t, "Bonjour, avez-vous pu tester l'inuline ?", out.Body)
	assert.True(t, out.Recorded)
	require.Len(t, mock.Prompts, 1)
	assert.Contains(t, mock.Prompts[0], "Nutrifoods")
	assert.Contains(t, mock.Prompts[0], "il y a 37 jours")

	activities, err := svc.ListActivities(ctx, models.RecordID(p.ID))
	require.NoError(t, err)
	assert.Len(t, activities, 2)

	_, _, err = NewDraftHandlers(svc, nil).DraftEmail(ctx, nil, DraftEmailInput{SampleID: sampleID})
	assert.ErrorIs(t, err, ErrNoAssistant)

	failing := &assistant.Mock{Err: errors.New("quota")}
	_, _, err = NewDraftHandlers(svc, failing).DraftEmail(ctx, nil, DraftEmailInput{SampleID: sampleID})
	assert.Error(t, err)
}

func TestFollowUpPrompt(t *testing.T) {
	svc := setupTestService(t)
	h := NewPromptHandlers(svc)
	ctx := context.Background()
	p := createProspect(t, svc, "Nutrifoods")
	sampleID := sendOverdueSample(t, svc, p.ID)

	result, err := h.GetPrompt(ctx, &mcp.GetPromptRequest{Params: &mcp.GetPromptParams{
		Name:      PromptFollowUpEmail,
		Arguments: map[string]string{"sample_id": models.RecordID(sampleID).String()},
	}})
	require.NoError(t, err)
	require.Len(t, result.Messages, 1)
	text, ok := result.Messages[0].Content.(*mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "Inuline")

	_, err = h.GetPrompt(ctx, &mcp.GetPromptRequest{Params: &mcp.GetPromptParams{Name: PromptFollowUpEmail}})
	assert.Error(t, err)

	_, err = h.GetPrompt(ctx, &mcp.GetPromptRequest{Params: &mcp.GetPromptParams{Name: "nope"}})
	assert.Error(t, err)

	review, err := h.GetPrompt(ctx, &mcp.GetPromptRequest{Params: &mcp.GetPromptParams{Name: PromptPipelineReview}})
	require.NoError(t, err)
	text, ok = review.Messages[0].Content.(*mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "Nutrifoods, Inuline: 37 days")
}

func TestReadResources(t *testing.T) {
	svc := setupTestService(t)
	h := NewResourceHandlers(svc)
	ctx := context.Background()
	p := createProspect(t, svc, "Nutrifoods")
	sendOverdueSample(t, svc, p.ID)

	read := func(uri string) (string, error) {
		res, err := h.ReadResource(ctx, &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: uri}})
		if err != nil {
			return "", err
		}
		return res.Contents[0].Text, nil
	}

	for _, uri := range []string{"prospecta://prospects", "prospecta://pipeline", "prospecta://relances"} {
		text, err := read(uri)
		require.NoError(t, err, uri)
		assert.Contains(t, text, "Nutrifoods", uri)
	}

	text, err := read("prospecta://prospects/" + models.RecordID(p.ID).String())
	require.NoError(t, err)
	assert.Contains(t, text, "Inuline")

	_, err = read("crm://contacts")
	assert.Error(t, err)
	_, err = read("prospecta://deals")
	assert.Error(t, err)
	_, err = read("prospecta://prospects/abc")
	assert.Error(t, err)
}

func TestVizTools(t *testing.T) {
	svc := setupTestService(t)
	h := NewVizHandlers(svc)
	ctx := context.Background()
	p := createProspect(t, svc, "Nutrifoods")
	sendOverdueSample(t, svc, p.ID)

	_, graph, err := h.GenerateGraph(ctx, nil, GenerateGraphInput{Prospects: true})
	require.NoError(t, err)
	assert.Contains(t, graph.DOTSource, "digraph")
	assert.Positive(t, graph.EdgeCount)

	_, dash, err := h.Dashboard(ctx, nil, DashboardInput{})
	require.NoError(t, err)
	assert.Equal(t, 1, dash.TotalProspects)
	assert.Equal(t, 1, dash.Relances)
}

func TestServerOverInMemoryTransport(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	server := NewServer(svc, nil, "test")
	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	defer func() { _ = serverSession.Close() }()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer func() { _ = session.Close() }()

	tools, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, tools.Tools, 18)

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "create_prospect",
		Arguments: map[string]any{"company_name": "Nutrifoods"},
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)

	prospects, err := svc.ListProspects(ctx, "")
	require.NoError(t, err)
	require.Len(t, prospects, 1)
	assert.Equal(t, "Nutrifoods", prospects[0].CompanyName)

	prompts, err := session.ListPrompts(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, prompts.Prompts, 2)
}
