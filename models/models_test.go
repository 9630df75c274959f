// ABOUTME: Tests for identity parsing, stage ordering and entity helpers
// ABOUTME: Covers token coercion edge cases and adjacent-step bounds
package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecordID(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  RecordID
		err   error
	}{
		{"int", 7, 7, nil},
		{"int64", int64(42), 42, nil},
		{"float integral", float64(3), 3, nil},
		{"text", "12", 12, nil},
		{"float-like text", "12.0", 12, nil},
		{"padded text", "  9 ", 9, nil},
		{"json number", json.Number("5"), 5, nil},
		{"nil", nil, 0, ErrNoID},
		{"empty", "", 0, ErrNoID},
		{"nan text", "NaN", 0, ErrNoID},
		{"null text", "null", 0, ErrNoID},
		{"fractional", 1.5, 0, ErrInvalidID},
		{"zero", 0, 0, ErrInvalidID},
		{"negative", "-3", 0, ErrInvalidID},
		{"garbage", "abc", 0, ErrInvalidID},
		{"bool", true, 0, ErrInvalidID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRecordID(tt.input)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseOptionalID(t *testing.T) {
	id, err := ParseOptionalID("")
	require.NoError(t, err)
	assert.False(t, id.IsSet())

	id, err = ParseOptionalID("4.0")
	require.NoError(t, err)
	got, ok := id.Get()
	assert.True(t, ok)
	assert.Equal(t, RecordID(4), got)

	_, err = ParseOptionalID("x1")
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestContactRowJSONIdentity(t *testing.T) {
	var rows []ContactRow
	input := `[{"id": 1, "name": "Alice"}, {"id": "2.0", "name": "Bob"}, {"id": null, "name": "Carol"}, {"name": ""}]`
	require.NoError(t, json.Unmarshal([]byte(input), &rows))
	require.Len(t, rows, 4)

	assert.Equal(t, "1", rows[0].ID.String())
	assert.Equal(t, "2", rows[1].ID.String())
	assert.False(t, rows[2].ID.IsSet())
	assert.False(t, rows[3].ID.IsSet())
	assert.True(t, rows[3].Blank())

	out, err := json.Marshal(rows[2])
	require.NoError(t, err)
	assert.Contains(t, string(out), `"id":null`)
}

func TestContactRowRejectsGarbageToken(t *testing.T) {
	var row ContactRow
	err := json.Unmarshal([]byte(`{"id": "abc", "name": "X"}`), &row)
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestStageAdvanceRetreatBounds(t *testing.T) {
	assert.Equal(t, StageQualification, Advance(StageProspection))
	assert.Equal(t, StageWon, Advance(StageNegotiation))
	assert.Equal(t, StageWon, Advance(StageWon), "advance on last stage is a no-op")
	assert.Equal(t, StageProspection, Retreat(StageProspection), "retreat on first stage is a no-op")
	assert.Equal(t, StageIndustrialTrial, Retreat(StageNegotiation))
	assert.Equal(t, StageLost, Advance(StageLost))
	assert.Equal(t, StageLost, Retreat(StageLost))
}

func TestStageWalkVisitsPipelineInOrder(t *testing.T) {
	s := StageProspection
	visited := []Stage{s}
	for !s.Terminal() {
		s = Advance(s)
		visited = append(visited, s)
	}
	assert.Equal(t, PipelineStages(), visited)
	assert.NotContains(t, visited, StageLost)
}

func TestParseStage(t *testing.T) {
	for _, s := range AllStages() {
		got, err := ParseStage(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)

		got, err = ParseStage(s.Label())
		require.NoError(t, err)
		assert.Equal(t, s, got)

		got, err = ParseStage(s.PlainLabel())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	got, err := ParseStage("  TEST R&D ")
	require.NoError(t, err)
	assert.Equal(t, StageRDTest, got)

	// Substrings of a label are not identities.
	_, err = ParseStage("Test")
	assert.ErrorIs(t, err, ErrInvalidStage)
	_, err = ParseStage("closed_won")
	assert.ErrorIs(t, err, ErrInvalidStage)
}

func TestStageIndex(t *testing.T) {
	i, ok := StageSampleSent.Index()
	assert.True(t, ok)
	assert.Equal(t, 2, i)

	_, ok = StageLost.Index()
	assert.False(t, ok)
	assert.True(t, StageLost.Valid())
	assert.False(t, Stage("Test").Valid())
}

func TestSampleStatus(t *testing.T) {
	assert.Equal(t, SampleStatusInTest, ParseSampleStatus("in_test"))
	assert.Equal(t, SampleStatusValidated, ParseSampleStatus("validé"))
	legacy := ParseSampleStatus("  Reçu par le labo ")
	assert.Equal(t, SampleStatus("Reçu par le labo"), legacy)
	assert.True(t, legacy.Legacy())
	assert.False(t, SampleStatusSent.Legacy())
}

func TestSampleAwaitingFeedback(t *testing.T) {
	assert.True(t, Sample{}.AwaitingFeedback())
	assert.True(t, Sample{Feedback: "   "}.AwaitingFeedback())
	assert.False(t, Sample{Feedback: "ok"}.AwaitingFeedback())
}

func TestContactRowSameAs(t *testing.T) {
	c := Contact{ID: 1, Name: "Alice", Email: "a@x.io"}
	assert.True(t, c.Row().SameAs(c))
	assert.True(t, ContactRow{Name: " Alice ", Email: "a@x.io"}.SameAs(c))
	assert.False(t, ContactRow{Name: "Alice Updated", Email: "a@x.io"}.SameAs(c))
}

func TestParseActivityType(t *testing.T) {
	got, err := ParseActivityType("meeting")
	require.NoError(t, err)
	assert.Equal(t, ActivityMeeting, got)

	_, err = ParseActivityType("call")
	assert.ErrorIs(t, err, ErrInvalidActivityType)
}
