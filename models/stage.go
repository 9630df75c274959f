// ABOUTME: Pipeline stage enumeration and adjacent-step transitions
// ABOUTME: Keeps canonical stage values separate from their display labels
package models

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidStage = errors.New("invalid stage")

// Stage is one value of the fixed pipeline enumeration.
type Stage string

const (
	StageProspection     Stage = "prospection"
	StageQualification   Stage = "qualification"
	StageSampleSent      Stage = "sample_sent"
	StageRDTest          Stage = "rd_test"
	StageIndustrialTrial Stage = "industrial_trial"
	StageNegotiation     Stage = "negotiation"
	StageWon             Stage = "won"

	// StageLost sits outside the ordered pipeline. It is only ever set
	// directly and adjacent steps never enter or leave it.
	StageLost Stage = "lost"
)

var pipeline = []Stage{
	StageProspection,
	StageQualification,
	StageSampleSent,
	StageRDTest,
	StageIndustrialTrial,
	StageNegotiation,
	StageWon,
}

var stageLabels = map[Stage]string{
	StageProspection:     "🔭 Prospection",
	StageQualification:   "📋 Qualification",
	StageSampleSent:      "📦 Échantillon envoyé",
	StageRDTest:          "🧪 Test R&D",
	StageIndustrialTrial: "🏭 Essai industriel",
	StageNegotiation:     "🤝 Négociation",
	StageWon:             "✅ Gagné",
	StageLost:            "❌ Perdu",
}

// stageLookup maps every accepted spelling (canonical value, full label,
// label without its emoji) to the stage. Matching is exact after folding case.
var stageLookup = buildStageLookup()

func buildStageLookup() map[string]Stage {
	lookup := make(map[string]Stage)
	for _, s := range AllStages() {
		label := stageLabels[s]
		lookup[strings.ToLower(string(s))] = s
		lookup[strings.ToLower(label)] = s
		if _, text, ok := strings.Cut(label, " "); ok {
			lookup[strings.ToLower(text)] = s
		}
	}
	return lookup
}

// PipelineStages returns the ordered pipeline, first to last.
func PipelineStages() []Stage {
	out := make([]Stage, len(pipeline))
	copy(out, pipeline)
	return out
}

// AllStages returns the ordered pipeline followed by StageLost.
func AllStages() []Stage {
	return append(PipelineStages(), StageLost)
}

// ParseStage resolves a canonical value or a display label to a Stage.
func ParseStage(s string) (Stage, error) {
	stage, ok := stageLookup[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidStage, s)
	}
	return stage, nil
}

func (s Stage) Valid() bool {
	_, ok := stageLabels[s]
	return ok
}

// Label is the human display string, emoji included.
func (s Stage) Label() string {
	if label, ok := stageLabels[s]; ok {
		return label
	}
	return string(s)
}

// PlainLabel is Label without the emoji prefix.
func (s Stage) PlainLabel() string {
	label := s.Label()
	if _, text, ok := strings.Cut(label, " "); ok && s.Valid() {
		return text
	}
	return label
}

// Index is the position of s in the ordered pipeline; ok is false for
// StageLost and unknown values.
func (s Stage) Index() (int, bool) {
	for i, p := range pipeline {
		if p == s {
			return i, true
		}
	}
	return -1, false
}

// Terminal reports whether no further progress is modelled from s.
func (s Stage) Terminal() bool {
	return s == StageWon || s == StageLost
}

// Advance returns the next pipeline stage. At the last stage, on
// StageLost, or for an unknown value it returns s unchanged.
func Advance(s Stage) Stage {
	i, ok := s.Index()
	if !ok || i == len(pipeline)-1 {
		return s
	}
	return pipeline[i+1]
}

// Retreat returns the previous pipeline stage. At the first stage, on
// StageLost, or for an unknown value it returns s unchanged.
func Retreat(s Stage) Stage {
	i, ok := s.Index()
	if !ok || i == 0 {
		return s
	}
	return pipeline[i-1]
}
