// ABOUTME: Sample status values and labels
// ABOUTME: Status is free-form; unknown legacy text is tolerated as-is
package models

import "strings"

type SampleStatus string

// Sample statuses. Any status may be replaced by any other.
const (
	SampleStatusPending   SampleStatus = "pending"
	SampleStatusSent      SampleStatus = "sent"
	SampleStatusInTest    SampleStatus = "in_test"
	SampleStatusValidated SampleStatus = "validated"
	SampleStatusRejected  SampleStatus = "rejected"
)

var sampleStatusLabels = map[SampleStatus]string{
	SampleStatusPending:   "En attente",
	SampleStatusSent:      "Envoyé",
	SampleStatusInTest:    "En test",
	SampleStatusValidated: "Validé",
	SampleStatusRejected:  "Rejeté",
}

// KnownSampleStatuses lists the enumerated statuses in lifecycle order.
func KnownSampleStatuses() []SampleStatus {
	return []SampleStatus{
		SampleStatusPending,
		SampleStatusSent,
		SampleStatusInTest,
		SampleStatusValidated,
		SampleStatusRejected,
	}
}

// ParseSampleStatus maps a canonical value or label to a known status.
// Anything else is kept verbatim as a legacy status.
func ParseSampleStatus(s string) SampleStatus {
	trimmed := strings.TrimSpace(s)
	for status, label := range sampleStatusLabels {
		if strings.EqualFold(trimmed, string(status)) || strings.EqualFold(trimmed, label) {
			return status
		}
	}
	return SampleStatus(trimmed)
}

// Legacy reports a status outside the enumeration.
func (s SampleStatus) Legacy() bool {
	_, ok := sampleStatusLabels[s]
	return !ok
}

func (s SampleStatus) Label() string {
	if label, ok := sampleStatusLabels[s]; ok {
		return label
	}
	return string(s)
}
