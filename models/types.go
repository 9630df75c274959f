// ABOUTME: Data models for pipeline entities
// ABOUTME: Defines Prospect, Contact, ContactRow, Sample and Activity structs
package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Prospect struct {
	ID              RecordID  `json:"id"`
	CompanyName     string    `json:"company_name"`
	Stage           Stage     `json:"stage"`
	Country         string    `json:"country,omitempty"`
	PotentialVolume string    `json:"potential_volume,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	LastActionDate  time.Time `json:"last_action_date"`
	CreatedAt       time.Time `json:"created_at"`
}

type Contact struct {
	ID         RecordID `json:"id"`
	ProspectID RecordID `json:"prospect_id"`
	Name       string   `json:"name"`
	Role       string   `json:"role,omitempty"`
	Email      string   `json:"email,omitempty"`
	Phone      string   `json:"phone,omitempty"`
}

// Row converts a stored contact into an editable working-list row.
func (c Contact) Row() ContactRow {
	return ContactRow{
		ID:    SomeID(c.ID),
		Name:  c.Name,
		Role:  c.Role,
		Email: c.Email,
		Phone: c.Phone,
	}
}

// ContactRow is one line of a user-edited contact list. ID is absent for
// rows that were never persisted.
type ContactRow struct {
	ID    OptionalID `json:"id"`
	Name  string     `json:"name"`
	Role  string     `json:"role,omitempty"`
	Email string     `json:"email,omitempty"`
	Phone string     `json:"phone,omitempty"`
}

// Blank reports a row without a usable name.
func (r ContactRow) Blank() bool {
	return strings.TrimSpace(r.Name) == ""
}

// Normalized trims every field.
func (r ContactRow) Normalized() ContactRow {
	r.Name = strings.TrimSpace(r.Name)
	r.Role = strings.TrimSpace(r.Role)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	return r
}

// SameAs reports whether writing r over c would change nothing.
func (r ContactRow) SameAs(c Contact) bool {
	n := r.Normalized()
	return n.Name == c.Name && n.Role == c.Role && n.Email == c.Email && n.Phone == c.Phone
}

type Sample struct {
	ID         RecordID     `json:"id"`
	ProspectID RecordID     `json:"prospect_id"`
	Product    string       `json:"product"`
	Reference  string       `json:"reference,omitempty"`
	Status     SampleStatus `json:"status"`
	DateSent   *time.Time   `json:"date_sent,omitempty"`
	Feedback   string       `json:"feedback,omitempty"`
}

// AwaitingFeedback is the sole predicate relance alerting relies on.
func (s Sample) AwaitingFeedback() bool {
	return strings.TrimSpace(s.Feedback) == ""
}

type Activity struct {
	ID         RecordID     `json:"id"`
	ProspectID RecordID     `json:"prospect_id"`
	Type       ActivityType `json:"type"`
	Content    string       `json:"content"`
	Date       time.Time    `json:"date"`
}

var ErrInvalidActivityType = errors.New("invalid activity type")

type ActivityType string

const (
	ActivityNote    ActivityType = "Note"
	ActivitySample  ActivityType = "Sample"
	ActivityMeeting ActivityType = "Meeting"
)

// ParseActivityType accepts the canonical type names, ignoring case.
func ParseActivityType(s string) (ActivityType, error) {
	for _, t := range []ActivityType{ActivityNote, ActivitySample, ActivityMeeting} {
		if strings.EqualFold(strings.TrimSpace(s), string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidActivityType, s)
}

func (t ActivityType) Icon() string {
	switch t {
	case ActivityNote:
		return "📝"
	case ActivitySample:
		return "📦"
	case ActivityMeeting:
		return "🤝"
	default:
		return "•"
	}
}
