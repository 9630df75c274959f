// ABOUTME: Entity store adapter contract consumed by the pipeline core
// ABOUTME: Generic CRUD over the four record kinds with field maps
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/harperreed/prospecta/models"
)

var ErrUnknownKind = errors.New("unknown record kind")

// Kind names one of the four persisted record kinds.
type Kind string

const (
	KindProspects  Kind = "prospects"
	KindContacts   Kind = "contacts"
	KindSamples    Kind = "samples"
	KindActivities Kind = "activities"
)

// Kinds returns every kind, parents first.
func Kinds() []Kind {
	return []Kind{KindProspects, KindContacts, KindSamples, KindActivities}
}

func (k Kind) Valid() bool {
	switch k {
	case KindProspects, KindContacts, KindSamples, KindActivities:
		return true
	}
	return false
}

// CheckKind returns ErrUnknownKind for anything outside Kinds.
func CheckKind(k Kind) error {
	if !k.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownKind, k)
	}
	return nil
}

// Record is one stored row: its store-assigned id plus its fields.
// Fields never contain the "id" key.
type Record struct {
	ID     models.RecordID
	Fields Fields
}

// Filter selects records whose fields equal every given value. The key
// "id" matches the record id.
type Filter map[string]any

// ByID filters on the record id.
func ByID(id models.RecordID) Filter {
	return Filter{"id": id}
}

// ByProspect filters child records on their owning prospect.
func ByProspect(id models.RecordID) Filter {
	return Filter{"prospect_id": id}
}

// Store is the CRUD capability the core writes through. It offers no
// transactions; implementations report NotFoundError when an update or
// delete targets a missing id and TransientIOError for I/O trouble.
type Store interface {
	List(ctx context.Context, kind Kind, filter Filter) ([]Record, error)
	Create(ctx context.Context, kind Kind, fields Fields) (models.RecordID, error)
	Update(ctx context.Context, kind Kind, id models.RecordID, fields Fields) error
	Delete(ctx context.Context, kind Kind, id models.RecordID) error
}

// Importer is implemented by stores that can take a record with an id
// assigned elsewhere, as migrations need.
type Importer interface {
	Import(ctx context.Context, kind Kind, rec Record) error
}

// Matches reports whether rec satisfies every filter entry.
func Matches(rec Record, filter Filter) bool {
	for key, want := range filter {
		if key == "id" {
			id, err := models.ParseRecordID(want)
			if err != nil || id != rec.ID {
				return false
			}
			continue
		}
		have, ok := rec.Fields[key]
		if !ok || !ValuesEqual(have, want) {
			return false
		}
	}
	return true
}
