// ABOUTME: Conversions between store records and pipeline models
// ABOUTME: Keeps column names in one place for every backend
package crm

import (
	"time"

	"github.com/harperreed/prospecta/models"
	"github.com/harperreed/prospecta/store"
)

func prospectFromRecord(rec store.Record) models.Prospect {
	p := models.Prospect{
		ID:              rec.ID,
		CompanyName:     rec.Fields.String("company_name"),
		Stage:           models.Stage(rec.Fields.String("stage")),
		Country:         rec.Fields.String("country"),
		PotentialVolume: rec.Fields.String("potential_volume"),
		Notes:           rec.Fields.String("notes"),
	}
	p.LastActionDate, _ = rec.Fields.Time("last_action_date")
	p.CreatedAt, _ = rec.Fields.Time("created_at")
	return p
}

func prospectFields(p models.Prospect) store.Fields {
	return store.Fields{
		"company_name":     p.CompanyName,
		"stage":            string(p.Stage),
		"country":          p.Country,
		"potential_volume": p.PotentialVolume,
		"notes":            p.Notes,
		"last_action_date": p.LastActionDate,
		"created_at":       p.CreatedAt,
	}
}

func contactFromRecord(rec store.Record) models.Contact {
	return models.Contact{
		ID:         rec.ID,
		ProspectID: rec.Fields.ID("prospect_id"),
		Name:       rec.Fields.String("name"),
		Role:       rec.Fields.String("role"),
		Email:      rec.Fields.String("email"),
		Phone:      rec.Fields.String("phone"),
	}
}

// contactFields holds the editable columns of a normalized row.
func contactFields(row models.ContactRow) store.Fields {
	return store.Fields{
		"name":  row.Name,
		"role":  row.Role,
		"email": row.Email,
		"phone": row.Phone,
	}
}

func sampleFromRecord(rec store.Record) models.Sample {
	return models.Sample{
		ID:         rec.ID,
		ProspectID: rec.Fields.ID("prospect_id"),
		Product:    rec.Fields.String("product"),
		Reference:  rec.Fields.String("reference"),
		Status:     models.ParseSampleStatus(rec.Fields.String("status")),
		DateSent:   rec.Fields.TimePtr("date_sent"),
		Feedback:   rec.Fields.String("feedback"),
	}
}

func activityFromRecord(rec store.Record) models.Activity {
	a := models.Activity{
		ID:         rec.ID,
		ProspectID: rec.Fields.ID("prospect_id"),
		Type:       models.ActivityType(rec.Fields.String("type")),
		Content:    rec.Fields.String("content"),
	}
	a.Date, _ = rec.Fields.Time("date")
	return a
}

func activityFields(prospectID models.RecordID, typ models.ActivityType, content string, at time.Time) store.Fields {
	return store.Fields{
		"prospect_id": prospectID,
		"type":        string(typ),
		"content":     content,
		"date":        at,
	}
}
