// ABOUTME: Contact MCP tool handlers
// ABOUTME: Saves an edited contact list through the reconciler
package handlers

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/prospecta/crm"
	"github.com/harperreed/prospecta/models"
)

type ContactHandlers struct {
	svc *crm.Service
}

func NewContactHandlers(svc *crm.Service) *ContactHandlers {
	return &ContactHandlers{svc: svc}
}

type ContactOutput struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Role  string `json:"role,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

func contactToOutput(c models.Contact) ContactOutput {
	return ContactOutput{ID: int64(c.ID), Name: c.Name, Role: c.Role, Email: c.Email, Phone: c.Phone}
}

// ContactRowInput is one edited row. ID is left loosely typed because
// clients send numbers, numeric text or nothing for new rows.
type ContactRowInput struct {
	ID    any    `json:"id,omitempty" jsonschema:"ID of a saved contact; omit for new contacts"`
	Name  string `json:"name" jsonschema:"Contact name; rows without a name and ID are ignored"`
	Role  string `json:"role,omitempty" jsonschema:"Role or job title"`
	Email string `json:"email,omitempty" jsonschema:"Email address"`
	Phone string `json:"phone,omitempty" jsonschema:"Phone number"`
}

type SaveContactsInput struct {
	ProspectID int64             `json:"prospect_id" jsonschema:"Prospect ID (required)"`
	Contacts   []ContactRowInput `json:"contacts" jsonschema:"Complete edited contact list; saved contacts missing from it are deleted"`
}

type ContactWriteOutput struct {
	Op  string `json:"op"`
	Row int    `json:"row"`
	ID  int64  `json:"id"`
}

type ContactFailureOutput struct {
	Row   int    `json:"row"`
	Op    string `json:"op"`
	ID    int64  `json:"id,omitempty"`
	Error string `json:"error"`
}

type SaveContactsOutput struct {
	Applied  []ContactWriteOutput   `json:"applied"`
	Failed   []ContactFailureOutput `json:"failed"`
	Held     []int64                `json:"held"`
	Contacts []ContactOutput        `json:"contacts"`
}

func (h *ContactHandlers) SaveContacts(ctx context.Context, _ *mcp.CallToolRequest, input SaveContactsInput) (*mcp.CallToolResult, SaveContactsOutput, error) {
	working := make([]models.ContactRow, 0, len(input.Contacts))
	var rejected []crm.RowFailure
	for i, in := range input.Contacts {
		id, err := models.ParseOptionalID(in.ID)
		if err != nil {
			rejected = append(rejected, crm.RowFailure{Row: i, Op: crm.OpUpdate, Err: err})
			// Keep the row so indexes line up, but without a usable identity
			// or name it can never be written.
			working = append(working, models.ContactRow{})
			continue
		}
		working = append(working, models.ContactRow{ID: id, Name: in.Name, Role: in.Role, Email: in.Email, Phone: in.Phone})
	}

	res, err := h.svc.ReconcileContactsWithRejects(ctx, models.RecordID(input.ProspectID), working, rejected)
	if err != nil {
		return nil, SaveContactsOutput{}, fmt.Errorf("failed to save contacts: %w", err)
	}

	out := SaveContactsOutput{
		Applied: make([]ContactWriteOutput, 0, len(res.Applied)),
		Failed:  make([]ContactFailureOutput, 0, len(res.Failed)),
		Held:    make([]int64, 0, len(res.Held)),
	}
	for _, op := range res.Applied {
		out.Applied = append(out.Applied, ContactWriteOutput{Op: string(op.Kind), Row: op.Row, ID: int64(op.ID)})
	}
	for _, f := range res.Failed {
		out.Failed = append(out.Failed, ContactFailureOutput{Row: f.Row, Op: string(f.Op), ID: int64(f.ID), Error: f.Err.Error()})
	}
	for _, op := range res.Held {
		out.Held = append(out.Held, int64(op.ID))
	}

	contacts, err := h.svc.ListContacts(ctx, models.RecordID(input.ProspectID))
	if err != nil {
		return nil, SaveContactsOutput{}, err
	}
	out.Contacts = make([]ContactOutput, 0, len(contacts))
	for _, c := range contacts {
		out.Contacts = append(out.Contacts, contactToOutput(c))
	}
	return nil, out, nil
}
