// ABOUTME: Contact CLI commands
// ABOUTME: Exports a prospect's contact list as JSON and saves an edited list back
package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/harperreed/prospecta/crm"
	"github.com/harperreed/prospecta/models"
)

// contactRow is the JSON shape of one line of the editable list. The id is
// kept loose because hand-edited files carry numbers, strings or nothing.
type contactRow struct {
	ID    any    `json:"id,omitempty"`
	Name  string `json:"name"`
	Role  string `json:"role,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// ListContactsCommand prints a prospect's contacts, as a table or as the
// JSON list that edit-contacts accepts.
func ListContactsCommand(svc *crm.Service, args []string) error {
	fs := flag.NewFlagSet("list-contacts", flag.ExitOnError)
	asJSON := fs.Bool("json", false, "Print the editable JSON list")
	prospect := fs.String("prospect", "", "Prospect ID")
	_ = fs.Parse(args)

	id, err := resolveID(*prospect, fs.Args(), "prospect ID")
	if err != nil {
		return err
	}
	contacts, err := svc.ListContacts(context.Background(), id)
	if err != nil {
		return fmt.Errorf("failed to list contacts: %w", err)
	}

	if *asJSON {
		rows := make([]contactRow, 0, len(contacts))
		for _, c := range contacts {
			rows = append(rows, contactRow{ID: int64(c.ID), Name: c.Name, Role: c.Role, Email: c.Email, Phone: c.Phone})
		}
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tROLE\tEMAIL\tPHONE")
	_, _ = fmt.Fprintln(w, "--\t----\t----\t-----\t-----")
	for _, c := range contacts {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", c.ID, c.Name, dash(c.Role), dash(c.Email), dash(c.Phone))
	}
	return w.Flush()
}

// EditContactsCommand saves an edited contact list. Saved contacts missing
// from the list are deleted, rows without an id are created.
func EditContactsCommand(svc *crm.Service, args []string) error {
	fs := flag.NewFlagSet("edit-contacts", flag.ExitOnError)
	file := fs.String("file", "-", "JSON list to save (- for stdin)")
	prospect := fs.String("prospect", "", "Prospect ID")
	_ = fs.Parse(args)

	id, err := resolveID(*prospect, fs.Args(), "prospect ID")
	if err != nil {
		return err
	}

	var r io.Reader = stdin
	if *file != "-" {
		f, err := os.Open(*file)
		if err != nil {
			return fmt.Errorf("failed to open contact list: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	working, rejected, err := readContactRows(r)
	if err != nil {
		return err
	}

	res, err := svc.ReconcileContactsWithRejects(context.Background(), id, working, rejected)
	if err != nil {
		return fmt.Errorf("failed to save contacts: %w", err)
	}

	for _, op := range res.Applied {
		if op.Row < 0 {
			_, _ = fmt.Fprintf(stdout, "✓ %s contact %s\n", op.Kind, op.ID)
			continue
		}
		_, _ = fmt.Fprintf(stdout, "✓ %s contact %s (row %d)\n", op.Kind, op.ID, op.Row+1)
	}
	for _, f := range res.Failed {
		_, _ = fmt.Fprintf(stdout, "✗ row %d (%s): %v\n", f.Row+1, f.Op, f.Err)
	}
	for _, op := range res.Held {
		_, _ = fmt.Fprintf(stdout, "! kept contact %s (%s): not deleted while a row has an unreadable id\n", op.ID, op.Contact.Name)
	}
	if len(res.Applied) == 0 && len(res.Failed) == 0 {
		_, _ = fmt.Fprintln(stdout, "No changes")
	}

	if n := len(res.Failed); n > 0 {
		return fmt.Errorf("%d row(s) not saved", n)
	}
	return nil
}

// readContactRows decodes the JSON list. Rows with an unusable id are
// reported and replaced by blank rows so row numbers stay aligned.
func readContactRows(r io.Reader) ([]models.ContactRow, []crm.RowFailure, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var rows []contactRow
	if err := dec.Decode(&rows); err != nil {
		return nil, nil, fmt.Errorf("invalid contact list: %w", err)
	}

	working := make([]models.ContactRow, 0, len(rows))
	var rejected []crm.RowFailure
	for i, row := range rows {
		id, err := models.ParseOptionalID(row.ID)
		if err != nil {
			rejected = append(rejected, crm.RowFailure{Row: i, Op: crm.OpUpdate, Err: err})
			working = append(working, models.ContactRow{})
			continue
		}
		working = append(working, models.ContactRow{ID: id, Name: row.Name, Role: row.Role, Email: row.Email, Phone: row.Phone})
	}
	return working, rejected, nil
}
