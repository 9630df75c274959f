// ABOUTME: Prospect CLI commands
// ABOUTME: Human-friendly commands for opening, browsing, staging and deleting prospects
package cli

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"

	"github.com/harperreed/prospecta/crm"
	"github.com/harperreed/prospecta/models"
)

func errRequired(what string) error {
	return fmt.Errorf("%s is required", what)
}

// AddProspectCommand opens a new prospect.
func AddProspectCommand(svc *crm.Service, args []string) error {
	fs := flag.NewFlagSet("add-prospect", flag.ExitOnError)
	name := fs.String("name", "", "Company name (required)")
	stage := fs.String("stage", "", "Initial stage (default prospection)")
	country := fs.String("country", "", "Country")
	volume := fs.String("volume", "", "Potential yearly volume")
	notes := fs.String("notes", "", "Notes")
	_ = fs.Parse(args)

	if *name == "" {
		return fmt.Errorf("--name is required")
	}

	in := crm.NewProspect{CompanyName: *name, Country: *country, PotentialVolume: *volume, Notes: *notes}
	if *stage != "" {
		s, err := models.ParseStage(*stage)
		if err != nil {
			return err
		}
		in.Stage = s
	}

	p, err := svc.CreateProspect(context.Background(), in)
	if err != nil {
		return fmt.Errorf("failed to create prospect: %w", err)
	}

	_, _ = fmt.Fprintf(stdout, "✓ Prospect created: %s (ID: %s)\n", p.CompanyName, p.ID)
	_, _ = fmt.Fprintf(stdout, "  Stage: %s\n", stageLabel(p.Stage))
	if p.Country != "" {
		_, _ = fmt.Fprintf(stdout, "  Country: %s\n", p.Country)
	}
	return nil
}

// ListProspectsCommand lists prospects, most recent action first.
func ListProspectsCommand(svc *crm.Service, args []string) error {
	fs := flag.NewFlagSet("list-prospects", flag.ExitOnError)
	stage := fs.String("stage", "", "Filter by stage")
	_ = fs.Parse(args)

	var filter models.Stage
	if *stage != "" {
		s, err := models.ParseStage(*stage)
		if err != nil {
			return err
		}
		filter = s
	}

	prospects, err := svc.ListProspects(context.Background(), filter)
	if err != nil {
		return fmt.Errorf("failed to list prospects: %w", err)
	}
	if len(prospects) == 0 {
		_, _ = fmt.Fprintln(stdout, "No prospects found")
		return nil
	}

	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tCOMPANY\tSTAGE\tCOUNTRY\tLAST ACTION")
	_, _ = fmt.Fprintln(w, "--\t-------\t-----\t-------\t-----------")
	for _, p := range prospects {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.CompanyName, stageLabel(p.Stage), dash(p.Country), formatDate(p.LastActionDate))
	}
	_ = w.Flush()

	_, _ = fmt.Fprintf(stdout, "\nTotal: %d prospect(s)\n", len(prospects))
	return nil
}

// ShowProspectCommand prints a prospect with its contacts, samples and history.
func ShowProspectCommand(svc *crm.Service, args []string) error {
	fs := flag.NewFlagSet("show-prospect", flag.ExitOnError)
	_ = fs.Parse(args)

	id, err := idArg(fs.Args(), "prospect ID")
	if err != nil {
		return err
	}
	detail, err := svc.LoadProspect(context.Background(), id)
	if err != nil {
		return fmt.Errorf("failed to load prospect: %w", err)
	}

	p := detail.Prospect
	_, _ = fmt.Fprintf(stdout, "%s (ID: %s)\n", p.CompanyName, p.ID)
	_, _ = fmt.Fprintf(stdout, "  Stage:       %s\n", stageLabel(p.Stage))
	_, _ = fmt.Fprintf(stdout, "  Country:     %s\n", dash(p.Country))
	_, _ = fmt.Fprintf(stdout, "  Volume:      %s\n", dash(p.PotentialVolume))
	_, _ = fmt.Fprintf(stdout, "  Last action: %s\n", formatDate(p.LastActionDate))
	if p.Notes != "" {
		_, _ = fmt.Fprintf(stdout, "  Notes:       %s\n", p.Notes)
	}

	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "\nContacts (%d)\n", len(detail.Contacts))
	for _, c := range detail.Contacts {
		_, _ = fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\n", c.ID, c.Name, dash(c.Role), dash(c.Email), dash(c.Phone))
	}
	_, _ = fmt.Fprintf(w, "\nSamples (%d)\n", len(detail.Samples))
	for _, s := range detail.Samples {
		sent := "-"
		if s.DateSent != nil {
			sent = formatDate(*s.DateSent)
		}
		_, _ = fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\t%s\n", s.ID, s.Product, dash(s.Reference), s.Status.Label(), sent, dash(s.Feedback))
	}
	_, _ = fmt.Fprintf(w, "\nActivity (%d)\n", len(detail.Activities))
	for _, a := range detail.Activities {
		icon := string(a.Type)
		if !plainOutput() {
			icon = a.Type.Icon()
		}
		_, _ = fmt.Fprintf(w, "  %s\t%s\t%s\n", formatDate(a.Date), icon, a.Content)
	}
	return w.Flush()
}

// UpdateProspectCommand edits a prospect's descriptive fields.
func UpdateProspectCommand(svc *crm.Service, args []string) error {
	fs := flag.NewFlagSet("update-prospect", flag.ExitOnError)
	name := fs.String("name", "", "New company name")
	country := fs.String("country", "", "New country")
	volume := fs.String("volume", "", "New potential volume")
	notes := fs.String("notes", "", "New notes")
	prospect := fs.String("prospect", "", "Prospect ID")
	_ = fs.Parse(args)

	id, err := resolveID(*prospect, fs.Args(), "prospect ID")
	if err != nil {
		return err
	}

	// Only flags given on the command line are applied.
	var upd crm.ProspectUpdate
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			upd.CompanyName = name
		case "country":
			upd.Country = country
		case "volume":
			upd.PotentialVolume = volume
		case "notes":
			upd.Notes = notes
		}
	})

	p, err := svc.UpdateProspect(context.Background(), id, upd)
	if err != nil {
		return fmt.Errorf("failed to update prospect: %w", err)
	}
	_, _ = fmt.Fprintf(stdout, "✓ Prospect updated: %s (ID: %s)\n", p.CompanyName, p.ID)
	return nil
}

// DeleteProspectCommand deletes a prospect and everything attached to it.
func DeleteProspectCommand(svc *crm.Service, args []string) error {
	fs := flag.NewFlagSet("delete-prospect", flag.ExitOnError)
	_ = fs.Parse(args)

	id, err := idArg(fs.Args(), "prospect ID")
	if err != nil {
		return err
	}
	if err := svc.DeleteProspect(context.Background(), id); err != nil {
		return fmt.Errorf("failed to delete prospect: %w", err)
	}
	_, _ = fmt.Fprintf(stdout, "✓ Prospect %s deleted\n", id)
	return nil
}

// SetStageCommand moves a prospect to any stage.
func SetStageCommand(svc *crm.Service, args []string) error {
	fs := flag.NewFlagSet("set-stage", flag.ExitOnError)
	_ = fs.Parse(args)

	if fs.NArg() < 2 {
		return fmt.Errorf("usage: set-stage <prospect-id> <stage>")
	}
	id, err := models.ParseRecordID(fs.Arg(0))
	if err != nil {
		return err
	}
	stage, err := models.ParseStage(fs.Arg(1))
	if err != nil {
		return err
	}
	if err := svc.SetStage(context.Background(), id, stage); err != nil {
		return fmt.Errorf("failed to set stage: %w", err)
	}
	_, _ = fmt.Fprintf(stdout, "✓ Prospect %s → %s\n", id, stageLabel(stage))
	return nil
}

// AdvanceCommand moves a prospect one stage forward.
func AdvanceCommand(svc *crm.Service, args []string) error {
	return moveStage(svc, "advance", svc.Advance, args)
}

// RetreatCommand moves a prospect one stage back.
func RetreatCommand(svc *crm.Service, args []string) error {
	return moveStage(svc, "retreat", svc.Retreat, args)
}

func moveStage(svc *crm.Service, name string, move func(context.Context, models.RecordID) (models.Stage, error), args []string) error {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	_ = fs.Parse(args)

	id, err := idArg(fs.Args(), "prospect ID")
	if err != nil {
		return err
	}
	ctx := context.Background()
	before, err := svc.GetProspect(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", name, err)
	}
	after, err := move(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", name, err)
	}
	if after == before.Stage {
		_, _ = fmt.Fprintf(stdout, "Prospect %s stays at %s\n", id, stageLabel(after))
		return nil
	}
	_, _ = fmt.Fprintf(stdout, "✓ Prospect %s: %s → %s\n", id, stageLabel(before.Stage), stageLabel(after))
	return nil
}
