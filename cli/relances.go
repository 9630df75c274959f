// ABOUTME: Relance CLI commands
// ABOUTME: Lists overdue samples and drafts follow-up emails with the assistant
package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/harperreed/prospecta/assistant"
	"github.com/harperreed/prospecta/crm"
	"github.com/harperreed/prospecta/handlers"
	"github.com/harperreed/prospecta/mailbox"
)

// DraftSaver stores a finished email somewhere the user can send it from.
type DraftSaver interface {
	CreateDraft(ctx context.Context, d mailbox.Draft) (string, error)
}

// DraftSaverFactory opens a DraftSaver on demand so credentials are only
// needed when drafts are pushed.
type DraftSaverFactory func(ctx context.Context) (DraftSaver, error)

// RelancesCommand lists samples waiting for feedback past the threshold.
func RelancesCommand(svc *crm.Service, args []string) error {
	fs := flag.NewFlagSet("relances", flag.ExitOnError)
	countOnly := fs.Bool("count", false, "Only print the number of relances")
	_ = fs.Parse(args)

	alerts, err := svc.Alerts(context.Background())
	if err != nil {
		return fmt.Errorf("failed to compute relances: %w", err)
	}
	if *countOnly {
		_, _ = fmt.Fprintln(stdout, len(alerts))
		return nil
	}
	if len(alerts) == 0 {
		_, _ = fmt.Fprintf(stdout, "✓ No sample waiting more than %d days\n", svc.RelanceThreshold())
		return nil
	}

	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SAMPLE\tCOMPANY\tPRODUCT\tSENT\tDAYS")
	_, _ = fmt.Fprintln(w, "------\t-------\t-------\t----\t----")
	for _, a := range alerts {
		company := "-"
		if a.Prospect != nil {
			company = a.Prospect.CompanyName
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", a.Sample.ID, company, a.Sample.Product, formatDate(*a.Sample.DateSent), a.DaysElapsed)
	}
	_ = w.Flush()

	_, _ = fmt.Fprintf(stdout, "\n%d sample(s) waiting more than %d days\n", len(alerts), svc.RelanceThreshold())
	return nil
}

// DraftEmailCommand drafts a relance email for a sample. The draft can be
// logged on the prospect and pushed to Gmail drafts.
func DraftEmailCommand(svc *crm.Service, gen assistant.Generator, drafts DraftSaverFactory, args []string) error {
	fs := flag.NewFlagSet("draft-email", flag.ExitOnError)
	sample := fs.String("sample", "", "Sample ID")
	record := fs.Bool("record", false, "Log the draft as a note on the prospect")
	gmailDraft := fs.Bool("gmail", false, "Save the draft in Gmail (needs 'prospecta mail init')")
	to := fs.String("to", "", "Recipient for the Gmail draft")
	subject := fs.String("subject", "", "Subject for the Gmail draft")
	_ = fs.Parse(args)

	id, err := resolveID(*sample, fs.Args(), "sample ID")
	if err != nil {
		return err
	}
	if *gmailDraft && strings.TrimSpace(*to) == "" {
		return fmt.Errorf("--to is required with --gmail")
	}

	ctx := context.Background()
	body, alert, err := handlers.DraftRelance(ctx, svc, gen, id)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(stdout, "%s\n\n", body)

	if *record {
		_, err := svc.RecordDraftedEmail(ctx, alert.Sample.ProspectID, body, svc.Now())
		if err := finishUnit(ctx, err); err != nil {
			return fmt.Errorf("failed to record drafted email: %w", err)
		}
		_, _ = fmt.Fprintf(stdout, "✓ Draft logged on prospect %s\n", alert.Sample.ProspectID)
	}

	if *gmailDraft {
		if drafts == nil {
			return fmt.Errorf("gmail drafts are not available")
		}
		saver, err := drafts(ctx)
		if err != nil {
			return err
		}
		subj := *subject
		if subj == "" {
			subj = "Suivi échantillon " + alert.Sample.Product
		}
		draftID, err := saver.CreateDraft(ctx, mailbox.Draft{To: *to, Subject: subj, Body: body})
		if err != nil {
			return fmt.Errorf("failed to save Gmail draft: %w", err)
		}
		_, _ = fmt.Fprintf(stdout, "✓ Gmail draft saved (ID: %s)\n", draftID)
	}
	return nil
}
