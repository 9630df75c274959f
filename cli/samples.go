// ABOUTME: Sample CLI commands
// ABOUTME: Records shipments and customer feedback on samples
package cli

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"

	"github.com/harperreed/prospecta/crm"
	"github.com/harperreed/prospecta/models"
)

// SendSampleCommand records a sample shipment for a prospect.
func SendSampleCommand(svc *crm.Service, args []string) error {
	fs := flag.NewFlagSet("send-sample", flag.ExitOnError)
	product := fs.String("product", "", "Product name (required)")
	reference := fs.String("ref", "", "Batch or product reference")
	date := fs.String("date", "", "Shipping date YYYY-MM-DD (default today)")
	prospect := fs.String("prospect", "", "Prospect ID")
	_ = fs.Parse(args)

	id, err := resolveID(*prospect, fs.Args(), "prospect ID")
	if err != nil {
		return err
	}
	at, err := parseDateFlag(*date)
	if err != nil {
		return fmt.Errorf("invalid --date: %w", err)
	}

	ctx := context.Background()
	sample, err := svc.SendSample(ctx, id, *product, *reference, at)
	if err := finishUnit(ctx, err); err != nil {
		return fmt.Errorf("failed to send sample: %w", err)
	}
	_, _ = fmt.Fprintf(stdout, "✓ Sample sent: %s (ID: %s)\n", sample.Product, sample.ID)
	return nil
}

// FeedbackCommand records customer feedback on a sample.
func FeedbackCommand(svc *crm.Service, args []string) error {
	fs := flag.NewFlagSet("feedback", flag.ExitOnError)
	text := fs.String("text", "", "Customer feedback (empty clears it)")
	status := fs.String("status", "", "New status: pending, sent, in_test, validated, rejected")
	sample := fs.String("sample", "", "Sample ID")
	_ = fs.Parse(args)

	id, err := resolveID(*sample, fs.Args(), "sample ID")
	if err != nil {
		return err
	}

	var st *models.SampleStatus
	if *status != "" {
		s := models.ParseSampleStatus(*status)
		st = &s
	}
	if err := svc.RecordFeedback(context.Background(), id, *text, st); err != nil {
		return fmt.Errorf("failed to record feedback: %w", err)
	}
	if *text == "" {
		_, _ = fmt.Fprintf(stdout, "✓ Feedback cleared on sample %s\n", id)
		return nil
	}
	_, _ = fmt.Fprintf(stdout, "✓ Feedback recorded on sample %s\n", id)
	return nil
}

// ListSamplesCommand lists samples, for one prospect when an ID is given.
func ListSamplesCommand(svc *crm.Service, args []string) error {
	fs := flag.NewFlagSet("list-samples", flag.ExitOnError)
	_ = fs.Parse(args)

	var prospectID models.RecordID
	if fs.NArg() > 0 {
		id, err := models.ParseRecordID(fs.Arg(0))
		if err != nil {
			return err
		}
		prospectID = id
	}

	samples, err := svc.ListSamples(context.Background(), prospectID)
	if err != nil {
		return fmt.Errorf("failed to list samples: %w", err)
	}

	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tPROSPECT\tPRODUCT\tREF\tSTATUS\tSENT\tFEEDBACK")
	_, _ = fmt.Fprintln(w, "--\t--------\t-------\t---\t------\t----\t--------")
	for _, s := range samples {
		sent := "-"
		if s.DateSent != nil {
			sent = formatDate(*s.DateSent)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", s.ID, s.ProspectID, s.Product, dash(s.Reference), s.Status.Label(), sent, dash(s.Feedback))
	}
	return w.Flush()
}

// finishUnit retries the unfinished steps of a partially applied write
// once, telling the user what happened.
func finishUnit(ctx context.Context, err error) error {
	pf, ok := crm.AsPartialFailure(err)
	if !ok {
		return err
	}
	_, _ = fmt.Fprintf(stdout, "! %s stopped at %s, retrying\n", pf.Op, pf.Failed)
	return pf.Resume(ctx)
}
