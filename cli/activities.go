// ABOUTME: Activity CLI commands
// ABOUTME: Logs notes, meetings and voice notes, and prints a prospect's history
package cli

import (
	"context"
	"flag"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/harperreed/prospecta/assistant"
	"github.com/harperreed/prospecta/crm"
	"github.com/harperreed/prospecta/models"
)

const transcribePrompt = "Transcris fidèlement cette note vocale d'un commercial. " +
	"Réponds uniquement avec le texte transcrit, sans commentaire."

// LogCommand logs an activity and moves the prospect's last action date.
func LogCommand(svc *crm.Service, args []string) error {
	fs := flag.NewFlagSet("log", flag.ExitOnError)
	typ := fs.String("type", string(models.ActivityNote), "Activity type: Note, Sample or Meeting")
	text := fs.String("text", "", "What happened (required)")
	date := fs.String("date", "", "Date YYYY-MM-DD (default now)")
	prospect := fs.String("prospect", "", "Prospect ID")
	_ = fs.Parse(args)

	id, err := resolveID(*prospect, fs.Args(), "prospect ID")
	if err != nil {
		return err
	}
	if strings.TrimSpace(*text) == "" {
		return fmt.Errorf("--text is required")
	}
	at, err := parseDateFlag(*date)
	if err != nil {
		return fmt.Errorf("invalid --date: %w", err)
	}

	ctx := context.Background()
	activity, err := svc.LogActivity(ctx, id, models.ActivityType(*typ), *text, at)
	if err := finishUnit(ctx, err); err != nil {
		return fmt.Errorf("failed to log activity: %w", err)
	}
	_, _ = fmt.Fprintf(stdout, "✓ %s logged on prospect %s (%s)\n", activity.Type, id, formatDate(activity.Date))
	return nil
}

// HistoryCommand prints a prospect's activity log, newest first.
func HistoryCommand(svc *crm.Service, args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	_ = fs.Parse(args)

	id, err := idArg(fs.Args(), "prospect ID")
	if err != nil {
		return err
	}
	activities, err := svc.ListActivities(context.Background(), id)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	if len(activities) == 0 {
		_, _ = fmt.Fprintln(stdout, "No activity yet")
		return nil
	}

	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "DATE\tTYPE\tCONTENT")
	_, _ = fmt.Fprintln(w, "----\t----\t-------")
	for _, a := range activities {
		content := strings.ReplaceAll(a.Content, "\n", " ")
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", formatDate(a.Date), a.Type, content)
	}
	return w.Flush()
}

// LogVoiceCommand transcribes an audio file and logs it as a note.
func LogVoiceCommand(svc *crm.Service, gen assistant.Generator, args []string) error {
	fs := flag.NewFlagSet("log-voice", flag.ExitOnError)
	file := fs.String("file", "", "Audio file (required)")
	prospect := fs.String("prospect", "", "Prospect ID")
	_ = fs.Parse(args)

	id, err := resolveID(*prospect, fs.Args(), "prospect ID")
	if err != nil {
		return err
	}
	if *file == "" {
		return fmt.Errorf("--file is required")
	}
	if gen == nil {
		return fmt.Errorf("no assistant configured: set GEMINI_API_KEY and assistant_provider gemini")
	}

	audio, err := os.ReadFile(*file)
	if err != nil {
		return fmt.Errorf("failed to read audio: %w", err)
	}

	ctx := context.Background()
	transcript, err := gen.GenerateFromAudio(ctx, transcribePrompt, audio, audioMimeType(*file))
	if err != nil {
		return fmt.Errorf("failed to transcribe: %w", err)
	}
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return fmt.Errorf("failed to transcribe: empty transcript")
	}

	_, err = svc.LogActivity(ctx, id, models.ActivityNote, "Note vocale :\n"+transcript, svc.Now())
	if err := finishUnit(ctx, err); err != nil {
		return fmt.Errorf("failed to log voice note: %w", err)
	}
	_, _ = fmt.Fprintf(stdout, "✓ Voice note logged on prospect %s\n\n%s\n", id, transcript)
	return nil
}

func audioMimeType(path string) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); strings.HasPrefix(t, "audio/") {
		return t
	}
	return "audio/wav"
}
