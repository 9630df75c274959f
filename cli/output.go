// ABOUTME: Shared output helpers for CLI commands
// ABOUTME: Chooses emoji or plain labels depending on whether stdout is a terminal
package cli

import (
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/harperreed/prospecta/models"
)

var (
	stdout io.Writer = os.Stdout
	stdin  io.Reader = os.Stdin
)

// plainOutput is true when stdout is piped or redirected.
func plainOutput() bool {
	f, ok := stdout.(*os.File)
	if !ok {
		return true
	}
	return !term.IsTerminal(int(f.Fd()))
}

func stageLabel(s models.Stage) string {
	if plainOutput() {
		return s.PlainLabel()
	}
	return s.Label()
}

func dash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}

// parseDateFlag accepts YYYY-MM-DD; blank means now.
func parseDateFlag(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", strings.TrimSpace(s))
}

// resolveID takes the id from its flag when set, else from the first
// positional argument.
func resolveID(flagValue string, args []string, what string) (models.RecordID, error) {
	if strings.TrimSpace(flagValue) != "" {
		return models.ParseRecordID(flagValue)
	}
	return idArg(args, what)
}

func idArg(args []string, what string) (models.RecordID, error) {
	if len(args) < 1 {
		return 0, errRequired(what)
	}
	return models.ParseRecordID(args[0])
}
