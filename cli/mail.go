// ABOUTME: Gmail authorization CLI command
// ABOUTME: Runs the OAuth flow once and opens the drafts client for later commands
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os/exec"
	"runtime"

	"golang.org/x/oauth2"

	"github.com/harperreed/prospecta/mailbox"
)

// MailInitCommand authorizes prospecta to create Gmail drafts.
func MailInitCommand(args []string) error {
	fs := flag.NewFlagSet("mail init", flag.ExitOnError)
	_ = fs.Parse(args)

	ctx := context.Background()
	config, err := mailbox.NewOAuthConfig()
	if err != nil {
		return fmt.Errorf("failed to get OAuth config: %w", err)
	}

	// Start local server for OAuth callback
	callbackChan := make(chan *oauth2.Token, 1)
	errChan := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/callback", func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			errChan <- fmt.Errorf("no authorization code received")
			return
		}

		token, err := config.Exchange(ctx, code)
		if err != nil {
			errChan <- fmt.Errorf("failed to exchange code: %w", err)
			return
		}

		callbackChan <- token
		_, _ = fmt.Fprintf(w, "Authorization successful! You can close this window.")
	})

	server := &http.Server{Addr: ":8080", Handler: mux}
	go func() {
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	authURL := config.AuthCodeURL("state", oauth2.AccessTypeOffline)

	fmt.Println("Opening browser for Google OAuth...")
	fmt.Printf("\nIf browser doesn't open, visit this URL:\n%s\n\n", authURL)
	_ = openBrowser(authURL)

	select {
	case token := <-callbackChan:
		_ = server.Shutdown(ctx)

		if err := mailbox.SaveToken(mailbox.TokenPath(), token); err != nil {
			return fmt.Errorf("failed to save token: %w", err)
		}

		fmt.Printf("\n✓ Authenticated successfully\n")
		fmt.Printf("✓ Tokens saved to %s\n\n", mailbox.TokenPath())
		fmt.Println("Run 'prospecta crm draft-email --gmail --to <email> <sample-id>' to push drafts.")
		return nil

	case err := <-errChan:
		_ = server.Shutdown(ctx)
		return fmt.Errorf("OAuth flow failed: %w", err)
	}
}

// GmailDrafts opens the Gmail drafts client with the saved token.
func GmailDrafts(ctx context.Context) (DraftSaver, error) {
	config, err := mailbox.NewOAuthConfig()
	if err != nil {
		return nil, err
	}
	token, err := mailbox.LoadToken(mailbox.TokenPath())
	if err != nil {
		return nil, fmt.Errorf("no Gmail authorization found. Run 'prospecta mail init' first: %w", err)
	}
	client, err := mailbox.NewClient(ctx, config, token)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func openBrowser(url string) error {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
		args = []string{url}
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start", url}
	default:
		cmd = "xdg-open"
		args = []string{url}
	}

	return exec.Command(cmd, args...).Start()
}
