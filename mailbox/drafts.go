// ABOUTME: Pushes drafted relance emails into the user's Gmail drafts folder
// ABOUTME: Builds RFC 2822 messages and creates drafts through the Gmail API
package mailbox

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// Draft is an email ready to be saved as a Gmail draft.
type Draft struct {
	To      string
	Subject string
	Body    string
}

func (d Draft) validate() error {
	if strings.TrimSpace(d.To) == "" {
		return fmt.Errorf("recipient is required")
	}
	if strings.ContainsAny(d.To+d.Subject, "\r\n") {
		return fmt.Errorf("headers must not contain line breaks")
	}
	if strings.TrimSpace(d.Body) == "" {
		return fmt.Errorf("body is required")
	}
	return nil
}

// BuildRaw renders d as a base64url encoded RFC 2822 message, the form
// Gmail expects in Message.Raw.
func BuildRaw(d Draft, now time.Time) (string, error) {
	if err := d.validate(); err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("To: " + d.To + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", d.Subject) + "\r\n")
	b.WriteString("Date: " + now.Format(time.RFC1123Z) + "\r\n")
	b.WriteString("Message-ID: <" + uuid.New().String() + "@prospecta>\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("Content-Transfer-Encoding: 8bit\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(strings.ReplaceAll(d.Body, "\r\n", "\n"), "\n", "\r\n"))

	return base64.URLEncoding.EncodeToString([]byte(b.String())), nil
}

// Client creates drafts in one Gmail account.
type Client struct {
	svc *gmail.Service
	now func() time.Time
}

// NewClient authenticates with a saved token. Refreshed tokens are not
// written back; the refresh token alone is enough for later runs.
func NewClient(ctx context.Context, config *oauth2.Config, token *oauth2.Token) (*Client, error) {
	if token == nil {
		return nil, fmt.Errorf("token cannot be nil")
	}
	return NewClientWithOptions(ctx, option.WithHTTPClient(config.Client(ctx, token)))
}

// NewClientWithOptions builds a client from raw API options.
func NewClientWithOptions(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}
	return &Client{svc: svc, now: time.Now}, nil
}

// CreateDraft saves d in the drafts folder and returns the draft id.
func (c *Client) CreateDraft(ctx context.Context, d Draft) (string, error) {
	raw, err := BuildRaw(d, c.now())
	if err != nil {
		return "", err
	}

	draft, err := c.svc.Users.Drafts.Create("me", &gmail.Draft{
		Message: &gmail.Message{Raw: raw},
	}).Context(ctx).Do()
	if err != nil {
		return "", eris.Wrap(err, "gmail: create draft")
	}

	zap.L().Debug("gmail draft created", zap.String("draft_id", draft.Id), zap.String("to", d.To))
	return draft.Id, nil
}
