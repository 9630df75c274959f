// ABOUTME: Generative-text service used to draft emails and transcribe voice notes
// ABOUTME: Provider-neutral interface with Anthropic and Gemini backends
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

const (
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"

	DefaultAnthropicModel = "claude-sonnet-4-5-20250929"
	DefaultGeminiModel    = "gemini-2.5-flash"

	defaultMaxTokens = 1024
)

var ErrAudioUnsupported = errors.New("audio input not supported by provider")

// Generator turns a prompt, optionally with audio, into text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	GenerateFromAudio(ctx context.Context, prompt string, audio []byte, mimeType string) (string, error)
}

// ExternalServiceError wraps any failure of the remote text service.
type ExternalServiceError struct {
	Provider string
	Op       string
	Err      error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}

func serviceError(provider, op string, err error) error {
	return &ExternalServiceError{Provider: provider, Op: op, Err: eris.Wrap(err, provider+": "+op)}
}

// IsExternal reports whether err came from the text service.
func IsExternal(err error) bool {
	var e *ExternalServiceError
	return errors.As(err, &e)
}

type Options struct {
	Provider string
	Model    string
	APIKey   string
	// BaseURL overrides the provider endpoint, for tests and proxies.
	BaseURL string
}

// New builds the generator for opts.Provider.
func New(ctx context.Context, opts Options) (Generator, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, fmt.Errorf("no API key configured for %s", opts.Provider)
	}
	switch strings.ToLower(strings.TrimSpace(opts.Provider)) {
	case "", ProviderAnthropic:
		return NewAnthropic(opts), nil
	case ProviderGemini:
		return NewGemini(ctx, opts)
	default:
		return nil, fmt.Errorf("unknown assistant provider %q", opts.Provider)
	}
}

func joinText(parts []string) (string, error) {
	text := strings.TrimSpace(strings.Join(parts, ""))
	if text == "" {
		return "", errors.New("empty response")
	}
	return text, nil
}
