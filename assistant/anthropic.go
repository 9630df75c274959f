// ABOUTME: Anthropic Messages API backend for the text generator
// ABOUTME: Text prompts only; audio is rejected before any request
package assistant

import (
	"context"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"
)

type Anthropic struct {
	client sdk.Client
	model  string
}

func NewAnthropic(opts Options) *Anthropic {
	reqOpts := []option.RequestOption{option.WithAPIKey(opts.APIKey)}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	model := opts.Model
	if model == "" {
		model = DefaultAnthropicModel
	}
	return &Anthropic{client: sdk.NewClient(reqOpts...), model: model}
}

func (a *Anthropic) Generate(ctx context.Context, prompt string) (string, error) {
	msg, err := a.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(a.model),
		MaxTokens: defaultMaxTokens,
		Messages:  []sdk.MessageParam{sdk.NewUserMessage(sdk.NewTextBlock(prompt))},
	})
	if err != nil {
		return "", serviceError(ProviderAnthropic, "generate", err)
	}

	var parts []string
	for _, block := range msg.Content {
		if block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}
	zap.L().Debug("anthropic response",
		zap.String("model", string(msg.Model)),
		zap.Int64("input_tokens", msg.Usage.InputTokens),
		zap.Int64("output_tokens", msg.Usage.OutputTokens),
	)

	text, err := joinText(parts)
	if err != nil {
		return "", serviceError(ProviderAnthropic, "generate", err)
	}
	return text, nil
}

func (a *Anthropic) GenerateFromAudio(_ context.Context, _ string, _ []byte, _ string) (string, error) {
	return "", serviceError(ProviderAnthropic, "generate from audio", ErrAudioUnsupported)
}
