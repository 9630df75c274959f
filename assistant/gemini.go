// ABOUTME: Gemini backend for the text generator via the Generative Language API
// ABOUTME: Supports inline audio for voice-note transcription
package assistant

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/generativelanguage/v1beta"
	"google.golang.org/api/option"
)

type Gemini struct {
	svc   *generativelanguage.Service
	model string
}

func NewGemini(ctx context.Context, opts Options) (*Gemini, error) {
	clientOpts := []option.ClientOption{option.WithAPIKey(opts.APIKey)}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(opts.BaseURL))
	}
	svc, err := generativelanguage.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, serviceError(ProviderGemini, "connect", err)
	}
	model := opts.Model
	if model == "" {
		model = DefaultGeminiModel
	}
	return &Gemini{svc: svc, model: model}, nil
}

func (g *Gemini) modelName() string {
	if strings.HasPrefix(g.model, "models/") {
		return g.model
	}
	return "models/" + g.model
}

func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	return g.generate(ctx, "generate", []*generativelanguage.Part{{Text: prompt}})
}

func (g *Gemini) GenerateFromAudio(ctx context.Context, prompt string, audio []byte, mimeType string) (string, error) {
	if len(audio) == 0 {
		return "", serviceError(ProviderGemini, "generate from audio", errors.New("empty audio"))
	}
	if mimeType == "" {
		mimeType = "audio/wav"
	}
	return g.generate(ctx, "generate from audio", []*generativelanguage.Part{
		{Text: prompt},
		{InlineData: &generativelanguage.Blob{MimeType: mimeType, Data: base64.StdEncoding.EncodeToString(audio)}},
	})
}

func (g *Gemini) generate(ctx context.Context, op string, parts []*generativelanguage.Part) (string, error) {
	resp, err := g.svc.Models.GenerateContent(g.modelName(), &generativelanguage.GenerateContentRequest{
		Contents: []*generativelanguage.Content{{Role: "user", Parts: parts}},
	}).Context(ctx).Do()
	if err != nil {
		return "", serviceError(ProviderGemini, op, err)
	}

	var texts []string
	if cand := firstCandidate(resp); cand != nil {
		for _, p := range cand.Content.Parts {
			texts = append(texts, p.Text)
		}
	}
	if resp.UsageMetadata != nil {
		zap.L().Debug("gemini response",
			zap.String("model", g.model),
			zap.Int64("prompt_tokens", resp.UsageMetadata.PromptTokenCount),
			zap.Int64("output_tokens", resp.UsageMetadata.CandidatesTokenCount),
		)
	}

	text, err := joinText(texts)
	if err != nil {
		return "", serviceError(ProviderGemini, op, err)
	}
	return text, nil
}

func firstCandidate(resp *generativelanguage.GenerateContentResponse) *generativelanguage.Candidate {
	for _, cand := range resp.Candidates {
		if cand != nil && cand.Content != nil {
			return cand
		}
	}
	return nil
}
