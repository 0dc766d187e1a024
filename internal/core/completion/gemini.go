package completion

import (
	"context"
	"errors"
	"strings"
	"time"

	"google.golang.org/genai"
)

const geminiPrefix = "google/"

// Gemini serves "google/*" model ids directly through the Gemini API.
type Gemini struct {
	c *genai.Client
}

func NewGemini(ctx context.Context, apiKey string, timeout time.Duration) (*Gemini, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	cl, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: newHTTPClient(timeout),
	})
	if err != nil {
		return nil, err
	}
	return &Gemini{c: cl}, nil
}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) Supports(model string) bool {
	return strings.HasPrefix(model, geminiPrefix)
}

func (g *Gemini) Complete(ctx context.Context, req Request) (Response, error) {
	temp := float32(req.Temperature)
	cfg := &genai.GenerateContentConfig{
		Temperature:     &temp,
		MaxOutputTokens: int32(req.MaxTokens),
	}
	if sys := req.SystemPrompt(); sys != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: sys}}}
	}
	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: req.UserContent()}},
	}}

	resp, err := g.c.Models.GenerateContent(ctx, strings.TrimPrefix(req.Model, geminiPrefix), contents, cfg)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return Response{}, &StatusError{Code: apiErr.Code, Err: err}
		}
		return Response{}, err
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return Response{}, ErrEmptyReply
	}
	return replyResponse(text), nil
}
