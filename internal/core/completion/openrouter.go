package completion

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	DefaultOpenRouterURL = "https://openrouter.ai/api/v1/"
	appTitle             = "VoiceGPT Advanced"
)

// OpenRouter talks to any OpenAI-compatible chat completions endpoint. It
// accepts every model id, so it is the last backend consulted.
type OpenRouter struct {
	client openai.Client
}

type OpenRouterConfig struct {
	APIKey  string
	BaseURL string
	Referer string
	Timeout time.Duration
}

// NewOpenRouter returns nil when no API key is configured.
func NewOpenRouter(cfg OpenRouterConfig) *OpenRouter {
	if cfg.APIKey == "" {
		return nil
	}
	base := cfg.BaseURL
	if base == "" {
		base = DefaultOpenRouterURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(base),
		option.WithMaxRetries(0),
		option.WithHTTPClient(newHTTPClient(timeout)),
		option.WithHeader("X-Title", appTitle),
	}
	if cfg.Referer != "" {
		opts = append(opts, option.WithHeader("HTTP-Referer", cfg.Referer))
	}
	return &OpenRouter{client: openai.NewClient(opts...)}
}

func (p *OpenRouter) Name() string              { return "openrouter" }
func (p *OpenRouter) Supports(model string) bool { return true }

func (p *OpenRouter) Complete(ctx context.Context, req Request) (Response, error) {
	params := openai.ChatCompletionNewParams{
		Model:    req.Model,
		Messages: convertMessages(req.Messages),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return Response{}, classifyOpenAIError(err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return Response{}, ErrEmptyReply
	}

	out := Response{Choices: make([]Choice, 0, len(resp.Choices))}
	for _, c := range resp.Choices {
		out.Choices = append(out.Choices, Choice{Message: Message{Role: "assistant", Content: c.Message.Content}})
	}
	return out, nil
}

func convertMessages(msgs []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case RoleUser:
			out = append(out, openai.UserMessage(m.Content))
		default:
			out = append(out, openai.AssistantMessage(m.Content))
		}
	}
	return out
}

func classifyOpenAIError(err error) error {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	se := &StatusError{Code: apiErr.StatusCode, Err: err}
	if apiErr.Response != nil {
		se.RetryAfter, se.HasRetryAfter = parseRetryAfter(apiErr.Response.Header.Get("Retry-After"))
	}
	return se
}
