package completion

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const anthropicPrefix = "anthropic/"

// Anthropic serves "anthropic/*" model ids through the Messages API.
type Anthropic struct {
	client anthropic.Client
}

// NewAnthropic returns nil when no API key is configured.
func NewAnthropic(apiKey string, timeout time.Duration) *Anthropic {
	if apiKey == "" {
		return nil
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Anthropic{client: anthropic.NewClient(
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
		option.WithHTTPClient(newHTTPClient(timeout)),
	)}
}

func (p *Anthropic) Name() string { return "anthropic" }

func (p *Anthropic) Supports(model string) bool {
	return strings.HasPrefix(model, anthropicPrefix)
}

func (p *Anthropic) Complete(ctx context.Context, req Request) (Response, error) {
	maxTokens := int64(req.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 600
	}
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(strings.TrimPrefix(req.Model, anthropicPrefix)),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.UserContent())),
		},
	}
	if sys := req.SystemPrompt(); sys != "" {
		params.System = []anthropic.TextBlockParam{{Text: sys}}
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			se := &StatusError{Code: apiErr.StatusCode, Err: err}
			if apiErr.Response != nil {
				se.RetryAfter, se.HasRetryAfter = parseRetryAfter(apiErr.Response.Header.Get("Retry-After"))
			}
			return Response{}, se
		}
		return Response{}, err
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if t, ok := block.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(t.Text)
		}
	}
	if b.Len() == 0 {
		return Response{}, ErrEmptyReply
	}
	return replyResponse(b.String()), nil
}
