package completion

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is an OpenAI-shaped chat completion request. Build one per turn
// and do not mutate it afterwards.
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	Stream      bool      `json:"stream"`
}

func (r Request) content(role string) string {
	for _, m := range r.Messages {
		if m.Role == role {
			return m.Content
		}
	}
	return ""
}

func (r Request) SystemPrompt() string { return r.content(RoleSystem) }
func (r Request) UserContent() string  { return r.content(RoleUser) }

type Choice struct {
	Message Message `json:"message"`
}

type Response struct {
	Choices []Choice `json:"choices"`
}

func replyResponse(text string) Response {
	return Response{Choices: []Choice{{Message: Message{Role: "assistant", Content: text}}}}
}

// Backend performs exactly one upstream call. HTTP-level failures are
// reported as *StatusError so the client can tell rate limits apart.
type Backend interface {
	Name() string
	Supports(model string) bool
	Complete(ctx context.Context, req Request) (Response, error)
}

var ErrEmptyReply = errors.New("completion: upstream returned no reply")

type StatusError struct {
	Code          int
	RetryAfter    time.Duration
	HasRetryAfter bool
	Err           error
}

func (e *StatusError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("API error: %d: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("API error: %d", e.Code)
}

func (e *StatusError) Unwrap() error { return e.Err }

// parseRetryAfter reads a Retry-After header given in seconds. Zero and
// malformed values are treated as absent.
func parseRetryAfter(v string) (time.Duration, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n <= 0 {
		return 0, false
	}
	return time.Duration(n) * time.Second, true
}

type Kind int

const (
	Upstream Kind = iota
	Fallback
)

func (k Kind) String() string {
	if k == Fallback {
		return "fallback"
	}
	return "upstream"
}

type FallbackReason string

const (
	ReasonNoCredential     FallbackReason = "no_credential"
	ReasonRetriesExhausted FallbackReason = "retries_exhausted"
	ReasonCanceled         FallbackReason = "canceled"
)

// Result is either an upstream reply or a scripted fallback. Both carry a
// chat-completions shaped Response, so callers read the reply the same way.
type Result struct {
	Kind     Kind
	Reason   FallbackReason
	Backend  string
	Attempts int
	Err      error
	Response Response
}

func (r Result) Degraded() bool { return r.Kind == Fallback }

// Reply returns the first choice's content.
func (r Result) Reply() (string, bool) {
	if len(r.Response.Choices) == 0 {
		return "", false
	}
	c := r.Response.Choices[0].Message.Content
	return c, c != ""
}
