// Package completion calls an external chat-completions service with bounded
// retries and degrades to a scripted local reply when the service is not
// configured or keeps failing. Complete never returns an error.
package completion

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/steveyiyo/tutor-relay/internal/observe"
)

const (
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 3
	maxBackoff        = 10 * time.Second
)

type Client struct {
	backends []Backend
	timeout  time.Duration
	log      *zap.Logger
	metrics  *observe.Metrics
	sleep    func(ctx context.Context, d time.Duration) error
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

func WithMetrics(m *observe.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New builds a client over the configured backends. For each request the
// first backend that supports the model is used.
func New(backends []Backend, opts ...Option) *Client {
	c := &Client{
		timeout: DefaultTimeout,
		log:     zap.NewNop(),
		sleep:   sleepContext,
	}
	for _, b := range backends {
		if b != nil {
			c.backends = append(c.backends, b)
		}
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Configured reports whether any upstream credential is available.
func (c *Client) Configured() bool { return len(c.backends) > 0 }

func (c *Client) backendFor(model string) Backend {
	for _, b := range c.backends {
		if b.Supports(model) {
			return b
		}
	}
	return nil
}

// retryState lives for one Complete call.
type retryState struct {
	attempt     int
	maxAttempts int
	lastErr     error
}

func (s *retryState) last() bool { return s.attempt >= s.maxAttempts }

// Complete obtains a reply for req, making at most maxRetries upstream
// attempts. A 429 consumes an attempt and waits Retry-After seconds (or
// 2^attempt seconds); any other failure waits min(2^(attempt-1)s, 10s).
func (c *Client) Complete(ctx context.Context, req Request, maxRetries int) Result {
	b := c.backendFor(req.Model)
	if b == nil {
		c.log.Warn("no completion credential configured, using fallback response", zap.String("model", req.Model))
		c.metrics.RecordFallback(ctx, string(ReasonNoCredential))
		return fallbackResult(req, ReasonNoCredential, 0, nil)
	}
	if maxRetries < 1 {
		maxRetries = 1
	}

	st := &retryState{maxAttempts: maxRetries}
	for st.attempt = 1; st.attempt <= st.maxAttempts; st.attempt++ {
		c.log.Debug("completion attempt",
			zap.String("backend", b.Name()),
			zap.Int("attempt", st.attempt),
			zap.Int("max", st.maxAttempts))

		start := time.Now()
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		resp, err := b.Complete(callCtx, req)
		cancel()

		if err == nil {
			c.metrics.RecordAttempt(ctx, b.Name(), "ok", time.Since(start))
			return Result{Kind: Upstream, Backend: b.Name(), Attempts: st.attempt, Response: resp}
		}
		st.lastErr = err

		var wait time.Duration
		var se *StatusError
		if errors.As(err, &se) && se.Code == http.StatusTooManyRequests {
			c.metrics.RecordAttempt(ctx, b.Name(), "rate_limited", time.Since(start))
			wait = time.Duration(1<<min(st.attempt, 10)) * time.Second
			if se.HasRetryAfter {
				wait = se.RetryAfter
			}
			c.log.Warn("completion rate limited",
				zap.String("backend", b.Name()),
				zap.Int("attempt", st.attempt),
				zap.Duration("wait", wait))
		} else {
			c.metrics.RecordAttempt(ctx, b.Name(), "error", time.Since(start))
			wait = Backoff(st.attempt)
			c.log.Warn("completion attempt failed",
				zap.String("backend", b.Name()),
				zap.Int("attempt", st.attempt),
				zap.Error(err))
		}

		if st.last() {
			break
		}
		if err := c.sleep(ctx, wait); err != nil {
			c.log.Info("completion canceled while waiting", zap.Error(err))
			c.metrics.RecordFallback(ctx, string(ReasonCanceled))
			return withBackend(fallbackResult(req, ReasonCanceled, st.attempt, st.lastErr), b)
		}
	}

	c.log.Warn("all completion attempts failed, using fallback response",
		zap.String("backend", b.Name()),
		zap.Int("attempts", st.maxAttempts),
		zap.Error(st.lastErr))
	c.metrics.RecordFallback(ctx, string(ReasonRetriesExhausted))
	return withBackend(fallbackResult(req, ReasonRetriesExhausted, st.maxAttempts, st.lastErr), b)
}

func withBackend(r Result, b Backend) Result {
	r.Backend = b.Name()
	return r
}

// Backoff is the wait after a failed, non rate-limited attempt.
func Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 5 {
		return maxBackoff
	}
	return min(time.Second<<(attempt-1), maxBackoff)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
