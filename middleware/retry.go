// Package middleware provides reusable decorators for pipeline agents.
//
// Only the searcher stage of the blog-post workflow is wrapped with retry;
// model-backed stages surface provider errors to the caller unretried.
package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/pakagronglb/blogsmith/agent"
)

// RetryConfig configures retry behavior.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts, including the first.
	// Default: 3.
	MaxAttempts int

	// InitialBackoff is the delay before the second attempt. Default: 100ms.
	InitialBackoff time.Duration

	// MaxBackoff caps the backoff duration. Default: 10s.
	MaxBackoff time.Duration

	// BackoffMultiplier scales the backoff after each attempt. Default: 2.0.
	BackoffMultiplier float64

	// ShouldRetry decides whether an error is retryable. Nil retries all
	// errors.
	ShouldRetry func(error) bool
}

// DefaultRetryConfig returns a retry config with the defaults above.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		InitialBackoff:    100 * time.Millisecond,
		MaxBackoff:        10 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// Retry wraps an agent with bounded, exponentially backed-off retries.
type Retry struct {
	agent  agent.Agent
	config RetryConfig
}

var _ agent.Agent = (*Retry)(nil)

// NewRetry creates a retry decorator around the given agent.
func NewRetry(wrapped agent.Agent, config RetryConfig) *Retry {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if config.InitialBackoff <= 0 {
		config.InitialBackoff = 100 * time.Millisecond
	}
	if config.MaxBackoff <= 0 {
		config.MaxBackoff = 10 * time.Second
	}
	if config.BackoffMultiplier <= 0 {
		config.BackoffMultiplier = 2.0
	}
	return &Retry{
		agent:  wrapped,
		config: config,
	}
}

// Name returns the name of the underlying agent.
func (r *Retry) Name() string {
	return r.agent.Name()
}

// Capabilities returns the capabilities of the underlying agent.
func (r *Retry) Capabilities() []string {
	return r.agent.Capabilities()
}

// Process runs the underlying agent, retrying retryable failures up to
// MaxAttempts times.
func (r *Retry) Process(ctx context.Context, message *agent.Message) (*agent.Message, error) {
	var lastErr error
	backoff := r.config.InitialBackoff

	for attempt := 1; attempt <= r.config.MaxAttempts; attempt++ {
		response, err := r.agent.Process(ctx, message)
		if err == nil {
			return response, nil
		}
		lastErr = err

		if r.config.ShouldRetry != nil && !r.config.ShouldRetry(err) {
			return nil, fmt.Errorf("non-retryable error on attempt %d/%d: %w", attempt, r.config.MaxAttempts, err)
		}
		if attempt == r.config.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("retry cancelled after %d attempts: %w", attempt, ctx.Err())
		case <-time.After(backoff):
			backoff = time.Duration(float64(backoff) * r.config.BackoffMultiplier)
			if backoff > r.config.MaxBackoff {
				backoff = r.config.MaxBackoff
			}
		}
	}

	return nil, fmt.Errorf("max retry attempts (%d) exceeded: %w", r.config.MaxAttempts, lastErr)
}
