// Package llm defines the minimal contract between pipeline stages and the
// model providers that back them.
//
// The interface is intentionally small: stages only need Complete and
// Stream. Retry, backoff and rate limiting are not the adapters' concern;
// provider errors are wrapped and surfaced to the caller unchanged in
// meaning. Advanced provider features remain reachable through Unwrap.
package llm

import (
	"context"

	"github.com/pakagronglb/blogsmith/agent"
)

// LLM is the minimal interface for stage-model interaction.
//
// Example:
//
//	client := NewOpenAI("sk-...", "gpt-4o-mini")
//	messages := []*agent.Message{
//	    agent.NewMessage(agent.RoleSystem, "You are a reviewer."),
//	    agent.NewMessage(agent.RoleUser, draft),
//	}
//	response, err := client.Complete(ctx, messages, WithTemperature(0.7))
type LLM interface {
	// Complete sends the conversation to the provider and returns a single
	// response message with role "agent". Provider failures (auth, network,
	// quota, malformed response) are returned wrapped; they are never
	// retried here.
	Complete(ctx context.Context, messages []*agent.Message, opts ...CallOption) (*agent.Message, error)

	// Stream sends the conversation and returns a channel of response
	// chunks. The channel is closed when the stream completes; a chunk with
	// an "error" metadata key signals a mid-stream failure.
	Stream(ctx context.Context, messages []*agent.Message, opts ...CallOption) (<-chan *agent.Message, error)

	// Model returns the model identifier this instance is bound to.
	Model() string

	// Unwrap returns the native provider client for advanced use. Code that
	// relies on Unwrap loses provider portability.
	Unwrap() interface{}
}

// CallOptions holds per-call tuning shared across providers.
type CallOptions struct {
	Temperature *float64
	MaxTokens   *int
	TopP        *float64

	// Extra carries provider-specific options (e.g. "top_k" for Gemini,
	// "presence_penalty" for OpenAI).
	Extra map[string]interface{}
}

// CallOption is a functional option for configuring a model call.
type CallOption func(*CallOptions)

// WithTemperature sets the sampling temperature.
func WithTemperature(temperature float64) CallOption {
	return func(opts *CallOptions) {
		opts.Temperature = &temperature
	}
}

// WithMaxTokens sets the maximum number of tokens to generate.
func WithMaxTokens(maxTokens int) CallOption {
	return func(opts *CallOptions) {
		opts.MaxTokens = &maxTokens
	}
}

// WithTopP sets the nucleus sampling parameter.
func WithTopP(topP float64) CallOption {
	return func(opts *CallOptions) {
		opts.TopP = &topP
	}
}

// WithExtra adds a provider-specific option.
func WithExtra(key string, value interface{}) CallOption {
	return func(opts *CallOptions) {
		if opts.Extra == nil {
			opts.Extra = make(map[string]interface{})
		}
		opts.Extra[key] = value
	}
}

// BuildCallOptions folds functional options into a CallOptions value.
func BuildCallOptions(opts ...CallOption) *CallOptions {
	options := &CallOptions{
		Extra: make(map[string]interface{}),
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}
