package middleware

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pakagronglb/blogsmith/agent"
)

// mockAgent is a configurable agent for middleware tests.
type mockAgent struct {
	name        string
	processFunc func(ctx context.Context, msg *agent.Message) (*agent.Message, error)
}

func (m *mockAgent) Name() string { return m.name }

func (m *mockAgent) Capabilities() []string { return []string{"mock"} }

func (m *mockAgent) Process(ctx context.Context, msg *agent.Message) (*agent.Message, error) {
	return m.processFunc(ctx, msg)
}

func fastRetryConfig(maxAttempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:       maxAttempts,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        5 * time.Millisecond,
		BackoffMultiplier: 2.0,
	}
}

func TestRetrySucceedsFirstAttempt(t *testing.T) {
	calls := 0
	wrapped := NewRetry(&mockAgent{
		name: "searcher",
		processFunc: func(ctx context.Context, msg *agent.Message) (*agent.Message, error) {
			calls++
			return agent.NewMessage(agent.RoleAgent, "results"), nil
		},
	}, fastRetryConfig(3))

	result, err := wrapped.Process(context.Background(), agent.NewMessage(agent.RoleUser, "topic"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Content != "results" {
		t.Errorf("unexpected content: %q", result.Content)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestRetryRecoversAfterFailures(t *testing.T) {
	calls := 0
	wrapped := NewRetry(&mockAgent{
		name: "searcher",
		processFunc: func(ctx context.Context, msg *agent.Message) (*agent.Message, error) {
			calls++
			if calls < 3 {
				return nil, errors.New("transient network error")
			}
			return agent.NewMessage(agent.RoleAgent, "results"), nil
		},
	}, fastRetryConfig(3))

	if _, err := wrapped.Process(context.Background(), agent.NewMessage(agent.RoleUser, "topic")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestRetryExhaustsAttempts(t *testing.T) {
	calls := 0
	wrapped := NewRetry(&mockAgent{
		name: "searcher",
		processFunc: func(ctx context.Context, msg *agent.Message) (*agent.Message, error) {
			calls++
			return nil, errors.New("persistent failure")
		},
	}, fastRetryConfig(3))

	_, err := wrapped.Process(context.Background(), agent.NewMessage(agent.RoleUser, "topic"))
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if !strings.Contains(err.Error(), "max retry attempts (3) exceeded") {
		t.Errorf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestRetryNonRetryableError(t *testing.T) {
	authErr := errors.New("invalid api key")
	calls := 0
	config := fastRetryConfig(3)
	config.ShouldRetry = func(err error) bool {
		return !errors.Is(err, authErr)
	}

	wrapped := NewRetry(&mockAgent{
		name: "searcher",
		processFunc: func(ctx context.Context, msg *agent.Message) (*agent.Message, error) {
			calls++
			return nil, authErr
		},
	}, config)

	_, err := wrapped.Process(context.Background(), agent.NewMessage(agent.RoleUser, "topic"))
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, authErr) {
		t.Errorf("expected wrapped auth error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("non-retryable error should stop after 1 call, got %d", calls)
	}
}

func TestRetryCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	wrapped := NewRetry(&mockAgent{
		name: "searcher",
		processFunc: func(ctx context.Context, msg *agent.Message) (*agent.Message, error) {
			cancel()
			return nil, errors.New("failure before cancel")
		},
	}, RetryConfig{MaxAttempts: 5, InitialBackoff: time.Hour})

	_, err := wrapped.Process(ctx, agent.NewMessage(agent.RoleUser, "topic"))
	if err == nil || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation error, got %v", err)
	}
}
