package middleware

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pakagronglb/blogsmith/agent"
)

func TestTimeoutPassesThroughSuccess(t *testing.T) {
	wrapped := NewTimeout(&mockAgent{
		name: "writer",
		processFunc: func(ctx context.Context, msg *agent.Message) (*agent.Message, error) {
			return agent.NewMessage(agent.RoleAgent, "draft"), nil
		},
	}, time.Second)

	result, err := wrapped.Process(context.Background(), agent.NewMessage(agent.RoleUser, "topic"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Content != "draft" {
		t.Errorf("unexpected content: %q", result.Content)
	}
}

func TestTimeoutExpires(t *testing.T) {
	wrapped := NewTimeout(&mockAgent{
		name: "writer",
		processFunc: func(ctx context.Context, msg *agent.Message) (*agent.Message, error) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Second):
				return agent.NewMessage(agent.RoleAgent, "too late"), nil
			}
		},
	}, 10*time.Millisecond)

	_, err := wrapped.Process(context.Background(), agent.NewMessage(agent.RoleUser, "topic"))
	if err == nil {
		t.Fatal("expected timeout error")
	}

	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("expected TimeoutError, got %T: %v", err, err)
	}
	if timeoutErr.AgentName != "writer" {
		t.Errorf("unexpected agent name: %q", timeoutErr.AgentName)
	}
}

func TestTimeoutPreservesOtherErrors(t *testing.T) {
	stageErr := errors.New("model returned malformed response")
	wrapped := NewTimeout(&mockAgent{
		name: "writer",
		processFunc: func(ctx context.Context, msg *agent.Message) (*agent.Message, error) {
			return nil, stageErr
		},
	}, time.Second)

	_, err := wrapped.Process(context.Background(), agent.NewMessage(agent.RoleUser, "topic"))
	if !errors.Is(err, stageErr) {
		t.Fatalf("expected original stage error, got %v", err)
	}
}
