package llm

import (
	"context"
	"testing"

	"github.com/pakagronglb/blogsmith/agent"
)

func TestBuildCallOptions(t *testing.T) {
	tests := []struct {
		name     string
		opts     []CallOption
		validate func(*testing.T, *CallOptions)
	}{
		{
			name: "WithTemperature",
			opts: []CallOption{WithTemperature(0.7)},
			validate: func(t *testing.T, opts *CallOptions) {
				if opts.Temperature == nil || *opts.Temperature != 0.7 {
					t.Errorf("temperature not set, got %v", opts.Temperature)
				}
			},
		},
		{
			name: "WithMaxTokens",
			opts: []CallOption{WithMaxTokens(2048)},
			validate: func(t *testing.T, opts *CallOptions) {
				if opts.MaxTokens == nil || *opts.MaxTokens != 2048 {
					t.Errorf("max tokens not set, got %v", opts.MaxTokens)
				}
			},
		},
		{
			name: "WithTopP",
			opts: []CallOption{WithTopP(0.9)},
			validate: func(t *testing.T, opts *CallOptions) {
				if opts.TopP == nil || *opts.TopP != 0.9 {
					t.Errorf("top_p not set, got %v", opts.TopP)
				}
			},
		},
		{
			name: "WithExtra",
			opts: []CallOption{WithExtra("top_k", 40)},
			validate: func(t *testing.T, opts *CallOptions) {
				if got, ok := opts.Extra["top_k"]; !ok || got != 40 {
					t.Errorf("extra top_k not set, got %v", got)
				}
			},
		},
		{
			name: "combined options",
			opts: []CallOption{
				WithTemperature(0.5),
				WithMaxTokens(1024),
				WithExtra("stop", []string{"END"}),
			},
			validate: func(t *testing.T, opts *CallOptions) {
				if opts.Temperature == nil || *opts.Temperature != 0.5 {
					t.Error("temperature not set")
				}
				if opts.MaxTokens == nil || *opts.MaxTokens != 1024 {
					t.Error("max tokens not set")
				}
				if opts.Extra["stop"] == nil {
					t.Error("extra stop not set")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.validate(t, BuildCallOptions(tt.opts...))
		})
	}
}

func TestConvertToOpenAIRoleMapping(t *testing.T) {
	messages := []*agent.Message{
		agent.NewMessage(agent.RoleSystem, "instructions"),
		agent.NewMessage(agent.RoleUser, "topic"),
		agent.NewMessage(agent.RoleAgent, "draft"),
	}

	converted := convertToOpenAI(messages)
	if len(converted) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(converted))
	}
	if converted[0].Role != "system" {
		t.Errorf("expected system role, got %q", converted[0].Role)
	}
	if converted[1].Role != "user" {
		t.Errorf("expected user role, got %q", converted[1].Role)
	}
	// The internal "agent" role must map to the provider's "assistant".
	if converted[2].Role != "assistant" {
		t.Errorf("expected assistant role, got %q", converted[2].Role)
	}
}

func TestConvertToGemini(t *testing.T) {
	messages := []*agent.Message{
		agent.NewMessage(agent.RoleSystem, "instructions"),
		agent.NewMessage(agent.RoleAgent, "previous draft"),
		agent.NewMessage(agent.RoleUser, "revise it"),
	}

	history, lastParts := convertToGemini(messages)
	if len(history) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(history))
	}
	if history[0].Role != "user" {
		t.Errorf("system message should travel as user content, got %q", history[0].Role)
	}
	if history[1].Role != "model" {
		t.Errorf("agent message should map to model role, got %q", history[1].Role)
	}
	if len(lastParts) != 1 {
		t.Fatalf("expected 1 part for the final message, got %d", len(lastParts))
	}

	history, lastParts = convertToGemini(nil)
	if history != nil || lastParts != nil {
		t.Error("empty conversation should convert to nil history and parts")
	}
}

// Mock is an in-memory LLM used across package tests.
type Mock struct {
	model        string
	completeFunc func(context.Context, []*agent.Message, ...CallOption) (*agent.Message, error)
}

func (m *Mock) Complete(ctx context.Context, messages []*agent.Message, opts ...CallOption) (*agent.Message, error) {
	if m.completeFunc != nil {
		return m.completeFunc(ctx, messages, opts...)
	}
	return agent.NewMessage(agent.RoleAgent, "mock response"), nil
}

func (m *Mock) Stream(ctx context.Context, messages []*agent.Message, opts ...CallOption) (<-chan *agent.Message, error) {
	ch := make(chan *agent.Message, 1)
	ch <- agent.NewMessage(agent.RoleAgent, "mock response")
	close(ch)
	return ch, nil
}

func (m *Mock) Model() string       { return m.model }
func (m *Mock) Unwrap() interface{} { return m }

func TestLLMInterfaceCompliance(t *testing.T) {
	var _ LLM = &Mock{}
	var _ LLM = &OpenAI{}
	var _ LLM = &Gemini{}
}
