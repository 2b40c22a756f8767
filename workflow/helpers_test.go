package workflow

import (
	"context"

	"github.com/pakagronglb/blogsmith/agent"
	"github.com/pakagronglb/blogsmith/llm"
)

// mockAgent provides flexible stage mocking for package tests.
type mockAgent struct {
	name        string
	response    string
	err         error
	processFunc func(ctx context.Context, msg *agent.Message) (*agent.Message, error)
}

func (m *mockAgent) Name() string {
	return m.name
}

func (m *mockAgent) Capabilities() []string {
	return []string{"mock"}
}

func (m *mockAgent) Process(ctx context.Context, msg *agent.Message) (*agent.Message, error) {
	if m.processFunc != nil {
		return m.processFunc(ctx, msg)
	}
	if m.err != nil {
		return nil, m.err
	}
	return agent.NewMessage(agent.RoleAgent, m.response), nil
}

// mockLLM backs StageAgent tests without a provider.
type mockLLM struct {
	model        string
	completeFunc func(ctx context.Context, messages []*agent.Message, opts ...llm.CallOption) (*agent.Message, error)
}

func (m *mockLLM) Complete(ctx context.Context, messages []*agent.Message, opts ...llm.CallOption) (*agent.Message, error) {
	if m.completeFunc != nil {
		return m.completeFunc(ctx, messages, opts...)
	}
	return agent.NewMessage(agent.RoleAgent, "mock completion"), nil
}

func (m *mockLLM) Stream(ctx context.Context, messages []*agent.Message, opts ...llm.CallOption) (<-chan *agent.Message, error) {
	ch := make(chan *agent.Message, 1)
	ch <- agent.NewMessage(agent.RoleAgent, "mock completion")
	close(ch)
	return ch, nil
}

func (m *mockLLM) Model() string {
	if m.model == "" {
		return "mock-model"
	}
	return m.model
}

func (m *mockLLM) Unwrap() interface{} { return m }
