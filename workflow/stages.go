package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/pakagronglb/blogsmith/agent"
	"github.com/pakagronglb/blogsmith/llm"
	"github.com/pakagronglb/blogsmith/tools"
)

// Stage names, in execution order.
const (
	StageSearcher  = "searcher"
	StageWriter    = "writer"
	StageReviewer  = "reviewer"
	StagePublisher = "publisher"
)

// ErrEmptyCompletion signals that a model returned empty text. The pipeline
// turns this into a failed run rather than passing an empty artifact on.
var ErrEmptyCompletion = errors.New("model returned empty completion")

// StageAgent is a model-backed pipeline stage: fixed instructions, one
// model call per message, no local retry.
type StageAgent struct {
	name         string
	instructions string
	model        llm.LLM
	options      []llm.CallOption
}

var _ agent.Agent = (*StageAgent)(nil)

// NewStageAgent creates a model-backed stage.
func NewStageAgent(name, instructions string, model llm.LLM, options ...llm.CallOption) (*StageAgent, error) {
	if name == "" {
		return nil, errors.New("stage name is required")
	}
	if model == nil {
		return nil, fmt.Errorf("stage %s requires a model", name)
	}
	return &StageAgent{
		name:         name,
		instructions: instructions,
		model:        model,
		options:      options,
	}, nil
}

// Name returns the stage identifier.
func (s *StageAgent) Name() string {
	return s.name
}

// Capabilities reports the stage as text generation.
func (s *StageAgent) Capabilities() []string {
	return []string{"text_generation"}
}

// Process sends the incoming artifact to the model under the stage's
// instructions and returns the model's output as the next artifact.
func (s *StageAgent) Process(ctx context.Context, message *agent.Message) (*agent.Message, error) {
	conversation := []*agent.Message{
		agent.NewMessage(agent.RoleSystem, s.instructions),
		agent.NewMessage(agent.RoleUser, message.Content),
	}

	response, err := s.model.Complete(ctx, conversation, s.options...)
	if err != nil {
		return nil, fmt.Errorf("%s model call failed: %w", s.name, err)
	}
	if strings.TrimSpace(response.Content) == "" {
		return nil, fmt.Errorf("%s: %w", s.name, ErrEmptyCompletion)
	}

	out := agent.NewMessage(agent.RoleAgent, strings.TrimSpace(response.Content))
	out.Metadata["stage"] = s.name
	out.Metadata["model"] = s.model.Model()
	return out, nil
}

// NewWriter creates the writer stage. It consumes the searcher's JSON
// artifact and produces the draft.
func NewWriter(model llm.LLM) (*StageAgent, error) {
	return NewStageAgent(StageWriter, writerInstructions, model, llm.WithTemperature(0.7))
}

// NewReviewer creates the reviewer stage: a single revision pass over the
// draft, no convergence loop.
func NewReviewer(model llm.LLM) (*StageAgent, error) {
	return NewStageAgent(StageReviewer, reviewerInstructions, model, llm.WithTemperature(0.3))
}

// NewPublisher creates the publisher stage producing the final Markdown.
func NewPublisher(model llm.LLM) (*StageAgent, error) {
	return NewStageAgent(StagePublisher, publisherInstructions, model, llm.WithTemperature(0.2))
}

// Searcher turns a topic into a SearchResults JSON artifact for the writer.
// It is the only stage that sees the raw topic; everything downstream reads
// the previous stage's output.
type Searcher struct {
	search *tools.WebSearch
}

var _ agent.Agent = (*Searcher)(nil)

// NewSearcher creates the searcher stage around a web search tool.
func NewSearcher(search *tools.WebSearch) (*Searcher, error) {
	if search == nil {
		return nil, errors.New("searcher requires a web search tool")
	}
	return &Searcher{search: search}, nil
}

// Name returns the stage identifier.
func (s *Searcher) Name() string {
	return StageSearcher
}

// Capabilities reports the stage as web search.
func (s *Searcher) Capabilities() []string {
	return []string{"web_search"}
}

// Process searches for the topic in the message content and emits the
// results as an indented JSON artifact.
func (s *Searcher) Process(ctx context.Context, message *agent.Message) (*agent.Message, error) {
	topic := strings.TrimSpace(message.Content)
	if topic == "" {
		return nil, errors.New("searcher requires a non-empty topic")
	}

	articles, err := s.search.Search(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("search for %q failed: %w", topic, err)
	}

	results := tools.SearchResults{
		Topic:    topic,
		Articles: articles,
	}
	payload, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode search results: %w", err)
	}

	out := agent.NewMessage(agent.RoleTool, string(payload))
	out.Metadata["stage"] = StageSearcher
	out.Metadata["article_count"] = len(articles)
	return out, nil
}
