package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/pakagronglb/blogsmith/agent"
)

// Gemini adapts the Google GenAI SDK to the LLM interface. The writer role
// of the blog-post workflow runs on a Gemini model.
type Gemini struct {
	client *genai.Client
	model  string
}

var _ LLM = (*Gemini)(nil)

// NewGemini creates a Gemini-backed LLM bound to the given model.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &Gemini{
		client: client,
		model:  model,
	}, nil
}

// Model returns the model identifier.
func (g *Gemini) Model() string {
	return g.model
}

// Complete generates a single completion from Gemini.
func (g *Gemini) Complete(ctx context.Context, messages []*agent.Message, opts ...CallOption) (*agent.Message, error) {
	model := g.client.GenerativeModel(g.model)
	g.configureModel(model, BuildCallOptions(opts...))

	history, lastParts := convertToGemini(messages)
	session := model.StartChat()
	session.History = history

	resp, err := session.SendMessage(ctx, lastParts...)
	if err != nil {
		return nil, fmt.Errorf("gemini api error: %w", err)
	}

	response := agent.NewMessage(agent.RoleAgent, extractGeminiText(resp))
	response.Metadata["model"] = g.model
	if resp.UsageMetadata != nil {
		response.Metadata["usage"] = map[string]interface{}{
			"prompt_tokens":     resp.UsageMetadata.PromptTokenCount,
			"completion_tokens": resp.UsageMetadata.CandidatesTokenCount,
			"total_tokens":      resp.UsageMetadata.TotalTokenCount,
		}
	}
	if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != 0 {
		response.Metadata["finish_reason"] = resp.Candidates[0].FinishReason.String()
	}
	return response, nil
}

// Stream generates completion chunks from Gemini.
func (g *Gemini) Stream(ctx context.Context, messages []*agent.Message, opts ...CallOption) (<-chan *agent.Message, error) {
	model := g.client.GenerativeModel(g.model)
	g.configureModel(model, BuildCallOptions(opts...))

	history, lastParts := convertToGemini(messages)
	session := model.StartChat()
	session.History = history

	iter := session.SendMessageStream(ctx, lastParts...)

	out := make(chan *agent.Message)
	go func() {
		defer close(out)
		for {
			resp, err := iter.Next()
			if errors.Is(err, iterator.Done) {
				return
			}
			if err != nil {
				errMsg := agent.NewMessage(agent.RoleAgent, "")
				errMsg.Metadata["error"] = err.Error()
				errMsg.Metadata["streaming"] = true
				out <- errMsg
				return
			}
			if content := extractGeminiText(resp); content != "" {
				chunk := agent.NewMessage(agent.RoleAgent, content)
				chunk.Metadata["streaming"] = true
				chunk.Metadata["model"] = g.model
				out <- chunk
			}
		}
	}()
	return out, nil
}

// Close releases the underlying client connection.
func (g *Gemini) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// Unwrap returns the underlying *genai.Client.
func (g *Gemini) Unwrap() interface{} {
	return g.client
}

func (g *Gemini) configureModel(model *genai.GenerativeModel, options *CallOptions) {
	if options.Temperature != nil {
		temp := float32(*options.Temperature)
		model.Temperature = &temp
	}
	if options.MaxTokens != nil {
		maxTokens := int32(*options.MaxTokens)
		model.MaxOutputTokens = &maxTokens
	}
	if options.TopP != nil {
		topP := float32(*options.TopP)
		model.TopP = &topP
	}
	if topK, ok := options.Extra["top_k"].(int); ok {
		k := int32(topK)
		model.TopK = &k
	}
	if stop, ok := options.Extra["stop_sequences"].([]string); ok {
		model.StopSequences = stop
	}
}

// convertToGemini splits the conversation into history plus the parts of the
// final message to send. Gemini only knows "user" and "model" roles; system
// prompts travel as user content.
func convertToGemini(messages []*agent.Message) ([]*genai.Content, []genai.Part) {
	if len(messages) == 0 {
		return nil, nil
	}

	var history []*genai.Content
	for _, msg := range messages[:len(messages)-1] {
		role := "model"
		if msg.Role == agent.RoleUser || msg.Role == agent.RoleSystem {
			role = "user"
		}
		history = append(history, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(msg.Content)},
		})
	}

	last := messages[len(messages)-1]
	return history, []genai.Part{genai.Text(last.Content)}
}

func extractGeminiText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return ""
	}
	var content string
	for _, part := range candidate.Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			content += string(txt)
		}
	}
	return content
}
