package llm

import (
	"context"
	"errors"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pakagronglb/blogsmith/agent"
)

// OpenAI adapts the go-openai chat completion API to the LLM interface.
// The original searcher and reviewer roles of the blog-post workflow run on
// OpenAI models.
type OpenAI struct {
	client *openai.Client
	model  string
}

var _ LLM = (*OpenAI)(nil)

// NewOpenAI creates an OpenAI-backed LLM bound to the given model.
// The API key must already be resolved by the caller; adapters never read
// the environment themselves.
func NewOpenAI(apiKey, model string) (*OpenAI, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAI{
		client: openai.NewClient(apiKey),
		model:  model,
	}, nil
}

// Model returns the model identifier.
func (o *OpenAI) Model() string {
	return o.model
}

// Complete generates a single chat completion.
func (o *OpenAI) Complete(ctx context.Context, messages []*agent.Message, opts ...CallOption) (*agent.Message, error) {
	req := o.buildRequest(messages, BuildCallOptions(opts...))

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("openai returned no choices")
	}

	response := agent.NewMessage(agent.RoleAgent, resp.Choices[0].Message.Content)
	response.Metadata["model"] = resp.Model
	response.Metadata["finish_reason"] = string(resp.Choices[0].FinishReason)
	response.Metadata["usage"] = map[string]interface{}{
		"prompt_tokens":     resp.Usage.PromptTokens,
		"completion_tokens": resp.Usage.CompletionTokens,
		"total_tokens":      resp.Usage.TotalTokens,
	}
	return response, nil
}

// Stream generates completion chunks. The returned channel is closed when
// the provider signals end of stream.
func (o *OpenAI) Stream(ctx context.Context, messages []*agent.Message, opts ...CallOption) (<-chan *agent.Message, error) {
	req := o.buildRequest(messages, BuildCallOptions(opts...))
	req.Stream = true

	stream, err := o.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("openai stream error: %w", err)
	}

	out := make(chan *agent.Message)
	go func() {
		defer close(out)
		defer stream.Close()

		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				errMsg := agent.NewMessage(agent.RoleAgent, "")
				errMsg.Metadata["error"] = err.Error()
				errMsg.Metadata["streaming"] = true
				out <- errMsg
				return
			}
			if len(resp.Choices) == 0 {
				continue
			}
			if delta := resp.Choices[0].Delta.Content; delta != "" {
				chunk := agent.NewMessage(agent.RoleAgent, delta)
				chunk.Metadata["streaming"] = true
				chunk.Metadata["model"] = o.model
				out <- chunk
			}
		}
	}()
	return out, nil
}

// Unwrap returns the underlying *openai.Client.
func (o *OpenAI) Unwrap() interface{} {
	return o.client
}

func (o *OpenAI) buildRequest(messages []*agent.Message, options *CallOptions) openai.ChatCompletionRequest {
	req := openai.ChatCompletionRequest{
		Model:    o.model,
		Messages: convertToOpenAI(messages),
	}
	if options.Temperature != nil {
		req.Temperature = float32(*options.Temperature)
	}
	if options.MaxTokens != nil {
		req.MaxTokens = *options.MaxTokens
	}
	if options.TopP != nil {
		req.TopP = float32(*options.TopP)
	}
	if fp, ok := options.Extra["frequency_penalty"].(float64); ok {
		req.FrequencyPenalty = float32(fp)
	}
	if pp, ok := options.Extra["presence_penalty"].(float64); ok {
		req.PresencePenalty = float32(pp)
	}
	if stop, ok := options.Extra["stop"].([]string); ok {
		req.Stop = stop
	}
	return req
}

// convertToOpenAI maps pipeline messages to the provider's role scheme.
// "agent" and anything unrecognized map to "assistant".
func convertToOpenAI(messages []*agent.Message) []openai.ChatCompletionMessage {
	converted := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		role := msg.Role
		switch role {
		case agent.RoleSystem, agent.RoleUser, agent.RoleTool:
		default:
			role = agent.RoleAssistant
		}
		converted = append(converted, openai.ChatCompletionMessage{
			Role:    role,
			Content: msg.Content,
		})
	}
	return converted
}
