// Package agent provides the core interfaces and message types shared by
// every stage of the blogsmith pipeline.
package agent

import (
	"context"
	"fmt"
	"time"
)

// Roles recognized on messages flowing through the pipeline.
const (
	RoleUser      = "user"
	RoleSystem    = "system"
	RoleAssistant = "assistant"
	RoleAgent     = "agent"
	RoleTool      = "tool"
)

// maxContentSize bounds message content at 1MB; a blog post artifact should
// never come close to this.
const maxContentSize = 1024 * 1024

// Message is the unit of data exchanged between pipeline stages. Each stage
// consumes the previous stage's message and returns a new one; messages are
// never mutated in place once handed to the next stage.
type Message struct {
	Role      string                 `json:"role"`
	Content   string                 `json:"content"`
	Metadata  map[string]interface{} `json:"metadata"`
	Timestamp time.Time              `json:"timestamp"`
}

// NewMessage creates a message with the given role and content.
func NewMessage(role, content string) *Message {
	return &Message{
		Role:      role,
		Content:   content,
		Metadata:  make(map[string]interface{}),
		Timestamp: time.Now().UTC(),
	}
}

// WithMetadata adds a metadata entry and returns the message for chaining.
func (m *Message) WithMetadata(key string, value interface{}) *Message {
	m.Metadata[key] = value
	return m
}

// Validate checks the message against role and size constraints.
func (m *Message) Validate() error {
	switch m.Role {
	case RoleUser, RoleSystem, RoleAssistant, RoleAgent, RoleTool:
	case "":
		return fmt.Errorf("message role cannot be empty")
	default:
		return fmt.Errorf("invalid message role: %s", m.Role)
	}
	if len(m.Content) > maxContentSize {
		return fmt.Errorf("message content exceeds maximum size of %d bytes (got %d)", maxContentSize, len(m.Content))
	}
	return nil
}

// Agent is the contract every pipeline stage implements: one synchronous
// operation that consumes a message and produces the next artifact or an
// error. Implementations must not retain or mutate the input message.
type Agent interface {
	// Name returns the stage identifier, used in error wrapping, logs and
	// trace spans.
	Name() string

	// Process handles a message and returns the stage's output message.
	Process(ctx context.Context, message *Message) (*Message, error)

	// Capabilities returns capability identifiers for this agent. May be
	// empty.
	Capabilities() []string
}

// ToolResult is the outcome of a tool execution.
type ToolResult struct {
	Success  bool                   `json:"success"`
	Data     interface{}            `json:"data,omitempty"`
	Error    string                 `json:"error,omitempty"`
	Metadata map[string]interface{} `json:"metadata"`
}

// NewToolResult creates a successful tool result.
func NewToolResult(data interface{}) *ToolResult {
	return &ToolResult{
		Success:  true,
		Data:     data,
		Metadata: make(map[string]interface{}),
	}
}

// NewToolError creates a tool result representing a failure.
func NewToolError(err string) *ToolResult {
	return &ToolResult{
		Success:  false,
		Error:    err,
		Metadata: make(map[string]interface{}),
	}
}

// Tool is an executable capability a stage can use (e.g. web search).
type Tool interface {
	Name() string
	Description() string
	Execute(ctx context.Context, params map[string]interface{}) (*ToolResult, error)
}
