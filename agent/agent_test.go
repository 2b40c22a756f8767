package agent

import (
	"strings"
	"testing"
)

func TestNewMessage(t *testing.T) {
	msg := NewMessage(RoleUser, "benefits of remote work")

	if msg.Role != RoleUser {
		t.Errorf("expected role %q, got %q", RoleUser, msg.Role)
	}
	if msg.Content != "benefits of remote work" {
		t.Errorf("unexpected content: %q", msg.Content)
	}
	if msg.Metadata == nil {
		t.Error("metadata map should be initialized")
	}
	if msg.Timestamp.IsZero() {
		t.Error("timestamp should be set")
	}
}

func TestMessageWithMetadata(t *testing.T) {
	msg := NewMessage(RoleAgent, "draft").WithMetadata("stage", "writer")

	if got, ok := msg.Metadata["stage"]; !ok || got != "writer" {
		t.Errorf("expected metadata stage=writer, got %v", got)
	}
}

func TestMessageValidate(t *testing.T) {
	tests := []struct {
		name    string
		msg     *Message
		wantErr string
	}{
		{
			name: "valid user message",
			msg:  NewMessage(RoleUser, "hello"),
		},
		{
			name: "valid tool message",
			msg:  NewMessage(RoleTool, "{}"),
		},
		{
			name:    "empty role",
			msg:     &Message{Role: "", Content: "x"},
			wantErr: "role cannot be empty",
		},
		{
			name:    "unknown role",
			msg:     NewMessage("publisher-bot", "x"),
			wantErr: "invalid message role",
		},
		{
			name:    "oversized content",
			msg:     NewMessage(RoleAgent, strings.Repeat("a", maxContentSize+1)),
			wantErr: "exceeds maximum size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.msg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestToolResult(t *testing.T) {
	ok := NewToolResult(map[string]interface{}{"articles": 3})
	if !ok.Success {
		t.Error("expected success result")
	}
	if ok.Data == nil {
		t.Error("expected data to be set")
	}

	fail := NewToolError("no results")
	if fail.Success {
		t.Error("expected failure result")
	}
	if fail.Error != "no results" {
		t.Errorf("unexpected error string: %q", fail.Error)
	}
}
