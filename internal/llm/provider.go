// Package llm talks to the language models that back code conversion.
package llm

import (
	"context"
	"encoding/json"
)

// Provider completes chat-style prompts.
type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	Name() string
}

// Role is the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a prompt.
type Message struct {
	Role    Role
	Content string
}

// Function is a callable the model is made to answer with. Parameters is
// a JSON schema.
type Function struct {
	Name        string
	Description string
	Parameters  json.RawMessage
}

// CompletionRequest is a prompt plus sampling settings. Zero values fall
// back to the provider defaults. When Function is set the reply Content
// holds the JSON arguments of the call instead of text; providers without
// function calling answer with text and callers must cope with that.
type CompletionRequest struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float64
	Function    *Function
}

// Usage counts the tokens spent on a completion.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

// CompletionResponse is the model's reply.
type CompletionResponse struct {
	Content      string
	Model        string
	FinishReason string
	Usage        Usage
}

// Truncated reports whether the reply stopped at the token limit.
func (r *CompletionResponse) Truncated() bool {
	return r.FinishReason == "length"
}
