package llm

import "context"

// EchoProvider answers every request with the last user message. It lets
// the sandbox run without an API key.
type EchoProvider struct{}

// NewEchoProvider creates an EchoProvider.
func NewEchoProvider() *EchoProvider { return &EchoProvider{} }

func (p *EchoProvider) Name() string { return "echo" }

func (p *EchoProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var content string
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == RoleUser {
			content = req.Messages[i].Content
			break
		}
	}
	tokens := EstimateTokens(content)
	return &CompletionResponse{
		Content:      content,
		Model:        "echo",
		FinishReason: "stop",
		Usage:        Usage{PromptTokens: tokens, CompletionTokens: tokens},
	}, nil
}

// EstimateTokens approximates the token count of text (about four
// characters per token).
func EstimateTokens(text string) int {
	n := len(text) / 4
	if n == 0 && len(text) > 0 {
		return 1
	}
	return n
}
