package llm

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// defaultMaxTokens bounds a reply when the request sets no limit.
const defaultMaxTokens = 4096

var (
	// ErrNoChoices is returned when the API answers without any completion.
	ErrNoChoices = errors.New("completion has no choices")
	// ErrNoToolCall is returned when a function was forced but the reply
	// does not call it.
	ErrNoToolCall = errors.New("completion did not call the function")
)

// OpenAIProvider completes prompts with the OpenAI Chat Completions API or
// a compatible endpoint.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// NewOpenAIProvider creates a provider for the public OpenAI API.
func NewOpenAIProvider(apiKey string, model string) *OpenAIProvider {
	return NewOpenAIProviderWithConfig(openai.DefaultConfig(apiKey), model)
}

// NewOpenAIProviderWithConfig creates a provider from a client config,
// e.g. one pointing at an OpenAI-compatible endpoint.
func NewOpenAIProviderWithConfig(cfg openai.ClientConfig, model string) *OpenAIProvider {
	return &OpenAIProvider{client: openai.NewClientWithConfig(cfg), model: model}
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	apiReq := openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    make([]openai.ChatCompletionMessage, 0, len(req.Messages)),
		MaxTokens:   defaultMaxTokens,
		Temperature: float32(req.Temperature),
	}
	if req.Model != "" {
		apiReq.Model = req.Model
	}
	if req.MaxTokens > 0 {
		apiReq.MaxTokens = req.MaxTokens
	}
	for _, m := range req.Messages {
		apiReq.Messages = append(apiReq.Messages, openai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content})
	}
	if fn := req.Function; fn != nil {
		apiReq.Tools = []openai.Tool{{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        fn.Name,
				Description: fn.Description,
				Parameters:  fn.Parameters,
			},
		}}
		apiReq.ToolChoice = openai.ToolChoice{
			Type:     openai.ToolTypeFunction,
			Function: openai.ToolFunction{Name: fn.Name},
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, apiReq)
	if err != nil {
		return nil, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai chat completion: %w", ErrNoChoices)
	}

	choice := resp.Choices[0]
	content := choice.Message.Content
	if req.Function != nil {
		if len(choice.Message.ToolCalls) == 0 {
			return nil, fmt.Errorf("openai chat completion: %w", ErrNoToolCall)
		}
		content = choice.Message.ToolCalls[0].Function.Arguments
	}
	return &CompletionResponse{
		Content:      content,
		Model:        resp.Model,
		FinishReason: string(choice.FinishReason),
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
		},
	}, nil
}
