package sandbox

import (
	"context"
	"fmt"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/ziadkadry99/repo-convert/internal/llm"
)

const systemPrompt = "You are a code conversion assistant. Convert code from one language to another while maintaining the same functionality."

// conversionTemperature keeps translations close to the source.
const conversionTemperature = 0.2

// Converter translates source code with an LLM provider.
type Converter struct {
	provider llm.Provider
	model    string
}

// NewConverter creates a converter using provider and model.
func NewConverter(provider llm.Provider, model string) *Converter {
	return &Converter{provider: provider, model: model}
}

// Convert returns source rewritten from sourceLang into targetLang.
func (c *Converter) Convert(ctx context.Context, source, sourceLang, targetLang string) (string, error) {
	resp, err := c.provider.Complete(ctx, llm.CompletionRequest{
		Model: c.model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: systemPrompt},
			{Role: llm.RoleUser, Content: BuildPrompt(source, sourceLang, targetLang)},
		},
		Temperature: conversionTemperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to convert code: %w", err)
	}
	if resp.Truncated() {
		logger.WithFields(logger.Fields{
			"from":   sourceLang,
			"to":     targetLang,
			"tokens": resp.Usage.CompletionTokens,
		}).Warn("conversion reply hit the token limit")
	}
	return StripFences(resp.Content), nil
}

// BuildPrompt renders the user message for a conversion.
func BuildPrompt(source, sourceLang, targetLang string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Convert the following %s code to %s.\n", sourceLang, targetLang)
	b.WriteString("Maintain the same functionality and logic.\n")
	b.WriteString("Add necessary comments to explain the code.\n\n")
	fmt.Fprintf(&b, "%s code:\n", sourceLang)
	fmt.Fprintf(&b, "```%s\n%s\n```\n", sourceLang, source)
	return b.String()
}

// StripFences extracts the body of the first fenced block in reply. The
// block's first line is dropped as a language tag unless it is a # or //
// comment. Replies without a complete block are returned unchanged.
func StripFences(reply string) string {
	blocks := strings.Split(reply, "```")
	if len(blocks) < 3 {
		return reply
	}
	code := strings.TrimSpace(blocks[1])
	if first, rest, ok := strings.Cut(code, "\n"); ok {
		first = strings.TrimSpace(first)
		if !strings.HasPrefix(first, "#") && !strings.HasPrefix(first, "//") {
			code = rest
		}
	}
	return code
}
