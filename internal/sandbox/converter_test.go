package sandbox

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/repo-convert/internal/llm"
)

type stubProvider struct {
	reply string
	err   error
	got   llm.CompletionRequest
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.got = req
	if p.err != nil {
		return nil, p.err
	}
	return &llm.CompletionResponse{Content: p.reply}, nil
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  string
	}{
		{"no fence", "fn main() {}", "fn main() {}"},
		{"language tag dropped", "Here:\n```rust\nfn main() {}\n```\nDone.", "fn main() {}"},
		{"comment first line kept", "```\n// entry point\nfn main() {}\n```", "// entry point\nfn main() {}"},
		{"hash comment kept", "```\n# helper\ndef f(): pass\n```", "# helper\ndef f(): pass"},
		{"single line block", "```x = 1```", "x = 1"},
		{"unterminated fence", "```go\nx := 1", "```go\nx := 1"},
		{"first block wins", "```go\na\n```\n```go\nb\n```", "a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripFences(tt.reply))
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt("print(1)", "python", "go")
	assert.Contains(t, p, "Convert the following python code to go.")
	assert.Contains(t, p, "```python\nprint(1)\n```")
}

func TestConverter_Request(t *testing.T) {
	stub := &stubProvider{reply: "```go\nfmt.Println(1)\n```"}
	c := NewConverter(stub, "gpt-4o")

	out, err := c.Convert(context.Background(), "print(1)", "python", "go")
	require.NoError(t, err)
	assert.Equal(t, "fmt.Println(1)", out)

	assert.Equal(t, "gpt-4o", stub.got.Model)
	assert.InDelta(t, 0.2, stub.got.Temperature, 1e-9)
	require.Len(t, stub.got.Messages, 2)
	assert.Equal(t, llm.RoleSystem, stub.got.Messages[0].Role)
	assert.Equal(t, llm.RoleUser, stub.got.Messages[1].Role)
}

func TestConverter_ProviderError(t *testing.T) {
	c := NewConverter(&stubProvider{err: errors.New("quota exceeded")}, "m")
	_, err := c.Convert(context.Background(), "x", "go", "rust")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestConverter_EchoRoundTrip(t *testing.T) {
	c := NewConverter(llm.NewEchoProvider(), "echo")
	src := "package main\n\nfunc main() {}"
	out, err := c.Convert(context.Background(), src, "go", "go")
	require.NoError(t, err)
	assert.Equal(t, src, out)
}
