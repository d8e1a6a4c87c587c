package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/nexustrader/nexus/internal/advisory"
	"github.com/nexustrader/nexus/internal/core"
	"github.com/sashabaranov/go-openai"
)

// Provider implements the advisory interface for OpenAI.
type Provider struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// New creates a new OpenAI provider.
func New(apiKey, model string, timeout time.Duration) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key required")
	}
	if model == "" {
		model = "gpt-4o"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Provider{client: openai.NewClient(apiKey), model: model, timeout: timeout}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "openai"
}

// Analyze streams a risk assessment for the signal. Closing the
// returned stream cancels the outbound request.
func (p *Provider) Analyze(ctx context.Context, sig core.Signal) (*advisory.Stream, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)

	req := openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: advisory.SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: advisory.Prompt(sig)},
		},
		MaxTokens: 1024,
		Stream:    true,
	}

	upstream, err := p.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		cancel()
		return nil, advisory.UpstreamError(err)
	}

	out, w := advisory.NewStream(cancel)

	go func() {
		defer upstream.Close()
		for {
			resp, err := upstream.Recv()
			if errors.Is(err, io.EOF) {
				w.End(nil)
				return
			}
			if err != nil {
				w.End(advisory.UpstreamError(err))
				return
			}
			if len(resp.Choices) == 0 || resp.Choices[0].Delta.Content == "" {
				continue
			}
			if !w.Write(resp.Choices[0].Delta.Content) {
				w.End(nil)
				return
			}
		}
	}()

	return out, nil
}
