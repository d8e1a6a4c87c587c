package claude

import (
	"context"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/nexustrader/nexus/internal/advisory"
	"github.com/nexustrader/nexus/internal/core"
)

// Provider implements the advisory interface for Claude/Anthropic.
type Provider struct {
	client  anthropic.Client
	model   string
	timeout time.Duration
}

// New creates a new Claude provider.
func New(apiKey, model string, timeout time.Duration) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key required")
	}
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &Provider{client: client, model: model, timeout: timeout}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "claude"
}

// Analyze streams a risk assessment for the signal. Closing the
// returned stream cancels the outbound request.
func (p *Provider) Analyze(ctx context.Context, sig core.Signal) (*advisory.Stream, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: advisory.SystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(advisory.Prompt(sig))),
		},
	}

	upstream := p.client.Messages.NewStreaming(ctx, params)
	out, w := advisory.NewStream(cancel)

	go func() {
		defer upstream.Close()
		for upstream.Next() {
			event := upstream.Current()
			switch ev := event.AsAny().(type) {
			case anthropic.ContentBlockDeltaEvent:
				switch delta := ev.Delta.AsAny().(type) {
				case anthropic.TextDelta:
					if delta.Text == "" {
						continue
					}
					if !w.Write(delta.Text) {
						w.End(nil)
						return
					}
				}
			}
		}
		w.End(advisory.UpstreamError(upstream.Err()))
	}()

	return out, nil
}
