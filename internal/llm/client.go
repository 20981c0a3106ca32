// Package llm provides the chat-completion client used by the story
// generator and the quality reviewer.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/storyforge/storyforge/internal/config"
	"github.com/storyforge/storyforge/internal/logging"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
)

// Completer is the interface the generator and reviewer depend on.
// It sends one system+user exchange and returns the assistant's text.
type Completer interface {
	Complete(ctx context.Context, system, user string, opts CallOptions) (string, error)
}

// CallOptions controls a single completion call.
type CallOptions struct {
	// MaxTokens caps the completion length
	MaxTokens int

	// Deterministic requests zero-temperature sampling with a fixed
	// seed so identical inputs produce identical outputs
	Deterministic bool

	// Seed used when Deterministic is set
	Seed int
}

// Client implements Completer against an Azure OpenAI deployment.
type Client struct {
	llm *openai.LLM
}

// NewClient creates a chat-completion client for the configured
// deployment. The API key is supplied per invocation by the user and
// is never read from the configuration.
func NewClient(cfg config.ModelConfig, apiKey string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("model API key is required")
	}
	if cfg.Endpoint == "" {
		return nil, errors.New("model endpoint is not configured")
	}
	if cfg.Deployment == "" {
		return nil, errors.New("model deployment is not configured")
	}

	// With the Azure API type the deployment name takes the place of
	// the model and the key travels in the api-key header.
	llmModel, err := openai.New(
		openai.WithAPIType(openai.APITypeAzure),
		openai.WithToken(apiKey),
		openai.WithBaseURL(cfg.Endpoint),
		openai.WithModel(cfg.Deployment),
		openai.WithAPIVersion(cfg.APIVersion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize chat-completion client: %w", err)
	}

	return &Client{llm: llmModel}, nil
}

// Complete sends a system+user message pair and returns the
// assistant's reply text. An empty reply is an error: callers treat
// missing content as a failed call, never as an empty draft.
func (c *Client) Complete(ctx context.Context, system, user string, opts CallOptions) (string, error) {
	if c.llm == nil {
		return "", errors.New("chat-completion client not initialized")
	}

	messages := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, system),
		llms.TextParts(schema.ChatMessageTypeHuman, user),
	}

	callOpts := []llms.CallOption{
		llms.WithMaxTokens(opts.MaxTokens),
	}
	if opts.Deterministic {
		callOpts = append(callOpts,
			llms.WithTemperature(0),
			llms.WithSeed(opts.Seed),
		)
	}

	logging.Debug("sending chat completion request",
		"user_prompt", truncateForLogging(user),
		"max_tokens", opts.MaxTokens,
		"deterministic", opts.Deterministic)

	resp, err := c.llm.GenerateContent(ctx, messages, callOpts...)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Content == "" {
		return "", errors.New("no content in chat completion response")
	}

	content := resp.Choices[0].Content
	logging.Debug("received chat completion response", "content", truncateForLogging(content))

	return content, nil
}

// truncateForLogging truncates a string to a reasonable length for logging.
func truncateForLogging(s string) string {
	const maxLength = 500
	if len(s) <= maxLength {
		return s
	}
	return s[:maxLength] + "... [truncated]"
}
