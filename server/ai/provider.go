// Package ai wraps the generative-text provider behind a small interface.
// Generation is single-shot: a failed or timed-out call surfaces to the
// caller, which answers with a fixed apology instead of retrying. Retrying
// a chat completion risks duplicate side effects and doubled latency.
package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/campusfinds/campusfinds/internal/profile"
	"github.com/campusfinds/campusfinds/plugin/assistant/timeout"
)

// Config holds the generative provider configuration.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL: "https://api.openai.com/v1",
		Model:   "gpt-4o-mini",
		Timeout: timeout.GenerationTimeout,
	}
}

// ConfigFromProfile builds provider configuration from the server profile.
func ConfigFromProfile(p *profile.Profile) *Config {
	cfg := DefaultConfig()
	if p.AIBaseURL != "" {
		cfg.BaseURL = p.AIBaseURL
	}
	if p.AIAPIKey != "" {
		cfg.APIKey = p.AIAPIKey
	}
	if p.AIModel != "" {
		cfg.Model = p.AIModel
	}
	return cfg
}

// Provider talks to an OpenAI-compatible chat completion endpoint.
type Provider struct {
	client *openai.Client
	config *Config
}

// NewProvider creates a provider from the given configuration.
func NewProvider(cfg *Config) *Provider {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = timeout.GenerationTimeout
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &Provider{
		client: openai.NewClientWithConfig(clientConfig),
		config: cfg,
	}
}

// Generate runs one chat completion for the assembled prompt. The call is
// bounded by the configured timeout and never retried.
func (p *Provider) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: p.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty chat completion response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Validate checks the configuration without issuing a network call.
func (p *Provider) Validate() error {
	if p.config.APIKey == "" && !strings.Contains(p.config.BaseURL, "localhost") {
		return fmt.Errorf("AI API key is required, set CAMPUSFINDS_AI_API_KEY")
	}
	return nil
}
