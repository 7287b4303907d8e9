package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
)

// OpenRouterBaseURL is the OpenAI compatible endpoint used by the
// openrouter provider.
const OpenRouterBaseURL = "https://openrouter.ai/api/v1"

const openRouterModel = "openai/gpt-4o-mini"

// OpenAIProvider implements Provider for OpenAI compatible chat completion
// endpoints, including OpenRouter.
type OpenAIProvider struct {
	client   *openai.Client
	config   *Config
	model    string
	language string
}

// NewOpenAIProvider creates a chat completion backed provider.
func NewOpenAIProvider(config *Config) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("%s: %w", config.Provider, ErrMissingAPIKey)
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	model := config.Model

	switch {
	case config.BaseURL != "":
		clientConfig.BaseURL = config.BaseURL
	case config.Provider == "openrouter" || config.Provider == "":
		clientConfig.BaseURL = OpenRouterBaseURL
	}

	if model == "" {
		model = openai.GPT4oMini
		if config.Provider == "openrouter" || config.Provider == "" {
			model = openRouterModel
		}
	}

	return &OpenAIProvider{
		client:   openai.NewClientWithConfig(clientConfig),
		config:   config,
		model:    model,
		language: config.Language,
	}, nil
}

// Enrich implements Provider.
func (p *OpenAIProvider) Enrich(ctx context.Context, word string) (Details, error) {
	timeout := p.config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: BuildPrompt(word, p.language),
			},
		},
		MaxTokens:   300,
		Temperature: 0.2,
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return Details{}, classifyError(p.Name(), err)
	}

	if len(resp.Choices) == 0 {
		return Details{}, fmt.Errorf("%w: no choices returned", ErrMalformed)
	}

	return ParseDetails(resp.Choices[0].Message.Content)
}

// Name implements Provider.
func (p *OpenAIProvider) Name() string {
	if p.config.Provider == "" {
		return "openrouter"
	}
	return p.config.Provider
}

// classifyError maps a failed chat completion call onto ErrMalformed when the
// endpoint answered with a body that is not a chat completion, and onto
// ErrUnavailable for API, request and transport errors.
func classifyError(provider string, err error) error {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return fmt.Errorf("%w: %s returned an unreadable body: %w", ErrMalformed, provider, err)
	}
	return fmt.Errorf("%w: %s API error: %w", ErrUnavailable, provider, err)
}
