package enrich

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"
)

const geminiModel = "gemini-2.0-flash"

// GeminiProvider implements Provider using the Gemini API.
type GeminiProvider struct {
	client *genai.Client
	config *Config
	model  string
}

// NewGeminiProvider creates a Gemini backed provider.
func NewGeminiProvider(ctx context.Context, config *Config) (*GeminiProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("gemini: %w", ErrMissingAPIKey)
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: config.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := config.Model
	if model == "" {
		model = geminiModel
	}

	return &GeminiProvider{client: client, config: config, model: model}, nil
}

// Enrich implements Provider.
func (p *GeminiProvider) Enrich(ctx context.Context, word string) (Details, error) {
	timeout := p.config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := p.client.Models.GenerateContent(ctx, p.model,
		genai.Text(BuildPrompt(word, p.config.Language)),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
			Temperature:       genai.Ptr[float32](0.2),
			MaxOutputTokens:   300,
			ResponseMIMEType:  "application/json",
		})
	if err != nil {
		return Details{}, classifyError(p.Name(), err)
	}

	return ParseDetails(resp.Text())
}

// Name implements Provider.
func (p *GeminiProvider) Name() string {
	return "gemini"
}
