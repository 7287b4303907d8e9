package enrich

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"codeberg.org/snonux/wordofday/internal/entry"
)

var (
	// ErrUnavailable means the provider could not be reached or answered
	// with a non-OK status.
	ErrUnavailable = errors.New("enrichment provider unavailable")

	// ErrMalformed means the provider answered but the body could not be
	// parsed into the expected shape.
	ErrMalformed = errors.New("enrichment response malformed")

	// ErrMissingAPIKey means the provider is configured but has no key.
	ErrMissingAPIKey = errors.New("API key is required")
)

// Details is what a provider adds to a bare word.
type Details struct {
	Translation  string
	PartOfSpeech entry.PartOfSpeech
	Examples     []string
}

// Apply fills the fields candidate is missing from d. Fields the candidate
// already carries, such as a translation from a user word list, are kept.
func (d Details) Apply(candidate entry.Entry) entry.Entry {
	e := candidate.Clone()
	if e.Translation == "" {
		e.Translation = d.Translation
	}
	if e.PartOfSpeech == "" {
		e.PartOfSpeech = d.PartOfSpeech
	}
	if len(e.Examples) == 0 {
		e.Examples = append([]string(nil), d.Examples...)
	}
	return e
}

// Provider enriches bare words.
type Provider interface {
	// Enrich looks up word. Errors wrap ErrUnavailable or ErrMalformed.
	Enrich(ctx context.Context, word string) (Details, error)

	// Name returns the provider name
	Name() string
}

// Config holds common configuration for enrichment providers
type Config struct {
	Provider string // "openrouter", "openai" or "gemini"
	APIKey   string
	BaseURL  string // overrides the provider's default endpoint
	Model    string
	Language string // target language of the translation
	Timeout  time.Duration

	// BreakerFailures consecutive unavailable responses open the circuit
	// for BreakerTimeout. Zero disables the breaker.
	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

// DefaultProviderConfig returns default configuration
func DefaultProviderConfig() *Config {
	return &Config{
		Provider:        "openrouter",
		Language:        "Ukrainian",
		Timeout:         30 * time.Second,
		BreakerFailures: 3,
		BreakerTimeout:  time.Minute,
	}
}

// NewProvider creates the appropriate provider based on configuration
func NewProvider(ctx context.Context, config *Config, logger *zap.Logger) (Provider, error) {
	if config == nil {
		config = DefaultProviderConfig()
	}

	var (
		p   Provider
		err error
	)
	switch config.Provider {
	case "openrouter", "openai", "":
		p, err = NewOpenAIProvider(config)
	case "gemini":
		p, err = NewGeminiProvider(ctx, config)
	default:
		return nil, fmt.Errorf("unknown enrichment provider: %s", config.Provider)
	}
	if err != nil {
		return nil, err
	}

	if config.BreakerFailures > 0 {
		p = NewBreakerProvider(p, config.BreakerFailures, config.BreakerTimeout, logger)
	}
	return p, nil
}
