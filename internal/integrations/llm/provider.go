package llm

import (
	"context"
	"fmt"

	"sentiboard/internal/config"
	"sentiboard/internal/domain"
	"sentiboard/internal/httpx"
)

type LLMUsage = domain.LLMUsage

// Request is one batch classification call.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	Lines        []string
}

// Response carries the raw JSON payload, which must decode to an array of
// results. Providers strip transport framing but do not validate the payload.
type Response struct {
	Text  string
	Usage LLMUsage
}

type Provider interface {
	Name() string
	Model() string
	Generate(ctx context.Context, req Request) (Response, error)
}

// NewProvider builds the provider selected by llm_provider.
func NewProvider(cfg config.Config) (Provider, error) {
	client := httpx.ExternalHTTPClient()
	switch cfg.LLMProvider {
	case config.ProviderAnthropic:
		return NewAnthropic(cfg.AnthropicAPIKey, cfg.Model(), int64(cfg.LLMMaxTokens), WithHTTPClient(client)), nil
	case config.ProviderOpenAI:
		return NewOpenAI(cfg.OpenAIAPIKey, cfg.Model(), int64(cfg.LLMMaxTokens), WithHTTPClient(client)), nil
	case config.ProviderVader:
		return NewVader(), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLMProvider)
	}
}

type clientOptions struct {
	baseURL    string
	httpClient httpDoer
}

type Option func(*clientOptions)

// WithBaseURL points a provider at a different API host.
func WithBaseURL(u string) Option {
	return func(o *clientOptions) { o.baseURL = u }
}

func WithHTTPClient(c httpDoer) Option {
	return func(o *clientOptions) { o.httpClient = c }
}
