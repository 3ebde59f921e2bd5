package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OpenRouterBaseURL is the OpenAI-compatible endpoint of OpenRouter.
const OpenRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenAIConfig configures an OpenAI-compatible chat completion provider.
type OpenAIConfig struct {
	Provider     string
	APIKey       string
	BaseURL      string
	Model        string
	MaxTokens    int
	Temperature  float32
	SystemPrompt string
	Logger       zerolog.Logger
}

// OpenAIGenerator implements TextGenerator against the chat completion API.
// OpenRouter is served by the same client with a different base URL.
type OpenAIGenerator struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIGenerator builds a generator for api.openai.com or any compatible
// endpoint given in BaseURL.
func NewOpenAIGenerator(cfg OpenAIConfig) (*OpenAIGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s api key is required", providerOrDefault(cfg.Provider))
	}

	cfg.Provider = providerOrDefault(cfg.Provider)
	if cfg.Model == "" {
		cfg.Model = "gpt-3.5-turbo"
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1024
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = DefaultSystemPrompt
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	return &OpenAIGenerator{
		client: openai.NewClientWithConfig(config),
		cfg:    cfg,
		tracer: otel.Tracer("github.com/noah-isme/nepses-go-api/pkg/ai/openai"),
		logger: cfg.Logger.With().Str("component", "ai_"+cfg.Provider).Logger(),
	}, nil
}

// NewOpenRouterGenerator builds a generator that talks to OpenRouter.
func NewOpenRouterGenerator(cfg OpenAIConfig) (*OpenAIGenerator, error) {
	cfg.Provider = ProviderOpenRouter
	if cfg.BaseURL == "" {
		cfg.BaseURL = OpenRouterBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = "meta-llama/llama-4-maverick:free"
	}
	return NewOpenAIGenerator(cfg)
}

// Name returns the provider name.
func (g *OpenAIGenerator) Name() string {
	return g.cfg.Provider
}

// Generate sends a single chat completion request and returns the first choice.
func (g *OpenAIGenerator) Generate(parent context.Context, prompt string) (string, error) {
	ctx, span := g.tracer.Start(parent, g.cfg.Provider+".generate", trace.WithAttributes(
		attribute.String("provider", g.cfg.Provider),
		attribute.String("model", g.cfg.Model),
	))
	defer span.End()

	start := time.Now()
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.cfg.Model,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: g.cfg.SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	generationDuration.WithLabelValues(g.cfg.Provider, g.cfg.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		return "", g.fail(span, fmt.Errorf("%s generate: %w", g.cfg.Provider, err))
	}

	if len(resp.Choices) == 0 {
		return "", g.fail(span, fmt.Errorf("no choices returned from %s", g.cfg.Provider))
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	g.logger.Debug().Str("model", g.cfg.Model).Int("completion_tokens", resp.Usage.CompletionTokens).Msg("generation completed")
	return content, nil
}

func (g *OpenAIGenerator) fail(span trace.Span, err error) error {
	generationFailures.WithLabelValues(g.cfg.Provider, g.cfg.Model).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func providerOrDefault(provider string) string {
	if provider == "" {
		return ProviderOpenAI
	}
	return provider
}
