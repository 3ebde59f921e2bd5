package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/api/option"
)

// GeminiConfig configures the Google Gemini provider.
type GeminiConfig struct {
	APIKey       string
	Model        string
	MaxTokens    int
	Temperature  float32
	SystemPrompt string
	Logger       zerolog.Logger
}

// GeminiGenerator implements TextGenerator with the Gemini SDK.
type GeminiGenerator struct {
	client *genai.Client
	model  *genai.GenerativeModel
	name   string
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewGeminiGenerator creates the SDK client. Close releases it.
func NewGeminiGenerator(ctx context.Context, cfg GeminiConfig) (*GeminiGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-1.5-pro"
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1024
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = DefaultSystemPrompt
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gemini client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.SetTemperature(cfg.Temperature)
	model.SetMaxOutputTokens(int32(cfg.MaxTokens))
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(cfg.SystemPrompt)}}

	return &GeminiGenerator{
		client: client,
		model:  model,
		name:   cfg.Model,
		tracer: otel.Tracer("github.com/noah-isme/nepses-go-api/pkg/ai/gemini"),
		logger: cfg.Logger.With().Str("component", "ai_gemini").Logger(),
	}, nil
}

// Name returns the provider name.
func (g *GeminiGenerator) Name() string {
	return ProviderGemini
}

// Generate asks the model for a single candidate and joins its text parts.
func (g *GeminiGenerator) Generate(parent context.Context, prompt string) (string, error) {
	ctx, span := g.tracer.Start(parent, "gemini.generate", trace.WithAttributes(
		attribute.String("provider", ProviderGemini),
		attribute.String("model", g.name),
	))
	defer span.End()

	start := time.Now()
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	generationDuration.WithLabelValues(ProviderGemini, g.name).Observe(time.Since(start).Seconds())
	if err != nil {
		return "", g.fail(span, fmt.Errorf("gemini generate: %w", err))
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", g.fail(span, fmt.Errorf("gemini returned no content"))
	}

	var builder strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			builder.WriteString(string(text))
		}
	}

	return strings.TrimSpace(builder.String()), nil
}

// Close releases the SDK client.
func (g *GeminiGenerator) Close() error {
	if g == nil || g.client == nil {
		return nil
	}
	return g.client.Close()
}

func (g *GeminiGenerator) fail(span trace.Span, err error) error {
	generationFailures.WithLabelValues(ProviderGemini, g.name).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	g.logger.Warn().Err(err).Msg("gemini generation failed")
	return err
}
