package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/nepses-go-api/internal/dto"
	"github.com/noah-isme/nepses-go-api/pkg/ai"
)

// TextGenerator produces raw model output for a prompt. *ai.Chain satisfies it.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (text string, provider string, err error)
}

// AIService proxies question generation to the configured text provider.
type AIService interface {
	Generate(ctx context.Context, payload dto.AIGenerateRequest, actor ActivityActor) (dto.AIGenerateResult, error)
}

type aiService struct {
	generator TextGenerator
	questions QuestionService
	validator *validator.Validate
	activity  ActivityRecorder
	logger    zerolog.Logger
}

// NewAIService constructs the AI proxy. questions is only needed to persist
// generated questions.
func NewAIService(generator TextGenerator, questions QuestionService, validate *validator.Validate, activity ActivityRecorder, logger zerolog.Logger) AIService {
	return &aiService{
		generator: generator,
		questions: questions,
		validator: validate,
		activity:  activity,
		logger:    logger.With().Str("component", "ai_service").Logger(),
	}
}

// Generate makes one provider call and extracts the JSON array from its
// output. Provider failures and unparseable output are upstream errors.
func (s *aiService) Generate(ctx context.Context, payload dto.AIGenerateRequest, actor ActivityActor) (dto.AIGenerateResult, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AIGenerateResult{}, err
	}
	if s.generator == nil {
		return dto.AIGenerateResult{}, ErrNoAIProvider
	}

	text, provider, err := s.generator.Generate(ctx, payload.EffectivePrompt())
	if err != nil {
		if errors.Is(err, ai.ErrNoProvider) {
			return dto.AIGenerateResult{}, ErrNoAIProvider
		}
		s.logger.Error().Err(err).Str("provider", provider).Msg("ai provider call failed")
		return dto.AIGenerateResult{}, upstreamError("Failed to generate questions with %s", provider)
	}

	items, err := ai.ExtractJSONArray(text)
	if err != nil {
		s.logger.Warn().Err(err).Str("provider", provider).Int("output_length", len(text)).Msg("ai output has no json array")
		return dto.AIGenerateResult{}, upstreamError("Failed to parse AI response as a JSON array")
	}

	result := dto.AIGenerateResult{Provider: provider, Items: items}
	s.logger.Info().Str("provider", provider).Int("items", len(items)).Msg("ai questions generated")

	if !payload.Persist {
		return result, nil
	}

	drafts, err := questionDrafts(items, payload)
	if err != nil {
		return dto.AIGenerateResult{}, err
	}

	stored, err := s.questions.CreateGenerated(ctx, drafts, actor)
	if err != nil {
		if IsValidation(err) {
			return dto.AIGenerateResult{}, upstreamError("AI response contained an unusable question: %s", err.Error())
		}
		return dto.AIGenerateResult{}, err
	}
	result.Stored = stored

	recordActivity(ctx, s.activity, s.logger, actor, ActionQuestionsGenerated, "question", nil, map[string]interface{}{
		"provider": provider,
		"count":    len(stored),
		"subject":  payload.Subject,
	})

	return result, nil
}

// questionDrafts decodes extracted items into question payloads, filling
// subject, category and difficulty from the request when the model left
// them out.
func questionDrafts(items []json.RawMessage, payload dto.AIGenerateRequest) ([]dto.QuestionCreateRequest, error) {
	if len(items) == 0 {
		return nil, upstreamError("AI response contained no questions")
	}

	drafts := make([]dto.QuestionCreateRequest, 0, len(items))
	for i, item := range items {
		var draft dto.QuestionCreateRequest
		if err := json.Unmarshal(item, &draft); err != nil {
			return nil, upstreamError("AI question %d is not a valid question object", i+1)
		}
		if strings.TrimSpace(draft.Subject) == "" {
			draft.Subject = payload.Subject
		}
		if strings.TrimSpace(draft.Category) == "" {
			draft.Category = payload.Category
		}
		if draft.Difficulty == "" {
			draft.Difficulty = payload.Difficulty
		}
		drafts = append(drafts, draft)
	}
	return drafts, nil
}
