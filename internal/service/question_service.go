package service

import (
	"context"
	"errors"
	"html"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/noah-isme/nepses-go-api/internal/dto"
	"github.com/noah-isme/nepses-go-api/internal/models"
	"github.com/noah-isme/nepses-go-api/internal/repository"
)

// QuestionService manages the question bank.
type QuestionService interface {
	List(ctx context.Context, req dto.QuestionListRequest) ([]dto.QuestionResponse, error)
	Get(ctx context.Context, id uint) (dto.QuestionResponse, error)
	Create(ctx context.Context, payload dto.QuestionCreateRequest, actor ActivityActor) (dto.QuestionResponse, error)
	BulkCreate(ctx context.Context, payload dto.QuestionBulkRequest, actor ActivityActor) ([]dto.QuestionResponse, error)
	CreateGenerated(ctx context.Context, payloads []dto.QuestionCreateRequest, actor ActivityActor) ([]dto.QuestionResponse, error)
	Update(ctx context.Context, id uint, payload dto.QuestionUpdateRequest) (dto.QuestionResponse, error)
	Delete(ctx context.Context, id uint) error
}

type questionService struct {
	repo      repository.QuestionRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewQuestionService constructs the question bank service.
func NewQuestionService(repo repository.QuestionRepository, validate *validator.Validate, logger zerolog.Logger) QuestionService {
	return &questionService{
		repo:      repo,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "question_service").Logger(),
	}
}

func (s *questionService) List(ctx context.Context, req dto.QuestionListRequest) ([]dto.QuestionResponse, error) {
	questions, err := s.repo.List(ctx, repository.QuestionFilter{
		Subject:    strings.TrimSpace(req.Subject),
		Category:   strings.TrimSpace(req.Category),
		Difficulty: strings.TrimSpace(req.Difficulty),
	})
	if err != nil {
		return nil, err
	}
	return dto.NewQuestionResponseSlice(questions), nil
}

func (s *questionService) Get(ctx context.Context, id uint) (dto.QuestionResponse, error) {
	question, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return dto.QuestionResponse{}, ErrQuestionNotFound
		}
		return dto.QuestionResponse{}, err
	}
	return dto.NewQuestionResponse(question), nil
}

func (s *questionService) Create(ctx context.Context, payload dto.QuestionCreateRequest, actor ActivityActor) (dto.QuestionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.QuestionResponse{}, err
	}

	question, err := s.buildQuestion(payload, actor, false)
	if err != nil {
		return dto.QuestionResponse{}, err
	}

	if err := s.repo.Create(ctx, &question); err != nil {
		return dto.QuestionResponse{}, err
	}

	s.logger.Info().Uint("question_id", question.ID).Str("subject", question.Subject).Msg("question created")
	return dto.NewQuestionResponse(question), nil
}

func (s *questionService) BulkCreate(ctx context.Context, payload dto.QuestionBulkRequest, actor ActivityActor) ([]dto.QuestionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, err
	}
	return s.createMany(ctx, payload.Questions, actor, false)
}

// CreateGenerated stores machine-authored questions. Every item is validated
// like a manual entry and the batch is inserted all-or-nothing.
func (s *questionService) CreateGenerated(ctx context.Context, payloads []dto.QuestionCreateRequest, actor ActivityActor) ([]dto.QuestionResponse, error) {
	if len(payloads) == 0 {
		return nil, validationError("No questions to store")
	}
	for i, payload := range payloads {
		if err := s.validator.Struct(payload); err != nil {
			var fieldErrs validator.ValidationErrors
			if errors.As(err, &fieldErrs) {
				return nil, validationError("Generated question %d is invalid: %s", i+1, dto.DescribeValidation(fieldErrs))
			}
			return nil, err
		}
	}
	return s.createMany(ctx, payloads, actor, true)
}

func (s *questionService) createMany(ctx context.Context, payloads []dto.QuestionCreateRequest, actor ActivityActor, aiGenerated bool) ([]dto.QuestionResponse, error) {
	questions := make([]models.Question, 0, len(payloads))
	for i, payload := range payloads {
		question, err := s.buildQuestion(payload, actor, aiGenerated)
		if err != nil {
			return nil, validationError("Question %d: %s", i+1, err.Error())
		}
		questions = append(questions, question)
	}

	if err := s.repo.CreateBatch(ctx, questions); err != nil {
		return nil, err
	}

	s.logger.Info().Int("count", len(questions)).Bool("ai_generated", aiGenerated).Msg("questions inserted")
	return dto.NewQuestionResponseSlice(questions), nil
}

func (s *questionService) Update(ctx context.Context, id uint, payload dto.QuestionUpdateRequest) (dto.QuestionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.QuestionResponse{}, err
	}

	question, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return dto.QuestionResponse{}, ErrQuestionNotFound
		}
		return dto.QuestionResponse{}, err
	}

	if payload.Text != nil {
		question.Text = s.clean(*payload.Text)
	}
	if payload.Options != nil {
		question.Options = s.cleanOptions(*payload.Options)
	}
	if payload.CorrectOption != nil {
		question.CorrectOption = *payload.CorrectOption
	}
	if payload.Subject != nil {
		question.Subject = strings.TrimSpace(*payload.Subject)
	}
	if payload.Category != nil {
		question.Category = strings.TrimSpace(*payload.Category)
	}
	if payload.Difficulty != nil {
		question.Difficulty = *payload.Difficulty
	}

	if err := checkQuestion(question); err != nil {
		return dto.QuestionResponse{}, err
	}

	if err := s.repo.Update(ctx, &question); err != nil {
		return dto.QuestionResponse{}, err
	}

	return dto.NewQuestionResponse(question), nil
}

func (s *questionService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return ErrQuestionNotFound
		}
		return err
	}
	s.logger.Info().Uint("question_id", id).Msg("question deleted")
	return nil
}

func (s *questionService) buildQuestion(payload dto.QuestionCreateRequest, actor ActivityActor, aiGenerated bool) (models.Question, error) {
	difficulty := payload.Difficulty
	if difficulty == "" {
		difficulty = models.DifficultyMedium
	}

	question := models.Question{
		Text:          s.clean(payload.Text),
		Options:       s.cleanOptions(payload.Options),
		Subject:       strings.TrimSpace(payload.Subject),
		Category:      strings.TrimSpace(payload.Category),
		Difficulty:    difficulty,
		IsAIGenerated: aiGenerated,
		CreatedByID:   actor.idPointer(),
	}
	if payload.CorrectOption != nil {
		question.CorrectOption = *payload.CorrectOption
	}

	if err := checkQuestion(question); err != nil {
		return models.Question{}, err
	}
	return question, nil
}

// checkQuestion enforces the invariants the validator tags cannot express.
func checkQuestion(q models.Question) error {
	if q.Text == "" {
		return validationError("Question text is required")
	}
	if len(q.Options) < 2 {
		return validationError("A question needs at least 2 options")
	}
	for _, option := range q.Options {
		if option == "" {
			return validationError("Options must not be empty")
		}
	}
	if q.CorrectOption < 0 || q.CorrectOption >= len(q.Options) {
		return validationError("correctOption must be between 0 and %d", len(q.Options)-1)
	}
	return nil
}

func (s *questionService) clean(value string) string {
	return strings.TrimSpace(html.UnescapeString(s.sanitizer.Sanitize(value)))
}

func (s *questionService) cleanOptions(options []string) []string {
	cleaned := make([]string, 0, len(options))
	for _, option := range options {
		cleaned = append(cleaned, s.clean(option))
	}
	return cleaned
}
