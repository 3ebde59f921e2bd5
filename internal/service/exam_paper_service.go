package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/nepses-go-api/internal/dto"
	"github.com/noah-isme/nepses-go-api/internal/models"
	"github.com/noah-isme/nepses-go-api/internal/observability"
	"github.com/noah-isme/nepses-go-api/internal/repository"
)

// ExamPaperService assembles and maintains exam papers.
type ExamPaperService interface {
	List(ctx context.Context, req dto.ExamPaperListRequest) ([]dto.ExamPaperResponse, error)
	Get(ctx context.Context, id uint) (dto.ExamPaperResponse, error)
	Create(ctx context.Context, payload dto.ExamPaperCreateRequest, actor ActivityActor) (dto.ExamPaperResponse, error)
	Generate(ctx context.Context, payload dto.ExamPaperGenerateRequest, actor ActivityActor) (dto.ExamPaperResponse, error)
	Update(ctx context.Context, id uint, payload dto.ExamPaperUpdateRequest, actor ActivityActor) (dto.ExamPaperResponse, error)
	Delete(ctx context.Context, id uint, actor ActivityActor) error
}

type examPaperService struct {
	papers    repository.ExamPaperRepository
	questions repository.QuestionRepository
	validator *validator.Validate
	cache     *redis.Client
	cacheTTL  time.Duration
	activity  ActivityRecorder
	logger    zerolog.Logger
	intn      func(n int) int
}

// NewExamPaperService constructs the paper service. cache may be nil.
func NewExamPaperService(papers repository.ExamPaperRepository, questions repository.QuestionRepository, validate *validator.Validate, cache *redis.Client, ttl time.Duration, activity ActivityRecorder, logger zerolog.Logger) ExamPaperService {
	return &examPaperService{
		papers:    papers,
		questions: questions,
		validator: validate,
		cache:     cache,
		cacheTTL:  ttl,
		activity:  activity,
		logger:    logger.With().Str("component", "exam_paper_service").Logger(),
		intn:      rand.IntN,
	}
}

func (s *examPaperService) List(ctx context.Context, req dto.ExamPaperListRequest) ([]dto.ExamPaperResponse, error) {
	papers, err := s.papers.List(ctx, repository.ExamPaperFilter{
		Subject:  strings.TrimSpace(req.Subject),
		Category: strings.TrimSpace(req.Category),
	})
	if err != nil {
		return nil, err
	}
	return dto.NewExamPaperResponseSlice(papers), nil
}

// Get returns the paper with its questions resolved in paper order.
func (s *examPaperService) Get(ctx context.Context, id uint) (dto.ExamPaperResponse, error) {
	if cached, ok := s.readCache(ctx, id); ok {
		return cached, nil
	}

	paper, err := s.papers.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return dto.ExamPaperResponse{}, ErrExamNotFound
		}
		return dto.ExamPaperResponse{}, err
	}

	found, err := s.questions.GetByIDs(ctx, paper.QuestionIDs)
	if err != nil {
		return dto.ExamPaperResponse{}, err
	}

	byID := make(map[uint]models.Question, len(found))
	for _, q := range found {
		byID[q.ID] = q
	}

	response := dto.NewExamPaperResponse(paper)
	response.Questions = make([]dto.QuestionResponse, 0, len(paper.QuestionIDs))
	for _, qid := range paper.QuestionIDs {
		q, ok := byID[qid]
		if !ok {
			s.logger.Warn().Uint("exam_id", paper.ID).Uint("question_id", qid).Msg("paper references a missing question")
			continue
		}
		response.Questions = append(response.Questions, dto.NewQuestionResponse(q))
	}

	s.writeCache(ctx, response)
	return response, nil
}

// Create builds a paper from an explicit question list. Every reference must
// resolve to an existing question.
func (s *examPaperService) Create(ctx context.Context, payload dto.ExamPaperCreateRequest, actor ActivityActor) (dto.ExamPaperResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ExamPaperResponse{}, err
	}

	if err := s.checkReferences(ctx, payload.Questions); err != nil {
		return dto.ExamPaperResponse{}, err
	}

	paper := models.ExamPaper{
		Title:         strings.TrimSpace(payload.Title),
		Subject:       strings.TrimSpace(payload.Subject),
		Category:      strings.TrimSpace(payload.Category),
		QuestionIDs:   append([]uint(nil), payload.Questions...),
		Duration:      durationOrDefault(payload.Duration),
		Provenance:    models.ProvenanceExplicit,
		IsAIGenerated: payload.IsAIGenerated,
		CreatedByID:   actor.idPointer(),
	}

	if err := s.papers.Create(ctx, &paper); err != nil {
		return dto.ExamPaperResponse{}, err
	}

	observability.ExamPapersBuilt().WithLabelValues(paper.Provenance).Inc()
	s.logger.Info().Uint("exam_id", paper.ID).Int("questions", paper.QuestionCount()).Msg("exam paper created")
	recordActivity(ctx, s.activity, s.logger, actor, ActionExamCreated, "exam", &paper.ID, map[string]interface{}{
		"title":     paper.Title,
		"questions": paper.QuestionCount(),
	})

	return dto.NewExamPaperResponse(paper), nil
}

// Generate builds a paper by sampling the filtered question pool without
// replacement.
func (s *examPaperService) Generate(ctx context.Context, payload dto.ExamPaperGenerateRequest, actor ActivityActor) (dto.ExamPaperResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ExamPaperResponse{}, err
	}

	subject := strings.TrimSpace(payload.Subject)
	category := strings.TrimSpace(payload.Category)

	pool, err := s.questions.List(ctx, repository.QuestionFilter{
		Subject:    subject,
		Category:   category,
		Difficulty: payload.Difficulty,
	})
	if err != nil {
		return dto.ExamPaperResponse{}, err
	}

	if len(pool) < payload.NumQuestions {
		return dto.ExamPaperResponse{}, &InsufficientQuestionsError{Available: len(pool), Requested: payload.NumQuestions}
	}

	title := strings.TrimSpace(payload.Title)
	if title == "" {
		title = fmt.Sprintf("%s %s Exam", subject, category)
	}

	paper := models.ExamPaper{
		Title:         title,
		Subject:       subject,
		Category:      category,
		QuestionIDs:   sampleQuestionIDs(pool, payload.NumQuestions, s.intn),
		Duration:      durationOrDefault(payload.Duration),
		Provenance:    models.ProvenanceGenerated,
		IsAIGenerated: true,
		CreatedByID:   actor.idPointer(),
	}

	if err := s.papers.Create(ctx, &paper); err != nil {
		return dto.ExamPaperResponse{}, err
	}

	observability.ExamPapersBuilt().WithLabelValues(paper.Provenance).Inc()
	s.logger.Info().Uint("exam_id", paper.ID).Int("pool", len(pool)).Int("questions", paper.QuestionCount()).Msg("exam paper generated")
	recordActivity(ctx, s.activity, s.logger, actor, ActionExamGenerated, "exam", &paper.ID, map[string]interface{}{
		"title":      paper.Title,
		"questions":  paper.QuestionCount(),
		"pool_size":  len(pool),
		"difficulty": payload.Difficulty,
	})

	return dto.NewExamPaperResponse(paper), nil
}

func (s *examPaperService) Update(ctx context.Context, id uint, payload dto.ExamPaperUpdateRequest, actor ActivityActor) (dto.ExamPaperResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ExamPaperResponse{}, err
	}

	paper, err := s.papers.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return dto.ExamPaperResponse{}, ErrExamNotFound
		}
		return dto.ExamPaperResponse{}, err
	}

	changedFields := make([]string, 0)
	if payload.Title != nil {
		paper.Title = strings.TrimSpace(*payload.Title)
		changedFields = append(changedFields, "title")
	}
	if payload.Subject != nil {
		paper.Subject = strings.TrimSpace(*payload.Subject)
		changedFields = append(changedFields, "subject")
	}
	if payload.Category != nil {
		paper.Category = strings.TrimSpace(*payload.Category)
		changedFields = append(changedFields, "category")
	}
	if payload.Duration != nil {
		paper.Duration = *payload.Duration
		changedFields = append(changedFields, "duration")
	}
	if payload.Questions != nil {
		if err := s.checkReferences(ctx, *payload.Questions); err != nil {
			return dto.ExamPaperResponse{}, err
		}
		paper.QuestionIDs = append([]uint(nil), (*payload.Questions)...)
		changedFields = append(changedFields, "questions")
	}

	if err := s.papers.Update(ctx, &paper); err != nil {
		return dto.ExamPaperResponse{}, err
	}
	s.invalidateCache(ctx, paper.ID)

	if len(changedFields) > 0 {
		recordActivity(ctx, s.activity, s.logger, actor, ActionExamUpdated, "exam", &paper.ID, map[string]interface{}{
			"fields": changedFields,
		})
	}

	return dto.NewExamPaperResponse(paper), nil
}

func (s *examPaperService) Delete(ctx context.Context, id uint, actor ActivityActor) error {
	if err := s.papers.Delete(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return ErrExamNotFound
		}
		return err
	}
	s.invalidateCache(ctx, id)

	s.logger.Info().Uint("exam_id", id).Msg("exam paper deleted")
	recordActivity(ctx, s.activity, s.logger, actor, ActionExamDeleted, "exam", &id, nil)
	return nil
}

// checkReferences fails with a validation error unless every id resolves to
// a stored question.
func (s *examPaperService) checkReferences(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return validationError("Questions array is required")
	}

	found, err := s.questions.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(found) != len(ids) {
		return validationError("Some questions are invalid. Found %d of %d referenced questions.", len(found), len(ids))
	}
	return nil
}

// sampleQuestionIDs draws count questions uniformly at random from pool
// without replacement. Selection order is kept. count must not exceed len(pool).
func sampleQuestionIDs(pool []models.Question, count int, intn func(n int) int) []uint {
	remaining := make([]uint, len(pool))
	for i, q := range pool {
		remaining[i] = q.ID
	}

	selected := make([]uint, 0, count)
	for len(selected) < count {
		idx := intn(len(remaining))
		selected = append(selected, remaining[idx])
		last := len(remaining) - 1
		remaining[idx] = remaining[last]
		remaining = remaining[:last]
	}
	return selected
}

func durationOrDefault(duration *int) int {
	if duration == nil || *duration <= 0 {
		return models.DefaultPaperDuration
	}
	return *duration
}

func examCacheKey(id uint) string {
	return fmt.Sprintf("exam:paper:%d", id)
}

func (s *examPaperService) readCache(ctx context.Context, id uint) (dto.ExamPaperResponse, bool) {
	if s.cache == nil {
		return dto.ExamPaperResponse{}, false
	}

	cached, err := s.cache.Get(ctx, examCacheKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			observability.ExamPaperCacheReads().WithLabelValues("miss").Inc()
		} else {
			observability.ExamPaperCacheReads().WithLabelValues("error").Inc()
			s.logger.Warn().Err(err).Uint("exam_id", id).Msg("failed to read exam cache")
		}
		return dto.ExamPaperResponse{}, false
	}

	var response dto.ExamPaperResponse
	if err := json.Unmarshal([]byte(cached), &response); err != nil {
		s.logger.Warn().Err(err).Uint("exam_id", id).Msg("discarding malformed exam cache entry")
		return dto.ExamPaperResponse{}, false
	}

	observability.ExamPaperCacheReads().WithLabelValues("hit").Inc()
	return response, true
}

func (s *examPaperService) writeCache(ctx context.Context, response dto.ExamPaperResponse) {
	if s.cache == nil {
		return
	}

	payload, err := json.Marshal(response)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, examCacheKey(response.ID), payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("exam_id", response.ID).Msg("failed to store exam cache")
	}
}

func (s *examPaperService) invalidateCache(ctx context.Context, id uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, examCacheKey(id)).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("exam_id", id).Msg("failed to invalidate exam cache")
	}
}
