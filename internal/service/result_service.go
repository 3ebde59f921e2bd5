package service

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/noah-isme/nepses-go-api/internal/dto"
	"github.com/noah-isme/nepses-go-api/internal/models"
	"github.com/noah-isme/nepses-go-api/internal/observability"
	"github.com/noah-isme/nepses-go-api/internal/repository"
)

var errAssignmentNotCompleted = newError(ErrValidation, "Assignment must be completed before it can be graded")

// ResultService grades completed assignments into immutable results.
type ResultService interface {
	Record(ctx context.Context, payload dto.ResultCreateRequest, actor ActivityActor) (dto.ResultResponse, error)
	Get(ctx context.Context, id uint, actor ActivityActor) (dto.ResultResponse, error)
	ListByStudent(ctx context.Context, studentID uint, actor ActivityActor) ([]dto.ResultResponse, error)
}

type resultService struct {
	results     repository.ResultRepository
	assignments repository.AssignmentRepository
	papers      repository.ExamPaperRepository
	questions   repository.QuestionRepository
	users       repository.UserRepository
	validator   *validator.Validate
	activity    ActivityRecorder
	events      AssignmentEventPublisher
	logger      zerolog.Logger
	now         func() time.Time
}

// NewResultService constructs the result recording service.
func NewResultService(results repository.ResultRepository, assignments repository.AssignmentRepository, papers repository.ExamPaperRepository, questions repository.QuestionRepository, users repository.UserRepository, validate *validator.Validate, activity ActivityRecorder, events AssignmentEventPublisher, logger zerolog.Logger) ResultService {
	return &resultService{
		results:     results,
		assignments: assignments,
		papers:      papers,
		questions:   questions,
		users:       users,
		validator:   validate,
		activity:    activity,
		events:      events,
		logger:      logger.With().Str("component", "result_service").Logger(),
		now:         time.Now,
	}
}

// Record grades a completed assignment. A second result for the same
// (exam, student) pair is a conflict.
func (s *resultService) Record(ctx context.Context, payload dto.ResultCreateRequest, actor ActivityActor) (dto.ResultResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ResultResponse{}, err
	}

	assignment, err := s.assignments.GetByID(ctx, payload.AssignmentID)
	if err != nil {
		if repository.IsNotFound(err) {
			return dto.ResultResponse{}, ErrAssignmentNotFound
		}
		return dto.ResultResponse{}, err
	}
	if !actor.CanAccessStudent(assignment.StudentID) {
		return dto.ResultResponse{}, ErrNotOwner
	}
	if !assignment.IsCompleted() {
		return dto.ResultResponse{}, errAssignmentNotCompleted
	}

	paper, err := s.paperFor(ctx, assignment)
	if err != nil {
		return dto.ResultResponse{}, err
	}

	questions, err := s.questions.GetByIDs(ctx, paper.QuestionIDs)
	if err != nil {
		return dto.ResultResponse{}, err
	}

	answers := assignment.AnswerSheet()
	grade := gradeAnswers(paper.QuestionIDs, questions, answers)

	assignmentID := assignment.ID
	result := models.Result{
		StudentID:      assignment.StudentID,
		ExamID:         assignment.ExamID,
		AssignmentID:   &assignmentID,
		Answers:        datatypes.NewJSONType(answers),
		Score:          grade.Score,
		TotalQuestions: grade.Total,
		CorrectAnswers: grade.Correct,
		SubmittedAt:    s.now().UTC(),
		TimeTaken:      timeTaken(assignment, paper),
	}

	if err := s.results.Create(ctx, &result); err != nil {
		if repository.IsDuplicateKey(err) {
			return dto.ResultResponse{}, ErrResultExists
		}
		return dto.ResultResponse{}, err
	}

	observability.ResultsRecorded().Inc()
	s.logger.Info().Uint("result_id", result.ID).Uint("exam_id", result.ExamID).Uint("student_id", result.StudentID).Float64("score", result.Score).Msg("result recorded")
	recordActivity(ctx, s.activity, s.logger, actor, ActionResultRecorded, "result", &result.ID, map[string]interface{}{
		"assignment_id": assignment.ID,
		"score":         result.Score,
	})

	score := result.Score
	resultID := result.ID
	publishEvent(ctx, s.events, s.logger, AssignmentEvent{
		Type:         EventResultRecorded,
		AssignmentID: assignment.ID,
		ExamID:       result.ExamID,
		StudentID:    result.StudentID,
		Status:       assignment.Status,
		ResultID:     &resultID,
		Score:        &score,
		OccurredAt:   result.SubmittedAt,
	})

	return dto.NewResultResponse(result), nil
}

func (s *resultService) Get(ctx context.Context, id uint, actor ActivityActor) (dto.ResultResponse, error) {
	result, err := s.results.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return dto.ResultResponse{}, ErrResultNotFound
		}
		return dto.ResultResponse{}, err
	}
	if !actor.CanAccessStudent(result.StudentID) {
		return dto.ResultResponse{}, ErrNotOwner
	}
	return dto.NewResultResponse(result), nil
}

func (s *resultService) ListByStudent(ctx context.Context, studentID uint, actor ActivityActor) ([]dto.ResultResponse, error) {
	if !actor.CanAccessStudent(studentID) {
		return nil, ErrNotOwner
	}
	if _, err := findStudent(ctx, s.users, studentID); err != nil {
		return nil, err
	}

	results, err := s.results.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return dto.NewResultResponseSlice(results), nil
}

func (s *resultService) paperFor(ctx context.Context, assignment models.Assignment) (models.ExamPaper, error) {
	if assignment.Exam != nil {
		return *assignment.Exam, nil
	}

	paper, err := s.papers.GetByID(ctx, assignment.ExamID)
	if err != nil {
		if repository.IsNotFound(err) {
			return models.ExamPaper{}, ErrExamNotFound
		}
		return models.ExamPaper{}, err
	}
	return paper, nil
}

type grade struct {
	Correct int
	Total   int
	Score   float64
}

// gradeAnswers counts the paper's questions whose selected option matches the
// correct one. Answers are keyed by question id. Total is the paper's question
// count, so questions deleted since assembly count as wrong.
func gradeAnswers(questionIDs []uint, questions []models.Question, answers models.AnswerSheet) grade {
	byID := make(map[uint]models.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	g := grade{Total: len(questionIDs)}
	for _, id := range questionIDs {
		q, ok := byID[id]
		if !ok {
			continue
		}
		selected, answered := answers[strconv.FormatUint(uint64(id), 10)]
		if answered && q.IsCorrect(selected) {
			g.Correct++
		}
	}
	g.Score = scorePercent(g.Correct, g.Total)
	return g
}

// scorePercent returns correct/total as a percentage rounded to two decimals.
func scorePercent(correct, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(correct)*10000/float64(total)) / 100
}

// timeTaken is the wall-clock time between start and completion when both
// are known, otherwise the paper duration minus the time left on the clock.
func timeTaken(a models.Assignment, paper models.ExamPaper) *int {
	var seconds int
	switch {
	case a.StartedAt != nil && a.CompletedAt != nil:
		seconds = int(a.CompletedAt.Sub(*a.StartedAt).Seconds())
	case a.TimeRemaining != nil:
		seconds = paper.Duration*60 - *a.TimeRemaining
	default:
		return nil
	}
	if seconds < 0 {
		seconds = 0
	}
	return &seconds
}
