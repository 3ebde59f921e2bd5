package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/nepses-go-api/internal/dto"
	"github.com/noah-isme/nepses-go-api/internal/models"
	"github.com/noah-isme/nepses-go-api/internal/repository"
)

func setupExamPaperService(t *testing.T, cache *redis.Client) (*gorm.DB, ExamPaperService, *stubActivityRecorder) {
	t.Helper()

	db := setupServiceDB(t)
	activity := &stubActivityRecorder{}
	svc := NewExamPaperService(
		repository.NewExamPaperRepository(db),
		repository.NewQuestionRepository(db),
		newValidator(),
		cache,
		time.Minute,
		activity,
		zerolog.Nop(),
	)
	return db, svc, activity
}

func questionIDs(questions []models.Question) []uint {
	ids := make([]uint, 0, len(questions))
	for _, q := range questions {
		ids = append(ids, q.ID)
	}
	return ids
}

func TestSampleQuestionIDsDrawsWithoutReplacement(t *testing.T) {
	pool := []models.Question{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}, {ID: 5}}

	first := func(n int) int { return 0 }
	require.Equal(t, []uint{1, 5, 4}, sampleQuestionIDs(pool, 3, first))

	last := func(n int) int { return n - 1 }
	require.Equal(t, []uint{5, 4, 3, 2, 1}, sampleQuestionIDs(pool, 5, last))

	// The pool itself is left untouched.
	require.Equal(t, uint(1), pool[0].ID)
}

func TestExamPaperServiceGenerateSamplesFilteredPool(t *testing.T) {
	db, svc, activity := setupExamPaperService(t, nil)
	english := createQuestions(t, db, 10, "English", "Grammar", models.DifficultyMedium)
	createQuestions(t, db, 5, "Math", "Algebra", models.DifficultyMedium)

	paper, err := svc.Generate(context.Background(), dto.ExamPaperGenerateRequest{
		Subject:      "English",
		Category:     "Grammar",
		NumQuestions: 4,
	}, staffActor())
	require.NoError(t, err)

	require.Equal(t, "English Grammar Exam", paper.Title)
	require.Equal(t, models.ProvenanceGenerated, paper.Provenance)
	require.True(t, paper.IsAIGenerated)
	require.Equal(t, models.DefaultPaperDuration, paper.Duration)
	require.Len(t, paper.QuestionIDs, 4)

	allowed := make(map[uint]struct{}, len(english))
	for _, id := range questionIDs(english) {
		allowed[id] = struct{}{}
	}
	seen := make(map[uint]struct{})
	for _, id := range paper.QuestionIDs {
		require.Contains(t, allowed, id)
		require.NotContains(t, seen, id)
		seen[id] = struct{}{}
	}
	require.Equal(t, []string{ActionExamGenerated}, activity.actions())
}

func TestExamPaperServiceGenerateWholePool(t *testing.T) {
	db, svc, _ := setupExamPaperService(t, nil)
	pool := createQuestions(t, db, 3, "English", "Grammar", models.DifficultyHard)

	paper, err := svc.Generate(context.Background(), dto.ExamPaperGenerateRequest{
		Title:        "Hard Grammar",
		Subject:      "English",
		Category:     "Grammar",
		Difficulty:   models.DifficultyHard,
		NumQuestions: 3,
		Duration:     ptrInt(45),
	}, staffActor())
	require.NoError(t, err)
	require.ElementsMatch(t, questionIDs(pool), paper.QuestionIDs)
	require.Equal(t, 45, paper.Duration)
}

func TestExamPaperServiceGenerateInsufficientPool(t *testing.T) {
	db, svc, _ := setupExamPaperService(t, nil)
	createQuestions(t, db, 10, "English", "Grammar", models.DifficultyMedium)

	_, err := svc.Generate(context.Background(), dto.ExamPaperGenerateRequest{
		Subject:      "English",
		Category:     "Grammar",
		NumQuestions: 20,
	}, staffActor())
	require.Error(t, err)
	require.ErrorIs(t, err, ErrInsufficientData)
	require.Equal(t, "Not enough questions available. Found 10, but 20 required.", err.Error())

	var insufficient *InsufficientQuestionsError
	require.True(t, errors.As(err, &insufficient))
	require.Equal(t, 10, insufficient.Available)
	require.Equal(t, 20, insufficient.Requested)

	var count int64
	require.NoError(t, db.Model(&models.ExamPaper{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestExamPaperServiceCreateRejectsUnknownQuestion(t *testing.T) {
	db, svc, activity := setupExamPaperService(t, nil)
	questions := createQuestions(t, db, 1, "English", "Grammar", models.DifficultyEasy)

	_, err := svc.Create(context.Background(), dto.ExamPaperCreateRequest{
		Title:     "Broken",
		Subject:   "English",
		Category:  "Grammar",
		Questions: []uint{questions[0].ID, 9999},
	}, staffActor())
	require.ErrorIs(t, err, ErrValidation)
	require.Contains(t, err.Error(), "Found 1 of 2")
	require.Empty(t, activity.actions())
}

func TestExamPaperServiceCreateKeepsOrder(t *testing.T) {
	db, svc, activity := setupExamPaperService(t, nil)
	q := createQuestions(t, db, 3, "English", "Grammar", models.DifficultyEasy)
	order := []uint{q[2].ID, q[0].ID, q[1].ID}

	created, err := svc.Create(context.Background(), dto.ExamPaperCreateRequest{
		Title:         " Ordered ",
		Subject:       "English",
		Category:      "Grammar",
		Questions:     order,
		IsAIGenerated: true,
	}, staffActor())
	require.NoError(t, err)
	require.Equal(t, "Ordered", created.Title)
	require.Equal(t, models.ProvenanceExplicit, created.Provenance)
	require.True(t, created.IsAIGenerated)
	require.Equal(t, models.DefaultPaperDuration, created.Duration)
	require.Equal(t, []string{ActionExamCreated}, activity.actions())

	detail, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, detail.Questions, 3)
	for i, question := range detail.Questions {
		require.Equal(t, order[i], question.ID)
	}
}

func TestExamPaperServiceCreateRejectsEmptyQuestionList(t *testing.T) {
	_, svc, _ := setupExamPaperService(t, nil)

	_, err := svc.Create(context.Background(), dto.ExamPaperCreateRequest{
		Title:    "Empty",
		Subject:  "English",
		Category: "Grammar",
	}, staffActor())
	require.True(t, IsValidation(err))
}

func TestExamPaperServiceUpdateRevalidatesQuestions(t *testing.T) {
	db, svc, _ := setupExamPaperService(t, nil)
	q := createQuestions(t, db, 2, "English", "Grammar", models.DifficultyEasy)
	paper := createPaper(t, db, q)

	_, err := svc.Update(context.Background(), paper.ID, dto.ExamPaperUpdateRequest{
		Questions: &[]uint{q[0].ID, 4242},
	}, staffActor())
	require.ErrorIs(t, err, ErrValidation)

	updated, err := svc.Update(context.Background(), paper.ID, dto.ExamPaperUpdateRequest{
		Title: ptrString("Renamed"),
	}, staffActor())
	require.NoError(t, err)
	require.Equal(t, "Renamed", updated.Title)
	require.Equal(t, questionIDs(q), updated.QuestionIDs)

	updated, err = svc.Update(context.Background(), paper.ID, dto.ExamPaperUpdateRequest{
		Questions: &[]uint{q[1].ID},
	}, staffActor())
	require.NoError(t, err)
	require.Equal(t, []uint{q[1].ID}, updated.QuestionIDs)
	require.Equal(t, 1, updated.QuestionCount)
}

func TestExamPaperServiceNotFound(t *testing.T) {
	_, svc, _ := setupExamPaperService(t, nil)

	_, err := svc.Get(context.Background(), 77)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Update(context.Background(), 77, dto.ExamPaperUpdateRequest{Title: ptrString("x")}, staffActor())
	require.ErrorIs(t, err, ErrNotFound)

	require.ErrorIs(t, svc.Delete(context.Background(), 77, staffActor()), ErrNotFound)
}

func TestExamPaperServiceCachesDetail(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	db, svc, _ := setupExamPaperService(t, client)
	q := createQuestions(t, db, 2, "English", "Grammar", models.DifficultyEasy)
	paper := createPaper(t, db, q)

	_, err := svc.Get(context.Background(), paper.ID)
	require.NoError(t, err)
	require.True(t, mr.Exists(examCacheKey(paper.ID)))

	// A cached read does not hit the database.
	require.NoError(t, db.Model(&models.ExamPaper{}).Where("id = ?", paper.ID).Update("title", "Stale").Error)
	cached, err := svc.Get(context.Background(), paper.ID)
	require.NoError(t, err)
	require.Equal(t, "Grammar Paper", cached.Title)
	require.Len(t, cached.Questions, 2)

	_, err = svc.Update(context.Background(), paper.ID, dto.ExamPaperUpdateRequest{Duration: ptrInt(90)}, staffActor())
	require.NoError(t, err)
	require.False(t, mr.Exists(examCacheKey(paper.ID)))

	fresh, err := svc.Get(context.Background(), paper.ID)
	require.NoError(t, err)
	require.Equal(t, 90, fresh.Duration)

	require.NoError(t, svc.Delete(context.Background(), paper.ID, staffActor()))
	require.False(t, mr.Exists(examCacheKey(paper.ID)))
}
