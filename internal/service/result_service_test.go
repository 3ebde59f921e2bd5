package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/nepses-go-api/internal/dto"
	"github.com/noah-isme/nepses-go-api/internal/models"
	"github.com/noah-isme/nepses-go-api/internal/repository"
)

func setupResultService(t *testing.T) (*gorm.DB, ResultService, *stubActivityRecorder, *recordingPublisher) {
	t.Helper()

	db := setupServiceDB(t)
	activity := &stubActivityRecorder{}
	events := &recordingPublisher{}

	svc := NewResultService(
		repository.NewResultRepository(db),
		repository.NewAssignmentRepository(db),
		repository.NewExamPaperRepository(db),
		repository.NewQuestionRepository(db),
		repository.NewUserRepository(db),
		newValidator(),
		activity,
		events,
		zerolog.Nop(),
	)
	if concrete, ok := svc.(*resultService); ok {
		concrete.now = func() time.Time { return fixedNow.Add(time.Hour) }
	}
	return db, svc, activity, events
}

func createAssignmentRow(t *testing.T, db *gorm.DB, paper models.ExamPaper, student models.User, status string, answers models.AnswerSheet) models.Assignment {
	t.Helper()
	started := fixedNow
	completed := fixedNow.Add(25 * time.Minute)
	assignment := models.Assignment{
		ExamID:     paper.ID,
		StudentID:  student.ID,
		Status:     status,
		DueDate:    fixedNow.Add(48 * time.Hour),
		AssignedAt: fixedNow.Add(-time.Hour),
		StartedAt:  &started,
		Answers:    datatypes.NewJSONType(answers),
	}
	if status == models.AssignmentStatusCompleted {
		assignment.CompletedAt = &completed
	}
	require.NoError(t, db.Create(&assignment).Error)
	return assignment
}

func TestResultServiceRecordGradesCompletedAssignment(t *testing.T) {
	db, svc, activity, events := setupResultService(t)
	q := createQuestions(t, db, 3, "English", "Grammar", models.DifficultyMedium)
	paper := createPaper(t, db, q)
	student := createStudent(t, db, "John Doe", "1234567890123")

	assignment := createAssignmentRow(t, db, paper, student, models.AssignmentStatusCompleted, models.AnswerSheet{
		answerKey(q[0].ID): 1,
		answerKey(q[1].ID): 1,
		answerKey(q[2].ID): 0,
	})

	result, err := svc.Record(context.Background(), dto.ResultCreateRequest{AssignmentID: assignment.ID}, studentActor(student))
	require.NoError(t, err)
	require.Equal(t, 2, result.CorrectAnswers)
	require.Equal(t, 3, result.TotalQuestions)
	require.InDelta(t, 66.67, result.Score, 0.0001)
	require.Equal(t, paper.ID, result.ExamID)
	require.Equal(t, student.ID, result.StudentID)
	require.NotNil(t, result.TimeTaken)
	require.Equal(t, 1500, *result.TimeTaken)
	require.Len(t, result.Answers, 3)

	require.Equal(t, []string{ActionResultRecorded}, activity.actions())
	require.Equal(t, []string{EventResultRecorded}, events.types())

	stored, err := svc.Get(context.Background(), result.ID, studentActor(student))
	require.NoError(t, err)
	require.Equal(t, result.Score, stored.Score)
}

func TestResultServiceRecordTwiceConflicts(t *testing.T) {
	db, svc, _, _ := setupResultService(t)
	q := createQuestions(t, db, 2, "English", "Grammar", models.DifficultyMedium)
	paper := createPaper(t, db, q)
	student := createStudent(t, db, "John Doe", "1234567890123")
	assignment := createAssignmentRow(t, db, paper, student, models.AssignmentStatusCompleted, models.AnswerSheet{})

	first, err := svc.Record(context.Background(), dto.ResultCreateRequest{AssignmentID: assignment.ID}, staffActor())
	require.NoError(t, err)
	require.Zero(t, first.Score)
	require.Zero(t, first.CorrectAnswers)
	require.Equal(t, 2, first.TotalQuestions)

	_, err = svc.Record(context.Background(), dto.ResultCreateRequest{AssignmentID: assignment.ID}, staffActor())
	require.ErrorIs(t, err, ErrConflict)
}

func TestResultServiceRecordRequiresCompletion(t *testing.T) {
	db, svc, _, _ := setupResultService(t)
	q := createQuestions(t, db, 2, "English", "Grammar", models.DifficultyMedium)
	paper := createPaper(t, db, q)
	student := createStudent(t, db, "John Doe", "1234567890123")
	assignment := createAssignmentRow(t, db, paper, student, models.AssignmentStatusInProgress, models.AnswerSheet{})

	_, err := svc.Record(context.Background(), dto.ResultCreateRequest{AssignmentID: assignment.ID}, staffActor())
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Record(context.Background(), dto.ResultCreateRequest{AssignmentID: 999}, staffActor())
	require.ErrorIs(t, err, ErrAssignmentNotFound)

	_, err = svc.Record(context.Background(), dto.ResultCreateRequest{}, staffActor())
	require.True(t, IsValidation(err))
}

func TestResultServiceOwnership(t *testing.T) {
	db, svc, _, _ := setupResultService(t)
	q := createQuestions(t, db, 1, "English", "Grammar", models.DifficultyMedium)
	paper := createPaper(t, db, q)
	owner := createStudent(t, db, "John Doe", "1234567890123")
	other := createStudent(t, db, "Jane Smith", "9876543210987")
	assignment := createAssignmentRow(t, db, paper, owner, models.AssignmentStatusCompleted, models.AnswerSheet{answerKey(q[0].ID): 1})

	_, err := svc.Record(context.Background(), dto.ResultCreateRequest{AssignmentID: assignment.ID}, studentActor(other))
	require.ErrorIs(t, err, ErrForbidden)

	result, err := svc.Record(context.Background(), dto.ResultCreateRequest{AssignmentID: assignment.ID}, staffActor())
	require.NoError(t, err)
	require.Equal(t, float64(100), result.Score)

	_, err = svc.Get(context.Background(), result.ID, studentActor(other))
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.ListByStudent(context.Background(), owner.ID, studentActor(other))
	require.ErrorIs(t, err, ErrForbidden)

	list, err := svc.ListByStudent(context.Background(), owner.ID, studentActor(owner))
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = svc.Get(context.Background(), 999, staffActor())
	require.ErrorIs(t, err, ErrResultNotFound)
}

func TestResultServiceListByStudentUnknownStudent(t *testing.T) {
	db, svc, _, _ := setupResultService(t)
	proctor := createStaff(t, db, "proctor", models.RoleModerator)

	_, err := svc.ListByStudent(context.Background(), 999, staffActor())
	require.ErrorIs(t, err, ErrStudentNotFound)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.ListByStudent(context.Background(), proctor.ID, staffActor())
	require.ErrorIs(t, err, ErrStudentNotFound)

	student := createStudent(t, db, "John Doe", "1234567890123")
	list, err := svc.ListByStudent(context.Background(), student.ID, studentActor(student))
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestGradeAnswersCountsMissingQuestionsAsWrong(t *testing.T) {
	questions := []models.Question{
		{ID: 1, CorrectOption: 0},
		{ID: 2, CorrectOption: 3},
	}
	answers := models.AnswerSheet{"1": 0, "2": 3, "3": 1}

	g := gradeAnswers([]uint{1, 2, 3}, questions, answers)
	require.Equal(t, 2, g.Correct)
	require.Equal(t, 3, g.Total)
	require.InDelta(t, 66.67, g.Score, 0.0001)

	empty := gradeAnswers(nil, nil, nil)
	require.Zero(t, empty.Total)
	require.Zero(t, empty.Score)
}

func TestScorePercentRounding(t *testing.T) {
	require.Equal(t, 33.33, scorePercent(1, 3))
	require.Equal(t, 66.67, scorePercent(2, 3))
	require.Equal(t, float64(100), scorePercent(7, 7))
	require.Zero(t, scorePercent(0, 0))
}

func TestTimeTakenFallsBackToRemainingClock(t *testing.T) {
	paper := models.ExamPaper{Duration: 30}

	remaining := 600
	require.Equal(t, 1200, *timeTaken(models.Assignment{TimeRemaining: &remaining}, paper))

	overrun := 5000
	require.Zero(t, *timeTaken(models.Assignment{TimeRemaining: &overrun}, paper))

	require.Nil(t, timeTaken(models.Assignment{}, paper))
}
