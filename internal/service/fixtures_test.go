package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/nepses-go-api/internal/database"
	"github.com/noah-isme/nepses-go-api/internal/dto"
	"github.com/noah-isme/nepses-go-api/internal/models"
)

var fixedNow = time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)

type stubActivityRecorder struct {
	mu      sync.Mutex
	entries []ActivityEntry
}

func (s *stubActivityRecorder) Record(_ context.Context, entry ActivityEntry) (dto.ActivityResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return dto.ActivityResponse{Action: entry.Action, EntityType: entry.EntityType, EntityID: entry.EntityID}, nil
}

func (s *stubActivityRecorder) actions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	actions := make([]string, 0, len(s.entries))
	for _, entry := range s.entries {
		actions = append(actions, entry.Action)
	}
	return actions
}

func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := database.Connect("sqlite", dsn)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func newValidator() *validator.Validate {
	return dto.NewValidator()
}

func createStudent(t *testing.T, db *gorm.DB, name, cnic string) models.User {
	t.Helper()
	user := models.User{Name: name, CNIC: &cnic, PasswordHash: "x", Role: models.RoleStudent}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createStaff(t *testing.T, db *gorm.DB, username, role string) models.User {
	t.Helper()
	user := models.User{Name: username, Username: &username, PasswordHash: "x", Role: role}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// createQuestions stores n questions whose correct option is always index 1.
func createQuestions(t *testing.T, db *gorm.DB, n int, subject, category, difficulty string) []models.Question {
	t.Helper()
	questions := make([]models.Question, 0, n)
	for i := 0; i < n; i++ {
		q := models.Question{
			Text:          fmt.Sprintf("%s question %d", subject, i+1),
			Options:       []string{"A", "B", "C", "D"},
			CorrectOption: 1,
			Subject:       subject,
			Category:      category,
			Difficulty:    difficulty,
		}
		require.NoError(t, db.Create(&q).Error)
		questions = append(questions, q)
	}
	return questions
}

func createPaper(t *testing.T, db *gorm.DB, questions []models.Question) models.ExamPaper {
	t.Helper()
	ids := make([]uint, 0, len(questions))
	for _, q := range questions {
		ids = append(ids, q.ID)
	}
	paper := models.ExamPaper{
		Title:       "Grammar Paper",
		Subject:     "English",
		Category:    "Grammar",
		QuestionIDs: ids,
		Duration:    30,
		Provenance:  models.ProvenanceExplicit,
	}
	require.NoError(t, db.Create(&paper).Error)
	return paper
}

func staffActor() ActivityActor {
	return ActivityActor{ID: 1, Role: models.RoleAdmin}
}

func studentActor(user models.User) ActivityActor {
	return ActivityActor{ID: user.ID, Role: models.RoleStudent}
}

func answerKey(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
