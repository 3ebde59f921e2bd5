package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/nepses-go-api/internal/config"
	"github.com/noah-isme/nepses-go-api/internal/database"
	"github.com/noah-isme/nepses-go-api/internal/dto"
	"github.com/noah-isme/nepses-go-api/internal/handler"
	"github.com/noah-isme/nepses-go-api/internal/middleware"
	"github.com/noah-isme/nepses-go-api/internal/models"
	"github.com/noah-isme/nepses-go-api/internal/repository"
	"github.com/noah-isme/nepses-go-api/internal/router"
	"github.com/noah-isme/nepses-go-api/internal/service"
)

const testSecret = "handler-secret"

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Count   *int            `json:"count"`
}

type stubGenerator struct {
	text     string
	provider string
	err      error
	calls    int
}

func (s *stubGenerator) Generate(context.Context, string) (string, string, error) {
	s.calls++
	return s.text, s.provider, s.err
}

type testApp struct {
	app       *fiber.App
	db        *gorm.DB
	generator *stubGenerator
	admin     models.User
}

func setupApp(t *testing.T) *testApp {
	t.Helper()

	dsn := fmt.Sprintf("file:handler_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := database.Connect("sqlite", dsn)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	logger := zerolog.New(io.Discard)
	validate := dto.NewValidator()
	generator := &stubGenerator{provider: "openrouter"}

	userRepo := repository.NewUserRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	paperRepo := repository.NewExamPaperRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	resultRepo := repository.NewResultRepository(db)

	activityService := service.NewActivityService(repository.NewActivityLogRepository(db), logger)
	questionService := service.NewQuestionService(questionRepo, validate, logger)

	cfg := config.Config{AppName: "NEPSES Test", AppEnv: "test", JWTSecret: testSecret, AIRateLimit: 3, AIRateWindow: time.Minute}

	app := fiber.New()
	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:       handler.NewAuthHandler(service.NewAuthService(userRepo, validate, testSecret, time.Hour, logger), logger),
		QuestionHandler:   handler.NewQuestionHandler(questionService, logger),
		ExamHandler:       handler.NewExamHandler(service.NewExamPaperService(paperRepo, questionRepo, validate, nil, 0, activityService, logger), logger),
		AssignmentHandler: handler.NewAssignmentHandler(service.NewAssignmentService(assignmentRepo, paperRepo, userRepo, validate, activityService, nil, logger), logger),
		ResultHandler:     handler.NewResultHandler(service.NewResultService(resultRepo, assignmentRepo, paperRepo, questionRepo, userRepo, validate, activityService, nil, logger), logger),
		AIHandler:         handler.NewAIHandler(service.NewAIService(generator, questionService, validate, activityService, logger), logger),
		ActivityHandler:   handler.NewActivityHandler(activityService, logger),
		DB:                db,
		Logger:            logger,
	})

	username := "admin"
	admin := models.User{Name: "Admin User", Username: &username, PasswordHash: "x", Role: models.RoleAdmin}
	require.NoError(t, db.Create(&admin).Error)

	return &testApp{app: app, db: db, generator: generator, admin: admin}
}

func (a *testApp) student(t *testing.T, name, cnic string) models.User {
	t.Helper()
	user := models.User{Name: name, CNIC: &cnic, PasswordHash: "x", Role: models.RoleStudent}
	require.NoError(t, a.db.Create(&user).Error)
	return user
}

func tokenFor(t *testing.T, user models.User) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  strconv.FormatUint(uint64(user.ID), 10),
		"role": user.Role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

// call performs a request and returns the raw body alongside the decoded envelope.
func (a *testApp) call(t *testing.T, method, path, token string, body interface{}) (*http.Response, envelope, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	return resp, env, raw
}

func decodeData(t *testing.T, env envelope, target interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, target))
}

func seedBank(t *testing.T, a *testApp, n int) []dto.QuestionResponse {
	t.Helper()
	questions := make([]dto.QuestionCreateRequest, 0, n)
	for i := 0; i < n; i++ {
		correct := 1
		questions = append(questions, dto.QuestionCreateRequest{
			Text:          fmt.Sprintf("Grammar question %d", i+1),
			Options:       []string{"A", "B", "C", "D"},
			CorrectOption: &correct,
			Subject:       "English",
			Category:      "Grammar",
		})
	}

	resp, env, _ := a.call(t, http.MethodPost, "/api/questions/bulk", tokenFor(t, a.admin), dto.QuestionBulkRequest{Questions: questions})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.NotNil(t, env.Count)
	require.Equal(t, n, *env.Count)

	var stored []dto.QuestionResponse
	decodeData(t, env, &stored)
	return stored
}
