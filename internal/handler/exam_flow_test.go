package handler_test

import (
	"fmt"
	"net/http"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/nepses-go-api/internal/dto"
	"github.com/noah-isme/nepses-go-api/internal/models"
)

func TestExamLifecycleEndToEnd(t *testing.T) {
	a := setupApp(t)
	staff := tokenFor(t, a.admin)
	john := a.student(t, "John Doe", "1234567890123")
	jane := a.student(t, "Jane Smith", "9876543210987")
	bank := seedBank(t, a, 3)

	resp, env, _ := a.call(t, http.MethodPost, "/api/exams", staff, dto.ExamPaperCreateRequest{
		Title:     "Grammar Basics",
		Subject:   "English",
		Category:  "Grammar",
		Questions: []uint{bank[2].ID, bank[0].ID, bank[1].ID},
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, env.Message)
	var paper dto.ExamPaperResponse
	decodeData(t, env, &paper)
	require.Equal(t, []uint{bank[2].ID, bank[0].ID, bank[1].ID}, paper.QuestionIDs)
	require.Equal(t, models.DefaultPaperDuration, paper.Duration)

	resp, env, _ = a.call(t, http.MethodPost, "/api/assignments/bulk", staff, dto.BulkAssignRequest{
		ExamID:     paper.ID,
		StudentIDs: []uint{john.ID, jane.ID},
		DueDate:    "2030-01-01",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, env.Message)
	require.Equal(t, "Assigned exam to 2 student(s). 0 assignment(s) already existed.", env.Message)

	resp, env, _ = a.call(t, http.MethodPost, "/api/assignments/bulk", staff, dto.BulkAssignRequest{
		ExamID:     paper.ID,
		StudentIDs: []uint{john.ID, jane.ID},
		DueDate:    "2030-01-01",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.Equal(t, "Assigned exam to 0 student(s). 2 assignment(s) already existed.", env.Message)

	johnToken := tokenFor(t, john)
	resp, env, _ = a.call(t, http.MethodGet, fmt.Sprintf("/api/assignments/student/%d", john.ID), johnToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var mine []dto.AssignmentResponse
	decodeData(t, env, &mine)
	require.Len(t, mine, 1)
	require.Equal(t, models.AssignmentStatusScheduled, mine[0].Status)
	require.NotNil(t, mine[0].Exam)
	require.Equal(t, 3, mine[0].Exam.QuestionCount)

	assignmentPath := fmt.Sprintf("/api/assignments/%d", mine[0].ID)
	progress := 40
	started := models.AssignmentStatusInProgress
	resp, env, _ = a.call(t, http.MethodPatch, assignmentPath, johnToken, dto.AssignmentUpdateRequest{Status: &started, Progress: &progress})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, env.Message)
	var updated dto.AssignmentResponse
	decodeData(t, env, &updated)
	require.NotNil(t, updated.StartedAt)
	require.Equal(t, 40, updated.Progress)

	completed := models.AssignmentStatusCompleted
	answers := models.AnswerSheet{
		strconv.FormatUint(uint64(bank[2].ID), 10): 1,
		strconv.FormatUint(uint64(bank[0].ID), 10): 1,
		strconv.FormatUint(uint64(bank[1].ID), 10): 3,
	}
	resp, env, _ = a.call(t, http.MethodPut, assignmentPath, johnToken, dto.AssignmentUpdateRequest{Status: &completed, Answers: answers})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, env.Message)
	decodeData(t, env, &updated)
	require.NotNil(t, updated.CompletedAt)
	require.Equal(t, 40, updated.Progress)

	resp, env, _ = a.call(t, http.MethodPost, "/api/results", johnToken, dto.ResultCreateRequest{AssignmentID: updated.ID})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, env.Message)
	var result dto.ResultResponse
	decodeData(t, env, &result)
	require.Equal(t, 2, result.CorrectAnswers)
	require.Equal(t, 3, result.TotalQuestions)
	require.InDelta(t, 66.67, result.Score, 0.001)

	resp, env, _ = a.call(t, http.MethodPost, "/api/results", johnToken, dto.ResultCreateRequest{AssignmentID: updated.ID})
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
	require.Equal(t, "ConflictError", env.Error)

	resp, env, _ = a.call(t, http.MethodGet, fmt.Sprintf("/api/results/student/%d", john.ID), staff, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NotNil(t, env.Count)
	require.Equal(t, 1, *env.Count)

	resp, env, _ = a.call(t, http.MethodGet, "/api/activity?pageSize=50", staff, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var activity dto.ActivityListResponse
	decodeData(t, env, &activity)
	require.NotEmpty(t, activity.Items)
}

func TestGenerateExamReportsInsufficientPool(t *testing.T) {
	a := setupApp(t)
	staff := tokenFor(t, a.admin)
	seedBank(t, a, 4)

	resp, env, _ := a.call(t, http.MethodPost, "/api/exams/generate", staff, dto.ExamPaperGenerateRequest{
		Subject:      "English",
		Category:     "Grammar",
		NumQuestions: 10,
	})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.False(t, env.Success)
	require.Equal(t, "InsufficientDataError", env.Error)
	require.Equal(t, "Not enough questions available. Found 4, but 10 required.", env.Message)

	resp, env, _ = a.call(t, http.MethodPost, "/api/exams/generate", staff, dto.ExamPaperGenerateRequest{
		Subject:      "English",
		Category:     "Grammar",
		NumQuestions: 4,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, env.Message)
	var paper dto.ExamPaperResponse
	decodeData(t, env, &paper)
	require.Len(t, paper.QuestionIDs, 4)
	require.Equal(t, models.ProvenanceGenerated, paper.Provenance)
	require.True(t, paper.IsAIGenerated)

	resp, env, _ = a.call(t, http.MethodGet, fmt.Sprintf("/api/exams/%d", paper.ID), tokenFor(t, a.student(t, "Ali Ahmed", "3456789012345")), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decodeData(t, env, &paper)
	require.Len(t, paper.Questions, 4)
}

func TestExplicitExamRejectsUnknownQuestion(t *testing.T) {
	a := setupApp(t)
	staff := tokenFor(t, a.admin)
	bank := seedBank(t, a, 1)

	resp, env, _ := a.call(t, http.MethodPost, "/api/exams", staff, dto.ExamPaperCreateRequest{
		Title:     "Broken",
		Subject:   "English",
		Category:  "Grammar",
		Questions: []uint{bank[0].ID, 9999},
	})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "ValidationError", env.Error)
}
