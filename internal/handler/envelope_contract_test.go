package handler_test

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/nepses-go-api/internal/dto"
)

func TestResponsesMatchEnvelopeContract(t *testing.T) {
	schemaPath, err := filepath.Abs(filepath.Join("testdata", "envelope.schema.json"))
	require.NoError(t, err)

	schema, err := jsonschema.NewCompiler().Compile("file://" + filepath.ToSlash(schemaPath))
	require.NoError(t, err)

	a := setupApp(t)
	staff := tokenFor(t, a.admin)
	bank := seedBank(t, a, 2)

	requests := []struct {
		method string
		path   string
		token  string
		body   interface{}
	}{
		{http.MethodGet, "/api/health", "", nil},
		{http.MethodGet, "/api/questions", staff, nil},
		{http.MethodGet, "/api/exams", "", nil},
		{http.MethodPost, "/api/exams", staff, dto.ExamPaperCreateRequest{Title: "Quiz", Subject: "English", Category: "Grammar", Questions: []uint{bank[0].ID, bank[1].ID}}},
		{http.MethodPost, "/api/exams/generate", staff, dto.ExamPaperGenerateRequest{Subject: "English", Category: "Grammar", NumQuestions: 5}},
		{http.MethodPost, "/api/assignments", staff, map[string]interface{}{"examId": 0}},
		{http.MethodGet, "/api/exams/999", staff, nil},
	}

	for _, tc := range requests {
		_, _, raw := a.call(t, tc.method, tc.path, tc.token, tc.body)

		var payload interface{}
		require.NoError(t, json.Unmarshal(raw, &payload))
		require.NoError(t, schema.Validate(payload), "%s %s: %s", tc.method, tc.path, raw)
	}
}
