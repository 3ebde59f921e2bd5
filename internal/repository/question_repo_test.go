package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/nepses-go-api/internal/models"
)

func TestQuestionRepositoryFiltersAndResolvesIDs(t *testing.T) {
	db := setupTestDB(t)
	repo := NewQuestionRepository(db)
	ctx := context.Background()

	questions := []models.Question{
		{Text: "2+2?", Options: []string{"3", "4"}, CorrectOption: 1, Subject: "Math", Category: "Arithmetic", Difficulty: models.DifficultyEasy},
		{Text: "3*3?", Options: []string{"9", "6"}, CorrectOption: 0, Subject: "Math", Category: "Arithmetic", Difficulty: models.DifficultyHard},
		{Text: "Synonym of big", Options: []string{"large", "tiny"}, CorrectOption: 0, Subject: "English", Category: "Vocabulary", Difficulty: models.DifficultyEasy},
	}
	require.NoError(t, repo.CreateBatch(ctx, questions))
	for _, q := range questions {
		require.NotZero(t, q.ID)
	}

	easyMath, err := repo.List(ctx, QuestionFilter{Subject: "Math", Category: "Arithmetic", Difficulty: models.DifficultyEasy})
	require.NoError(t, err)
	require.Len(t, easyMath, 1)
	require.Equal(t, "2+2?", easyMath[0].Text)
	require.Equal(t, []string{"3", "4"}, []string(easyMath[0].Options))

	resolved, err := repo.GetByIDs(ctx, []uint{questions[0].ID, questions[2].ID, 9999})
	require.NoError(t, err)
	require.Len(t, resolved, 2)

	require.True(t, IsNotFound(repo.Delete(ctx, 9999)))
}
