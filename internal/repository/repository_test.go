package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/nepses-go-api/internal/database"
	"github.com/noah-isme/nepses-go-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:repo_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := database.Connect("sqlite", dsn)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func seedStudent(t *testing.T, db *gorm.DB, name string) models.User {
	t.Helper()
	cnic := fmt.Sprintf("%d", time.Now().UnixNano())
	user := models.User{Name: name, CNIC: &cnic, PasswordHash: "x", Role: models.RoleStudent}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedPaper(t *testing.T, db *gorm.DB, title string) models.ExamPaper {
	t.Helper()
	paper := models.ExamPaper{
		Title:       title,
		Subject:     "English",
		Category:    "Grammar",
		QuestionIDs: []uint{1, 2},
		Duration:    60,
		Provenance:  models.ProvenanceExplicit,
	}
	require.NoError(t, db.Create(&paper).Error)
	return paper
}
