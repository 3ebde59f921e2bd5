package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/nepses-go-api/internal/dto"
	"github.com/noah-isme/nepses-go-api/internal/models"
	"github.com/noah-isme/nepses-go-api/internal/repository"
)

type memoryActivityRepo struct {
	entries    []models.ActivityLog
	lastFilter repository.ActivityLogFilter
}

func (m *memoryActivityRepo) Create(ctx context.Context, entry *models.ActivityLog) error {
	entry.ID = uint(len(m.entries) + 1)
	entry.CreatedAt = time.Now()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memoryActivityRepo) List(ctx context.Context, filter repository.ActivityLogFilter) ([]models.ActivityLog, int64, error) {
	m.lastFilter = filter
	return append([]models.ActivityLog(nil), m.entries...), int64(len(m.entries)), nil
}

func TestActivityServiceRecordMasksSecrets(t *testing.T) {
	repo := &memoryActivityRepo{}
	svc := NewActivityService(repo, zerolog.Nop())

	entry, err := svc.Record(context.Background(), ActivityEntry{
		ActorID:    1,
		ActorRole:  "Admin",
		Action:     "Assignment.Created",
		EntityType: "assignment",
		EntityID:   ptrUint(5),
		Metadata: map[string]interface{}{
			"cnic":    "1234567890123",
			"exam_id": 3,
		},
	})
	require.NoError(t, err)
	require.Equal(t, "***", entry.Metadata["cnic"])
	require.Equal(t, 3, entry.Metadata["exam_id"])
	require.Equal(t, "assignment.created", entry.Action)
	require.Equal(t, "admin", entry.ActorRole)
}

func TestActivityServiceRecordRequiresAction(t *testing.T) {
	svc := NewActivityService(&memoryActivityRepo{}, zerolog.Nop())

	_, err := svc.Record(context.Background(), ActivityEntry{EntityType: "exam"})
	require.Error(t, err)
}

func TestActivityServiceListPaginates(t *testing.T) {
	repo := &memoryActivityRepo{}
	svc := NewActivityService(repo, zerolog.Nop())
	for i := 0; i < 3; i++ {
		_, err := svc.Record(context.Background(), ActivityEntry{ActorID: 1, ActorRole: "admin", Action: ActionExamCreated, EntityType: "exam"})
		require.NoError(t, err)
	}

	list, err := svc.List(context.Background(), dto.ActivityListRequest{Page: 1, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, list.Items, 3)
	require.Equal(t, int64(3), list.Pagination.TotalItems)
	require.Equal(t, 2, list.Pagination.TotalPages)
}

func TestActivityServiceListByEntity(t *testing.T) {
	repo := &memoryActivityRepo{}
	svc := NewActivityService(repo, zerolog.Nop())

	_, err := svc.List(context.Background(), dto.ActivityListRequest{EntityID: 12})
	require.ErrorIs(t, err, ErrValidation)

	since := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.FixedZone("PKT", 5*60*60))
	_, err = svc.List(context.Background(), dto.ActivityListRequest{EntityType: " exam ", EntityID: 12, Since: &since})
	require.NoError(t, err)
	require.Equal(t, "exam", repo.lastFilter.EntityType)
	require.Equal(t, uint(12), *repo.lastFilter.EntityID)
	require.Equal(t, time.UTC, repo.lastFilter.Since.Location())
	require.True(t, since.Equal(*repo.lastFilter.Since))
}

func ptrUint(v uint) *uint {
	return &v
}

func ptrInt(v int) *int {
	return &v
}

func ptrString(v string) *string {
	return &v
}
