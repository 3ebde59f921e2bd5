package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/nepses-go-api/internal/models"
)

// ResultRepository persists graded results. Create returns a duplicate-key
// error when the (exam, student) pair has already been graded.
type ResultRepository interface {
	Create(ctx context.Context, result *models.Result) error
	GetByID(ctx context.Context, id uint) (models.Result, error)
	ListByStudent(ctx context.Context, studentID uint) ([]models.Result, error)
}

type resultRepository struct {
	db *gorm.DB
}

// NewResultRepository constructs the result repository.
func NewResultRepository(db *gorm.DB) ResultRepository {
	return &resultRepository{db: db}
}

func (r *resultRepository) Create(ctx context.Context, result *models.Result) error {
	return r.db.WithContext(ctx).Create(result).Error
}

func (r *resultRepository) GetByID(ctx context.Context, id uint) (models.Result, error) {
	var result models.Result
	if err := r.db.WithContext(ctx).First(&result, id).Error; err != nil {
		return models.Result{}, err
	}

	return result, nil
}

func (r *resultRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.Result, error) {
	var results []models.Result
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("submitted_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}
