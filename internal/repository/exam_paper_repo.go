package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/nepses-go-api/internal/models"
)

// ExamPaperFilter narrows paper listings.
type ExamPaperFilter struct {
	Subject  string
	Category string
}

// ExamPaperRepository defines persistence operations for exam papers.
type ExamPaperRepository interface {
	List(ctx context.Context, filter ExamPaperFilter) ([]models.ExamPaper, error)
	GetByID(ctx context.Context, id uint) (models.ExamPaper, error)
	Create(ctx context.Context, paper *models.ExamPaper) error
	Update(ctx context.Context, paper *models.ExamPaper) error
	Delete(ctx context.Context, id uint) error
}

type examPaperRepository struct {
	db *gorm.DB
}

// NewExamPaperRepository instantiates a GORM-backed paper repository.
func NewExamPaperRepository(db *gorm.DB) ExamPaperRepository {
	return &examPaperRepository{db: db}
}

func (r *examPaperRepository) List(ctx context.Context, filter ExamPaperFilter) ([]models.ExamPaper, error) {
	query := r.db.WithContext(ctx).Model(&models.ExamPaper{})

	if filter.Subject != "" {
		query = query.Where("subject = ?", filter.Subject)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}

	var papers []models.ExamPaper
	if err := query.Order("created_at DESC").Order("id DESC").Find(&papers).Error; err != nil {
		return nil, err
	}

	return papers, nil
}

func (r *examPaperRepository) GetByID(ctx context.Context, id uint) (models.ExamPaper, error) {
	var paper models.ExamPaper
	if err := r.db.WithContext(ctx).First(&paper, id).Error; err != nil {
		return models.ExamPaper{}, err
	}

	return paper, nil
}

func (r *examPaperRepository) Create(ctx context.Context, paper *models.ExamPaper) error {
	return r.db.WithContext(ctx).Create(paper).Error
}

func (r *examPaperRepository) Update(ctx context.Context, paper *models.ExamPaper) error {
	return r.db.WithContext(ctx).Save(paper).Error
}

func (r *examPaperRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.ExamPaper{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
