package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/nepses-go-api/internal/models"
)

// AssignmentRepository defines persistence operations for exam assignments.
// Create and CreateBatch return a duplicate-key error when an (exam, student)
// pair already exists; callers must not rely on a prior read for uniqueness.
type AssignmentRepository interface {
	List(ctx context.Context) ([]models.Assignment, error)
	ListByStudent(ctx context.Context, studentID uint) ([]models.Assignment, error)
	GetByID(ctx context.Context, id uint) (models.Assignment, error)
	AssignedStudentIDs(ctx context.Context, examID uint, studentIDs []uint) ([]uint, error)
	Create(ctx context.Context, assignment *models.Assignment) error
	CreateBatch(ctx context.Context, assignments []models.Assignment) error
	Update(ctx context.Context, assignment *models.Assignment, columns ...string) error
}

type assignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository instantiates a GORM-backed repository.
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Assignment{}).
		Preload("Exam").
		Preload("Student")
}

func (r *assignmentRepository) List(ctx context.Context) ([]models.Assignment, error) {
	var assignments []models.Assignment
	if err := r.baseQuery(ctx).
		Order("assigned_at DESC").
		Order("id DESC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}

	return assignments, nil
}

func (r *assignmentRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.Assignment, error) {
	var assignments []models.Assignment
	if err := r.db.WithContext(ctx).Model(&models.Assignment{}).
		Preload("Exam").
		Where("student_id = ?", studentID).
		Order("assigned_at DESC").
		Order("id DESC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}

	return assignments, nil
}

func (r *assignmentRepository) GetByID(ctx context.Context, id uint) (models.Assignment, error) {
	var assignment models.Assignment
	if err := r.baseQuery(ctx).First(&assignment, id).Error; err != nil {
		return models.Assignment{}, err
	}

	return assignment, nil
}

// AssignedStudentIDs returns the subset of studentIDs that already hold an
// assignment for examID.
func (r *assignmentRepository) AssignedStudentIDs(ctx context.Context, examID uint, studentIDs []uint) ([]uint, error) {
	if len(studentIDs) == 0 {
		return []uint{}, nil
	}

	var existing []uint
	if err := r.db.WithContext(ctx).Model(&models.Assignment{}).
		Where("exam_id = ?", examID).
		Where("student_id IN ?", studentIDs).
		Pluck("student_id", &existing).Error; err != nil {
		return nil, err
	}

	return existing, nil
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(assignment).Error
}

// CreateBatch inserts every assignment or none of them.
func (r *assignmentRepository) CreateBatch(ctx context.Context, assignments []models.Assignment) error {
	if len(assignments) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit(clause.Associations).CreateInBatches(&assignments, 100).Error
	})
}

// Update persists only the named columns when any are given, otherwise the
// whole row. Associations are never written. started_at and completed_at are
// write-once: a named stamp column only fills a NULL, and the stored stamps
// are read back into assignment.
func (r *assignmentRepository) Update(ctx context.Context, assignment *models.Assignment, columns ...string) error {
	if len(columns) == 0 {
		return r.db.WithContext(ctx).Omit(clause.Associations).Save(assignment).Error
	}

	selected := []string{"updated_at"}
	stamps := map[string]interface{}{}
	for _, column := range columns {
		switch column {
		case "started_at":
			if assignment.StartedAt != nil {
				stamps[column] = gorm.Expr("COALESCE(started_at, ?)", *assignment.StartedAt)
			}
		case "completed_at":
			if assignment.CompletedAt != nil {
				stamps[column] = gorm.Expr("COALESCE(completed_at, ?)", *assignment.CompletedAt)
			}
		default:
			selected = append(selected, column)
		}
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Omit(clause.Associations).Model(assignment).Select(selected).Updates(assignment)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if len(stamps) == 0 {
			return nil
		}

		if err := tx.Model(&models.Assignment{}).Where("id = ?", assignment.ID).UpdateColumns(stamps).Error; err != nil {
			return err
		}
		var stored models.Assignment
		if err := tx.Select("id", "started_at", "completed_at").First(&stored, assignment.ID).Error; err != nil {
			return err
		}
		assignment.StartedAt = stored.StartedAt
		assignment.CompletedAt = stored.CompletedAt
		return nil
	})
}
