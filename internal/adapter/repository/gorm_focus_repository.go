package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/johnquangdev/ifocus/internal/domain/entities"
	repo "github.com/johnquangdev/ifocus/internal/domain/repositories"
)

type gormFocusRepository struct {
	db *gorm.DB
}

// NewGormFocusRepository creates the Postgres-backed store
func NewGormFocusRepository(db *gorm.DB) repo.Store {
	return &gormFocusRepository{db: db}
}

func (r *gormFocusRepository) ListSamplesForPair(ctx context.Context, studentID, assignmentID int64) (entities.Batch, error) {
	var samples []entities.FocusSample
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND assignment_id = ?", studentID, assignmentID).
		Order("id ASC").
		Find(&samples).Error; err != nil {
		return nil, fmt.Errorf("list samples for pair: %w", err)
	}
	return entities.Batch(samples), nil
}

func (r *gormFocusRepository) ListSamplesForAssignment(ctx context.Context, assignmentID int64) (entities.Batch, error) {
	var samples []entities.FocusSample
	if err := r.db.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		Order("id ASC").
		Find(&samples).Error; err != nil {
		return nil, fmt.Errorf("list samples for assignment: %w", err)
	}
	return entities.Batch(samples), nil
}

func (r *gormFocusRepository) enrollments(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Student").
		Preload("Assignment").
		Order("id ASC")
}

func (r *gormFocusRepository) ListEnrollments(ctx context.Context) ([]*entities.Enrollment, error) {
	var enrollments []*entities.Enrollment
	if err := r.enrollments(ctx).Find(&enrollments).Error; err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return enrollments, nil
}

func (r *gormFocusRepository) ListEnrollmentsByUser(ctx context.Context, userID int64) ([]*entities.Enrollment, error) {
	var enrollments []*entities.Enrollment
	if err := r.enrollments(ctx).Where("user_id = ?", userID).Find(&enrollments).Error; err != nil {
		return nil, fmt.Errorf("list enrollments by user: %w", err)
	}
	return enrollments, nil
}

func (r *gormFocusRepository) GetEnrollment(ctx context.Context, studentID, assignmentID int64) (*entities.Enrollment, error) {
	var enrollment entities.Enrollment
	if err := r.enrollments(ctx).
		Where("user_id = ? AND assignment_id = ?", studentID, assignmentID).
		First(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrEnrollmentNotFound
		}
		return nil, fmt.Errorf("get enrollment: %w", err)
	}
	return &enrollment, nil
}

func (r *gormFocusRepository) ListAssignments(ctx context.Context) ([]*entities.Assignment, error) {
	var assignments []*entities.Assignment
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&assignments).Error; err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return assignments, nil
}

func (r *gormFocusRepository) GetAssignment(ctx context.Context, assignmentID int64) (*entities.Assignment, error) {
	var assignment entities.Assignment
	if err := r.db.WithContext(ctx).Where("id = ?", assignmentID).First(&assignment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	return &assignment, nil
}

func (r *gormFocusRepository) SaveEnrollmentInsights(ctx context.Context, enrollmentID int64, insights string) error {
	res := r.db.WithContext(ctx).
		Model(&entities.Enrollment{}).
		Where("id = ?", enrollmentID).
		Update("insights", insights)
	if res.Error != nil {
		return fmt.Errorf("save enrollment insights: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return entities.ErrEnrollmentNotFound
	}
	return nil
}

func (r *gormFocusRepository) SaveAssignmentInsights(ctx context.Context, assignmentID int64, insights string) error {
	res := r.db.WithContext(ctx).
		Model(&entities.Assignment{}).
		Where("id = ?", assignmentID).
		Update("insights", insights)
	if res.Error != nil {
		return fmt.Errorf("save assignment insights: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return entities.ErrAssignmentNotFound
	}
	return nil
}

func (r *gormFocusRepository) SaveReport(ctx context.Context, record *entities.FocusReportRecord) error {
	if record == nil {
		return errors.New("report record cannot be nil")
	}
	return r.db.WithContext(ctx).Create(record).Error
}

// SaveInsightJob inserts the job or updates it in place
func (r *gormFocusRepository) SaveInsightJob(ctx context.Context, job *entities.InsightJob) error {
	if job == nil {
		return errors.New("job cannot be nil")
	}
	return r.db.WithContext(ctx).Save(job).Error
}
