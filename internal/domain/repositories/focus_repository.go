package repositories

import (
	"context"

	"github.com/johnquangdev/ifocus/internal/domain/entities"
)

// FocusRepository reads focus samples and the enrollments and assignments
// they belong to. Sample lists come back in storage order.
type FocusRepository interface {
	// Samples
	ListSamplesForPair(ctx context.Context, studentID, assignmentID int64) (entities.Batch, error)
	ListSamplesForAssignment(ctx context.Context, assignmentID int64) (entities.Batch, error)

	// Enrollments, with Student and Assignment loaded
	ListEnrollments(ctx context.Context) ([]*entities.Enrollment, error)
	ListEnrollmentsByUser(ctx context.Context, userID int64) ([]*entities.Enrollment, error)
	GetEnrollment(ctx context.Context, studentID, assignmentID int64) (*entities.Enrollment, error)

	// Assignments
	ListAssignments(ctx context.Context) ([]*entities.Assignment, error)
	GetAssignment(ctx context.Context, assignmentID int64) (*entities.Assignment, error)
}

// InsightRepository stores generated insights on enrollments and assignments
type InsightRepository interface {
	SaveEnrollmentInsights(ctx context.Context, enrollmentID int64, insights string) error
	SaveAssignmentInsights(ctx context.Context, assignmentID int64, insights string) error
}

// ReportRepository persists report snapshots and the audit trail of insight jobs
type ReportRepository interface {
	SaveReport(ctx context.Context, record *entities.FocusReportRecord) error
	SaveInsightJob(ctx context.Context, job *entities.InsightJob) error
}

// Store is everything the insight pipelines need from persistence
type Store interface {
	FocusRepository
	InsightRepository
	ReportRepository
}
