package entities

import (
	"time"

	"github.com/google/uuid"
)

// InsightJobStatus represents the status of an insight job
type InsightJobStatus string

const (
	InsightJobStatusPending   InsightJobStatus = "pending"   // Queued, not picked by a worker yet
	InsightJobStatusRunning   InsightJobStatus = "running"   // Picked by a worker
	InsightJobStatusCompleted InsightJobStatus = "completed" // Heatmap and insights stored
	InsightJobStatusSkipped   InsightJobStatus = "skipped"   // No data, degenerate batch or pair claimed elsewhere
	InsightJobStatusFailed    InsightJobStatus = "failed"    // A collaborator or store call failed
)

// InsightJobType represents the scope of an insight job
type InsightJobType string

const (
	InsightJobTypeEnrollment InsightJobType = "enrollment" // One student on one assignment
	InsightJobTypeAssignment InsightJobType = "assignment" // All students of one assignment
)

// InsightJob tracks the processing of one (student, assignment) pair or one
// assignment aggregate during a batch run.
type InsightJob struct {
	ID           uuid.UUID        `json:"id" gorm:"type:uuid;primary_key"`
	JobType      InsightJobType   `json:"job_type" gorm:"type:varchar(20);not null;index"`
	Status       InsightJobStatus `json:"status" gorm:"type:varchar(20);not null;index;default:'pending'"`
	StudentID    *int64           `json:"student_id,omitempty" gorm:"index"`
	AssignmentID int64            `json:"assignment_id" gorm:"not null;index"`

	SampleCount  int     `json:"sample_count" gorm:"default:0"`
	HeatmapURL   *string `json:"heatmap_url,omitempty" gorm:"type:text"`
	SkipReason   *string `json:"skip_reason,omitempty" gorm:"type:text"`
	LastError    *string `json:"last_error,omitempty" gorm:"type:text"`
	AttemptCount int     `json:"attempt_count" gorm:"default:0"`

	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// NewEnrollmentJob creates a pending job for one student on one assignment
func NewEnrollmentJob(studentID, assignmentID int64) *InsightJob {
	sid := studentID
	return newInsightJob(InsightJobTypeEnrollment, &sid, assignmentID)
}

// NewAssignmentJob creates a pending job for an assignment aggregate
func NewAssignmentJob(assignmentID int64) *InsightJob {
	return newInsightJob(InsightJobTypeAssignment, nil, assignmentID)
}

func newInsightJob(jobType InsightJobType, studentID *int64, assignmentID int64) *InsightJob {
	now := time.Now().UTC()
	return &InsightJob{
		ID:           uuid.New(),
		JobType:      jobType,
		Status:       InsightJobStatusPending,
		StudentID:    studentID,
		AssignmentID: assignmentID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// IsTerminal reports whether the job reached a final status
func (j *InsightJob) IsTerminal() bool {
	switch j.Status {
	case InsightJobStatusCompleted, InsightJobStatusSkipped, InsightJobStatusFailed:
		return true
	}
	return false
}

// MarkAsRunning marks the job as picked by a worker
func (j *InsightJob) MarkAsRunning() {
	now := time.Now().UTC()
	j.Status = InsightJobStatusRunning
	j.StartedAt = &now
	j.UpdatedAt = now
}

// MarkAsCompleted marks the job as done
func (j *InsightJob) MarkAsCompleted() {
	j.finish(InsightJobStatusCompleted)
}

// MarkAsSkipped marks the job as skipped with a reason
func (j *InsightJob) MarkAsSkipped(reason string) {
	j.SkipReason = &reason
	j.finish(InsightJobStatusSkipped)
}

// MarkAsFailed marks the job as failed with error message
func (j *InsightJob) MarkAsFailed(errMsg string) {
	j.LastError = &errMsg
	j.finish(InsightJobStatusFailed)
}

// SetHeatmapURL records where the heatmap of this job was stored
func (j *InsightJob) SetHeatmapURL(url string) {
	j.HeatmapURL = &url
	j.UpdatedAt = time.Now().UTC()
}

func (j *InsightJob) finish(status InsightJobStatus) {
	now := time.Now().UTC()
	j.Status = status
	j.CompletedAt = &now
	j.UpdatedAt = now
}

// TableName specifies the table name for GORM
func (InsightJob) TableName() string {
	return "insight_jobs"
}
