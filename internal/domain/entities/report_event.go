package entities

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ReportEvent announces that a focus report and its insights were produced
type ReportEvent struct {
	JobID        uuid.UUID      `json:"job_id"`
	JobType      InsightJobType `json:"job_type"`
	StudentID    *int64         `json:"student_id,omitempty"`
	AssignmentID int64          `json:"assignment_id"`
	HeatmapURL   string         `json:"heatmap_url,omitempty"`
	Report       FocusReport    `json:"report"`
	GeneratedAt  time.Time      `json:"generated_at"`
}

// PartitionKey keeps events of the same pair (or assignment aggregate) in order
func (e *ReportEvent) PartitionKey() string {
	if e.StudentID == nil {
		return fmt.Sprintf("assignment:%d", e.AssignmentID)
	}
	return fmt.Sprintf("assignment:%d:student:%d", e.AssignmentID, *e.StudentID)
}
