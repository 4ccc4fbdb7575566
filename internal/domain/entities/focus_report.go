package entities

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Quadrant labels a quarter of the screen
type Quadrant string

const (
	QuadrantTopLeft     Quadrant = "top_left"
	QuadrantTopRight    Quadrant = "top_right"
	QuadrantBottomLeft  Quadrant = "bottom_left"
	QuadrantBottomRight Quadrant = "bottom_right"
)

// QuadrantDistribution holds the share of samples per screen quadrant.
// The ratios sum to 1 for a non-empty batch and are all zero for an empty one.
type QuadrantDistribution struct {
	TopLeft     float64 `json:"top_left"`
	TopRight    float64 `json:"top_right"`
	BottomLeft  float64 `json:"bottom_left"`
	BottomRight float64 `json:"bottom_right"`
}

// Ratio returns the share for the given quadrant
func (d QuadrantDistribution) Ratio(q Quadrant) float64 {
	switch q {
	case QuadrantTopLeft:
		return d.TopLeft
	case QuadrantTopRight:
		return d.TopRight
	case QuadrantBottomLeft:
		return d.BottomLeft
	case QuadrantBottomRight:
		return d.BottomRight
	default:
		return 0
	}
}

// GridCell is an integer cell of the hotspot grid
type GridCell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// String renders the cell as "(x, y)"
func (c GridCell) String() string {
	return fmt.Sprintf("(%d, %d)", c.X, c.Y)
}

// Hotspot is the grid cell holding the most samples
type Hotspot struct {
	Cell        GridCell `json:"cell"`
	Intensity   int      `json:"intensity"`
	TotalPoints int      `json:"total_points"`
	Ratio       float64  `json:"ratio"`
}

// FocusReport is the derived, ephemeral result of running the engine over a batch.
type FocusReport struct {
	SampleCount          int                  `json:"sample_count"`
	TotalDurationSeconds float64              `json:"total_duration_seconds"`
	FocusSeconds         float64              `json:"focus_seconds"`
	DistractionSeconds   float64              `json:"distraction_seconds"`
	QuadrantDistribution QuadrantDistribution `json:"quadrant_distribution"`
	Hotspot              *Hotspot             `json:"hotspot,omitempty"`
	TransitionCount      int                  `json:"transition_count"`
	SummaryText          string               `json:"summary_text"`
}

// FocusReportRecord is a persisted snapshot of a FocusReport, written by the
// orchestration layer. StudentID is nil for assignment-wide aggregates.
type FocusReportRecord struct {
	ID           uuid.UUID                       `json:"id" gorm:"type:uuid;primary_key"`
	StudentID    *int64                          `json:"student_id,omitempty" gorm:"index"`
	AssignmentID int64                           `json:"assignment_id" gorm:"not null;index"`
	JobID        uuid.UUID                       `json:"job_id" gorm:"type:uuid;index"`
	Metrics      datatypes.JSONType[FocusReport] `json:"metrics" gorm:"type:jsonb"`
	SummaryText  string                          `json:"summary_text" gorm:"type:text"`
	CreatedAt    time.Time                       `json:"created_at" gorm:"autoCreateTime"`
}

// NewFocusReportRecord snapshots a report for persistence
func NewFocusReportRecord(jobID uuid.UUID, studentID *int64, assignmentID int64, report *FocusReport) *FocusReportRecord {
	return &FocusReportRecord{
		ID:           uuid.New(),
		StudentID:    studentID,
		AssignmentID: assignmentID,
		JobID:        jobID,
		Metrics:      datatypes.NewJSONType(*report),
		SummaryText:  report.SummaryText,
		CreatedAt:    time.Now().UTC(),
	}
}

// TableName specifies the table name for GORM
func (FocusReportRecord) TableName() string {
	return "focus_reports"
}
