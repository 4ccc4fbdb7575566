package entities

import (
	"sort"
	"time"
)

// FocusSample is one observation of where a student's attention was at a moment in time.
// X and Y are normalized screen coordinates, expected (but not enforced) to lie in [0, 1].
type FocusSample struct {
	ID           int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	StudentID    int64     `json:"student_id" gorm:"column:user_id;not null;index:idx_focus_samples_pair"`
	AssignmentID int64     `json:"assignment_id" gorm:"not null;index:idx_focus_samples_pair;index"`
	X            float64   `json:"x" gorm:"column:x_coord;not null"`
	Y            float64   `json:"y" gorm:"column:y_coord;not null"`
	Outside      bool      `json:"outside" gorm:"not null;default:false"`
	Timestamp    time.Time `json:"timestamp" gorm:"not null"`
}

// TableName specifies the table name for GORM
func (FocusSample) TableName() string {
	return "focus_samples"
}

// Batch is the unit of work of the focus engine: the samples of one
// (student, assignment) pair, or of a whole assignment for aggregate views.
// The engine only reads a Batch; it never stores or mutates it.
type Batch []FocusSample

// SortedByTime returns a copy of the batch ordered by timestamp ascending.
// Samples sharing a timestamp keep their relative order.
func (b Batch) SortedByTime() Batch {
	sorted := make(Batch, len(b))
	copy(sorted, b)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	return sorted
}

// Coordinates splits the batch into two equal-length coordinate sequences,
// in batch order, as consumed by heatmap renderers.
func (b Batch) Coordinates() (xs, ys []float64) {
	xs = make([]float64, len(b))
	ys = make([]float64, len(b))
	for i, s := range b {
		xs[i] = s.X
		ys[i] = s.Y
	}
	return xs, ys
}
