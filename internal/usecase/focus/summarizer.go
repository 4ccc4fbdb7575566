package focus

import (
	"fmt"
	"math"
	"strings"

	"github.com/johnquangdev/ifocus/internal/domain/entities"
)

// DegenerateInputError is returned when a report would need to divide by a
// zero total duration, e.g. for empty, single-sample or same-timestamp batches.
// It matches entities.ErrDegenerateInput with errors.Is.
type DegenerateInputError struct {
	SampleCount   int
	TotalDuration float64
}

func (e *DegenerateInputError) Error() string {
	return fmt.Sprintf("degenerate focus batch: total duration %.2f seconds over %d samples", e.TotalDuration, e.SampleCount)
}

// Is lets errors.Is match the domain sentinel
func (e *DegenerateInputError) Is(target error) bool {
	return target == entities.ErrDegenerateInput
}

// Options tunes the spatial metrics of a report
type Options struct {
	GridSize            int
	TransitionThreshold float64
}

// DefaultOptions returns the grid size and transition threshold used by Summarize
func DefaultOptions() Options {
	return Options{
		GridSize:            DefaultGridSize,
		TransitionThreshold: DefaultTransitionThreshold,
	}
}

// Summarize computes every metric of the batch with the default options and
// renders the narrative. See SummarizeWith.
func Summarize(batch entities.Batch) (*entities.FocusReport, error) {
	return SummarizeWith(batch, DefaultOptions())
}

// SummarizeWith computes every metric of the batch and renders the narrative.
// It returns a *DegenerateInputError, and no report, when the total duration
// is zero.
func SummarizeWith(batch entities.Batch, opts Options) (*entities.FocusReport, error) {
	if opts.GridSize <= 0 {
		opts.GridSize = DefaultGridSize
	}

	total := TotalDuration(batch)
	report := &entities.FocusReport{
		SampleCount:          len(batch),
		TotalDurationSeconds: total,
		FocusSeconds:         FocusTime(batch, total),
		DistractionSeconds:   DistractionTime(batch),
		QuadrantDistribution: QuadrantDistribution(batch),
		Hotspot:              IdentifyHotspot(batch, opts.GridSize),
		TransitionCount:      TransitionCount(batch, opts.TransitionThreshold),
	}

	text, err := Narrative(report)
	if err != nil {
		return nil, err
	}
	report.SummaryText = text
	return report, nil
}

// Narrative renders the textual summary of a report. This is the only place
// metrics are divided by the total duration.
func Narrative(report *entities.FocusReport) (string, error) {
	if err := checkDuration(report); err != nil {
		return "", err
	}

	total := report.TotalDurationSeconds
	dist := report.QuadrantDistribution

	var sb strings.Builder
	fmt.Fprintf(&sb, "Total duration: %.2f seconds.\n", total)
	fmt.Fprintf(&sb, "Focus time: %.2f seconds (%.2f%%).\n", report.FocusSeconds, percentOf(report.FocusSeconds, total))
	fmt.Fprintf(&sb, "Distraction time: %.2f seconds (%.2f%%).\n", report.DistractionSeconds, percentOf(report.DistractionSeconds, total))
	sb.WriteString("Focus distribution:\n")
	fmt.Fprintf(&sb, "  - Top-left: %.2f%%\n", dist.TopLeft*100)
	fmt.Fprintf(&sb, "  - Top-right: %.2f%%\n", dist.TopRight*100)
	fmt.Fprintf(&sb, "  - Bottom-left: %.2f%%\n", dist.BottomLeft*100)
	fmt.Fprintf(&sb, "  - Bottom-right: %.2f%%\n", dist.BottomRight*100)

	if h := report.Hotspot; h != nil {
		fmt.Fprintf(&sb, "The most focused region (hotspot) is grid cell %s with %d points (%.2f%% of total points).\n",
			h.Cell, h.Intensity, h.Ratio*100)
	}

	fmt.Fprintf(&sb, "Number of focus transitions: %d.\n", report.TransitionCount)
	return sb.String(), nil
}

func checkDuration(report *entities.FocusReport) error {
	total := report.TotalDurationSeconds
	if total == 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return &DegenerateInputError{
			SampleCount:   report.SampleCount,
			TotalDuration: total,
		}
	}
	return nil
}

func percentOf(value, total float64) float64 {
	return value / total * 100
}
