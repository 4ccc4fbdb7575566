package focus

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/johnquangdev/ifocus/internal/domain/entities"
)

func TestSummarize_SingleFocusedCell(t *testing.T) {
	batch := entities.Batch{sample(0.2, 0.8, false, 0), sample(0.2, 0.8, false, 10)}

	report, err := Summarize(batch)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}

	if report.TotalDurationSeconds != 10 || report.DistractionSeconds != 0 || report.FocusSeconds != 10 {
		t.Fatalf("durations = total %v distraction %v focus %v, want 10/0/10",
			report.TotalDurationSeconds, report.DistractionSeconds, report.FocusSeconds)
	}
	if report.QuadrantDistribution != (entities.QuadrantDistribution{TopLeft: 1}) {
		t.Fatalf("distribution = %+v, want top_left=1", report.QuadrantDistribution)
	}
	if report.Hotspot == nil || report.Hotspot.Cell != (entities.GridCell{X: 2, Y: 8}) ||
		report.Hotspot.Intensity != 2 || report.Hotspot.Ratio != 1 {
		t.Fatalf("hotspot = %+v, want (2, 8) intensity=2 ratio=1", report.Hotspot)
	}
	if report.TransitionCount != 0 {
		t.Fatalf("transitions = %d, want 0", report.TransitionCount)
	}

	want := "Total duration: 10.00 seconds.\n" +
		"Focus time: 10.00 seconds (100.00%).\n" +
		"Distraction time: 0.00 seconds (0.00%).\n" +
		"Focus distribution:\n" +
		"  - Top-left: 100.00%\n" +
		"  - Top-right: 0.00%\n" +
		"  - Bottom-left: 0.00%\n" +
		"  - Bottom-right: 0.00%\n" +
		"The most focused region (hotspot) is grid cell (2, 8) with 2 points (100.00% of total points).\n" +
		"Number of focus transitions: 0.\n"
	if report.SummaryText != want {
		t.Fatalf("summary text mismatch\ngot:\n%s\nwant:\n%s", report.SummaryText, want)
	}
}

func TestSummarize_DistractedJump(t *testing.T) {
	batch := entities.Batch{
		sample(0.1, 0.1, false, 0),
		sample(0.9, 0.9, true, 5),
		sample(0.9, 0.9, false, 8),
	}

	report, err := Summarize(batch)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if report.TransitionCount != 1 {
		t.Fatalf("transitions = %d, want 1", report.TransitionCount)
	}
	if report.DistractionSeconds != 5 || report.FocusSeconds != 3 || report.TotalDurationSeconds != 8 {
		t.Fatalf("durations = total %v distraction %v focus %v, want 8/5/3",
			report.TotalDurationSeconds, report.DistractionSeconds, report.FocusSeconds)
	}
	if !strings.Contains(report.SummaryText, "Focus time: 3.00 seconds (37.50%).") {
		t.Fatalf("summary text missing focus line:\n%s", report.SummaryText)
	}
	if !strings.Contains(report.SummaryText, "Distraction time: 5.00 seconds (62.50%).") {
		t.Fatalf("summary text missing distraction line:\n%s", report.SummaryText)
	}
}

func TestSummarize_DegenerateInput(t *testing.T) {
	tests := []struct {
		name  string
		batch entities.Batch
	}{
		{"empty", nil},
		{"single sample", entities.Batch{sample(0.4, 0.4, false, 0)}},
		{"same timestamp", entities.Batch{sample(0.1, 0.1, false, 3), sample(0.9, 0.9, true, 3)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := Summarize(tt.batch)
			if report != nil {
				t.Fatalf("expected no report, got %+v", report)
			}
			if !errors.Is(err, entities.ErrDegenerateInput) {
				t.Fatalf("error = %v, want ErrDegenerateInput", err)
			}
			var degenerate *DegenerateInputError
			if !errors.As(err, &degenerate) {
				t.Fatalf("error type = %T, want *DegenerateInputError", err)
			}
			if degenerate.SampleCount != len(tt.batch) {
				t.Fatalf("SampleCount = %d, want %d", degenerate.SampleCount, len(tt.batch))
			}
		})
	}
}

func TestSummarizeWith_Options(t *testing.T) {
	batch := entities.Batch{sample(0.1, 0.1, false, 0), sample(0.3, 0.1, false, 1), sample(0.55, 0.1, false, 2)}

	report, err := SummarizeWith(batch, Options{GridSize: 2, TransitionThreshold: 0.3})
	if err != nil {
		t.Fatalf("SummarizeWith() error = %v", err)
	}
	if report.TransitionCount != 0 {
		t.Fatalf("transitions = %d, want 0", report.TransitionCount)
	}
	if report.Hotspot.Cell != (entities.GridCell{X: 0, Y: 0}) || report.Hotspot.Intensity != 2 {
		t.Fatalf("hotspot = %+v, want (0, 0) intensity=2", report.Hotspot)
	}
}

var narrativePattern = regexp.MustCompile(
	`^Total duration: ([\d.]+) seconds\.\n` +
		`Focus time: (-?[\d.]+) seconds \((-?[\d.]+)%\)\.\n` +
		`Distraction time: (-?[\d.]+) seconds \((-?[\d.]+)%\)\.\n` +
		`Focus distribution:\n` +
		`  - Top-left: ([\d.]+)%\n` +
		`  - Top-right: ([\d.]+)%\n` +
		`  - Bottom-left: ([\d.]+)%\n` +
		`  - Bottom-right: ([\d.]+)%\n` +
		`The most focused region \(hotspot\) is grid cell \((-?\d+), (-?\d+)\) with (\d+) points \(([\d.]+)% of total points\)\.\n` +
		`Number of focus transitions: (\d+)\.\n$`)

func TestNarrative_ParsesBackToReport(t *testing.T) {
	batch := entities.Batch{
		sample(0.12, 0.91, false, 0),
		sample(0.64, 0.22, true, 2.5),
		sample(0.66, 0.24, false, 4),
		sample(0.33, 0.44, true, 9.25),
		sample(0.65, 0.23, false, 12),
	}

	report, err := Summarize(batch)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}

	m := narrativePattern.FindStringSubmatch(report.SummaryText)
	if m == nil {
		t.Fatalf("narrative does not match the expected layout:\n%s", report.SummaryText)
	}

	num := func(i int) float64 {
		v, err := strconv.ParseFloat(m[i], 64)
		if err != nil {
			t.Fatalf("field %d: %v", i, err)
		}
		return v
	}
	near := func(got, want float64) bool {
		return got-want < 0.006 && want-got < 0.006
	}

	checks := []struct {
		field string
		got   float64
		want  float64
	}{
		{"total", num(1), report.TotalDurationSeconds},
		{"focus", num(2), report.FocusSeconds},
		{"focus %", num(3), report.FocusSeconds / report.TotalDurationSeconds * 100},
		{"distraction", num(4), report.DistractionSeconds},
		{"distraction %", num(5), report.DistractionSeconds / report.TotalDurationSeconds * 100},
		{"top-left", num(6), report.QuadrantDistribution.TopLeft * 100},
		{"top-right", num(7), report.QuadrantDistribution.TopRight * 100},
		{"bottom-left", num(8), report.QuadrantDistribution.BottomLeft * 100},
		{"bottom-right", num(9), report.QuadrantDistribution.BottomRight * 100},
		{"hotspot x", num(10), float64(report.Hotspot.Cell.X)},
		{"hotspot y", num(11), float64(report.Hotspot.Cell.Y)},
		{"intensity", num(12), float64(report.Hotspot.Intensity)},
		{"hotspot %", num(13), report.Hotspot.Ratio * 100},
		{"transitions", num(14), float64(report.TransitionCount)},
	}
	for _, c := range checks {
		if !near(c.got, c.want) {
			t.Errorf("%s: narrative has %v, report has %v", c.field, c.got, c.want)
		}
	}
}

func TestNarrative_OmitsHotspotLineWithoutHotspot(t *testing.T) {
	report := &entities.FocusReport{SampleCount: 2, TotalDurationSeconds: 4, FocusSeconds: 4}

	text, err := Narrative(report)
	if err != nil {
		t.Fatalf("Narrative() error = %v", err)
	}
	if strings.Contains(text, "hotspot") {
		t.Fatalf("unexpected hotspot line:\n%s", text)
	}
	if !strings.HasSuffix(text, "Number of focus transitions: 0.\n") {
		t.Fatalf("missing transitions line:\n%s", text)
	}
}

func TestNarrative_RejectsZeroDuration(t *testing.T) {
	_, err := Narrative(&entities.FocusReport{SampleCount: 3})
	if !errors.Is(err, entities.ErrDegenerateInput) {
		t.Fatalf("error = %v, want ErrDegenerateInput", err)
	}
}
