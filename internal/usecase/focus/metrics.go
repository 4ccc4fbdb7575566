// Package focus computes attention metrics from a batch of focus samples and
// composes them into a behavioral report. Every function here is pure: the
// batch is borrowed, never stored or mutated, and nothing performs I/O.
package focus

import (
	"math"
	"time"

	"github.com/johnquangdev/ifocus/internal/domain/entities"
)

const (
	// DefaultGridSize is the number of hotspot grid cells per axis
	DefaultGridSize = 10
	// DefaultTransitionThreshold is the per-axis jump that counts as a transition
	DefaultTransitionThreshold = 0.1
)

// TotalDuration sorts the batch by timestamp and sums the consecutive gaps,
// in seconds. Duplicate timestamps contribute zero. Fewer than two samples
// yield zero.
func TotalDuration(batch entities.Batch) float64 {
	if len(batch) < 2 {
		return 0
	}

	sorted := batch.SortedByTime()

	var total time.Duration
	for i := 1; i < len(sorted); i++ {
		total += sorted[i].Timestamp.Sub(sorted[i-1].Timestamp)
	}
	return total.Seconds()
}

// DistractionTime walks the batch in the order given and, for every sample
// flagged outside, adds the gap since the previous sample. The batch is not
// re-sorted, so an unordered batch can produce negative gaps.
func DistractionTime(batch entities.Batch) float64 {
	var (
		total   time.Duration
		prev    time.Time
		hasPrev bool
	)

	for _, sample := range batch {
		if sample.Outside && hasPrev {
			total += sample.Timestamp.Sub(prev)
		}
		prev = sample.Timestamp
		hasPrev = true
	}
	return total.Seconds()
}

// FocusTime is the total duration minus the distraction time. It is not
// clamped and goes negative when distraction exceeds the total.
func FocusTime(batch entities.Batch, totalDuration float64) float64 {
	return totalDuration - DistractionTime(batch)
}

// QuadrantDistribution returns the share of samples per screen quadrant.
// Left is x < 0.5, right is x >= 0.5; top is y > 0.5, bottom is y <= 0.5.
// An empty batch yields all zeros.
func QuadrantDistribution(batch entities.Batch) entities.QuadrantDistribution {
	if len(batch) == 0 {
		return entities.QuadrantDistribution{}
	}

	var topLeft, topRight, bottomLeft, bottomRight int
	for _, s := range batch {
		switch {
		case s.X < 0.5 && s.Y > 0.5:
			topLeft++
		case s.X >= 0.5 && s.Y > 0.5:
			topRight++
		case s.X < 0.5 && s.Y <= 0.5:
			bottomLeft++
		case s.X >= 0.5 && s.Y <= 0.5:
			bottomRight++
		}
	}

	n := float64(len(batch))
	return entities.QuadrantDistribution{
		TopLeft:     float64(topLeft) / n,
		TopRight:    float64(topRight) / n,
		BottomLeft:  float64(bottomLeft) / n,
		BottomRight: float64(bottomRight) / n,
	}
}

// IdentifyHotspot maps every sample to the cell (floor(x*gridSize), floor(y*gridSize))
// and returns the most populated one. Among equally populated cells the one
// seen first in the batch wins. An empty batch yields nil. A non-positive
// gridSize falls back to DefaultGridSize.
func IdentifyHotspot(batch entities.Batch, gridSize int) *entities.Hotspot {
	if len(batch) == 0 {
		return nil
	}
	if gridSize <= 0 {
		gridSize = DefaultGridSize
	}

	counts := newCellCounter(len(batch))
	for _, s := range batch {
		counts.add(cellOf(s, gridSize))
	}

	cell, intensity := counts.mostCommon()
	return &entities.Hotspot{
		Cell:        cell,
		Intensity:   intensity,
		TotalPoints: len(batch),
		Ratio:       float64(intensity) / float64(len(batch)),
	}
}

// TransitionCount walks the batch in the order given and counts the steps
// where x or y moved by more than threshold from the previous sample.
func TransitionCount(batch entities.Batch, threshold float64) int {
	if len(batch) < 2 {
		return 0
	}

	transitions := 0
	prevX, prevY := batch[0].X, batch[0].Y
	for _, s := range batch[1:] {
		if math.Abs(s.X-prevX) > threshold || math.Abs(s.Y-prevY) > threshold {
			transitions++
		}
		prevX, prevY = s.X, s.Y
	}
	return transitions
}

func cellOf(s entities.FocusSample, gridSize int) entities.GridCell {
	g := float64(gridSize)
	return entities.GridCell{
		X: int(math.Floor(s.X * g)),
		Y: int(math.Floor(s.Y * g)),
	}
}

// cellCounter is a frequency table that remembers first-insertion order,
// so the winner among tied cells is deterministic.
type cellCounter struct {
	counts map[entities.GridCell]int
	order  []entities.GridCell
}

func newCellCounter(capacity int) *cellCounter {
	return &cellCounter{
		counts: make(map[entities.GridCell]int, capacity),
		order:  make([]entities.GridCell, 0, capacity),
	}
}

func (c *cellCounter) add(cell entities.GridCell) {
	if _, seen := c.counts[cell]; !seen {
		c.order = append(c.order, cell)
	}
	c.counts[cell]++
}

func (c *cellCounter) mostCommon() (entities.GridCell, int) {
	var (
		best      entities.GridCell
		bestCount int
	)
	for _, cell := range c.order {
		if n := c.counts[cell]; n > bestCount {
			best, bestCount = cell, n
		}
	}
	return best, bestCount
}
