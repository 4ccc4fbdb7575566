package heatmap

import (
	"fmt"
	"math"
)

// DefaultBins is the number of bins per axis
const DefaultBins = 50

// Grid is a square 2D histogram over the unit square.
// Counts[xi][yi] holds the samples falling into column xi and row yi.
type Grid struct {
	Bins   int
	Counts [][]int
	total  int
	max    int
}

// Total returns the number of binned samples
func (g *Grid) Total() int { return g.total }

// Max returns the largest cell count
func (g *Grid) Max() int { return g.max }

// Histogram2D bins paired coordinates into a bins x bins grid over [0, 1].
// Values outside the range land in the nearest edge bin; NaN pairs are dropped.
func Histogram2D(xs, ys []float64, bins int) (*Grid, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("coordinate length mismatch: %d x values, %d y values", len(xs), len(ys))
	}
	if bins <= 0 {
		bins = DefaultBins
	}

	g := &Grid{Bins: bins, Counts: make([][]int, bins)}
	for i := range g.Counts {
		g.Counts[i] = make([]int, bins)
	}

	for i := range xs {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			continue
		}
		xi, yi := binIndex(xs[i], bins), binIndex(ys[i], bins)
		g.Counts[xi][yi]++
		g.total++
		if g.Counts[xi][yi] > g.max {
			g.max = g.Counts[xi][yi]
		}
	}
	return g, nil
}

// binIndex maps v to its bin; the right edge 1.0 belongs to the last bin
func binIndex(v float64, bins int) int {
	idx := int(math.Floor(v * float64(bins)))
	if idx < 0 {
		return 0
	}
	if idx >= bins {
		return bins - 1
	}
	return idx
}
