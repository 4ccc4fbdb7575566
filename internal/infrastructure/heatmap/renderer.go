package heatmap

import (
	"bytes"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	apperrors "github.com/johnquangdev/ifocus/errors"
	"github.com/johnquangdev/ifocus/internal/domain/entities"
)

// ContentType of rendered heatmaps
const ContentType = "text/html; charset=utf-8"

// "hot" colour ramp, cold to hot
var hotPalette = []string{"#000000", "#b30000", "#ff6600", "#ffff00", "#ffffff"}

// Renderer turns focus batches into standalone HTML heatmaps
type Renderer struct {
	Bins int
}

// NewRenderer creates a renderer with the given bin count per axis
func NewRenderer(bins int) *Renderer {
	if bins <= 0 {
		bins = DefaultBins
	}
	return &Renderer{Bins: bins}
}

// RenderBatch bins the batch coordinates and renders them
func (r *Renderer) RenderBatch(title string, batch entities.Batch) ([]byte, error) {
	xs, ys := batch.Coordinates()
	grid, err := Histogram2D(xs, ys, r.Bins)
	if err != nil {
		return nil, apperrors.ErrRenderFailed("heatmap", err)
	}
	return r.Render(title, grid)
}

// Render draws a grid as an HTML page
func (r *Renderer) Render(title string, grid *Grid) ([]byte, error) {
	labels := axisLabels(grid.Bins)

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: strconv.Itoa(grid.Total()) + " samples",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Type: "category",
			Name: "x",
			Data: labels,
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type: "category",
			Name: "y",
			Data: labels,
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(maxOne(grid.Max())),
			Text:       []string{"Frequency"},
			InRange:    &opts.VisualMapInRange{Color: hotPalette},
		}),
	)

	items := make([]opts.HeatMapData, 0, grid.Bins*grid.Bins)
	for xi, col := range grid.Counts {
		for yi, count := range col {
			items = append(items, opts.HeatMapData{Value: [3]interface{}{xi, yi, count}})
		}
	}
	hm.AddSeries("Frequency", items)

	var buf bytes.Buffer
	if err := hm.Render(&buf); err != nil {
		return nil, apperrors.ErrRenderFailed("heatmap", err)
	}
	return buf.Bytes(), nil
}

// axisLabels names each bin by its lower edge
func axisLabels(bins int) []string {
	labels := make([]string, bins)
	for i := range labels {
		labels[i] = strconv.FormatFloat(float64(i)/float64(bins), 'f', 2, 64)
	}
	return labels
}

func maxOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
