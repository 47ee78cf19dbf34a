package overlay

import (
	"fmt"
	"io"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/KaramelBytes/labtrend-cli/internal/analysis"
)

// ChartLabels names the plot and its axes.
type ChartLabels struct {
	Title string
	X     string
	Y     string
}

const (
	chartWidth  = 800
	chartHeight = 480
)

// pointStyle renders points only, with no connecting line.
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: 0,
		DotWidth:    4,
		DotColor:    col,
	}
}

// RenderPNG draws the normalized observations as dots and the reference
// curve as a line. Both axes are fixed to the normalized [0,1] range.
func RenderPNG(w io.Writer, curve Curve, observed []analysis.Sample, labels ChartLabels) error {
	if len(curve.ReferencePoints) < 2 {
		return fmt.Errorf("reference curve needs at least 2 points, got %d", len(curve.ReferencePoints))
	}
	series := []chart.Series{}
	if len(observed) > 0 {
		xs, ys := split(observed)
		series = append(series, chart.ContinuousSeries{
			Name:    "Observed",
			XValues: xs,
			YValues: ys,
			Style:   pointStyle(chart.ColorBlue),
		})
	}
	rx, ry := split(curve.ReferencePoints)
	series = append(series, chart.ContinuousSeries{
		Name:    "Reference (" + curve.Note + ")",
		XValues: rx,
		YValues: ry,
		Style: chart.Style{
			StrokeWidth: 2,
			StrokeColor: chart.ColorRed,
		},
	})

	ch := chart.Chart{
		Title:      labels.Title,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		Width:      chartWidth,
		Height:     chartHeight,
		XAxis:      chart.XAxis{Name: axisName(labels.X, "x"), Range: &chart.ContinuousRange{Min: -0.05, Max: 1.05}},
		YAxis:      chart.YAxis{Name: axisName(labels.Y, "y"), Range: &chart.ContinuousRange{Min: -0.05, Max: 1.05}},
		Series:     series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render overlay chart: %w", err)
	}
	return nil
}

func split(pts []analysis.Sample) ([]float64, []float64) {
	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	for i, p := range pts {
		xs[i], ys[i] = p.X, p.Y
	}
	return xs, ys
}

func axisName(label, fallback string) string {
	if label == "" {
		return fallback + " (normalized)"
	}
	return label + " (normalized)"
}
