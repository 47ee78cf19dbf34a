// Package overlay builds the reference curve drawn next to a student's data.
package overlay

import (
	"math"

	"github.com/KaramelBytes/labtrend-cli/internal/analysis"
)

const (
	NoteDerived   = "derived from submitted data"
	NoteSynthetic = "synthetic expected trend, insufficient real data"

	// minDerivedSamples is the number of normalized samples needed before the
	// submitted data itself becomes the reference curve.
	minDerivedSamples = 3
	syntheticPoints   = 6
)

// Curve is a reference curve in normalized [0,1] coordinates. It always has
// at least two points with strictly increasing x.
type Curve struct {
	Note            string            `json:"note" yaml:"note"`
	ReferencePoints []analysis.Sample `json:"referencePoints" yaml:"referencePoints"`
	Synthetic       bool              `json:"synthetic" yaml:"synthetic"`
}

// Synthesize derives the curve from normalized samples when there are enough
// of them, otherwise it draws a straight reference line in the direction the
// data is expected to go. expected wins over observed; increasing is the
// default.
func Synthesize(normalized []analysis.Sample, expected, observed analysis.Direction) Curve {
	finite := make([]analysis.Sample, 0, len(normalized))
	for _, p := range normalized {
		if p.Finite() {
			finite = append(finite, p)
		}
	}
	if len(finite) >= minDerivedSamples {
		if pts := mergeSameX(finite); len(pts) >= 2 {
			return Curve{Note: NoteDerived, ReferencePoints: pts}
		}
	}
	dir := expected
	if dir != analysis.Increasing && dir != analysis.Decreasing {
		dir = observed
	}
	return Curve{Note: NoteSynthetic, ReferencePoints: line(dir), Synthetic: true}
}

// mergeSameX averages y over runs of equal x in x-sorted, finite input and
// clamps values into [0,1].
func mergeSameX(sorted []analysis.Sample) []analysis.Sample {
	out := make([]analysis.Sample, 0, len(sorted))
	for i := 0; i < len(sorted); {
		j := i
		var sum float64
		for j < len(sorted) && sorted[j].X == sorted[i].X {
			sum += sorted[j].Y
			j++
		}
		out = append(out, analysis.Sample{X: clamp01(sorted[i].X), Y: clamp01(sum / float64(j-i))})
		i = j
	}
	return out
}

func line(dir analysis.Direction) []analysis.Sample {
	pts := make([]analysis.Sample, syntheticPoints)
	for i := range pts {
		x := float64(i) / float64(syntheticPoints-1)
		y := x
		if dir == analysis.Decreasing {
			y = 1 - x
		}
		pts[i] = analysis.Sample{X: x, Y: y}
	}
	return pts
}

// clamp01 limits v to [0,1]; NaN becomes the midpoint.
func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0.5
	}
	return math.Max(0, math.Min(1, v))
}
