package overlay

import (
	"bytes"
	"image/png"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/labtrend-cli/internal/analysis"
)

func requireWellFormed(t *testing.T, c Curve) {
	t.Helper()
	require.GreaterOrEqual(t, len(c.ReferencePoints), 2)
	for i, p := range c.ReferencePoints {
		assert.True(t, p.Y >= 0 && p.Y <= 1, "y out of range at %d: %+v", i, p)
		if i > 0 {
			assert.Greater(t, p.X, c.ReferencePoints[i-1].X, "x not strictly increasing at %d", i)
		}
	}
}

func TestSynthesizeDerivedFromData(t *testing.T) {
	norm := analysis.NormalizePoints([]analysis.Sample{{X: 0, Y: 101}, {X: 10, Y: 100}, {X: 20, Y: 99}, {X: 30, Y: 98}})
	c := Synthesize(norm, analysis.Decreasing, analysis.Decreasing)
	requireWellFormed(t, c)
	assert.Equal(t, NoteDerived, c.Note)
	assert.False(t, c.Synthetic)
	assert.Equal(t, norm, c.ReferencePoints)
}

func TestSynthesizeMergesDuplicateX(t *testing.T) {
	norm := []analysis.Sample{{X: 0, Y: 0}, {X: 0.5, Y: 0.2}, {X: 0.5, Y: 0.6}, {X: 1, Y: 1}}
	c := Synthesize(norm, analysis.Unknown, analysis.Increasing)
	requireWellFormed(t, c)
	require.Len(t, c.ReferencePoints, 3)
	assert.InDelta(t, 0.4, c.ReferencePoints[1].Y, 1e-12)
}

func TestSynthesizeCollapsedXUsesSyntheticCurve(t *testing.T) {
	// zero x span normalizes every x to 0.5
	norm := analysis.NormalizePoints([]analysis.Sample{{X: 3, Y: 1}, {X: 3, Y: 2}, {X: 3, Y: 4}})
	c := Synthesize(norm, analysis.Unknown, analysis.Flat)
	requireWellFormed(t, c)
	assert.True(t, c.Synthetic)
	assert.Equal(t, NoteSynthetic, c.Note)
}

func TestSynthesizeSkipsNonFinitePoints(t *testing.T) {
	norm := []analysis.Sample{{X: 0, Y: 0}, {X: 0.3, Y: math.NaN()}, {X: math.NaN(), Y: 0.2}, {X: 0.6, Y: 0.5}, {X: 1, Y: 1}}
	c := Synthesize(norm, analysis.Unknown, analysis.Increasing)
	requireWellFormed(t, c)
	assert.Equal(t, NoteDerived, c.Note)
	assert.Len(t, c.ReferencePoints, 3)

	c = Synthesize([]analysis.Sample{{X: math.NaN(), Y: 1}, {X: 0, Y: math.Inf(1)}, {X: 1, Y: 0}}, analysis.Unknown, analysis.Flat)
	requireWellFormed(t, c)
	assert.True(t, c.Synthetic)

	assert.Equal(t, 0.5, clamp01(math.NaN()))
	assert.Equal(t, 1.0, clamp01(math.Inf(1)))
}

func TestSynthesizeSyntheticDirections(t *testing.T) {
	cases := []struct {
		name               string
		expected, observed analysis.Direction
		firstY, lastY      float64
	}{
		{"expected decreasing", analysis.Decreasing, analysis.Increasing, 1, 0},
		{"observed decreasing", analysis.Unknown, analysis.Decreasing, 1, 0},
		{"flat defaults to increasing", analysis.Unknown, analysis.Flat, 0, 1},
		{"nothing known", analysis.Unknown, analysis.Unknown, 0, 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			for _, in := range [][]analysis.Sample{nil, {{X: 0.5, Y: 0.5}}, {{X: 0, Y: 0}, {X: 1, Y: 1}}} {
				curve := Synthesize(in, c.expected, c.observed)
				requireWellFormed(t, curve)
				require.Len(t, curve.ReferencePoints, 6)
				assert.True(t, curve.Synthetic)
				assert.Equal(t, 0.0, curve.ReferencePoints[0].X)
				assert.Equal(t, 1.0, curve.ReferencePoints[5].X)
				assert.InDelta(t, c.firstY, curve.ReferencePoints[0].Y, 1e-12)
				assert.InDelta(t, c.lastY, curve.ReferencePoints[5].Y, 1e-12)
			}
		})
	}
}

func TestRenderPNG(t *testing.T) {
	obs := []analysis.Sample{{X: 0, Y: 1}, {X: 0.5, Y: 0.4}, {X: 1, Y: 0}}
	c := Synthesize(obs, analysis.Decreasing, analysis.Decreasing)
	var buf bytes.Buffer
	require.NoError(t, RenderPNG(&buf, c, obs, ChartLabels{Title: "pressure vs height", X: "height", Y: "pressure"}))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, chartWidth, img.Bounds().Dx())

	assert.Error(t, RenderPNG(&bytes.Buffer{}, Curve{}, nil, ChartLabels{}))
}
