package analysis

import (
	"math"
	"sort"
)

// directionThreshold is the |r| above which a trend counts as increasing or decreasing.
const directionThreshold = 0.2

// Result is the outcome of analyzing one submission's samples.
type Result struct {
	Samples     []Sample `json:"samples"`
	Correlation float64  `json:"correlation"`
	Normalized  []Sample `json:"normalizedSamples"`
	// AccuracyPercent is nil when the data cannot support a score.
	AccuracyPercent *float64  `json:"accuracyPercent"`
	Direction       Direction `json:"trendDirection"`
	XSpan           float64   `json:"xSpan"`
	YSpan           float64   `json:"ySpan"`
	// Outliers counts robust |z| outliers on y; informational only.
	Outliers int `json:"outliers"`
}

// Analyze runs every trend metric over samples. expected is the direction
// implied by the axis heuristics, or Unknown.
func Analyze(samples []Sample, expected Direction) Result {
	r := ComputeCorrelation(samples)
	res := Result{
		Samples:     samples,
		Correlation: r,
		Normalized:  NormalizePoints(samples),
		Direction:   TrendDirection(r, expected),
	}
	if acc, ok := ComputeAccuracy(samples); ok {
		res.AccuracyPercent = &acc
	}
	if minX, maxX, minY, maxY, ok := bounds(samples); ok {
		res.XSpan = span(minX, maxX)
		res.YSpan = span(minY, maxY)
	}
	res.Outliers = countOutliers(samples, defaultOutlierThreshold)
	return res
}

// ComputeCorrelation returns the Pearson correlation coefficient of the
// samples, or 0 when fewer than two samples or either axis is constant.
// Both axes are scaled into [0,1] first; r does not change under that, and
// readings near the float64 limits cannot overflow the sums.
func ComputeCorrelation(samples []Sample) float64 {
	n := len(samples)
	if n < 2 {
		return 0
	}
	unit := toUnit(samples)
	var meanX, meanY float64
	for _, s := range unit {
		meanX += s.X
		meanY += s.Y
	}
	meanX /= float64(n)
	meanY /= float64(n)

	var sxy, sxx, syy float64
	for _, s := range unit {
		dx := s.X - meanX
		dy := s.Y - meanY
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	denom := math.Sqrt(sxx * syy)
	if denom == 0 {
		return 0
	}
	r := sxy / denom
	if math.IsNaN(r) {
		return 0
	}
	return math.Max(-1, math.Min(1, r))
}

// NormalizePoints min-max scales x and y independently into [0,1] and sorts
// the result by x. A constant axis maps to 0.5.
func NormalizePoints(samples []Sample) []Sample {
	out := toUnit(samples)
	sort.SliceStable(out, func(i, j int) bool { return out[i].X < out[j].X })
	return out
}

// toUnit scales both axes into [0,1] keeping the input order.
func toUnit(samples []Sample) []Sample {
	out := make([]Sample, 0, len(samples))
	minX, maxX, minY, maxY, ok := bounds(samples)
	if !ok {
		return out
	}
	for _, s := range samples {
		out = append(out, Sample{X: scale(s.X, minX, maxX), Y: scale(s.Y, minY, maxY)})
	}
	return out
}

// scale maps v from [lo,hi] into [0,1]; a zero-width range maps to 0.5.
// When hi-lo overflows, the halves are used instead.
func scale(v, lo, hi float64) float64 {
	if hi == lo {
		return 0.5
	}
	var u float64
	if d := hi - lo; !math.IsInf(d, 0) {
		u = (v - lo) / d
	} else {
		u = (v/2 - lo/2) / (hi/2 - lo/2)
	}
	return math.Max(0, math.Min(1, u))
}

// span is hi-lo, saturated at math.MaxFloat64.
func span(lo, hi float64) float64 {
	return math.Min(hi-lo, math.MaxFloat64)
}

// ComputeAccuracy scores how closely the samples follow the straight line
// through the first and last sample by x order. The score is 100 minus the
// mean absolute deviation from that line as a percentage of the y span,
// clamped to [0,100]. ok is false for fewer than two samples, a zero span
// on either axis, or a score that is not a number.
//
// The line is anchored on the endpoints rather than fitted; existing grades
// depend on this. Deviations are measured after scaling both axes into
// [0,1], which leaves the score unchanged.
func ComputeAccuracy(samples []Sample) (accuracy float64, ok bool) {
	if len(samples) < 2 {
		return 0, false
	}
	minX, maxX, minY, maxY, _ := bounds(samples)
	if minX == maxX || minY == maxY {
		return 0, false
	}
	sorted := sortedByX(toUnit(samples))
	first, last := sorted[0], sorted[len(sorted)-1]
	spanX := last.X - first.X
	rise := last.Y - first.Y
	var sumAbs float64
	for _, s := range sorted {
		expected := first.Y + rise*((s.X-first.X)/spanX)
		sumAbs += math.Abs(s.Y - expected)
	}
	accuracy = 100 - (sumAbs/float64(len(sorted)))*100
	if math.IsNaN(accuracy) {
		return 0, false
	}
	return math.Max(0, math.Min(100, accuracy)), true
}

// TrendDirection classifies a correlation. Weak correlations defer to the
// expected direction when the axis heuristics know one.
func TrendDirection(r float64, expected Direction) Direction {
	switch {
	case r > directionThreshold:
		return Increasing
	case r < -directionThreshold:
		return Decreasing
	case expected == Increasing || expected == Decreasing:
		return expected
	default:
		return Flat
	}
}

func sortedByX(samples []Sample) []Sample {
	cp := make([]Sample, len(samples))
	copy(cp, samples)
	sort.SliceStable(cp, func(i, j int) bool { return cp[i].X < cp[j].X })
	return cp
}
