package analysis

import (
	"math"
	"sort"
)

const (
	defaultOutlierThreshold = 3.5
	// minOutlierSamples keeps the MAD estimate meaningful.
	minOutlierSamples = 8
)

// countOutliers counts y values whose robust Z-score (MAD) exceeds threshold.
// The score is scale free, so it is taken on unit-scaled y.
func countOutliers(samples []Sample, threshold float64) int {
	if len(samples) < minOutlierSamples {
		return 0
	}
	ys := make([]float64, len(samples))
	for i, s := range toUnit(samples) {
		ys[i] = s.Y
	}
	median, mad := medianMAD(ys)
	if mad == 0 {
		return 0
	}
	var cnt int
	for _, v := range ys {
		z := 0.6745 * (v - median) / mad
		if math.Abs(z) > threshold {
			cnt++
		}
	}
	return cnt
}

// medianMAD computes median and MAD (median absolute deviation) of values.
func medianMAD(vals []float64) (median, mad float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	median = quantile(cp, 0.5)
	dev := make([]float64, len(cp))
	for i, v := range cp {
		dev[i] = math.Abs(v - median)
	}
	sort.Float64s(dev)
	mad = quantile(dev, 0.5)
	return
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
