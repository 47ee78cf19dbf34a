package analysis

import "math"

// Sample is one (x, y) observation extracted from a lab log.
type Sample struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Direction is the qualitative shape of y versus x.
type Direction string

const (
	Increasing Direction = "increasing"
	Decreasing Direction = "decreasing"
	Flat       Direction = "flat"
	// Unknown is only used for expectations; observed trends are never Unknown.
	Unknown Direction = ""
)

// Finite reports whether both coordinates are finite numbers.
func (s Sample) Finite() bool {
	return !math.IsNaN(s.X) && !math.IsInf(s.X, 0) && !math.IsNaN(s.Y) && !math.IsInf(s.Y, 0)
}

// bounds returns min/max of both axes. ok is false for an empty slice.
func bounds(samples []Sample) (minX, maxX, minY, maxY float64, ok bool) {
	if len(samples) == 0 {
		return 0, 0, 0, 0, false
	}
	minX, maxX = math.Inf(1), math.Inf(-1)
	minY, maxY = math.Inf(1), math.Inf(-1)
	for _, s := range samples {
		minX = math.Min(minX, s.X)
		maxX = math.Max(maxX, s.X)
		minY = math.Min(minY, s.Y)
		maxY = math.Max(maxY, s.Y)
	}
	return minX, maxX, minY, maxY, true
}
