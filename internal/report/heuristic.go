package report

import (
	"context"
	"fmt"
	"math"

	"github.com/KaramelBytes/labtrend-cli/internal/analysis"
)

const (
	strongCorrelation   = 0.7
	moderateCorrelation = 0.4
	minTrendSamples     = 3

	objectiveMet    = 90.0
	objectiveMostly = 75.0
)

// InsufficientDataInsight is the log insight used when fewer than two
// numeric pairs were parsed.
const InsufficientDataInsight = "Insufficient data: not enough numeric pairs detected in the log."

var (
	targetedErrors = []string{
		"Minor noise or offsets in individual readings",
		"Sampling interval variation between readings",
	}
	targetedTips = []string{
		"Repeat the run and average the readings at each point",
		"Keep the sampling interval constant across the run",
	}
	broadErrors = []string{
		"Sensor noise or calibration drift",
		"Gaps or spikes in sampling",
		"Unit or axis mix-up between the two columns",
	}
	broadTips = []string{
		"Calibrate the sensor before recording",
		"Record at a steady interval and re-measure obvious spikes",
		"Check that each column holds the quantity and unit you expect",
		"Collect more samples across the full range of the experiment",
	}
)

// Heuristic composes reports from fixed thresholds. It never fails.
type Heuristic struct{}

func (Heuristic) Compose(_ context.Context, in Input) (*Report, error) {
	return heuristicReport(in), nil
}

func heuristicReport(in Input) *Report {
	res := in.Analysis
	r := res.Correlation
	strong := math.Abs(r) > moderateCorrelation

	rep := &Report{
		Summary:            summary(res),
		ObjectiveAlignment: objectiveAlignment(res.AccuracyPercent),
		TrendAssessment:    trendAssessment(in),
		AccuracyPercent:    res.AccuracyPercent,
		LogInsights:        logInsights(in),
		Overlay:            in.Overlay,
	}
	if strong {
		rep.PossibleErrors = append([]string(nil), targetedErrors...)
		rep.ImprovementTips = append([]string(nil), targetedTips...)
	} else {
		rep.PossibleErrors = append([]string(nil), broadErrors...)
		rep.ImprovementTips = append([]string(nil), broadTips...)
	}
	return rep
}

func summary(res analysis.Result) string {
	n := len(res.Samples)
	r := res.Correlation
	switch {
	case n < minTrendSamples:
		return fmt.Sprintf("Only %d data point(s) captured: limited points, add more samples before judging the trend.", n)
	case math.Abs(r) > strongCorrelation:
		return fmt.Sprintf("Clear match: the data follows a consistent %s trend (r=%.2f).", res.Direction, r)
	case math.Abs(r) > moderateCorrelation:
		return fmt.Sprintf("The data is trending %s but noisy (r=%.2f).", res.Direction, r)
	default:
		return fmt.Sprintf("The data is weak or noisy and shows no clear trend (r=%.2f).", r)
	}
}

func objectiveAlignment(acc *float64) string {
	switch {
	case acc == nil:
		return "Objective cannot be assessed: not enough usable data to score accuracy."
	case *acc >= objectiveMet:
		return fmt.Sprintf("Objective met: observations track the expected trend closely (accuracy %.1f%%).", *acc)
	case *acc >= objectiveMostly:
		return fmt.Sprintf("Objective mostly met: the overall trend is right with some deviation (accuracy %.1f%%).", *acc)
	default:
		return fmt.Sprintf("Objective not met: observations deviate substantially from the expected trend (accuracy %.1f%%).", *acc)
	}
}

func trendAssessment(in Input) string {
	res := in.Analysis
	if len(res.Samples) < 2 {
		return fmt.Sprintf("Trend cannot be assessed from %d sample(s).", len(res.Samples))
	}
	s := fmt.Sprintf("Observed trend is %s (r=%.2f)", res.Direction, res.Correlation)
	expected := in.Axes.ExpectedDirection()
	switch {
	case expected == analysis.Unknown:
		return s + "."
	case expected == res.Direction:
		return fmt.Sprintf("%s, matching the expected %s relationship for %s.", s, expected, in.Axes)
	default:
		return fmt.Sprintf("%s, but %s is expected to be %s.", s, in.Axes, expected)
	}
}

func logInsights(in Input) []string {
	res := in.Analysis
	n := len(res.Samples)
	if n < 2 {
		return []string{
			InsufficientDataInsight,
			fmt.Sprintf("Parsed %d usable sample(s); at least 2 are needed.", n),
		}
	}
	out := []string{
		fmt.Sprintf("Detected %d samples; trend %s; correlation %.3f.", n, res.Direction, r3(res.Correlation)),
	}
	if in.Axes.Resolved() {
		out = append(out, fmt.Sprintf("Axes: %s (from %s).", in.Axes, in.Axes.Source))
	} else {
		out = append(out, "Axes unresolved: the first two numeric columns were used.")
	}
	if res.AccuracyPercent == nil {
		out = append(out, "Accuracy not scored: one axis has zero span.")
	}
	if res.Outliers > 0 {
		out = append(out, fmt.Sprintf("%d reading(s) look like outliers.", res.Outliers))
	}
	return out
}

// r3 avoids printing -0.000.
func r3(v float64) float64 {
	if math.Abs(v) < 5e-4 {
		return 0
	}
	return v
}
