// Package report turns analysis results into student-facing feedback.
//
// Two Composer implementations exist: Heuristic, which is deterministic and
// always available, and Narrative, which asks an external generator for the
// prose and falls back to Heuristic on any failure.
package report

import (
	"context"

	"github.com/KaramelBytes/labtrend-cli/internal/analysis"
	"github.com/KaramelBytes/labtrend-cli/internal/axes"
	"github.com/KaramelBytes/labtrend-cli/internal/overlay"
)

// Report is the externally visible evaluation outcome.
type Report struct {
	Summary            string        `json:"summary" yaml:"summary"`
	ObjectiveAlignment string        `json:"objectiveAlignment" yaml:"objectiveAlignment"`
	TrendAssessment    string        `json:"trendAssessment" yaml:"trendAssessment"`
	AccuracyPercent    *float64      `json:"accuracyPercent" yaml:"accuracyPercent"`
	PossibleErrors     []string      `json:"possibleErrors" yaml:"possibleErrors"`
	ImprovementTips    []string      `json:"improvementTips" yaml:"improvementTips"`
	LogInsights        []string      `json:"logInsights" yaml:"logInsights"`
	Overlay            overlay.Curve `json:"overlay" yaml:"overlay"`
	UsedFallback       bool          `json:"usedFallback" yaml:"usedFallback"`
	Detail             string        `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// Input is everything a composer may look at for one submission.
type Input struct {
	ActivityTitle      string
	Subject            string
	Grade              string
	PlotTypeHint       string
	CodeExcerpt        string
	DescriptionExcerpt string
	RawLogText         string
	// AccuracyHint overrides the computed accuracy as the narrative tone hint.
	AccuracyHint *float64

	Axes     axes.Assignment
	Analysis analysis.Result
	Overlay  overlay.Curve
}

// accuracyHint is the override when present, else the computed accuracy.
func (in Input) accuracyHint() *float64 {
	if in.AccuracyHint != nil {
		return in.AccuracyHint
	}
	return in.Analysis.AccuracyPercent
}

// Composer builds a Report. Implementations return an error only when ctx
// is cancelled by the caller.
type Composer interface {
	Compose(ctx context.Context, in Input) (*Report, error)
}
