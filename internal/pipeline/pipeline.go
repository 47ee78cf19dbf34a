// Package pipeline evaluates lab submissions end to end.
package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/KaramelBytes/labtrend-cli/internal/analysis"
	"github.com/KaramelBytes/labtrend-cli/internal/axes"
	"github.com/KaramelBytes/labtrend-cli/internal/overlay"
	"github.com/KaramelBytes/labtrend-cli/internal/parser"
	"github.com/KaramelBytes/labtrend-cli/internal/report"
	"github.com/KaramelBytes/labtrend-cli/internal/submission"
)

// Stage names the evaluation steps, in order.
type Stage string

const (
	StageParsing   Stage = "parsing"
	StageAnalyzing Stage = "analyzing"
	StageOverlay   Stage = "synthesizing-overlay"
	StageComposing Stage = "composing"
	StageDone      Stage = "done"
)

// Result is one evaluated submission.
type Result struct {
	ID       string          `json:"id" yaml:"id"`
	Axes     axes.Assignment `json:"axes" yaml:"axes"`
	Analysis analysis.Result `json:"analysis" yaml:"analysis"`
	Report   *report.Report  `json:"report" yaml:"report"`
}

// Evaluator holds no per-request state and is safe for concurrent use.
type Evaluator struct {
	composer report.Composer
	logger   *zap.Logger
}

// New returns an Evaluator. A nil composer means the heuristic one and a
// nil logger discards output.
func New(composer report.Composer, logger *zap.Logger) *Evaluator {
	if composer == nil {
		composer = report.Heuristic{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{composer: composer, logger: logger}
}

// Evaluate validates sub and runs every stage. The only errors are input
// validation failures and cancellation of ctx; sub is not modified.
func (e *Evaluator) Evaluate(ctx context.Context, sub *submission.Submission) (*Result, error) {
	if err := sub.Validate(); err != nil {
		return nil, err
	}
	s := *sub
	id := s.EnsureID()
	log := e.logger.With(zap.String("submission", id))

	log.Debug("stage", zap.Stringer("stage", StageParsing))
	a := axes.Resolve(s.PlotTypeHint, s.CodeExcerpt, s.DescriptionExcerpt)
	samples := parser.ParseLog(s.RawLogText, a)

	log.Debug("stage", zap.Stringer("stage", StageAnalyzing),
		zap.String("axes", a.String()), zap.Int("samples", len(samples)))
	expected := a.ExpectedDirection()
	res := analysis.Analyze(samples, expected)

	log.Debug("stage", zap.Stringer("stage", StageOverlay))
	curve := overlay.Synthesize(res.Normalized, expected, res.Direction)

	log.Debug("stage", zap.Stringer("stage", StageComposing))
	rep, err := e.composer.Compose(ctx, report.Input{
		ActivityTitle:      s.ActivityTitle,
		Subject:            s.Subject,
		Grade:              s.Grade,
		PlotTypeHint:       s.PlotTypeHint,
		CodeExcerpt:        s.CodeExcerpt,
		DescriptionExcerpt: s.DescriptionExcerpt,
		RawLogText:         s.RawLogText,
		AccuracyHint:       s.AccuracyHintOverride,
		Axes:               a,
		Analysis:           res,
		Overlay:            curve,
	})
	if err != nil {
		return nil, fmt.Errorf("compose report: %w", err)
	}

	log.Debug("stage", zap.Stringer("stage", StageDone),
		zap.Float64("correlation", res.Correlation),
		zap.Bool("used_fallback", rep.UsedFallback))
	return &Result{ID: id, Axes: a, Analysis: res, Report: rep}, nil
}

func (s Stage) String() string { return string(s) }
