package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/KaramelBytes/labtrend-cli/internal/ai"
	"github.com/KaramelBytes/labtrend-cli/internal/utils"
)

const (
	defaultNarrativeTimeout = 20 * time.Second
	defaultExcerptMax       = 3000
	narrativeMaxTokens      = 1200
	narrativeTemperature    = 0.3
)

// NarrativeConfig tunes the narrative composer.
type NarrativeConfig struct {
	Model      string
	Timeout    time.Duration
	ExcerptMax int
}

// Narrative asks an external generator for the report prose. Every failure
// yields the heuristic report with UsedFallback set and Detail explaining
// why. Numbers and the overlay always come from local analysis.
type Narrative struct {
	runtime ai.Runtime
	cfg     NarrativeConfig
	logger  *zap.Logger
}

// NewNarrative wraps runtime. A nil logger discards log output.
func NewNarrative(runtime ai.Runtime, cfg NarrativeConfig, logger *zap.Logger) *Narrative {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultNarrativeTimeout
	}
	if cfg.ExcerptMax <= 0 {
		cfg.ExcerptMax = defaultExcerptMax
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Narrative{runtime: runtime, cfg: cfg, logger: logger}
}

type generateResult struct {
	resp *ai.GenerateResponse
	err  error
}

// Compose returns ctx.Err() only when the caller's context ends; every other
// outcome is a well-formed Report.
func (n *Narrative) Compose(ctx context.Context, in Input) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if n.runtime == nil {
		return n.fallback(in, errors.New("no narrative runtime configured")), nil
	}

	callCtx, cancel := context.WithTimeout(ctx, n.cfg.Timeout)
	defer cancel()

	msgs := BuildPrompt(in, n.cfg.ExcerptMax)
	req := ai.GenerateRequest{
		Model:          n.cfg.Model,
		Messages:       msgs,
		MaxTokens:      narrativeMaxTokens,
		Temperature:    narrativeTemperature,
		ResponseFormat: ai.JSONObject,
	}
	n.logger.Debug("requesting narrative",
		zap.String("model", n.cfg.Model),
		zap.Int("prompt_tokens", promptTokens(msgs)))
	done := make(chan generateResult, 1)
	start := time.Now()
	go func() {
		resp, err := n.runtime.Generate(callCtx, req)
		done <- generateResult{resp: resp, err: err}
	}()

	var res generateResult
	select {
	case <-callCtx.Done():
		res.err = callCtx.Err()
	case res = <-done:
	}
	if err := ctx.Err(); err != nil {
		n.logger.Debug("narrative call abandoned", zap.Error(err))
		return nil, err
	}
	if res.err != nil {
		return n.fallback(in, res.err), nil
	}

	reply, err := parseReply(res.resp.Content())
	if err != nil {
		return n.fallback(in, err), nil
	}
	n.logger.Debug("narrative report composed",
		zap.String("model", n.cfg.Model),
		zap.String("request_id", res.resp.RequestID),
		zap.Duration("elapsed", time.Since(start)))

	return &Report{
		Summary:            reply.Summary,
		ObjectiveAlignment: reply.ObjectiveAlignment,
		TrendAssessment:    reply.TrendAssessment,
		AccuracyPercent:    in.Analysis.AccuracyPercent,
		PossibleErrors:     nonNil(reply.PossibleErrors),
		ImprovementTips:    nonNil(reply.ImprovementTips),
		LogInsights:        nonNil(reply.LogInsights),
		Overlay:            in.Overlay,
	}, nil
}

func (n *Narrative) fallback(in Input, cause error) *Report {
	rep := heuristicReport(in)
	rep.UsedFallback = true
	rep.Detail = describeFailure(cause, n.cfg.Timeout)
	n.logger.Warn("narrative generator failed, using heuristic report",
		zap.String("model", n.cfg.Model),
		zap.String("detail", rep.Detail),
		zap.Bool("transient", ai.Classify(cause).Retryable()),
		zap.Error(cause))
	return rep
}

// describeFailure turns a narrative failure into a short human-readable line.
func describeFailure(err error, timeout time.Duration) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Sprintf("narrative generator timed out after %s", timeout)
	}
	var shape *ShapeError
	if errors.As(err, &shape) {
		return "narrative response unusable: " + shape.Reason
	}
	switch ai.Classify(err) {
	case ai.KindQuota:
		return "narrative generator quota exceeded: " + err.Error()
	case ai.KindRateLimit:
		return "narrative generator rate limited: " + err.Error()
	case ai.KindAuth:
		return "narrative generator rejected the credentials: " + err.Error()
	case ai.KindModel:
		return "narrative model unavailable: " + err.Error()
	case ai.KindBadRequest:
		return "narrative request rejected: " + err.Error()
	case ai.KindServer:
		return "narrative generator server error: " + err.Error()
	case ai.KindUnreachable:
		return "narrative generator unreachable: " + err.Error()
	}
	return "narrative generator failed: " + err.Error()
}

func promptTokens(msgs []ai.Message) int {
	total := 0
	for _, m := range msgs {
		total += utils.CountTokens(m.Content)
	}
	return total
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
