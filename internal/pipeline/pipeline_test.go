package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/KaramelBytes/labtrend-cli/internal/ai"
	"github.com/KaramelBytes/labtrend-cli/internal/analysis"
	"github.com/KaramelBytes/labtrend-cli/internal/axes"
	"github.com/KaramelBytes/labtrend-cli/internal/config"
	"github.com/KaramelBytes/labtrend-cli/internal/report"
	"github.com/KaramelBytes/labtrend-cli/internal/submission"
)

func stairs(log string) *submission.Submission {
	return &submission.Submission{
		ActivityTitle: "Barometer on the stairs",
		PlotTypeHint:  "pressure vs height",
		RawLogText:    log,
	}
}

func TestEvaluateCleanPressureLog(t *testing.T) {
	sub := stairs("height,pressure\n0,101\n10,100\n20,99\n30,98")
	res, err := New(nil, nil).Evaluate(context.Background(), sub)
	require.NoError(t, err)

	assert.Equal(t, axes.Assignment{X: "height", Y: "pressure", Source: axes.SourceHint}, res.Axes)
	assert.Len(t, res.Analysis.Samples, 4)
	assert.InDelta(t, -1.0, res.Analysis.Correlation, 1e-9)
	assert.Equal(t, analysis.Decreasing, res.Analysis.Direction)
	require.NotNil(t, res.Report.AccuracyPercent)
	assert.InDelta(t, 100, *res.Report.AccuracyPercent, 1e-9)
	assert.False(t, res.Report.UsedFallback)
	assert.Len(t, res.ID, 36)
	assert.Empty(t, sub.ID, "input must not be modified")
}

func TestEvaluateSingleLine(t *testing.T) {
	res, err := New(nil, nil).Evaluate(context.Background(), stairs("# one reading\nheight,pressure\n0,101\n"))
	require.NoError(t, err)

	assert.Nil(t, res.Report.AccuracyPercent)
	assert.Contains(t, res.Report.LogInsights, report.InsufficientDataInsight)
	assert.True(t, res.Report.Overlay.Synthetic)
	require.Len(t, res.Report.Overlay.ReferencePoints, 6)
	// pressure falls with height, so the synthetic curve does too
	assert.Equal(t, 1.0, res.Report.Overlay.ReferencePoints[0].Y)
}

func TestEvaluateHugeReadingsKeepReportSerializable(t *testing.T) {
	res, err := New(nil, nil).Evaluate(context.Background(), stairs("0,-1e308\n1,1e308\n2,0\n3,5\n"))
	require.NoError(t, err)

	require.NotNil(t, res.Report.AccuracyPercent)
	assert.GreaterOrEqual(t, *res.Report.AccuracyPercent, 0.0)
	assert.LessOrEqual(t, *res.Report.AccuracyPercent, 100.0)
	pts := res.Report.Overlay.ReferencePoints
	require.GreaterOrEqual(t, len(pts), 2)
	for i, p := range pts {
		assert.True(t, p.Y >= 0 && p.Y <= 1, "overlay y out of range at %d: %+v", i, p)
		if i > 0 {
			assert.Greater(t, p.X, pts[i-1].X)
		}
	}
	_, err = json.Marshal(res.Report)
	assert.NoError(t, err)
	_, err = json.Marshal(res.Analysis)
	assert.NoError(t, err)
}

func TestEvaluateValidationFailsBeforeParsing(t *testing.T) {
	composer := &countingComposer{}
	_, err := New(composer, nil).Evaluate(context.Background(), &submission.Submission{RawLogText: "0,1\n1,2\n"})
	var verr *submission.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Zero(t, atomic.LoadInt32(&composer.calls))
}

func TestEvaluateEmptyLogIsNotAnError(t *testing.T) {
	res, err := New(nil, nil).Evaluate(context.Background(), &submission.Submission{DescriptionExcerpt: "log pressure over time"})
	require.NoError(t, err)
	assert.Empty(t, res.Analysis.Samples)
	assert.Equal(t, axes.Assignment{X: "time", Y: "pressure", Source: axes.SourceHeuristic}, res.Axes)
	assert.Len(t, res.Report.Overlay.ReferencePoints, 6)
}

func TestEvaluateFailingNarrativeFallsBack(t *testing.T) {
	rt := runtimeFunc(func(context.Context, ai.GenerateRequest) (*ai.GenerateResponse, error) {
		return nil, &ai.ServerError{APIError: &ai.APIError{StatusCode: 502}}
	})
	res, err := New(report.NewNarrative(rt, report.NarrativeConfig{Model: "m"}, nil), nil).
		Evaluate(context.Background(), stairs("height,pressure\n0,101\n10,100\n20,99\n30,98"))
	require.NoError(t, err)
	assert.True(t, res.Report.UsedFallback)
	assert.Contains(t, res.Report.Detail, "server error")
}

func TestEvaluateCancelledReturnsNoReport(t *testing.T) {
	defer goleak.VerifyNone(t)
	rt := runtimeFunc(func(ctx context.Context, _ ai.GenerateRequest) (*ai.GenerateResponse, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	res, err := New(report.NewNarrative(rt, report.NarrativeConfig{Timeout: time.Minute}, nil), nil).
		Evaluate(ctx, stairs("0,101\n10,100\n"))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Nil(t, res)
}

func TestEvaluateBatch(t *testing.T) {
	subs := []*submission.Submission{
		stairs("height,pressure\n0,101\n10,100\n20,99\n30,98"),
		{RawLogText: "no context"},
		stairs("0 101\n"),
	}
	for i := 0; i < 5; i++ {
		subs = append(subs, stairs(fmt.Sprintf("%d,%d\n%d,%d\n%d,%d\n", 0, 100+i, 10, 99+i, 20, 98+i)))
	}
	items, err := New(nil, nil).EvaluateBatch(context.Background(), subs, 3)
	require.NoError(t, err)
	require.Len(t, items, len(subs))
	for i, it := range items {
		assert.Equal(t, i, it.Index)
		if i == 1 {
			assert.Error(t, it.Err)
			assert.Nil(t, it.Result)
			continue
		}
		require.NoError(t, it.Err, "item %d", i)
		assert.NotNil(t, it.Result.Report)
	}
	assert.Nil(t, items[2].Result.Report.AccuracyPercent)
	assert.NotEqual(t, items[0].Result.ID, items[3].Result.ID)
}

func TestEvaluateBatchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(nil, nil).EvaluateBatch(ctx, []*submission.Submission{stairs("0,1\n")}, 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestComposerFor(t *testing.T) {
	_, ok := ComposerFor(context.Background(), config.Narrative{DisabledReason: "off"}, nil).(report.Heuristic)
	assert.True(t, ok)

	_, ok = ComposerFor(context.Background(), config.Narrative{Enabled: true, Provider: "nope"}, nil).(report.Heuristic)
	assert.True(t, ok)

	c := ComposerFor(context.Background(), config.Narrative{Enabled: true, Provider: ai.ProviderOllama, Model: "m"}, nil)
	_, ok = c.(*report.Narrative)
	assert.True(t, ok)
}

type runtimeFunc func(context.Context, ai.GenerateRequest) (*ai.GenerateResponse, error)

func (f runtimeFunc) Generate(ctx context.Context, req ai.GenerateRequest) (*ai.GenerateResponse, error) {
	return f(ctx, req)
}

type countingComposer struct{ calls int32 }

func (c *countingComposer) Compose(ctx context.Context, in report.Input) (*report.Report, error) {
	atomic.AddInt32(&c.calls, 1)
	return report.Heuristic{}.Compose(ctx, in)
}
