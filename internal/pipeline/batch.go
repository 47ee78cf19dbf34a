package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/KaramelBytes/labtrend-cli/internal/submission"
)

// BatchItem is the outcome for one submission of a batch. Exactly one of
// Result and Err is set.
type BatchItem struct {
	Index  int
	Result *Result
	Err    error
}

// EvaluateBatch evaluates subs with at most limit running at once. A failing
// submission is recorded in its item and does not stop the others; only
// cancellation of ctx aborts the batch.
func (e *Evaluator) EvaluateBatch(ctx context.Context, subs []*submission.Submission, limit int) ([]BatchItem, error) {
	if limit <= 0 {
		limit = 1
	}
	items := make([]BatchItem, len(subs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, sub := range subs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := e.Evaluate(gctx, sub)
			if err != nil && ctx.Err() != nil {
				return ctx.Err()
			}
			items[i] = BatchItem{Index: i, Result: res, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}
