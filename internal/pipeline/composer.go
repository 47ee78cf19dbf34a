package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/KaramelBytes/labtrend-cli/internal/ai"
	"github.com/KaramelBytes/labtrend-cli/internal/config"
	"github.com/KaramelBytes/labtrend-cli/internal/report"
)

// ComposerFor picks the composer described by n. A disabled or broken
// narrative configuration yields the heuristic composer; the reason is logged.
func ComposerFor(ctx context.Context, n config.Narrative, logger *zap.Logger) report.Composer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !n.Enabled {
		logger.Debug("narrative enrichment disabled", zap.String("reason", n.DisabledReason))
		return report.Heuristic{}
	}
	rt, err := ai.GetRuntime(ctx, n.Provider, n.Runtime)
	if err != nil {
		logger.Warn("narrative runtime unavailable, using heuristic reports",
			zap.String("provider", n.Provider), zap.Error(err))
		return report.Heuristic{}
	}
	logger.Debug("narrative enrichment enabled",
		zap.String("provider", n.Provider), zap.String("model", n.Model), zap.Duration("timeout", n.Timeout))
	return report.NewNarrative(rt, report.NarrativeConfig{
		Model:      n.Model,
		Timeout:    n.Timeout,
		ExcerptMax: n.ExcerptMax,
	}, logger)
}
