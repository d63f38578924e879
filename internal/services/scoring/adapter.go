package scoring

import (
	"context"

	domrepo "PopPredict/internal/domain/repository"
	domsvc "PopPredict/internal/domain/service"
	xlogger "PopPredict/pkg/logger"
)

// FallbackMultiplier prices the rule-based estimate: base value scaled up 20%.
const FallbackMultiplier = 1.2

// Adapter wraps the pluggable scorer and guarantees an answer. When the
// scorer call fails it substitutes the deterministic base-value estimate and
// marks the result as degraded so callers can tell a fallback from a real
// model prediction.
type Adapter struct {
	scorer  domsvc.Scorer
	logger  *xlogger.Logger
	metrics domrepo.Metrics
}

func NewAdapter(scorer domsvc.Scorer, logger *xlogger.Logger, metrics domrepo.Metrics) *Adapter {
	return &Adapter{scorer: scorer, logger: logger, metrics: metrics}
}

// Score returns the predicted price and whether the fallback path produced
// it. baseValue must already carry the item's default (never zero), so the
// fallback always computes.
func (a *Adapter) Score(ctx context.Context, features []float64, baseValue float64) (float64, bool) {
	price, err := a.scorer.Score(ctx, features)
	if err == nil {
		return price, false
	}

	if a.logger != nil {
		a.logger.Warn("scorer unavailable, using fallback estimate",
			xlogger.Error(err),
			xlogger.Float64("base_value", baseValue))
	}
	if a.metrics != nil {
		a.metrics.RecordFallback()
		a.metrics.RecordError("scorer_unavailable")
	}
	return baseValue * FallbackMultiplier, true
}

// Ping reports scorer reachability.
func (a *Adapter) Ping(ctx context.Context) error {
	return a.scorer.Ping(ctx)
}
