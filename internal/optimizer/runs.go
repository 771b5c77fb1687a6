package optimizer

import (
	"context"
	"errors"
	"time"

	"github.com/rgehrsitz/ssopt/internal/domain"
	"github.com/rgehrsitz/ssopt/internal/logging"
	"github.com/rgehrsitz/ssopt/internal/metrics"
)

// Strategy runs OptimalStrategyOptimized and records the run.
func (r *Runner) Strategy(in Input) domain.StrategyResult {
	kind := metrics.RunKindStrategy
	if len(in.Recipients) == 1 {
		kind = metrics.RunKindSingle
	}
	start := time.Now()
	res := OptimalStrategyOptimized(in)
	r.observe(kind, start, nil)
	return res
}

// Rank runs RankStrategies and records the run.
func (r *Runner) Rank(in Input, n int) []domain.StrategyResult {
	start := time.Now()
	res := RankStrategies(in, n)
	r.observe(metrics.RunKindRanked, start, nil)
	return res
}

// Weighted runs OptimalStrategyWeighted and records the run. It stops early
// with ctx's error when ctx is done.
func (r *Runner) Weighted(ctx context.Context, in WeightedInput) (domain.StrategyResult, error) {
	start := time.Now()
	res, err := optimalStrategyWeighted(ctx, in)
	r.observe(metrics.RunKindWeighted, start, err)
	return res, err
}

func (r *Runner) observe(kind string, start time.Time, err error) {
	elapsed := time.Since(start)
	log := logging.OrNop(r.Logger)
	switch {
	case err == nil:
		r.Metrics.ObserveRun(kind, metrics.OutcomeOK, elapsed)
		log.Debugf("%s search finished in %s", kind, elapsed)
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		r.Metrics.ObserveRun(kind, metrics.OutcomeCancelled, elapsed)
		log.Warnf("%s search stopped after %s: %v", kind, elapsed, err)
	default:
		r.Metrics.ObserveRun(kind, metrics.OutcomeError, elapsed)
		log.Warnf("%s search failed after %s: %v", kind, elapsed, err)
	}
}
