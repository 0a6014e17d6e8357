package services

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jakechorley/shift-roster/pkg/milp"
)

// BatchResult is the outcome of one run of a batch. Exactly one of Result and Err is set.
type BatchResult struct {
	Label  string
	Result *GenerateResult
	Err    error
}

// GenerateRosters runs independent scheduling runs concurrently, at most parallelism at a
// time (unbounded if parallelism <= 0). A failed run does not stop the others.
// Results are returned in request order.
func GenerateRosters(ctx context.Context, solver milp.Solver, logger *zap.Logger, reqs []GenerateRequest, parallelism int) []BatchResult {
	results := make([]BatchResult, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	if parallelism > 0 {
		g.SetLimit(parallelism)
	}

	logger.Debug("Starting batch", zap.Int("runs", len(reqs)), zap.Int("parallelism", parallelism))
	for i, req := range reqs {
		g.Go(func() error {
			result, err := GenerateRoster(gctx, solver, logger, req)
			results[i] = BatchResult{Label: req.Label, Result: result, Err: err}
			if err != nil {
				logger.Warn("Run failed", zap.String("label", req.Label), zap.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()

	return results
}
