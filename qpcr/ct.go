package qpcr

import (
	"context"
	"fmt"

	"github.com/uyouii/growthfit/growthfit"
	"github.com/uyouii/growthfit/model"
	"github.com/uyouii/growthfit/utils"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type CtResult struct {
	Name     string
	Crossing *model.CrossingPoint
	Err      error
}

// ComputeCts finds the Ct of every trace at a log2 threshold. The returned error combines
// the per-trace failures; results are returned for every trace regardless.
func ComputeCts(ctx context.Context, traces []model.Series, logThreshold float64) ([]CtResult, error) {
	logger := utils.GetLogger(ctx)

	var errs error
	res := make([]CtResult, 0, len(traces))
	for _, trace := range traces {
		item := CtResult{Name: trace.Name()}
		crossing, err := growthfit.FindLogCrossing(trace, logThreshold, growthfit.Log2)
		if err != nil {
			item.Err = err
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", trace.Name(), err))
		} else {
			item.Crossing = &crossing
		}
		res = append(res, item)
	}

	logger.Info("computed cts", zap.Int("traces", len(traces)),
		zap.Int("failed", len(multierr.Errors(errs))), zap.Float64("threshold", logThreshold))
	return res, errs
}
