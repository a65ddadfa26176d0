package qpcr

import (
	"context"
	"fmt"
	"math"

	"github.com/uyouii/growthfit/common"
	"github.com/uyouii/growthfit/growthfit"
	"github.com/uyouii/growthfit/model"
	"github.com/uyouii/growthfit/utils"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
)

type ThresholdScan struct {
	Name string
	// Alphas[i] belongs to Thresholds[i], NaN where no alpha could be fitted.
	Alphas []float64
}

// ScanThresholds spans n thresholds across the log2 range of all traces.
func ScanThresholds(traces []model.Series, n int) ([]float64, error) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, trace := range traces {
		for _, p := range growthfit.LogTransform(trace, growthfit.Log2).Points {
			lo, hi = math.Min(lo, p.Y), math.Max(hi, p.Y)
		}
	}
	if math.IsInf(lo, 0) || math.IsInf(hi, 0) || n < 2 {
		return nil, fmt.Errorf("%w: no positive fluorescence to scan", common.ErrorInsufficientData)
	}
	return utils.Linspace(lo, hi, n), nil
}

// ScanAlphas computes alpha around Ct for every trace at every threshold.
func ScanAlphas(ctx context.Context, traces []model.Series, thresholds []float64) []ThresholdScan {
	logger := utils.GetLogger(ctx)
	analyzer := NewAnalyzer()

	res := make([]ThresholdScan, 0, len(traces))
	undefined := 0
	for _, trace := range traces {
		scan := ThresholdScan{Name: trace.Name(), Alphas: make([]float64, len(thresholds))}
		for i, threshold := range thresholds {
			analysis := analyzer.Analyze(ctx, trace, model.Params{}.WithThreshold(threshold))
			if !analysis.Rate.Defined {
				scan.Alphas[i] = math.NaN()
				undefined++
				continue
			}
			scan.Alphas[i] = analysis.Rate.Value
		}
		res = append(res, scan)
	}

	logger.Info("threshold scan done", zap.Int("traces", len(traces)),
		zap.Int("thresholds", len(thresholds)), zap.Int("undefined", undefined))
	return res
}

// ScanWindows slides a span-point window over the log2 trace and reports fit quality for
// each start cycle.
func ScanWindows(s model.Series, span int) ([]model.ScanPoint, error) {
	if span < 3 {
		return nil, fmt.Errorf("%w: span %d", common.ErrorInvalidValue, span)
	}
	logged := growthfit.LogTransform(s, growthfit.Log2)
	xs, ys := logged.Xs(), logged.Ys()
	if len(xs) < span {
		return nil, fmt.Errorf("%w: %d positive points for span %d", common.ErrorInsufficientData, len(xs), span)
	}

	res := make([]model.ScanPoint, 0, len(xs)-span+1)
	predicted := make([]float64, span)
	for i := 0; i+span <= len(xs); i++ {
		fx, fy := xs[i:i+span], ys[i:i+span]
		fit, err := growthfit.FitLinear(fx, fy)
		if err != nil {
			return nil, err
		}
		for k, x := range fx {
			predicted[k] = fit.Predict(x)
		}
		mse := floats.Distance(predicted, fy, 2)
		res = append(res, model.ScanPoint{
			X:        fx[0],
			RSquared: fit.RSquared,
			MSE:      mse * mse / float64(span),
		})
	}
	return res, nil
}
