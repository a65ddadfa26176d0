package summary

import (
	"context"
	"fmt"
	"sort"

	"github.com/montanaflynn/stats"
	"github.com/uyouii/growthfit/common"
	"github.com/uyouii/growthfit/utils"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	gonumstat "gonum.org/v1/gonum/stat"
)

// Stats describes a set of derived rates after z-score clipping.
type Stats struct {
	Count int
	// Dropped counts the non-finite and clipped values.
	Dropped int
	Clip    Clip

	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
	Median float64
	Q1     float64
	Q3     float64
}

// Describe summarises the finite values inside the z-score clip of values.
func Describe(ctx context.Context, values []float64) (res *Stats, err error) {
	logger := utils.GetLogger(ctx)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Describe recover panic error!", zap.Any("err", r),
				zap.String("panic info", utils.GetPanicInfo()), zap.Float64s("values", values))
			res, err = nil, fmt.Errorf("%w: %v", common.ErrorInvalidValue, r)
		}
	}()

	kept := finite(values)
	if len(kept) < getMinDescribePointCnt() {
		logger.Debug("too few values to describe", zap.Int("cnt", len(kept)))
		return nil, fmt.Errorf("%w: %d finite values", common.ErrorInsufficientData, len(kept))
	}

	clip := ZScoreClip(kept)
	kept, _ = ApplyClip(kept, nil, clip)
	sort.Float64s(kept)

	median, err := stats.Float64Data(kept).Median()
	if err != nil {
		return nil, fmt.Errorf("%w: median: %v", common.ErrorInsufficientData, err)
	}

	mean, stddev := gonumstat.MeanStdDev(kept, nil)
	res = &Stats{
		Count:   len(kept),
		Dropped: len(values) - len(kept),
		Clip:    *clip,
		Mean:    mean,
		StdDev:  stddev,
		Min:     floats.Min(kept),
		Max:     floats.Max(kept),
		Median:  median,
		Q1:      gonumstat.Quantile(QuartileProbs[0], gonumstat.LinInterp, kept, nil),
		Q3:      gonumstat.Quantile(QuartileProbs[2], gonumstat.LinInterp, kept, nil),
	}
	logger.Debug("described values", zap.Int("count", res.Count), zap.Int("dropped", res.Dropped),
		zap.Float64("mean", res.Mean))
	return res, nil
}

// Estimate returns the kernel density of the z-score clipped values.
func Estimate(ctx context.Context, values []float64) ([]Density, float64, error) {
	logger := utils.GetLogger(ctx)

	kept := finite(values)
	if len(kept) < getMinDensityPointCnt() {
		return nil, 0, fmt.Errorf("%w: %d finite values", common.ErrorInsufficientData, len(kept))
	}
	k, err := NewKDE(kept, nil, 1.0, DefaultCut, ZScoreClip(kept))
	if err != nil {
		logger.Error("NewKDE failed", zap.Error(err))
		return nil, 0, err
	}
	return k.Density()
}
