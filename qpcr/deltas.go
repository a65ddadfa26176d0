package qpcr

import (
	"fmt"
	"sort"

	"github.com/montanaflynn/stats"
	"github.com/uyouii/growthfit/common"
	"github.com/uyouii/growthfit/growthfit"
	"github.com/uyouii/growthfit/model"
	gonumstat "gonum.org/v1/gonum/stat"
)

type DeltaPlot struct {
	// Pairs holds (distance difference, Ct difference) for every pair of samples.
	Pairs []model.Point
	Fit   *model.FitResult
	// OriginSlope is the least-squares slope of the line forced through zero.
	OriginSlope float64
	MedianRatio float64
}

// DeltaGDeltaH compares every pair of samples after ordering them by distance: the Ct
// difference is regressed on the distance difference.
func DeltaGDeltaH(distances, cts []float64) (*DeltaPlot, error) {
	if len(distances) != len(cts) {
		return nil, fmt.Errorf("%w: %d distances for %d cts", common.ErrorInvalidValue, len(distances), len(cts))
	}

	samples := make([]model.Point, len(distances))
	for i := range distances {
		samples[i] = model.Point{X: distances[i], Y: cts[i]}
	}
	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].Before(samples[j])
	})

	var pairs []model.Point
	for i := 0; i < len(samples)-1; i++ {
		for j := i + 1; j < len(samples); j++ {
			pairs = append(pairs, model.Point{X: samples[j].X - samples[i].X, Y: samples[j].Y - samples[i].Y})
		}
	}

	xs, ys := make([]float64, len(pairs)), make([]float64, len(pairs))
	ratios := make(stats.Float64Data, 0, len(pairs))
	for i, p := range pairs {
		xs[i], ys[i] = p.X, p.Y
		if p.X != 0 {
			ratios = append(ratios, p.Y/p.X)
		}
	}

	fit, err := growthfit.FitLinear(xs, ys)
	if err != nil {
		return nil, err
	}
	_, originSlope := gonumstat.LinearRegression(xs, ys, nil, true)

	median, err := ratios.Median()
	if err != nil {
		return nil, fmt.Errorf("%w: median of ratios: %v", common.ErrorInsufficientData, err)
	}

	return &DeltaPlot{
		Pairs:       pairs,
		Fit:         fit,
		OriginSlope: originSlope,
		MedianRatio: median,
	}, nil
}
