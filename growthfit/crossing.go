package growthfit

import (
	"fmt"
	"math"

	"github.com/uyouii/growthfit/common"
	"github.com/uyouii/growthfit/model"
)

// FindCrossing returns the first point where the series rises from below threshold to at
// or above it. A series that never does so, including one that starts at or above the
// threshold and stays there, yields common.ErrorNotFound.
func FindCrossing(s model.Series, threshold float64) (model.CrossingPoint, error) {
	if math.IsNaN(threshold) || math.IsInf(threshold, 0) {
		return model.CrossingPoint{}, fmt.Errorf("%w: threshold %v", common.ErrorInvalidValue, threshold)
	}
	if len(s.Points) < MinCrossingPoints {
		return model.CrossingPoint{}, fmt.Errorf("%w: %d points, need %d",
			common.ErrorInsufficientData, len(s.Points), MinCrossingPoints)
	}

	for j := 1; j < len(s.Points); j++ {
		prev, cur := s.Points[j-1], s.Points[j]
		if cur.Y >= threshold && prev.Y < threshold {
			return model.CrossingPoint{
				X:         Interpolate(prev, cur, threshold),
				Threshold: threshold,
				Index:     j,
			}, nil
		}
	}
	return model.CrossingPoint{}, common.ErrorNotFound
}

// FindLogCrossing runs FindCrossing on LogTransform(s, base). The threshold is on the log
// scale and the returned Index refers to the log-transformed series.
func FindLogCrossing(s model.Series, logThreshold float64, base LogBase) (model.CrossingPoint, error) {
	if !base.valid() {
		return model.CrossingPoint{}, fmt.Errorf("%w: log base %v", common.ErrorInvalidValue, float64(base))
	}
	return FindCrossing(LogTransform(s, base), logThreshold)
}
