package qpcr

import (
	"fmt"
	"math"

	"github.com/uyouii/growthfit/common"
	"github.com/uyouii/growthfit/growthfit"
	"github.com/uyouii/growthfit/model"
	"github.com/uyouii/growthfit/utils"
)

// FitAroundCt fits log2 fluorescence over the CtFitSpan cycles centred on round(ct). The
// returned window indexes the positive-only series.
func FitAroundCt(s model.Series, ct float64) (*model.FitResult, error) {
	positive := positiveOnly(s)
	cycle := math.Round(ct)

	idx := 0
	for _, p := range positive.Points {
		if p.X <= cycle {
			idx++
		}
	}
	half := getCtFitSpan() / 2
	if idx < half {
		return nil, fmt.Errorf("%w: only %d cycles up to Ct %v", common.ErrorInsufficientData, idx, ct)
	}
	w := model.Window{Start: idx - half, End: utils.IntMin(idx+half, positive.Len())}
	return growthfit.FitLogLinear(positive, w, growthfit.Log2)
}

// FitAroundThreshold fits span log2 points around the sample closest to logThreshold. An
// odd span is centred on that sample, an even span is centred on the gap in which the
// threshold lies. The window is shifted back inside the series when it overhangs an end.
func FitAroundThreshold(s model.Series, logThreshold float64, span int) (*model.FitResult, error) {
	positive := positiveOnly(s)
	n := positive.Len()
	if span < 2 {
		return nil, fmt.Errorf("%w: span %d", common.ErrorInvalidValue, span)
	}
	if n < span {
		return nil, fmt.Errorf("%w: %d positive points for span %d", common.ErrorInsufficientData, n, span)
	}

	closest, best := 0, math.Inf(1)
	for i, p := range positive.Points {
		if d := math.Abs(math.Log2(p.Y) - logThreshold); d < best {
			closest, best = i, d
		}
	}

	var start int
	switch {
	case span%2 == 1:
		start = closest - (span-1)/2
	case math.Log2(positive.Points[closest].Y) > logThreshold:
		start = closest - span/2
	default:
		start = closest - span/2 + 1
	}
	start = utils.IntMax(start, 0)
	start = utils.IntMin(start, n-span)

	return growthfit.FitLogLinear(positive, model.Window{Start: start, End: start + span}, growthfit.Log2)
}

func positiveOnly(s model.Series) model.Series {
	points := make([]model.Point, 0, len(s.Points))
	for _, p := range s.Points {
		if p.Y > 0 {
			points = append(points, p)
		}
	}
	return model.Series{Labels: s.CopyLabels(), Points: points}
}
