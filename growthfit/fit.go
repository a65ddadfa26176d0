package growthfit

import (
	"fmt"
	"math"

	"github.com/uyouii/growthfit/common"
	"github.com/uyouii/growthfit/model"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// FitLogLinear fits log_base(y) = Slope*x + Intercept over window w of s. Points with
// y <= 0 are excluded before the transform.
func FitLogLinear(s model.Series, w model.Window, base LogBase) (*model.FitResult, error) {
	if !w.Valid(s.Len()) {
		return nil, fmt.Errorf("%w: %v for %d points", common.ErrorInvalidWindow, w, s.Len())
	}
	if !base.valid() {
		return nil, fmt.Errorf("%w: log base %v", common.ErrorInvalidValue, float64(base))
	}

	xs, ys := make([]float64, 0, w.Len()), make([]float64, 0, w.Len())
	for _, p := range s.Slice(w) {
		if p.Y > 0 {
			xs = append(xs, p.X)
			ys = append(ys, base.Log(p.Y))
		}
	}
	if len(xs) < MinFitPoints {
		return nil, fmt.Errorf("%w: %d positive points in window %v",
			common.ErrorInsufficientData, len(xs), w)
	}

	fit, err := FitLinear(xs, ys)
	if err != nil {
		return nil, err
	}
	fit.Base = float64(base)
	fit.Window = w
	return fit, nil
}

// FitLinear is ordinary least squares of ys on xs. The returned Window is the full index
// range of the input and Base is left zero.
func FitLinear(xs, ys []float64) (*model.FitResult, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("%w: x/y length mismatch %d != %d", common.ErrorInvalidValue, len(xs), len(ys))
	}
	if len(xs) < MinFitPoints {
		return nil, fmt.Errorf("%w: %d points, need %d", common.ErrorInsufficientData, len(xs), MinFitPoints)
	}
	xMin, xMax := floats.Min(xs), floats.Max(xs)
	if xMin == xMax {
		return nil, fmt.Errorf("%w: all x equal %v", common.ErrorDegenerateFit, xMin)
	}

	var slope, intercept, r2 float64
	if isConstant(ys) {
		// exact horizontal line, avoid the rounding noise of the general path
		slope, intercept, r2 = 0, ys[0], 1
	} else {
		intercept, slope = stat.LinearRegression(xs, ys, nil, false)
		r2 = stat.RSquared(xs, ys, nil, intercept, slope)
	}

	fit := &model.FitResult{
		Slope:       slope,
		Intercept:   intercept,
		R:           math.Copysign(math.Sqrt(r2), slope),
		RSquared:    r2,
		SlopeStdErr: slopeStdErr(xs, ys, slope, intercept),
		N:           len(xs),
		Window:      model.Window{Start: 0, End: len(xs)},
		Line:        fitLine(slope, intercept, xMin, xMax),
	}
	return fit, nil
}

func slopeStdErr(xs, ys []float64, slope, intercept float64) float64 {
	n := len(xs)
	if n <= MinFitPoints {
		return math.NaN()
	}
	ssRes := 0.0
	for i := range xs {
		r := ys[i] - (slope*xs[i] + intercept)
		ssRes += r * r
	}
	sxx := stat.Variance(xs, nil) * float64(n-1)
	return math.Sqrt(ssRes / float64(n-2) / sxx)
}

func fitLine(slope, intercept, x0, x1 float64) []model.Point {
	grid := floats.Span(make([]float64, FitLinePoints), x0, x1)
	grid[len(grid)-1] = x1
	res := make([]model.Point, len(grid))
	for i, x := range grid {
		res[i] = model.Point{X: x, Y: slope*x + intercept}
	}
	return res
}

func isConstant(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}
