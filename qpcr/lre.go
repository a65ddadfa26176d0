package qpcr

import (
	"fmt"

	"github.com/uyouii/growthfit/common"
	"github.com/uyouii/growthfit/growthfit"
	"github.com/uyouii/growthfit/model"
)

// LinearRegressionOfEfficiency holds the per-cycle efficiencies inside the chosen cycle
// range and the line fitted through them. The intercept is the efficiency extrapolated to
// zero fluorescence.
type LinearRegressionOfEfficiency struct {
	// Points are (fluorescence, cycle efficiency).
	Points        []model.Point
	Fit           *model.FitResult
	MaxEfficiency float64
}

// LRE computes cycle efficiency y[j]/y[j-1] - 1 for cycles in [minX, maxX] and regresses it
// on the fluorescence y[j]. Cycles following a non-positive reading are skipped.
func LRE(s model.Series, minX, maxX float64) (*LinearRegressionOfEfficiency, error) {
	if minX > maxX {
		return nil, fmt.Errorf("%w: cycle range [%v, %v]", common.ErrorInvalidValue, minX, maxX)
	}

	var points []model.Point
	for j := 1; j < len(s.Points); j++ {
		prev, cur := s.Points[j-1], s.Points[j]
		if cur.X < minX || cur.X > maxX || prev.Y <= 0 {
			continue
		}
		points = append(points, model.Point{X: cur.Y, Y: cur.Y/prev.Y - 1})
	}

	xs, ys := make([]float64, len(points)), make([]float64, len(points))
	for i, p := range points {
		xs[i], ys[i] = p.X, p.Y
	}
	fit, err := growthfit.FitLinear(xs, ys)
	if err != nil {
		return nil, fmt.Errorf("lre over [%v, %v]: %w", minX, maxX, err)
	}

	return &LinearRegressionOfEfficiency{
		Points:        points,
		Fit:           fit,
		MaxEfficiency: fit.Intercept,
	}, nil
}
