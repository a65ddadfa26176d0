package smoothing

import (
	"fmt"

	"github.com/uyouii/growthfit/common"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/mat"
)

// Spline is a least-squares regression spline: a natural cubic through evenly spaced knots
// whose knot values minimise the squared error to the data. Outside the knot range it is
// constant.
type Spline struct {
	Knots  []float64
	Values []float64
	curve  interp.NaturalCubic
}

// Fit fits a spline with the given number of knots spanning [min(xs), max(xs)].
func Fit(xs, ys []float64, knots int) (*Spline, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("%w: x/y length mismatch %d != %d", common.ErrorInvalidValue, len(xs), len(ys))
	}
	if knots < MinKnots {
		return nil, fmt.Errorf("%w: %d knots, need %d", common.ErrorInvalidValue, knots, MinKnots)
	}
	if len(xs) < knots {
		return nil, fmt.Errorf("%w: %d points for %d knots", common.ErrorInsufficientData, len(xs), knots)
	}
	lo, hi := floats.Min(xs), floats.Max(xs)
	if lo == hi {
		return nil, fmt.Errorf("%w: all x equal %v", common.ErrorDegenerateFit, lo)
	}

	grid := floats.Span(make([]float64, knots), lo, hi)
	design, err := basis(grid, xs)
	if err != nil {
		return nil, err
	}

	var values mat.VecDense
	if err := values.SolveVec(design, mat.NewVecDense(len(ys), append([]float64(nil), ys...))); err != nil {
		return nil, fmt.Errorf("%w: %d knots: %v", common.ErrorDegenerateFit, knots, err)
	}

	sp := &Spline{Knots: grid, Values: make([]float64, knots)}
	for i := range sp.Values {
		sp.Values[i] = values.AtVec(i)
	}
	if err := sp.curve.Fit(sp.Knots, sp.Values); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorDegenerateFit, err)
	}
	return sp, nil
}

func (sp *Spline) Predict(x float64) float64 {
	return sp.curve.Predict(x)
}

func (sp *Spline) PredictAll(xs []float64) []float64 {
	res := make([]float64, len(xs))
	for i, x := range xs {
		res[i] = sp.curve.Predict(x)
	}
	return res
}

// basis evaluates every cardinal natural spline of the knot grid at xs. A natural cubic is
// linear in its knot values, so row i of the result maps knot values to the curve at xs[i].
func basis(knots, xs []float64) (*mat.Dense, error) {
	design := mat.NewDense(len(xs), len(knots), nil)
	unit := make([]float64, len(knots))
	var cardinal interp.NaturalCubic
	for j := range knots {
		unit[j] = 1
		if err := cardinal.Fit(knots, unit); err != nil {
			return nil, fmt.Errorf("%w: basis %d: %v", common.ErrorDegenerateFit, j, err)
		}
		for i, x := range xs {
			design.Set(i, j, cardinal.Predict(x))
		}
		unit[j] = 0
	}
	return design, nil
}
