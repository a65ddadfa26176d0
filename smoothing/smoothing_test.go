package smoothing

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/uyouii/growthfit/common"
	"github.com/uyouii/growthfit/model"
	"github.com/uyouii/growthfit/utils"
	"go.uber.org/zap/zaptest"
	"gonum.org/v1/gonum/interp"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func testContext(t *testing.T) context.Context {
	return utils.WithLogger(context.Background(), zaptest.NewLogger(t))
}

// wave is sin(x) over [0, 2pi] with a small alternating offset.
func wave(n int) ([]float64, []float64) {
	xs, ys := make([]float64, n), make([]float64, n)
	for i := range xs {
		xs[i] = 2 * math.Pi * float64(i) / float64(n-1)
		ys[i] = math.Sin(xs[i]) + 0.01*float64(1-2*(i%2))
	}
	return xs, ys
}

func TestFitRecoversSpline(t *testing.T) {
	knots := []float64{0, 5, 10, 15, 20}
	values := []float64{1, 3, 2, 5, 4}
	var truth interp.NaturalCubic
	if err := truth.Fit(knots, values); err != nil {
		t.Fatalf("truth: %v", err)
	}

	var xs, ys []float64
	for x := 0.0; x <= 20; x += 0.5 {
		xs = append(xs, x)
		ys = append(ys, truth.Predict(x))
	}

	sp, err := Fit(xs, ys, len(knots))
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	for i := range values {
		if !almostEqual(sp.Knots[i], knots[i], 1e-12) || !almostEqual(sp.Values[i], values[i], 1e-8) {
			t.Fatalf("knot %d = (%v, %v), want (%v, %v)", i, sp.Knots[i], sp.Values[i], knots[i], values[i])
		}
	}
	if got, want := sp.Predict(7.3), truth.Predict(7.3); !almostEqual(got, want, 1e-8) {
		t.Fatalf("Predict(7.3) = %v, want %v", got, want)
	}
}

func TestFitTwoKnotsIsLine(t *testing.T) {
	xs := []float64{0, 1, 2, 3, 4}
	ys := []float64{1, 3, 5, 7, 9}
	sp, err := Fit(xs, ys, 2)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if got := sp.Predict(2.5); !almostEqual(got, 6, 1e-10) {
		t.Fatalf("Predict(2.5) = %v, want 6", got)
	}
}

func TestFitErrors(t *testing.T) {
	for _, tc := range []struct {
		name   string
		xs, ys []float64
		knots  int
		want   error
	}{
		{"one knot", []float64{0, 1, 2}, []float64{0, 1, 2}, 1, common.ErrorInvalidValue},
		{"mismatch", []float64{0, 1, 2}, []float64{0, 1}, 2, common.ErrorInvalidValue},
		{"too few points", []float64{0, 1, 2}, []float64{0, 1, 2}, 5, common.ErrorInsufficientData},
		{"constant x", []float64{1, 1, 1}, []float64{0, 1, 2}, 2, common.ErrorDegenerateFit},
	} {
		if _, err := Fit(tc.xs, tc.ys, tc.knots); !errors.Is(err, tc.want) {
			t.Fatalf("%s: err = %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestKnotCandidates(t *testing.T) {
	got := KnotCandidates(40)
	if len(got) != 9 || got[0] != MinKnots || got[len(got)-1] != 10 {
		t.Fatalf("KnotCandidates(40) = %v", got)
	}
	if got := KnotCandidates(3); len(got) != 1 || got[0] != MinKnots {
		t.Fatalf("KnotCandidates(3) = %v", got)
	}
	if got := KnotCandidates(1000); got[len(got)-1] != MaxKnots {
		t.Fatalf("KnotCandidates(1000) ends at %v", got[len(got)-1])
	}
}

func TestCrossValidate(t *testing.T) {
	xs, ys := wave(60)
	res, err := CrossValidate(testContext(t), xs, ys, []int{2, 8}, DefaultSeed)
	if err != nil {
		t.Fatalf("CrossValidate: %v", err)
	}
	if res.Best != 8 || !(res.Errors[1] < res.Errors[0]) {
		t.Fatalf("best = %d errors = %v, want 8 with the lower error", res.Best, res.Errors)
	}

	again, err := CrossValidate(testContext(t), xs, ys, []int{2, 8}, DefaultSeed)
	if err != nil {
		t.Fatalf("CrossValidate: %v", err)
	}
	if again.Errors[0] != res.Errors[0] || again.Errors[1] != res.Errors[1] {
		t.Fatalf("same seed gave %v then %v", res.Errors, again.Errors)
	}

	if _, err := CrossValidate(testContext(t), xs[:3], ys[:3], []int{2}, DefaultSeed); !errors.Is(err, common.ErrorInsufficientData) {
		t.Fatalf("err = %v, want ErrorInsufficientData", err)
	}
	if _, err := CrossValidate(testContext(t), xs, ys, nil, DefaultSeed); !errors.Is(err, common.ErrorInvalidValue) {
		t.Fatalf("err = %v, want ErrorInvalidValue", err)
	}
}

func TestSmoothSeries(t *testing.T) {
	xs, ys := wave(60)
	s, err := model.NewSeries(xs, ys, map[string]string{model.LabelName: "OD"})
	if err != nil {
		t.Fatalf("NewSeries: %v", err)
	}

	smoothed, sp, err := SmoothSeries(testContext(t), s, 0)
	if err != nil {
		t.Fatalf("SmoothSeries: %v", err)
	}
	if smoothed.Name() != "OD" || smoothed.Len() != s.Len() || len(sp.Knots) < 3 {
		t.Fatalf("smoothed %s with %d knots", smoothed.DebugString(), len(sp.Knots))
	}
	for i, p := range smoothed.Points {
		if p.X != xs[i] || !almostEqual(p.Y, math.Sin(xs[i]), 0.05) {
			t.Fatalf("point %d = %+v, want near sin(%v)", i, p, xs[i])
		}
	}
}
