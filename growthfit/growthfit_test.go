package growthfit

import (
	"errors"
	"math"
	"testing"

	"github.com/uyouii/growthfit/common"
	"github.com/uyouii/growthfit/model"
	"gonum.org/v1/gonum/interp"
)

const tolerance = 1e-10

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func mustSeries(t *testing.T, xs, ys []float64) model.Series {
	t.Helper()
	s, err := model.NewSeries(xs, ys, nil)
	if err != nil {
		t.Fatalf("NewSeries: %v", err)
	}
	return s
}

func TestFindCrossingInterpolates(t *testing.T) {
	s := mustSeries(t, []float64{0, 1, 2, 3}, []float64{1, 2, 4, 8})
	cp, err := FindCrossing(s, 3)
	if err != nil {
		t.Fatalf("FindCrossing: %v", err)
	}
	if !almostEqual(cp.X, 1.5, tolerance) {
		t.Fatalf("x* = %v, want 1.5", cp.X)
	}
	if cp.Index != 2 || cp.Threshold != 3 {
		t.Fatalf("unexpected crossing %+v", cp)
	}
}

func TestFindCrossingExactSample(t *testing.T) {
	s := mustSeries(t, []float64{0, 1, 2, 3}, []float64{1, 2, 4, 8})
	cp, err := FindCrossing(s, 4)
	if err != nil {
		t.Fatalf("FindCrossing: %v", err)
	}
	if !almostEqual(cp.X, 2, tolerance) {
		t.Fatalf("x* = %v, want 2", cp.X)
	}
}

func TestFindCrossingNotFound(t *testing.T) {
	s := mustSeries(t, []float64{0, 1, 2, 3}, []float64{1, 2, 4, 8})
	for _, threshold := range []float64{10, 8.5, 1, 0.5, -3} {
		if _, err := FindCrossing(s, threshold); !errors.Is(err, common.ErrorNotFound) {
			t.Fatalf("threshold %v: err = %v, want ErrorNotFound", threshold, err)
		}
	}
}

func TestFindCrossingAfterDip(t *testing.T) {
	s := mustSeries(t, []float64{0, 1, 2}, []float64{5, 1, 3})
	cp, err := FindCrossing(s, 2)
	if err != nil {
		t.Fatalf("FindCrossing: %v", err)
	}
	if !almostEqual(cp.X, 1.5, tolerance) || cp.Index != 2 {
		t.Fatalf("crossing = %+v, want x=1.5 index=2", cp)
	}
}

func TestFindCrossingInvalidInput(t *testing.T) {
	one := mustSeries(t, []float64{0}, []float64{1})
	if _, err := FindCrossing(one, 0.5); !errors.Is(err, common.ErrorInsufficientData) {
		t.Fatalf("err = %v, want ErrorInsufficientData", err)
	}
	s := mustSeries(t, []float64{0, 1}, []float64{0, 1})
	if _, err := FindCrossing(s, math.NaN()); !errors.Is(err, common.ErrorInvalidValue) {
		t.Fatalf("err = %v, want ErrorInvalidValue", err)
	}
}

func TestFindCrossingRoundTrip(t *testing.T) {
	xs := []float64{0, 0.5, 1.25, 2, 3.5, 4, 6, 7.5}
	ys := []float64{0.02, 0.03, 0.05, 0.11, 0.31, 0.47, 0.95, 1.4}
	s := mustSeries(t, xs, ys)

	var pl interp.PiecewiseLinear
	if err := pl.Fit(xs, ys); err != nil {
		t.Fatalf("PiecewiseLinear.Fit: %v", err)
	}
	for _, threshold := range []float64{0.025, 0.05, 0.2, 0.4, 0.9, 1.39} {
		cp, err := FindCrossing(s, threshold)
		if err != nil {
			t.Fatalf("threshold %v: %v", threshold, err)
		}
		if got := pl.Predict(cp.X); !almostEqual(got, threshold, 1e-12) {
			t.Fatalf("threshold %v: interpolate(%v) = %v", threshold, cp.X, got)
		}
		if ys[cp.Index-1] >= threshold || ys[cp.Index] < threshold {
			t.Fatalf("threshold %v: index %d does not bracket", threshold, cp.Index)
		}
	}
}

func TestFindLogCrossing(t *testing.T) {
	s := mustSeries(t, []float64{1, 2, 3, 4, 5}, []float64{0, 0.25, 0.5, 1, 2})
	cp, err := FindLogCrossing(s, -0.5, Log2)
	if err != nil {
		t.Fatalf("FindLogCrossing: %v", err)
	}
	// log2 series: (2,-2) (3,-1) (4,0) (5,1), crosses -0.5 between cycles 3 and 4
	if !almostEqual(cp.X, 3.5, tolerance) || cp.Index != 2 {
		t.Fatalf("crossing = %+v, want x=3.5 index=2", cp)
	}
	if _, err := FindLogCrossing(s, 0, LogBase(1)); !errors.Is(err, common.ErrorInvalidValue) {
		t.Fatalf("err = %v, want ErrorInvalidValue", err)
	}
}

func TestFitLogLinearDoubling(t *testing.T) {
	s := mustSeries(t, []float64{0, 1, 2, 3}, []float64{1, 2, 4, 8})
	fit, err := FitLogLinear(s, model.FullWindow(s), LogE)
	if err != nil {
		t.Fatalf("FitLogLinear: %v", err)
	}
	if !almostEqual(fit.Slope, math.Ln2, tolerance) {
		t.Fatalf("slope = %v, want ln2", fit.Slope)
	}
	if !almostEqual(fit.Intercept, 0, tolerance) || !almostEqual(fit.RSquared, 1, tolerance) {
		t.Fatalf("intercept = %v r2 = %v", fit.Intercept, fit.RSquared)
	}
	dt, err := DoublingTime(fit)
	if err != nil {
		t.Fatalf("DoublingTime: %v", err)
	}
	if !almostEqual(dt, 1, tolerance) {
		t.Fatalf("doubling time = %v, want 1", dt)
	}
	if len(fit.Line) != FitLinePoints || fit.Line[0].X != 0 || fit.Line[len(fit.Line)-1].X != 3 {
		t.Fatalf("fit line spans %v..%v with %d points", fit.Line[0].X, fit.Line[len(fit.Line)-1].X, len(fit.Line))
	}
}

func TestFitLogLinearBase2Alpha(t *testing.T) {
	s := mustSeries(t, []float64{0, 1, 2, 3}, []float64{1, 2, 4, 8})
	fit, err := FitLogLinear(s, model.FullWindow(s), Log2)
	if err != nil {
		t.Fatalf("FitLogLinear: %v", err)
	}
	if !almostEqual(fit.Slope, 1, tolerance) {
		t.Fatalf("slope = %v, want 1", fit.Slope)
	}
	alpha, err := AmplificationEfficiency(fit)
	if err != nil {
		t.Fatalf("AmplificationEfficiency: %v", err)
	}
	if !almostEqual(alpha, 1, tolerance) {
		t.Fatalf("alpha = %v, want 1", alpha)
	}
	dt, err := DoublingTime(fit)
	if err != nil || !almostEqual(dt, 1, tolerance) {
		t.Fatalf("doubling time = %v, %v", dt, err)
	}
}

func TestFitLogLinearRecoversExponential(t *testing.T) {
	const a, k = 2.5, 0.3
	xs, ys := make([]float64, 12), make([]float64, 12)
	for i := range xs {
		xs[i] = float64(i) * 0.75
		ys[i] = a * math.Exp(k*xs[i])
	}
	s := mustSeries(t, xs, ys)
	fit, err := FitLogLinear(s, model.FullWindow(s), LogE)
	if err != nil {
		t.Fatalf("FitLogLinear: %v", err)
	}
	if !almostEqual(fit.Slope, k, 1e-12) || !almostEqual(fit.Intercept, math.Log(a), 1e-12) {
		t.Fatalf("slope = %v intercept = %v, want %v %v", fit.Slope, fit.Intercept, k, math.Log(a))
	}
}

func TestFitLogLinearTranslationInvariant(t *testing.T) {
	xs := []float64{0, 1, 2, 3, 4, 5}
	ys := []float64{0.11, 0.19, 0.42, 0.79, 1.7, 3.1}
	const shift = 123.5
	shifted := make([]float64, len(xs))
	for i, x := range xs {
		shifted[i] = x + shift
	}
	base := mustSeries(t, xs, ys)
	moved := mustSeries(t, shifted, ys)

	f1, err := FitLogLinear(base, model.FullWindow(base), LogE)
	if err != nil {
		t.Fatalf("FitLogLinear: %v", err)
	}
	f2, err := FitLogLinear(moved, model.FullWindow(moved), LogE)
	if err != nil {
		t.Fatalf("FitLogLinear: %v", err)
	}
	if !almostEqual(f1.Slope, f2.Slope, 1e-9) {
		t.Fatalf("slope changed under translation: %v vs %v", f1.Slope, f2.Slope)
	}
	if !almostEqual(f2.Intercept, f1.Intercept-f1.Slope*shift, 1e-8) {
		t.Fatalf("intercept = %v, want %v", f2.Intercept, f1.Intercept-f1.Slope*shift)
	}
	if !almostEqual(f1.RSquared, f2.RSquared, 1e-9) {
		t.Fatalf("r2 changed under translation: %v vs %v", f1.RSquared, f2.RSquared)
	}
}

func TestFitLogLinearExcludesNonPositive(t *testing.T) {
	s := mustSeries(t, []float64{0, 1, 2, 3, 4}, []float64{0, -0.1, 2, 4, 8})
	fit, err := FitLogLinear(s, model.FullWindow(s), LogE)
	if err != nil {
		t.Fatalf("FitLogLinear: %v", err)
	}
	if fit.N != 3 || !almostEqual(fit.Slope, math.Ln2, tolerance) {
		t.Fatalf("N = %d slope = %v, want 3 and ln2", fit.N, fit.Slope)
	}
	if fit.Line[0].X != 2 {
		t.Fatalf("fit line starts at %v, want 2", fit.Line[0].X)
	}
}

func TestFitLogLinearInsufficientData(t *testing.T) {
	s := mustSeries(t, []float64{0, 1, 2, 3}, []float64{0, 0, 3, 0})
	if _, err := FitLogLinear(s, model.FullWindow(s), LogE); !errors.Is(err, common.ErrorInsufficientData) {
		t.Fatalf("err = %v, want ErrorInsufficientData", err)
	}
}

func TestFitLogLinearInvalidWindow(t *testing.T) {
	s := mustSeries(t, []float64{0, 1, 2, 3}, []float64{1, 2, 4, 8})
	for _, w := range []model.Window{{Start: 2, End: 3}, {Start: -1, End: 2}, {Start: 1, End: 5}, {Start: 3, End: 1}} {
		if _, err := FitLogLinear(s, w, LogE); !errors.Is(err, common.ErrorInvalidWindow) {
			t.Fatalf("window %v: err = %v, want ErrorInvalidWindow", w, err)
		}
	}
}

func TestFitLogLinearConstantIsDegenerate(t *testing.T) {
	s := mustSeries(t, []float64{0, 1, 2, 3}, []float64{5, 5, 5, 5})
	fit, err := FitLogLinear(s, model.FullWindow(s), LogE)
	if err != nil {
		t.Fatalf("FitLogLinear: %v", err)
	}
	if fit.Slope != 0 || !almostEqual(fit.Intercept, math.Log(5), tolerance) || fit.RSquared != 1 {
		t.Fatalf("fit = %+v, want slope 0 intercept ln5 r2 1", fit)
	}
	if _, err := DoublingTime(fit); !errors.Is(err, common.ErrorDegenerateFit) {
		t.Fatalf("DoublingTime err = %v, want ErrorDegenerateFit", err)
	}
	if _, err := AmplificationEfficiency(fit); !errors.Is(err, common.ErrorDegenerateFit) {
		t.Fatalf("AmplificationEfficiency err = %v, want ErrorDegenerateFit", err)
	}
}

func TestFitLinearErrors(t *testing.T) {
	if _, err := FitLinear([]float64{1, 2}, []float64{1}); !errors.Is(err, common.ErrorInvalidValue) {
		t.Fatalf("err = %v, want ErrorInvalidValue", err)
	}
	if _, err := FitLinear([]float64{1}, []float64{1}); !errors.Is(err, common.ErrorInsufficientData) {
		t.Fatalf("err = %v, want ErrorInsufficientData", err)
	}
	if _, err := FitLinear([]float64{2, 2, 2}, []float64{1, 2, 3}); !errors.Is(err, common.ErrorDegenerateFit) {
		t.Fatalf("err = %v, want ErrorDegenerateFit", err)
	}
}

func TestFitLinearSlopeStdErr(t *testing.T) {
	fit, err := FitLinear([]float64{0, 1, 2, 3}, []float64{0, 1, 1, 2})
	if err != nil {
		t.Fatalf("FitLinear: %v", err)
	}
	if !almostEqual(fit.Slope, 0.6, 1e-12) || !almostEqual(fit.Intercept, 0.1, 1e-12) {
		t.Fatalf("fit = %v + %v x", fit.Intercept, fit.Slope)
	}
	if !almostEqual(fit.SlopeStdErr, math.Sqrt(0.02), 1e-12) {
		t.Fatalf("SlopeStdErr = %v, want %v", fit.SlopeStdErr, math.Sqrt(0.02))
	}

	two, err := FitLinear([]float64{0, 1}, []float64{0, 1})
	if err != nil {
		t.Fatalf("FitLinear: %v", err)
	}
	if !math.IsNaN(two.SlopeStdErr) {
		t.Fatalf("two-point SlopeStdErr = %v, want NaN", two.SlopeStdErr)
	}
}

func TestStandardCurveEfficiency(t *testing.T) {
	perfect := -1 / math.Log10(2)
	eff, err := StandardCurveEfficiency(perfect)
	if err != nil {
		t.Fatalf("StandardCurveEfficiency: %v", err)
	}
	if !almostEqual(eff, 1, 1e-12) {
		t.Fatalf("efficiency = %v, want 1", eff)
	}
	for _, slope := range []float64{0, math.NaN(), math.Inf(-1)} {
		if _, err := StandardCurveEfficiency(slope); !errors.Is(err, common.ErrorDegenerateFit) {
			t.Fatalf("slope %v: err = %v, want ErrorDegenerateFit", slope, err)
		}
	}
}

func TestDoublingTimeNilFit(t *testing.T) {
	if _, err := DoublingTime(nil); !errors.Is(err, common.ErrorInvalidValue) {
		t.Fatalf("err = %v, want ErrorInvalidValue", err)
	}
}

func TestSubtractBaseline(t *testing.T) {
	s := mustSeries(t, []float64{0, 1, 2}, []float64{0.1, 0.3, 0.7})
	got := SubtractBaseline(s)
	want := []float64{0, 0.2, 0.6}
	for i, p := range got.Points {
		if !almostEqual(p.Y, want[i], 1e-12) {
			t.Fatalf("y[%d] = %v, want %v", i, p.Y, want[i])
		}
	}
	if CountPositive(got.Points) != 2 {
		t.Fatalf("CountPositive = %d, want 2", CountPositive(got.Points))
	}
}
