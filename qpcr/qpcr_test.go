package qpcr

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/uyouii/growthfit/common"
	"github.com/uyouii/growthfit/model"
	"github.com/uyouii/growthfit/utils"
	"go.uber.org/multierr"
	"go.uber.org/zap/zaptest"
)

const alpha = 0.9

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// exponentialTrace is 0.001 * 1.9^c for cycles 1..n, so log2 is exactly linear.
func exponentialTrace(t *testing.T, name string, n int) model.Series {
	t.Helper()
	xs, ys := make([]float64, n), make([]float64, n)
	for i := range xs {
		xs[i] = float64(i + 1)
		ys[i] = 0.001 * math.Pow(1+alpha, xs[i])
	}
	s, err := model.NewSeries(xs, ys, map[string]string{model.LabelName: name})
	if err != nil {
		t.Fatalf("NewSeries: %v", err)
	}
	return s
}

func testContext(t *testing.T) context.Context {
	return utils.WithLogger(context.Background(), zaptest.NewLogger(t))
}

func TestAnalyzeCtAndAlpha(t *testing.T) {
	s := exponentialTrace(t, "A1", 20)
	threshold := math.Log2(0.1)
	res := NewAnalyzer().Analyze(testContext(t), s, model.Params{}.WithThreshold(threshold))

	if res.CrossingErr != nil || res.FitErr != nil || res.RateErr != nil {
		t.Fatalf("errors: crossing=%v fit=%v rate=%v", res.CrossingErr, res.FitErr, res.RateErr)
	}
	wantCt := math.Log(100) / math.Log(1+alpha)
	if !almostEqual(res.Crossing.X, wantCt, 1e-9) {
		t.Fatalf("Ct = %v, want %v", res.Crossing.X, wantCt)
	}
	if res.Rate.Kind != model.RateAlpha || !almostEqual(res.Rate.Value, alpha, 1e-9) {
		t.Fatalf("rate = %+v, want alpha %v", res.Rate, alpha)
	}
	if res.Fit.Window != (model.Window{Start: 5, End: 9}) {
		t.Fatalf("window = %v, want [5, 9)", res.Fit.Window)
	}
}

func TestAnalyzeWithoutThreshold(t *testing.T) {
	s := exponentialTrace(t, "A1", 12)
	a := NewAnalyzer()

	res := a.Analyze(testContext(t), s, model.Params{})
	if !errors.Is(res.CrossingErr, common.ErrorNotFound) || !errors.Is(res.FitErr, common.ErrorNotFound) {
		t.Fatalf("crossing=%v fit=%v, want ErrorNotFound", res.CrossingErr, res.FitErr)
	}
	if res.Rate.Defined {
		t.Fatalf("rate should be undefined: %+v", res.Rate)
	}

	res = a.Analyze(testContext(t), s, model.Params{Window: model.Window{Start: 2, End: 8}})
	if res.FitErr != nil || !almostEqual(res.Rate.Value, alpha, 1e-9) {
		t.Fatalf("explicit window: fit=%v rate=%+v", res.FitErr, res.Rate)
	}
}

func TestFitAroundCtTooEarly(t *testing.T) {
	s := exponentialTrace(t, "A1", 12)
	if _, err := FitAroundCt(s, 1.2); !errors.Is(err, common.ErrorInsufficientData) {
		t.Fatalf("err = %v, want ErrorInsufficientData", err)
	}
}

func TestFitAroundCtAtEnd(t *testing.T) {
	s := exponentialTrace(t, "A1", 8)
	fit, err := FitAroundCt(s, 7.9)
	if err != nil {
		t.Fatalf("FitAroundCt: %v", err)
	}
	if fit.Window != (model.Window{Start: 6, End: 8}) {
		t.Fatalf("window = %v, want [6, 8)", fit.Window)
	}
}

func TestFitAroundThreshold(t *testing.T) {
	s := exponentialTrace(t, "A1", 20)
	threshold := math.Log2(0.1)

	for _, tc := range []struct {
		span int
		want model.Window
	}{
		{span: 5, want: model.Window{Start: 4, End: 9}},
		{span: 4, want: model.Window{Start: 5, End: 9}},
		{span: 3, want: model.Window{Start: 5, End: 8}},
	} {
		fit, err := FitAroundThreshold(s, threshold, tc.span)
		if err != nil {
			t.Fatalf("span %d: %v", tc.span, err)
		}
		if fit.Window != tc.want {
			t.Fatalf("span %d: window = %v, want %v", tc.span, fit.Window, tc.want)
		}
		if !almostEqual(math.Exp2(fit.Slope)-1, alpha, 1e-9) {
			t.Fatalf("span %d: alpha = %v", tc.span, math.Exp2(fit.Slope)-1)
		}
	}

	// window shifted inside the series when the threshold is below the first reading
	fit, err := FitAroundThreshold(s, -20, 4)
	if err != nil {
		t.Fatalf("FitAroundThreshold: %v", err)
	}
	if fit.Window != (model.Window{Start: 0, End: 4}) {
		t.Fatalf("window = %v, want [0, 4)", fit.Window)
	}
	if _, err := FitAroundThreshold(s, threshold, 1); !errors.Is(err, common.ErrorInvalidValue) {
		t.Fatalf("err = %v, want ErrorInvalidValue", err)
	}
}

func TestComputeCts(t *testing.T) {
	flat, _ := model.NewSeries([]float64{1, 2, 3}, []float64{0.01, 0.01, 0.01},
		map[string]string{model.LabelName: "NTC"})
	traces := []model.Series{exponentialTrace(t, "A1", 20), flat}

	res, err := ComputeCts(testContext(t), traces, math.Log2(0.1))
	if len(res) != 2 {
		t.Fatalf("len = %d, want 2", len(res))
	}
	if len(multierr.Errors(err)) != 1 || !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("err = %v, want a single ErrorNotFound", err)
	}
	if res[0].Crossing == nil || res[1].Crossing != nil || res[1].Name != "NTC" {
		t.Fatalf("unexpected results %+v", res)
	}
}

func TestFitStandardCurve(t *testing.T) {
	slope := -1 / math.Log10(2)
	var points []model.CalibrationPoint
	for i := 0; i < 5; i++ {
		conc := 1 / math.Pow(5, float64(i))
		points = append(points, model.CalibrationPoint{Concentration: conc, Ct: 20 + slope*math.Log10(conc)})
	}

	curve, err := FitStandardCurve(points)
	if err != nil {
		t.Fatalf("FitStandardCurve: %v", err)
	}
	if !almostEqual(curve.Fit.Slope, slope, 1e-9) || !almostEqual(curve.Fit.Intercept, 20, 1e-9) {
		t.Fatalf("fit = %+v", curve.Fit)
	}
	if !curve.Efficiency.Defined || !almostEqual(curve.Efficiency.Value, 1, 1e-9) {
		t.Fatalf("efficiency = %+v, want 1", curve.Efficiency)
	}

	points[0].Concentration = 0
	if _, err := FitStandardCurve(points); !errors.Is(err, common.ErrorInvalidValue) {
		t.Fatalf("err = %v, want ErrorInvalidValue", err)
	}
}

func TestFitStandardCurveFlat(t *testing.T) {
	points := []model.CalibrationPoint{{Concentration: 1, Ct: 20}, {Concentration: 0.1, Ct: 20}}
	curve, err := FitStandardCurve(points)
	if err != nil {
		t.Fatalf("FitStandardCurve: %v", err)
	}
	if curve.Efficiency.Defined || !errors.Is(curve.EfficiencyErr, common.ErrorDegenerateFit) {
		t.Fatalf("efficiency = %+v err = %v, want ErrorDegenerateFit", curve.Efficiency, curve.EfficiencyErr)
	}
}

func TestCalibrationPoints(t *testing.T) {
	cts := []CtResult{
		{Name: "A1", Crossing: &model.CrossingPoint{X: 15}},
		{Name: "A2"},
		{Name: "A3", Crossing: &model.CrossingPoint{X: 17}},
	}
	points, err := CalibrationPoints(cts, []float64{1, 0.2, 0.04})
	if err != nil {
		t.Fatalf("CalibrationPoints: %v", err)
	}
	if len(points) != 2 || points[1].Concentration != 0.04 || points[1].Ct != 17 {
		t.Fatalf("points = %+v", points)
	}
	if _, err := CalibrationPoints(cts, []float64{1}); !errors.Is(err, common.ErrorInvalidValue) {
		t.Fatalf("err = %v, want ErrorInvalidValue", err)
	}
}

func TestDeltaGDeltaH(t *testing.T) {
	plot, err := DeltaGDeltaH([]float64{3, 1, 2}, []float64{16, 10, 13})
	if err != nil {
		t.Fatalf("DeltaGDeltaH: %v", err)
	}
	if len(plot.Pairs) != 3 {
		t.Fatalf("pairs = %v, want 3", plot.Pairs)
	}
	for _, p := range plot.Pairs {
		if p.X <= 0 {
			t.Fatalf("pairs not ordered by distance: %v", plot.Pairs)
		}
	}
	if !almostEqual(plot.Fit.Slope, 3, 1e-10) || !almostEqual(plot.Fit.Intercept, 0, 1e-10) {
		t.Fatalf("fit = %+v", plot.Fit)
	}
	if !almostEqual(plot.OriginSlope, 3, 1e-10) || !almostEqual(plot.MedianRatio, 3, 1e-10) {
		t.Fatalf("origin slope = %v median = %v", plot.OriginSlope, plot.MedianRatio)
	}
	if _, err := DeltaGDeltaH([]float64{1}, []float64{1, 2}); !errors.Is(err, common.ErrorInvalidValue) {
		t.Fatalf("err = %v, want ErrorInvalidValue", err)
	}
}

func TestScanWindows(t *testing.T) {
	s := exponentialTrace(t, "A1", 10)
	points, err := ScanWindows(s, DefaultScanSpan)
	if err != nil {
		t.Fatalf("ScanWindows: %v", err)
	}
	if len(points) != 7 {
		t.Fatalf("len = %d, want 7", len(points))
	}
	for i, p := range points {
		if p.X != float64(i+1) || !almostEqual(p.RSquared, 1, 1e-9) || p.MSE > 1e-20 {
			t.Fatalf("point %d = %+v", i, p)
		}
	}
	if _, err := ScanWindows(s, 2); !errors.Is(err, common.ErrorInvalidValue) {
		t.Fatalf("err = %v, want ErrorInvalidValue", err)
	}
	if _, err := ScanWindows(s, 11); !errors.Is(err, common.ErrorInsufficientData) {
		t.Fatalf("err = %v, want ErrorInsufficientData", err)
	}
}

func TestScanThresholdsAndAlphas(t *testing.T) {
	traces := []model.Series{exponentialTrace(t, "A1", 20), exponentialTrace(t, "A2", 20)}
	thresholds, err := ScanThresholds(traces, 5)
	if err != nil {
		t.Fatalf("ScanThresholds: %v", err)
	}
	lo, hi := math.Log2(0.001*1.9), math.Log2(0.001*math.Pow(1.9, 20))
	if !almostEqual(thresholds[0], lo, 1e-12) || !almostEqual(thresholds[4], hi, 1e-12) {
		t.Fatalf("thresholds = %v, want %v..%v", thresholds, lo, hi)
	}

	scans := ScanAlphas(testContext(t), traces, []float64{math.Log2(0.1), math.Log2(1), hi + 1})
	if len(scans) != 2 || scans[1].Name != "A2" {
		t.Fatalf("scans = %+v", scans)
	}
	for _, scan := range scans {
		if !almostEqual(scan.Alphas[0], alpha, 1e-9) || !almostEqual(scan.Alphas[1], alpha, 1e-9) {
			t.Fatalf("alphas = %v", scan.Alphas)
		}
		if !math.IsNaN(scan.Alphas[2]) {
			t.Fatalf("alpha above range = %v, want NaN", scan.Alphas[2])
		}
	}

	if _, err := ScanThresholds(nil, 5); !errors.Is(err, common.ErrorInsufficientData) {
		t.Fatalf("err = %v, want ErrorInsufficientData", err)
	}
}

func TestLRE(t *testing.T) {
	s := exponentialTrace(t, "A1", 10)
	lre, err := LRE(s, 3, 6)
	if err != nil {
		t.Fatalf("LRE: %v", err)
	}
	if len(lre.Points) != 4 {
		t.Fatalf("points = %v, want 4", lre.Points)
	}
	if !almostEqual(lre.MaxEfficiency, alpha, 1e-9) || !almostEqual(lre.Fit.Slope, 0, 1e-6) {
		t.Fatalf("max efficiency = %v slope = %v", lre.MaxEfficiency, lre.Fit.Slope)
	}
	if _, err := LRE(s, 6, 3); !errors.Is(err, common.ErrorInvalidValue) {
		t.Fatalf("err = %v, want ErrorInvalidValue", err)
	}
	if _, err := LRE(s, 4, 4); !errors.Is(err, common.ErrorInsufficientData) {
		t.Fatalf("err = %v, want ErrorInsufficientData", err)
	}
}
