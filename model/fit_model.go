package model

// CrossingPoint is where a series first reaches a threshold from below.
type CrossingPoint struct {
	X         float64
	Threshold float64
	// Index of the first sample at or above Threshold.
	Index int
}

type FitResult struct {
	Slope     float64
	Intercept float64
	R         float64
	RSquared  float64
	// SlopeStdErr is the standard error of Slope, NaN for a two-point fit.
	SlopeStdErr float64
	// N is the number of points kept after dropping y <= 0.
	N      int
	Base   float64
	Window Window
	Line   []Point
}

func (f *FitResult) Predict(x float64) float64 {
	return f.Slope*x + f.Intercept
}

type RateKind string

const (
	RateDoublingTime RateKind = "doubling_time"
	RateAlpha        RateKind = "alpha"
	RateEfficiency   RateKind = "efficiency"
)

type Rate struct {
	Kind    RateKind
	Value   float64
	Defined bool
}

// Analysis is what an analyzer produces for one series under one set of parameters.
type Analysis struct {
	Crossing    *CrossingPoint
	CrossingErr error
	Fit         *FitResult
	FitErr      error
	Rate        Rate
	RateErr     error
}

type CalibrationPoint struct {
	Concentration float64
	Ct            float64
}

type ScanPoint struct {
	X        float64
	RSquared float64
	MSE      float64
}

// Params are the user-adjustable inputs of an analysis. A zero Window asks the analyzer for
// its default, a nil Threshold disables crossing detection.
type Params struct {
	Window    Window
	Threshold *float64
}

func (p Params) WithThreshold(threshold float64) Params {
	p.Threshold = &threshold
	return p
}
