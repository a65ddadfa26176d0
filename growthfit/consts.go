package growthfit

import "math"

type LogBase float64

const (
	LogE  LogBase = math.E
	Log2  LogBase = 2
	Log10 LogBase = 10
)

const (
	// FitLinePoints is the number of samples in FitResult.Line.
	FitLinePoints = 100

	MinCrossingPoints = 2
	MinFitPoints      = 2
)

func (b LogBase) Log(v float64) float64 {
	switch b {
	case LogE:
		return math.Log(v)
	case Log2:
		return math.Log2(v)
	case Log10:
		return math.Log10(v)
	}
	return math.Log(v) / math.Log(float64(b))
}

func (b LogBase) Pow(v float64) float64 {
	switch b {
	case LogE:
		return math.Exp(v)
	case Log2:
		return math.Exp2(v)
	}
	return math.Pow(float64(b), v)
}

func (b LogBase) valid() bool {
	f := float64(b)
	return f > 0 && f != 1 && !math.IsInf(f, 0) && !math.IsNaN(f)
}
