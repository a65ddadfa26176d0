package growthfit

import (
	"fmt"
	"math"

	"github.com/uyouii/growthfit/common"
	"github.com/uyouii/growthfit/model"
)

// DoublingTime is the x-distance over which the fitted signal doubles: log_base(2) / slope.
// For a natural-log fit this is ln(2) / slope.
func DoublingTime(fit *model.FitResult) (float64, error) {
	base, err := fitBase(fit)
	if err != nil {
		return 0, err
	}
	return base.Log(2) / fit.Slope, nil
}

// AmplificationEfficiency is the fractional increase of the fitted signal per unit of x:
// base^slope - 1. For a log2 qPCR fit this is alpha = 2^slope - 1.
func AmplificationEfficiency(fit *model.FitResult) (float64, error) {
	base, err := fitBase(fit)
	if err != nil {
		return 0, err
	}
	return base.Pow(fit.Slope) - 1, nil
}

// StandardCurveEfficiency converts the slope of Ct against log10(concentration) into an
// efficiency: 10^(-1/slope) - 1.
func StandardCurveEfficiency(slope float64) (float64, error) {
	if degenerate(slope) {
		return 0, fmt.Errorf("%w: slope %v", common.ErrorDegenerateFit, slope)
	}
	return math.Pow(10, -1/slope) - 1, nil
}

func fitBase(fit *model.FitResult) (LogBase, error) {
	if fit == nil {
		return 0, fmt.Errorf("%w: nil fit", common.ErrorInvalidValue)
	}
	if degenerate(fit.Slope) {
		return 0, fmt.Errorf("%w: slope %v", common.ErrorDegenerateFit, fit.Slope)
	}
	base := LogBase(fit.Base)
	if fit.Base == 0 {
		base = LogE
	}
	if !base.valid() {
		return 0, fmt.Errorf("%w: log base %v", common.ErrorInvalidValue, fit.Base)
	}
	return base, nil
}

func degenerate(slope float64) bool {
	return slope == 0 || math.IsNaN(slope) || math.IsInf(slope, 0)
}
