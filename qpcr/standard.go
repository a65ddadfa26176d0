package qpcr

import (
	"fmt"
	"math"

	"github.com/uyouii/growthfit/common"
	"github.com/uyouii/growthfit/growthfit"
	"github.com/uyouii/growthfit/model"
)

type StandardCurve struct {
	// Fit of Ct against log10(concentration).
	Fit        *model.FitResult
	Efficiency model.Rate
	// EfficiencyErr is set when the slope does not give an efficiency.
	EfficiencyErr error
}

// FitStandardCurve regresses Ct on log10(concentration) and converts the slope into an
// amplification efficiency with growthfit.StandardCurveEfficiency.
func FitStandardCurve(points []model.CalibrationPoint) (*StandardCurve, error) {
	xs, ys := make([]float64, 0, len(points)), make([]float64, 0, len(points))
	for _, p := range points {
		if p.Concentration <= 0 || math.IsNaN(p.Ct) {
			return nil, fmt.Errorf("%w: calibration point %+v", common.ErrorInvalidValue, p)
		}
		xs = append(xs, math.Log10(p.Concentration))
		ys = append(ys, p.Ct)
	}

	fit, err := growthfit.FitLinear(xs, ys)
	if err != nil {
		return nil, err
	}
	fit.Base = float64(growthfit.Log10)

	res := &StandardCurve{
		Fit:        fit,
		Efficiency: model.Rate{Kind: model.RateEfficiency},
	}
	eff, err := growthfit.StandardCurveEfficiency(fit.Slope)
	if err != nil {
		res.EfficiencyErr = err
		return res, nil
	}
	res.Efficiency.Value = eff
	res.Efficiency.Defined = true
	return res, nil
}

// CalibrationPoints pairs dilution concentrations with Cts, skipping traces without a Ct.
func CalibrationPoints(cts []CtResult, concentrations []float64) ([]model.CalibrationPoint, error) {
	if len(cts) != len(concentrations) {
		return nil, fmt.Errorf("%w: %d cts for %d concentrations", common.ErrorInvalidValue, len(cts), len(concentrations))
	}
	res := make([]model.CalibrationPoint, 0, len(cts))
	for i, ct := range cts {
		if ct.Crossing == nil {
			continue
		}
		res = append(res, model.CalibrationPoint{Concentration: concentrations[i], Ct: ct.Crossing.X})
	}
	return res, nil
}
