package qpcr

import (
	"context"
	"fmt"

	"github.com/uyouii/growthfit/common"
	"github.com/uyouii/growthfit/growthfit"
	"github.com/uyouii/growthfit/model"
	"github.com/uyouii/growthfit/utils"
	"go.uber.org/zap"
)

// Analyzer works on log2 fluorescence. The threshold is a log2 value, the crossing is the
// Ct and alpha comes from a short fit around it unless an explicit window is given.
type Analyzer struct{}

func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

func (a *Analyzer) Name() string {
	return "qpcr"
}

// DefaultWindow is the zero window, meaning "fit around Ct".
func (a *Analyzer) DefaultWindow(s model.Series) model.Window {
	return model.Window{}
}

func (a *Analyzer) Analyze(ctx context.Context, s model.Series, params model.Params) model.Analysis {
	logger := utils.GetLogger(ctx)

	res := model.Analysis{Rate: model.Rate{Kind: model.RateAlpha}}

	if params.Threshold != nil {
		crossing, err := growthfit.FindLogCrossing(s, *params.Threshold, growthfit.Log2)
		if err != nil {
			res.CrossingErr = err
		} else {
			res.Crossing = &crossing
		}
	} else {
		res.CrossingErr = fmt.Errorf("%w: no threshold set", common.ErrorNotFound)
	}

	var (
		fit *model.FitResult
		err error
	)
	switch {
	case !params.Window.IsZero():
		fit, err = growthfit.FitLogLinear(s, params.Window, growthfit.Log2)
	case res.Crossing != nil:
		fit, err = FitAroundCt(s, res.Crossing.X)
	default:
		err = res.CrossingErr
	}
	if err != nil {
		res.FitErr = err
		res.RateErr = err
		logger.Debug("qpcr fit skipped", zap.String("well", s.Name()), zap.Error(err))
		return res
	}

	res.Fit = fit
	alpha, err := growthfit.AmplificationEfficiency(fit)
	if err != nil {
		res.RateErr = err
		return res
	}
	res.Rate.Value = alpha
	res.Rate.Defined = true
	return res
}
