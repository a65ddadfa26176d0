package growth

import (
	"context"
	"fmt"

	"github.com/uyouii/growthfit/growthfit"
	"github.com/uyouii/growthfit/model"
	"github.com/uyouii/growthfit/utils"
	"go.uber.org/zap"
)

// Analyzer fits growth curves: the first OD reading is taken as blank, the natural log of
// the blank-corrected signal is fitted over the window and the slope is reported as a
// doubling time.
type Analyzer struct {
	timeScale float64
}

type Option func(*Analyzer)

// WithTimeScale sets the factor applied to doubling times, 60 turns hours into minutes.
func WithTimeScale(scale float64) Option {
	return func(a *Analyzer) {
		if scale > 0 {
			a.timeScale = scale
		}
	}
}

func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{timeScale: getDefaultTimeScale()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Analyzer) Name() string {
	return "growth"
}

// DefaultWindow covers every reading above the blank: it runs from the start to just past the
// last positive blank-corrected sample, never shorter than two points.
func (a *Analyzer) DefaultWindow(s model.Series) model.Window {
	corrected := growthfit.SubtractBaseline(s)
	end := 0
	for i, p := range corrected.Points {
		if p.Y > 0 {
			end = i + 1
		}
	}
	end = utils.IntMax(end, minWindowLen)
	end = utils.IntMin(end, s.Len())
	return model.Window{Start: 0, End: end}
}

func (a *Analyzer) Analyze(ctx context.Context, s model.Series, params model.Params) model.Analysis {
	logger := utils.GetLogger(ctx)

	corrected := growthfit.SubtractBaseline(s)
	window := params.Window
	if window.IsZero() {
		window = a.DefaultWindow(s)
	}

	res := model.Analysis{Rate: model.Rate{Kind: model.RateDoublingTime}}

	fit, err := growthfit.FitLogLinear(corrected, window, growthfit.LogE)
	if err != nil {
		logger.Debug("growth fit skipped", zap.String("series", s.Name()),
			zap.Stringer("window", window), zap.Error(err))
		res.FitErr = err
		res.RateErr = err
	} else {
		res.Fit = fit
		doublingTime, err := growthfit.DoublingTime(fit)
		if err != nil {
			res.RateErr = err
		} else {
			res.Rate.Value = doublingTime * a.timeScale
			res.Rate.Defined = true
		}
	}

	if params.Threshold != nil {
		crossing, err := growthfit.FindCrossing(corrected, *params.Threshold)
		if err != nil {
			res.CrossingErr = err
		} else {
			res.Crossing = &crossing
		}
	}

	logger.Debug("growth analysis done", zap.String("series", s.Name()),
		zap.String("rate", fmt.Sprintf("%+v", res.Rate)))
	return res
}
