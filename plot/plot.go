package plot

import (
	"fmt"
	"io"
	"math"

	"github.com/uyouii/growthfit/common"
	"github.com/uyouii/growthfit/growthfit"
	"github.com/uyouii/growthfit/model"
	"github.com/uyouii/growthfit/session"
	"github.com/uyouii/growthfit/utils"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

type options struct {
	width     int
	height    int
	title     string
	blank     bool
	fits      bool
	threshold bool
	base      growthfit.LogBase
	logThresh bool
}

type Option func(*options)

func WithSize(width, height int) Option {
	return func(o *options) {
		if width > 0 && height > 0 {
			o.width, o.height = width, height
		}
	}
}

func WithTitle(title string) Option {
	return func(o *options) {
		o.title = title
	}
}

// WithBlankCorrection subtracts the first reading of every series before drawing, matching
// what the growth analyzer fits.
func WithBlankCorrection() Option {
	return func(o *options) {
		o.blank = true
	}
}

// WithoutFits hides the fit-line overlay.
func WithoutFits() Option {
	return func(o *options) {
		o.fits = false
	}
}

// WithoutThreshold hides the threshold line and crossing markers.
func WithoutThreshold() Option {
	return func(o *options) {
		o.threshold = false
	}
}

// WithLogThreshold declares the session threshold a logarithm in base and draws the log scale
// in that base, as the qPCR analyzer expects.
func WithLogThreshold(base growthfit.LogBase) Option {
	return func(o *options) {
		o.base = base
		o.logThresh = true
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		width:     DefaultWidth,
		height:    DefaultHeight,
		fits:      true,
		threshold: true,
		base:      growthfit.LogE,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// RenderLinear writes a PNG of the visible records on a linear y axis.
func RenderLinear(w io.Writer, records []session.Record, opts ...Option) error {
	return render(w, records, ScaleLinear, newOptions(opts))
}

// RenderLog writes a PNG of the visible records with y on a log scale. Non-positive readings are
// left out.
func RenderLog(w io.Writer, records []session.Record, opts ...Option) error {
	return render(w, records, ScaleLog, newOptions(opts))
}

func render(w io.Writer, records []session.Record, scale Scale, o *options) error {
	var (
		series    []chart.Series
		overlays  []chart.Series
		threshold *float64
		xMin      = math.Inf(1)
		xMax      = math.Inf(-1)
		yMin      = math.Inf(1)
		yMax      = math.Inf(-1)
		color     int
	)

	for _, rec := range records {
		if !rec.Visible {
			continue
		}
		s := rec.Series
		if o.blank {
			s = growthfit.SubtractBaseline(s)
		}
		xs, ys := project(s.Xs(), s.Ys(), scale, o.base)
		if len(xs) == 0 {
			continue
		}
		col := chart.GetDefaultColor(color)
		color++
		series = append(series, chart.ContinuousSeries{
			Name:    s.Name(),
			XValues: xs,
			YValues: ys,
			Style:   dotStyle(col),
		})
		for i := range xs {
			xMin, xMax = math.Min(xMin, xs[i]), math.Max(xMax, xs[i])
			yMin, yMax = math.Min(yMin, ys[i]), math.Max(yMax, ys[i])
		}

		if fit := rec.Analysis.Fit; o.fits && fit != nil && len(fit.Line) >= 2 {
			lx, ly := fitLine(fit, scale, o.base)
			for _, y := range ly {
				if !math.IsNaN(y) && !math.IsInf(y, 0) {
					yMin, yMax = math.Min(yMin, y), math.Max(yMax, y)
				}
			}
			if len(lx) >= 2 {
				overlays = append(overlays, chart.ContinuousSeries{
					Name:    s.Name() + " fit",
					XValues: lx,
					YValues: ly,
					Style:   lineStyle(col, nil),
				})
			}
		}
		if c := rec.Analysis.Crossing; o.threshold && c != nil {
			overlays = append(overlays, marker(s.Name(), c.X, col))
		}
		if rec.Params.Threshold != nil {
			threshold = rec.Params.Threshold
		}
	}

	if len(series) == 0 {
		return fmt.Errorf("%w: nothing visible to plot", common.ErrorInsufficientData)
	}
	if xMax == xMin {
		xMax = xMin + 1
	}

	if o.threshold && threshold != nil {
		t := *threshold
		switch {
		case scale == ScaleLog && !o.logThresh:
			t = o.base.Log(t)
		case scale == ScaleLinear && o.logThresh:
			t = o.base.Pow(t)
		}
		if !math.IsNaN(t) && !math.IsInf(t, 0) {
			overlays = append(overlays, chart.ContinuousSeries{
				Name:    fmt.Sprintf("threshold %v", *threshold),
				XValues: []float64{xMin, xMax},
				YValues: []float64{t, t},
				Style:   lineStyle(chart.ColorBlack, []float64{6, 4}),
			})
			yMin, yMax = math.Min(yMin, t), math.Max(yMax, t)
		}
	}
	if yMax == yMin {
		yMax = yMin + 1
	}

	// markers are drawn from yMin to yMax, resolve them once the range is known
	for i, s := range overlays {
		if cs, ok := s.(chart.ContinuousSeries); ok && cs.YValues == nil {
			cs.YValues = []float64{yMin, yMax}
			overlays[i] = cs
		}
	}

	yName := "y"
	if scale == ScaleLog {
		yName = "log(y)"
	}
	ch := chart.Chart{
		Title:  o.title,
		Width:  o.width,
		Height: o.height,
		Background: chart.Style{
			Padding: chart.Box{Top: 20, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis:  chart.XAxis{Name: "x"},
		YAxis:  chart.YAxis{Name: yName, Range: &chart.ContinuousRange{Min: yMin, Max: yMax}},
		Series: append(series, overlays...),
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	return ch.Render(chart.PNG, w)
}

// project drops the points a scale cannot show.
func project(xs, ys []float64, scale Scale, base growthfit.LogBase) ([]float64, []float64) {
	if scale == ScaleLinear {
		return xs, ys
	}
	px := make([]float64, 0, len(xs))
	py := make([]float64, 0, len(ys))
	for i := range xs {
		if ys[i] <= 0 {
			continue
		}
		px = append(px, xs[i])
		py = append(py, base.Log(ys[i]))
	}
	return px, py
}

// fitLine returns the fitted line in plot coordinates. Fits live in the log space of their own
// base, the linear plot gets the back-transformed curve sampled along the window.
func fitLine(fit *model.FitResult, scale Scale, base growthfit.LogBase) ([]float64, []float64) {
	fitBase := growthfit.LogBase(fit.Base)
	if fit.Base <= 0 {
		fitBase = growthfit.LogE
	}
	start, end := fit.Line[0].X, fit.Line[len(fit.Line)-1].X
	if scale == ScaleLog && fitBase == base {
		return []float64{start, end}, []float64{fit.Predict(start), fit.Predict(end)}
	}

	xs := utils.Linspace(start, end, fitSamples)
	ys := make([]float64, fitSamples)
	for i, x := range xs {
		ys[i] = fitBase.Pow(fit.Predict(x))
		if scale == ScaleLog {
			ys[i] = base.Log(ys[i])
		}
	}
	return xs, ys
}

func marker(name string, x float64, col drawing.Color) chart.ContinuousSeries {
	return chart.ContinuousSeries{
		Name:    fmt.Sprintf("%s crossing %.3f", name, x),
		XValues: []float64{x, x},
		Style:   lineStyle(col, []float64{2, 3}),
	}
}

func dotStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    DotWidth,
		DotColor:    col,
	}
}

func lineStyle(col drawing.Color, dash []float64) chart.Style {
	return chart.Style{
		StrokeWidth:     LineWidth,
		StrokeColor:     col,
		StrokeDashArray: dash,
	}
}
