package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/uyouii/growthfit/common"
	"github.com/uyouii/growthfit/export"
	"github.com/uyouii/growthfit/growth"
	"github.com/uyouii/growthfit/growthfit"
	"github.com/uyouii/growthfit/model"
	"github.com/uyouii/growthfit/plot"
	"github.com/uyouii/growthfit/qpcr"
	"github.com/uyouii/growthfit/reader"
	"github.com/uyouii/growthfit/session"
	"github.com/uyouii/growthfit/smoothing"
	"github.com/uyouii/growthfit/summary"
	"github.com/uyouii/growthfit/utils"
	"go.uber.org/zap"
)

type config struct {
	file      string
	kind      string
	mode      string
	threshold float64
	hasThresh bool
	start     int
	end       int
	results   string
	traces    string
	plot      string
	smooth    bool
	knots     int
	hist      bool
	debug     bool

	channel        string
	concentrations string
	distances      string
	scan           int
	span           int
	lre            string
}

func main() {
	var cfg config

	flag.StringVar(&cfg.file, "file", "", "Input file (growth .csv, bioreactor .txt, Biolector .xls/.xlsx, qPCR .txt)")
	flag.StringVar(&cfg.kind, "kind", "", "(Optional) Input format: growth, bioreactor, biolector, plate or qpcr. Detected from the file when empty")
	flag.StringVar(&cfg.mode, "mode", "growth", "Analysis: growth (doubling time) or qpcr (Ct and alpha)")
	flag.Float64Var(&cfg.threshold, "threshold", 0, "(Optional) Crossing threshold. A log2 fluorescence value in qpcr mode")
	flag.IntVar(&cfg.start, "start", 0, "(Optional) First sample index of the fit window")
	flag.IntVar(&cfg.end, "end", 0, "(Optional) End sample index (exclusive) of the fit window. 0 keeps the default window")
	flag.StringVar(&cfg.results, "results", "", "(Optional) Write the per-series results CSV here")
	flag.StringVar(&cfg.traces, "traces", "", "(Optional) Write the traces CSV here")
	flag.StringVar(&cfg.plot, "plot", "", "(Optional) PNG path; _linear and _log variants are written next to it")
	flag.BoolVar(&cfg.smooth, "smooth", false, "Smooth every series with a regression spline before analysis?")
	flag.IntVar(&cfg.knots, "knots", 0, "(Optional) Spline knots for -smooth. 0 picks them by cross-validation")
	flag.BoolVar(&cfg.hist, "hist", false, "Print a histogram of the derived rates?")
	flag.BoolVar(&cfg.debug, "debug", false, "Log at debug level?")
	flag.StringVar(&cfg.channel, "channel", "", "(Optional) Plate channel to show with -kind plate. Defaults to the first channel")
	flag.StringVar(&cfg.concentrations, "concentrations", "", "(Optional, qpcr) Comma-separated dilution concentrations, one per trace, for a standard curve")
	flag.StringVar(&cfg.distances, "distances", "", "(Optional, qpcr) Comma-separated distances, one per trace, for the dG/dH plot")
	flag.IntVar(&cfg.scan, "scan", 0, "(Optional, qpcr) Scan alpha over this many thresholds across the log2 range")
	flag.IntVar(&cfg.span, "span", 0, "(Optional, qpcr) Fit alpha on this many points around -threshold and scan windows of that size")
	flag.StringVar(&cfg.lre, "lre", "", "(Optional, qpcr) min,max cycle range for linear regression of efficiency")
	flag.Parse()

	flag.Visit(func(f *flag.Flag) {
		if f.Name == "threshold" {
			cfg.hasThresh = true
		}
	})

	if cfg.file == "" {
		flag.PrintDefaults()
		os.Exit(1)
	}

	logger := zap.Must(zap.NewProduction())
	if cfg.debug {
		logger = zap.Must(zap.NewDevelopment())
	}
	defer logger.Sync()
	ctx := utils.WithLogger(context.Background(), logger)

	if err := run(ctx, cfg, os.Stdout); err != nil {
		log.Fatalln(err)
	}
}

func run(ctx context.Context, cfg config, out io.Writer) error {
	logger := utils.GetLogger(ctx)

	kind := reader.Kind("")
	if cfg.kind != "" {
		k, err := reader.ParseKind(cfg.kind)
		if err != nil {
			return err
		}
		kind = k
	}

	series, err := reader.Load(ctx, cfg.file, kind)
	if err != nil {
		return err
	}

	if cfg.smooth {
		for i, s := range series {
			smoothed, spline, err := smoothing.SmoothSeries(ctx, s, cfg.knots)
			if err != nil {
				logger.Warn("smoothing skipped", zap.String("series", s.Name()), zap.Error(err))
				continue
			}
			logger.Debug("smoothed", zap.String("series", s.Name()), zap.Int("knots", len(spline.Knots)))
			series[i] = smoothed
		}
	}

	var (
		analyzer session.Analyzer
		plotOpts = []plot.Option{plot.WithTitle(cfg.file)}
	)
	switch cfg.mode {
	case "growth":
		analyzer = growth.NewAnalyzer()
		plotOpts = append(plotOpts, plot.WithBlankCorrection())
	case "qpcr":
		analyzer = qpcr.NewAnalyzer()
		plotOpts = append(plotOpts, plot.WithLogThreshold(growthfit.Log2))
	default:
		return fmt.Errorf("unknown mode %q, want growth or qpcr", cfg.mode)
	}

	if cfg.mode != "qpcr" && cfg.usesQPCRTools() {
		return fmt.Errorf("-concentrations, -distances, -scan, -span and -lre need -mode qpcr")
	}

	var opts []session.Option
	if cfg.hasThresh {
		opts = append(opts, session.WithThreshold(cfg.threshold))
	}
	if kind == reader.KindPlate {
		opts = append(opts, session.WithHiddenRecords())
	}
	sess := session.New(analyzer, opts...)

	ids, err := sess.AddAll(ctx, series)
	if err != nil {
		return err
	}
	if kind == reader.KindPlate {
		if err := showChannel(ctx, sess, series, ids, cfg.channel); err != nil {
			return err
		}
	}

	if cfg.end > 0 {
		window := model.Window{Start: cfg.start, End: cfg.end}
		for _, id := range ids {
			if err := sess.SetWindow(ctx, id, window); err != nil {
				logger.Warn("window not applied", zap.Int("id", id), zap.Stringer("window", window), zap.Error(err))
			}
		}
	}

	records := sess.List()
	if err := printRecords(out, sess.Visible()); err != nil {
		return err
	}
	if err := printSummary(ctx, out, sess.Visible(), cfg.hist); err != nil {
		logger.Info("no rate summary", zap.Error(err))
	}
	if cfg.mode == "qpcr" && cfg.usesQPCRTools() {
		if err := runQPCRTools(ctx, cfg, out, series); err != nil {
			return err
		}
	}

	if cfg.results != "" {
		if err := writeFile(cfg.results, func(w io.Writer) error { return export.WriteResults(w, records) }); err != nil {
			return err
		}
	}
	if cfg.traces != "" {
		if err := writeFile(cfg.traces, func(w io.Writer) error { return export.WriteTraces(w, records) }); err != nil {
			return err
		}
	}
	if cfg.plot != "" {
		prefix := strings.TrimSuffix(cfg.plot, ".png")
		if err := writeFile(prefix+"_linear.png", func(w io.Writer) error { return plot.RenderLinear(w, records, plotOpts...) }); err != nil {
			return err
		}
		if err := writeFile(prefix+"_log.png", func(w io.Writer) error { return plot.RenderLog(w, records, plotOpts...) }); err != nil {
			return err
		}
	}
	return nil
}

// showChannel makes the wells of one plate channel visible. ids[i] belongs to series[i].
func showChannel(ctx context.Context, sess *session.Session, series []model.Series, ids []int, channel string) error {
	logger := utils.GetLogger(ctx)

	plate, err := reader.NewPlate(series)
	if err != nil {
		return err
	}
	if len(plate.Channels) == 0 {
		return fmt.Errorf("%w: plate has no channels", common.ErrorInsufficientData)
	}
	if channel == "" {
		channel = plate.Channels[0]
	}
	wells := plate.Channel(channel)
	if len(wells) == 0 {
		return fmt.Errorf("%w: channel %q, plate has %v", common.ErrorInvalidValue, channel, plate.Channels)
	}
	for _, i := range wells {
		if err := sess.SetVisible(ids[i], true); err != nil {
			return err
		}
	}
	logger.Info("plate channel shown", zap.String("channel", channel), zap.Int("wells", len(wells)),
		zap.Strings("rows", plate.Rows), zap.Ints("columns", plate.Columns))
	return nil
}

func printRecords(out io.Writer, records []session.Record) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tRATE\tVALUE\tR2\tCROSSING\tERROR")
	for _, rec := range records {
		a := rec.Analysis
		value, r2, crossing, errText := "-", "-", "-", ""
		if a.Rate.Defined {
			value = fmt.Sprint(utils.FormatFloat(a.Rate.Value, export.Decimals))
		}
		if a.Fit != nil {
			r2 = fmt.Sprint(utils.FormatFloat(a.Fit.RSquared, export.Decimals))
		}
		if a.Crossing != nil {
			crossing = fmt.Sprint(utils.FormatFloat(a.Crossing.X, export.Decimals))
		}
		if a.RateErr != nil {
			errText = a.RateErr.Error()
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n", rec.ID, rec.Series.Name(), a.Rate.Kind, value, r2, crossing, errText)
	}
	return tw.Flush()
}

func printSummary(ctx context.Context, out io.Writer, records []session.Record, hist bool) error {
	var rates []float64
	for _, rec := range records {
		if rec.Analysis.Rate.Defined {
			rates = append(rates, rec.Analysis.Rate.Value)
		}
	}

	stats, err := summary.Describe(ctx, rates)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nrates: n=%d dropped=%d mean=%.3f sd=%.3f median=%.3f q1=%.3f q3=%.3f\n",
		stats.Count, stats.Dropped, stats.Mean, stats.StdDev, stats.Median, stats.Q1, stats.Q3)

	if density, bw, err := summary.Estimate(ctx, rates); err == nil && len(density) > 0 {
		peak := density[0]
		for _, d := range density {
			if d.Value > peak.Value {
				peak = d
			}
		}
		fmt.Fprintf(out, "density peak at %.3f (bandwidth %.3f)\n", peak.X, bw)
	}

	if hist {
		fmt.Fprintln(out)
		return summary.PrintHistogram(out, finite(rates), summary.DefaultHistBins, summary.DefaultHistWidth)
	}
	return nil
}

func finite(values []float64) []float64 {
	res := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			res = append(res, v)
		}
	}
	return res
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
