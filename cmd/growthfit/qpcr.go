package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/uyouii/growthfit/common"
	"github.com/uyouii/growthfit/growthfit"
	"github.com/uyouii/growthfit/model"
	"github.com/uyouii/growthfit/qpcr"
	"github.com/uyouii/growthfit/utils"
	"go.uber.org/zap"
)

func (cfg config) usesQPCRTools() bool {
	return cfg.concentrations != "" || cfg.distances != "" || cfg.scan > 0 || cfg.span > 0 || cfg.lre != ""
}

// runQPCRTools prints the plate-level qPCR analyses asked for on the command line. Per-trace
// lists (-concentrations, -distances) follow the order of the traces in the file.
func runQPCRTools(ctx context.Context, cfg config, out io.Writer, traces []model.Series) error {
	logger := utils.GetLogger(ctx)

	var cts []qpcr.CtResult
	if cfg.concentrations != "" || cfg.distances != "" || cfg.span > 0 {
		if !cfg.hasThresh {
			return fmt.Errorf("%w: -concentrations, -distances and -span need -threshold", common.ErrorInvalidValue)
		}
		var err error
		if cts, err = qpcr.ComputeCts(ctx, traces, cfg.threshold); err != nil {
			logger.Warn("traces without Ct", zap.Error(err))
		}
	}

	if cfg.concentrations != "" {
		concentrations, err := parseFloatList(cfg.concentrations)
		if err != nil {
			return err
		}
		points, err := qpcr.CalibrationPoints(cts, concentrations)
		if err != nil {
			return err
		}
		curve, err := qpcr.FitStandardCurve(points)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\nstandard curve: slope=%.3f intercept=%.3f r2=%.3f", curve.Fit.Slope, curve.Fit.Intercept, curve.Fit.RSquared)
		if curve.Efficiency.Defined {
			fmt.Fprintf(out, " efficiency=%.3f\n", curve.Efficiency.Value)
		} else {
			fmt.Fprintf(out, " efficiency undefined: %v\n", curve.EfficiencyErr)
		}
	}

	if cfg.distances != "" {
		distances, err := parseFloatList(cfg.distances)
		if err != nil {
			return err
		}
		if len(distances) != len(cts) {
			return fmt.Errorf("%w: %d distances for %d traces", common.ErrorInvalidValue, len(distances), len(cts))
		}
		var ds, cs []float64
		for i, ct := range cts {
			if ct.Crossing != nil {
				ds, cs = append(ds, distances[i]), append(cs, ct.Crossing.X)
			}
		}
		delta, err := qpcr.DeltaGDeltaH(ds, cs)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\ndG/dH: slope=%.3f intercept=%.3f r2=%.3f origin slope=%.3f median ratio=%.3f\n",
			delta.Fit.Slope, delta.Fit.Intercept, delta.Fit.RSquared, delta.OriginSlope, delta.MedianRatio)
	}

	if cfg.scan > 0 {
		if err := printThresholdScan(ctx, out, traces, cfg.scan); err != nil {
			return err
		}
	}

	if cfg.span > 0 {
		if err := printSpanFits(ctx, out, traces, cfg.threshold, cfg.span); err != nil {
			return err
		}
	}

	if cfg.lre != "" {
		bounds, err := parseFloatList(cfg.lre)
		if err != nil {
			return err
		}
		if len(bounds) != 2 {
			return fmt.Errorf("%w: -lre wants min,max, got %q", common.ErrorInvalidValue, cfg.lre)
		}
		fmt.Fprintln(out)
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tLRE POINTS\tMAX EFFICIENCY\tDECAY\tERROR")
		for _, trace := range traces {
			res, err := qpcr.LRE(trace, bounds[0], bounds[1])
			if err != nil {
				fmt.Fprintf(tw, "%s\t-\t-\t-\t%v\n", trace.Name(), err)
				continue
			}
			fmt.Fprintf(tw, "%s\t%d\t%.3f\t%.3f\t\n", trace.Name(), len(res.Points), res.MaxEfficiency, res.Fit.Slope)
		}
		return tw.Flush()
	}
	return nil
}

func printThresholdScan(ctx context.Context, out io.Writer, traces []model.Series, n int) error {
	thresholds, err := qpcr.ScanThresholds(traces, n)
	if err != nil {
		return err
	}
	scans := qpcr.ScanAlphas(ctx, traces, thresholds)

	fmt.Fprintln(out)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	header := []string{"THRESHOLD"}
	for _, scan := range scans {
		header = append(header, scan.Name)
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for i, threshold := range thresholds {
		line := []string{formatNumber(threshold)}
		for _, scan := range scans {
			line = append(line, formatNumber(scan.Alphas[i]))
		}
		fmt.Fprintln(tw, strings.Join(line, "\t"))
	}
	return tw.Flush()
}

// printSpanFits reports alpha from span points around the threshold and the start cycle of
// the best span-point window of every trace.
func printSpanFits(ctx context.Context, out io.Writer, traces []model.Series, logThreshold float64, span int) error {
	logger := utils.GetLogger(ctx)

	fmt.Fprintln(out)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSPAN ALPHA\tBEST WINDOW START\tBEST R2")
	for _, trace := range traces {
		alpha := "-"
		if fit, err := qpcr.FitAroundThreshold(trace, logThreshold, span); err != nil {
			logger.Debug("span fit skipped", zap.String("well", trace.Name()), zap.Error(err))
		} else if v, err := growthfit.AmplificationEfficiency(fit); err == nil {
			alpha = formatNumber(v)
		}

		start, r2 := "-", "-"
		if windows, err := qpcr.ScanWindows(trace, span); err != nil {
			logger.Debug("window scan skipped", zap.String("well", trace.Name()), zap.Error(err))
		} else if len(windows) > 0 {
			best := windows[0]
			for _, w := range windows[1:] {
				if w.RSquared > best.RSquared {
					best = w
				}
			}
			start, r2 = formatNumber(best.X), formatNumber(best.RSquared)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", trace.Name(), alpha, start, r2)
	}
	return tw.Flush()
}

func parseFloatList(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	res := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q in %q", common.ErrorInvalidValue, part, s)
		}
		res = append(res, v)
	}
	return res, nil
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(utils.FormatFloat(v, 3), 'f', -1, 64)
}
