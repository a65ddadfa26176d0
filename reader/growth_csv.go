package reader

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/uyouii/growthfit/common"
	"github.com/uyouii/growthfit/model"
	"go.uber.org/multierr"
)

const growthTimeLayout = "02/01/06 15:04"

// ReadGrowthCSV reads lines of "date,time,...,OD". x is hours since the first sample and y
// the last field.
func ReadGrowthCSV(r io.Reader, name string) (model.Series, error) {
	var (
		times []time.Time
		ods   []float64
		errs  error
	)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := splitTrim(line, ",")
		if len(fields) < 3 {
			errs = multierr.Append(errs, fmt.Errorf("%w: line %d has %d fields", common.ErrorUnknownFormat, lineNo, len(fields)))
			continue
		}
		ts, err := parseTimestamp(fields[0] + " " + fields[1])
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("line %d: %w", lineNo, err))
			continue
		}
		od, err := strconv.ParseFloat(fields[len(fields)-1], 64)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%w: line %d: %v", common.ErrorInvalidValue, lineNo, err))
			continue
		}
		times = append(times, ts)
		ods = append(ods, od)
	}
	errs = multierr.Append(errs, scanner.Err())
	if errs != nil {
		return model.Series{}, errs
	}
	if len(times) == 0 {
		return model.Series{}, fmt.Errorf("%w: no samples in %s", common.ErrorInsufficientData, name)
	}

	hours := make([]float64, len(times))
	for i, ts := range times {
		hours[i] = ts.Sub(times[0]).Hours()
	}
	return model.NewSeries(hours, ods, labels(name, name, KindGrowth))
}

// parseTimestamp reads day-first "dd/mm/yy HH:MM" and falls back to dateparse for other
// layouts.
func parseTimestamp(s string) (time.Time, error) {
	if ts, err := time.Parse(growthTimeLayout, s); err == nil {
		return ts, nil
	}
	ts, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: timestamp %q", common.ErrorInvalidValue, s)
	}
	return ts, nil
}

func splitTrim(line, sep string) []string {
	fields := strings.Split(line, sep)
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}

func labels(name, origin string, kind Kind) map[string]string {
	return map[string]string{
		model.LabelName:   name,
		model.LabelOrigin: origin,
		model.LabelKind:   string(kind),
	}
}
