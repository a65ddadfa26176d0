package reader

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/uyouii/growthfit/common"
	"github.com/uyouii/growthfit/model"
	"go.uber.org/multierr"
)

// ReadBioreactor reads a delimited table with a header row. The first column is time, every
// further column is one vessel named <name>_<i>, i counting from zero.
func ReadBioreactor(r io.Reader, name string) ([]model.Series, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = detectDelimiter(data)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorUnknownFormat, err)
	}
	if len(records) < 2 || len(records[0]) < 2 {
		return nil, fmt.Errorf("%w: %s needs a header, a time column and data rows", common.ErrorUnknownFormat, name)
	}

	traces := len(records[0]) - 1
	times := []float64{}
	ods := make([][]float64, traces)
	var errs error
	for i, record := range records[1:] {
		if isBlank(record) {
			continue
		}
		if len(record) != traces+1 {
			errs = multierr.Append(errs, fmt.Errorf("%w: row %d has %d fields, want %d",
				common.ErrorUnknownFormat, i+2, len(record), traces+1))
			continue
		}
		values, err := parseFloats(record)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("row %d: %w", i+2, err))
			continue
		}
		times = append(times, values[0])
		for j := range ods {
			ods[j] = append(ods[j], values[j+1])
		}
	}
	if errs != nil {
		return nil, errs
	}

	res := make([]model.Series, 0, traces)
	for j, od := range ods {
		traceName := fmt.Sprintf("%s_%d", name, j)
		s, err := model.NewSeries(times, od, labels(traceName, traceName, KindBioreactor))
		if err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, nil
}

func parseFloats(fields []string) ([]float64, error) {
	res := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: field %d: %v", common.ErrorInvalidValue, i, err)
		}
		res[i] = v
	}
	return res, nil
}

func isBlank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
