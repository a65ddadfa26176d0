package reader

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/uyouii/growthfit/common"
	"github.com/uyouii/growthfit/model"
	"go.uber.org/multierr"
	"golang.org/x/net/html/charset"
)

const (
	qpcrEncoding  = "utf-16le"
	byteOrderMark = "\ufeff"
)

// ReadQPCR reads a UTF-16LE, tab separated export. Header columns 1..N are cycles 1..N and
// every later row is a well: its name in column 0 and one reading per cycle.
func ReadQPCR(r io.Reader, origin string) ([]model.Series, error) {
	decoded, err := charset.NewReaderLabel(qpcrEncoding, r)
	if err != nil {
		return nil, err
	}

	var (
		cycles []float64
		res    []model.Series
		errs   error
	)
	scanner := bufio.NewScanner(decoded)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(strings.TrimPrefix(scanner.Text(), byteOrderMark), " \t\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "\t")

		if cycles == nil {
			cycles = make([]float64, len(fields)-1)
			for j := range cycles {
				cycles[j] = float64(j + 1)
			}
			continue
		}

		values, err := parseFloats(fields[1:])
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("line %d: %w", lineNo, err))
			continue
		}
		well := strings.TrimSpace(fields[0])
		lbs := labels(well, origin, KindQPCR)
		lbs[model.LabelWell] = well
		s, err := model.NewSeries(cycles, values, lbs)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%w: line %d: %v", common.ErrorInvalidValue, lineNo, err))
			continue
		}
		res = append(res, s)
	}
	errs = multierr.Append(errs, scanner.Err())
	if errs != nil {
		return nil, errs
	}
	if len(cycles) == 0 || len(res) == 0 {
		return nil, fmt.Errorf("%w: no wells in %s", common.ErrorInsufficientData, origin)
	}
	return res, nil
}
