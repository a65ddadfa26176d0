package export

import (
	"io"
	"math"
	"strconv"

	"github.com/gocarina/gocsv"
	"github.com/uyouii/growthfit/model"
	"github.com/uyouii/growthfit/session"
	"github.com/uyouii/growthfit/utils"
)

// Decimals is the rounding applied to every exported number.
const Decimals = 3

// Value is an optional number, written empty when undefined.
type Value struct {
	V     float64
	Valid bool
}

func NewValue(v float64) Value {
	return Value{V: v, Valid: !math.IsNaN(v) && !math.IsInf(v, 0)}
}

func (v Value) MarshalCSV() (string, error) {
	if !v.Valid {
		return "", nil
	}
	r := utils.FormatFloat(v.V, Decimals)
	if r == 0 {
		// drop the sign of a rounded -0
		r = 0
	}
	return strconv.FormatFloat(r, 'f', -1, 64), nil
}

type ResultRow struct {
	ID          int    `csv:"id"`
	Name        string `csv:"name"`
	Origin      string `csv:"origin"`
	RateKind    string `csv:"rate_kind"`
	Rate        Value  `csv:"rate"`
	Slope       Value  `csv:"slope"`
	SlopeStdErr Value  `csv:"slope_std_err"`
	Intercept   Value  `csv:"intercept"`
	RSquared    Value  `csv:"r_squared"`
	FitStart    Value  `csv:"fit_start"`
	FitEnd      Value  `csv:"fit_end"`
	Crossing    Value  `csv:"crossing"`
	Error       string `csv:"error"`
}

func NewResultRow(rec session.Record) ResultRow {
	a := rec.Analysis
	row := ResultRow{
		ID:       rec.ID,
		Name:     rec.Series.Name(),
		Origin:   rec.Series.Label(model.LabelOrigin),
		RateKind: string(a.Rate.Kind),
	}
	if a.Rate.Defined {
		row.Rate = NewValue(a.Rate.Value)
	}
	if a.Fit != nil {
		row.Slope = NewValue(a.Fit.Slope)
		row.SlopeStdErr = NewValue(a.Fit.SlopeStdErr)
		row.Intercept = NewValue(a.Fit.Intercept)
		row.RSquared = NewValue(a.Fit.RSquared)
		if n := len(a.Fit.Line); n > 0 {
			row.FitStart = NewValue(a.Fit.Line[0].X)
			row.FitEnd = NewValue(a.Fit.Line[n-1].X)
		}
	}
	if a.Crossing != nil {
		row.Crossing = NewValue(a.Crossing.X)
	}
	if a.RateErr != nil {
		row.Error = a.RateErr.Error()
	}
	return row
}

// WriteResults writes one CSV row per record with a header line.
func WriteResults(w io.Writer, records []session.Record) error {
	rows := make([]ResultRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, NewResultRow(rec))
	}
	return gocsv.Marshal(&rows, w)
}

func formatRaw(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
