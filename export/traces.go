package export

import (
	"encoding/csv"
	"io"

	"github.com/uyouii/growthfit/session"
)

// WriteTraces writes the visible records side by side: a header of "x" and the series names,
// then one row per sample index with the x of the longest visible series. Shorter series
// leave their cells empty.
func WriteTraces(w io.Writer, records []session.Record) error {
	var (
		visible []session.Record
		longest session.Record
	)
	for _, rec := range records {
		if !rec.Visible {
			continue
		}
		visible = append(visible, rec)
		if rec.Series.Len() > longest.Series.Len() {
			longest = rec
		}
	}

	cw := csv.NewWriter(w)
	header := []string{"x"}
	for _, rec := range visible {
		header = append(header, rec.Series.Name())
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for i := 0; i < longest.Series.Len(); i++ {
		line := make([]string, 0, len(visible)+1)
		line = append(line, formatRaw(longest.Series.Points[i].X))
		for _, rec := range visible {
			if i < rec.Series.Len() {
				line = append(line, formatRaw(rec.Series.Points[i].Y))
			} else {
				line = append(line, "")
			}
		}
		if err := cw.Write(line); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
