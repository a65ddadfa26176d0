package summary

import (
	"fmt"
	"io"
	"strconv"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/uyouii/growthfit/common"
	"github.com/uyouii/growthfit/utils"
)

// PrintHistogram writes a text histogram of the finite values. Non-positive bins or width
// fall back to the defaults.
func PrintHistogram(w io.Writer, values []float64, bins, width int) error {
	kept := finite(values)
	if len(kept) == 0 {
		return fmt.Errorf("%w: nothing to plot", common.ErrorInsufficientData)
	}
	if bins <= 0 {
		bins = DefaultHistBins
	}
	if width <= 0 {
		width = DefaultHistWidth
	}

	hist := histogram.Hist(bins, kept)
	return histogram.Fprintf(w, hist, histogram.Linear(width), func(v float64) string {
		return strconv.FormatFloat(utils.FormatFloat(v, 3), 'f', -1, 64)
	})
}
