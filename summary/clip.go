package summary

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Clip is the closed interval of values kept for a summary.
type Clip struct {
	Upper float64
	Lower float64
}

func (c *Clip) Contains(v float64) bool {
	return v >= c.Lower && v <= c.Upper
}

// ZScoreClip spans mean +- the clip z-scores of x.
func ZScoreClip(x []float64) *Clip {
	mean, stddev := stat.MeanStdDev(x, nil)
	if math.IsNaN(stddev) {
		stddev = 0
	}
	return &Clip{
		Upper: mean + stddev*ClipUpperZScore,
		Lower: mean - stddev*ClipLowerZScore,
	}
}

// ApplyClip drops the values outside clip together with their weights. Weights are ignored
// when their length does not match x.
func ApplyClip(x []float64, weights []float64, clip *Clip) ([]float64, []float64) {
	if clip == nil {
		return x, weights
	}
	withWeights := len(weights) == len(x)

	resX, resWeight := []float64{}, []float64{}
	for i := range x {
		if !clip.Contains(x[i]) {
			continue
		}
		resX = append(resX, x[i])
		if withWeights {
			resWeight = append(resWeight, weights[i])
		}
	}
	if !withWeights {
		resWeight = weights
	}
	return resX, resWeight
}

func finite(x []float64) []float64 {
	res := make([]float64, 0, len(x))
	for _, v := range x {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			res = append(res, v)
		}
	}
	return res
}

func initOnes(n int) []float64 {
	res := make([]float64, n)
	for i := range res {
		res[i] = 1
	}
	return res
}
