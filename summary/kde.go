package summary

import (
	"fmt"
	"math"

	"github.com/uyouii/growthfit/common"
	"github.com/uyouii/growthfit/utils"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate/quad"
	"gonum.org/v1/gonum/stat"
)

// iqrToSigma converts an interquartile range of normal data to its standard deviation.
const iqrToSigma = 1.349

type Density struct {
	X     float64
	Value float64
}

// KDE is a univariate Gaussian kernel density estimate evaluated on a regular grid.
type KDE struct {
	Values  []float64
	Weights []float64

	gridSize int

	// An adjustment factor for the bw. Bandwidth becomes bw * adjust.
	bwAdjust float64

	// The grid runs from min(x) - cut*bw to max(x) + cut*bw.
	cut float64

	density []Density
	cdf     []Density
	grid    []float64
	bw      float64
	fitted  bool
	kernel  *GaussianKernel
}

// NewKDE keeps the finite values inside clip. weights may be nil for equal weights.
func NewKDE(values []float64, weights []float64, bwAdjust float64, cut float64, clip *Clip) (*KDE, error) {
	if len(weights) == 0 {
		weights = initOnes(len(values))
	} else if len(weights) != len(values) {
		return nil, fmt.Errorf("%w: %d weights for %d values", common.ErrorInvalidValue, len(weights), len(values))
	}

	xs, ws := make([]float64, 0, len(values)), make([]float64, 0, len(values))
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		xs = append(xs, v)
		ws = append(ws, weights[i])
	}
	xs, ws = ApplyClip(xs, ws, clip)
	if len(xs) < getMinDensityPointCnt() {
		return nil, fmt.Errorf("%w: %d values for a density", common.ErrorInsufficientData, len(xs))
	}

	inds := make([]int, len(xs))
	floats.Argsort(xs, inds)
	sortedWeights := make([]float64, len(ws))
	for i, idx := range inds {
		sortedWeights[i] = ws[idx]
	}

	if bwAdjust == 0 {
		bwAdjust = 1
	}
	if cut == 0 {
		cut = DefaultCut
	}

	return &KDE{
		Values:   xs,
		Weights:  sortedWeights,
		gridSize: utils.IntMax(len(xs), DefaultGridSize),
		bwAdjust: bwAdjust,
		cut:      cut,
	}, nil
}

// Density returns the estimate on the grid and the bandwidth used.
func (kde *KDE) Density() ([]Density, float64, error) {
	if kde.fitted {
		return kde.density, kde.bw, nil
	}

	kernel := NewGaussianKernel()
	bw, err := normalReferenceBandwidth(kernel, kde.Values)
	if err != nil {
		return nil, 0, err
	}
	bw *= kde.bwAdjust
	if !(bw > 0) || math.IsInf(bw, 0) {
		return nil, 0, fmt.Errorf("%w: bandwidth %v", common.ErrorDegenerateFit, bw)
	}
	kernel.SetH(bw)
	kernel.SetWeights(kde.Weights)

	a := floats.Min(kde.Values) - kde.cut*bw
	b := floats.Max(kde.Values) + kde.cut*bw
	grid := utils.Linspace(a, b, kde.gridSize)

	res := make([]Density, len(grid))
	for i, x := range grid {
		res[i] = Density{X: x, Value: kernel.Density(kde.Values, x)}
	}

	kde.density = res
	kde.bw = bw
	kde.grid = grid
	kde.kernel = kernel
	kde.fitted = true

	return res, bw, nil
}

// Cdf integrates the density cell by cell along the grid, starting at zero on the first
// grid point.
func (kde *KDE) Cdf() ([]Density, error) {
	if _, _, err := kde.Density(); err != nil {
		return nil, err
	}
	if len(kde.cdf) > 0 {
		return kde.cdf, nil
	}

	f := func(x float64) float64 {
		return kde.kernel.Density(kde.Values, x)
	}

	res := make([]Density, len(kde.grid))
	res[0] = Density{X: kde.grid[0]}
	cumSum := 0.0
	for i := 1; i < len(kde.grid); i++ {
		cumSum += quad.Fixed(f, kde.grid[i-1], kde.grid[i], cdfQuadNodes, nil, 0)
		res[i] = Density{X: kde.grid[i], Value: cumSum}
	}

	kde.cdf = res
	return res, nil
}

// Quantile inverts the cdf by linear interpolation, clamping to the grid ends.
func (kde *KDE) Quantile(p float64) (float64, error) {
	if !(p >= 0 && p <= 1) {
		return 0, fmt.Errorf("%w: probability %v", common.ErrorInvalidValue, p)
	}
	cdf, err := kde.Cdf()
	if err != nil {
		return 0, err
	}

	if p <= cdf[0].Value {
		return cdf[0].X, nil
	}
	for i := 1; i < len(cdf); i++ {
		if cdf[i].Value > p {
			lowerX, lowerP := cdf[i-1].X, cdf[i-1].Value
			upperX, upperP := cdf[i].X, cdf[i].Value
			return lowerX + (upperX-lowerX)*(p-lowerP)/(upperP-lowerP), nil
		}
	}
	return cdf[len(cdf)-1].X, nil
}

// normalReferenceBandwidth is Silverman's rule of thumb over the sorted rates. Weights do not
// enter the spread, so a rate with zero weight still widens the kernel.
func normalReferenceBandwidth(kernel Kernel, sorted []float64) (float64, error) {
	spread := rateSpread(sorted)
	if !(spread > 0) {
		return 0, fmt.Errorf("%w: all %d rates equal %v", common.ErrorDegenerateFit, len(sorted), sorted[0])
	}
	return kernel.NormalReferenceConstant() * spread * math.Pow(float64(len(sorted)), -0.2), nil
}

// rateSpread is min(sd, IQR/1.349), or the sd alone when more than half the rates coincide.
func rateSpread(sorted []float64) float64 {
	sd := stat.StdDev(sorted, nil)
	q25 := stat.Quantile(0.25, stat.Empirical, sorted, nil)
	q75 := stat.Quantile(0.75, stat.Empirical, sorted, nil)
	if iqr := (q75 - q25) / iqrToSigma; iqr > 0 {
		return math.Min(sd, iqr)
	}
	return sd
}
