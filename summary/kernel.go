package summary

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

type Kernel interface {
	NormalReferenceConstant() float64
}

// GaussianKernel is the standard normal kernel scaled by bandwidth h.
type GaussianKernel struct {
	shape                   distuv.Normal
	l2Norm                  float64
	kernelVar               float64
	order                   int
	normalReferenceConstant float64
	h                       float64
	weights                 []float64
}

func NewGaussianKernel() *GaussianKernel {
	return &GaussianKernel{
		shape:     distuv.Normal{Mu: 0, Sigma: 1},
		l2Norm:    1.0 / (2.0 * math.Sqrt(math.Pi)),
		kernelVar: 1.0,
		order:     2,
		h:         1.0,
	}
}

func (k *GaussianKernel) SetH(h float64) {
	k.h = h
}

// SetWeights stores the weights normalised to sum to one. A nil or all-zero slice means
// equal weights.
func (k *GaussianKernel) SetWeights(weights []float64) {
	sum := 0.0
	for _, v := range weights {
		sum += v
	}
	if sum == 0 {
		k.weights = nil
		return
	}
	kernelWeights := make([]float64, len(weights))
	for i := range weights {
		kernelWeights[i] = weights[i] / sum
	}
	k.weights = kernelWeights
}

func (k *GaussianKernel) Shape(u float64) float64 {
	return k.shape.Prob(u)
}

func (k *GaussianKernel) NormalReferenceConstant() float64 {
	nu := k.order
	if k.normalReferenceConstant == 0 {
		numerator := math.Sqrt(math.Pi) * math.Pow(factorial(nu), 3) * k.l2Norm
		denom := 2.0 * float64(nu) * factorial(2*nu) * math.Pow(k.moment(nu), 2)
		k.normalReferenceConstant = 2 * math.Pow(numerator/denom, 1.0/float64(2*nu+1))
	}
	return k.normalReferenceConstant
}

func (k *GaussianKernel) moment(n int) float64 {
	switch n {
	case 1:
		return 0
	case 2:
		return k.kernelVar
	}
	return 1.0
}

// Density evaluates the kernel estimate built from xs at x.
func (k *GaussianKernel) Density(xs []float64, x float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}

	sum := 0.0
	if k.weights != nil {
		for i, xi := range xs {
			sum += k.Shape((xi-x)/k.h) * k.weights[i]
		}
		return sum / k.h
	}

	for _, xi := range xs {
		sum += k.Shape((xi - x) / k.h)
	}
	return sum / (k.h * float64(len(xs)))
}

func factorial(n int) float64 {
	result := 1.0
	for i := 2; i <= n; i++ {
		result *= float64(i)
	}
	return result
}
