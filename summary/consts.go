package summary

const (
	ClipUpperZScore = 3.0
	ClipLowerZScore = 3.0

	MinDescribePointCnt = 2
	MinDensityPointCnt  = 3

	DefaultGridSize  = 100
	DefaultCut       = 3.0
	DefaultHistBins  = 10
	DefaultHistWidth = 40

	// nodes of the fixed Gauss-Legendre rule used per grid cell when integrating the density
	cdfQuadNodes = 50
)

// QuartileProbs are the probabilities reported by Describe.
var QuartileProbs = []float64{0.25, 0.5, 0.75}

func getMinDescribePointCnt() int {
	return MinDescribePointCnt
}

func getMinDensityPointCnt() int {
	return MinDensityPointCnt
}
