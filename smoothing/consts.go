package smoothing

const (
	// MinKnots makes the spline a straight line.
	MinKnots = 2
	MaxKnots = 15

	DefaultCVRounds     = 10
	DefaultTestFraction = 0.5
	DefaultSeed         = 42

	// candidates need at least this many training points per knot
	pointsPerKnot = 2
)

func getCVRounds() int {
	return DefaultCVRounds
}

func getTestFraction() float64 {
	return DefaultTestFraction
}
