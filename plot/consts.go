package plot

const (
	DefaultWidth  = 1024
	DefaultHeight = 640
	DotWidth      = 3
	LineWidth     = 1.5

	// points along a back-transformed fit line
	fitSamples = 50
)

// Scale selects how y values are drawn.
type Scale int

const (
	ScaleLinear Scale = iota
	// ScaleLog draws the logarithm of y, natural unless WithLogThreshold picks another base.
	ScaleLog
)
