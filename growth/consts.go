package growth

const (
	// Input times are in hours, doubling times are reported in minutes.
	DefaultTimeScale = 60.0

	minWindowLen = 2
)

func getDefaultTimeScale() float64 {
	return DefaultTimeScale
}
