package qpcr

const (
	// CtFitSpan is the number of log2 points fitted around Ct for alpha.
	CtFitSpan = 4

	DefaultScanSpan       = 4
	DefaultThresholdCount = 100
)

func getCtFitSpan() int {
	return CtFitSpan
}
