package common

import "errors"

var (
	ErrorInvalidValue     = errors.New("invalid value")
	ErrorInvalidWindow    = errors.New("invalid fit window")
	ErrorNotFound         = errors.New("threshold crossing not found")
	ErrorInsufficientData = errors.New("insufficient data")
	ErrorDegenerateFit    = errors.New("degenerate fit, rate undefined")
	ErrorUnknownFormat    = errors.New("unknown file format")
	ErrorSeriesNotFound   = errors.New("series not found")
)
