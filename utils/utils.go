package utils

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// FormatFloat rounds f to the given number of decimal places.
func FormatFloat(f float64, round int32) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return f
	}
	scale := math.Pow(10, float64(round))
	return math.Round(f*scale) / scale
}

// Linspace returns num evenly spaced values over [start, stop].
func Linspace(start, stop float64, num int) []float64 {
	if num < 2 {
		return []float64{start}
	}
	grid := floats.Span(make([]float64, num), start, stop)
	grid[num-1] = stop
	return grid
}

func IntMin(i1, i2 int) int {
	if i1 < i2 {
		return i1
	}
	return i2
}

func IntMax(a, b int) int {
	if a > b {
		return a
	}
	return b
}
