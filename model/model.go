package model

import (
	"fmt"
	"math"
)

// Label keys set by the readers.
const (
	LabelName    = "name"
	LabelOrigin  = "origin"
	LabelKind    = "kind"
	LabelWell    = "well"
	LabelChannel = "channel"
)

type Point struct {
	X float64
	Y float64
}

func (p *Point) Before(point Point) bool {
	return p.X < point.X
}

type Series struct {
	// Labels contains label key -> label value, like "name": "A1_Biomass"
	Labels map[string]string
	Points []Point
}

func NewSeries(xs, ys []float64, labels map[string]string) (Series, error) {
	if len(xs) != len(ys) {
		return Series{}, fmt.Errorf("x/y length mismatch %d != %d", len(xs), len(ys))
	}
	points := make([]Point, len(xs))
	for i := range xs {
		points[i] = Point{X: xs[i], Y: ys[i]}
	}
	if labels == nil {
		labels = map[string]string{}
	}
	return Series{Labels: labels, Points: points}, nil
}

func (s *Series) DebugString() string {
	res := fmt.Sprintf("labels: %+v, pointCount: %+v", s.Labels, len(s.Points))
	return res
}

func (s *Series) IsEmpty() bool {
	if s == nil {
		return true
	}
	return len(s.Points) == 0
}

func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Points)
}

func (s *Series) Name() string {
	return s.Label(LabelName)
}

func (s *Series) Label(key string) string {
	if s == nil || s.Labels == nil {
		return ""
	}
	return s.Labels[key]
}

func (s *Series) Xs() []float64 {
	res := make([]float64, len(s.Points))
	for i, p := range s.Points {
		res[i] = p.X
	}
	return res
}

func (s *Series) Ys() []float64 {
	res := make([]float64, len(s.Points))
	for i, p := range s.Points {
		res[i] = p.Y
	}
	return res
}

// Validate checks that x is strictly increasing and every value is finite.
func (s *Series) Validate() error {
	for i, p := range s.Points {
		if math.IsNaN(p.X) || math.IsInf(p.X, 0) || math.IsNaN(p.Y) || math.IsInf(p.Y, 0) {
			return fmt.Errorf("non-finite point %d (%v, %v)", i, p.X, p.Y)
		}
		if i > 0 && p.X <= s.Points[i-1].X {
			return fmt.Errorf("x not strictly increasing at %d: %v <= %v", i, p.X, s.Points[i-1].X)
		}
	}
	return nil
}

// Slice returns the points of window w. The window must be valid for s.
func (s *Series) Slice(w Window) []Point {
	return s.Points[w.Start:w.End]
}

func (s *Series) CopyLabels() map[string]string {
	res := make(map[string]string, len(s.Labels))
	for k, v := range s.Labels {
		res[k] = v
	}
	return res
}

// Window is the half-open index range [Start, End) of a Series.
type Window struct {
	Start int
	End   int
}

func FullWindow(s Series) Window {
	return Window{Start: 0, End: s.Len()}
}

func (w Window) Len() int {
	return w.End - w.Start
}

func (w Window) IsZero() bool {
	return w.Start == 0 && w.End == 0
}

// Valid reports whether w lies inside a series of n points and spans at least 2 of them.
func (w Window) Valid(n int) bool {
	return w.Start >= 0 && w.End <= n && w.End-w.Start >= 2
}

func (w Window) String() string {
	return fmt.Sprintf("[%d, %d)", w.Start, w.End)
}
