package growthfit

import "github.com/uyouii/growthfit/model"

// LogTransform returns log_base(y) for the points with y > 0. Other points are dropped.
func LogTransform(s model.Series, base LogBase) model.Series {
	points := make([]model.Point, 0, len(s.Points))
	for _, p := range s.Points {
		if p.Y > 0 {
			points = append(points, model.Point{X: p.X, Y: base.Log(p.Y)})
		}
	}
	return model.Series{Labels: s.CopyLabels(), Points: points}
}

// SubtractBaseline shifts the series so that its first sample is zero.
func SubtractBaseline(s model.Series) model.Series {
	points := make([]model.Point, len(s.Points))
	if len(s.Points) == 0 {
		return model.Series{Labels: s.CopyLabels(), Points: points}
	}
	baseline := s.Points[0].Y
	for i, p := range s.Points {
		points[i] = model.Point{X: p.X, Y: p.Y - baseline}
	}
	return model.Series{Labels: s.CopyLabels(), Points: points}
}

func CountPositive(points []model.Point) int {
	res := 0
	for _, p := range points {
		if p.Y > 0 {
			res++
		}
	}
	return res
}

// Interpolate returns the x at which the line through p0 and p1 reaches y.
func Interpolate(p0, p1 model.Point, y float64) float64 {
	return p0.X + (y-p0.Y)*(p1.X-p0.X)/(p1.Y-p0.Y)
}
