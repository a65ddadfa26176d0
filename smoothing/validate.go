package smoothing

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/uyouii/growthfit/common"
	"github.com/uyouii/growthfit/model"
	"github.com/uyouii/growthfit/utils"
	"go.uber.org/zap"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
)

type CVResult struct {
	Candidates []int
	// Errors[i] is the summed validation MSE of Candidates[i], +Inf when it could not be fitted.
	Errors []float64
	Best   int
}

// KnotCandidates lists the knot counts worth validating for n points.
func KnotCandidates(n int) []int {
	train := int(float64(n) * getTestFraction())
	top := utils.IntMin(MaxKnots, train/pointsPerKnot)
	res := []int{}
	for k := MinKnots; k <= top; k++ {
		res = append(res, k)
	}
	if len(res) == 0 {
		res = append(res, MinKnots)
	}
	return res
}

// CrossValidate scores each knot count by repeated random half splits: fit on one half,
// measure the mean squared error on the other. Every candidate sees the same splits.
func CrossValidate(ctx context.Context, xs, ys []float64, candidates []int, seed uint64) (*CVResult, error) {
	logger := utils.GetLogger(ctx)

	if len(xs) != len(ys) {
		return nil, fmt.Errorf("%w: x/y length mismatch %d != %d", common.ErrorInvalidValue, len(xs), len(ys))
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no knot candidates", common.ErrorInvalidValue)
	}
	n := len(xs)
	train := int(float64(n) * getTestFraction())
	if train < MinKnots || n-train < 1 {
		return nil, fmt.Errorf("%w: %d points to split", common.ErrorInsufficientData, n)
	}

	res := &CVResult{Candidates: candidates, Errors: make([]float64, len(candidates))}
	for c, knots := range candidates {
		rng := rand.New(rand.NewSource(seed))
		total := 0.0
		for round := 0; round < getCVRounds(); round++ {
			perm := rng.Perm(n)
			trainIdx, validIdx := perm[:train], perm[train:]
			sort.Ints(trainIdx)
			sort.Ints(validIdx)

			sp, err := Fit(pick(xs, trainIdx), pick(ys, trainIdx), knots)
			if err != nil {
				logger.Debug("cv round skipped", zap.Int("knots", knots), zap.Int("round", round), zap.Error(err))
				total = math.Inf(1)
				break
			}
			validY := pick(ys, validIdx)
			d := floats.Distance(sp.PredictAll(pick(xs, validIdx)), validY, 2)
			total += d * d / float64(len(validY))
		}
		res.Errors[c] = total
	}

	best := floats.MinIdx(res.Errors)
	if math.IsInf(res.Errors[best], 1) {
		return nil, fmt.Errorf("%w: no candidate could be fitted", common.ErrorDegenerateFit)
	}
	res.Best = candidates[best]

	logger.Info("spline cross-validation done", zap.Int("points", n),
		zap.Ints("candidates", candidates), zap.Int("best", res.Best))
	return res, nil
}

// SmoothSeries replaces the y values of s by a regression spline. With knots <= 0 the knot
// count is chosen by CrossValidate.
func SmoothSeries(ctx context.Context, s model.Series, knots int) (model.Series, *Spline, error) {
	xs, ys := s.Xs(), s.Ys()
	if knots <= 0 {
		cv, err := CrossValidate(ctx, xs, ys, KnotCandidates(len(xs)), DefaultSeed)
		if err != nil {
			return model.Series{}, nil, err
		}
		knots = cv.Best
	}

	sp, err := Fit(xs, ys, knots)
	if err != nil {
		return model.Series{}, nil, err
	}
	smoothed, err := model.NewSeries(xs, sp.PredictAll(xs), s.CopyLabels())
	if err != nil {
		return model.Series{}, nil, err
	}
	return smoothed, sp, nil
}

func pick(values []float64, idx []int) []float64 {
	res := make([]float64, len(idx))
	for i, j := range idx {
		res[i] = values[j]
	}
	return res
}
