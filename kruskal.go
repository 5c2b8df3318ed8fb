package main

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/Sagorika28/NYC-311-Service-Request-Exploration/domain/models"
)

// MinGroupSize is the smallest per-group sample the hypothesis test accepts.
// Below it the rank statistic is too unstable to mean anything.
const MinGroupSize = 5

var ErrInsufficientSample = errors.New("kruskal-wallis: need at least 2 groups with enough observations")

// KruskalWallis runs the rank-based H-test on the given groups, testing the
// null hypothesis that all groups share one distribution. Ties get average
// ranks and the H statistic carries the standard tie correction; the p-value
// comes from the chi-squared survival function with groups-1 degrees of
// freedom.
func KruskalWallis(groups map[string][]float64) (models.HypothesisTestResult, error) {
	if len(groups) < 2 {
		return models.HypothesisTestResult{}, fmt.Errorf("%w: got %d groups", ErrInsufficientSample, len(groups))
	}

	var pooled []float64
	var sizes []int
	for name, values := range groups {
		if len(values) < MinGroupSize {
			return models.HypothesisTestResult{}, fmt.Errorf("%w: group %q has %d observations, need %d",
				ErrInsufficientSample, name, len(values), MinGroupSize)
		}
		pooled = append(pooled, values...)
		sizes = append(sizes, len(values))
	}

	n := float64(len(pooled))
	ranks := rankAverage(pooled)

	// Sum of ranks per group; pooled keeps group blocks contiguous.
	h := 0.0
	offset := 0
	for _, size := range sizes {
		sum := 0.0
		for i := offset; i < offset+size; i++ {
			sum += ranks[i]
		}
		h += sum * sum / float64(size)
		offset += size
	}
	h = 12/(n*(n+1))*h - 3*(n+1)

	// Tie correction: 1 - sum(t^3 - t) / (n^3 - n).
	tieCounts := map[float64]int{}
	for _, v := range pooled {
		tieCounts[v]++
	}
	tieSum := 0.0
	for _, t := range tieCounts {
		tf := float64(t)
		tieSum += tf*tf*tf - tf
	}
	correction := 1 - tieSum/(n*n*n-n)

	df := len(groups) - 1
	result := models.HypothesisTestResult{DF: df}
	if correction == 0 {
		// every pooled observation identical; no evidence of difference
		result.PValue = 1
		return result, nil
	}
	result.H = h / correction
	if result.H < 0 {
		result.H = 0 // rounding noise on near-identical groups
	}
	chi2 := distuv.ChiSquared{K: float64(df)}
	result.PValue = chi2.Survival(result.H)
	return result, nil
}

// BoroughTest is the headline test: do response-time distributions differ
// across the five boroughs?
func BoroughTest(rows []models.ServiceRequest) (models.HypothesisTestResult, error) {
	groups := groupResponseTimes(rows, func(r models.ServiceRequest) string { return r.Borough })
	return KruskalWallis(groups)
}
