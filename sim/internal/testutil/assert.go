// Package testutil provides shared test assertion helpers for the
// transmission simulator's packages.
package testutil

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/stat/distuv"
)

// AssertFloat64Equal checks that two float64 values are equal within a relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}

// BernoulliChiSquare returns the Pearson chi-square statistic for observing
// successes out of trials against success probability p.
func BernoulliChiSquare(successes, trials int, p float64) float64 {
	n := float64(trials)
	expSucc := n * p
	expFail := n * (1 - p)
	obsSucc := float64(successes)
	obsFail := n - obsSucc
	return (obsSucc-expSucc)*(obsSucc-expSucc)/expSucc + (obsFail-expFail)*(obsFail-expFail)/expFail
}

// AssertBernoulliFrequency fails when the observed success count is
// inconsistent with probability p at significance alpha (1 degree of freedom).
func AssertBernoulliFrequency(t *testing.T, name string, successes, trials int, p, alpha float64) {
	t.Helper()
	stat := BernoulliChiSquare(successes, trials, p)
	limit := distuv.ChiSquared{K: 1}.Quantile(1 - alpha)
	if stat > limit {
		t.Errorf("%s: %d/%d successes (%.4f) inconsistent with p=%.4f: chi-square %.3f > %.3f",
			name, successes, trials, float64(successes)/float64(trials), p, stat, limit)
	}
}
