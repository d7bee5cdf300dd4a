package model

import (
	"math"

	"github.com/pkg/errors"
)

// ErrorSuite represents all the loss/error functions we use to judge a
// marginal estimate. Errors beginning with Mean are the mean across all the
// scored variables while Max is the maximum value for all the variables. So
// MeanMaxAbsError is the MEAN of the Maximum Absolute Error for each of the
// marginal variables.
type ErrorSuite struct {
	MeanMeanAbsError float64
	MeanMaxAbsError  float64
	MeanHellinger    float64
	MeanJSDiverge    float64

	MaxMeanAbsError float64
	MaxMaxAbsError  float64
	MaxHellinger    float64
	MaxJSDiverge    float64
}

// NewErrorSuite returns an ErrorSuite with all calculated error functions.
// Variables fixed by evidence in either list are not scored.
func NewErrorSuite(vars1 []*Variable, vars2 []*Variable) (*ErrorSuite, error) {
	if len(vars1) != len(vars2) {
		return nil, errors.Errorf("Variable count mismatch %d != %d", len(vars1), len(vars2))
	}

	es := ErrorSuite{}
	varCount := 0

	for i, v1 := range vars1 {
		v2 := vars2[i]
		if v1.Card != v2.Card {
			return nil, errors.Errorf("Variable card mismatch %d != %d", v1.Card, v2.Card)
		}
		if v1.IsFixed() || v2.IsFixed() {
			continue
		}
		varCount++

		p, q := normed(v1.Marginal), normed(v2.Marginal)

		d := MeanAbsDiff(p, q)
		es.MeanMeanAbsError += d
		es.MaxMeanAbsError = math.Max(d, es.MaxMeanAbsError)

		d = MaxAbsDiff(p, q)
		es.MeanMaxAbsError += d
		es.MaxMaxAbsError = math.Max(d, es.MaxMaxAbsError)

		d = HellingerDiff(p, q)
		es.MeanHellinger += d
		es.MaxHellinger = math.Max(d, es.MaxHellinger)

		d = JSDivergence(p, q)
		es.MeanJSDiverge += d
		es.MaxJSDiverge = math.Max(d, es.MaxJSDiverge)
	}

	if varCount < 1 {
		return nil, errors.Errorf("No un-fixed vars to score")
	}

	fc := float64(varCount)
	es.MeanMeanAbsError /= fc
	es.MeanMaxAbsError /= fc
	es.MeanHellinger /= fc
	es.MeanJSDiverge /= fc

	return &es, nil
}

// normed returns a normalized copy of the (positive) weights in p
func normed(p []float64) []float64 {
	const eps = 1e-12

	tot := 0.0
	for _, x := range p {
		tot += x
	}
	if tot < eps {
		tot = eps
	}

	n := make([]float64, len(p))
	for i, x := range p {
		n[i] = x / tot
	}
	return n
}

// MaxAbsDiff returns the maximum difference found between the two prob dists
func MaxAbsDiff(p, q []float64) float64 {
	maxErr := 0.0
	for i := range p {
		maxErr = math.Max(maxErr, math.Abs(p[i]-q[i]))
	}
	return maxErr
}

// MeanAbsDiff returns the mean of the differences found between the two prob dists
func MeanAbsDiff(p, q []float64) float64 {
	if len(p) < 1 {
		return 0
	}

	errSum := 0.0
	for i := range p {
		errSum += math.Abs(p[i] - q[i])
	}
	return errSum / float64(len(p))
}

// HellingerDiff returns the Hellinger distance between two normalized dists:
// sqrt(sum((sqrt(p) - sqrt(q))**2)) / sqrt(2)
func HellingerDiff(p, q []float64) float64 {
	errSum := 0.0
	for i := range p {
		d := math.Sqrt(p[i]) - math.Sqrt(q[i])
		errSum += d * d
	}
	return math.Sqrt(errSum) / math.Sqrt2
}

// klDivergence returns the Kullback–Leibler divergence, which is
// non-symmetric! This is strictly a subroutine for JS Divergence, so
// zero entries in p contribute nothing and q is never zero where p isn't.
// klDivergence(P, Q) <==> D_{KL}(P || Q)
func klDivergence(p, q []float64) float64 {
	diverge := 0.0
	for i, p1 := range p {
		if p1 > 0 {
			diverge += p1 * math.Log2(p1/q[i])
		}
	}
	return diverge
}

// JSDivergence returns the Jensen-Shannon divergence, which is a
// symmetric generalization of the KL divergence
func JSDivergence(p, q []float64) float64 {
	mid := make([]float64, len(p))
	for i := range p {
		mid[i] = (p[i] + q[i]) * 0.5
	}
	return 0.5 * (klDivergence(p, mid) + klDivergence(q, mid))
}
