package sampler

import (
	"github.com/CraigKelly/housegibbs/model"
)

// A FullSampler resamples single variables of a model in place. All
// randomness (initial state, sweep order, draws) comes from one generator.
type FullSampler interface {
	// Model is the network being sampled, evidence included
	Model() *model.Model
	// Init fills s with a complete initial assignment
	Init(s []int) error
	// SweepOrder permutes the variable IDs in ids for one sweep
	SweepOrder(ids []int)
	// SampleVar draws a new value for varIdx given the rest of s, stores it
	// in s and returns it
	SampleVar(varIdx int, s []int) (int, error)
}

// Measure is a distance between two normalized distributions
type Measure func(p, q []float64) float64
