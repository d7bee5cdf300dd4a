package sampler

import (
	"github.com/pkg/errors"

	"github.com/CraigKelly/housegibbs/model"
)

// Trace is the per-variable record of every value a chain drew, one entry
// per sweep. Only free (non-evidence) variables are tracked.
type Trace struct {
	samples [][]int // indexed by variable ID: nil for untracked
}

// NewTrace creates an empty trace for the variables in free. capacity is a
// hint for the number of sweeps.
func NewTrace(varCount int, free []int, capacity int) *Trace {
	t := &Trace{samples: make([][]int, varCount)}
	for _, id := range free {
		t.samples[id] = make([]int, 0, capacity)
	}
	return t
}

// Tracked is true for variables this trace records
func (t *Trace) Tracked(varIdx int) bool {
	return varIdx >= 0 && varIdx < len(t.samples) && t.samples[varIdx] != nil
}

// Add appends a sampled value for the variable
func (t *Trace) Add(varIdx int, value int) error {
	if !t.Tracked(varIdx) {
		return errors.Errorf("Variable %d is not tracked", varIdx)
	}
	t.samples[varIdx] = append(t.samples[varIdx], value)
	return nil
}

// Len is the number of samples recorded for the variable
func (t *Trace) Len(varIdx int) int {
	if !t.Tracked(varIdx) {
		return 0
	}
	return len(t.samples[varIdx])
}

// Values returns the variable's samples in sweep order. The slice is shared
// with the trace and must not be modified.
func (t *Trace) Values(varIdx int) []int {
	if !t.Tracked(varIdx) {
		return nil
	}
	return t.samples[varIdx]
}

// Retained returns the samples after the first burnSweeps. An empty result
// is a configuration error: there is nothing left to estimate from.
func (t *Trace) Retained(varIdx int, burnSweeps int) ([]int, error) {
	if !t.Tracked(varIdx) {
		return nil, errors.Wrapf(model.ErrConfiguration, "Variable %d has no samples (is it evidence?)", varIdx)
	}
	if burnSweeps < 0 {
		return nil, errors.Wrapf(model.ErrConfiguration, "Negative burn-in %d", burnSweeps)
	}

	vals := t.samples[varIdx]
	if burnSweeps >= len(vals) {
		return nil, errors.Wrapf(
			model.ErrConfiguration,
			"Burn-in of %d sweeps leaves nothing of %d samples",
			burnSweeps, len(vals),
		)
	}
	return vals[burnSweeps:], nil
}
