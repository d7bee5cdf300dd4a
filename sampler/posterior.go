package sampler

import (
	"github.com/CraigKelly/housegibbs/model"
)

// EstimatePosterior returns a copy of v whose Marginal is the normalized
// frequency of each value in v's trace after dropping burnSweeps entries.
// The sample and burn-in counts are kept in State.
func EstimatePosterior(tr *Trace, v *model.Variable, burnSweeps int) (*model.Variable, error) {
	kept, err := tr.Retained(v.ID, burnSweeps)
	if err != nil {
		return nil, err
	}

	est := v.Clone()
	for i := range est.Marginal {
		est.Marginal[i] = 0
	}

	for _, val := range kept {
		est.Marginal[val]++
	}

	n := float64(len(kept))
	for i := range est.Marginal {
		est.Marginal[i] /= n
	}

	est.State["samples"] = n
	est.State["burn-in"] = float64(burnSweeps)

	return est, nil
}
