package sampler

import (
	"math"

	"github.com/pkg/errors"

	"github.com/CraigKelly/housegibbs/model"
	"github.com/CraigKelly/housegibbs/rand"
)

// GibbsSimple is our baseline Gibbs sampler. Each variable's full
// conditional is the product of the CPTs in its factor list: its own CPT
// and the CPT of each child. Every other factor in the joint is constant
// with respect to the variable and cancels when we normalize.
type GibbsSimple struct {
	gen         *rand.Generator
	pgm         *model.Model
	varFuncs    [][]*model.Function // factor list per variable
	varSelector *UniformSampler
	trial       []int // scratch assignment for candidate values
	buf         []int // scratch for function evaluation
}

// NewGibbsSimple creates a new sampler over m. The factor lists are built
// once here; the model's structure must not change afterwards.
func NewGibbsSimple(gen *rand.Generator, m *model.Model) (*GibbsSimple, error) {
	if m == nil {
		return nil, errors.New("No model supplied")
	}

	err := m.Check()
	if err != nil {
		return nil, errors.Wrap(err, "Invalid model")
	}

	sel, err := NewUniformSampler(gen)
	if err != nil {
		return nil, err
	}

	maxScope := 0
	varFuncs := make([][]*model.Function, len(m.Vars))
	for i := range m.Vars {
		varFuncs[i] = m.VarFuncs(i)
		if len(varFuncs[i]) < 1 {
			return nil, errors.Errorf("Variable %s is in no function", m.Vars[i].Name)
		}
		for _, f := range varFuncs[i] {
			if len(f.Vars) > maxScope {
				maxScope = len(f.Vars)
			}
		}
	}

	s := &GibbsSimple{
		gen:         gen,
		pgm:         m,
		varFuncs:    varFuncs,
		varSelector: sel,
		trial:       make([]int, len(m.Vars)),
		buf:         make([]int, maxScope),
	}
	return s, nil
}

// Model implements FullSampler
func (g *GibbsSimple) Model() *model.Model {
	return g.pgm
}

// Init implements FullSampler: evidence variables get their fixed value and
// everything else is drawn uniformly.
func (g *GibbsSimple) Init(s []int) error {
	if len(s) != len(g.pgm.Vars) {
		return errors.Errorf("Samples size %d is wrong", len(s))
	}

	for i, v := range g.pgm.Vars {
		if v.IsFixed() {
			s[i] = v.FixedVal
			continue
		}

		val, err := g.varSelector.ValSample(v.Card)
		if err != nil {
			return errors.Wrapf(err, "Could not init var %s", v.Name)
		}
		s[i] = val
	}

	return nil
}

// SweepOrder implements FullSampler
func (g *GibbsSimple) SweepOrder(ids []int) {
	g.varSelector.Shuffle(ids)
}

// Conditional returns the full conditional of varIdx given the rest of the
// assignment s. s is not modified.
func (g *GibbsSimple) Conditional(varIdx int, s []int) ([]float64, error) {
	if varIdx < 0 || varIdx >= len(g.pgm.Vars) {
		return nil, errors.Errorf("Invalid variable index %d", varIdx)
	}
	if len(s) != len(g.pgm.Vars) {
		return nil, errors.Errorf("Samples size %d is wrong", len(s))
	}

	v := g.pgm.Vars[varIdx]
	copy(g.trial, s)

	dist := make([]float64, v.Card)
	sum := 0.0
	for val := 0; val < v.Card; val++ {
		g.trial[varIdx] = val

		p := 1.0
		for _, f := range g.varFuncs[varIdx] {
			fp, err := f.EvalAssignment(g.trial, g.buf)
			if err != nil {
				return nil, errors.Wrapf(model.ErrConfiguration, "Factor %s for %s: %v", f.Name, v.Name, err)
			}
			p *= fp
		}

		dist[val] = p
		sum += p
	}

	if sum <= 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		return nil, errors.Wrapf(model.ErrArithmetic, "Conditional for %s sums to %v", v.Name, sum)
	}

	for i := range dist {
		dist[i] /= sum
	}

	return dist, nil
}

// SampleVar implements FullSampler. Fixed variables are an error.
func (g *GibbsSimple) SampleVar(varIdx int, s []int) (int, error) {
	if varIdx < 0 || varIdx >= len(g.pgm.Vars) {
		return -1, errors.Errorf("Invalid variable index %d", varIdx)
	}

	v := g.pgm.Vars[varIdx]
	if v.IsFixed() {
		return -1, errors.Errorf("Can not sample fixed variable %v:%v", v.ID, v.Name)
	}

	dist, err := g.Conditional(varIdx, s)
	if err != nil {
		return -1, err
	}

	val := g.draw(dist)
	s[varIdx] = val
	return val, nil
}

// draw picks an index from a normalized distribution. Zero weight entries
// are never chosen.
func (g *GibbsSimple) draw(dist []float64) int {
	u := g.gen.Float64()

	cum := 0.0
	last := -1
	for i, p := range dist {
		if p <= 0 {
			continue
		}
		last = i
		cum += p
		if u < cum {
			return i
		}
	}

	// Rounding left u just past the final cumulative sum
	return last
}
