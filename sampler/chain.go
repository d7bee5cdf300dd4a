package sampler

import (
	"github.com/pkg/errors"

	"github.com/CraigKelly/housegibbs/buffer"
	"github.com/CraigKelly/housegibbs/model"
)

// DefaultConvergenceWindow is the number of recent samples per variable kept
// for the split-half convergence check.
const DefaultConvergenceWindow = 1000

type chainState int

const (
	chainReady chainState = iota
	chainRunning
	chainComplete
	chainFailed
)

// Chain provides functionality around a Gibbs sampler: validation, the
// initial state, the sweeps, and the sample trace.
type Chain struct {
	Target            *model.Model
	Sampler           FullSampler
	Query             *model.Variable
	FreeVars          []int // IDs of the non-evidence variables, model order
	Updates           int64 // Requested variable updates
	BurnIn            int64 // Requested updates to discard
	Sweeps            int   // Updates / len(FreeVars)
	BurnSweeps        int   // BurnIn / len(FreeVars)
	ConvergenceWindow int
	ChainHistory      []*buffer.CircularInt
	Trace             *Trace
	TotalSampleCount  int64
	LastSample        []int

	// Progress, when set, is called after every ReportEvery sweeps
	Progress    func(*Chain)
	ReportEvery int

	sweep int
	state chainState
}

// NewChain validates the run and returns a chain with its initial
// assignment drawn. Any problem with the query, the evidence, or the sample
// counts is an ErrConfiguration and nothing is sampled.
func NewChain(samp FullSampler, query string, updates int64, burnIn int64) (*Chain, error) {
	if samp == nil {
		return nil, errors.New("No sampler supplied")
	}

	mod := samp.Model()
	if mod == nil {
		return nil, errors.New("Sampler has no model")
	}
	if err := mod.Check(); err != nil {
		return nil, errors.Wrap(err, "Invalid model")
	}

	qv, err := mod.VarByName(query)
	if err != nil {
		return nil, errors.Wrap(err, "Invalid query")
	}
	if qv.IsFixed() {
		return nil, errors.Wrapf(model.ErrConfiguration, "Query %s can not also be evidence", query)
	}

	free := mod.FreeVars()
	if len(free) < 1 {
		return nil, errors.Wrapf(model.ErrConfiguration, "All variables are evidence")
	}

	if updates < 1 {
		return nil, errors.Wrapf(model.ErrConfiguration, "Update count must be positive, got %d", updates)
	}
	if burnIn < 0 || burnIn > updates {
		return nil, errors.Wrapf(model.ErrConfiguration, "Burn-in %d must be in [0, %d]", burnIn, updates)
	}

	n := int64(len(free))
	sweeps := int(updates / n)
	burnSweeps := int(burnIn / n)
	if sweeps-burnSweeps < 1 {
		return nil, errors.Wrapf(
			model.ErrConfiguration,
			"%d updates over %d free vars is %d sweeps, and burn-in drops %d of them",
			updates, n, sweeps, burnSweeps,
		)
	}

	ch := &Chain{
		Target:            mod,
		Sampler:           samp,
		Query:             qv,
		FreeVars:          free,
		Updates:           updates,
		BurnIn:            burnIn,
		Sweeps:            sweeps,
		BurnSweeps:        burnSweeps,
		ConvergenceWindow: DefaultConvergenceWindow,
		Trace:             NewTrace(len(mod.Vars), free, sweeps),
		LastSample:        make([]int, len(mod.Vars)),
	}

	if err := samp.Init(ch.LastSample); err != nil {
		return nil, errors.Wrap(err, "Could not draw initial state")
	}

	// Marginals become post burn-in counts for the free vars
	for _, id := range free {
		v := mod.Vars[id]
		for i := range v.Marginal {
			v.Marginal[i] = 0
		}
	}

	return ch, nil
}

// Run performs every sweep. Each sweep visits the free variables once in a
// fresh random order, and each update sees the updates before it.
func (c *Chain) Run() error {
	if c.state != chainReady {
		return errors.New("Chain can only be run once")
	}
	c.state = chainRunning

	c.ChainHistory = make([]*buffer.CircularInt, len(c.Target.Vars))
	for _, id := range c.FreeVars {
		c.ChainHistory[id] = buffer.NewCircularInt(c.ConvergenceWindow)
	}

	order := make([]int, len(c.FreeVars))
	for c.sweep < c.Sweeps {
		copy(order, c.FreeVars)
		c.Sampler.SweepOrder(order)

		counted := c.sweep >= c.BurnSweeps
		for _, varIdx := range order {
			if err := c.oneSample(varIdx, counted); err != nil {
				c.state = chainFailed
				return errors.Wrapf(err, "Failure during sweep %d", c.sweep)
			}
		}
		c.sweep++

		if c.Progress != nil && c.ReportEvery > 0 && c.sweep%c.ReportEvery == 0 {
			c.Progress(c)
		}
	}

	c.state = chainComplete
	return nil
}

// oneSample resamples a single variable and records it
func (c *Chain) oneSample(varIdx int, counted bool) error {
	value, err := c.Sampler.SampleVar(varIdx, c.LastSample)
	if err != nil {
		return errors.Wrap(err, "Error taking sample")
	}

	if err := c.Trace.Add(varIdx, value); err != nil {
		return err
	}
	c.ChainHistory[varIdx].Add(value)
	c.TotalSampleCount++

	if counted {
		c.Target.Vars[varIdx].Marginal[value] += 1.0
	}

	return nil
}

// Sweep is the number of completed sweeps
func (c *Chain) Sweep() int {
	return c.sweep
}

// Complete is true once Run has finished every sweep
func (c *Chain) Complete() bool {
	return c.state == chainComplete
}

// Posterior estimates the query variable's marginal from the trace
func (c *Chain) Posterior() (*model.Variable, error) {
	if !c.Complete() {
		return nil, errors.New("Chain has not completed")
	}
	return EstimatePosterior(c.Trace, c.Query, c.BurnSweeps)
}

// Marginals returns a normalized copy of every model variable. Free vars
// carry their post burn-in sample frequencies; evidence vars are point
// masses.
func (c *Chain) Marginals() []*model.Variable {
	vars := make([]*model.Variable, len(c.Target.Vars))
	for i, v := range c.Target.Vars {
		cp := v.Clone()
		if cp.IsFixed() {
			for j := range cp.Marginal {
				cp.Marginal[j] = 0
			}
			cp.Marginal[cp.FixedVal] = 1
		}
		_ = cp.NormMarginal()
		vars[i] = cp
	}
	return vars
}

// Convergence compares the older and newer half of each free variable's
// recent history with d (Hellinger when nil). Variables whose window has not
// filled yet are left out.
func (c *Chain) Convergence(d Measure) map[int]float64 {
	if d == nil {
		d = model.HellingerDiff
	}

	conv := make(map[int]float64)
	for _, id := range c.FreeVars {
		if id >= len(c.ChainHistory) || c.ChainHistory[id] == nil {
			continue
		}

		first, second, ok := c.ChainHistory[id].HalfCounts(c.Target.Vars[id].Card)
		if !ok {
			continue
		}
		conv[id] = d(normed(first), normed(second))
	}
	return conv
}

func normed(counts []float64) []float64 {
	tot := 0.0
	for _, x := range counts {
		tot += x
	}
	p := make([]float64, len(counts))
	if tot <= 0 {
		return p
	}
	for i, x := range counts {
		p[i] = x / tot
	}
	return p
}
