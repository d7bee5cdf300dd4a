package sampler

import (
	"github.com/pkg/errors"

	"github.com/CraigKelly/housegibbs/model"
	"github.com/CraigKelly/housegibbs/rand"
)

// Request is one inference problem: estimate the posterior of Query given
// Evidence, using Updates variable updates and discarding the first BurnIn.
type Request struct {
	Query    string
	Evidence map[string]string
	Updates  int64
	BurnIn   int64
}

// Prepare applies the request's evidence to a clone of base and returns a
// chain ready to Run. base is never modified.
func Prepare(gen *rand.Generator, base *model.Model, req Request) (*Chain, error) {
	if base == nil {
		return nil, errors.New("No model supplied")
	}

	if _, clash := req.Evidence[req.Query]; clash {
		return nil, errors.Wrapf(model.ErrConfiguration, "Query %s can not also be evidence", req.Query)
	}

	mod := base.Clone()
	if err := mod.ApplyEvidence(req.Evidence); err != nil {
		return nil, errors.Wrap(err, "Invalid evidence")
	}

	samp, err := NewGibbsSimple(gen, mod)
	if err != nil {
		return nil, err
	}

	return NewChain(samp, req.Query, req.Updates, req.BurnIn)
}

// Infer runs a full chain for the request and returns the posterior
// estimate of the query variable along with the completed chain.
func Infer(gen *rand.Generator, base *model.Model, req Request) (*model.Variable, *Chain, error) {
	ch, err := Prepare(gen, base, req)
	if err != nil {
		return nil, nil, err
	}

	if err := ch.Run(); err != nil {
		return nil, ch, err
	}

	post, err := ch.Posterior()
	if err != nil {
		return nil, ch, err
	}
	return post, ch, nil
}
