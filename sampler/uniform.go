package sampler

import (
	"github.com/pkg/errors"

	"github.com/CraigKelly/housegibbs/rand"
)

// UniformSampler makes the uniform choices a chain needs: initial values
// and sweep order.
type UniformSampler struct {
	gen *rand.Generator
}

// NewUniformSampler creates a new UniformSampler
func NewUniformSampler(gen *rand.Generator) (*UniformSampler, error) {
	if gen == nil {
		return nil, errors.New("No PRNG supplied")
	}
	return &UniformSampler{gen: gen}, nil
}

// ValSample returns a uniform value index in [0, card)
func (u *UniformSampler) ValSample(card int) (int, error) {
	if card < 1 {
		return -1, errors.Errorf("Invalid card %d for value sample", card)
	}
	return u.gen.Intn(card), nil
}

// Shuffle permutes ids in place
func (u *UniformSampler) Shuffle(ids []int) {
	u.gen.Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})
}
