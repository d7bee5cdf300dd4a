package model

import (
	"math"

	"github.com/pkg/errors"
)

// Variable represents a single node in the network, a random variable, or a
// marginal distribution over that node's domain.
type Variable struct {
	ID       int                // A numeric ID for tracking a variable (index into Model.Vars)
	Name     string             // Variable name (location, price, ...)
	Card     int                // Cardinality - values are 0 to Card-1
	Domain   []string           // State names: Domain[i] is the name of value i
	FixedVal int                // Current fixed value (fixed by evidence): -1 is no evidence, else 0 to Card-1
	Marginal []float64          // Current best estimate for marginal distribution: len should equal Card
	State    map[string]float64 // State/stats a sampler can track - mainly for JSON tracking
}

// NewVariable is our standard way to create a variable from an index, a name,
// and an ordered domain. The marginal will be set to uniform.
func NewVariable(index int, name string, domain []string) (*Variable, error) {
	if index < 0 {
		return nil, errors.Errorf("Invalid index %d for variable %s", index, name)
	}
	if len(domain) < 1 {
		return nil, errors.Errorf("Variable %s needs at least one state", name)
	}

	v := &Variable{
		ID:       index,
		Name:     name,
		Card:     len(domain),
		Domain:   make([]string, len(domain)),
		FixedVal: -1,
		Marginal: make([]float64, len(domain)),
		State:    make(map[string]float64),
	}
	copy(v.Domain, domain)

	err := v.NormMarginal()
	if err != nil {
		return nil, errors.Wrapf(err, "Could not init norm marginal for var %s", name)
	}

	return v, nil
}

// Clone returns a deep copy of the variable, including the state dict.
func (v *Variable) Clone() *Variable {
	cp := &Variable{
		ID:       v.ID,
		Name:     v.Name,
		Card:     v.Card,
		Domain:   make([]string, len(v.Domain)),
		FixedVal: v.FixedVal,
		Marginal: make([]float64, len(v.Marginal)),
		State:    make(map[string]float64),
	}

	for ky, val := range v.State {
		cp.State[ky] = val
	}

	copy(cp.Domain, v.Domain)
	copy(cp.Marginal, v.Marginal)

	return cp
}

// Check returns an error if any problem is found
func (v *Variable) Check() error {
	if v.Card != len(v.Marginal) {
		return errors.Errorf("Variable %s Card %d != len(M) %d", v.Name, v.Card, len(v.Marginal))
	}
	if v.Card != len(v.Domain) {
		return errors.Errorf("Variable %s Card %d != len(Domain) %d", v.Name, v.Card, len(v.Domain))
	}

	seen := make(map[string]bool, len(v.Domain))
	for _, s := range v.Domain {
		if seen[s] {
			return errors.Errorf("Variable %s has duplicate state %s", v.Name, s)
		}
		seen[s] = true
	}

	// Note that this means you can never have a fixed value for a var with card 0.
	if v.FixedVal != -1 {
		if v.FixedVal < 0 || v.FixedVal >= v.Card {
			return errors.Errorf("Variable %s has fixed val %d but must be -1 or match card %d", v.Name, v.FixedVal, v.Card)
		}
	}

	// marginal should be a probability dist
	if v.Card > 0 {
		var sum float64
		for _, p := range v.Marginal {
			sum += p
		}

		const EPS = 1e-8
		if math.Abs(sum-1.0) >= EPS {
			return errors.Errorf("Variable %s has marginal dist with sum=%f", v.Name, sum)
		}
	}

	return nil
}

// NormMarginal insures/scales the current Marginal vector to sum to 1
func (v *Variable) NormMarginal() error {
	if v.Card != len(v.Marginal) {
		return errors.Errorf("Var %s - can not norm: Card=%d, Len(m)=%d", v.Name, v.Card, len(v.Marginal))
	}

	if v.Card < 1 {
		return nil
	}

	var sum float64
	for _, p := range v.Marginal {
		sum += p
	}

	const EPS = 1e-8

	if math.Abs(sum-1.0) < EPS {
		return nil
	}

	// If sum is 0, we just assume uniformity
	if math.Abs(sum) < EPS {
		p := 1.0 / float64(v.Card)
		for i := range v.Marginal {
			v.Marginal[i] = p
		}
		return nil
	}

	for i, p := range v.Marginal {
		v.Marginal[i] = p / sum
	}

	return nil
}

// ValueIndex returns the value index for the named state, or an
// ErrConfiguration if the state is not in the variable's domain.
func (v *Variable) ValueIndex(state string) (int, error) {
	for i, s := range v.Domain {
		if s == state {
			return i, nil
		}
	}
	return -1, errors.Wrapf(ErrConfiguration, "%s is not a state of %s %v", state, v.Name, v.Domain)
}

// IsFixed is true when evidence has clamped the variable
func (v *Variable) IsFixed() bool {
	return v.FixedVal >= 0
}

// MarginalMap returns the marginal keyed by state name
func (v *Variable) MarginalMap() map[string]float64 {
	m := make(map[string]float64, v.Card)
	for i, s := range v.Domain {
		m[s] = v.Marginal[i]
	}
	return m
}
