package model

import (
	"github.com/pkg/errors"
)

// Solution to a marginal estimation problem specified on a Model. It also
// provides evaluation metrics to evaluate sampled marginals against it.
type Solution struct {
	Vars []*Variable // Variables with their marginals
}

// NewExactSolution computes the exact marginal of every variable under the
// model's current evidence by summing the joint over every assignment of
// the free variables. That is only reasonable because the network is tiny.
func NewExactSolution(m *Model) (*Solution, error) {
	if err := m.Check(); err != nil {
		return nil, errors.Wrap(err, "Can not solve an invalid model")
	}

	sol := &Solution{Vars: make([]*Variable, len(m.Vars))}
	for i, v := range m.Vars {
		cp := v.Clone()
		for j := range cp.Marginal {
			cp.Marginal[j] = 0
		}
		sol.Vars[i] = cp
	}

	vi, err := NewVariableIter(m.Vars)
	if err != nil {
		return nil, err
	}

	assign := make([]int, len(m.Vars))
	total := 0.0
	for {
		if err := vi.Val(assign); err != nil {
			return nil, err
		}

		p, err := m.JointProb(assign)
		if err != nil {
			return nil, errors.Wrap(err, "Joint evaluation failed")
		}
		total += p
		for i, val := range assign {
			sol.Vars[i].Marginal[val] += p
		}

		if !vi.Next() {
			break
		}
	}

	if total <= 0 {
		return nil, errors.Wrapf(ErrArithmetic, "Evidence %v has zero probability", m.Evidence())
	}

	for _, v := range sol.Vars {
		for j := range v.Marginal {
			v.Marginal[j] /= total
		}
	}

	if err := sol.Check(m); err != nil {
		return nil, errors.Wrapf(ErrArithmetic, "Exact solution failed check: %v", err)
	}

	return sol, nil
}

// Check insures that the solution is as correct as can be checked given a model
func (s *Solution) Check(m *Model) error {
	for _, v := range s.Vars {
		e := v.Check()
		if e != nil {
			return errors.Wrapf(e, "Solution has an invalid Variable %s", v.Name)
		}
	}

	if len(s.Vars) != len(m.Vars) {
		return errors.Errorf("Solution var count %d != model var count %d", len(s.Vars), len(m.Vars))
	}

	return nil
}

// Error is a helper method to return the entire error suite we offer for the
// given variables against the solution
func (s *Solution) Error(vars []*Variable) (*ErrorSuite, error) {
	return NewErrorSuite(s.Vars, vars)
}

// Var returns the solved variable with the given name
func (s *Solution) Var(name string) (*Variable, error) {
	for _, v := range s.Vars {
		if v.Name == name {
			return v, nil
		}
	}
	return nil, errors.Wrapf(ErrConfiguration, "Unknown variable %s", name)
}
