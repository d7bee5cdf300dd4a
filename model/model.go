package model

import (
	"sort"

	"github.com/pkg/errors"
)

// Model type constant string
const (
	BAYES = "BAYES"
)

// ErrConfiguration marks a run that can never succeed with the given
// inputs: unknown variables, out-of-domain evidence, a query that is also
// evidence, or sample counts that leave nothing to estimate from.
var ErrConfiguration = errors.New("configuration error")

// ErrArithmetic marks a conditional whose un-normalized scores sum to zero,
// which means the CPTs and domains disagree.
var ErrArithmetic = errors.New("arithmetic inconsistency")

// Model represent a Bayesian network
type Model struct {
	Type  string      // PGM type - should match a constant
	Name  string      // Model name
	Vars  []*Variable // Variables (nodes) in the model
	Funcs []*Function `json:"-"` // One CPT per variable
}

// Clone returns a copy of the current model. Marginal state is copied as
// well and the functions are re-pointed at the cloned variables.
func (m *Model) Clone() *Model {
	cp := &Model{
		Type:  m.Type,
		Name:  m.Name,
		Vars:  make([]*Variable, len(m.Vars)),
		Funcs: make([]*Function, len(m.Funcs)),
	}

	for i, v := range m.Vars {
		cp.Vars[i] = v.Clone()
	}

	for i, f := range m.Funcs {
		nf := f.Clone()
		for j, v := range nf.Vars {
			nf.Vars[j] = cp.Vars[v.ID]
		}
		cp.Funcs[i] = nf
	}

	return cp
}

// Check returns an error if there is a problem with the model
func (m *Model) Check() error {
	if m.Type != BAYES {
		return errors.Errorf("Unknown model type %s", m.Type)
	}

	varID := make(map[int]bool)
	varName := make(map[string]bool)
	fixCount := 0
	for i, v := range m.Vars {
		e := v.Check()
		if e != nil {
			return errors.Wrapf(e, "Model %s has an invalid Variable %s", m.Name, v.Name)
		}

		if v.ID != i {
			return errors.Errorf("Var %s has ID %d != idx %d", v.Name, v.ID, i)
		}
		if varID[v.ID] {
			return errors.Errorf("Duplicate Id %d for Var %s", v.ID, v.Name)
		}
		varID[v.ID] = true

		if varName[v.Name] {
			return errors.Errorf("Duplicate name %s", v.Name)
		}
		varName[v.Name] = true

		if v.IsFixed() {
			fixCount++
		}
	}
	if fixCount >= len(m.Vars) {
		return errors.Wrapf(ErrConfiguration, "Fixed variable count is %d - all vars are fixed!", fixCount)
	}

	childOf := make(map[int]bool)
	for _, f := range m.Funcs {
		e := f.Check()
		if e != nil {
			return errors.Wrapf(e, "Model %s has an invalid Function %s", m.Name, f.Name)
		}

		for _, v := range f.Vars {
			if v.ID < 0 || v.ID >= len(m.Vars) || m.Vars[v.ID] != v {
				return errors.Errorf("Function %s references var %s outside the model", f.Name, v.Name)
			}
		}

		c := f.Child()
		if childOf[c.ID] {
			return errors.Errorf("Variable %s has more than one CPT", c.Name)
		}
		childOf[c.ID] = true
	}

	for _, v := range m.Vars {
		if !childOf[v.ID] {
			return errors.Errorf("Variable %s has no CPT", v.Name)
		}
	}

	return nil
}

// VarByName returns the named variable or an ErrConfiguration
func (m *Model) VarByName(name string) (*Variable, error) {
	for _, v := range m.Vars {
		if v.Name == name {
			return v, nil
		}
	}
	return nil, errors.Wrapf(ErrConfiguration, "Unknown variable %s", name)
}

// CPT returns the function whose child is the variable at varIdx
func (m *Model) CPT(varIdx int) (*Function, error) {
	for _, f := range m.Funcs {
		if c := f.Child(); c != nil && c.ID == varIdx {
			return f, nil
		}
	}
	return nil, errors.Wrapf(ErrConfiguration, "No CPT for variable %d", varIdx)
}

// VarFuncs returns every function that mentions the variable at varIdx: its
// own CPT and the CPT of each of its children. These are exactly the factors
// of the joint that change with the variable.
func (m *Model) VarFuncs(varIdx int) []*Function {
	funcs := make([]*Function, 0, 4)
	for _, f := range m.Funcs {
		if f.Mentions(varIdx) {
			funcs = append(funcs, f)
		}
	}
	return funcs
}

// Blanket derives the Markov blanket of the variable at varIdx from the CPT
// structure: every other variable that shares a factor with it. The result
// is sorted by ID.
func (m *Model) Blanket(varIdx int) []*Variable {
	seen := make(map[int]bool)
	for _, f := range m.VarFuncs(varIdx) {
		for _, v := range f.Vars {
			if v.ID != varIdx {
				seen[v.ID] = true
			}
		}
	}

	ids := make([]int, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	vars := make([]*Variable, len(ids))
	for i, id := range ids {
		vars[i] = m.Vars[id]
	}
	return vars
}

// JointProb returns the product of every CPT evaluated at a complete
// assignment.
func (m *Model) JointProb(assign []int) (float64, error) {
	if len(assign) != len(m.Vars) {
		return 0, errors.Errorf("Assignment size %d != var count %d", len(assign), len(m.Vars))
	}

	buf := make([]int, 8)
	p := 1.0
	for _, f := range m.Funcs {
		val, err := f.EvalAssignment(assign, buf)
		if err != nil {
			return 0, err
		}
		p *= val
	}
	return p, nil
}
