package model

import (
	"math"

	"github.com/pkg/errors"
)

// Function represents a CPT over Vars. The conditioned (child) variable is
// always the LAST entry in Vars and the parents come first. Table is stored
// row-major over Vars, so the child varies fastest and every run of
// Card(child) entries is one conditional distribution.
type Function struct {
	Name  string      // Name for function (the child's name)
	Vars  []*Variable // Parents followed by the child
	Table []float64   // CPT - len is product of variables' Card
}

// NewFunction creates a CPT for child given parents. The table is copied.
func NewFunction(child *Variable, parents []*Variable, table []float64) (*Function, error) {
	if child == nil {
		return nil, errors.New("A CPT requires a child variable")
	}

	vars := make([]*Variable, 0, len(parents)+1)
	vars = append(vars, parents...)
	vars = append(vars, child)

	f := &Function{
		Name:  child.Name,
		Vars:  vars,
		Table: make([]float64, len(table)),
	}
	copy(f.Table, table)

	if err := f.Check(); err != nil {
		return nil, errors.Wrapf(err, "Invalid CPT for %s", child.Name)
	}

	return f, nil
}

// Child returns the variable this CPT is conditioned for
func (f *Function) Child() *Variable {
	if len(f.Vars) < 1 {
		return nil
	}
	return f.Vars[len(f.Vars)-1]
}

// Parents returns the conditioning variables (may be empty for a prior)
func (f *Function) Parents() []*Variable {
	if len(f.Vars) < 1 {
		return nil
	}
	return f.Vars[:len(f.Vars)-1]
}

// Clone returns a copy of the function. Note that variables are NOT cloned.
func (f *Function) Clone() *Function {
	cp := &Function{
		Name:  f.Name,
		Vars:  make([]*Variable, len(f.Vars)),
		Table: make([]float64, len(f.Table)),
	}
	copy(cp.Vars, f.Vars)
	copy(cp.Table, f.Table)
	return cp
}

// Check returns an error if any problem is found
func (f *Function) Check() error {
	expTableSize := 0

	if len(f.Vars) > 0 {
		expTableSize = 1

		for _, v := range f.Vars {
			if v.Card < 1 {
				return errors.Errorf("Variable %s has card %d but is in Function %s", v.Name, v.Card, f.Name)
			}
			expTableSize *= v.Card
		}
	}

	if expTableSize != len(f.Table) {
		return errors.Errorf("Function %s expected table size %d, found %d", f.Name, expTableSize, len(f.Table))
	}

	for i, p := range f.Table {
		if p < 0 || p > 1 || math.IsNaN(p) {
			return errors.Errorf("Function %s has invalid probability %f at %d", f.Name, p, i)
		}
	}

	return nil
}

// CheckRows returns an error if any conditional row does not sum to 1
// within eps.
func (f *Function) CheckRows(eps float64) error {
	child := f.Child()
	if child == nil {
		return errors.Errorf("Function %s has no variables", f.Name)
	}

	for start := 0; start < len(f.Table); start += child.Card {
		var sum float64
		for _, p := range f.Table[start : start+child.Card] {
			sum += p
		}
		if math.Abs(sum-1.0) > eps {
			return errors.Errorf("Function %s row %d sums to %f", f.Name, start/child.Card, sum)
		}
	}

	return nil
}

// Eval returns the table entry for the given values, one per entry in Vars.
// On error, NaN is returned.
func (f *Function) Eval(values []int) (float64, error) {
	if len(values) != len(f.Vars) {
		return math.NaN(), errors.Errorf("Function %s needs %d values, got %d", f.Name, len(f.Vars), len(values))
	}

	idx := 0
	for i, v := range f.Vars {
		val := values[i]
		if val < 0 || val >= v.Card {
			return math.NaN(), errors.Errorf("Function %s: value %d out of range for %s", f.Name, val, v.Name)
		}
		idx = idx*v.Card + val
	}

	return f.Table[idx], nil
}

// EvalAssignment evaluates the function against a complete assignment
// indexed by variable ID. buf is scratch space of at least len(Vars).
func (f *Function) EvalAssignment(assign []int, buf []int) (float64, error) {
	if len(buf) < len(f.Vars) {
		buf = make([]int, len(f.Vars))
	}
	buf = buf[:len(f.Vars)]

	for i, v := range f.Vars {
		if v.ID < 0 || v.ID >= len(assign) {
			return math.NaN(), errors.Errorf("Function %s: var %s not in assignment", f.Name, v.Name)
		}
		buf[i] = assign[v.ID]
	}

	return f.Eval(buf)
}

// Prob is the CPT lookup P(child=value | parents). A parent combination the
// table does not define is a configuration error.
func (f *Function) Prob(value int, parents []int) (float64, error) {
	if len(parents) != len(f.Vars)-1 {
		return math.NaN(), errors.Wrapf(
			ErrConfiguration,
			"CPT %s conditions on %d parents, got %d values",
			f.Name, len(f.Vars)-1, len(parents),
		)
	}

	values := make([]int, 0, len(f.Vars))
	values = append(values, parents...)
	values = append(values, value)

	p, err := f.Eval(values)
	if err != nil {
		return math.NaN(), errors.Wrapf(ErrConfiguration, "CPT %s lookup failed: %v", f.Name, err)
	}
	return p, nil
}

// Mentions is true if the variable with the given ID is in this function's scope
func (f *Function) Mentions(id int) bool {
	for _, v := range f.Vars {
		if v.ID == id {
			return true
		}
	}
	return false
}
