package model

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func funcVars() (v2, v3 *Variable) {
	v2 = testVar("V2", 2, []float64{0.25, 0.75})
	v2.ID = 0
	v3 = testVar("V3", 3, []float64{0.25, 0.70, 0.05})
	v3.ID = 1
	return
}

// Make sure that Check actually catches problems
func TestFuncBadCheck(t *testing.T) {
	assert := assert.New(t)

	v2, v3 := funcVars()
	v0 := testVar("V0", 0, []float64{})

	cases := []*Function{
		{"Bad-NoVarHaveTable", []*Variable{}, []float64{0.5, 0.5}},
		{"Bad-0Var", []*Variable{v0}, []float64{}},

		{"Bad-1Var2BadTable", []*Variable{v2}, []float64{0.5, 0.5, 0.5}},
		{"Bad-1Var3BadTable", []*Variable{v3}, []float64{0.5}},

		{"Bad-2VarBadTableHi", []*Variable{v2, v2}, []float64{0.5, 0.5, 0.5, 0.5, 0.5}},
		{"Bad-2VarBadTableLo", []*Variable{v2, v2}, []float64{0.5, 0.5}},

		{"Bad-NegativeProb", []*Variable{v2}, []float64{-0.5, 1.5}},
		{"Bad-NaNProb", []*Variable{v2}, []float64{math.NaN(), 0.5}},
	}

	for _, f := range cases {
		assert.Error(f.Check(), f.Name)
	}
}

// Make sure we're OK with valid functions
func TestFuncGoodCheck(t *testing.T) {
	assert := assert.New(t)

	v2, v3 := funcVars()

	cases := []*Function{
		{"Good-1Var2", []*Variable{v2}, []float64{0.5, 0.5}},
		{"Good-1Var3", []*Variable{v3}, []float64{0.5, 0.25, 0.25}},
		{"Good-2VarMad", []*Variable{v2, v3}, []float64{0.5, 0.25, 0.25, 0.1, 0.1, 0.8}},
	}

	for _, f := range cases {
		assert.NoError(f.Check(), f.Name)
		assert.NoError(f.CheckRows(1e-9), f.Name)
	}

	// Valid table, rows that are not distributions
	f := &Function{"Bad-Rows", []*Variable{v2, v3}, []float64{0.5, 0.25, 0.25, 0.5, 0.5, 0.5}}
	assert.NoError(f.Check())
	assert.Error(f.CheckRows(1e-9))
}

// Make sure we correctly handle bad eval
func TestFuncTestEval(t *testing.T) {
	assert := assert.New(t)

	v2, v3 := funcVars()

	f := &Function{
		"TestTable",
		[]*Variable{v2, v3},
		[]float64{
			0.01, // 0 0
			0.02, // 0 1
			0.03, // 0 2
			0.04, // 1 0
			0.05, // 1 1
			0.06, // 1 2
		},
	}

	passCases := []struct {
		values   []int
		expected float64
	}{
		{[]int{0, 0}, 0.01},
		{[]int{0, 1}, 0.02},
		{[]int{0, 2}, 0.03},
		{[]int{1, 0}, 0.04},
		{[]int{1, 1}, 0.05},
		{[]int{1, 2}, 0.06},
	}

	failCases := [][]int{
		{},
		{0},
		{0, 0, 0},
		{2, 0},
		{0, 3},
		{-1, 0},
	}

	const EPS float64 = 1e-14

	for _, c := range passCases {
		v, e := f.Eval(c.values)
		assert.NoError(e)
		assert.InEpsilon(c.expected, v, EPS)

		// Same value by way of the CPT contract: child is last
		p, e := f.Prob(c.values[1], c.values[:1])
		assert.NoError(e)
		assert.InEpsilon(c.expected, p, EPS)

		// ... and by way of a full assignment indexed by var ID
		p, e = f.EvalAssignment(c.values, nil)
		assert.NoError(e)
		assert.InEpsilon(c.expected, p, EPS)
	}

	for _, c := range failCases {
		v, e := f.Eval(c)
		assert.Error(e)
		assert.True(math.IsNaN(v))
	}

	p, e := f.Prob(0, []int{5})
	assert.True(math.IsNaN(p))
	assert.True(errors.Is(e, ErrConfiguration))

	p, e = f.Prob(0, []int{0, 0})
	assert.True(math.IsNaN(p))
	assert.True(errors.Is(e, ErrConfiguration))
}

// test cloning
func TestFuncClone(t *testing.T) {
	assert := assert.New(t)

	v2, v3 := funcVars()

	f1, err := NewFunction(v3, []*Variable{v2}, []float64{0.5, 0.25, 0.25, 0.1, 0.1, 0.8})
	assert.NoError(err)
	assert.Equal("V3", f1.Name)
	assert.Equal(v3, f1.Child())
	assert.Equal([]*Variable{v2}, f1.Parents())
	assert.True(f1.Mentions(v2.ID))
	assert.True(f1.Mentions(v3.ID))
	assert.False(f1.Mentions(7))

	f2 := f1.Clone()
	assert.True(f1 != f2) // point to different objects
	assert.Equal(f1, f2)  // look exactly the same

	f2.Table[0] = 0.9
	assert.InEpsilon(0.5, f1.Table[0], 1e-12)
}

func TestFuncCreationErrors(t *testing.T) {
	assert := assert.New(t)

	v2, v3 := funcVars()

	f, err := NewFunction(nil, nil, []float64{1.0})
	assert.Nil(f)
	assert.Error(err)

	f, err = NewFunction(v3, []*Variable{v2}, []float64{0.5, 0.5})
	assert.Nil(f)
	assert.Error(err)
}
