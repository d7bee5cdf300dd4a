package model

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func testVar(name string, card int, marg []float64) *Variable {
	domain := make([]string, card)
	for i := range domain {
		domain[i] = string(rune('a' + i))
	}
	return &Variable{Name: name, Card: card, Domain: domain, FixedVal: -1, Marginal: marg}
}

// Make sure that Check actually catches problems
func TestVarBadCheck(t *testing.T) {
	assert := assert.New(t)

	dupState := testVar("BadVar-DupState", 2, []float64{0.5, 0.5})
	dupState.Domain[1] = dupState.Domain[0]

	shortDomain := testVar("BadVar-ShortDomain", 2, []float64{0.5, 0.5})
	shortDomain.Domain = shortDomain.Domain[:1]

	badFixed := testVar("BadVar-FixedOutOfRange", 2, []float64{0.5, 0.5})
	badFixed.FixedVal = 2

	cases := []*Variable{
		testVar("BadVar-HaveCardNoMarg", 2, []float64{}),
		testVar("BadVar-MismatchCardMarg", 2, []float64{0.3, 0.3, 0.4}),
		testVar("BadVer-MargNotADist<1", 2, []float64{0.5, 0.4999}),
		testVar("BadVer-MargNotADist>1", 2, []float64{0.5, 0.5001}),
		dupState,
		shortDomain,
		badFixed,
	}

	for _, v := range cases {
		assert.Error(v.Check(), v.Name)
	}
}

// Make sure that we can actually pass our tests
func TestVarGoodCheck(t *testing.T) {
	assert := assert.New(t)

	fixed := testVar("GoodVar-Fixed", 2, []float64{0.5, 0.5})
	fixed.FixedVal = 1

	cases := []*Variable{
		testVar("GoodVar-Card1", 1, []float64{1.0}),
		testVar("GoodVar-Card2", 2, []float64{0.5, 0.5}),
		testVar("GoodVar-Card3", 3, []float64{0.5, 0.4, 0.1}),
		fixed,
	}

	for _, v := range cases {
		assert.NoError(v.Check(), v.Name)
	}
}

func TestVarCreation(t *testing.T) {
	assert := assert.New(t)

	v, err := NewVariable(-1, "neg", []string{"x"})
	assert.Nil(v)
	assert.Error(err)

	v, err = NewVariable(0, "empty", nil)
	assert.Nil(v)
	assert.Error(err)

	domain := []string{"good", "bad", "ugly"}
	v, err = NewVariable(3, "location", domain)
	assert.NoError(err)
	assert.Equal(3, v.ID)
	assert.Equal(3, v.Card)
	assert.Equal(-1, v.FixedVal)
	assert.False(v.IsFixed())
	assert.InDeltaSlice([]float64{1.0 / 3, 1.0 / 3, 1.0 / 3}, v.Marginal, 1e-12)
	assert.NoError(v.Check())

	// domain is copied
	domain[0] = "changed"
	assert.Equal("good", v.Domain[0])
}

// normalizing marginal testing
func TestVarNormProb(t *testing.T) {
	assert := assert.New(t)

	cases := []struct {
		Success bool
		Var     *Variable
	}{
		{false, testVar("BadVar-MismatchCardMarg", 2, []float64{0.5, 0.5, 0.5})},
		{true, testVar("GoodVar-Card1-OK", 1, []float64{1.0})},
		{true, testVar("GoodVar-Card1-SUB", 1, []float64{0.1})},
		{true, testVar("GoodVar-Card2-OK", 2, []float64{0.5, 0.5})},
		{true, testVar("GoodVar-Card2-SUB", 2, []float64{120.0, 120.0})},
		{true, testVar("GoodVar-Card2-ZERO", 2, []float64{0.0, 0.0})},
	}

	for _, c := range cases {
		if c.Success {
			assert.NoError(c.Var.NormMarginal(), c.Var.Name)
			assert.NoError(c.Var.Check(), c.Var.Name)
		} else {
			assert.Error(c.Var.NormMarginal(), c.Var.Name)
			assert.Error(c.Var.Check(), c.Var.Name)
		}
	}

	v := testVar("Weighted", 3, []float64{1.0, 2.0, 1.0})
	assert.NoError(v.NormMarginal())
	assert.InDeltaSlice([]float64{0.25, 0.5, 0.25}, v.Marginal, 1e-12)
}

func TestVarValueIndex(t *testing.T) {
	assert := assert.New(t)

	v, err := NewVariable(0, "price", []string{"cheap", "ok", "expensive"})
	assert.NoError(err)

	idx, err := v.ValueIndex("ok")
	assert.NoError(err)
	assert.Equal(1, idx)

	idx, err = v.ValueIndex("free")
	assert.Equal(-1, idx)
	assert.Error(err)
	assert.True(errors.Is(err, ErrConfiguration))

	v.Marginal = []float64{0.2, 0.3, 0.5}
	assert.Equal(map[string]float64{"cheap": 0.2, "ok": 0.3, "expensive": 0.5}, v.MarginalMap())
}

func TestVarClone(t *testing.T) {
	assert := assert.New(t)

	v, err := NewVariable(1, "age", []string{"old", "new"})
	assert.NoError(err)
	v.State["samples"] = 12

	cp := v.Clone()
	assert.Equal(v, cp)
	assert.True(v != cp)

	cp.Marginal[0] = 0.9
	cp.Domain[0] = "ancient"
	cp.State["samples"] = 1
	assert.InDelta(0.5, v.Marginal[0], 1e-12)
	assert.Equal("old", v.Domain[0])
	assert.InDelta(12.0, v.State["samples"], 1e-12)
}
