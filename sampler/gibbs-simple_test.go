package sampler

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/CraigKelly/housegibbs/model"
)

func realEstate(t testing.TB) *model.Model {
	m, err := model.NewRealEstate()
	if err != nil {
		t.Fatalf("Could not build network: %v", err)
	}
	return m
}

func newGibbs(t testing.TB, m *model.Model, seed int64) *GibbsSimple {
	samp, err := NewGibbsSimple(testGen(t, seed), m)
	if err != nil {
		t.Fatalf("Could not create Gibbs-Simple sampler %v", err)
	}
	return samp
}

func TestGibbsCreation(t *testing.T) {
	assert := assert.New(t)

	_, err := NewGibbsSimple(testGen(t, 1), nil)
	assert.Error(err)

	_, err = NewGibbsSimple(nil, realEstate(t))
	assert.Error(err)

	bad := realEstate(t)
	bad.Funcs = bad.Funcs[1:]
	_, err = NewGibbsSimple(testGen(t, 1), bad)
	assert.Error(err)

	samp := newGibbs(t, realEstate(t), 1)
	assert.Len(samp.varFuncs, 8)
	assert.Len(samp.buf, 5) // price and its 4 parents
}

// Every conditional is a distribution, for every variable and assignment
func TestConditionalSumsToOne(t *testing.T) {
	assert := assert.New(t)

	m := realEstate(t)
	samp := newGibbs(t, m, 1)

	vi, err := model.NewVariableIter(m.Vars)
	assert.NoError(err)

	assign := make([]int, len(m.Vars))
	before := make([]int, len(m.Vars))
	for {
		assert.NoError(vi.Val(assign))
		copy(before, assign)

		for _, v := range m.Vars {
			dist, err := samp.Conditional(v.ID, assign)
			assert.NoError(err)
			assert.Len(dist, v.Card)

			sum := 0.0
			for _, p := range dist {
				assert.True(p >= 0)
				sum += p
			}
			assert.InDelta(1.0, sum, 1e-9)
			assert.Equal(before, assign, "conditional must not modify the assignment")
		}

		if !vi.Next() {
			break
		}
	}
}

// With every other variable observed, the conditional IS the exact posterior
func TestConditionalMatchesExact(t *testing.T) {
	assert := assert.New(t)

	m := realEstate(t)

	assignments := [][]int{
		{0, 0, 1, 0, 0, 0, 0, 0},
		{2, 1, 0, 1, 2, 1, 1, 2},
		{1, 0, 0, 0, 1, 1, 0, 1},
	}

	for _, assign := range assignments {
		for _, target := range m.Vars {
			evid := make(map[string]string)
			for _, v := range m.Vars {
				if v.ID != target.ID {
					evid[v.Name] = v.Domain[assign[v.ID]]
				}
			}

			cp := m.Clone()
			assert.NoError(cp.ApplyEvidence(evid))
			sol, err := model.NewExactSolution(cp)
			assert.NoError(err)

			samp := newGibbs(t, cp, 1)
			dist, err := samp.Conditional(target.ID, assign)
			assert.NoError(err)
			assert.InDeltaSlice(sol.Vars[target.ID].Marginal, dist, 1e-9, target.Name)
		}
	}
}

// Location's conditional worked by hand from its factor list
func TestConditionalLocation(t *testing.T) {
	assert := assert.New(t)

	m := realEstate(t)
	samp := newGibbs(t, m, 1)

	// amenities=lots neighborhood=good age=new schools=good size=large price=expensive
	assign := []int{0, 0, 1, 0, 2, 1, 1, 2}

	good := 0.8 * 0.7 * 0.7
	bad := 0.15 * 0.4 * 0.4
	ugly := 0.05 * 0.1 * 0.3
	sum := good + bad + ugly

	dist, err := samp.Conditional(0, assign)
	assert.NoError(err)
	assert.InDeltaSlice([]float64{good / sum, bad / sum, ugly / sum}, dist, 1e-12)

	_, err = samp.Conditional(8, assign)
	assert.Error(err)
	_, err = samp.Conditional(0, assign[:3])
	assert.Error(err)
}

func TestGibbsInitAndSample(t *testing.T) {
	assert := assert.New(t)

	m := realEstate(t)
	assert.NoError(m.ApplyEvidence(map[string]string{model.Price: "expensive", model.Age: "new"}))
	samp := newGibbs(t, m, 42)

	s := make([]int, len(m.Vars))
	assert.Error(samp.Init(s[:2]))

	for n := 0; n < 100; n++ {
		assert.NoError(samp.Init(s))
		assert.Equal(2, s[7])
		assert.Equal(1, s[6])
		for i, v := range m.Vars {
			assert.True(s[i] >= 0 && s[i] < v.Card)
		}
	}

	// Fixed vars are never sampled
	_, err := samp.SampleVar(7, s)
	assert.Error(err)
	_, err = samp.SampleVar(-1, s)
	assert.Error(err)

	counts := make([]int, 3)
	for n := 0; n < 20000; n++ {
		val, err := samp.SampleVar(0, s)
		assert.NoError(err)
		assert.Equal(val, s[0])
		counts[val]++
	}
	for _, c := range counts {
		assert.True(c > 0)
	}
}

func TestDrawSkipsZeroWeight(t *testing.T) {
	assert := assert.New(t)

	samp := newGibbs(t, realEstate(t), 5)

	for n := 0; n < 500; n++ {
		assert.Equal(1, samp.draw([]float64{0, 1, 0}))
		assert.NotEqual(1, samp.draw([]float64{0.5, 0, 0.5}))
	}

	// Rounding shortfall still lands on a real value
	assert.Equal(2, samp.draw([]float64{0, 0, 1e-300}))
}

// A model whose CPTs make the observed value impossible
func zeroModel(t *testing.T) *model.Model {
	v1, err := model.NewVariable(0, "cause", []string{"a", "b"})
	assert.NoError(t, err)
	v2, err := model.NewVariable(1, "effect", []string{"x", "y"})
	assert.NoError(t, err)

	f1, err := model.NewFunction(v1, nil, []float64{1.0, 0.0})
	assert.NoError(t, err)
	f2, err := model.NewFunction(v2, []*model.Variable{v1}, []float64{0.0, 1.0, 0.5, 0.5})
	assert.NoError(t, err)

	return &model.Model{
		Type:  model.BAYES,
		Name:  "zero",
		Vars:  []*model.Variable{v1, v2},
		Funcs: []*model.Function{f1, f2},
	}
}

func TestConditionalZeroSum(t *testing.T) {
	assert := assert.New(t)

	m := zeroModel(t)
	assert.NoError(m.ApplyEvidence(map[string]string{"effect": "x"}))
	samp := newGibbs(t, m, 1)

	_, err := samp.Conditional(0, []int{0, 0})
	assert.True(errors.Is(err, model.ErrArithmetic))

	_, err = samp.SampleVar(0, []int{0, 0})
	assert.True(errors.Is(err, model.ErrArithmetic))
}

var modIts int

func BenchmarkGibbsSimple(b *testing.B) {
	m := realEstate(b)
	samp := newGibbs(b, m, 42)

	oneSample := make([]int, len(m.Vars))
	if err := samp.Init(oneSample); err != nil {
		b.Fatalf("Init failed %v", err)
	}

	b.ResetTimer()

	it := 0
	for i := 0; i < b.N; i++ {
		_, err := samp.SampleVar(i%len(m.Vars), oneSample)
		if err != nil {
			b.Fatalf("Failure on single sample (it %d) %v", i, err)
		}
		it++
	}
	modIts = it
}
