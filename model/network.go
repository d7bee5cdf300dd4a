package model

import (
	"github.com/pkg/errors"
)

// Variable names in the real estate network. The order here is the
// variable ID order used by NewRealEstate.
const (
	Location     = "location"
	Amenities    = "amenities"
	Neighborhood = "neighborhood"
	Children     = "children"
	Size         = "size"
	Schools      = "schools"
	Age          = "age"
	Price        = "price"
)

// VarNames lists every variable in ID order
var VarNames = []string{Location, Amenities, Neighborhood, Children, Size, Schools, Age, Price}

var domains = map[string][]string{
	Location:     {"good", "bad", "ugly"},
	Amenities:    {"lots", "little"},
	Neighborhood: {"bad", "good"},
	Children:     {"good", "bad"},
	Size:         {"small", "medium", "large"},
	Schools:      {"bad", "good"},
	Age:          {"old", "new"},
	Price:        {"cheap", "ok", "expensive"},
}

// cptDef is the parent list and row-major table for one variable's CPT
type cptDef struct {
	parents []string
	table   []float64
}

var cpts = map[string]cptDef{
	Amenities: {
		nil,
		[]float64{0.3, 0.7},
	},
	Neighborhood: {
		nil,
		[]float64{0.4, 0.6},
	},
	Location: {
		[]string{Amenities, Neighborhood},
		[]float64{
			0.3, 0.4, 0.3,   // lots   bad
			0.8, 0.15, 0.05, // lots   good
			0.2, 0.4, 0.4,   // little bad
			0.5, 0.35, 0.15, // little good
		},
	},
	Children: {
		[]string{Neighborhood},
		[]float64{
			0.4, 0.6, // bad
			0.7, 0.3, // good
		},
	},
	Size: {
		nil,
		[]float64{0.33, 0.34, 0.33},
	},
	Schools: {
		[]string{Children},
		[]float64{
			0.8, 0.2, // good
			0.7, 0.3, // bad
		},
	},
	Age: {
		[]string{Location},
		[]float64{
			0.3, 0.7, // good
			0.6, 0.4, // bad
			0.9, 0.1, // ugly
		},
	},
	Price: {
		[]string{Location, Age, Schools, Size},
		[]float64{
			// location=good
			0.5, 0.4, 0.1,   // old bad small
			0.4, 0.45, 0.15, // old bad medium
			0.35, 0.45, 0.2, // old bad large
			0.4, 0.3, 0.3,   // old good small
			0.35, 0.3, 0.35, // old good medium
			0.3, 0.25, 0.45, // old good large
			0.45, 0.4, 0.15, // new bad small
			0.4, 0.45, 0.15, // new bad medium
			0.35, 0.45, 0.2, // new bad large
			0.25, 0.3, 0.45, // new good small
			0.2, 0.25, 0.55, // new good medium
			0.1, 0.2, 0.7,   // new good large

			// location=bad
			0.7, 0.299, 0.001,
			0.65, 0.33, 0.02,
			0.65, 0.32, 0.03,
			0.55, 0.3, 0.15,
			0.5, 0.35, 0.15,
			0.45, 0.4, 0.15,
			0.6, 0.35, 0.05,
			0.55, 0.35, 0.1,
			0.5, 0.4, 0.1,
			0.4, 0.4, 0.2,
			0.3, 0.4, 0.3,
			0.3, 0.3, 0.4,

			// location=ugly
			0.8, 0.1999, 0.0001,
			0.75, 0.24, 0.01,
			0.75, 0.23, 0.02,
			0.65, 0.3, 0.05,
			0.6, 0.33, 0.07,
			0.55, 0.37, 0.08,
			0.7, 0.27, 0.03,
			0.64, 0.3, 0.06,
			0.61, 0.32, 0.07,
			0.48, 0.42, 0.1,
			0.41, 0.39, 0.2,
			0.37, 0.33, 0.3,
		},
	},
}

// markovBlankets is the hand-derived blanket of every variable: parents,
// children, and the children's other parents.
var markovBlankets = map[string][]string{
	Location:     {Amenities, Neighborhood, Size, Schools, Age, Price},
	Amenities:    {Location, Neighborhood},
	Neighborhood: {Location, Children, Amenities},
	Children:     {Neighborhood, Schools},
	Size:         {Location, Schools, Age, Price},
	Schools:      {Location, Children, Size, Age, Price},
	Age:          {Location, Schools, Size, Price},
	Price:        {Location, Schools, Size, Age},
}

// Domain returns a copy of the named variable's states (nil if unknown)
func Domain(name string) []string {
	d, ok := domains[name]
	if !ok {
		return nil
	}
	cp := make([]string, len(d))
	copy(cp, d)
	return cp
}

// MarkovBlanket is the static blanket lookup for a named variable
func MarkovBlanket(name string) ([]string, error) {
	mb, ok := markovBlankets[name]
	if !ok {
		return nil, errors.Wrapf(ErrConfiguration, "Unknown variable %s", name)
	}
	cp := make([]string, len(mb))
	copy(cp, mb)
	return cp, nil
}

// NewRealEstate builds the fixed real estate valuation network with no
// evidence applied.
func NewRealEstate() (*Model, error) {
	m := &Model{
		Type:  BAYES,
		Name:  "real-estate",
		Vars:  make([]*Variable, len(VarNames)),
		Funcs: make([]*Function, 0, len(VarNames)),
	}

	byName := make(map[string]*Variable, len(VarNames))
	for i, name := range VarNames {
		v, err := NewVariable(i, name, domains[name])
		if err != nil {
			return nil, err
		}
		m.Vars[i] = v
		byName[name] = v
	}

	for _, name := range VarNames {
		def := cpts[name]
		parents := make([]*Variable, len(def.parents))
		for i, p := range def.parents {
			parents[i] = byName[p]
		}

		f, err := NewFunction(byName[name], parents, def.table)
		if err != nil {
			return nil, err
		}
		m.Funcs = append(m.Funcs, f)
	}

	if err := m.Check(); err != nil {
		return nil, errors.Wrap(err, "Real estate network failed its own check")
	}
	for _, f := range m.Funcs {
		if err := f.CheckRows(1e-9); err != nil {
			return nil, err
		}
	}

	// The static blanket table must agree with the CPT structure
	for _, v := range m.Vars {
		if err := checkBlanket(m, v); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func checkBlanket(m *Model, v *Variable) error {
	want := make(map[string]bool)
	for _, name := range markovBlankets[v.Name] {
		want[name] = true
	}

	derived := m.Blanket(v.ID)
	if len(derived) != len(want) {
		return errors.Errorf("Blanket for %s has %d vars, CPTs imply %d", v.Name, len(want), len(derived))
	}
	for _, b := range derived {
		if !want[b.Name] {
			return errors.Errorf("Blanket for %s is missing %s", v.Name, b.Name)
		}
	}
	return nil
}
