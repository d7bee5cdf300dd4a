package model

import (
	"sort"

	"github.com/pkg/errors"
)

// ApplyEvidence clamps the named variables to the given states. We only
// support one evidence set applied at a time, so all variables are reset
// to unfixed first. On error the model is left with no evidence.
func (m *Model) ApplyEvidence(evid map[string]string) error {
	m.ClearEvidence()

	// Sorted so the first reported error is stable
	names := make([]string, 0, len(evid))
	for name := range evid {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		v, err := m.VarByName(name)
		if err != nil {
			m.ClearEvidence()
			return err
		}

		val, err := v.ValueIndex(evid[name])
		if err != nil {
			m.ClearEvidence()
			return err
		}

		v.FixedVal = val
	}

	if len(m.Vars) > 0 && len(m.FreeVars()) < 1 {
		m.ClearEvidence()
		return errors.Wrapf(ErrConfiguration, "All %d variables are evidence: nothing to sample", len(m.Vars))
	}

	return nil
}

// ClearEvidence un-fixes every variable
func (m *Model) ClearEvidence() {
	for _, v := range m.Vars {
		v.FixedVal = -1
	}
}

// Evidence returns the currently applied evidence keyed by variable name
func (m *Model) Evidence() map[string]string {
	evid := make(map[string]string)
	for _, v := range m.Vars {
		if v.IsFixed() {
			evid[v.Name] = v.Domain[v.FixedVal]
		}
	}
	return evid
}

// FreeVars returns the IDs of all non-evidence variables in model order
func (m *Model) FreeVars() []int {
	ids := make([]int, 0, len(m.Vars))
	for _, v := range m.Vars {
		if !v.IsFixed() {
			ids = append(ids, v.ID)
		}
	}
	return ids
}
