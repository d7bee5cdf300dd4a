package cmd

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/CraigKelly/housegibbs/sampler"
)

// Kinds of trace record
const (
	recordStart     = "start"
	recordProgress  = "progress"
	recordPosterior = "posterior"
	recordExact     = "exact"
	recordCheck     = "check"
)

// traceRecord is one JSON line in the trace file
type traceRecord struct {
	Run         string                        `json:"run"`
	Kind        string                        `json:"kind"`
	Query       string                        `json:"query,omitempty"`
	Evidence    map[string]string             `json:"evidence,omitempty"`
	Seed        int64                         `json:"seed,omitempty"`
	Sweep       int                           `json:"sweep"`
	Samples     int64                         `json:"samples"`
	Convergence map[string]float64            `json:"convergence,omitempty"`
	Marginals   map[string]map[string]float64 `json:"marginals,omitempty"`
	Posterior   map[string]float64            `json:"posterior,omitempty"`
	Scores      map[string]float64            `json:"scores,omitempty"`
}

func (sp *startupParams) writeTrace(rec traceRecord) error {
	rec.Run = sp.runID
	data, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrapf(err, "Could not encode %s trace record", rec.Kind)
	}
	sp.trace.Println(string(data))
	return nil
}

// progressRecord snapshots a running chain
func progressRecord(c *sampler.Chain) traceRecord {
	rec := traceRecord{
		Kind:        recordProgress,
		Sweep:       c.Sweep(),
		Samples:     c.TotalSampleCount,
		Convergence: make(map[string]float64),
	}
	for id, d := range c.Convergence(nil) {
		rec.Convergence[c.Target.Vars[id].Name] = d
	}

	if c.Sweep() > c.BurnSweeps {
		rec.Marginals = make(map[string]map[string]float64)
		for _, v := range c.Marginals() {
			if !v.IsFixed() {
				rec.Marginals[v.Name] = v.MarginalMap()
			}
		}
	}

	return rec
}
