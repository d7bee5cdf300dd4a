package cmd

import (
	"time"

	"github.com/pkg/errors"

	"github.com/CraigKelly/housegibbs/model"
	"github.com/CraigKelly/housegibbs/rand"
	"github.com/CraigKelly/housegibbs/sampler"
)

// Sample runs one chain for the query and reports the posterior
func Sample(sp *startupParams) error {
	base, err := model.NewRealEstate()
	if err != nil {
		return err
	}

	gen, err := rand.NewGenerator(sp.cfg.Seed)
	if err != nil {
		return err
	}
	defer gen.Close()

	req := sampler.Request{
		Query:    sp.query,
		Evidence: sp.evidence,
		Updates:  sp.cfg.Updates,
		BurnIn:   sp.cfg.Discard,
	}

	ch, err := sampler.Prepare(gen, base, req)
	if err != nil {
		return err
	}

	sp.out.Printf("Run ID:    %s\n", sp.runID)
	sp.out.Printf("Query:     %s\n", sp.query)
	sp.out.Printf("Evidence:  %v\n", ch.Target.Evidence())
	sp.out.Printf("Updates:   %d (%d sweeps over %d free vars)\n", ch.Updates, ch.Sweeps, len(ch.FreeVars))
	sp.out.Printf("Discard:   %d (%d sweeps)\n", ch.BurnIn, ch.BurnSweeps)
	sp.out.Printf("Rnd Seed:  %d\n", sp.cfg.Seed)

	err = sp.writeTrace(traceRecord{
		Kind:     recordStart,
		Query:    sp.query,
		Evidence: ch.Target.Evidence(),
		Seed:     sp.cfg.Seed,
	})
	if err != nil {
		return err
	}

	var mon *monitor
	if sp.monitor {
		mon = newMonitor(sp.cfg.MonitorAddr, sp.runID, sp.out)
		if err := mon.Start(); err != nil {
			return err
		}
		defer mon.Stop()
	}

	var traceErr error
	ch.ReportEvery = sp.cfg.ReportEvery
	ch.Progress = func(c *sampler.Chain) {
		if mon != nil {
			mon.Update(c)
		}
		if sp.verbose {
			maxHel := 0.0
			for _, d := range c.Convergence(nil) {
				if d > maxHel {
					maxHel = d
				}
			}
			sp.out.Printf("Sweep %d/%d, samples=%d, max split-half Hellinger=%.5f\n", c.Sweep(), c.Sweeps, c.TotalSampleCount, maxHel)
		}
		if traceErr == nil {
			traceErr = sp.writeTrace(progressRecord(c))
		}
	}

	startTime := time.Now()
	if err := ch.Run(); err != nil {
		return err
	}
	if traceErr != nil {
		return traceErr
	}
	if mon != nil {
		mon.Update(ch)
	}

	post, err := ch.Posterior()
	if err != nil {
		return err
	}

	sp.out.Printf("Completed %d sweeps in %.3fs\n", ch.Sweeps, time.Since(startTime).Seconds())
	sp.out.Printf("Posterior for %s from %.0f samples:\n", post.Name, post.State["samples"])
	for i, val := range post.Domain {
		sp.out.Printf("  P(%s=%s) = %.5f\n", post.Name, val, post.Marginal[i])
	}

	err = sp.writeTrace(traceRecord{
		Kind:      recordPosterior,
		Query:     sp.query,
		Sweep:     ch.Sweep(),
		Samples:   ch.TotalSampleCount,
		Posterior: post.MarginalMap(),
	})
	if err != nil {
		return err
	}

	if sp.exact {
		return exactReport(sp, base, ch, post)
	}
	return nil
}

// exactReport compares the chain against exact enumeration of base under
// the chain's evidence
func exactReport(sp *startupParams, base *model.Model, ch *sampler.Chain, post *model.Variable) error {
	sol, err := exactSolution(base, ch.Target.Evidence())
	if err != nil {
		return err
	}

	exact, err := sol.Var(post.Name)
	if err != nil {
		return err
	}

	sp.out.Printf("Exact posterior for %s:\n", exact.Name)
	for i, val := range exact.Domain {
		sp.out.Printf("  P(%s=%s) = %.5f\n", exact.Name, val, exact.Marginal[i])
	}

	score, err := sol.Error(ch.Marginals())
	if err != nil {
		return err
	}
	errorReport(sp, "SAMPLED VS EXACT", score)

	return sp.writeTrace(traceRecord{
		Kind:      recordExact,
		Query:     sp.query,
		Posterior: exact.MarginalMap(),
		Scores:    scoreMap(score),
	})
}

func exactSolution(base *model.Model, evid map[string]string) (*model.Solution, error) {
	mod := base.Clone()
	if err := mod.ApplyEvidence(evid); err != nil {
		return nil, err
	}
	sol, err := model.NewExactSolution(mod)
	if err != nil {
		return nil, errors.Wrap(err, "Exact solution failed")
	}
	return sol, nil
}

func errorReport(sp *startupParams, title string, score *model.ErrorSuite) {
	sp.out.Printf("%s\n", title)
	sp.out.Printf("  MeanMeanAbsError: %.6f | MaxMeanAbsError: %.6f\n", score.MeanMeanAbsError, score.MaxMeanAbsError)
	sp.out.Printf("  MeanMaxAbsError:  %.6f | MaxMaxAbsError:  %.6f\n", score.MeanMaxAbsError, score.MaxMaxAbsError)
	sp.out.Printf("  MeanHellinger:    %.6f | MaxHellinger:    %.6f\n", score.MeanHellinger, score.MaxHellinger)
	sp.out.Printf("  MeanJSDiverge:    %.6f | MaxJSDiverge:    %.6f\n", score.MeanJSDiverge, score.MaxJSDiverge)
}

func scoreMap(score *model.ErrorSuite) map[string]float64 {
	return map[string]float64{
		"mean-mean-abs": score.MeanMeanAbsError,
		"mean-max-abs":  score.MeanMaxAbsError,
		"mean-hel":      score.MeanHellinger,
		"mean-jsd":      score.MeanJSDiverge,
		"max-mean-abs":  score.MaxMeanAbsError,
		"max-max-abs":   score.MaxMaxAbsError,
		"max-hel":       score.MaxHellinger,
		"max-jsd":       score.MaxJSDiverge,
	}
}
