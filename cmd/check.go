package cmd

import (
	"math"
	"runtime"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/CraigKelly/housegibbs/model"
	"github.com/CraigKelly/housegibbs/rand"
	"github.com/CraigKelly/housegibbs/sampler"
)

var checkTolerance float64

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Compare a chain per free variable against exact enumeration",
	Long: `For every variable not fixed by evidence, run a chain with that
variable as the query and compare the estimate with the exact posterior.
Fails if any variable's Hellinger distance exceeds the tolerance.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sp, err := newStartupParams(cmd, "")
		if err != nil {
			return err
		}
		defer sp.Close()
		return CheckAgainstExact(sp, checkTolerance)
	},
}

func init() {
	checkCmd.Flags().Float64Var(&checkTolerance, "tolerance", 0.05, "Largest Hellinger distance allowed per variable")
}

// CheckAgainstExact runs one chain per free variable concurrently and prints
// the sampled marginal, the exact marginal, and the error between them. The
// chain for variable i is seeded with seed+i.
func CheckAgainstExact(sp *startupParams, tolerance float64) error {
	// We do this a lot, so create a little helper for write error metrics
	oneErrorLog := func(v1 *model.Variable, v2 *model.Variable, prefix string) (*model.ErrorSuite, error) {
		score, err := model.NewErrorSuite(
			[]*model.Variable{v1},
			[]*model.Variable{v2},
		)
		if err != nil {
			return nil, err
		}
		sp.out.Printf(
			"%s NLog | MeanAE:%7.3f MaxAE:%7.3f Hel:%7.3f JSD:%7.3f\n",
			prefix,
			-math.Log2(score.MaxMeanAbsError),
			-math.Log2(score.MaxMaxAbsError),
			-math.Log2(score.MaxHellinger),
			-math.Log2(score.MaxJSDiverge),
		)
		return score, nil
	}

	base, err := model.NewRealEstate()
	if err != nil {
		return err
	}

	sol, err := exactSolution(base, sp.evidence)
	if err != nil {
		return err
	}

	// One chain per free var, each on its own stream so results don't
	// depend on scheduling
	type checkResult struct {
		post *model.Variable
		ch   *sampler.Chain
	}
	results := make([]checkResult, len(base.Vars))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, v := range base.Vars {
		if _, isEvid := sp.evidence[v.Name]; isEvid {
			continue
		}

		v := v
		g.Go(func() error {
			gen, err := rand.NewGenerator(sp.cfg.Seed + int64(v.ID))
			if err != nil {
				return err
			}
			defer gen.Close()
			post, ch, err := sampler.Infer(gen, base, sampler.Request{
				Query:    v.Name,
				Evidence: sp.evidence,
				Updates:  sp.cfg.Updates,
				BurnIn:   sp.cfg.Discard,
			})
			if err != nil {
				return errors.Wrapf(err, "Chain failed for %s", v.Name)
			}
			results[v.ID] = checkResult{post, ch}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	failed := make([]string, 0)
	for i, v := range base.Vars {
		sp.out.Printf("--------------------------------------------------\n")
		sp.out.Printf("Check for Var[%v] %v\n", v.ID, v.Name)

		if _, isEvid := sp.evidence[v.Name]; isEvid {
			sp.out.Printf("Skipping: evidence %s=%s\n", v.Name, sp.evidence[v.Name])
			continue
		}

		post, ch := results[i].post, results[i].ch
		solVar := sol.Vars[i]
		if solVar.ID != post.ID {
			return errors.Errorf("Solution/Model var mismatch %v != %v", solVar.ID, post.ID)
		}

		sp.out.Printf("SAMPLED  : %8.5f\n", post.Marginal)
		sp.out.Printf("SOLUTION : %8.5f\n", solVar.Marginal)

		score, err := oneErrorLog(post, solVar, "Gib vs Sol")
		if err != nil {
			return err
		}

		err = sp.writeTrace(traceRecord{
			Kind:      recordCheck,
			Query:     v.Name,
			Evidence:  sp.evidence,
			Seed:      sp.cfg.Seed + int64(v.ID),
			Sweep:     ch.Sweep(),
			Samples:   ch.TotalSampleCount,
			Posterior: post.MarginalMap(),
			Scores:    scoreMap(score),
		})
		if err != nil {
			return err
		}

		if score.MaxHellinger > tolerance {
			sp.out.Printf("FAILED: Hellinger %.5f > %.5f\n", score.MaxHellinger, tolerance)
			failed = append(failed, v.Name)
		}
	}

	sp.out.Printf("--------------------------------------------------\n")

	if len(failed) > 0 {
		return errors.Errorf("Estimates off by more than %f for %v", tolerance, failed)
	}
	return nil
}
