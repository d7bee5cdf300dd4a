package cmd

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/CraigKelly/housegibbs/model"
)

var blanketCmd = &cobra.Command{
	Use:   "blanket",
	Short: "Print the Markov blanket of every variable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sp, err := newStartupParams(cmd, "")
		if err != nil {
			return err
		}
		defer sp.Close()
		return BlanketOutput(sp)
	},
}

// BlanketOutput prints each variable's Markov blanket and the factors its
// full conditional multiplies together
func BlanketOutput(sp *startupParams) error {
	mod, err := model.NewRealEstate()
	if err != nil {
		return err
	}

	for _, v := range mod.Vars {
		names, err := model.MarkovBlanket(v.Name)
		if err != nil {
			return err
		}

		funcs := mod.VarFuncs(v.ID)
		if len(funcs) < 1 {
			return errors.Errorf("No factors mention %s", v.Name)
		}
		factors := make([]string, len(funcs))
		for i, f := range funcs {
			factors[i] = factorName(f)
		}

		sp.out.Printf("%-12s blanket: %s\n", v.Name, strings.Join(names, ", "))
		if sp.verbose {
			sp.out.Printf("%-12s factors: %s\n", "", strings.Join(factors, " * "))
		}
	}

	return nil
}

// factorName is P(child|parents) notation for a CPT
func factorName(f *model.Function) string {
	parents := f.Parents()
	if len(parents) < 1 {
		return "P(" + f.Child().Name + ")"
	}
	names := make([]string, len(parents))
	for i, p := range parents {
		names[i] = p.Name
	}
	return "P(" + f.Child().Name + "|" + strings.Join(names, ",") + ")"
}
