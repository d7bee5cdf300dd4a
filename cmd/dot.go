package cmd

import (
	"log"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/CraigKelly/housegibbs/model"
)

var dotCmd = &cobra.Command{
	Use:   "dot",
	Short: "Write the network as a graphviz digraph",
	Long: `Write the network DAG in graphviz format. Evidence given with -e is
shown as filled nodes. Output goes to the trace file if one is named,
otherwise to stdout.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sp, err := newStartupParams(cmd, "")
		if err != nil {
			return err
		}
		defer sp.Close()

		target := log.New(cmd.OutOrStdout(), "", 0)
		if len(sp.traceFile) > 0 {
			sp.out.Printf("Writing model to trace file %v\n", sp.traceFile)
			target = sp.trace
		}
		return DotOutput(sp, target)
	},
}

// DotOutput writes a graphviz description of the network: one node per
// variable (with its cardinality) and an edge from each CPT parent to its
// child
func DotOutput(sp *startupParams, target *log.Logger) error {
	mod, err := model.NewRealEstate()
	if err != nil {
		return err
	}
	if err := mod.ApplyEvidence(sp.evidence); err != nil {
		return err
	}

	// Start graph
	target.Printf("strict digraph G {\n")

	// Output vars
	for i, v := range mod.Vars {
		if i != v.ID {
			return errors.Errorf("Var %v has ID %d != idx %d", v.Name, v.ID, i)
		}
		if v.IsFixed() {
			target.Printf("    %s [label=\"%s=%s\" style=filled];\n", v.Name, v.Name, v.Domain[v.FixedVal])
		} else {
			target.Printf("    %s [label=\"%s (%d)\"];\n", v.Name, v.Name, v.Card)
		}
	}

	// Output links
	for _, v := range mod.Vars {
		cpt, err := mod.CPT(v.ID)
		if err != nil {
			return err
		}
		for _, p := range cpt.Parents() {
			target.Printf("    %s -> %s;\n", p.Name, v.Name)
		}
	}

	// Finish graph
	target.Printf("}\n")

	return nil
}
