package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/CraigKelly/housegibbs/model"
)

var cfgFile string
var envFile string
var verbose bool
var traceFile string
var evidenceArgs []string
var evidenceFile string
var updates int64
var discard int64
var randomSeed int64
var exactCheck bool
var monitorOn bool

// startupParams is everything a command needs after flags, env, and config
// are resolved
type startupParams struct {
	cfg       *config
	query     string
	evidence  map[string]string
	verbose   bool
	exact     bool
	monitor   bool
	traceFile string
	runID     string

	out      *log.Logger
	trace    *log.Logger
	traceOut io.Closer
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "housegibbs QUERY",
	Short: "Gibbs sampling over the real estate Bayesian network",
	Long: `housegibbs estimates the posterior of one variable in a fixed
8 variable real estate network (location, amenities, neighborhood,
children, size, schools, age, price) given evidence on the others.

Evidence is given as name=value, for instance:

  housegibbs location -e neighborhood=good -e amenities=lots -u 50000 -d 5000
`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		sp, err := newStartupParams(cmd, args[0])
		if err != nil {
			return err
		}
		defer sp.Close()
		return Sample(sp)
	},
}

// newStartupParams resolves config in precedence order and opens the output
// loggers. query may be empty for commands that don't sample.
func newStartupParams(cmd *cobra.Command, query string) (*startupParams, error) {
	cfg, err := loadConfig(envFile, cfgFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = randomSeed
	}
	if flags.Changed("updates") {
		cfg.Updates = updates
	}
	if flags.Changed("discard") {
		cfg.Discard = discard
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	evid := make(map[string]string)
	for k, v := range cfg.Evidence {
		evid[strings.ToLower(k)] = strings.ToLower(v)
	}
	if len(evidenceFile) > 0 {
		fileEvid, err := model.ReadEvidenceFile(evidenceFile)
		if err != nil {
			return nil, err
		}
		for k, v := range fileEvid {
			evid[k] = v
		}
	}
	argEvid, err := model.ParseEvidence(evidenceArgs)
	if err != nil {
		return nil, err
	}
	for k, v := range argEvid {
		evid[k] = v
	}

	sp := &startupParams{
		cfg:       cfg,
		query:     query,
		evidence:  evid,
		verbose:   verbose,
		exact:     exactCheck,
		monitor:   monitorOn,
		traceFile: traceFile,
		runID:     uuid.New().String(),
		out:       log.New(os.Stdout, "", outFlags(os.Stdout)),
	}

	if len(traceFile) > 0 {
		f, err := os.Create(traceFile)
		if err != nil {
			return nil, errors.Wrapf(err, "Could not create trace file %s", traceFile)
		}
		sp.trace = log.New(f, "", 0)
		sp.traceOut = f
	} else {
		sp.trace = log.New(io.Discard, "", 0)
	}

	return sp, nil
}

// outFlags timestamps log lines on a terminal only, so piped output stays
// easy to parse
func outFlags(f *os.File) int {
	if isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()) {
		return log.LstdFlags
	}
	return 0
}

// Close releases the trace file (if any)
func (sp *startupParams) Close() {
	if sp.traceOut != nil {
		if err := sp.traceOut.Close(); err != nil {
			sp.out.Printf("Could not close trace file %s: %v\n", sp.traceFile, err)
		}
		sp.traceOut = nil
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is $HOME/.housegibbs.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "env file to load before reading HOUSEGIBBS_* variables")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging (default is much more parsimonious)")
	rootCmd.PersistentFlags().StringVarP(&traceFile, "trace", "t", "", "Output trace file (JSON lines)")
	rootCmd.PersistentFlags().StringArrayVarP(&evidenceArgs, "evidence", "e", nil, "Evidence as name=value (may be repeated)")
	rootCmd.PersistentFlags().StringVarP(&evidenceFile, "evidence-file", "f", "", "File of name=value evidence tokens")
	rootCmd.PersistentFlags().Int64VarP(&updates, "updates", "u", 0, "Total variable updates (default 100000)")
	rootCmd.PersistentFlags().Int64VarP(&discard, "discard", "d", 0, "Updates to discard as burn-in (default 10000)")
	rootCmd.PersistentFlags().Int64VarP(&randomSeed, "seed", "r", 1, "Random seed to use")

	rootCmd.Flags().BoolVar(&exactCheck, "exact", false, "Also compute the exact posterior and report the error")
	rootCmd.Flags().BoolVar(&monitorOn, "monitor", false, "Serve progress over HTTP (expvar and prometheus)")

	rootCmd.AddCommand(dotCmd, blanketCmd, checkCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
