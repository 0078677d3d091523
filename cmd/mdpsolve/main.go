// mdpsolve reads an MDP problem file, runs one solver and writes the result.
//
// Solver parameters come from an optional YAML file (--config) and from
// flags; a flag given on the command line overrides the file. Without
// --algorithm, --horizon selects finite-horizon value iteration and
// --epsilon infinite-horizon value iteration.
//
// Usage:
//
//	mdpsolve [flags] <problem-file>
//
// Examples:
//
//	mdpsolve --gamma 0.9 --epsilon 1e-6 grid.mdp
//	mdpsolve --algorithm lrtdp --gamma 1 --epsilon 1e-4 --seed 7 --table grid.jsonc
//	mdpsolve --config brtdp.yaml --format cbor --output result.cbor --chart residuals.html grid.mdp
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/danielbdias/automated-planning-and-reinforcement-learning-studies/problem"
	"github.com/danielbdias/automated-planning-and-reinforcement-learning-studies/report"
	"github.com/danielbdias/automated-planning-and-reinforcement-learning-studies/solver"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// flags holds the raw command-line values; solver parameters are merged
// into solver.Params only when the flag was set.
type flags struct {
	config   string
	output   string
	format   string
	chart    string
	table    bool
	color    bool
	logLevel string

	algorithm     string
	gamma         float64
	epsilon       float64
	horizon       int
	sweeps        int
	tau           float64
	trials        int
	maxDepth      int
	maxIterations int
	maxTrials     int
	seed          int64
}

func (f *flags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.config, "config", "c", "", "YAML file with solver parameters")
	fs.StringVarP(&f.output, "output", "o", "", "write the result summary to this file (default: stdout)")
	fs.StringVar(&f.format, "format", "json", "summary format: json or cbor")
	fs.StringVar(&f.chart, "chart", "", "write an HTML residual chart to this file")
	fs.BoolVar(&f.table, "table", false, "print a policy table to stdout instead of the summary")
	fs.BoolVar(&f.color, "color", false, "colour the policy table")
	fs.StringVar(&f.logLevel, "log-level", "warn", "log level: debug, info, warn or error")

	fs.StringVarP(&f.algorithm, "algorithm", "a", "", "solver: vi, finite-vi, pi, mpi, rtdp, lrtdp or brtdp")
	fs.Float64VarP(&f.gamma, "gamma", "g", 0, "discount factor in (0, 1]")
	fs.Float64VarP(&f.epsilon, "epsilon", "e", 0, "convergence threshold")
	fs.IntVar(&f.horizon, "horizon", 0, "finite horizon")
	fs.IntVar(&f.sweeps, "sweeps", 0, "partial evaluation sweeps (mpi)")
	fs.Float64Var(&f.tau, "tau", 0, "descent threshold divisor (brtdp)")
	fs.IntVar(&f.trials, "trials", 0, "trial budget (rtdp)")
	fs.IntVar(&f.maxDepth, "max-depth", 0, "maximum states per trial (default 1000)")
	fs.IntVar(&f.maxIterations, "max-iterations", 0, "iteration cap for vi, pi and mpi (0: none)")
	fs.IntVar(&f.maxTrials, "max-trials", 0, "trial cap for convergence modes (0: none, brtdp uses its default cap)")
	fs.Int64Var(&f.seed, "seed", 0, "random seed for trial solvers (0: default seed)")
}

// params merges the flags that were set into p.
func (f *flags) params(fs *pflag.FlagSet, p solver.Params) solver.Params {
	set := func(name string) bool { return fs.Changed(name) }

	if set("algorithm") {
		p.Algorithm = f.algorithm
	}
	if set("gamma") {
		p.Gamma = &f.gamma
	}
	if set("epsilon") {
		p.Epsilon = &f.epsilon
	}
	if set("horizon") {
		p.Horizon = &f.horizon
	}
	if set("sweeps") {
		p.Sweeps = &f.sweeps
	}
	if set("tau") {
		p.Tau = &f.tau
	}
	if set("trials") {
		p.Trials = &f.trials
	}
	if set("max-depth") {
		p.MaxDepth = f.maxDepth
	}
	if set("max-iterations") {
		p.MaxIterations = f.maxIterations
	}
	if set("max-trials") {
		p.MaxTrials = f.maxTrials
	}
	if set("seed") {
		p.Seed = f.seed
	}
	return p
}

func run(args []string, stdout, stderr io.Writer) error {
	var f flags
	fs := pflag.NewFlagSet("mdpsolve", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	f.register(fs)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("expected exactly one problem file, got %d arguments", fs.NArg())
	}

	logger, err := newLogger(stderr, f.logLevel)
	if err != nil {
		return err
	}
	format, err := report.ParseFormat(f.format)
	if err != nil {
		return err
	}

	var params solver.Params
	if f.config != "" {
		if params, err = solver.ReadParams(f.config); err != nil {
			return err
		}
	}
	cfg, err := f.params(fs, params).Config()
	if err != nil {
		return err
	}

	m, err := problem.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}
	logger.Info("problem loaded", "file", fs.Arg(0), "states", m.NumStates(), "actions", m.NumActions())

	res, err := solver.Solve(m, cfg, solver.WithLogger(logger))
	if err != nil {
		return err
	}
	algo := cfg.Algorithm().String()

	if f.chart != "" {
		if err = writeFile(f.chart, func(w io.Writer) error {
			return report.RenderResiduals(w, algo, report.Series{Name: algo, Residuals: res.Stats.MaxResiduals})
		}); err != nil {
			return err
		}
	}

	if f.table {
		if err = report.WritePolicyTable(stdout, m, res, f.color); err != nil {
			return err
		}
		if f.output == "" {
			return nil
		}
	}

	encode := func(w io.Writer) error { return report.Encode(w, report.Summarize(algo, res), format) }
	if f.output == "" {
		return encode(stdout)
	}
	return writeFile(f.output, encode)
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lv slog.Level
	if err := lv.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lv})), nil
}

func writeFile(path string, write func(io.Writer) error) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err = write(out); err != nil {
		out.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return out.Close()
}
