// Package solver - unified dispatcher for the MDP solvers.
//
// A Config is a tagged variant: one struct per algorithm, each carrying
// exactly the parameters that algorithm needs. Solve switches on the concrete
// type and forwards to vi, pi or rtdp. Params is the flat, file- or
// flag-friendly form; Params.Config resolves it to exactly one variant before
// any computation starts.
package solver

import (
	"fmt"

	"github.com/danielbdias/automated-planning-and-reinforcement-learning-studies/bellman"
	"github.com/danielbdias/automated-planning-and-reinforcement-learning-studies/mdp"
	"github.com/danielbdias/automated-planning-and-reinforcement-learning-studies/pi"
	"github.com/danielbdias/automated-planning-and-reinforcement-learning-studies/rtdp"
	"github.com/danielbdias/automated-planning-and-reinforcement-learning-studies/vi"
)

// Solve runs the solver selected by cfg's concrete type on m.
//
// Trial configurations with MaxDepth == 0 use rtdp.DefaultMaxDepth.
// Errors are those of the selected solver, or ErrNilConfig.
func Solve(m *mdp.MDP, cfg Config, opts ...Option) (bellman.Result, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	switch c := cfg.(type) {
	case FiniteHorizon:
		return vi.FiniteHorizon(m, c.Gamma, c.Horizon, vi.WithLogger(o.Logger))

	case InfiniteHorizon:
		return vi.InfiniteHorizon(m, c.Gamma, c.Epsilon,
			vi.WithInitial(c.Initial),
			vi.WithMaxIterations(c.MaxIterations),
			vi.WithLogger(o.Logger),
		)

	case Policy:
		return pi.PolicyIteration(m, c.Gamma,
			pi.WithInitialPolicy(c.InitialPolicy),
			pi.WithMaxIterations(c.MaxIterations),
			pi.WithLogger(o.Logger),
		)

	case ModifiedPolicy:
		return pi.ModifiedPolicyIteration(m, c.Gamma, c.Epsilon, c.Sweeps,
			pi.WithInitial(c.Initial),
			pi.WithMaxIterations(c.MaxIterations),
			pi.WithLogger(o.Logger),
		)

	case Trial:
		return rtdp.RTDP(m, c.Gamma, trialOptions(o, c.MaxDepth, c.Seed, c.MaxTrials,
			rtdp.WithInitial(c.Initial),
			rtdp.WithTrials(c.Trials),
			rtdp.WithEpsilon(c.Epsilon),
		)...)

	case Labeled:
		return rtdp.LRTDP(m, c.Gamma, c.Epsilon, trialOptions(o, c.MaxDepth, c.Seed, c.MaxTrials,
			rtdp.WithInitial(c.Initial),
		)...)

	case Bounded:
		return rtdp.BRTDP(m, c.Gamma, c.Epsilon, c.Tau, trialOptions(o, c.MaxDepth, c.Seed, c.MaxTrials,
			rtdp.WithBounds(c.Lower, c.Upper),
		)...)

	case nil:
		return bellman.Result{}, ErrNilConfig
	}

	return bellman.Result{}, fmt.Errorf("%w: config type %T", ErrUnknownAlgorithm, cfg)
}

// trialOptions assembles the options shared by the trial solvers.
func trialOptions(o Options, maxDepth int, seed int64, maxTrials int, extra ...rtdp.Option) []rtdp.Option {
	out := []rtdp.Option{
		rtdp.WithSeed(seed),
		rtdp.WithRand(o.Rand),
		rtdp.WithMaxTrials(maxTrials),
		rtdp.WithLogger(o.Logger),
	}
	if maxDepth != 0 {
		out = append(out, rtdp.WithMaxDepth(maxDepth))
	}
	return append(out, extra...)
}
