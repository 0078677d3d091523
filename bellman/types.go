package bellman

import (
	"errors"

	"github.com/danielbdias/automated-planning-and-reinforcement-learning-studies/mdp"
	"github.com/danielbdias/automated-planning-and-reinforcement-learning-studies/value"
)

var (
	// ErrNilModel indicates a nil *mdp.MDP.
	ErrNilModel = errors.New("bellman: model is nil")

	// ErrBadGamma indicates a discount factor outside (0, 1].
	ErrBadGamma = errors.New("bellman: discount factor must be in (0, 1]")
)

// Stats summarises one solver run.
type Stats struct {
	// Iterations counts outer iterations (sweeps, improvement rounds or trials).
	Iterations int

	// Backups counts full Bellman backups (max over actions) written to a
	// value function.
	Backups int

	// MaxResiduals holds one residual per iteration for convergence-based
	// solvers; nil for fixed-budget ones.
	MaxResiduals []float64

	// Converged is false only when a safety cap stopped the run early.
	Converged bool

	// Solved is the size of the solved-state set (LRTDP only).
	Solved int
}

// Result bundles the outcome of a solver run.
type Result struct {
	// Policy is greedy with respect to Values, except when an iteration cap
	// stops policy iteration: Policy is then the last improved policy and
	// Values evaluates its predecessor.
	Policy mdp.Policy

	// Values is the final value function (the lower bound for BRTDP).
	Values *value.Function

	// Upper is the final upper bound (BRTDP only, nil otherwise).
	Upper *value.Function

	Stats Stats
}
