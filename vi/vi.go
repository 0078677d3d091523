package vi

import (
	"fmt"
	"math"

	"github.com/danielbdias/automated-planning-and-reinforcement-learning-studies/bellman"
	"github.com/danielbdias/automated-planning-and-reinforcement-learning-studies/mdp"
	"github.com/danielbdias/automated-planning-and-reinforcement-learning-studies/value"
)

// FiniteHorizon performs exactly horizon synchronous backward sweeps,
// starting from the zero value function at the terminal horizon.
//
// Result.Values holds V_0 (horizon steps to go) and Result.Policy is greedy
// with respect to it. Stats.Iterations == horizon and
// Stats.Backups == horizon·|S|; Converged is always true.
func FiniteHorizon(m *mdp.MDP, gamma float64, horizon int, opts ...Option) (bellman.Result, error) {
	res, _, err := finiteHorizon(m, gamma, horizon, false, opts)
	return res, err
}

// FiniteHorizonStages behaves like FiniteHorizon and additionally returns the
// non-stationary policy: stages[k] is the greedy decision rule with k+1
// steps to go, so stages[horizon-1] is the first decision of an episode.
func FiniteHorizonStages(m *mdp.MDP, gamma float64, horizon int, opts ...Option) (bellman.Result, []mdp.Policy, error) {
	return finiteHorizon(m, gamma, horizon, true, opts)
}

func finiteHorizon(m *mdp.MDP, gamma float64, horizon int, stages bool, opts []Option) (bellman.Result, []mdp.Policy, error) {
	op, err := bellman.New(m, gamma)
	if err != nil {
		return bellman.Result{}, nil, err
	}
	if horizon < 0 {
		return bellman.Result{}, nil, fmt.Errorf("%w: got %d", ErrBadHorizon, horizon)
	}
	o := buildOptions(opts)

	var (
		prev = value.New(m)
		next = value.New(m)
		out  []mdp.Policy
		n    = m.NumStates()
		s, k int
		a    int
		q    float64
		acts []int
	)
	if stages {
		out = make([]mdp.Policy, 0, horizon)
		acts = make([]int, n)
	}

	for k = 1; k <= horizon; k++ {
		for s = 0; s < n; s++ {
			a, q = op.GreedyAction(s, prev)
			next.Set(s, q)
			if stages {
				acts[s] = a
			}
		}
		if stages {
			out = append(out, m.PolicyFromIndices(acts))
		}
		o.Logger.Debug("finite-horizon sweep", "stage", k, "residual", value.MaxResidual(next, prev))
		prev, next = next, prev
	}

	stats := bellman.Stats{
		Iterations: horizon,
		Backups:    horizon * n,
		Converged:  true,
	}
	o.Logger.Info("finite-horizon value iteration done", "horizon", horizon, "backups", stats.Backups)

	return bellman.Result{
		Policy: op.GreedyPolicy(prev),
		Values: prev,
		Stats:  stats,
	}, out, nil
}

// InfiniteHorizon repeats synchronous sweeps V_{k+1}[s] = Backup(s, V_k)
// until max_s |V_{k+1}[s] − V_k[s]| < epsilon.
//
// The residual of every sweep is appended to Stats.MaxResiduals, and
// Stats.Backups == Stats.Iterations·|S|. When MaxIterations is reached first
// the run stops with Stats.Converged == false and no error.
func InfiniteHorizon(m *mdp.MDP, gamma, epsilon float64, opts ...Option) (bellman.Result, error) {
	op, err := bellman.New(m, gamma)
	if err != nil {
		return bellman.Result{}, err
	}
	if math.IsNaN(epsilon) || epsilon <= 0 {
		return bellman.Result{}, fmt.Errorf("%w: got %g", ErrBadEpsilon, epsilon)
	}
	o := buildOptions(opts)
	if o.MaxIterations < 0 {
		return bellman.Result{}, fmt.Errorf("%w: got %d", ErrBadMaxIterations, o.MaxIterations)
	}

	var prev *value.Function
	if o.Initial != nil {
		if err = value.CheckModel(o.Initial, m); err != nil {
			return bellman.Result{}, fmt.Errorf("vi: warm start: %w", err)
		}
		prev = o.Initial.Copy()
	} else {
		prev = value.New(m)
	}

	var (
		next     = prev.Copy()
		n        = m.NumStates()
		stats    bellman.Stats
		residual float64
		s        int
	)
	for {
		if o.MaxIterations > 0 && stats.Iterations >= o.MaxIterations {
			o.Logger.Warn("value iteration stopped by iteration cap",
				"iterations", stats.Iterations, "residual", residual)
			break
		}
		for s = 0; s < n; s++ {
			next.Set(s, op.Backup(s, prev))
		}
		stats.Iterations++
		stats.Backups += n

		residual = value.MaxResidual(next, prev)
		stats.MaxResiduals = append(stats.MaxResiduals, residual)
		o.Logger.Debug("value iteration sweep",
			"iteration", stats.Iterations, "residual", residual, "backups", stats.Backups)

		prev, next = next, prev
		if residual < epsilon {
			stats.Converged = true
			break
		}
	}

	o.Logger.Info("value iteration done",
		"iterations", stats.Iterations, "backups", stats.Backups, "converged", stats.Converged)

	return bellman.Result{
		Policy: op.GreedyPolicy(prev),
		Values: prev,
		Stats:  stats,
	}, nil
}
