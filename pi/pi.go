package pi

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/danielbdias/automated-planning-and-reinforcement-learning-studies/bellman"
	"github.com/danielbdias/automated-planning-and-reinforcement-learning-studies/mdp"
	"github.com/danielbdias/automated-planning-and-reinforcement-learning-studies/value"
)

// PolicyIteration solves m by alternating exact policy evaluation and strict
// improvement until the policy is a fixed point.
//
// Stats.Iterations counts evaluation/improvement rounds, including the final
// round that changes nothing; Stats.Backups == Iterations·|S|.
// Stats.MaxResiduals records, per round, the sup-norm change of the evaluated
// values (the first round is measured against the zero function).
//
// When MaxIterations stops the run, Policy is the last improved policy and
// Values evaluates its predecessor.
func PolicyIteration(m *mdp.MDP, gamma float64, opts ...Option) (bellman.Result, error) {
	op, err := bellman.New(m, gamma)
	if err != nil {
		return bellman.Result{}, err
	}
	o, err := buildOptions(opts)
	if err != nil {
		return bellman.Result{}, err
	}

	var (
		n   = m.NumStates()
		pol []int
	)
	if o.InitialPolicy != nil {
		if pol, err = m.PolicyIndices(o.InitialPolicy); err != nil {
			return bellman.Result{}, err
		}
	} else {
		pol = make([]int, n)
	}

	var (
		ev      = newEvaluator(m, gamma, o.Logger)
		prev    = value.New(m)
		v       *value.Function
		stats   bellman.Stats
		changed bool
		s       int
		best    int
		bq, cur float64
	)
	for {
		if o.MaxIterations > 0 && stats.Iterations >= o.MaxIterations {
			o.Logger.Warn("policy iteration stopped by iteration cap", "iterations", stats.Iterations)
			break
		}
		if v, err = ev.evaluate(pol); err != nil {
			return bellman.Result{}, err
		}
		stats.Iterations++
		stats.MaxResiduals = append(stats.MaxResiduals, value.MaxResidual(v, prev))
		prev = v

		changed = false
		for s = 0; s < n; s++ {
			cur = op.Quality(s, pol[s], v)
			best, bq = op.GreedyAction(s, v)
			if bq > cur {
				pol[s] = best
				changed = true
			}
		}
		stats.Backups += n
		o.Logger.Debug("policy iteration round",
			"iteration", stats.Iterations, "changed", changed, "backups", stats.Backups)

		if !changed {
			stats.Converged = true
			break
		}
	}

	o.Logger.Info("policy iteration done",
		"iterations", stats.Iterations, "backups", stats.Backups, "converged", stats.Converged)

	return bellman.Result{
		Policy: m.PolicyFromIndices(pol),
		Values: prev,
		Stats:  stats,
	}, nil
}

// evaluator solves (I − γ·P_π)·V = R for successive policies, reusing its
// buffers across calls.
type evaluator struct {
	model  *mdp.MDP
	gamma  float64
	logger *slog.Logger

	a   *mat.Dense
	b   *mat.VecDense
	x   *mat.VecDense
	row []float64
	lu  mat.LU
}

func newEvaluator(m *mdp.MDP, gamma float64, logger *slog.Logger) *evaluator {
	n := m.NumStates()
	return &evaluator{
		model:  m,
		gamma:  gamma,
		logger: logger,
		a:      mat.NewDense(n, n, nil),
		b:      mat.NewVecDense(n, nil),
		x:      mat.NewVecDense(n, nil),
		row:    make([]float64, n),
	}
}

// evaluate returns the exact value of the policy given by per-state action
// indices.
//
// For γ = 1 each goal row is replaced by V[g] = R[g].
func (e *evaluator) evaluate(pol []int) (*value.Function, error) {
	var (
		n     = e.model.NumStates()
		pin   = e.gamma == 1
		s, t  int
		entry float64
	)
	for s = 0; s < n; s++ {
		e.b.SetVec(s, e.model.Reward(s))
		if pin && e.model.IsGoal(s) {
			for t = 0; t < n; t++ {
				e.a.Set(s, t, 0)
			}
			e.a.Set(s, s, 1)
			continue
		}
		e.row = e.model.TransitionRow(e.row, pol[s], s)
		for t = 0; t < n; t++ {
			entry = -e.gamma * e.row[t]
			if t == s {
				entry += 1
			}
			e.a.Set(s, t, entry)
		}
	}

	e.lu.Factorize(e.a)
	cond := e.lu.Cond()
	if math.IsInf(cond, 1) || math.IsNaN(cond) {
		return nil, fmt.Errorf("%w: gamma=%g", ErrSingularSystem, e.gamma)
	}

	err := e.lu.SolveVecTo(e.x, false, e.b)
	if err != nil {
		var c mat.Condition
		if !errors.As(err, &c) {
			return nil, fmt.Errorf("pi: policy evaluation: %w", err)
		}
		e.logger.Warn("ill-conditioned policy evaluation", "condition", float64(c))
	}

	v := value.New(e.model)
	if err = v.SetVector(e.x); err != nil {
		return nil, err
	}
	return v, nil
}

// ModifiedPolicyIteration alternates a greedy policy extraction, sweeps
// partial evaluation sweeps under that policy and one full backup sweep,
// until max_s |V_{k+1}[s] − V_k[s]| < epsilon.
//
// Stats.Backups counts only the full backup sweeps (Iterations·|S|); the
// partial sweeps evaluate a single action per state.
func ModifiedPolicyIteration(m *mdp.MDP, gamma, epsilon float64, sweeps int, opts ...Option) (bellman.Result, error) {
	op, err := bellman.New(m, gamma)
	if err != nil {
		return bellman.Result{}, err
	}
	if math.IsNaN(epsilon) || epsilon <= 0 {
		return bellman.Result{}, fmt.Errorf("%w: got %g", ErrBadEpsilon, epsilon)
	}
	if sweeps < 0 {
		return bellman.Result{}, fmt.Errorf("%w: got %d", ErrBadSweeps, sweeps)
	}
	o, err := buildOptions(opts)
	if err != nil {
		return bellman.Result{}, err
	}

	var v *value.Function
	if o.Initial != nil {
		if err = value.CheckModel(o.Initial, m); err != nil {
			return bellman.Result{}, fmt.Errorf("pi: warm start: %w", err)
		}
		v = o.Initial.Copy()
	} else {
		v = value.New(m)
	}

	var (
		n        = m.NumStates()
		w        = v.Copy()
		scratch  = v.Copy()
		next     = v.Copy()
		pol      []int
		stats    bellman.Stats
		residual float64
		s, i     int
	)
	for {
		if o.MaxIterations > 0 && stats.Iterations >= o.MaxIterations {
			o.Logger.Warn("modified policy iteration stopped by iteration cap",
				"iterations", stats.Iterations, "residual", residual)
			break
		}

		pol = op.GreedyIndices(v)

		// Partial evaluation: W_0 = V, W_{i+1}[s] = Q(s, π(s), W_i).
		w.CopyFrom(v)
		for i = 0; i < sweeps; i++ {
			for s = 0; s < n; s++ {
				scratch.Set(s, op.Quality(s, pol[s], w))
			}
			w, scratch = scratch, w
		}

		for s = 0; s < n; s++ {
			next.Set(s, op.Backup(s, w))
		}
		stats.Iterations++
		stats.Backups += n

		residual = value.MaxResidual(next, v)
		stats.MaxResiduals = append(stats.MaxResiduals, residual)
		o.Logger.Debug("modified policy iteration round",
			"iteration", stats.Iterations, "residual", residual, "backups", stats.Backups)

		v, next = next, v
		if residual < epsilon {
			stats.Converged = true
			break
		}
	}

	o.Logger.Info("modified policy iteration done",
		"iterations", stats.Iterations, "backups", stats.Backups, "converged", stats.Converged)

	return bellman.Result{
		Policy: op.GreedyPolicy(v),
		Values: v,
		Stats:  stats,
	}, nil
}
