package rtdp

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/danielbdias/automated-planning-and-reinforcement-learning-studies/bellman"
	"github.com/danielbdias/automated-planning-and-reinforcement-learning-studies/internal/rng"
	"github.com/danielbdias/automated-planning-and-reinforcement-learning-studies/mdp"
	"github.com/danielbdias/automated-planning-and-reinforcement-learning-studies/value"
)

// runner holds the state shared by every trial of one solver invocation.
type runner struct {
	model   *mdp.MDP
	op      *bellman.Operator
	opts    Options
	rand    *rand.Rand
	initial []int
	active  []int
	stats   bellman.Stats
}

// newRunner validates the common arguments and options.
func newRunner(m *mdp.MDP, gamma float64, opts []Option) (*runner, error) {
	op, err := bellman.New(m, gamma)
	if err != nil {
		return nil, err
	}

	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.MaxDepth < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrBadMaxDepth, o.MaxDepth)
	}
	if o.MaxTrials < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrBadMaxTrials, o.MaxTrials)
	}
	if len(m.InitialIndices()) == 0 {
		return nil, ErrNoInitialStates
	}
	for _, f := range []*value.Function{o.Initial, o.Lower, o.Upper} {
		if f == nil {
			continue
		}
		if err = value.CheckModel(f, m); err != nil {
			return nil, fmt.Errorf("rtdp: warm start: %w", err)
		}
	}

	r := &runner{
		model:   m,
		op:      op,
		opts:    o,
		rand:    rng.Or(o.Rand, o.Seed),
		initial: m.InitialIndices(),
	}
	for _, s := range r.initial {
		if !m.IsGoal(s) {
			r.active = append(r.active, s)
		}
	}
	return r, nil
}

// start returns the warm start copy, or the zero function.
func (r *runner) start() *value.Function {
	if r.opts.Initial != nil {
		return r.opts.Initial.Copy()
	}
	return value.New(r.model)
}

// pickInitial draws an initial state uniformly.
func (r *runner) pickInitial() int {
	return r.initial[r.rand.Intn(len(r.initial))]
}

// backup writes Backup(s, v) into v and accounts for it.
func (r *runner) backup(s int, v *value.Function) {
	v.Set(s, r.op.Backup(s, v))
	r.stats.Backups++
	if r.opts.OnBackup != nil {
		r.opts.OnBackup(r.model.State(s))
	}
}

// visit records that a trial walked through s.
func (r *runner) visit(s int) {
	if r.opts.OnVisit != nil {
		r.opts.OnVisit(r.model.State(s))
	}
}

// beginTrial increments the trial counter and fires OnTrial.
func (r *runner) beginTrial() {
	r.stats.Iterations++
	if r.opts.OnTrial != nil {
		r.opts.OnTrial(r.stats.Iterations)
	}
}

// capped reports whether the MaxTrials safety cap has been reached.
func (r *runner) capped() bool {
	return r.opts.MaxTrials > 0 && r.stats.Iterations >= r.opts.MaxTrials
}

// initialResidual returns the largest residual over the initial states that
// are not goals. Trials never back up goals, so their residual cannot shrink.
func (r *runner) initialResidual(v *value.Function) float64 {
	return r.op.MaxResidual(r.active, v)
}

func validEpsilon(eps float64) error {
	if math.IsNaN(eps) || eps <= 0 {
		return fmt.Errorf("%w: got %g", ErrBadEpsilon, eps)
	}
	return nil
}

// RTDP runs Real-Time Dynamic Programming.
//
// Exactly one termination mode must be selected: WithTrials(n) runs n trials;
// WithEpsilon(ε) runs trials until the largest residual over the non-goal
// initial states is ≤ ε (optionally capped by WithMaxTrials). Initial states
// that are goals are never backed up and keep their warm-start value.
//
// A trial backs up every non-goal state it visits and ends on reaching a goal
// state, which is neither visited nor backed up, or after MaxDepth visited
// states. Stats.MaxResiduals holds the largest initial-state residual after
// each trial.
func RTDP(m *mdp.MDP, gamma float64, opts ...Option) (bellman.Result, error) {
	r, err := newRunner(m, gamma, opts)
	if err != nil {
		return bellman.Result{}, err
	}

	var (
		budget = r.opts.Trials
		eps    = r.opts.Epsilon
	)
	if budget < 0 || math.IsNaN(eps) || eps < 0 || (budget > 0) == (eps > 0) {
		return bellman.Result{}, fmt.Errorf("%w: trials=%d epsilon=%g", ErrTrialMode, budget, eps)
	}

	var (
		v        = r.start()
		residual float64
	)
	for {
		if budget == 0 && r.capped() {
			r.opts.Logger.Warn("rtdp stopped by trial cap", "trials", r.stats.Iterations, "residual", residual)
			break
		}
		r.beginTrial()
		depth := r.trial(v)

		residual = r.initialResidual(v)
		r.stats.MaxResiduals = append(r.stats.MaxResiduals, residual)
		r.opts.Logger.Debug("rtdp trial",
			"trial", r.stats.Iterations, "depth", depth, "residual", residual, "backups", r.stats.Backups)

		if budget > 0 && r.stats.Iterations >= budget {
			r.stats.Converged = true
			break
		}
		if budget == 0 && residual <= eps {
			r.stats.Converged = true
			break
		}
	}

	r.opts.Logger.Info("rtdp done",
		"trials", r.stats.Iterations, "backups", r.stats.Backups, "converged", r.stats.Converged)

	return bellman.Result{
		Policy: r.op.GreedyPolicy(v),
		Values: v,
		Stats:  r.stats,
	}, nil
}

// trial runs one RTDP trial on v and returns the number of visited states.
func (r *runner) trial(v *value.Function) int {
	var (
		s       = r.pickInitial()
		a       int
		visited int
	)
	for !r.model.IsGoal(s) {
		visited++
		r.visit(s)
		r.backup(s, v)
		a, _ = r.op.GreedyAction(s, v)
		s = bellman.SampleNext(r.rand, r.model, s, a)
		if visited >= r.opts.MaxDepth {
			break
		}
	}
	return visited
}
